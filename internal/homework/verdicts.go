package homework

import "sort"

// verdicts maps a homework status to the text sent to the user.
var verdicts = map[string]string{
	"approved":  "The work has been reviewed: the reviewer liked everything. Hooray!",
	"reviewing": "The work has been taken for review by the reviewer.",
	"rejected":  "The work has been reviewed: the reviewer has remarks.",
}

// Verdict returns the user-facing text for status.
func Verdict(status string) (string, bool) {
	v, ok := verdicts[status]
	return v, ok
}

// Statuses returns the known status keys in sorted order.
func Statuses() []string {
	out := make([]string, 0, len(verdicts))
	for k := range verdicts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
