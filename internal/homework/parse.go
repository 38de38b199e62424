package homework

import (
	"fmt"
	"strings"
)

const opParse = "parse_status"

// ParseStatus renders the notification text for a single homework.
func ParseStatus(item Item) (string, error) {
	name := itemName(item)
	if name == "" {
		return "", newError(KindMissingField, opParse, "homework name is missing or empty")
	}
	status, _ := item[keyStatus].(string)
	verdict, ok := verdicts[status]
	if !ok {
		if status == "" {
			return "", newError(KindUnknownStatus, opParse, "homework %q has no status", name)
		}
		return "", newError(KindUnknownStatus, opParse, "homework %q has unknown status %q", name, status)
	}
	return fmt.Sprintf("Changed status of check for \"%s\". %s", name, verdict), nil
}

// itemName reads "homework_name", falling back to "name".
func itemName(item Item) string {
	for _, k := range []string{keyName, keyNameAlias} {
		if s, ok := item[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
