package homework

// Item is one homework record as decoded from JSON.
//
// It stays a raw map: the API contract is checked field by field in
// ParseStatus rather than trusted through struct tags.
type Item map[string]any

// Response is a payload that passed CheckResponse.
type Response struct {
	Homeworks []Item
	// CurrentDate is the server's "now" (unix seconds).
	// HasCurrentDate is false when the key is absent or not an integer.
	CurrentDate    int64
	HasCurrentDate bool
}

// Wire keys.
const (
	keyHomeworks   = "homeworks"
	keyCurrentDate = "current_date"
	keyName        = "homework_name"
	keyNameAlias   = "name"
	keyStatus      = "status"
)
