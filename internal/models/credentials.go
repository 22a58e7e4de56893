package models

// Credentials identify the Ranger addon attached to a platform app.
type Credentials struct {
	APIKey string
	AppID  string
}

// StatusEvent is published when a check observes a new response code.
type StatusEvent struct {
	AppID        string   `json:"app_id"`
	URL          string   `json:"url"`
	PreviousCode *int     `json:"previous_code"`
	CurrentCode  *int     `json:"current_code"`
	Watchers     []string `json:"watchers"`
	ObservedAt   string   `json:"observed_at"`
}
