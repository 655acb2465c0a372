package types

// SubmitRequest is the payload for POST /queue.
type SubmitRequest struct {
	// Prompt text to queue. Leading/trailing whitespace is trimmed;
	// text that is empty after trimming is rejected.
	Text string `json:"text"`
}

// QueueItem is one queued prompt as rendered to clients.
type QueueItem struct {
	// Position in the send order; 0 is next to send.
	Index int `json:"index"`
	// The queued prompt text.
	Text string `json:"text"`
}

// QueueResponse wraps the ordered queue returned by GET /queue.
type QueueResponse struct {
	Items []QueueItem `json:"items"`
}

// SubmitResponse is returned by a successful POST /queue.
type SubmitResponse struct {
	// Position the item was queued at.
	Index int `json:"index"`
	// Queue length after the append.
	Length int `json:"length"`
}

// DebugRequest toggles the persisted debug flag via PUT /debug.
type DebugRequest struct {
	Enabled bool `json:"enabled"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Inferred generation state: "busy" or "idle".
	Verdict string `json:"verdict"`
	// Name of the evidence predicate that produced the busy verdict, if any.
	MatchedPredicate string `json:"matched_predicate,omitempty"`
	// Number of prompts waiting to be sent.
	QueueLength int `json:"queue_length"`
	// Whether a chat surface is currently attached.
	Attached bool `json:"attached"`
	// URL of the attached page, if any.
	PageURL string `json:"page_url,omitempty"`
	// Persisted debug flag.
	Debug bool `json:"debug"`
	// Uptime of the daemon in seconds.
	UptimeSeconds int64 `json:"uptime_seconds"`
	// Server time in unix seconds.
	ServerTimeUnix int64 `json:"server_time_unix"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	Error string `json:"error"`
	// HTTP status code.
	Code int `json:"code"`
}
