package submission

import "time"

// Record is one persisted submission as read back from the issue store.
// The store is sole owner of ID, Number, Labels and the timestamps; this
// service never caches them beyond a single request. Payload is nil when
// the stored body failed to decode.
type Record struct {
	ID        int64     `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Labels    []string  `json:"labels"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	HTMLURL   string    `json:"html_url"`
	Payload   *Payload  `json:"submissionData,omitempty"`
}
