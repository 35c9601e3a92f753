// Package submission defines the user-authored payload, the durable record
// shape, and the label-derived moderation status for directory submissions.
package submission

// Payload is the user-authored submission, immutable once created.
type Payload struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Subcategory   string `json:"subcategory,omitempty"`
	SubmitterNote string `json:"submitterNote,omitempty"`
}
