package server

import "github.com/Yhangokk/vidnav/internal/submission"

// submitRequest is the POST /submissions body.
type submitRequest struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Subcategory   string `json:"subcategory,omitempty"`
	SubmitterNote string `json:"submitterNote,omitempty"`
}

func (r *submitRequest) toPayload() *submission.Payload {
	return &submission.Payload{
		Title:         r.Title,
		URL:           r.URL,
		Description:   r.Description,
		Category:      r.Category,
		Subcategory:   r.Subcategory,
		SubmitterNote: r.SubmitterNote,
	}
}

// moderateRequest is the PATCH /submissions/{number} body.
type moderateRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
}

type submitResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	IssueNumber int    `json:"issueNumber"`
	IssueURL    string `json:"issueUrl,omitempty"`
}

type listResponse struct {
	Success     bool                `json:"success"`
	Count       int                 `json:"count"`
	Submissions []submission.Record `json:"submissions"`
}

type recordResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Submission *submission.Record `json:"submission"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
