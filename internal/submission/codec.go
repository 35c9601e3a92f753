package submission

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// The issue body carries a human-readable restatement of the fields for
// operators, followed by one fenced JSON block holding the canonical
// serialized payload. Decoding recognizes exactly the fenced block; the
// prose above it is presentation only.
var fencedBlockRe = regexp.MustCompile("(?s)```json\n(.*?)\n```")

// IssueTitle returns the store title for a submission.
func IssueTitle(p *Payload) string {
	return "[Submission] " + p.Title
}

// EncodeIssueBody serializes a payload into the durable text record.
// Encoding is deterministic for a given payload: the JSON block is emitted
// from a fixed struct, so key order is stable and the round-trip law
// DecodeIssueBody(EncodeIssueBody(p)) == p holds for every valid payload.
func EncodeIssueBody(p *Payload) string {
	data, _ := json.MarshalIndent(p, "", "  ")

	var b strings.Builder
	b.WriteString("## Site submission\n\n")
	fmt.Fprintf(&b, "**Title**: %s\n", p.Title)
	fmt.Fprintf(&b, "**URL**: %s\n", p.URL)
	fmt.Fprintf(&b, "**Description**: %s\n", p.Description)
	if p.Subcategory != "" {
		fmt.Fprintf(&b, "**Category**: %s > %s\n", p.Category, p.Subcategory)
	} else {
		fmt.Fprintf(&b, "**Category**: %s\n", p.Category)
	}
	if p.SubmitterNote != "" {
		fmt.Fprintf(&b, "\n**Submitter note**: %s\n", p.SubmitterNote)
	}
	b.WriteString("\n---\n\n### Submission data (JSON)\n\n")
	b.WriteString("```json\n")
	b.Write(data)
	b.WriteString("\n```\n\n---\n")
	b.WriteString("*Submitted anonymously through the VidNav submission form*\n")

	return b.String()
}

// DecodeIssueBody locates the first fenced JSON block in a stored record
// body and parses it back into a payload. Any failure — no block, malformed
// JSON, missing required field — returns (nil, false); it never returns an
// error, since malformed stored content must not break listings. A decoded
// payload with empty optional fields is still (payload, true).
func DecodeIssueBody(body string) (*Payload, bool) {
	m := fencedBlockRe.FindStringSubmatch(body)
	if m == nil {
		return nil, false
	}

	var p Payload
	if err := json.Unmarshal([]byte(m[1]), &p); err != nil {
		return nil, false
	}

	if p.Title == "" || p.URL == "" || p.Description == "" || p.Category == "" {
		return nil, false
	}

	return &p, true
}
