package submission

// Status is the closed moderation state enumeration derived from a record's
// label set. Downstream logic switches on these three values, never on raw
// label strings.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Labels used on the issue store. A well-formed record carries the
// submission marker plus exactly one status label; the store does not
// enforce that, so ResolveStatus tolerates any combination.
const (
	LabelSubmission = "submission"
	LabelPending    = "submission:pending"
	LabelApproved   = "submission:approved"
	LabelRejected   = "submission:rejected"
)

// ResolveStatus maps a raw label set to exactly one status.
//
// Precedence is policy, not an accident of iteration order: approved wins
// over everything, rejected wins over pending, and a record with no status
// label at all (malformed) is treated as still awaiting review rather than
// surfaced as an error. This makes the function total over all label sets,
// including ones the store would never legitimately produce.
func ResolveStatus(labels []string) Status {
	var hasRejected bool
	for _, l := range labels {
		switch l {
		case LabelApproved:
			return StatusApproved
		case LabelRejected:
			hasRejected = true
		}
	}
	if hasRejected {
		return StatusRejected
	}
	return StatusPending
}

// LabelFor returns the store label encoding a status.
func LabelFor(s Status) string {
	switch s {
	case StatusApproved:
		return LabelApproved
	case StatusRejected:
		return LabelRejected
	default:
		return LabelPending
	}
}

// ParseStatus converts a query-string value into a Status.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(raw), true
	}
	return "", false
}
