package submission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// ResolveStatus Tests
// ==========================

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   Status
	}{
		{"pending label", []string{LabelSubmission, LabelPending}, StatusPending},
		{"approved label", []string{LabelSubmission, LabelApproved}, StatusApproved},
		{"rejected label", []string{LabelSubmission, LabelRejected}, StatusRejected},
		{"no status label defaults to pending", []string{LabelSubmission}, StatusPending},
		{"empty label set", nil, StatusPending},
		{"unrelated labels only", []string{"bug", "help wanted"}, StatusPending},
		{"approved wins over rejected", []string{LabelRejected, LabelApproved}, StatusApproved},
		{"approved wins over pending", []string{LabelPending, LabelApproved}, StatusApproved},
		{"rejected wins over pending", []string{LabelPending, LabelRejected}, StatusRejected},
		{"all three present", []string{LabelPending, LabelRejected, LabelApproved}, StatusApproved},
		{"order does not matter", []string{LabelApproved, LabelRejected, LabelPending}, StatusApproved},
		{"unrelated labels mixed in", []string{"bug", LabelRejected, "duplicate"}, StatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveStatus(tt.labels))
		})
	}
}

// ==========================
// Label Mapping Tests
// ==========================

func TestLabelFor(t *testing.T) {
	assert.Equal(t, LabelPending, LabelFor(StatusPending))
	assert.Equal(t, LabelApproved, LabelFor(StatusApproved))
	assert.Equal(t, LabelRejected, LabelFor(StatusRejected))
}

func TestLabelForRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusApproved, StatusRejected} {
		assert.Equal(t, s, ResolveStatus([]string{LabelFor(s)}))
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
		ok   bool
	}{
		{"pending", StatusPending, true},
		{"approved", StatusApproved, true},
		{"rejected", StatusRejected, true},
		{"", "", false},
		{"Approved", "", false},
		{"unknown", "", false},
	}

	for _, tt := range tests {
		t.Run("parse "+tt.raw, func(t *testing.T) {
			got, ok := ParseStatus(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
