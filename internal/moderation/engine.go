// Package moderation implements the submission lifecycle: accept a
// payload into the issue store, list records by derived status, and move
// pending records to approved or rejected. The store is the only durable
// state; the engine re-reads it before every transition instead of
// trusting anything cached.
package moderation

import (
	"context"
	"time"

	apperrors "github.com/Yhangokk/vidnav/internal/common/errors"
	"github.com/Yhangokk/vidnav/internal/common/logger"
	"github.com/Yhangokk/vidnav/internal/common/metrics"
	"github.com/Yhangokk/vidnav/internal/github"
	"github.com/Yhangokk/vidnav/internal/submission"
)

// IssueStore is the slice of the store client the engine needs.
type IssueStore interface {
	CreateIssue(ctx context.Context, title, body string, labels []string) (*github.Issue, error)
	ListIssuesByLabel(ctx context.Context, label string) ([]github.Issue, error)
	GetIssue(ctx context.Context, number int) (*github.Issue, error)
	ReplaceLabels(ctx context.Context, number int, labels []string) error
	AddComment(ctx context.Context, number int, body string) error
}

// Publisher announces an approval to downstream consumers. Called only
// after the label write has durably succeeded.
type Publisher interface {
	PublishApproved(ctx context.Context, issueNumber int, payload *submission.Payload, approvedAt time.Time) error
}

// Notifier tells operators about a new submission. Best effort only.
type Notifier interface {
	NotifySubmissionReceived(ctx context.Context, rec *submission.Record) error
}

type Engine struct {
	store     IssueStore
	publisher Publisher
	notifier  Notifier
	logger    logger.Logger
}

// NewEngine wires the engine. publisher and notifier may be nil, in which
// case approvals skip the event and submissions skip the operator mail.
func NewEngine(store IssueStore, publisher Publisher, notifier Notifier, log logger.Logger) *Engine {
	return &Engine{
		store:     store,
		publisher: publisher,
		notifier:  notifier,
		logger:    log,
	}
}

// Submit validates a payload and persists it as a pending record.
//
// The create call is issued exactly once. A timeout surfaces as
// UNKNOWN_OUTCOME from the store layer and is passed through unwrapped:
// the record may or may not exist and only an operator can tell.
func (e *Engine) Submit(ctx context.Context, p *submission.Payload) (*submission.Record, error) {
	if err := submission.Validate(p); err != nil {
		return nil, err
	}

	labels := []string{submission.LabelSubmission, submission.LabelPending}
	issue, err := e.store.CreateIssue(ctx, submission.IssueTitle(p), submission.EncodeIssueBody(p), labels)
	if err != nil {
		e.logger.Error("submission create failed", map[string]interface{}{
			"title": p.Title,
			"error": err.Error(),
		})
		return nil, err
	}

	metrics.SubmissionsCreated.Inc()
	rec := recordFromIssue(issue)
	e.logger.Info("submission accepted", map[string]interface{}{
		"issueNumber": rec.Number,
		"title":       p.Title,
		"category":    p.Category,
	})

	if e.notifier != nil {
		if nerr := e.notifier.NotifySubmissionReceived(ctx, rec); nerr != nil {
			e.logger.Warn("operator notification failed", map[string]interface{}{
				"issueNumber": rec.Number,
				"error":       nerr.Error(),
			})
		}
	}

	return rec, nil
}

// List returns every record whose derived status matches. Records whose
// stored body no longer decodes are kept in the result with a nil payload
// rather than dropped, so operators can see and repair them.
func (e *Engine) List(ctx context.Context, status submission.Status) ([]submission.Record, error) {
	issues, err := e.store.ListIssuesByLabel(ctx, submission.LabelFor(status))
	if err != nil {
		return nil, err
	}

	records := make([]submission.Record, 0, len(issues))
	for i := range issues {
		rec := recordFromIssue(&issues[i])
		// The label query is a superset filter: a record carrying both an
		// approved and a pending label matches a pending query but resolves
		// approved. Derived status is authoritative.
		if rec.Status != status {
			continue
		}
		if rec.Payload == nil {
			metrics.ListingDecodeFailures.Inc()
			e.logger.Warn("stored submission body failed to decode", map[string]interface{}{
				"issueNumber": rec.Number,
			})
		}
		records = append(records, *rec)
	}

	return records, nil
}

// Get fetches a single record by its store number.
func (e *Engine) Get(ctx context.Context, number int) (*submission.Record, error) {
	issue, err := e.store.GetIssue(ctx, number)
	if err != nil {
		return nil, err
	}
	return recordFromIssue(issue), nil
}

// Approve moves a pending record to approved and announces the approval.
//
// The returned record reflects the post-transition state. When the label
// write succeeds but the publish fails, Approve returns BOTH the updated
// record and a PUBLISH_FAILED error: the approval is durable, the
// announcement is not, and the caller must surface that window instead of
// pretending either full success or full failure.
func (e *Engine) Approve(ctx context.Context, number int) (*submission.Record, error) {
	rec, err := e.transition(ctx, number, submission.StatusApproved)
	if err != nil {
		metrics.ModerationActions.WithLabelValues("approve", "error").Inc()
		return nil, err
	}

	if e.publisher != nil {
		approvedAt := time.Now().UTC()
		if perr := e.publisher.PublishApproved(ctx, rec.Number, rec.Payload, approvedAt); perr != nil {
			metrics.PublishFailures.Inc()
			metrics.ModerationActions.WithLabelValues("approve", "publish_failed").Inc()
			e.logger.Error("approved but publish failed", map[string]interface{}{
				"issueNumber": rec.Number,
				"error":       perr.Error(),
			})
			return rec, apperrors.NewPublishFailedError(rec.Number, perr)
		}
	}

	metrics.ModerationActions.WithLabelValues("approve", "ok").Inc()
	e.logger.Info("submission approved", map[string]interface{}{"issueNumber": rec.Number})
	return rec, nil
}

// Reject moves a pending record to rejected. A non-empty reason is
// recorded as a comment on the record; comment failure does not undo or
// fail the rejection.
func (e *Engine) Reject(ctx context.Context, number int, reason string) (*submission.Record, error) {
	rec, err := e.transition(ctx, number, submission.StatusRejected)
	if err != nil {
		metrics.ModerationActions.WithLabelValues("reject", "error").Inc()
		return nil, err
	}

	if reason != "" {
		if cerr := e.store.AddComment(ctx, number, "**Rejection reason**: "+reason); cerr != nil {
			e.logger.Warn("rejection reason comment failed", map[string]interface{}{
				"issueNumber": number,
				"error":       cerr.Error(),
			})
		}
	}

	metrics.ModerationActions.WithLabelValues("reject", "ok").Inc()
	e.logger.Info("submission rejected", map[string]interface{}{
		"issueNumber": number,
		"hasReason":   reason != "",
	})
	return rec, nil
}

// transition is the read-decide-write core shared by Approve and Reject.
// It re-reads the record, refuses to act unless it is still pending, and
// replaces the whole label set. On a retryable write failure it loops back
// to the read so the precondition is always checked against fresh state;
// the label write itself is never blindly re-issued.
func (e *Engine) transition(ctx context.Context, number int, target submission.Status) (*submission.Record, error) {
	const writeAttempts = 2

	var lastErr error
	for attempt := 0; attempt < writeAttempts; attempt++ {
		issue, err := e.store.GetIssue(ctx, number)
		if err != nil {
			return nil, err
		}

		current := submission.ResolveStatus(issue.LabelNames())
		if current != submission.StatusPending {
			return nil, apperrors.NewInvalidTransitionError(number, string(current))
		}

		newLabels := relabel(issue.LabelNames(), target)
		if err := e.store.ReplaceLabels(ctx, number, newLabels); err != nil {
			if apperrors.IsRetryable(err) && attempt < writeAttempts-1 {
				lastErr = err
				continue
			}
			return nil, err
		}

		issue.Labels = toLabels(newLabels)
		return recordFromIssue(issue), nil
	}

	return nil, lastErr
}

// relabel swaps the status label for the target's while preserving every
// unrelated label the record carries.
func relabel(labels []string, target submission.Status) []string {
	out := make([]string, 0, len(labels)+1)
	for _, l := range labels {
		switch l {
		case submission.LabelPending, submission.LabelApproved, submission.LabelRejected:
			continue
		}
		out = append(out, l)
	}
	return append(out, submission.LabelFor(target))
}

func toLabels(names []string) []github.Label {
	out := make([]github.Label, len(names))
	for i, n := range names {
		out[i] = github.Label{Name: n}
	}
	return out
}

// recordFromIssue projects a raw store issue into the service record,
// deriving status from labels and decoding the payload block. Decode
// failure leaves Payload nil; it never fails the projection.
func recordFromIssue(issue *github.Issue) *submission.Record {
	labels := issue.LabelNames()
	rec := &submission.Record{
		ID:        issue.ID,
		Number:    issue.Number,
		Title:     issue.Title,
		Body:      issue.Body,
		Labels:    labels,
		Status:    submission.ResolveStatus(labels),
		CreatedAt: issue.CreatedAt,
		UpdatedAt: issue.UpdatedAt,
		HTMLURL:   issue.HTMLURL,
	}
	if p, ok := submission.DecodeIssueBody(issue.Body); ok {
		rec.Payload = p
	}
	return rec
}
