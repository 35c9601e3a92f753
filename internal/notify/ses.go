// Package notify sends operator email when a new submission lands.
// Delivery is best effort: a failed mail is logged and counted, never
// surfaced to the submitter or allowed to fail the submission.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yhangokk/vidnav/internal/common/config"
	"github.com/Yhangokk/vidnav/internal/common/logger"
	"github.com/Yhangokk/vidnav/internal/submission"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/google/uuid"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailNotifier mails the operator list about new submissions via SES.
type EmailNotifier struct {
	cfg       config.NotificationConfig
	logger    logger.Logger
	sesClient SESService
}

func NewEmailNotifier(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*EmailNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &EmailNotifier{
		cfg:       cfg,
		logger:    log,
		sesClient: ses.NewFromConfig(awsCfg),
	}, nil
}

// NewEmailNotifierWithClient injects a prebuilt SES client, used in tests.
func NewEmailNotifierWithClient(cfg config.NotificationConfig, client SESService, log logger.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, logger: log, sesClient: client}
}

// NotifySubmissionReceived mails every configured operator about a newly
// accepted submission. Disabled config or an empty operator list is a
// silent no-op.
func (n *EmailNotifier) NotifySubmissionReceived(ctx context.Context, rec *submission.Record) error {
	if !n.cfg.Email.Enabled || len(n.cfg.Email.Operators) == 0 {
		return nil
	}

	notificationID := uuid.New().String()
	subject, body := renderSubmissionMail(rec)

	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: n.cfg.Email.Operators,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.cfg.Email.FromEmail),
	})
	if err != nil {
		return fmt.Errorf("send submission mail: %w", err)
	}

	n.logger.Info("operator notification sent", map[string]interface{}{
		"notificationId": notificationID,
		"issueNumber":    rec.Number,
		"recipients":     len(n.cfg.Email.Operators),
	})
	return nil
}

func renderSubmissionMail(rec *submission.Record) (subject, body string) {
	subject = fmt.Sprintf("New site submission #%d pending review", rec.Number)

	var b strings.Builder
	fmt.Fprintf(&b, "A new submission is waiting for review.\n\n")
	if rec.Payload != nil {
		fmt.Fprintf(&b, "Title: %s\n", rec.Payload.Title)
		fmt.Fprintf(&b, "URL: %s\n", rec.Payload.URL)
		fmt.Fprintf(&b, "Category: %s\n", rec.Payload.Category)
	} else {
		fmt.Fprintf(&b, "Title: %s\n", rec.Title)
	}
	if rec.HTMLURL != "" {
		fmt.Fprintf(&b, "\nReview it here: %s\n", rec.HTMLURL)
	}
	return subject, b.String()
}
