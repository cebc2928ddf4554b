// Package notify sends alert emails to subscribed users: visa bulletin
// releases, H-1B lottery results, and policy changes.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/surya16122114/immigration-ai-assistant/internal/log"
	"github.com/surya16122114/immigration-ai-assistant/internal/storage"
)

// Email is a single outbound message.
type Email struct {
	To      string
	From    string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a single email. The production implementation is
// SendGrid; tests substitute a stub.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// Service composes and sends alert emails. With no mailer configured it
// logs and reports success, so a missing SendGrid key never breaks the
// request flow.
type Service struct {
	mailer      Mailer
	from        string
	frontendURL string
	logger      log.Logger
}

// NewService creates an alert service. mailer may be nil, which turns every
// send into a logged no-op.
func NewService(mailer Mailer, from, frontendURL string, logger log.Logger) *Service {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Service{mailer: mailer, from: from, frontendURL: frontendURL, logger: logger}
}

// SendAlert sends a free-form alert email of the given type.
func (s *Service) SendAlert(ctx context.Context, to, subject, content, alertType string) error {
	if s.mailer == nil {
		s.logger.Info("email delivery not configured, skipping alert",
			"alert_type", alertType, "to", to)
		return nil
	}

	err := s.mailer.Send(ctx, Email{
		To:      to,
		From:    s.from,
		Subject: subject,
		Text:    content,
		HTML:    s.alertHTML(content, alertType),
	})
	if err != nil {
		return fmt.Errorf("send %s alert: %w", alertType, err)
	}

	s.logger.Info("alert sent", "alert_type", alertType, "to", to)
	return nil
}

// SendVisaBulletinUpdate notifies a subscriber of a new visa bulletin.
func (s *Service) SendVisaBulletinUpdate(ctx context.Context, to, summary string) error {
	content := fmt.Sprintf(`A new Visa Bulletin has been released with the following updates:

%s

Visit your Immigration AI dashboard for detailed information.`, summary)

	return s.SendAlert(ctx, to, "New Visa Bulletin Update - Immigration AI",
		content, storage.AlertVisaBulletin)
}

// SendH1BLotteryNotification notifies a subscriber that lottery results
// are available.
func (s *Service) SendH1BLotteryNotification(ctx context.Context, to, status string) error {
	content := fmt.Sprintf(`The H-1B lottery results for the current fiscal year are now available.

Status: %s

Check your Immigration AI dashboard for more details and next steps.`, status)

	return s.SendAlert(ctx, to, "H-1B Lottery Results Available - Immigration AI",
		content, storage.AlertH1BLottery)
}

// SendPolicyChangeNotification notifies a subscriber of a policy update.
func (s *Service) SendPolicyChangeNotification(ctx context.Context, to string, update storage.PolicyUpdate) error {
	content := fmt.Sprintf(`A new immigration policy update has been announced:

Title: %s
Source: %s
Summary: %s

Read the full update on your Immigration AI dashboard.`, update.Title, update.Source, update.Summary)

	return s.SendAlert(ctx, to, "Immigration Policy Update: "+update.Title,
		content, storage.AlertPolicyChanges)
}

var alertTypeNames = map[string]string{
	storage.AlertVisaBulletin:  "Visa Bulletin Update",
	storage.AlertH1BLottery:    "H-1B Lottery Notification",
	storage.AlertPolicyChanges: "Policy Update",
}

func (s *Service) alertHTML(content, alertType string) string {
	heading, ok := alertTypeNames[alertType]
	if !ok {
		heading = "Immigration Alert"
	}

	paragraphs := "<p>" + strings.ReplaceAll(content, "\n", "</p><p>") + "</p>"

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Immigration AI Alert</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f5f5f5; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: white; border-radius: 8px;">
    <div style="background: #4F94CD; color: white; padding: 20px; text-align: center;">
      <h1>Immigration AI</h1>
      <h2>%s</h2>
    </div>
    <div style="padding: 30px; line-height: 1.6; color: #333;">
      %s
      <div style="background-color: #fff3cd; border: 1px solid #ffeaa7; padding: 10px; margin: 15px 0;">
        <strong>Important Legal Notice:</strong> This information is for general guidance only and is not legal advice.
        Immigration law is complex and fact-specific. For legal advice regarding your specific situation,
        consult with a qualified immigration attorney.
      </div>
      <p style="text-align: center;"><a href="%s">View Dashboard</a></p>
    </div>
    <div style="background-color: #f8f9fa; padding: 15px; text-align: center; font-size: 12px; color: #666;">
      <p>This email was sent by Immigration AI Assistant</p>
      <p>You are receiving this because you subscribed to immigration alerts</p>
    </div>
  </div>
</body>
</html>`, heading, paragraphs, s.frontendURL)
}
