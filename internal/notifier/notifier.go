// Package notifier sends transactional inquiry emails over SMTP.
package notifier

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"docucloud/internal/config"
	"docucloud/internal/inquiries"
)

// SMTPNotifier delivers inquiry notifications through an SMTP relay.
type SMTPNotifier struct {
	dialer            *gomail.Dialer
	from              string
	notificationEmail string
	logger            *slog.Logger
}

// NewSMTPNotifier creates a notifier from the application configuration.
func NewSMTPNotifier(cfg *config.Config, logger *slog.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		dialer:            gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:              cfg.FromEmail,
		notificationEmail: cfg.NotificationEmail,
		logger:            logger,
	}
}

// AdminNotification emails the inquiry details to the notification address.
func (n *SMTPNotifier) AdminNotification(inquiry *inquiries.Inquiry) error {
	subject := fmt.Sprintf("New Inquiry: %s", inquiry.Name)
	if inquiry.Company != "" {
		subject = fmt.Sprintf("New Inquiry: %s from %s", inquiry.Name, inquiry.Company)
	}

	body, err := renderAdminNotification(inquiry)
	if err != nil {
		return fmt.Errorf("failed to render admin notification: %w", err)
	}

	if err := n.send(n.notificationEmail, subject, body); err != nil {
		return err
	}

	n.logger.Info("Admin notification sent", slog.Any("inquiryID", inquiry.ID))
	return nil
}

// CustomerConfirmation emails an acknowledgement to the lead.
func (n *SMTPNotifier) CustomerConfirmation(inquiry *inquiries.Inquiry) error {
	body, err := renderCustomerConfirmation(firstName(inquiry.Name))
	if err != nil {
		return fmt.Errorf("failed to render customer confirmation: %w", err)
	}

	if err := n.send(inquiry.Email, "Thanks for reaching out to DocuCloud Solutions!", body); err != nil {
		return err
	}

	n.logger.Info("Customer confirmation sent", slog.String("email", inquiry.Email))
	return nil
}

func (n *SMTPNotifier) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func firstName(full string) string {
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}

// Discard is a Notifier that drops every message. Used in tests and in
// deployments without SMTP configuration.
type Discard struct{}

func (Discard) AdminNotification(*inquiries.Inquiry) error    { return nil }
func (Discard) CustomerConfirmation(*inquiries.Inquiry) error { return nil }

var _ inquiries.Notifier = (*SMTPNotifier)(nil)
var _ inquiries.Notifier = Discard{}
