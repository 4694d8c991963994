package services

import (
	"fmt"
	"log"
	"strings"

	"despacho_app_go/config"
	"despacho_app_go/models"

	"github.com/resend/resend-go/v2"
)

// ReminderService sends a daily summary of upcoming deadlines and urgent
// terms by email. In test mode the email is logged instead of sent.
type ReminderService struct {
	cfg *config.Config
}

func NewReminderService(cfg *config.Config) *ReminderService {
	return &ReminderService{cfg: cfg}
}

// SendDeadlineSummary emails the given events. A nil or empty list is a
// no-op so the hourly job can call this unconditionally.
func (s *ReminderService) SendDeadlineSummary(events []models.CalendarEvent) error {
	if len(events) == 0 {
		return nil
	}
	if s.cfg.EmailTo == "" {
		return nil
	}

	subject := fmt.Sprintf("Despacho: %d términos próximos", len(events))
	body := buildSummaryBody(events)

	if s.cfg.EmailTestMode {
		log.Printf("[EMAIL TEST MODE] To: %s | Subject: %s\n%s", s.cfg.EmailTo, subject, body)
		return nil
	}
	if s.cfg.ResendAPIKey == "" {
		return fmt.Errorf("resend API key not configured")
	}

	client := resend.NewClient(s.cfg.ResendAPIKey)
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.cfg.EmailFromName, s.cfg.EmailFrom),
		To:      []string{s.cfg.EmailTo},
		Subject: subject,
		Text:    body,
	}

	if _, err := client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}
	return nil
}

func buildSummaryBody(events []models.CalendarEvent) string {
	var b strings.Builder
	b.WriteString("Términos y vencimientos próximos:\n\n")
	for _, ev := range events {
		marker := "-"
		if ev.Urgent || ev.Type == models.EventTypeDeadline {
			marker = "!"
		}
		fmt.Fprintf(&b, "%s %s — %s", marker, ev.Date, ev.Title)
		if ev.Description != "" {
			fmt.Fprintf(&b, " (%s)", ev.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}
