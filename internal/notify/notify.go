// Package notify tells the sales team about new quotes, messages and job
// applications by email and WhatsApp.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/01moynul/calibration-catalog/internal/models"
)

type Mailer interface {
	SendEmail(ctx context.Context, to []string, subject, body string) error
}

type Messenger interface {
	Enabled() bool
	SendText(ctx context.Context, to, body string) error
}

type Service struct {
	mailer     Mailer
	whatsapp   Messenger
	emailTo    []string
	whatsappTo string
}

// NewService wires the channels. Either channel may be nil.
func NewService(mailer Mailer, whatsapp Messenger, emailTo []string, whatsappTo string) *Service {
	return &Service{mailer: mailer, whatsapp: whatsapp, emailTo: emailTo, whatsappTo: whatsappTo}
}

// QuoteSubmitted announces a new quote request on every channel.
func (s *Service) QuoteSubmitted(ctx context.Context, q *models.QuoteRequest) error {
	var b strings.Builder
	fmt.Fprintf(&b, "New quote request #%d\n\n", q.ID)
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\n", q.Name, q.Email)
	if q.Phone != nil {
		fmt.Fprintf(&b, "Phone: %s\n", *q.Phone)
	}
	if q.Company != nil {
		fmt.Fprintf(&b, "Company: %s\n", *q.Company)
	}
	b.WriteString("\nProducts:\n")
	for _, item := range q.Products {
		fmt.Fprintf(&b, "- %s x%d\n", item.Name, item.Quantity)
	}
	fmt.Fprintf(&b, "\nMessage:\n%s\n", q.Message)

	short := fmt.Sprintf("New quote #%d from %s (%s): %d product(s)", q.ID, q.Name, q.Email, len(q.Products))
	return s.dispatch(ctx, fmt.Sprintf("New quote request from %s", q.Name), b.String(), short)
}

// MessageReceived announces a new contact message.
func (s *Service) MessageReceived(ctx context.Context, m *models.ContactMessage) error {
	subject := m.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	body := fmt.Sprintf("New contact message #%d\n\nName: %s\nEmail: %s\nSubject: %s\n\n%s\n",
		m.ID, m.Name, m.Email, subject, m.Message)
	short := fmt.Sprintf("New message from %s (%s): %s", m.Name, m.Email, subject)
	return s.dispatch(ctx, "New contact message: "+subject, body, short)
}

// ApplicationReceived announces a new job application.
func (s *Service) ApplicationReceived(ctx context.Context, a *models.JobApplication) error {
	position := "open application"
	if a.Job != nil {
		position = a.Job.Title
	}
	body := fmt.Sprintf("New job application #%d (%s)\n\nName: %s\nEmail: %s\nPhone: %s\nResume: %s\n\n%s\n",
		a.ID, position, a.Name, a.Email, a.Phone, a.ResumeURL, a.CoverLetter)
	return s.dispatch(ctx, "New job application: "+position, body, "")
}

func (s *Service) dispatch(ctx context.Context, subject, body, short string) error {
	var errs []error
	if s.mailer != nil && len(s.emailTo) > 0 {
		if err := s.mailer.SendEmail(ctx, s.emailTo, subject, body); err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}
	if short != "" && s.whatsapp != nil && s.whatsapp.Enabled() && s.whatsappTo != "" {
		if err := s.whatsapp.SendText(ctx, s.whatsappTo, short); err != nil {
			errs = append(errs, fmt.Errorf("whatsapp: %w", err))
		}
	}
	return errors.Join(errs...)
}
