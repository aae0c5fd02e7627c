package notify

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/calibration-catalog/internal/email"
	"github.com/01moynul/calibration-catalog/internal/models"
)

type fakeMailer struct {
	ctx     context.Context
	to      []string
	subject string
	body    string
	err     error
}

func (f *fakeMailer) SendEmail(ctx context.Context, to []string, subject, body string) error {
	f.ctx, f.to, f.subject, f.body = ctx, to, subject, body
	return f.err
}

type fakeMessenger struct {
	enabled bool
	to      string
	body    string
	err     error
}

func (f *fakeMessenger) Enabled() bool { return f.enabled }

func (f *fakeMessenger) SendText(_ context.Context, to, body string) error {
	f.to, f.body = to, body
	return f.err
}

func sampleQuote() *models.QuoteRequest {
	phone := "+60 12 345"
	return &models.QuoteRequest{
		ID:      7,
		Name:    "Ana",
		Email:   "ana@example.com",
		Phone:   &phone,
		Message: "Need pricing",
		Products: []models.QuoteItem{
			{ProductID: 1, Name: "DPG-100", Quantity: 2},
		},
	}
}

func TestQuoteSubmittedUsesBothChannels(t *testing.T) {
	mail := &fakeMailer{}
	wa := &fakeMessenger{enabled: true}
	s := NewService(mail, wa, []string{"sales@example.com"}, "60123")

	require.NoError(t, s.QuoteSubmitted(context.Background(), sampleQuote()))

	assert.Equal(t, []string{"sales@example.com"}, mail.to)
	assert.Equal(t, "New quote request from Ana", mail.subject)
	assert.Contains(t, mail.body, "- DPG-100 x2")
	assert.Contains(t, mail.body, "Phone: +60 12 345")
	assert.Equal(t, "60123", wa.to)
	assert.Contains(t, wa.body, "New quote #7 from Ana")
}

func TestDispatchJoinsErrors(t *testing.T) {
	mailErr := errors.New("smtp down")
	waErr := errors.New("bad token")
	s := NewService(&fakeMailer{err: mailErr}, &fakeMessenger{enabled: true, err: waErr}, []string{"x@example.com"}, "1")

	err := s.MessageReceived(context.Background(), &models.ContactMessage{ID: 1, Name: "Bo", Email: "bo@example.com", Message: "hi"})
	assert.True(t, errors.Is(err, mailErr))
	assert.True(t, errors.Is(err, waErr))
}

func TestDisabledChannelsAreSkipped(t *testing.T) {
	wa := &fakeMessenger{enabled: false}
	s := NewService(nil, wa, nil, "1")

	require.NoError(t, s.QuoteSubmitted(context.Background(), sampleQuote()))
	assert.Empty(t, wa.to)
}

func TestApplicationReceivedIsEmailOnly(t *testing.T) {
	mail := &fakeMailer{}
	wa := &fakeMessenger{enabled: true}
	s := NewService(mail, wa, []string{"hr@example.com"}, "1")

	app := &models.JobApplication{ID: 3, Name: "Cy", Email: "cy@example.com", ResumeURL: "/uploads/resumes/x.pdf",
		Job: &models.Job{Title: "Service Engineer"}}
	require.NoError(t, s.ApplicationReceived(context.Background(), app))

	assert.Equal(t, "New job application: Service Engineer", mail.subject)
	assert.Contains(t, mail.body, "/uploads/resumes/x.pdf")
	assert.Empty(t, wa.to)
}

type ctxKey struct{}

func TestMailerReceivesCallerContext(t *testing.T) {
	mail := &fakeMailer{}
	s := NewService(mail, nil, []string{"sales@example.com"}, "")

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	require.NoError(t, s.MessageReceived(ctx, &models.ContactMessage{ID: 2, Name: "Di", Email: "di@example.com"}))

	require.NotNil(t, mail.ctx)
	assert.Equal(t, "req-1", mail.ctx.Value(ctxKey{}))
}

func TestStalledSMTPServerDoesNotOutliveDeadline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var mu sync.Mutex
	var held []net.Conn
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			held = append(held, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range held {
			c.Close()
		}
	})

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	mailer := email.NewMailer(email.Config{Host: host, Port: port, From: "site@example.com"})
	s := NewService(mailer, nil, []string{"sales@example.com"}, "")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = s.MessageReceived(ctx, &models.ContactMessage{ID: 1, Name: "Bo", Email: "bo@example.com", Message: "hi"})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
