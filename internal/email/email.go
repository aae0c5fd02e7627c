package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// defaultTimeout bounds a delivery whose context carries no deadline.
const defaultTimeout = 30 * time.Second

// Config holds the SMTP settings. An empty Host disables sending.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Mailer sends plain-text mail over SMTP. When SMTP is not configured it
// logs the message instead.
type Mailer struct {
	config Config
	send   func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg Config) *Mailer {
	return &Mailer{config: cfg, send: sendMail}
}

// Enabled reports whether real delivery is configured.
func (m *Mailer) Enabled() bool {
	return m.config.Host != ""
}

// SendEmail delivers one message to the recipients. The SMTP conversation
// is abandoned when ctx is done.
func (m *Mailer) SendEmail(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}

	if !m.Enabled() {
		// --- PLACEHOLDER ---
		// No SMTP server: log the mail so it can still be seen in development.
		log.Println("====================================================")
		log.Printf("--- NEW EMAIL (PLACEHOLDER) ---")
		log.Printf("To: %s", strings.Join(to, ", "))
		log.Printf("Subject: %s", subject)
		log.Println("--- Body ---")
		log.Println(body)
		log.Println("====================================================")
		return nil
	}

	msg := buildMessage(m.config.From, to, subject, body)

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}
	addr := fmt.Sprintf("%s:%s", m.config.Host, m.config.Port)

	if err := m.send(ctx, addr, auth, m.config.From, to, msg); err != nil {
		log.Printf("Failed to send email to %s: %v", strings.Join(to, ", "), err)
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// sendMail is smtp.SendMail over a connection bounded by ctx.
func sendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	// 1. Dial and bound every read and write by the deadline.
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	host, _, _ := net.SplitHostPort(addr)
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	// 2. Upgrade and authenticate when the server offers it.
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(a); err != nil {
				return err
			}
		}
	}

	// 3. Envelope and body.
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMessage(from string, to []string, subject, body string) []byte {
	headers := [][2]string{
		{"From", from},
		{"To", strings.Join(to, ", ")},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=\"UTF-8\""},
	}

	var b strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h[0], h[1])
	}
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
