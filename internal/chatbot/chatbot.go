// Package chatbot runs the website assistant: a short guided conversation
// that collects a visitor's name, interest and email, then answers common
// questions by keyword or, when configured, through an AI responder.
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrEmptyMessage is returned for blank visitor messages.
var ErrEmptyMessage = errors.New("message is required")

// Responder answers free-text questions once the guided flow is done.
type Responder interface {
	Respond(ctx context.Context, history []Turn, message string) (string, error)
}

// Lead is the contact a visitor left through the guided flow.
type Lead struct {
	SessionID string
	Name      string
	Email     string
	Interest  string
}

// LeadSink records leads, e.g. as contact messages for the sales team.
type LeadSink interface {
	SaveLead(ctx context.Context, lead Lead) error
}

// Lead fields are stored as a contact message and capped to its columns.
const (
	maxNameLen     = 150
	maxEmailLen    = 191
	maxInterestLen = 500
)

// Reply is the answer to one visitor message.
type Reply struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
	Step      Step   `json:"step"`
}

type Service struct {
	store      SessionStore
	responder  Responder
	leads      LeadSink
	validate   *validator.Validate
	maxHistory int
	now        func() time.Time
}

// NewService builds the assistant. responder and leads may be nil.
func NewService(store SessionStore, responder Responder, leads LeadSink) *Service {
	return &Service{
		store:      store,
		responder:  responder,
		leads:      leads,
		validate:   validator.New(),
		maxHistory: 20,
		now:        time.Now,
	}
}

// Reply advances the conversation of sessionID with message. An empty or
// unknown sessionID starts a new session.
func (s *Service) Reply(ctx context.Context, sessionID, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	// 1. Load or start the session. A restart drops the old one.
	var sess *Session
	if sessionID != "" {
		loaded, err := s.store.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if loaded != nil && isRestart(message) {
			if err := s.store.Delete(ctx, loaded.ID); err != nil {
				return nil, err
			}
			loaded = nil
		}
		sess = loaded
	}
	if sess == nil {
		sess = &Session{ID: uuid.New().String(), Step: StepGreeting}
	}

	// 2. Compute the answer and advance the step.
	answer := s.advance(ctx, sess, message)

	// 3. Remember the exchange.
	sess.History = append(sess.History, Turn{Role: RoleUser, Text: message}, Turn{Role: RoleBot, Text: answer})
	if len(sess.History) > s.maxHistory {
		sess.History = sess.History[len(sess.History)-s.maxHistory:]
	}
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	return &Reply{SessionID: sess.ID, Reply: answer, Step: sess.Step}, nil
}

func (s *Service) advance(ctx context.Context, sess *Session, message string) string {
	lower := strings.ToLower(message)
	if isRestart(message) {
		sess.Step = StepName
		return "Let's start over. May I have your name?"
	}

	switch sess.Step {
	case StepGreeting:
		sess.Step = StepName
		if answer, ok := keywordAnswer(lower); ok {
			return answer + "\n\nBefore we go on, may I have your name?"
		}
		return "Hello! Welcome to our calibration equipment assistant. May I have your name?"

	case StepName:
		sess.Name = truncate(message, maxNameLen)
		sess.Step = StepInterest
		return fmt.Sprintf("Nice to meet you, %s. Which instruments are you interested in (pressure, temperature, electrical...)?", sess.Name)

	case StepInterest:
		sess.Interest = truncate(message, maxInterestLen)
		sess.Step = StepEmail
		return "Thanks! What email address can our sales engineers reach you at?"

	case StepEmail:
		if err := s.validate.Var(message, fmt.Sprintf("required,email,max=%d", maxEmailLen)); err != nil {
			return "That doesn't look like a valid email address. Could you check it and send it again?"
		}
		sess.Email = message
		sess.Step = StepDone
		if s.leads != nil {
			lead := Lead{SessionID: sess.ID, Name: sess.Name, Email: sess.Email, Interest: sess.Interest}
			if err := s.leads.SaveLead(ctx, lead); err != nil {
				log.Printf("Chatbot: failed to save lead for session %s: %v", sess.ID, err)
			}
		}
		return fmt.Sprintf("Thank you, %s! Our team will contact you at %s about %s. Meanwhile, feel free to ask me anything.",
			sess.Name, sess.Email, sess.Interest)
	}

	// StepDone: keywords first, then the AI responder if there is one.
	if answer, ok := keywordAnswer(lower); ok {
		return answer
	}
	if s.responder != nil {
		answer, err := s.responder.Respond(ctx, sess.History, message)
		if err == nil && strings.TrimSpace(answer) != "" {
			return strings.TrimSpace(answer)
		}
		if err != nil {
			log.Printf("Chatbot: responder failed: %v", err)
		}
	}
	return "I'm not sure about that one. A sales engineer will follow up by email, or you can use the contact form for anything urgent."
}

func isRestart(message string) bool {
	lower := strings.ToLower(message)
	return lower == "restart" || lower == "reset"
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

var keywordAnswers = []struct {
	keywords []string
	answer   string
}{
	{[]string{"quote", "price", "pricing", "cost"},
		"For pricing, add products to your quote list from the catalog and submit the quote form. We usually reply within one business day."},
	{[]string{"catalog", "brochure", "datasheet", "pdf"},
		"Each product page has a downloadable catalog or datasheet when one is available."},
	{[]string{"calibration service", "certificate", "accredited", "iso"},
		"Our calibration laboratory issues traceable certificates. Tell us the instrument and range through the contact form and we'll plan the service."},
	{[]string{"job", "career", "vacanc", "hiring"},
		"Open positions are listed on the careers page, where you can also upload your resume."},
	{[]string{"hours", "open", "address", "location", "where are you"},
		"Our office is open Monday to Friday, 9:00-18:00. The address and map are on the contact page."},
	{[]string{"contact", "phone", "call", "whatsapp"},
		"You can reach us through the contact form, and our team also answers on WhatsApp during office hours."},
}

func keywordAnswer(lower string) (string, bool) {
	for _, k := range keywordAnswers {
		for _, kw := range k.keywords {
			if strings.Contains(lower, kw) {
				return k.answer, true
			}
		}
	}
	return "", false
}
