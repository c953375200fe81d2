// Package contact validates and stores contact form submissions
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/terra-clan/portfolio/internal/models"
)

// Messages shown to the visitor
const (
	MessageSuccess  = "Message sent successfully! I'll get back to you soon."
	MessageFailure  = "Please fix the errors above."
	MessageRequired = "This field is required"
	MessageEmail    = "Please enter a valid email address"
	MessageTooShort = "Message must be at least 10 characters long"
)

// MinMessageLength is the shortest accepted message, in characters
const MinMessageLength = 10

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError carries the per-field problems of a rejected submission
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid contact form: " + strings.Join(parts, "; ")
}

// Validate checks a submission. Values are trimmed before checking. Each
// field reports at most one error; the last failing rule wins.
func Validate(req models.ContactRequest) []models.FieldError {
	var errs []models.FieldError

	check := func(field, value string, required, email, message bool) {
		value = strings.TrimSpace(value)
		msg := ""
		if required && value == "" {
			msg = MessageRequired
		}
		if email && value != "" && !emailPattern.MatchString(value) {
			msg = MessageEmail
		}
		if message && utf8.RuneCountInString(value) < MinMessageLength {
			msg = MessageTooShort
		}
		if msg != "" {
			errs = append(errs, models.FieldError{Field: field, Message: msg})
		}
	}

	check("name", req.Name, true, false, false)
	check("email", req.Email, true, true, false)
	check("subject", req.Subject, false, false, false)
	check("message", req.Message, true, false, true)

	return errs
}

// Repository stores accepted messages
type Repository interface {
	SaveContactMessage(ctx context.Context, msg *models.ContactMessage) error
}

// ViewTracker records the submission as a visitor interaction
type ViewTracker interface {
	TrackView(ctx context.Context, visitorID, viewID string) (bool, error)
}

// Service accepts contact form submissions
type Service struct {
	repo    Repository
	tracker ViewTracker
	now     func() time.Time
}

// NewService creates a contact service. tracker may be nil.
func NewService(repo Repository, tracker ViewTracker) *Service {
	return &Service{
		repo:    repo,
		tracker: tracker,
		now:     time.Now,
	}
}

// Submit validates and stores a submission. Invalid input returns a
// *ValidationError.
func (s *Service) Submit(ctx context.Context, visitorID string, req models.ContactRequest) (*models.ContactMessage, error) {
	if errs := Validate(req); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	msg := &models.ContactMessage{
		ID:        uuid.New().String(),
		VisitorID: visitorID,
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Subject:   strings.TrimSpace(req.Subject),
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.SaveContactMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save contact message: %w", err)
	}

	slog.Info("contact message received", "id", msg.ID, "visitor", visitorID)

	if s.tracker != nil && visitorID != "" {
		if _, err := s.tracker.TrackView(ctx, visitorID, models.ViewContactSubmit); err != nil {
			slog.Warn("failed to track contact submission", "error", err, "visitor", visitorID)
		}
	}

	return msg, nil
}

// AsValidationError unwraps a *ValidationError
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
