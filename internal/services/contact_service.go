package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	domain "github.com/blendaura/api/internal/domain"
	"github.com/blendaura/api/internal/repositories"
)

const (
	contactIDPrefix  = "msg_"
	maxMessageLength = 5000
)

var (
	// ErrContactInvalidInput signals the caller provided invalid data.
	ErrContactInvalidInput = errors.New("contact: invalid input")
	// ErrContactForbidden indicates the caller may not read submissions.
	ErrContactForbidden = errors.New("contact: forbidden")
	// ErrContactUnavailable indicates a transient backend failure.
	ErrContactUnavailable = errors.New("contact: unavailable")
)

// ContactServiceDeps bundles collaborators required to construct the contact service.
type ContactServiceDeps struct {
	Contacts    repositories.ContactRepository
	Clock       func() time.Time
	IDGenerator func() string
}

type contactService struct {
	contacts  repositories.ContactRepository
	sanitizer *bluemonday.Policy
	clock     func() time.Time
	newID     func() string
}

// NewContactService validates dependencies and returns a ContactService.
func NewContactService(deps ContactServiceDeps) (ContactService, error) {
	if deps.Contacts == nil {
		return nil, errors.New("contact service: contact repository is required")
	}
	service := &contactService{
		contacts:  deps.Contacts,
		sanitizer: bluemonday.StrictPolicy(),
		clock:     deps.Clock,
		newID:     deps.IDGenerator,
	}
	if service.clock == nil {
		service.clock = func() time.Time { return time.Now().UTC() }
	}
	if service.newID == nil {
		service.newID = func() string { return contactIDPrefix + ulid.Make().String() }
	}
	return service, nil
}

// Submit sanitises and stores a contact form submission. Public.
func (s *contactService) Submit(ctx context.Context, input ContactInput) (domain.ContactMessage, error) {
	name := strings.TrimSpace(s.sanitizer.Sanitize(input.Name))
	email := strings.TrimSpace(input.Email)
	body := strings.TrimSpace(s.sanitizer.Sanitize(input.Message))

	if name == "" {
		return domain.ContactMessage{}, fmt.Errorf("%w: name is required", ErrContactInvalidInput)
	}
	if !emailPattern.MatchString(email) {
		return domain.ContactMessage{}, fmt.Errorf("%w: invalid email address", ErrContactInvalidInput)
	}
	if body == "" {
		return domain.ContactMessage{}, fmt.Errorf("%w: message is required", ErrContactInvalidInput)
	}
	if len(body) > maxMessageLength {
		return domain.ContactMessage{}, fmt.Errorf("%w: message exceeds %d characters", ErrContactInvalidInput, maxMessageLength)
	}

	message := domain.ContactMessage{
		ID:        s.newID(),
		Name:      name,
		Email:     email,
		Message:   body,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.contacts.Insert(ctx, message); err != nil {
		if repositories.IsUnavailable(err) {
			return domain.ContactMessage{}, fmt.Errorf("%w: %v", ErrContactUnavailable, err)
		}
		return domain.ContactMessage{}, err
	}
	return message, nil
}

// List returns all submissions, newest first. Admin only.
func (s *contactService) List(ctx context.Context, caller Caller) ([]domain.ContactMessage, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", ErrContactForbidden)
	}
	messages, err := s.contacts.List(ctx)
	if err != nil {
		if repositories.IsUnavailable(err) {
			return nil, fmt.Errorf("%w: %v", ErrContactUnavailable, err)
		}
		return nil, err
	}
	return messages, nil
}
