package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domain "github.com/blendaura/api/internal/domain"
)

type stubContactRepo struct {
	insertFn func(ctx context.Context, message domain.ContactMessage) error
	listFn   func(ctx context.Context) ([]domain.ContactMessage, error)
}

func (s *stubContactRepo) Insert(ctx context.Context, message domain.ContactMessage) error {
	if s.insertFn == nil {
		return errors.New("unexpected Insert call")
	}
	return s.insertFn(ctx, message)
}

func (s *stubContactRepo) List(ctx context.Context) ([]domain.ContactMessage, error) {
	if s.listFn == nil {
		return nil, errors.New("unexpected List call")
	}
	return s.listFn(ctx)
}

func newTestContactService(t *testing.T, contacts *stubContactRepo) ContactService {
	t.Helper()
	svc, err := NewContactService(ContactServiceDeps{
		Contacts:    contacts,
		Clock:       func() time.Time { return fixedNow },
		IDGenerator: func() string { return "msg_TEST" },
	})
	if err != nil {
		t.Fatalf("NewContactService: %v", err)
	}
	return svc
}

func TestSubmitStripsMarkup(t *testing.T) {
	var stored domain.ContactMessage
	contacts := &stubContactRepo{
		insertFn: func(ctx context.Context, message domain.ContactMessage) error {
			stored = message
			return nil
		},
	}
	svc := newTestContactService(t, contacts)

	message, err := svc.Submit(context.Background(), ContactInput{
		Name:    `Asha <script>alert("x")</script>`,
		Email:   "asha@example.com",
		Message: "Hello <b>there</b>, is the rose butter back in stock?",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if strings.Contains(stored.Name, "<") || strings.Contains(stored.Message, "<") {
		t.Fatalf("markup survived sanitisation: %q / %q", stored.Name, stored.Message)
	}
	if !strings.Contains(stored.Message, "is the rose butter back in stock?") {
		t.Fatalf("message text lost: %q", stored.Message)
	}
	if message.ID != "msg_TEST" {
		t.Fatalf("id = %q, want msg_TEST", message.ID)
	}
}

func TestSubmitValidation(t *testing.T) {
	cases := []struct {
		name  string
		input ContactInput
	}{
		{"missing name", ContactInput{Email: "a@b.co", Message: "hi"}},
		{"markup-only name", ContactInput{Name: "<img src=x>", Email: "a@b.co", Message: "hi"}},
		{"bad email", ContactInput{Name: "A", Email: "nope", Message: "hi"}},
		{"missing message", ContactInput{Name: "A", Email: "a@b.co"}},
		{"oversized message", ContactInput{Name: "A", Email: "a@b.co", Message: strings.Repeat("x", maxMessageLength+1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestContactService(t, &stubContactRepo{})
			_, err := svc.Submit(context.Background(), tc.input)
			if !errors.Is(err, ErrContactInvalidInput) {
				t.Fatalf("err = %v, want ErrContactInvalidInput", err)
			}
		})
	}
}

func TestContactListRequiresAdmin(t *testing.T) {
	contacts := &stubContactRepo{
		listFn: func(ctx context.Context) ([]domain.ContactMessage, error) {
			return []domain.ContactMessage{{ID: "msg_1"}}, nil
		},
	}
	svc := newTestContactService(t, contacts)

	if _, err := svc.List(context.Background(), Caller{ID: "usr_1", Role: domain.RoleUser}); !errors.Is(err, ErrContactForbidden) {
		t.Fatalf("err = %v, want ErrContactForbidden", err)
	}

	messages, err := svc.List(context.Background(), adminCaller)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("len(messages) = %d, want 1", len(messages))
	}
}
