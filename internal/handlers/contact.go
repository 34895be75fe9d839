package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blendaura/api/internal/platform/httpx"
	"github.com/blendaura/api/internal/services"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactHandlers exposes the public contact form endpoint.
type ContactHandlers struct {
	contacts services.ContactService
}

// NewContactHandlers constructs a new ContactHandlers instance.
func NewContactHandlers(contacts services.ContactService) *ContactHandlers {
	return &ContactHandlers{contacts: contacts}
}

// Routes registers the /contact endpoints.
func (h *ContactHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.submit)
}

func (h *ContactHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.contacts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("contact_service_unavailable", "contact service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}

	message, err := h.contacts.Submit(ctx, services.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		writeContactError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, buildContactPayload(message))
}
