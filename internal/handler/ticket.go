package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/WorldBankfinancials/ledger-api/internal/auth"
	"github.com/WorldBankfinancials/ledger-api/internal/domain"
	"github.com/WorldBankfinancials/ledger-api/internal/logging"
)

type ticketService interface {
	CreateTicket(ctx context.Context, userID uuid.UUID, subject, message string, priority domain.TicketPriority) (*domain.SupportTicket, error)
	ListUserTickets(ctx context.Context, userID uuid.UUID) ([]domain.SupportTicket, error)
	ListByStatus(ctx context.Context, status domain.TicketStatus, limit, offset int) ([]domain.SupportTicket, error)
	UpdateTicketStatus(ctx context.Context, ticketID, adminID uuid.UUID, status domain.TicketStatus) (*domain.SupportTicket, error)
}

type TicketHandler struct {
	tickets ticketService
}

func NewTicketHandler(tickets ticketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

type createTicketRequest struct {
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

func (r createTicketRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Subject == "" {
		errs = append(errs, FieldError{Field: "subject", Message: "required"})
	}
	if r.Message == "" {
		errs = append(errs, FieldError{Field: "message", Message: "required"})
	}
	switch domain.TicketPriority(r.Priority) {
	case "", domain.TicketPriorityLow, domain.TicketPriorityNormal, domain.TicketPriorityHigh:
	default:
		errs = append(errs, FieldError{Field: "priority", Message: "must be low, normal, or high"})
	}
	return errs
}

type ticketDTO struct {
	ID        uuid.UUID `json:"id"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toTicketDTO(t *domain.SupportTicket) ticketDTO {
	return ticketDTO{
		ID:        t.ID,
		Subject:   t.Subject,
		Message:   t.Message,
		Status:    string(t.Status),
		Priority:  string(t.Priority),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req createTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	ticket, err := h.tickets.CreateTicket(r.Context(), userID, req.Subject, req.Message, domain.TicketPriority(req.Priority))
	if err != nil {
		logging.FromContext(r.Context()).Warn("ticket creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toTicketDTO(ticket))
}

func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	tickets, err := h.tickets.ListUserTickets(r.Context(), userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]ticketDTO, len(tickets))
	for i := range tickets {
		dtos[i] = toTicketDTO(&tickets[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *TicketHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	if _, appErr := adminFromContext(r); appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	status := r.URL.Query().Get("status")
	if status == "" {
		status = string(domain.TicketStatusOpen)
	}
	if !domain.TicketStatus(status).IsValid() {
		RespondValidationError(w, []FieldError{{Field: "status", Message: "must be open, in_progress, resolved, or closed"}})
		return
	}

	limit, offset := parsePagination(r)
	tickets, err := h.tickets.ListByStatus(r.Context(), domain.TicketStatus(status), limit, offset)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]ticketDTO, len(tickets))
	for i := range tickets {
		dtos[i] = toTicketDTO(&tickets[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

type updateTicketRequest struct {
	Status string `json:"status"`
}

func (h *TicketHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	adminID, appErr := adminFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	ticketID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req updateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if !domain.TicketStatus(req.Status).IsValid() {
		RespondValidationError(w, []FieldError{{Field: "status", Message: "must be open, in_progress, resolved, or closed"}})
		return
	}

	ticket, err := h.tickets.UpdateTicketStatus(r.Context(), ticketID, adminID, domain.TicketStatus(req.Status))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTicketDTO(ticket))
}
