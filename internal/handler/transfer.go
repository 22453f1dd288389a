package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/WorldBankfinancials/ledger-api/internal/auth"
	"github.com/WorldBankfinancials/ledger-api/internal/domain"
	"github.com/WorldBankfinancials/ledger-api/internal/logging"
	"github.com/WorldBankfinancials/ledger-api/internal/service/transfer"
)

type transferService interface {
	CreateTransfer(ctx context.Context, req transfer.Request) (*domain.Transaction, error)
	GetTransferForUser(ctx context.Context, transferID, userID uuid.UUID) (*domain.Transaction, error)
	ListTransfersForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int, error)
}

type TransferHandler struct {
	transfers transferService
}

func NewTransferHandler(transfers transferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

type createTransferRequest struct {
	SourceAccountID string `json:"source_account_id"`
	Method          string `json:"method"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Purpose         string `json:"purpose"`
	TransferPin     string `json:"transfer_pin"`

	RecipientName    string `json:"recipient_name"`
	RecipientAccount string `json:"recipient_account"`
	RecipientBank    string `json:"recipient_bank"`
	RecipientCountry string `json:"recipient_country"`
	RecipientAddress string `json:"recipient_address"`
	SwiftCode        string `json:"swift_code"`
	RoutingNumber    string `json:"routing_number"`
	CardNumber       string `json:"card_number"`
	MobileProvider   string `json:"mobile_provider"`
}

func (r createTransferRequest) Validate() []FieldError {
	var errs []FieldError

	if r.SourceAccountID == "" {
		errs = append(errs, FieldError{Field: "source_account_id", Message: "required"})
	} else if _, err := uuid.Parse(r.SourceAccountID); err != nil {
		errs = append(errs, FieldError{Field: "source_account_id", Message: "must be a valid uuid"})
	}

	if r.Method == "" {
		errs = append(errs, FieldError{Field: "method", Message: "required"})
	} else if !domain.TransferMethod(r.Method).IsValid() {
		errs = append(errs, FieldError{Field: "method", Message: "must be international, domestic, card, or mobile"})
	}

	if r.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}

	if r.Currency == "" {
		errs = append(errs, FieldError{Field: "currency", Message: "required"})
	} else if !domain.Currency(r.Currency).IsValid() {
		errs = append(errs, FieldError{Field: "currency", Message: "must be USD, EUR, or GBP"})
	}

	if r.TransferPin == "" {
		errs = append(errs, FieldError{Field: "transfer_pin", Message: "required"})
	}

	if r.RecipientName == "" {
		errs = append(errs, FieldError{Field: "recipient_name", Message: "required"})
	}

	switch domain.TransferMethod(r.Method) {
	case domain.TransferMethodInternational:
		if r.RecipientAccount == "" {
			errs = append(errs, FieldError{Field: "recipient_account", Message: "required"})
		}
		if r.RecipientBank == "" {
			errs = append(errs, FieldError{Field: "recipient_bank", Message: "required"})
		}
		if r.RecipientCountry == "" {
			errs = append(errs, FieldError{Field: "recipient_country", Message: "required"})
		}
		if r.RecipientAddress == "" {
			errs = append(errs, FieldError{Field: "recipient_address", Message: "required"})
		}
		if r.SwiftCode == "" {
			errs = append(errs, FieldError{Field: "swift_code", Message: "required"})
		}
	case domain.TransferMethodDomestic:
		if r.RecipientAccount == "" {
			errs = append(errs, FieldError{Field: "recipient_account", Message: "required"})
		}
		if r.RoutingNumber == "" {
			errs = append(errs, FieldError{Field: "routing_number", Message: "required"})
		}
	case domain.TransferMethodCard:
		if r.CardNumber == "" {
			errs = append(errs, FieldError{Field: "card_number", Message: "required"})
		}
	case domain.TransferMethodMobile:
		if r.RecipientAccount == "" {
			errs = append(errs, FieldError{Field: "recipient_account", Message: "required"})
		}
		if r.MobileProvider == "" {
			errs = append(errs, FieldError{Field: "mobile_provider", Message: "required"})
		}
	}

	return errs
}

type transferDTO struct {
	ID              uuid.UUID  `json:"id"`
	Reference       string     `json:"reference"`
	SourceAccountID uuid.UUID  `json:"source_account_id"`
	Type            string     `json:"type"`
	Method          *string    `json:"method,omitempty"`
	Status          string     `json:"status"`
	Amount          int64      `json:"amount"`
	Fee             int64      `json:"fee"`
	Total           int64      `json:"total"`
	Currency        string     `json:"currency"`
	Purpose         string     `json:"purpose"`
	Description     *string    `json:"description,omitempty"`
	RecipientName   *string    `json:"recipient_name,omitempty"`
	AdminNotes      *string    `json:"admin_notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

func toTransferDTO(t *domain.Transaction) transferDTO {
	dto := transferDTO{
		ID:              t.ID,
		Reference:       t.Reference,
		SourceAccountID: t.SourceAccountID,
		Type:            string(t.Type),
		Status:          string(t.Status),
		Amount:          t.Amount,
		Fee:             t.Fee,
		Total:           t.Total,
		Currency:        string(t.Currency),
		Purpose:         t.Purpose,
		Description:     t.Description,
		RecipientName:   t.RecipientName,
		AdminNotes:      t.AdminNotes,
		CreatedAt:       t.CreatedAt,
		CompletedAt:     t.CompletedAt,
	}
	if t.Method != nil {
		m := string(*t.Method)
		dto.Method = &m
	}
	return dto
}

func toTransferDTOs(txns []domain.Transaction) []transferDTO {
	dtos := make([]transferDTO, len(txns))
	for i := range txns {
		dtos[i] = toTransferDTO(&txns[i])
	}
	return dtos
}

func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req createTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	sourceAccountID, _ := uuid.Parse(req.SourceAccountID)
	txn, err := h.transfers.CreateTransfer(r.Context(), transfer.Request{
		UserID:           userID,
		SourceAccountID:  sourceAccountID,
		Method:           domain.TransferMethod(req.Method),
		Amount:           req.Amount,
		Currency:         domain.Currency(req.Currency),
		Purpose:          req.Purpose,
		TransferPin:      req.TransferPin,
		RecipientName:    req.RecipientName,
		RecipientAccount: req.RecipientAccount,
		RecipientBank:    req.RecipientBank,
		RecipientCountry: req.RecipientCountry,
		RecipientAddress: req.RecipientAddress,
		SwiftCode:        req.SwiftCode,
		RoutingNumber:    req.RoutingNumber,
		CardNumber:       req.CardNumber,
		MobileProvider:   req.MobileProvider,
	})
	if err != nil {
		log.Warn("transfer creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/transfers/%s", txn.ID))
	RespondSuccess(w, http.StatusCreated, toTransferDTO(txn))
}

func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	transferID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	txn, err := h.transfers.GetTransferForUser(r.Context(), transferID, userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransferDTO(txn))
}

func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	limit, offset := parsePagination(r)
	txns, total, err := h.transfers.ListTransfersForUser(r.Context(), userID, limit, offset)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"transfers": toTransferDTOs(txns),
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func parsePagination(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = min(n, maxPageLimit)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
