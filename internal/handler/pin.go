package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/WorldBankfinancials/ledger-api/internal/auth"
	"github.com/WorldBankfinancials/ledger-api/internal/logging"
)

type pinService interface {
	SetTransferPin(ctx context.Context, userID uuid.UUID, password, pin string) error
	VerifyTransferPin(ctx context.Context, userID uuid.UUID, pin string) error
}

type PinHandler struct {
	pins pinService
}

func NewPinHandler(pins pinService) *PinHandler {
	return &PinHandler{pins: pins}
}

type setPinRequest struct {
	Password string `json:"password"`
	Pin      string `json:"pin"`
}

type verifyPinRequest struct {
	Pin string `json:"pin"`
}

// Set establishes or rotates the caller's transfer PIN.
func (h *PinHandler) Set(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req setPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	var fields []FieldError
	if req.Password == "" {
		fields = append(fields, FieldError{Field: "password", Message: "required"})
	}
	if req.Pin == "" {
		fields = append(fields, FieldError{Field: "pin", Message: "required"})
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	if err := h.pins.SetTransferPin(r.Context(), userID, req.Password, req.Pin); err != nil {
		log.Warn("pin update failed", "user_id", userID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]bool{"pin_set": true})
}

// Verify lets the UI pre-check a PIN before presenting a transfer
// confirmation screen. The transfer endpoint re-verifies regardless.
func (h *PinHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req verifyPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if req.Pin == "" {
		RespondValidationError(w, []FieldError{{Field: "pin", Message: "required"}})
		return
	}

	if err := h.pins.VerifyTransferPin(r.Context(), userID, req.Pin); err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]bool{"verified": true})
}
