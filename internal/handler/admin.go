package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/WorldBankfinancials/ledger-api/internal/auth"
	"github.com/WorldBankfinancials/ledger-api/internal/domain"
	"github.com/WorldBankfinancials/ledger-api/internal/logging"
)

type approvalService interface {
	ListPending(ctx context.Context, limit, offset int) ([]domain.Transaction, error)
	Approve(ctx context.Context, transactionID, adminID uuid.UUID, notes string) (*domain.Transaction, error)
	Reject(ctx context.Context, transactionID, adminID uuid.UUID, notes string) (*domain.Transaction, error)
}

type fundsService interface {
	AdjustBalance(ctx context.Context, accountID, adminID uuid.UUID, amount int64, description string) (*domain.Account, *domain.Transaction, error)
}

type customerAdminService interface {
	ListCustomers(ctx context.Context, limit, offset int) ([]domain.User, int, error)
	VerifyCustomer(ctx context.Context, customerID, adminID uuid.UUID, verified bool) error
}

type AdminHandler struct {
	approvals approvalService
	funds     fundsService
	customers customerAdminService
}

func NewAdminHandler(approvals approvalService, funds fundsService, customers customerAdminService) *AdminHandler {
	return &AdminHandler{approvals: approvals, funds: funds, customers: customers}
}

func adminFromContext(r *http.Request) (uuid.UUID, *AppError) {
	adminID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, ErrMissingToken
	}
	role, ok := auth.RoleFromContext(r.Context())
	if !ok || role != domain.UserRoleAdmin {
		return uuid.Nil, ErrAdminRequired
	}
	return adminID, nil
}

func (h *AdminHandler) ListPendingTransfers(w http.ResponseWriter, r *http.Request) {
	if _, appErr := adminFromContext(r); appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	limit, offset := parsePagination(r)
	txns, err := h.approvals.ListPending(r.Context(), limit, offset)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"transfers": toTransferDTOs(txns),
		"limit":     limit,
		"offset":    offset,
	})
}

type reviewTransferRequest struct {
	Notes string `json:"notes"`
}

func (h *AdminHandler) ApproveTransfer(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	adminID, appErr := adminFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	transferID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req reviewTransferRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondAppError(w, ErrInvalidRequest, nil)
			return
		}
	}

	txn, err := h.approvals.Approve(r.Context(), transferID, adminID, req.Notes)
	if err != nil {
		log.Warn("transfer approval failed", "transfer_id", transferID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransferDTO(txn))
}

func (h *AdminHandler) RejectTransfer(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	adminID, appErr := adminFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	transferID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req reviewTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	txn, err := h.approvals.Reject(r.Context(), transferID, adminID, req.Notes)
	if err != nil {
		log.Warn("transfer rejection failed", "transfer_id", transferID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransferDTO(txn))
}

type adjustBalanceRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

func (r adjustBalanceRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Amount == 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be non-zero"})
	}
	if r.Description == "" {
		errs = append(errs, FieldError{Field: "description", Message: "required"})
	}
	return errs
}

func (h *AdminHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	adminID, appErr := adminFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req adjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	acct, txn, err := h.funds.AdjustBalance(r.Context(), accountID, adminID, req.Amount, req.Description)
	if err != nil {
		log.Warn("balance adjustment failed", "account_id", accountID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"account":     toAccountDTO(acct),
		"transaction": toTransferDTO(txn),
	})
}

func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	if _, appErr := adminFromContext(r); appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	limit, offset := parsePagination(r)
	users, total, err := h.customers.ListCustomers(r.Context(), limit, offset)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]userDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"customers": dtos,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

type verifyCustomerRequest struct {
	Verified bool `json:"verified"`
}

func (h *AdminHandler) VerifyCustomer(w http.ResponseWriter, r *http.Request) {
	adminID, appErr := adminFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	customerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req verifyCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if err := h.customers.VerifyCustomer(r.Context(), customerID, adminID, req.Verified); err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]bool{"verified": req.Verified})
}
