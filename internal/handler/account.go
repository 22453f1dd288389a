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

type accountService interface {
	CreateAccount(ctx context.Context, userID uuid.UUID, accountType domain.AccountType, currency domain.Currency) (*domain.Account, error)
	GetUserAccounts(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
	GetAccountForUser(ctx context.Context, accountID, userID uuid.UUID) (*domain.Account, error)
	GetStatement(ctx context.Context, accountID, userID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int, error)
}

type AccountHandler struct {
	accounts accountService
}

func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type createAccountRequest struct {
	AccountType string `json:"account_type"`
	Currency    string `json:"currency"`
}

func (r createAccountRequest) Validate() []FieldError {
	var errs []FieldError

	switch domain.AccountType(r.AccountType) {
	case domain.AccountTypeChecking, domain.AccountTypeSavings, domain.AccountTypeInvestment:
	case "":
		errs = append(errs, FieldError{Field: "account_type", Message: "required"})
	default:
		errs = append(errs, FieldError{Field: "account_type", Message: "must be checking, savings, or investment"})
	}

	if r.Currency == "" {
		errs = append(errs, FieldError{Field: "currency", Message: "required"})
	} else if !domain.Currency(r.Currency).IsValid() {
		errs = append(errs, FieldError{Field: "currency", Message: "must be USD, EUR, or GBP"})
	}

	return errs
}

type accountDTO struct {
	ID             uuid.UUID `json:"id"`
	AccountNumber  string    `json:"account_number"`
	AccountType    string    `json:"account_type"`
	Currency       string    `json:"currency"`
	Balance        int64     `json:"balance"`
	MinimumBalance int64     `json:"minimum_balance"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		ID:             a.ID,
		AccountNumber:  a.AccountNumber,
		AccountType:    string(a.AccountType),
		Currency:       string(a.Currency),
		Balance:        a.Balance,
		MinimumBalance: a.MinimumBalance,
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt,
	}
}

type ledgerEntryDTO struct {
	ID            uuid.UUID `json:"id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	EntryType     string    `json:"entry_type"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	acct, err := h.accounts.CreateAccount(r.Context(), userID, domain.AccountType(req.AccountType), domain.Currency(req.Currency))
	if err != nil {
		log.Warn("account creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(acct))
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	accounts, err := h.accounts.GetUserAccounts(r.Context(), userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	acct, err := h.accounts.GetAccountForUser(r.Context(), accountID, userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(acct))
}

// Statement lists the ledger entries behind an account's balance.
func (h *AccountHandler) Statement(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	limit, offset := parsePagination(r)
	entries, total, err := h.accounts.GetStatement(r.Context(), accountID, userID, limit, offset)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]ledgerEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = ledgerEntryDTO{
			ID:            e.ID,
			TransactionID: e.TransactionID,
			EntryType:     string(e.EntryType),
			Amount:        e.Amount,
			Currency:      string(e.Currency),
			BalanceBefore: e.BalanceBefore,
			BalanceAfter:  e.BalanceAfter,
			CreatedAt:     e.CreatedAt,
		}
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"entries": dtos,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}
