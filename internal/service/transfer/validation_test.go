package transfer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
)

func internationalRequest() Request {
	return Request{
		UserID:           uuid.New(),
		SourceAccountID:  uuid.New(),
		Method:           domain.TransferMethodInternational,
		Amount:           50_000,
		Currency:         domain.CurrencyUSD,
		TransferPin:      "1234",
		RecipientName:    "Jane Roe",
		RecipientAccount: "DE89370400440532013000",
		RecipientBank:    "Deutsche Bank",
		RecipientCountry: "DE",
		RecipientAddress: "Taunusanlage 12, Frankfurt",
		SwiftCode:        "DEUTDEFF",
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr error
	}{
		{
			name:   "valid international",
			mutate: func(r *Request) {},
		},
		{
			name:    "zero amount",
			mutate:  func(r *Request) { r.Amount = 0 },
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			mutate:  func(r *Request) { r.Amount = -1 },
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "unsupported currency",
			mutate:  func(r *Request) { r.Currency = "XYZ" },
			wantErr: domain.ErrInvalidCurrency,
		},
		{
			name:    "unknown method",
			mutate:  func(r *Request) { r.Method = "wire" },
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "missing recipient name",
			mutate:  func(r *Request) { r.RecipientName = "" },
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "international missing swift code",
			mutate:  func(r *Request) { r.SwiftCode = "" },
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "international missing recipient country",
			mutate:  func(r *Request) { r.RecipientCountry = "" },
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "domestic missing routing number",
			mutate: func(r *Request) {
				r.Method = domain.TransferMethodDomestic
				r.RoutingNumber = ""
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "domestic with routing number",
			mutate: func(r *Request) {
				r.Method = domain.TransferMethodDomestic
				r.RoutingNumber = "021000021"
			},
		},
		{
			name: "card missing card number",
			mutate: func(r *Request) {
				r.Method = domain.TransferMethodCard
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "card with card number",
			mutate: func(r *Request) {
				r.Method = domain.TransferMethodCard
				r.CardNumber = "4242424242424242"
			},
		},
		{
			name: "mobile missing provider",
			mutate: func(r *Request) {
				r.Method = domain.TransferMethodMobile
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "mobile with provider",
			mutate: func(r *Request) {
				r.Method = domain.TransferMethodMobile
				r.MobileProvider = "MTN"
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := internationalRequest()
			tc.mutate(&req)

			err := validateRequest(req)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}
