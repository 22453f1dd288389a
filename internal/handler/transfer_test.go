package handler

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func validInternationalRequest() createTransferRequest {
	return createTransferRequest{
		SourceAccountID:  uuid.NewString(),
		Method:           "international",
		Amount:           250_000,
		Currency:         "USD",
		Purpose:          "invoice",
		TransferPin:      "1234",
		RecipientName:    "Jane Roe",
		RecipientAccount: "DE89370400440532013000",
		RecipientBank:    "Deutsche Bank",
		RecipientCountry: "DE",
		RecipientAddress: "Taunusanlage 12, Frankfurt",
		SwiftCode:        "DEUTDEFF",
	}
}

func fieldNames(errs []FieldError) []string {
	if len(errs) == 0 {
		return nil
	}
	names := make([]string, len(errs))
	for i, e := range errs {
		names[i] = e.Field
	}
	return names
}

func TestCreateTransferRequest_Validate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*createTransferRequest)
		wantFields []string
	}{
		{
			name:   "valid international",
			mutate: func(r *createTransferRequest) {},
		},
		{
			name: "missing source account",
			mutate: func(r *createTransferRequest) {
				r.SourceAccountID = ""
			},
			wantFields: []string{"source_account_id"},
		},
		{
			name: "source account not a uuid",
			mutate: func(r *createTransferRequest) {
				r.SourceAccountID = "acct-1"
			},
			wantFields: []string{"source_account_id"},
		},
		{
			name: "unknown method",
			mutate: func(r *createTransferRequest) {
				r.Method = "wire"
			},
			wantFields: []string{"method"},
		},
		{
			name: "zero amount",
			mutate: func(r *createTransferRequest) {
				r.Amount = 0
			},
			wantFields: []string{"amount"},
		},
		{
			name: "unsupported currency",
			mutate: func(r *createTransferRequest) {
				r.Currency = "NGN"
			},
			wantFields: []string{"currency"},
		},
		{
			name: "missing pin",
			mutate: func(r *createTransferRequest) {
				r.TransferPin = ""
			},
			wantFields: []string{"transfer_pin"},
		},
		{
			name: "international missing swift and country",
			mutate: func(r *createTransferRequest) {
				r.SwiftCode = ""
				r.RecipientCountry = ""
			},
			wantFields: []string{"recipient_country", "swift_code"},
		},
		{
			name: "domestic requires routing number",
			mutate: func(r *createTransferRequest) {
				r.Method = "domestic"
				r.RoutingNumber = ""
			},
			wantFields: []string{"routing_number"},
		},
		{
			name: "domestic with routing number is valid",
			mutate: func(r *createTransferRequest) {
				r.Method = "domestic"
				r.RoutingNumber = "021000021"
			},
		},
		{
			name: "card requires card number",
			mutate: func(r *createTransferRequest) {
				r.Method = "card"
			},
			wantFields: []string{"card_number"},
		},
		{
			name: "mobile requires provider",
			mutate: func(r *createTransferRequest) {
				r.Method = "mobile"
			},
			wantFields: []string{"mobile_provider"},
		},
		{
			name: "empty request reports every base field",
			mutate: func(r *createTransferRequest) {
				*r = createTransferRequest{}
			},
			wantFields: []string{"source_account_id", "method", "amount", "currency", "transfer_pin", "recipient_name"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validInternationalRequest()
			tc.mutate(&req)

			errs := req.Validate()
			assert.Equal(t, tc.wantFields, fieldNames(errs))
		})
	}
}
