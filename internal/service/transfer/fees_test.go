package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/WorldBankfinancials/ledger-api/internal/config"
	"github.com/WorldBankfinancials/ledger-api/internal/domain"
)

func newServiceWithConfig() *Service {
	return &Service{
		config: &config.Config{
			ApprovalThreshold: 1_000_000,
			FeeIntlPct:        0.01,
			FeeIntlMin:        2500,
			FeeIntlMax:        5000,
			FeeDomestic:       500,
			FeeCardPct:        0.015,
			FeeCardMax:        2000,
			FeeMobile:         200,
		},
	}
}

func TestFeeFor(t *testing.T) {
	svc := newServiceWithConfig()

	tests := []struct {
		name   string
		method domain.TransferMethod
		amount int64
		want   int64
	}{
		{"international small amount hits floor", domain.TransferMethodInternational, 10_000, 2500},
		{"international 1% in band", domain.TransferMethodInternational, 300_000, 3000},
		{"international large amount hits ceiling", domain.TransferMethodInternational, 1_500_000, 5000},
		{"international exactly at floor boundary", domain.TransferMethodInternational, 250_000, 2500},
		{"international exactly at ceiling boundary", domain.TransferMethodInternational, 500_000, 5000},
		{"card 1.5% under cap", domain.TransferMethodCard, 100_000, 1500},
		{"card capped", domain.TransferMethodCard, 1_000_000, 2000},
		{"card fee truncates toward zero", domain.TransferMethodCard, 99, 1},
		{"mobile flat", domain.TransferMethodMobile, 5_000_000, 200},
		{"domestic flat", domain.TransferMethodDomestic, 5_000_000, 500},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, svc.FeeFor(tc.method, tc.amount))
		})
	}
}
