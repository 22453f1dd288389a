package transfer

import (
	"github.com/shopspring/decimal"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
)

// FeeFor prices a transfer by method, in minor units. International fees
// are a percentage of the amount clamped to the configured floor and
// ceiling; card fees are a percentage with a ceiling only; domestic and
// mobile transfers carry a flat fee.
func (s *Service) FeeFor(method domain.TransferMethod, amount int64) int64 {
	switch method {
	case domain.TransferMethodInternational:
		fee := pctOf(amount, s.config.FeeIntlPct)
		if fee < s.config.FeeIntlMin {
			return s.config.FeeIntlMin
		}
		if fee > s.config.FeeIntlMax {
			return s.config.FeeIntlMax
		}
		return fee
	case domain.TransferMethodCard:
		fee := pctOf(amount, s.config.FeeCardPct)
		if fee > s.config.FeeCardMax {
			return s.config.FeeCardMax
		}
		return fee
	case domain.TransferMethodMobile:
		return s.config.FeeMobile
	default:
		return s.config.FeeDomestic
	}
}

// pctOf truncates toward zero so fees never round up against the customer.
func pctOf(amount int64, pct float64) int64 {
	return decimal.NewFromInt(amount).Mul(decimal.NewFromFloat(pct)).IntPart()
}
