package fx

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
)

type Quote struct {
	FromCurrency  domain.Currency
	ToCurrency    domain.Currency
	MidMarketRate decimal.Decimal
	EffectiveRate decimal.Decimal
	SpreadPct     decimal.Decimal
}

type Conversion struct {
	SourceAmount int64
	DestAmount   int64
	ExchangeRate decimal.Decimal
}

// RateService backs the customer exchange screen. Rates are a static
// table; the spread is the bank's margin off mid-market.
type RateService struct {
	rates     map[string]decimal.Decimal
	spreadPct decimal.Decimal
}

func NewRateService(spreadPct float64) *RateService {
	return &RateService{
		spreadPct: decimal.NewFromFloat(spreadPct),
		rates: map[string]decimal.Decimal{
			"USD_EUR": decimal.NewFromFloat(0.92),
			"EUR_USD": decimal.NewFromFloat(1.087),
			"USD_GBP": decimal.NewFromFloat(0.79),
			"GBP_USD": decimal.NewFromFloat(1.266),
			"EUR_GBP": decimal.NewFromFloat(0.858),
			"GBP_EUR": decimal.NewFromFloat(1.166),
		},
	}
}

func pairKey(from, to domain.Currency) string {
	return string(from) + "_" + string(to)
}

func (s *RateService) GetRate(_ context.Context, from, to domain.Currency) (*Quote, error) {
	if !from.IsValid() || !to.IsValid() {
		return nil, fmt.Errorf("GetRate: invalid currency pair %s/%s: %w", from, to, domain.ErrInvalidCurrency)
	}

	if from == to {
		return &Quote{
			FromCurrency:  from,
			ToCurrency:    to,
			MidMarketRate: decimal.NewFromInt(1),
			EffectiveRate: decimal.NewFromInt(1),
			SpreadPct:     decimal.Zero,
		}, nil
	}

	mid, ok := s.rates[pairKey(from, to)]
	if !ok {
		return nil, fmt.Errorf("GetRate: unsupported pair %s/%s: %w", from, to, domain.ErrInvalidCurrency)
	}

	effective := mid.Mul(decimal.NewFromInt(1).Sub(s.spreadPct))

	return &Quote{
		FromCurrency:  from,
		ToCurrency:    to,
		MidMarketRate: mid,
		EffectiveRate: effective,
		SpreadPct:     s.spreadPct,
	}, nil
}

// Convert prices an amount in minor units at the effective rate,
// truncating toward zero so the bank never over-credits.
func (s *RateService) Convert(ctx context.Context, amount int64, from, to domain.Currency) (*Conversion, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("Convert: %w", domain.ErrInvalidAmount)
	}

	quote, err := s.GetRate(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("Convert: %w", err)
	}

	dest := decimal.NewFromInt(amount).Mul(quote.EffectiveRate).IntPart()

	return &Conversion{
		SourceAmount: amount,
		DestAmount:   dest,
		ExchangeRate: quote.EffectiveRate,
	}, nil
}
