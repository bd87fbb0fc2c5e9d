// Package compensation рассчитывает денежные показатели завершённой смены:
// пересчёт дохода в местную валюту, комиссию, долю модели и штрафы.
package compensation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/studio-shifts/internal/exchange"
	"github.com/mmeshcher/studio-shifts/internal/model"
)

// ErrRateUnavailable возвращается, если курс на дату смены получить не удалось.
var ErrRateUnavailable = exchange.ErrRateUnavailable

var hundred = decimal.NewFromInt(100)

// RateProvider возвращает курс иностранной валюты к местной на дату.
type RateProvider interface {
	RateFor(ctx context.Context, date time.Time) (decimal.Decimal, error)
}

// Input содержит исходные данные расчёта.
type Input struct {
	Date                  time.Time
	GainForeign           decimal.Decimal
	FeePercentage         decimal.Decimal
	WorkerSharePercentage decimal.Decimal
	LatePenalty           decimal.Decimal
	AbsencePenalty        decimal.Decimal
}

// InputFor собирает Input из смены и текущих параметров агентства.
func InputFor(s *model.WorkSession, agency model.Agency, gainForeign decimal.Decimal) Input {
	return Input{
		Date:                  s.Date,
		GainForeign:           gainForeign,
		FeePercentage:         agency.FeePercentage,
		WorkerSharePercentage: agency.WorkerSharePercentage,
		LatePenalty:           s.LatePenalty,
		AbsencePenalty:        s.AbsencePenalty,
	}
}

// Result содержит результат расчёта вместе со снимком использованных процентов.
type Result struct {
	GainForeign           decimal.Decimal
	ExchangeRate          decimal.Decimal
	GainLocal             decimal.Decimal
	FeePercentage         decimal.Decimal
	WorkerSharePercentage decimal.Decimal
	FeeAmount             decimal.Decimal
	AfterFee              decimal.Decimal
	WorkerShare           decimal.Decimal
	Penalties             decimal.Decimal
	WorkerNet             decimal.Decimal
}

// Engine выполняет расчёт с получением курса через RateProvider.
type Engine struct {
	rates RateProvider
}

// NewEngine создаёт Engine с указанным источником курсов.
func NewEngine(rates RateProvider) *Engine {
	return &Engine{rates: rates}
}

// Compute получает курс на дату смены и рассчитывает показатели.
// При недоступности курса возвращает ошибку, оборачивающую ErrRateUnavailable.
func (e *Engine) Compute(ctx context.Context, in Input) (Result, error) {
	if e == nil || e.rates == nil {
		return Result{}, fmt.Errorf("%w: no rate provider", ErrRateUnavailable)
	}

	rate, err := e.rates.RateFor(ctx, in.Date)
	if err != nil {
		if errors.Is(err, ErrRateUnavailable) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %w", ErrRateUnavailable, err)
	}
	if !rate.IsPositive() {
		return Result{}, fmt.Errorf("%w: non-positive rate %s", ErrRateUnavailable, rate)
	}

	return Calculate(in, rate), nil
}

// Calculate выполняет расчёт при известном курсе. Промежуточные значения не округляются.
func Calculate(in Input, rate decimal.Decimal) Result {
	local := in.GainForeign.Mul(rate)
	fee := local.Mul(in.FeePercentage).Div(hundred)
	afterFee := local.Sub(fee)
	share := afterFee.Mul(in.WorkerSharePercentage).Div(hundred)
	penalties := in.LatePenalty.Add(in.AbsencePenalty)

	return Result{
		GainForeign:           in.GainForeign,
		ExchangeRate:          rate,
		GainLocal:             local,
		FeePercentage:         in.FeePercentage,
		WorkerSharePercentage: in.WorkerSharePercentage,
		FeeAmount:             fee,
		AfterFee:              afterFee,
		WorkerShare:           share,
		Penalties:             penalties,
		WorkerNet:             share.Sub(penalties),
	}
}

// Apply записывает результат и снимок процентов в смену.
func (r Result) Apply(s *model.WorkSession) {
	s.GainForeign = decimal.NewNullDecimal(r.GainForeign)
	s.GainLocal = r.GainLocal
	s.ExchangeRate = decimal.NewNullDecimal(r.ExchangeRate)
	s.FeePercentage = decimal.NewNullDecimal(r.FeePercentage)
	s.WorkerSharePercentage = decimal.NewNullDecimal(r.WorkerSharePercentage)
	s.FeeAmount = r.FeeAmount
	s.WorkerNet = r.WorkerNet
}

// Clear сбрасывает показатели, полученные при завершении смены.
func Clear(s *model.WorkSession) {
	s.GainForeign = decimal.NullDecimal{}
	s.GainLocal = decimal.Zero
	s.ExchangeRate = decimal.NullDecimal{}
	s.FeePercentage = decimal.NullDecimal{}
	s.WorkerSharePercentage = decimal.NullDecimal{}
	s.FeeAmount = decimal.Zero
	s.WorkerNet = decimal.Zero
}
