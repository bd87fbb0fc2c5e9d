// Package validation содержит функции валидации входных данных.
package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/studio-shifts/internal/model"
)

// DateLayout формат дат в запросах.
const DateLayout = "2006-01-02"

// maxAmountScale число знаков после запятой, допустимое в сумме дохода.
const maxAmountScale = 2

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidPauseType = errors.New("invalid pause type")
	ErrInvalidID        = errors.New("invalid id")
)

// ParseAmount разбирает неотрицательную сумму не более чем с двумя знаками после запятой.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, s)
	}
	if !d.Equal(d.Truncate(maxAmountScale)) {
		return decimal.Zero, fmt.Errorf("%w: %s has more than %d decimals", ErrInvalidAmount, s, maxAmountScale)
	}
	return d, nil
}

// ParseDate разбирает дату в формате YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// ParseDateOr разбирает дату или возвращает def, если строка пустая.
func ParseDateOr(s string, def time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return ParseDate(s)
}

// ParseDateRange разбирает период и проверяет, что начало не позже конца.
func ParseDateRange(from, to string) (time.Time, time.Time, error) {
	f, err := ParseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	t, err := ParseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if f.After(t) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s is after %s", ErrInvalidDate, from, to)
	}
	return f, t, nil
}

// ParsePauseType разбирает вид паузы без учёта регистра: break, meal или coaching.
func ParsePauseType(s string) (model.PauseType, error) {
	t := model.PauseType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPauseType, s)
	}
	return t, nil
}

// ParseID разбирает положительный идентификатор.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}
