// Package exchange предоставляет клиент для внешнего сервиса курсов валют.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ErrRateUnavailable возвращается, если курс на дату получить не удалось.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// RateError описывает неуспешный ответ сервиса курсов.
type RateError struct {
	Date       time.Time
	StatusCode int
	RetryAfter time.Duration
}

func (e *RateError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("no exchange rate for %s: status %d, retry after %s",
			e.Date.Format(dateLayout), e.StatusCode, e.RetryAfter)
	}
	return fmt.Sprintf("no exchange rate for %s: status %d", e.Date.Format(dateLayout), e.StatusCode)
}

func (e *RateError) Unwrap() error {
	return ErrRateUnavailable
}

// Client инкапсулирует HTTP-взаимодействие с сервисом курсов валют.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Rate описывает ответ сервиса курсов на одну дату.
type Rate struct {
	Date string          `json:"date"`
	Rate decimal.Decimal `json:"rate"`
}

// NewClient создаёт HTTP-клиент для обращения к сервису курсов по указанному адресу.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// RateFor запрашивает курс иностранной валюты к местной на указанную дату.
// Любая ошибка оборачивает ErrRateUnavailable; повторные попытки не выполняются.
func (c *Client) RateFor(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	if c == nil || c.baseURL == "" {
		return decimal.Zero, fmt.Errorf("%w: client not configured", ErrRateUnavailable)
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	url := fmt.Sprintf("%s/api/rates/%s", base, date.Format(dateLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: create request: %w", ErrRateUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: do request: %w", ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := time.Duration(0)
		if v := resp.Header.Get("Retry-After"); v != "" {
			if seconds, parseErr := strconv.Atoi(v); parseErr == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return decimal.Zero, &RateError{Date: date, StatusCode: resp.StatusCode, RetryAfter: retryAfter}
	}

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, &RateError{Date: date, StatusCode: resp.StatusCode}
	}

	var result Rate
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decode response: %w", ErrRateUnavailable, err)
	}

	if !result.Rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive rate %s", ErrRateUnavailable, result.Rate)
	}

	return result.Rate, nil
}
