package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var rateDate = time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)

func TestRateFor_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/rates/2025-03-07" {
			t.Fatalf("path = %s, want /api/rates/2025-03-07", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"date":"2025-03-07","rate":"4123.45"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	rate, err := client.RateFor(ctx, rateDate)
	if err != nil {
		t.Fatalf("RateFor error: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("4123.45")) {
		t.Fatalf("rate = %s, want 4123.45", rate)
	}
}

func TestRateFor_NumericJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"date":"2025-03-07","rate":3950.5}`))
	}))
	defer ts.Close()

	rate, err := NewClient(ts.URL).RateFor(context.Background(), rateDate)
	if err != nil {
		t.Fatalf("RateFor error: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("3950.5")) {
		t.Fatalf("rate = %s, want 3950.5", rate)
	}
}

func TestRateFor_TooManyRequests(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).RateFor(context.Background(), rateDate)
	if !errors.Is(err, ErrRateUnavailable) {
		t.Fatalf("expected ErrRateUnavailable, got %v", err)
	}

	var rateErr *RateError
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected *RateError, got %T", err)
	}
	if rateErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status code = %d, want %d", rateErr.StatusCode, http.StatusTooManyRequests)
	}
	if rateErr.RetryAfter < 5*time.Second {
		t.Fatalf("retryAfter = %v, want at least 5s", rateErr.RetryAfter)
	}
}

func TestRateFor_Unavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "no content", status: http.StatusNoContent},
		{name: "not found", status: http.StatusNotFound},
		{name: "server error", status: http.StatusInternalServerError},
		{name: "malformed body", status: http.StatusOK, body: `{"rate":`},
		{name: "zero rate", status: http.StatusOK, body: `{"date":"2025-03-07","rate":"0"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.body != "" {
					_, _ = w.Write([]byte(tt.body))
				}
			}))
			defer ts.Close()

			_, err := NewClient(ts.URL).RateFor(context.Background(), rateDate)
			if !errors.Is(err, ErrRateUnavailable) {
				t.Fatalf("expected ErrRateUnavailable, got %v", err)
			}
		})
	}
}

func TestRateFor_NotConfigured(t *testing.T) {
	var client *Client
	_, err := client.RateFor(context.Background(), rateDate)
	if !errors.Is(err, ErrRateUnavailable) {
		t.Fatalf("expected ErrRateUnavailable, got %v", err)
	}
}

func TestRateFor_ContextCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(ts.URL).RateFor(ctx, rateDate)
	if !errors.Is(err, ErrRateUnavailable) {
		t.Fatalf("expected ErrRateUnavailable, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}
