package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/mmeshcher/studio-shifts/internal/model"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		err   bool
	}{
		{name: "integer", input: "120", want: "120"},
		{name: "two decimals", input: " 123.45 ", want: "123.45"},
		{name: "zero", input: "0", want: "0"},
		{name: "trailing zeros", input: "10.500", want: "10.5"},
		{name: "negative", input: "-1", err: true},
		{name: "three decimals", input: "1.005", err: true},
		{name: "letters", input: "12a", err: true},
		{name: "empty", input: "", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.err {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("ParseAmount(%q) error = %v, want ErrInvalidAmount", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Fatalf("ParseAmount(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDateRange(t *testing.T) {
	from, to, err := ParseDateRange("2025-03-01", "2025-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !from.Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)) || to.Day() != 15 {
		t.Fatalf("unexpected range %s - %s", from, to)
	}

	if _, _, err := ParseDateRange("2025-03-15", "2025-03-01"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate for reversed range, got %v", err)
	}
	if _, _, err := ParseDateRange("2025/03/01", "2025-03-15"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate for bad layout, got %v", err)
	}
}

func TestParseDateOr(t *testing.T) {
	def := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)

	got, err := ParseDateOr("", def)
	if err != nil || !got.Equal(def) {
		t.Fatalf("ParseDateOr(\"\") = %s, %v", got, err)
	}
	if _, err := ParseDateOr("yesterday", def); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestParsePauseType(t *testing.T) {
	tests := []struct {
		input string
		want  model.PauseType
		valid bool
	}{
		{input: "break", want: model.PauseBreak, valid: true},
		{input: "MEAL", want: model.PauseMeal, valid: true},
		{input: "Coaching", want: model.PauseCoaching, valid: true},
		{input: "nap", valid: false},
		{input: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePauseType(tt.input)
			if !tt.valid {
				if !errors.Is(err, ErrInvalidPauseType) {
					t.Fatalf("ParsePauseType(%q) error = %v, want ErrInvalidPauseType", tt.input, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParsePauseType(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID("42"); err != nil || id != 42 {
		t.Fatalf("ParseID(42) = %d, %v", id, err)
	}
	for _, in := range []string{"0", "-3", "abc", ""} {
		if _, err := ParseID(in); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("ParseID(%q) error = %v, want ErrInvalidID", in, err)
		}
	}
}
