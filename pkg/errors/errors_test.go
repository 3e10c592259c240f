package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError(t *testing.T) {
	cause := errors.New("unexpected EOF")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", New(ErrCodeInvalidInput, "bad %s", "topology"), "INVALID_INPUT: bad topology"},
		{"element", New(ErrCodeUnhandledPattern, "no merge rule applies").At("VL1/INTERN_2"),
			"UNHANDLED_PATTERN: no merge rule applies (at VL1/INTERN_2)"},
		{"cause", Wrap(ErrCodeInvalidInput, cause, "decode topology"), "INVALID_INPUT: decode topology: unexpected EOF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(ErrCodeInternal, cause, "failed to classify")
	if !errors.Is(err, cause) || errors.Unwrap(err) != cause {
		t.Error("Wrap() does not unwrap to its cause")
	}
}

func TestIsAndGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"direct", New(ErrCodePrecondition, "nil graph"), ErrCodePrecondition},
		{"outermost wins", Wrap(ErrCodeInternal, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeInternal},
		{"fmt wrapped", fmt.Errorf("layout: %w", New(ErrCodeUnsupported, "strategy")), ErrCodeUnsupported},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeFileNotFound) {
				t.Error("Is(FILE_NOT_FOUND) = true")
			}
		})
	}
}

func TestElementOf(t *testing.T) {
	inner := New(ErrCodeInconsistentState, "bus has no structural position").At("VL1/bbs2")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"direct", inner, "VL1/bbs2"},
		{"through wrap", Wrap(ErrCodeInternal, inner, "coordinates"), "VL1/bbs2"},
		{"outer wins", Wrap(ErrCodeInternal, inner, "coordinates").At("VL1"), "VL1"},
		{"none", New(ErrCodeInternal, "x"), ""},
		{"plain", errors.New("x"), ""},
	}
	for _, tt := range tests {
		if got := ElementOf(tt.err); got != tt.want {
			t.Errorf("%s: ElementOf() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidInput, "friendly").At("x")); got != "friendly" {
		t.Errorf("UserMessage() = %q, want friendly", got)
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", New(ErrCodeInvalidInput, "bad json"), http.StatusBadRequest},
		{"precondition", New(ErrCodePrecondition, "nil graph"), http.StatusBadRequest},
		{"missing file", New(ErrCodeFileNotFound, "params.toml"), http.StatusNotFound},
		{"unhandled pattern", New(ErrCodeUnhandledPattern, "x").At("INTERN_2"), http.StatusUnprocessableEntity},
		{"wrapped unsupported", Wrap(ErrCodeUnsupported, New(ErrCodeInternal, "inner"), "strategy"), http.StatusUnprocessableEntity},
		{"inconsistent state", New(ErrCodeInconsistentState, "x"), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}
