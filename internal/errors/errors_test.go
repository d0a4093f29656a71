package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "measurement error",
			code:    CodeMeasureFailed,
			wantMsg: "Item measurement failed",
			wantCat: CategoryMeasurement,
		},
		{
			name:    "transport error",
			code:    CodeTransport,
			wantMsg: "Network error",
			wantCat: CategoryTransport,
		},
		{
			name:    "conflict error",
			code:    CodeToggleConflict,
			wantMsg: "An update for this item is already in progress",
			wantCat: CategoryConflict,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestIsAndAs(t *testing.T) {
	err := fmt.Errorf("toggle: %w", New(CodeToggleConflict))
	if !stderrors.Is(err, ErrConflict) {
		t.Error("errors.Is(err, ErrConflict) = false")
	}
	if stderrors.Is(err, ErrTransport) {
		t.Error("conflict matched ErrTransport")
	}
	if got := CategoryOf(err); got != CategoryConflict {
		t.Errorf("CategoryOf() = %q", got)
	}
	if got := CategoryOf(stderrors.New("plain")); got != "" {
		t.Errorf("CategoryOf(plain) = %q, want empty", got)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, CodeTransport) != nil {
		t.Error("FromError(nil) != nil")
	}

	cause := stderrors.New("connection refused")
	se := FromError(cause, CodeTransport)
	if se.Code != CodeTransport || !stderrors.Is(se, cause) {
		t.Errorf("FromError() = %+v, want wrapped transport error", se)
	}

	again := FromError(fmt.Errorf("ctx: %w", se), CodeTimeout)
	if again != se {
		t.Error("FromError() should return an existing SwapError unchanged")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *SwapError
		want string
	}{
		{"generic", New(CodeServerRejected), "Request failed"},
		{"with status", New(CodeServerRejected).WithStatus(500), "Request failed (status 500)"},
		{"server detail wins", New(CodeServerRejected).WithStatus(409).WithDetail("List is full"), "List is full (status 409)"},
		{"transport", New(CodeTransport), "Network error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.UserMessage(); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New(CodeServerRejected).WithStatus(422).WithPath("/api/toggle").WithDetail("bad list")
	out := err.Format()
	for _, want := range []string{"ERROR E160: Request failed", "/api/toggle", "(status 422)", "bad list"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
	if got := err.FormatCompact(); got != "/api/toggle: E160: Request failed: bad list" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestRegistryCoversAllCodes(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has incomplete template %+v", code, tmpl)
		}
	}
}
