package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeParseFailure, "syntax error")
		if err.Error() != "[PARSE_FAILURE] syntax error" {
			t.Errorf("expected [PARSE_FAILURE] syntax error, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("unexpected token")
		err := Wrap(original, CodeConfiguration, "decode architect.json")
		expected := "[CONFIGURATION_ERROR] decode architect.json: unexpected token"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
		if !errors.Is(err, original) {
			t.Error("expected wrapped error to unwrap to original")
		}
	})

	t.Run("IsCodeThroughFmtWrap", func(t *testing.T) {
		err := fmt.Errorf("graph: %w", New(CodeGraphBuildWarning, "reparse failed"))
		if !IsCode(err, CodeGraphBuildWarning) {
			t.Error("expected IsCode to see through fmt wrapping")
		}
		if IsCode(err, CodeParseFailure) {
			t.Error("expected IsCode to return false for a different code")
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := AddContext(New(CodeParseFailure, "bad file"), CtxPath, "src/a.ts")
		v, ok := ContextValue(err, CtxPath)
		if !ok || v != "src/a.ts" {
			t.Errorf("expected path context, got %v (ok=%v)", v, ok)
		}
		if !IsCode(err, CodeParseFailure) {
			t.Error("expected code to be preserved")
		}
	})

	t.Run("AddContextPlainError", func(t *testing.T) {
		err := AddContext(errors.New("boom"), CtxOperation, "read")
		if !IsCode(err, CodeInternal) {
			t.Error("expected plain errors to be promoted to CodeInternal")
		}
	})
}

func TestDomainError_RendersSortedContext(t *testing.T) {
	err := AddContext(
		AddContext(Wrap(errors.New("eof"), CodeParseFailure, "parse"), CtxSpan, "3..7"),
		CtxPath, "src/a.ts",
	)
	want := "[PARSE_FAILURE] parse: eof path=src/a.ts span=3..7"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
	if CodeOf(err) != CodeParseFailure {
		t.Errorf("expected CodeOf to return PARSE_FAILURE, got %q", CodeOf(err))
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Error("expected no code for a plain error")
	}
}
