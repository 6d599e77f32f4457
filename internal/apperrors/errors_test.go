package apperrors

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad port %d", 0), http.StatusBadRequest},
		{"not found", NotFound("no config for %s", "wg3"), http.StatusNotFound},
		{"conflict", Conflict(fs.ErrExist, "name taken"), http.StatusConflict},
		{"io", IO(fs.ErrPermission, "write ledger"), http.StatusInternalServerError},
		{"tool", ExternalTool("wg-quick", 4, "", "boom", "bring up failed"), http.StatusInternalServerError},
		{"plain", errors.New("other"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("handler: %w", NotFound("gone")), http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTTPStatus(tc.err); got != tc.want {
				t.Fatalf("HTTPStatus = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestIOErrorUnwraps(t *testing.T) {
	err := IO(fs.ErrNotExist, "read %s", "wg1.conf")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected IO error to unwrap to fs.ErrNotExist")
	}
	if !strings.Contains(err.Error(), "read wg1.conf") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestExternalToolErrorKeepsDiagnostics(t *testing.T) {
	err := ExternalTool("wg-quick", 4, "out", "wg-quick: `wg9' already exists", "bring up failed")
	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected *Error")
	}
	if appErr.ExitCode != 4 || appErr.Stderr != "wg-quick: `wg9' already exists" {
		t.Fatalf("diagnostics not preserved: %+v", appErr)
	}
	if KindOf(err) != KindExternalTool {
		t.Fatalf("expected external tool kind, got %s", KindOf(err))
	}
}

func TestPredicates(t *testing.T) {
	if !IsValidation(Validation("x")) || IsValidation(NotFound("x")) {
		t.Fatal("IsValidation mismatch")
	}
	if !IsNotFound(NotFound("x")) || IsNotFound(errors.New("x")) {
		t.Fatal("IsNotFound mismatch")
	}
}
