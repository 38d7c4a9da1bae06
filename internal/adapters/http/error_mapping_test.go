package httpadapter

import (
	"errors"
	"net/http"
	"testing"

	"github.com/avolkov/docstream/internal/core/domain"
)

func TestMapErrorToHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unsupported type", domain.WrapError(domain.ErrUnsupportedType, "validate", errors.New("text/plain")), http.StatusBadRequest},
		{"too large", domain.WrapError(domain.ErrFileTooLarge, "validate", errors.New("12MB")), http.StatusBadRequest},
		{"empty name", domain.WrapError(domain.ErrEmptyName, "validate", errors.New("blank")), http.StatusBadRequest},
		{"task not found", domain.ErrTaskNotFound, http.StatusNotFound},
		{"remote rejected", domain.WrapError(domain.ErrRemoteRejected, "remote.submit", errors.New("corrupt pdf")), http.StatusUnprocessableEntity},
		{"temporary", domain.WrapError(domain.ErrTemporary, "remote.status", errors.New("503")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mapErrorToHTTPStatus(tc.err); got != tc.want {
				t.Errorf("mapErrorToHTTPStatus() = %d, want %d", got, tc.want)
			}
		})
	}
}
