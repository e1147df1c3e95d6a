package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found wrapped", fmt.Errorf("reel 7: %w", ErrNotFound), http.StatusNotFound},
		{"validation", ErrValidationFailed, http.StatusBadRequest},
		{"conflict", fmt.Errorf("username taken: %w", ErrConflict), http.StatusConflict},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"storage", fmt.Errorf("put object: %w", ErrStorageUnavailable), http.StatusBadGateway},
		{"generation", ErrGenerationFailed, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusCode(tc.err))
		})
	}
}
