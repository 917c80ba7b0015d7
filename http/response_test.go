package http_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sagarc03/quire"
	quirehttp "github.com/sagarc03/quire/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "not found",
			err:         fmt.Errorf("get record: %w", quire.ErrNotFound),
			wantStatus:  http.StatusNotFound,
			wantCode:    "not_found",
			wantMessage: "Record not found",
		},
		{
			name:        "joined not found",
			err:         errors.Join(errors.New("context"), quire.ErrNotFound),
			wantStatus:  http.StatusNotFound,
			wantCode:    "not_found",
			wantMessage: "Record not found",
		},
		{
			name:        "invalid input shows its reason",
			err:         fmt.Errorf("list records: %w: invalid workspace id", quire.ErrInvalidInput),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "invalid_input",
			wantMessage: "list records: invalid input: invalid workspace id",
		},
		{
			name:        "unauthenticated",
			err:         quire.ErrUnauthenticated,
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "unauthorized",
			wantMessage: "Missing or invalid credentials",
		},
		{
			name:        "body too large",
			err:         fmt.Errorf("read body: %w", &http.MaxBytesError{Limit: 10}),
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantCode:    "too_large",
			wantMessage: "Request body too large",
		},
		{
			name:        "store failure is opaque",
			err:         fmt.Errorf("create record: %w: %w", quire.ErrStoreFailure, errors.New("connection refused 10.0.0.3")),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "internal_error",
			wantMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			quirehttp.HandleError(rec, httptest.NewRequest(http.MethodGet, "/files", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body quirehttp.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Error)
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	t.Run("encodes body", func(t *testing.T) {
		rec := httptest.NewRecorder()

		require.NoError(t, quirehttp.WriteJSON(rec, http.StatusCreated, map[string]int{"n": 1}))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"n":1}`, strings.TrimSpace(rec.Body.String()))
	})

	t.Run("unencodable value", func(t *testing.T) {
		rec := httptest.NewRecorder()
		assert.Error(t, quirehttp.WriteJSON(rec, http.StatusOK, make(chan int)))
	})
}
