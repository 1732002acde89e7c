package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zipdeck/zipdeck/internal/model"
)

func TestStatusForAPIError(t *testing.T) {
	tests := []struct {
		err  *model.APIError
		want int
	}{
		{model.NewValidationError("x"), http.StatusBadRequest},
		{model.NewInvalidOTPError(), http.StatusBadRequest},
		{model.NewInvalidCredentialsError(), http.StatusUnauthorized},
		{model.NewInvalidTokenError(), http.StatusUnauthorized},
		{model.NewUserNotFoundError(), http.StatusNotFound},
		{model.NewEmailTakenError(), http.StatusConflict},
		{model.NewUpstreamError("slack"), http.StatusBadGateway},
		{model.NewInternalError(), http.StatusInternalServerError},
		{&model.APIError{Code: "UNKNOWN"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusForAPIError(tt.err); got != tt.want {
			t.Errorf("StatusForAPIError(%s) = %d, want %d", tt.err.Code, got, tt.want)
		}
	}
}

func TestWriteAPIError(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteAPIError(rec, model.NewEmailTakenError())

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body ErrorResponseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != model.ErrCodeEmailTaken {
		t.Errorf("code = %q, want EMAIL_TAKEN", body.Code)
	}
	if body.Message == "" || body.Category == "" || body.Action == "" {
		t.Errorf("body = %+v, want all envelope fields populated", body)
	}
}

func TestWriteInternalServerError(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteInternalServerError(rec)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	var body ErrorResponseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != model.ErrCodeInternal {
		t.Errorf("code = %q, want INTERNAL_ERROR", body.Code)
	}
}
