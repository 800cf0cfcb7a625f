package domain_test

import (
	"net/http"
	"testing"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewAPIError(t *testing.T) {
	tests := []struct {
		status   int
		wantType string
	}{
		{http.StatusBadRequest, domain.ErrorTypeBadRequest},
		{http.StatusUnauthorized, domain.ErrorTypeUnauthorized},
		{http.StatusForbidden, domain.ErrorTypeForbidden},
		{http.StatusNotFound, domain.ErrorTypeNotFound},
		{http.StatusConflict, domain.ErrorTypeConflict},
		{http.StatusInternalServerError, domain.ErrorTypeInternal},
		{http.StatusTeapot, domain.ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := domain.NewAPIError(tt.status, "boom")
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, http.StatusText(tt.status), err.Title)
			assert.Equal(t, tt.status, err.Status)
			assert.Equal(t, "boom", err.Error())
		})
	}

	assert.Equal(t, "Not Found", domain.NewAPIError(http.StatusNotFound, "").Error())
}

func TestNewValidationError(t *testing.T) {
	err := domain.NewValidationError(map[string]string{"email": "Must be a valid email address"})

	assert.Equal(t, domain.ErrorTypeValidation, err.Type)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "Must be a valid email address", err.Errors["email"])
}

func TestValidationMessage(t *testing.T) {
	assert.Equal(t, "name is required", domain.ValidationMessage("name", "required", ""))
	assert.Equal(t, "Must be at most 200", domain.ValidationMessage("name", "max", "200"))
	assert.Equal(t, "Must be one of: todo in_progress", domain.ValidationMessage("status", "oneof", "todo in_progress"))
	assert.Equal(t, "Must be a date in the format 2006-01-02", domain.ValidationMessage("dueDate", "datetime", "2006-01-02"))
	assert.Equal(t, "Validation failed: uuid", domain.ValidationMessage("id", "uuid", ""))
}
