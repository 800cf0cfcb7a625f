package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/repository"
	"github.com/opsdesk/admin-api/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var validate = newValidator()

// newValidator registers decimal.Decimal so numeric tags like gte work on money fields
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondValidationError sends a standardized validation error response with specific field messages
func respondValidationError(w http.ResponseWriter, err error) {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := toJSONFieldName(fe.Field())
			errs[field] = domain.ValidationMessage(field, fe.Tag(), fe.Param())
		}
	}
	respondJSON(w, http.StatusBadRequest, domain.NewValidationError(errs))
}

// toJSONFieldName converts a Go struct field name to its JSON equivalent (camelCase)
func toJSONFieldName(field string) string {
	if len(field) == 0 {
		return field
	}
	switch {
	case field == "IDs":
		return "ids"
	case strings.HasSuffix(field, "ID"):
		field = strings.TrimSuffix(field, "ID") + "Id"
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// respondWithError sends a standardized JSON error response
func respondWithError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, domain.NewAPIError(status, message))
}

// respondServiceError maps service sentinel errors to HTTP responses.
// Unknown errors are logged and hidden behind a 500.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPermissionDenied), errors.Is(err, service.ErrNotAssignee):
		respondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInvalidTransition):
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeAndValidate decodes a JSON body into dst and runs struct validation.
// It writes the error response itself and reports whether the caller may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondValidationError(w, err)
		return false
	}
	return true
}

// parseID reads a positive numeric path parameter
func parseID(w http.ResponseWriter, r *http.Request, param, entity string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, param), 10, 64)
	if err != nil || id == 0 {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s ID: must be a positive integer", entity))
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads page and pageSize. Bounds are enforced by the services.
func parsePagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	return page, pageSize
}

// parseSort reads sortBy and sortOrder
func parseSort(r *http.Request) repository.SortConfig {
	sort := repository.DefaultSortConfig()
	if sortBy := r.URL.Query().Get("sortBy"); sortBy != "" {
		sort.Field = sortBy
	}
	if sortOrder := r.URL.Query().Get("sortOrder"); sortOrder != "" {
		sort.Order = repository.ParseSortOrder(sortOrder)
	}
	return sort
}

// queryUint returns a pointer to a numeric query parameter, or nil when absent or malformed
func queryUint(r *http.Request, key string) *uint {
	v, err := strconv.ParseUint(r.URL.Query().Get(key), 10, 64)
	if err != nil || v == 0 {
		return nil
	}
	id := uint(v)
	return &id
}

// queryBool returns a pointer to a boolean query parameter, or nil when absent or malformed
func queryBool(r *http.Request, key string) *bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	if err != nil {
		return nil
	}
	return &v
}

// queryEnum returns a pointer to a string-typed query parameter, or nil when absent
func queryEnum[T ~string](r *http.Request, key string) *T {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	t := T(v)
	return &t
}
