package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"print-shop-mis/app/middleware"
	"print-shop-mis/models"
	"print-shop-mis/repository"
	"print-shop-mis/service"
	"print-shop-mis/utils"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		zap.S().Warnf("❌ %s: Failed to decode request body: %v", op, err)
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// pathID reads the {id} path value, answering 400 when it is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request, op string) (int64, bool) {
	id, err := utils.PathID(r)
	if err != nil {
		zap.S().Warnf("❌ %s: %v (%q)", op, err, r.PathValue("id"))
		utils.WriteError(w, http.StatusBadRequest, "Invalid id", nil)
		return 0, false
	}
	return id, true
}

// writeError maps a domain error to its HTTP status. notFound is the message sent for ErrNotFound.
func writeError(w http.ResponseWriter, op, notFound string, err error) {
	var vErr *models.ValidationError
	var cooldown *service.CooldownError

	switch {
	case errors.As(err, &vErr):
		zap.S().Warnf("⚠️ %s: %s", op, vErr.Message)
		utils.WriteError(w, http.StatusBadRequest, vErr.Message, nil)
	case errors.Is(err, repository.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, notFound, nil)
	case errors.Is(err, repository.ErrDuplicatePhone):
		utils.WriteError(w, http.StatusBadRequest, "Phone number already exists", nil)
	case errors.Is(err, repository.ErrDuplicateEmail):
		utils.WriteError(w, http.StatusBadRequest, "Email already exists", nil)
	case errors.Is(err, repository.ErrOverpayment):
		utils.WriteError(w, http.StatusBadRequest, "Payment exceeds the remaining amount", nil)
	case errors.Is(err, service.ErrDuplicateSubmission):
		utils.WriteError(w, http.StatusConflict, "This order was already submitted", nil)
	case errors.As(err, &cooldown):
		w.Header().Set("Retry-After", strconv.Itoa(cooldown.RetryAfterSeconds()))
		utils.WriteError(w, http.StatusTooManyRequests, "Please wait before submitting another order", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		utils.WriteError(w, http.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, service.ErrUnauthenticated):
		utils.WriteError(w, http.StatusUnauthorized, "Authentication required", nil)
	case errors.Is(err, service.ErrForbidden):
		utils.WriteError(w, http.StatusForbidden, "You are not allowed to do this", nil)
	case errors.Is(err, service.ErrArchiveDisabled):
		utils.WriteError(w, http.StatusServiceUnavailable, "Bill archive is not configured", nil)
	default:
		zap.S().Errorf("❌ %s: %v", op, err)
		utils.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to %s", opVerb(op)), err)
	}
}

// opVerb turns "CreateCustomer" into "create customer".
func opVerb(op string) string {
	out := make([]rune, 0, len(op)+4)
	for i, c := range op {
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				out = append(out, ' ')
			}
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

// currentUser returns the signed-in user or answers 401.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	u := middleware.UserFrom(r.Context())
	if u == nil {
		utils.WriteError(w, http.StatusUnauthorized, "Authentication required", nil)
		return nil, false
	}
	return u, true
}
