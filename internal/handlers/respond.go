package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/01moynul/calibration-catalog/internal/catalog"
	"github.com/01moynul/calibration-catalog/internal/storage"
	"github.com/01moynul/calibration-catalog/internal/store"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, message string, details ...string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message, Details: strings.Join(details, "; ")})
}

// respondValidation turns a binding error into a 400 with field-level details.
func respondValidation(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, describeFieldError(fe))
		}
		respondError(c, http.StatusBadRequest, "Validation failed", details...)
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		respondError(c, http.StatusBadRequest, "Validation failed", "malformed JSON body")
	case errors.Is(err, io.EOF):
		respondError(c, http.StatusBadRequest, "Validation failed", "request body is empty")
	case errors.As(err, &typeErr):
		respondError(c, http.StatusBadRequest, "Validation failed", fmt.Sprintf("%s: expected %s", typeErr.Field, typeErr.Type))
	default:
		respondError(c, http.StatusBadRequest, "Validation failed", err.Error())
	}
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed on '%s'", field, fe.Tag())
	}
}

// respondInternal logs err and replies with a generic 500.
func respondInternal(c *gin.Context, message string, err error) {
	log.Printf("%s %s: %s: %v", c.Request.Method, c.FullPath(), message, err)
	respondError(c, http.StatusInternalServerError, message)
}

// respondStoreError maps persistence errors to status codes. what names the
// entity in not-found messages, e.g. "Product".
func respondStoreError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, what+" not found")
	case errors.Is(err, store.ErrInvalidReference), errors.Is(err, catalog.ErrInvalidTree):
		respondError(c, http.StatusBadRequest, "Validation failed", err.Error())
	case errors.Is(err, store.ErrConflict), errors.Is(err, gorm.ErrDuplicatedKey):
		respondError(c, http.StatusConflict, what+" already exists", err.Error())
	default:
		respondInternal(c, "Failed to process "+strings.ToLower(what), err)
	}
}

func respondUploadError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrUnsupportedType) || errors.Is(err, storage.ErrTooLarge) {
		respondError(c, http.StatusBadRequest, "Invalid upload", err.Error())
		return
	}
	respondInternal(c, "Failed to save file", err)
}

// parseID reads the :id path parameter; it replies 400 and returns false on failure.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "Invalid id", fmt.Sprintf("%q is not a positive integer", c.Param("id")))
		return 0, false
	}
	return uint(id), true
}
