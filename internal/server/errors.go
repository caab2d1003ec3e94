package server

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	billdomain "github.com/smallbiznis/voltbill/internal/bill/domain"
	consumptiondomain "github.com/smallbiznis/voltbill/internal/consumption/domain"
	customerdomain "github.com/smallbiznis/voltbill/internal/customer/domain"
	ingestdomain "github.com/smallbiznis/voltbill/internal/ingest/domain"
	"github.com/smallbiznis/voltbill/internal/providers/storage"
	reportdomain "github.com/smallbiznis/voltbill/internal/report/domain"
	"github.com/smallbiznis/voltbill/pkg/db/pagination"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
)

// validationErrors maps domain validation sentinels to the request field they concern.
var validationErrors = []struct {
	err   error
	field string
}{
	{ErrInvalidRequest, "request"},
	{pagination.ErrInvalidPageToken, "page_token"},
	{customerdomain.ErrInvalidID, "customer_id"},
	{customerdomain.ErrInvalidEmail, "email"},
	{consumptiondomain.ErrInvalidCustomer, "customer_id"},
	{consumptiondomain.ErrInvalidTimestamp, "timestamp"},
	{consumptiondomain.ErrInvalidValue, "consumption"},
	{billdomain.ErrInvalidID, "id"},
	{billdomain.ErrInvalidCustomer, "customer_id"},
	{billdomain.ErrInvalidTimestamp, "timestamp"},
	{ingestdomain.ErrInvalidFilename, "file"},
	{ingestdomain.ErrEmptyFile, "file"},
	{ingestdomain.ErrInvalidEncoding, "file"},
	{ingestdomain.ErrMissingHeader, "file"},
	{ingestdomain.ErrMissingColumns, "file"},
	{ingestdomain.ErrNoValidRows, "file"},
	{reportdomain.ErrInvalidBillingMonth, "billing_month"},
	{reportdomain.ErrInvalidCustomer, "customer_id"},
	{storage.ErrInvalidKey, "customer_id"},
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// bindingError turns gin binding failures into field level validation errors.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalidRequestError()
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Code:    fe.Tag(),
			Message: bindingMessage(fe),
		})
	}
	return &ValidationErrors{Errors: out}
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "gte", "lte", "min", "max":
		return fe.Field() + " must be " + fe.Tag() + " " + fe.Param()
	default:
		return "invalid value"
	}
}

var registerTagNamesOnce sync.Once

// registerValidatorTagNames reports json or form names instead of Go field names.
func registerValidatorTagNames() {
	registerTagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if sentinel, field, ok := matchValidationError(err); ok {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   field,
					Code:    sentinel.Error(),
					Message: validationErrorMessage(err, sentinel),
				},
			},
		}
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many uploads, retry later",
		}
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, errorPayload{
			Type:    "payload_too_large",
			Message: "upload exceeds the size limit",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func matchValidationError(err error) (error, string, bool) {
	for _, v := range validationErrors {
		if errors.Is(err, v.err) {
			return v.err, v.field, true
		}
	}
	return nil, "", false
}

// validationErrorMessage keeps the detail a wrapped sentinel carries, such as missing column names.
func validationErrorMessage(err, sentinel error) string {
	if msg := err.Error(); msg != sentinel.Error() {
		return msg
	}
	if sentinel == ErrInvalidRequest {
		return "invalid request"
	}
	return "invalid value"
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, customerdomain.ErrAlreadyExists),
		errors.Is(err, consumptiondomain.ErrConflict),
		errors.Is(err, ingestdomain.ErrUploadInProgress),
		errors.Is(err, gorm.ErrDuplicatedKey):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, customerdomain.ErrAlreadyExists):
		return "customer already exists"
	case errors.Is(err, consumptiondomain.ErrConflict):
		return "consumption record already exists"
	case errors.Is(err, ingestdomain.ErrUploadInProgress):
		return "another upload for this customer is in progress"
	default:
		return "conflict"
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, billdomain.ErrNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	return payload.Type, payload.Type
}
