package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "solarcli/internal/errors"
)

// RequestValidator validates decoded request contracts using struct tags.
type RequestValidator struct {
	validator *validator.Validate
	logger    *slog.Logger
}

// NewRequestValidator creates a validator that reports fields by their query or json names.
func NewRequestValidator(logger *slog.Logger) *RequestValidator {
	v := validator.New()

	v.RegisterValidation("country", isCountry)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &RequestValidator{
		validator: v,
		logger:    logger.With(slog.String("component", "request_validator")),
	}
}

// ValidateStruct validates a struct. Failures come back as a validation
// AppError whose "fields" context maps each field to its message.
func (m *RequestValidator) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.NewAppError(apierrors.ErrTypeValidation, "invalid request", err)
	}

	fields := make(map[string]string, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := m.formatValidationError(fe)
		fields[fe.Field()] = msg
		messages = append(messages, msg)
	}
	sort.Strings(messages)

	return apierrors.NewValidationError(strings.Join(messages, "; ")).WithContext("fields", fields)
}

// ValidateQuery decodes the named query parameters into a request contract,
// validates it and writes a problem response on failure. It returns false when
// the handler should stop.
func (m *RequestValidator) ValidateQuery(w http.ResponseWriter, r *http.Request, errorHandler *apierrors.ErrorHandler, req interface{}) bool {
	if err := m.ValidateStruct(req); err != nil {
		m.logger.DebugContext(r.Context(), "request rejected",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		errorHandler.HandleError(w, r, err)
		return false
	}
	return true
}

// formatValidationError formats validation error messages
func (m *RequestValidator) formatValidationError(err validator.FieldError) string {
	field := err.Field()
	tag := err.Tag()
	param := err.Param()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "alphanum":
		return fmt.Sprintf("%s must contain only letters and digits", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Replace(param, " ", ", ", -1))
	case "country":
		return fmt.Sprintf("%s must be a country slug", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}

// isCountry accepts lowercase slugs such as "sierraleone".
func isCountry(fl validator.FieldLevel) bool {
	slug := fl.Field().String()
	if slug == "" || len(slug) > 64 {
		return false
	}
	for _, ch := range slug {
		if !((ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')) {
			return false
		}
	}
	return true
}
