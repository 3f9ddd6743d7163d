package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"workorder/internal/service"
	"workorder/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Response is the envelope of every JSON reply. Code always equals the HTTP
// status.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func success(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Response{Code: fiber.StatusOK, Message: "success", Data: data})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{Code: status, Message: message})
}

// handleError maps service errors to HTTP statuses. Anything unrecognised is
// logged and hidden behind a 500.
func handleError(c *fiber.Ctx, err error) error {
	var validationErr *service.ValidationError
	var duplicateErr *service.DuplicateError
	switch {
	case errors.As(err, &validationErr):
		return fail(c, fiber.StatusBadRequest, validationErr.Error())
	case errors.As(err, &duplicateErr):
		return fail(c, fiber.StatusBadRequest, duplicateErr.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountDisabled),
		errors.Is(err, service.ErrUnauthorized):
		return fail(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return fail(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrTaskNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	default:
		logger.ErrorLogger.Error("Unhandled error",
			zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Internal server error")
	}
}

// NewValidator returns a validator that reports fields by their json name.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, v *validator.Validate, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return &service.ValidationError{Message: "malformed request body"}
	}
	if err := v.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &service.ValidationError{Field: fe.Field(), Message: describe(fe)}
		}
		return &service.ValidationError{Message: err.Error()}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
