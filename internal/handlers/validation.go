package handlers

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"portfolio/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// NewValidator returns a validator that reports JSON field names and knows
// the password_strength rule (at least one upper, one lower and one digit).
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if o, ok := field.Interface().(models.OptionalString); ok && o.Value != nil {
			return *o.Value
		}
		return ""
	}, models.OptionalString{})
	_ = v.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		var upper, lower, digit bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			}
		}
		return upper && lower && digit
	})
	return v
}

// validationFailed renders validator errors as a 400 response.
func validationFailed(c *fiber.Ctx, err error) error {
	details := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			details[e.Field()] = fieldMessage(e)
		}
	} else {
		details["body"] = err.Error()
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "Validation failed",
		"details": details,
	})
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", e.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s long", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s long", e.Field(), e.Param())
	case "password_strength":
		return fmt.Sprintf("%s must contain an uppercase letter, a lowercase letter and a digit", e.Field())
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
}

// invalidBody renders an unparsable request body as a 400 response.
func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "Invalid request body",
		"details": fiber.Map{"body": err.Error()},
	})
}
