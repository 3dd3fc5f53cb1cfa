package service

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldValidator проверяет входные DTO до обращения к хранилищу.
// Возвращает карту поле->нарушение; пустая карта означает валидный ввод
type FieldValidator struct {
	validate *validator.Validate
}

func NewFieldValidator() *FieldValidator {
	return &FieldValidator{validate: validator.New()}
}

// Check возвращает nil для валидного запроса
func (v *FieldValidator) Check(req interface{}) *ValidationError {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["request"] = "invalid request"
		return &ValidationError{Fields: fields}
	}

	for _, fieldError := range validationErrors {
		name := strings.ToLower(fieldError.Field())
		if _, seen := fields[name]; !seen {
			fields[name] = violationMessage(fieldError)
		}
	}

	return &ValidationError{Fields: fields}
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "cannot be blank"
	case "max":
		return "cannot be more than " + fe.Param()
	case "min":
		return "cannot be less than " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "email":
		return "invalid email address"
	case "len", "hexadecimal":
		return "must be a valid object id"
	default:
		return "is " + fe.Tag()
	}
}
