package richdoc

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aisa-it/richdoc/internal/richdoc/dao"
	"github.com/aisa-it/richdoc/internal/richdoc/editor"
	"github.com/go-playground/validator"
)

type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	if err := v.RegisterValidation("documentTitle", documentTitleValidator); err != nil {
		return nil
	}
	if err := v.RegisterValidation("command", commandValidator); err != nil {
		return nil
	}
	return &RequestValidator{v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validator.Struct(i); err != nil {
		if _, ok := err.(validator.ValidationErrors); !ok {
			return nil
		}
		return err
	}
	return nil
}

// Пустое название допустимо, оно заменяется названием по умолчанию
func documentTitleValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if utf8.RuneCountInString(value) > dao.MaxTitleLength {
		return false
	}
	return !strings.ContainsFunc(value, func(r rune) bool {
		return unicode.IsControl(r)
	})
}

func commandValidator(fl validator.FieldLevel) bool {
	return slices.Contains(editor.Commands, fl.Field().String())
}
