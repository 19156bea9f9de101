package services

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/coursevault/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateInput checks v against its struct tags and reports the first
// failing field as a *common.ValidationError.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		reason := e.Tag()
		if e.Param() != "" {
			reason += "=" + e.Param()
		}
		return &common.ValidationError{Field: strings.ToLower(e.Field()), Reason: reason}
	}
	return &common.ValidationError{Field: "input", Reason: err.Error()}
}

// normalizeText trims s, collapses whitespace runs to one space and
// upper-cases the first letter.
func normalizeText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
