// Package validate checks params structs and reports the first failure as a
// validation error naming the offending params key
package validate

import (
	"reflect"
	"strings"
	"sync"

	perr "sentiprep/internal/platform/errors"
	"sentiprep/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

type checker struct {
	v     *validator.Validate
	trans ut.Translator
}

var instance = sync.OnceValue(func() *checker {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	// column names and labels are compared verbatim, so whitespace-only is as bad as empty
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	for tag, text := range map[string]string{
		"notblank": "{0} must not be blank",
		"gt":       "{0} must be greater than {1}",
		"lt":       "{0} must be less than {1}",
		"min":      "{0} must be at least {1}",
		"nefield":  "{0} must differ from {1}",
	} {
		translate(v, trans, tag, text)
	}
	return &checker{v: v, trans: trans}
})

// jsonName reports fields by the key used in params files
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func translate(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// Struct validates s; the first failure becomes a validation error whose field is
// the dotted params path, e.g. "data_ingestion.test_size"
func Struct(s any) error {
	err := instance().v.Struct(s)
	if err == nil {
		return nil
	}
	if inv, ok := err.(*validator.InvalidValidationError); ok {
		logger.Get().Error().Err(inv).Msg("validator internal error")
		return perr.Wrap(inv, perr.ErrorCodeUnknown, "validation error")
	}
	field, msg := FieldAndMessage(err)
	return perr.WithField(perr.Validationf("%s", msg), field)
}

// FieldAndMessage returns the first failing field path and its english message
func FieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "", err.Error()
	}
	fe := verrs[0]
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		path = fe.Namespace()
	}
	return path, fe.Translate(instance().trans)
}
