package validate

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// engine holds the shared validator and its English translator.
type engine struct {
	validate   *validator.Validate
	translator ut.Translator
}

var (
	engineOnce sync.Once
	shared     *engine
)

// getEngine initializes the validator once, with json tag names in messages.
func getEngine() *engine {
	engineOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)
		registerNonBlank(v, trans)
		registerShortURL(v, trans)

		shared = &engine{validate: v, translator: trans}
	})
	return shared
}

// fieldIssues validates s and converts failures to issues under prefix.
func (e *engine) fieldIssues(s any, prefix string) []fieldIssue {
	err := e.validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []fieldIssue{{field: prefix, message: err.Error()}}
	}

	out := make([]fieldIssue, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if prefix != "" {
			field = prefix + "." + field
		}
		out = append(out, fieldIssue{
			field:   field,
			tag:     fe.Tag(),
			message: fe.Translate(e.translator),
		})
	}
	return out
}

type fieldIssue struct {
	field   string
	tag     string
	message string
}

func registerNonBlank(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterTranslation("nonblank", trans,
		func(ut ut.Translator) error {
			return ut.Add("nonblank", "{0} is missing or blank", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("nonblank", fe.Field())
			return msg
		},
	)
}

func registerShortURL(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterTranslation("url", trans,
		func(ut ut.Translator) error {
			return ut.Add("url", "{0} is not a valid URL: {1}", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("url", fe.Field(), fmt.Sprint(fe.Value()))
			return msg
		},
	)
}
