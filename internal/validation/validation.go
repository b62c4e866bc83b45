package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	clientCodeTag   = "client_code"
	clientCodeText  = "{0} may only contain uppercase letters, digits, underscores and hyphens"
	clientCodeRegex = regexp.MustCompile(`^[A-Z0-9_-]+$`)

	requiredTag  = "required"
	requiredText = "{0} is required"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries every failed field so callers can map them back onto a form.
type Error struct {
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	return e.Message
}

// Fields collects errors found outside struct tags, e.g. checks that need a clock.
type Fields []FieldError

func (f *Fields) Add(field, message string) {
	*f = append(*f, FieldError{Field: field, Message: message})
}

func (f Fields) Empty() bool { return len(f) == 0 }

// Err returns nil when nothing was collected.
func (f Fields) Err() error {
	if len(f) == 0 {
		return nil
	}
	return newError(f)
}

func newError(fields []FieldError) *Error {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Message)
	}
	return &Error{
		Message: "validation failed: " + strings.Join(msgs, "; "),
		Fields:  fields,
	}
}

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func New() *Validator {
	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(clientCodeTag, func(fl validator.FieldLevel) bool {
		return clientCodeRegex.MatchString(fl.Field().String())
	})
	registerTranslation(validate, translator, clientCodeTag, clientCodeText, false)
	registerTranslation(validate, translator, requiredTag, requiredText, true)

	return &Validator{validate: validate, translator: translator}
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override bool) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates s and returns *Error listing every failing field, merged
// with any extra fields collected by the caller.
func (v *Validator) Struct(s any, extra ...FieldError) error {
	fields := make([]FieldError, 0, len(extra))
	err := v.validate.Struct(s)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   fieldPath(fe.Namespace()),
				Message: strings.Replace(fe.Translate(v.translator), fe.Field(), Humanize(fe.Field()), 1),
			})
		}
	} else if err != nil {
		return err
	}
	fields = append(fields, extra...)
	if len(fields) == 0 {
		return nil
	}
	return newError(fields)
}

// Var validates a single value against tag and reports it under field.
func (v *Validator) Var(field string, value any, tag string) error {
	err := v.validate.Var(value, tag)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Translate(v.translator)
		msg = Humanize(field) + strings.TrimPrefix(msg, fe.Field())
		fields = append(fields, FieldError{Field: field, Message: msg})
	}
	return newError(fields)
}

// MatchesClientCode reports whether code satisfies the client code format.
func MatchesClientCode(code string) bool {
	return clientCodeRegex.MatchString(code)
}

// Humanize turns a json field name into words: property_address -> property address.
func Humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// fieldPath drops the leading struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// FieldErr is a validation error for a single field.
func FieldErr(field, message string) error {
	return newError([]FieldError{{Field: field, Message: message}})
}
