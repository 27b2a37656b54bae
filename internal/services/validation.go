package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"storerate/internal/models"
)

const (
	passwordSpecials = `!@#$%^&*(),.?":{}|<>`
	maxImageBytes    = 1536 * 1024
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var fieldLabels = map[string]string{
	"name":        "Name",
	"email":       "Email",
	"password":    "Password",
	"address":     "Address",
	"role":        "Role",
	"description": "Description",
	"category":    "Category",
	"imageUrl":    "Image",
	"ownerId":     "Owner",
	"storeId":     "Store",
	"userId":      "User",
	"rating":      "Rating",
	"review":      "Review",
}

// Validator checks request structs against their validate tags and reports
// the first violated rule as a KindValidation error.
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the custom rules used by request structs.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "email_format", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "has_upper", func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), unicode.IsUpper) >= 0
	})
	mustRegister(v, "has_special", func(fl validator.FieldLevel) bool {
		return strings.ContainsAny(fl.Field().String(), passwordSpecials)
	})
	mustRegister(v, "runes", validateRunes)
	mustRegister(v, "role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})
	mustRegister(v, "stars", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= models.MinRating && n <= models.MaxRating
	})
	mustRegister(v, "image_ref", func(fl validator.FieldLevel) bool {
		return validImageRef(fl.Field().String())
	})
	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// validateRunes implements runes=min-max on the character count of a string.
func validateRunes(fl validator.FieldLevel) bool {
	lo, hi, ok := runeBounds(fl.Param())
	if !ok {
		return false
	}
	n := utf8.RuneCountInString(fl.Field().String())
	return n >= lo && n <= hi
}

func runeBounds(param string) (int, int, bool) {
	parts := strings.SplitN(param, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, err1 := strconv.Atoi(parts[0])
	hi, err2 := strconv.Atoi(parts[1])
	return lo, hi, err1 == nil && err2 == nil
}

func validImageRef(s string) bool {
	if s == "" {
		return true
	}
	if len(s) > maxImageBytes {
		return false
	}
	return strings.HasPrefix(s, "/") ||
		strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "data:image/")
}

// Struct validates s. The returned error is a *Error naming the first
// violated rule.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &Error{Kind: KindValidation, Message: "Invalid request", Err: err}
	}
	return &Error{Kind: KindValidation, Message: fieldMessage(fieldErrs[0]), Err: err}
}

func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "runes":
		lo, hi, _ := runeBounds(fe.Param())
		return fmt.Sprintf("%s must be between %d and %d characters", label, lo, hi)
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", label, fe.Param())
	case "email_format":
		return "Please enter a valid email address"
	case "has_upper":
		return label + " must contain at least one uppercase letter"
	case "has_special":
		return label + " must contain at least one special character"
	case "role":
		return "Invalid role specified"
	case "stars":
		return fmt.Sprintf("%s must be between %d and %d", label, models.MinRating, models.MaxRating)
	case "image_ref":
		return "Image must be a path, an http(s) URL or an uploaded image of at most 1.5MB"
	}
	return fmt.Sprintf("%s is invalid", label)
}

// trimmed returns a pointer to the trimmed value of p, or nil.
func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	return &s
}

// nonEmpty returns nil for a nil or blank string pointer.
func nonEmpty(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	return trimmed(p)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
