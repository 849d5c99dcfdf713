package validation

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// FieldIssue describes one failed rule on one request field
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of validating a request body. Validation never
// panics or throws: callers inspect Ok and reject before reaching the core.
type Result struct {
	Issues []FieldIssue `json:"issues,omitempty"`
}

// Ok reports whether the value passed every rule
func (r Result) Ok() bool {
	return len(r.Issues) == 0
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Password complexity: 8-20 chars with at least one letter, one digit
	// and one special character.
	v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return validPassword(fl.Field().String())
	})

	return v
}

func validPassword(s string) bool {
	if len(s) < 8 || len(s) > 20 {
		return false
	}

	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

// Check validates a struct against its tags and returns a typed result
func Check(v interface{}) Result {
	err := validate.Struct(v)
	if err == nil {
		return Result{}
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Result{Issues: []FieldIssue{{Field: "", Message: err.Error()}}}
	}

	issues := make([]FieldIssue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, FieldIssue{
			Field:   strings.ToLower(fe.Field()),
			Message: messageFor(fe),
		})
	}
	return Result{Issues: issues}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "invalid email format"
	case "password":
		return "must be 8-20 characters with at least one letter, one number and one special character"
	case "required_with":
		return "is required together with " + strings.ToLower(fe.Param())
	case "uuid4":
		return "invalid token format"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters long"
	case "max":
		return "must be at most " + fe.Param() + " characters long"
	default:
		return "is invalid"
	}
}
