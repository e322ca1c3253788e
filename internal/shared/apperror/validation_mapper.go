package apperror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func formatFieldName(s string) string {
	// national_insurance_no -> National Insurance No
	s = strings.ReplaceAll(s, "_", " ")

	caser := cases.Title(language.English)
	return caser.String(s)
}

func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		e := errs[0]
		humanReadableField := formatFieldName(e.Field())

		switch e.Tag() {
		case "required":
			return RequiredField(humanReadableField)
		default:
			return InvalidField(humanReadableField)
		}
	}

	return New(
		CodeInvalidInput,
		"Invalid input",
		http.StatusBadRequest,
	)
}

// ValidationDetails flattens a binding error into field -> message pairs for
// the validation summary. Non-validator errors (malformed dates, numbers) are
// reported under "_form".
func ValidationDetails(err error) map[string]string {
	details := map[string]string{}
	if err == nil {
		return details
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		details["_form"] = err.Error()
		return details
	}

	for _, e := range errs {
		field := e.Field()
		if _, exists := details[field]; exists {
			continue
		}
		human := formatFieldName(field)
		switch e.Tag() {
		case "required":
			details[field] = human + " is required"
		case "email":
			details[field] = human + " must be a valid email address"
		case "oneof":
			details[field] = human + " must be one of: " + e.Param()
		case "max":
			details[field] = human + " must be at most " + e.Param() + " characters"
		case "datetime":
			details[field] = human + " must be a date in YYYY-MM-DD format"
		case "nino":
			details[field] = human + " must be a valid National Insurance number"
		case "personname":
			details[field] = human + " may only contain letters, spaces, apostrophes and hyphens"
		default:
			details[field] = human + " is invalid"
		}
	}
	return details
}
