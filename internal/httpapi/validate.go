package httpapi

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// saveRequest is the user-confirmed form payload. Summary and transcript are
// required before anything reaches the store.
type saveRequest struct {
	CallerName string `json:"caller_name"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Priority   string `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	Summary    string `json:"summary" validate:"required"`
	Transcript string `json:"transcript" validate:"required"`
	Response   string `json:"response"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validateSave(req saveRequest) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate.Struct(req)
}

// validationMessage turns validator errors into a user-facing sentence.
func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "Summary":
			parts = append(parts, "please enter a summary")
		case "Transcript":
			parts = append(parts, "transcript is missing")
		case "Priority":
			parts = append(parts, "priority must be Low, Medium, or High")
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
