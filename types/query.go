package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

// AskParams carries an incoming question. The ping flag is handled before
// validation so the liveness probe never pays for it.
type AskParams struct {
	Question string `json:"question" query:"question" validate:"required"`
	Grade    bool   `json:"grade" query:"grade"`
}

// DiffParams carries a draft/refined pair for server-side diff rendering.
type DiffParams struct {
	Draft   string `json:"draft" validate:"required"`
	Refined string `json:"refined" validate:"required"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *AskParams) Validate() map[string]string {
	return validateStruct(params)
}

func (params *DiffParams) Validate() map[string]string {
	return validateStruct(params)
}

func validateStruct(s any) map[string]string {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

// AskResponse is the ask endpoint's JSON envelope. RefinedAnswer always
// carries the final user-facing text: the graded revision when grading ran,
// otherwise the draft itself.
type AskResponse struct {
	CountryHeader    string           `json:"country_header"`
	RefinedAnswer    string           `json:"refined_answer"`
	CountryDetection CountryDetection `json:"country_detection"`
	Evaluation       *Evaluation      `json:"evaluation,omitempty"`
	DraftAnswer      string           `json:"draft_answer"`
}
