package api

import (
	"legalrag/diff"
	"legalrag/types"

	"github.com/gofiber/fiber/v2"
)

type DiffHandler struct{}

func NewDiffHandler() *DiffHandler {
	return &DiffHandler{}
}

type diffResponse struct {
	Segments []diff.Segment `json:"segments"`
	HTML     string         `json:"html"`
}

// HandleDiff renders the draft/refined structural diff for display. The
// frontend calls this with the two answers from an ask response.
func (h *DiffHandler) HandleDiff(c *fiber.Ctx) error {
	var params types.DiffParams
	if err := c.BodyParser(&params); err != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	return c.JSON(diffResponse{
		Segments: diff.Render(params.Draft, params.Refined),
		HTML:     diff.RenderHTML(params.Draft, params.Refined),
	})
}
