package api

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"legalrag/compose"
	"legalrag/detect"
	"legalrag/grade"
	"legalrag/retrieve"
	"legalrag/store"
	"legalrag/types"

	"github.com/gofiber/fiber/v2"
)

// livenessPayload is the fixed ping response. The serverless host's
// cold-start mitigation polls with ?ping=1 and expects this exact body with
// no JSON envelope.
const livenessPayload = "pong"

// AskHandler sequences detection, retrieval, composition and optional
// grading for one question. Requests are stateless; every dependency is
// read-only or external.
type AskHandler struct {
	detector       detect.Detector
	retriever      *retrieve.Retriever
	composer       *compose.Composer
	grader         *grade.Grader
	index          store.Indexer
	topK           int
	requestTimeout time.Duration
}

func NewAskHandler(
	detector detect.Detector,
	retriever *retrieve.Retriever,
	composer *compose.Composer,
	grader *grade.Grader,
	index store.Indexer,
	topK int,
	requestTimeout time.Duration,
) *AskHandler {
	return &AskHandler{
		detector:       detector,
		retriever:      retriever,
		composer:       composer,
		grader:         grader,
		index:          index,
		topK:           topK,
		requestTimeout: requestTimeout,
	}
}

func (h *AskHandler) HandleAsk(c *fiber.Ctx) error {
	// Liveness short-circuit: answer before touching any collaborator.
	if c.Query("ping") != "" {
		return c.SendString(livenessPayload)
	}

	params, err := h.parseParams(c)
	if err != nil {
		return err
	}
	// The validator catches an absent question; a whitespace-only one still
	// satisfies `required`, so trim explicitly. Both are the same client error.
	if errs := types.Validate(&params); len(errs) > 0 || strings.TrimSpace(params.Question) == "" {
		return ErrMalformedInput()
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.requestTimeout)
	defer cancel()

	// The jurisdiction listing doubles as a cheap index-availability check:
	// if it fails, retrieval would too, and no answer is fabricated.
	known, err := h.index.Jurisdictions(ctx)
	if err != nil {
		return fmt.Errorf("%w: listing jurisdictions: %v", retrieve.ErrUnavailable, err)
	}

	detection := h.detector.Detect(params.Question, known)
	log.Printf("[ASK] detected=%v available=%v grade=%t", detection.ISOCodes, detection.Available, params.Grade)

	header := renderCountryHeader(detection)

	evidence, err := h.retriever.Retrieve(ctx, params.Question, detection.ISOCodes, h.topK)
	if err != nil {
		return err
	}

	if evidence.Empty() {
		msg := noDocumentsMessage(detection)
		return c.JSON(types.AskResponse{
			CountryHeader:    header,
			RefinedAnswer:    msg,
			CountryDetection: detection,
			DraftAnswer:      msg,
		})
	}

	draft, err := h.composer.Compose(ctx, params.Question, evidence)
	if err != nil {
		return err
	}

	resp := types.AskResponse{
		CountryHeader:    header,
		RefinedAnswer:    draft,
		CountryDetection: detection,
		DraftAnswer:      draft,
	}

	if params.Grade {
		result, err := h.grader.Grade(ctx, params.Question, draft, evidence)
		if err != nil {
			// Grading is best-effort: degrade to the ungraded draft.
			log.Printf("[GRADER] degraded, returning draft only: %v", err)
		} else {
			resp.RefinedAnswer = result.RefinedAnswer
			resp.Evaluation = &result.Evaluation
		}
	}

	return c.JSON(resp)
}

func (h *AskHandler) parseParams(c *fiber.Ctx) (types.AskParams, error) {
	var params types.AskParams
	if c.Method() == fiber.MethodGet {
		params.Question = c.Query("question")
		params.Grade = c.QueryBool("grade")
		return params, nil
	}
	if err := c.BodyParser(&params); err != nil {
		return params, ErrBadRequest()
	}
	return params, nil
}

func noDocumentsMessage(d types.CountryDetection) string {
	if len(d.ISOCodes) == 0 {
		return "No relevant documents were found for your question. Please try rephrasing it."
	}
	return fmt.Sprintf("No documents found for the specified countries: %s. Please try another query or check if the relevant legislation is available.",
		strings.Join(d.ISOCodes, ", "))
}

// renderCountryHeader builds the markdown table showing each detected
// jurisdiction and whether the index holds content for it.
func renderCountryHeader(d types.CountryDetection) string {
	if len(d.ISOCodes) == 0 {
		return ""
	}

	available := make(map[string]struct{}, len(d.Available))
	for _, code := range d.Available {
		available[code] = struct{}{}
	}

	lines := []string{
		"# Country Detection",
		"",
		"| Detected in Query | Document Available |",
		"|:-----------------:|:------------------:|",
	}
	codes := append([]string(nil), d.ISOCodes...)
	sort.Strings(codes)
	for _, code := range codes {
		icon := "❌"
		if _, ok := available[code]; ok {
			icon = "✅"
		}
		lines = append(lines, fmt.Sprintf("| %s (%s) | %s |", isoToFlag(code), code, icon))
	}

	return strings.Join(lines, "\n") + "\n\n---\n\n"
}

// isoToFlag maps a two-letter code to its regional-indicator flag emoji.
func isoToFlag(code string) string {
	if len(code) != 2 {
		return ""
	}
	var sb strings.Builder
	for _, r := range strings.ToUpper(code) {
		if r < 'A' || r > 'Z' {
			return ""
		}
		sb.WriteRune(0x1F1E6 + r - 'A')
	}
	return sb.String()
}
