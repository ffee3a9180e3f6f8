package api

import (
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strings"

	"legalrag/store"

	"github.com/gofiber/fiber/v2"
)

// filenameRe: two-letter uppercase jurisdiction code plus a supported
// extension. The code becomes the document id for every chunk of the file.
var filenameRe = regexp.MustCompile(`^([A-Z]{2})\.(pdf|txt|md)$`)

type FileHandler struct {
	index     store.Indexer
	sourceDir string
}

func NewFileHandler(index store.Indexer, sourceDir string) *FileHandler {
	return &FileHandler{
		index:     index,
		sourceDir: sourceDir,
	}
}

// HandleUpload drops an uploaded document into the loader's landing
// directory; the ingestion pipeline picks it up from there.
func (h *FileHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}

	if !filenameRe.MatchString(fileHeader.Filename) {
		return NewError(fiber.StatusBadRequest,
			fmt.Sprintf("invalid filename %q: expected XX.pdf, XX.txt or XX.md with a two-letter jurisdiction code", fileHeader.Filename))
	}

	path := filepath.Join(h.sourceDir, fileHeader.Filename)
	if err := c.SaveFile(fileHeader, path); err != nil {
		return err
	}
	log.Printf("[UPLOAD] file saved to: %s", path)

	return c.JSON(fiber.Map{"result": "accepted", "file": fileHeader.Filename})
}

// HandleDelete is the source-removal trigger: it drops every indexed chunk
// of the given document.
func (h *FileHandler) HandleDelete(c *fiber.Ctx) error {
	code := strings.ToUpper(c.Params("code"))
	if len(code) != 2 || code < "AA" || code > "ZZ" {
		return NewError(fiber.StatusBadRequest, "expected a two-letter jurisdiction code")
	}

	removed, err := h.index.DeleteByDocID(c.UserContext(), code)
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrNotFound(code, "document")
	}
	log.Printf("[DELETE] %d index entries removed for doc: %s", removed, code)

	return c.JSON(fiber.Map{"result": "deleted", "doc_id": code, "chunks": removed})
}
