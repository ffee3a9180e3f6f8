package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

type converterResponse struct {
	Document struct {
		MdContent string `json:"md_content"`
	} `json:"document"`
}

// convertPDFToMD sends a PDF to the docling-style converter service and
// returns its markdown rendition.
func convertPDFToMD(ctx context.Context, converterURL, filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("files", filepath.Base(filePath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, converterURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("converter error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var d converterResponse
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return "", err
	}
	return d.Document.MdContent, nil
}

// cropHeaderFooter trims headers and footers off every page before
// conversion. top and bottom are in points (1 pt = 1/72 inch).
func cropHeaderFooter(inputPath, outputPath string, top, bottom float64) error {
	conf := pdfapi.LoadConfiguration()

	pages := []string{"1-"}
	cropStr := fmt.Sprintf("%.2f 0 %.2f 0", top, bottom)

	box, err := model.ParseBox(cropStr, pdftypes.POINTS)
	if err != nil {
		return fmt.Errorf("failed to parse crop box: %w", err)
	}

	if err := pdfapi.CropFile(inputPath, outputPath, pages, box, conf); err != nil {
		return fmt.Errorf("failed to crop PDF: %w", err)
	}
	return nil
}

// validatePDF rejects broken uploads before they reach the converter.
func validatePDF(path string) error {
	return pdfapi.ValidateFile(path, pdfapi.LoadConfiguration())
}
