// Package internal implements the ingestion side: a landing-directory
// watcher, document extraction and the chunker that produces index-ready
// chunks with content-derived ids.
package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"legalrag/config"
	"legalrag/types"
)

// filenameRe mirrors the upload handler's contract: two-letter uppercase
// jurisdiction code plus extension.
var filenameRe = regexp.MustCompile(`^([A-Z]{2})\.(pdf|txt|md)$`)

type Loader struct {
	cfg *config.Config

	fileMutex       sync.Mutex
	fileFirstSeen   map[string]time.Time
	filesProcessing map[string]bool
}

func NewLoader(cfg *config.Config) *Loader {
	createDirectories(cfg.SourceDir, cfg.ArchiveDir, cfg.BadDir)
	return &Loader{
		cfg:             cfg,
		fileFirstSeen:   make(map[string]time.Time),
		filesProcessing: make(map[string]bool),
	}
}

// WatchFile polls the landing directory and emits paths of files that have
// been stable for longer than the monitoring window, so half-written uploads
// are never picked up.
func (l *Loader) WatchFile(ctx context.Context, fileChan chan<- string) {
	fmt.Printf("Start monitoring folder: %s\n", l.cfg.SourceDir)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	defer fmt.Println("File watcher stopped and cleaned up")

	for {
		select {
		case <-ctx.Done():
			fmt.Println("Stopping file watcher (context cancelled)...")
			return
		case <-ticker.C:
			files, err := os.ReadDir(l.cfg.SourceDir)
			if err != nil {
				fmt.Printf("error while reading source directory: %s\n", err)
				continue
			}

			for _, file := range files {
				if file.IsDir() {
					continue
				}

				filePath := filepath.Join(l.cfg.SourceDir, file.Name())

				l.fileMutex.Lock()
				if l.filesProcessing[filePath] {
					l.fileMutex.Unlock()
					continue
				}
				if _, exists := l.fileFirstSeen[filePath]; !exists {
					l.fileFirstSeen[filePath] = time.Now()
					fmt.Printf("New file detected: %s\n", filePath)
					l.fileMutex.Unlock()
					continue
				}
				firstSeen := l.fileFirstSeen[filePath]
				l.fileMutex.Unlock()

				if time.Since(firstSeen) <= l.cfg.MonitoringTime {
					continue
				}

				l.fileMutex.Lock()
				l.filesProcessing[filePath] = true
				l.fileMutex.Unlock()

				select {
				case fileChan <- filePath:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// ProcessFile turns queued files into documents ready for saving.
func (l *Loader) ProcessFile(ctx context.Context, fileChan <-chan string, docChan chan<- *types.Document) {
	defer fmt.Println("File processor stopped and cleaned up")

	for {
		select {
		case <-ctx.Done():
			fmt.Println("Stopping file processor (context cancelled)...")
			return
		case filePath, ok := <-fileChan:
			if !ok {
				fmt.Println("File channel closed, stopping processor...")
				return
			}

			fmt.Printf("Processing file: %s\n", filePath)
			doc, err := l.fetchFile(ctx, filePath)
			if err != nil {
				fmt.Printf("Error processing file %s: %v\n", filePath, err)
				l.MoveToArchive(filePath, 1)
			} else {
				select {
				case docChan <- doc:
				case <-ctx.Done():
					return
				}
			}

			l.fileMutex.Lock()
			delete(l.filesProcessing, filePath)
			delete(l.fileFirstSeen, filePath)
			l.fileMutex.Unlock()
		}
	}
}

// fetchFile extracts text from one file and splits it into chunks tagged
// with the jurisdiction from the filename.
func (l *Loader) fetchFile(ctx context.Context, filePath string) (*types.Document, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	name := filepath.Base(filePath)
	m := filenameRe.FindStringSubmatch(name)
	if m == nil {
		return nil, fmt.Errorf("invalid filename %q: expected XX.pdf, XX.txt or XX.md with a two-letter jurisdiction code", name)
	}
	code, ext := m[1], m[2]

	text, err := l.extractText(ctx, filePath, ext)
	if err != nil {
		return nil, err
	}

	var chunks []types.Chunk
	for i, content := range SplitText(text, l.cfg.ChunkSize, l.cfg.ChunkOverlap) {
		chunks = append(chunks, types.NewChunk(code, code, i, "", content))
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no content extracted from %s", name)
	}

	return &types.Document{
		DocID:        code,
		Jurisdiction: code,
		Title:        code,
		SourcePath:   filePath,
		Chunks:       chunks,
		UpdatedAt:    fileInfo.ModTime(),
	}, nil
}

func (l *Loader) extractText(ctx context.Context, filePath, ext string) (string, error) {
	switch ext {
	case "txt", "md":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case "pdf":
		if l.cfg.ConverterURL == "" {
			return "", fmt.Errorf("PDF ingestion requires CONVERTER_URL to be set")
		}
		if err := validatePDF(filePath); err != nil {
			return "", fmt.Errorf("invalid PDF: %w", err)
		}
		source := filePath
		if l.cfg.CropTop > 0 || l.cfg.CropBottom > 0 {
			cropped := filePath + ".cropped.pdf"
			if err := cropHeaderFooter(filePath, cropped, l.cfg.CropTop, l.cfg.CropBottom); err != nil {
				return "", err
			}
			defer os.Remove(cropped)
			source = cropped
		}
		return convertPDFToMD(ctx, l.cfg.ConverterURL, source)
	default:
		return "", fmt.Errorf("unsupported extension: %s", ext)
	}
}

// MoveToArchive relocates a processed file: fileState 0 archives it, 1 moves
// it to the bad directory.
func (l *Loader) MoveToArchive(filePath string, fileState int) {
	state := l.cfg.ArchiveDir
	if fileState == 1 {
		state = l.cfg.BadDir
	}

	destDir := filepath.Join(state, time.Now().Format("2006-01-02"))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		fmt.Printf("error creating directory: %s\n", err)
		return
	}

	destPath := filepath.Join(destDir, filepath.Base(filePath))
	counter := 1
	for {
		if _, err := os.Stat(destPath); os.IsNotExist(err) {
			break
		}
		ext := filepath.Ext(destPath)
		baseName := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
		destPath = filepath.Join(destDir, fmt.Sprintf("%s_%d%s", baseName, counter, ext))
		counter++
	}

	in, err := os.Open(filePath)
	if err != nil {
		fmt.Printf("error open file: %s\n", err)
		return
	}
	defer in.Close()

	out, err := os.Create(destPath)
	if err != nil {
		fmt.Printf("error create file: %s\n", err)
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		fmt.Printf("error moving file to archive: %s\n", err)
		return
	}

	in.Close()
	os.Remove(filePath)
	fmt.Printf("File moved to archive: %s\n", destPath)
}

func createDirectories(dirs ...string) {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("error creating directory %s: %s\n", dir, err)
		}
	}
}
