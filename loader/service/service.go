package service

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"legalrag/config"
	"legalrag/loader/internal"
	"legalrag/model"
	"legalrag/store"
	"legalrag/types"
)

type Service struct {
	logger   *slog.Logger
	index    store.Indexer
	embedder model.Embedder
	loader   *internal.Loader
}

func New(cfg *config.Config, index store.Indexer, embedder model.Embedder) *Service {
	return &Service{
		logger:   slog.Default(),
		index:    index,
		embedder: embedder,
		loader:   internal.NewLoader(cfg),
	}
}

func (s *Service) Stop() {
	s.logger.Info("Loader Service stopped")
}

func (s *Service) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fileChan := make(chan string, 10)
	docChan := make(chan *types.Document)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(fileChan)
		s.loader.WatchFile(ctx, fileChan)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(docChan)
		s.loader.ProcessFile(ctx, fileChan, docChan)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.DocumentSave(ctx, docChan)
	}()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)

	<-sigch
	log.Println("Received shutdown signal, shutting down gracefully...")

	cancel()
	signal.Stop(sigch)
	close(sigch)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("All goroutines stopped successfully")
	case <-shutdownCtx.Done():
		log.Println("Timeout waiting for goroutines to stop, forcing shutdown...")
	}

	s.Stop()
}

// DocumentSave embeds and indexes each extracted document. Existing entries
// for the same document are dropped first, so a re-upload fully overwrites;
// content-derived chunk ids keep the upserts themselves idempotent.
func (s *Service) DocumentSave(ctx context.Context, docChan <-chan *types.Document) {
	for doc := range docChan {
		if err := s.saveDocument(ctx, doc); err != nil {
			fmt.Printf("Error saving document %s: %v\n", doc.DocID, err)
			s.loader.MoveToArchive(doc.SourcePath, 1)
			continue
		}
		fmt.Printf("Successfully saved document %s (%d chunks)\n", doc.DocID, len(doc.Chunks))
		s.loader.MoveToArchive(doc.SourcePath, 0)
	}
}

func (s *Service) saveDocument(ctx context.Context, doc *types.Document) error {
	for i := range doc.Chunks {
		embedding, err := s.embedder.Embed(ctx, doc.Chunks[i].Content)
		if err != nil {
			return fmt.Errorf("embedding chunk %d: %w", i, err)
		}
		doc.Chunks[i].Embedding = embedding
	}

	if _, err := s.index.DeleteByDocID(ctx, doc.DocID); err != nil {
		return fmt.Errorf("deleting old chunks: %w", err)
	}

	for i := range doc.Chunks {
		if err := s.index.Upsert(ctx, doc.Chunks[i]); err != nil {
			return fmt.Errorf("upserting chunk %d: %w", i, err)
		}
	}
	return nil
}
