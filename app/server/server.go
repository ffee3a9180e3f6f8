package server

import (
	"context"
	"log"
	"log/slog"

	"legalrag/app/api"
	"legalrag/compose"
	"legalrag/config"
	"legalrag/detect"
	"legalrag/grade"
	"legalrag/model"
	"legalrag/retrieve"
	"legalrag/store"

	"github.com/gofiber/fiber/v2"
)

var fiberConfig = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewServer(cfg *config.Config) *Server {
	return &Server{
		cfg:    cfg,
		logger: slog.Default(),
	}
}

func (s *Server) Stop() {
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()

	pool, err := store.NewPostgresStore(ctx, s.cfg.PostgresDSN())
	if err != nil {
		log.Fatal("error to connect to Postgres database: ", err)
	}
	if err := pool.Init(ctx, s.cfg.EmbedDimensions); err != nil {
		log.Fatal("error to create tables: ", err)
	}

	llm, err := model.NewOpenAIModel(s.cfg)
	if err != nil {
		log.Fatal("error to create model client: ", err)
	}

	var (
		counter   = retrieve.TiktokenCounter(s.cfg.ChatModel)
		detector  = detect.NewAliasDetector()
		retriever = retrieve.New(llm, pool, s.cfg.FallbackMin, s.cfg.EvidenceTokens, counter)
		composer  = compose.New(llm, s.cfg.MaxRetries, s.cfg.RetryDelay, s.cfg.CompleteTimeout, counter)
		grader    = grade.New(llm, s.cfg.CompleteTimeout)

		app          = fiber.New(fiberConfig)
		checkHandler = api.NewCheckHandler()
		askHandler   = api.NewAskHandler(detector, retriever, composer, grader, pool, s.cfg.TopK, s.cfg.RequestTimeout)
		fileHandler  = api.NewFileHandler(pool, s.cfg.SourceDir)
		diffHandler  = api.NewDiffHandler()

		check = app.Group("/check")
		apiv1 = app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Get("/ask", askHandler.HandleAsk)
	apiv1.Post("/ask", askHandler.HandleAsk)
	apiv1.Post("/diff", diffHandler.HandleDiff)
	apiv1.Post("/upload", fileHandler.HandleUpload)
	apiv1.Delete("/documents/:code", fileHandler.HandleDelete)

	if err := app.Listen(s.cfg.ServerAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
	}
}
