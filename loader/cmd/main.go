package main

import (
	"context"
	"log"

	"legalrag/config"
	"legalrag/loader/service"
	"legalrag/model"
	"legalrag/store"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	ctx := context.Background()
	pool, err := store.NewPostgresStore(ctx, cfg.PostgresDSN())
	if err != nil {
		log.Fatal("error to connect to Postgres database: ", err)
	}

	if err := pool.Init(ctx, cfg.EmbedDimensions); err != nil {
		log.Fatal("error to create tables: ", err)
	}

	llm, err := model.NewOpenAIModel(cfg)
	if err != nil {
		log.Fatal("error to create model client: ", err)
	}

	service.New(cfg, pool, llm).Run()

	log.Println("Closing database connection pool...")
	if err := pool.Close(); err != nil {
		log.Printf("error closing pool: %v\n", err)
	}
}
