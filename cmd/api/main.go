package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/auth"
	"server/internal/catalog"
	"server/internal/domain"
	"server/internal/generation"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/providers/questions"
	"server/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	profiles := repo.NewProfileRepository(dbpool)
	generations := repo.NewGenerationRepository(dbpool)
	chunks := repo.NewChunkRepository(dbpool)

	var store domain.ObjectStore
	var filesHandler http.Handler
	if cfg.UseS3() {
		s3Store, err := storage.NewS3Store(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object store")
		}
		store = s3Store
	} else {
		dir := cfg.StorageDir
		if dir == "" {
			dir = "./data/" + cfg.StorageBucket
		}
		fileStore, err := storage.NewFileStore(dir, "/files")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init file store")
		}
		store = fileStore
		filesHandler = fileStore.Handler()
		logger.Warn().Str("dir", dir).Msg("no S3 endpoint configured, serving PDFs from local disk")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)
	authSvc := auth.NewService(profiles, tokens, logger)

	generator, err := questions.NewClient(questions.Options{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init question generator")
	}

	limiter := generation.NewRateLimiter(generations, cfg.GenerationLimit, logger)
	workflow := generation.NewWorkflow(limiter, chunks, generator, cfg.MaxContextChunks, cfg.QuestionsPerGen, logger)

	app := &handlers.App{
		Auth:     authSvc,
		Catalog:  catalog.NewService(store, logger),
		Workflow: workflow,
		Limiter:  limiter,
		Profiles: profiles,
		Logger:   logger,
		Files:    filesHandler,
	}

	router := httpapi.NewRouter(app, cfg)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
