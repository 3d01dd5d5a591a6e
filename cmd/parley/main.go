package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nidhogg/parley/internal/adapter"
	"github.com/nidhogg/parley/internal/api"
	"github.com/nidhogg/parley/internal/assets"
	"github.com/nidhogg/parley/internal/config"
	"github.com/nidhogg/parley/internal/embedding"
	"github.com/nidhogg/parley/internal/llm"
	"github.com/nidhogg/parley/internal/notify"
	"github.com/nidhogg/parley/internal/prompt"
	"github.com/nidhogg/parley/internal/rag"
	"github.com/nidhogg/parley/internal/service"
	pgstore "github.com/nidhogg/parley/internal/store"
	"github.com/nidhogg/parley/internal/tools"
	"github.com/nidhogg/parley/internal/vectorstore"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	logger.Info("Starting Parley...")

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/parley.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", cfgPath), zap.Error(err))
	}
	logger.Info("Config loaded", zap.String("path", cfgPath))

	// Prompt libraries
	qaPrompts, err := prompt.Load(cfg.Prompts.QA, prompt.QANames)
	if err != nil {
		logger.Fatal("failed to load QA prompts", zap.Error(err))
	}
	sqlPrompts, err := prompt.Load(cfg.Prompts.SQL, prompt.SQLNames)
	if err != nil {
		logger.Fatal("failed to load SQL prompts", zap.Error(err))
	}

	// LLM clients: one for answers, one for guardrail verdicts
	answerLLM := llm.NewStructured(llm.NewClient(llm.Config{
		Endpoint:    cfg.LLM.Endpoint,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
	}, logger))
	guardrailLLM := llm.NewStructured(llm.NewClient(llm.Config{
		Endpoint:    cfg.Guardrails.Endpoint,
		APIKey:      cfg.Guardrails.APIKey,
		Model:       cfg.Guardrails.Model,
		Temperature: cfg.Guardrails.Temperature,
	}, logger))

	// RAG: embeddings + qdrant retrieval + cross-encoder reranking
	embedder := embedding.NewClient(embedding.Config{
		Endpoint:  cfg.RAG.Embedding.Endpoint,
		Model:     cfg.RAG.Embedding.Model,
		APIKey:    cfg.RAG.Embedding.APIKey,
		Dimension: cfg.RAG.Embedding.Dimension,
	})
	qdrant, err := vectorstore.NewClient(vectorstore.Config{
		Host: cfg.RAG.Qdrant.Host,
		Port: cfg.RAG.Qdrant.Port,
	})
	if err != nil {
		logger.Fatal("failed to connect qdrant", zap.Error(err))
	}
	if err := qdrant.EnsureCollection(context.Background(), cfg.RAG.Collection, uint64(embedder.Dimension())); err != nil {
		logger.Warn("could not ensure knowledge-base collection", zap.Error(err))
	}
	reranker := rag.NewReranker(rag.RerankerConfig{
		Endpoint: cfg.RAG.RerankEndpoint,
		APIKey:   cfg.RAG.RerankAPIKey,
	})
	orchestrator := rag.NewOrchestrator(embedder, qdrant, reranker, rag.Config{
		Collection:          cfg.RAG.Collection,
		RetrievalCandidates: cfg.RAG.RetrievalCandidates,
		RankingCandidates:   cfg.RAG.RankingCandidates,
	}, logger)

	// Asset graph backing the built-in tools
	var graph *assets.Graph
	registry := tools.NewRegistry()
	if cfg.Database.Neo4j.URI != "" {
		graph, err = assets.NewGraph(cfg.Database.Neo4j.URI, cfg.Database.Neo4j.User, cfg.Database.Neo4j.Password, logger)
		if err != nil {
			logger.Warn("Neo4j unavailable, running without asset tools", zap.Error(err))
		} else {
			tools.RegisterAssetTools(registry, graph)
		}
	}
	toolModel := cfg.Tools.Model
	if toolModel == "" {
		toolModel = cfg.LLM.Model
	}
	runner := tools.NewLLMRunner(llm.NewClient(llm.Config{
		Endpoint:    cfg.LLM.Endpoint,
		APIKey:      cfg.LLM.APIKey,
		Model:       toolModel,
		Temperature: cfg.LLM.Temperature,
	}, logger), registry, logger)

	// Persistence
	var store *pgstore.Store
	if cfg.Database.Postgres.DSN != "" {
		ps, pgErr := pgstore.New(cfg.Database.Postgres.DSN, logger)
		if pgErr != nil {
			logger.Warn("PostgreSQL unavailable, running without persistence", zap.Error(pgErr))
		} else {
			migrationsDir := cfg.MigrationsDir
			if migrationsDir == "" {
				migrationsDir = "migrations"
			}
			if mErr := ps.Migrate(context.Background(), migrationsDir); mErr != nil {
				logger.Fatal("migration failed", zap.Error(mErr))
			}
			store = ps
		}
	}

	// Notification sinks: responses always reach the in-process store the API
	// reads; redis and chat sinks are layered on top when configured.
	responses := notify.NewMemory()
	sinks := []notify.Notifier{responses, notify.NewLog(logger)}
	if cfg.Database.Redis.URL != "" {
		opts, rErr := redis.ParseURL(cfg.Database.Redis.URL)
		if rErr != nil {
			logger.Warn("invalid redis url, skipping redis notifications", zap.Error(rErr))
		} else {
			sinks = append(sinks, notify.NewRedis(redis.NewClient(opts), 0))
		}
	}
	if cfg.Notifications.Slack.Enabled && cfg.Notifications.Slack.Token != "" {
		sinks = append(sinks, notify.NewSlack(cfg.Notifications.Slack.Token, cfg.Notifications.Slack.Channel, logger))
	}
	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.Token != "" {
		discord, dErr := notify.NewDiscord(cfg.Notifications.Discord.Token, cfg.Notifications.Discord.Channel, logger)
		if dErr != nil {
			logger.Warn("discord unavailable", zap.Error(dErr))
		} else {
			sinks = append(sinks, discord)
		}
	}
	notifier := notify.NewFanout(logger, sinks...)

	// Service + bus
	qaAdapter := adapter.NewAgentAdapter(guardrailLLM, answerLLM, orchestrator, runner, logger)
	sqlAdapter := adapter.NewSQLAdapter(guardrailLLM, answerLLM, logger)
	svc := service.New(qaAdapter, sqlAdapter, qaPrompts, sqlPrompts, notifier, store, logger)
	bus := service.Bootstrap(svc)

	handler := api.NewHandler(bus, responses, store, logger)

	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler.Routes(),
	}

	go func() {
		logger.Info("Parley listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down Parley...")
	ctx := context.Background()
	srv.Shutdown(ctx)
	if graph != nil {
		graph.Close(ctx)
	}
	if store != nil {
		store.Close()
	}
	qdrant.Close()
}
