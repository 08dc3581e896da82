package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/whisperengine-ai/ai-research/internal/api"
	"github.com/whisperengine-ai/ai-research/internal/command"
	"github.com/whisperengine-ai/ai-research/internal/config"
	"github.com/whisperengine-ai/ai-research/internal/embedding"
	"github.com/whisperengine-ai/ai-research/internal/journal"
	"github.com/whisperengine-ai/ai-research/internal/maintenance"
	"github.com/whisperengine-ai/ai-research/internal/memory"
	"github.com/whisperengine-ai/ai-research/internal/provider"
	"github.com/whisperengine-ai/ai-research/internal/session"
	pgstore "github.com/whisperengine-ai/ai-research/internal/store"
	"github.com/whisperengine-ai/ai-research/internal/vectorstore"
	"github.com/whisperengine-ai/ai-research/internal/workspace"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	logger.Info("Starting consciousness core...")

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/consciousd.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", cfgPath), zap.Error(err))
	}
	logger.Info("Config loaded", zap.String("path", cfgPath))

	// Provider router. Sessions fall back to the heuristic generator
	// when no provider is configured.
	var router *provider.Router
	var model string
	if len(cfg.Providers) > 0 {
		router = provider.NewRouter(logger)
		for _, pc := range cfg.Providers {
			provCfg := provider.Config{
				ID: pc.ID, Type: pc.Type, Name: pc.Name,
				Endpoint: pc.Endpoint, APIKey: pc.APIKey, Model: pc.Model,
			}
			switch pc.Type {
			case "openai":
				router.Register(provider.NewOpenAIProvider(provCfg, logger))
			default:
				logger.Warn("unknown provider type", zap.String("id", pc.ID), zap.String("type", pc.Type))
			}
		}
		model = cfg.Providers[0].Model
	}

	// Long-term concept graph.
	var memStore *memory.Store
	if cfg.Database.Neo4j.URI != "" {
		ms, memErr := memory.NewStore(cfg.Database.Neo4j.URI, cfg.Database.Neo4j.User, cfg.Database.Neo4j.Password, logger)
		if memErr != nil {
			logger.Warn("Neo4j unavailable, running without long-term memory", zap.Error(memErr))
		} else {
			memStore = ms
		}
	}

	// Relational persistence for sessions and turns.
	var pgStore *pgstore.Store
	if cfg.Database.Postgres.DSN != "" {
		ps, pgErr := pgstore.New(cfg.Database.Postgres.DSN, logger)
		if pgErr != nil {
			logger.Warn("PostgreSQL unavailable, running without persistence", zap.Error(pgErr))
		} else {
			if mErr := ps.Migrate(context.Background(), "migrations"); mErr != nil {
				logger.Fatal("migration failed", zap.Error(mErr))
			}
			pgStore = ps
		}
	}

	// Thought journal on Redis streams.
	var jrnl *journal.Journal
	if cfg.Database.Redis.URL != "" {
		j, jErr := journal.New(cfg.Database.Redis.URL, logger)
		if jErr != nil {
			logger.Warn("Redis unavailable, running without thought journal", zap.Error(jErr))
		} else {
			jrnl = j
		}
	}

	// Episode vector index on Qdrant, fed by the embedding provider.
	var episodes *vectorstore.EpisodeIndex
	if cfg.Database.Qdrant.Host != "" && cfg.Embedding.Endpoint != "" {
		qc, qErr := vectorstore.NewClient(vectorstore.QdrantConfig{
			Host: cfg.Database.Qdrant.Host,
			Port: cfg.Database.Qdrant.Port,
		})
		if qErr != nil {
			logger.Warn("Qdrant unavailable, running without episode recall", zap.Error(qErr))
		} else {
			embedder := embedding.NewAPIProvider(embedding.Config{
				Endpoint:  cfg.Embedding.Endpoint,
				Model:     cfg.Embedding.Model,
				APIKey:    cfg.Embedding.APIKey,
				Dimension: cfg.Embedding.Dimension,
			})
			ix, ixErr := vectorstore.NewEpisodeIndex(context.Background(), qc, embedder, logger)
			if ixErr != nil {
				logger.Warn("Episode index unavailable", zap.Error(ixErr))
				qc.Close()
			} else {
				episodes = ix
			}
		}
	}

	sessionCfg := session.Config{
		Workspace: workspace.Config{
			Capacity:      cfg.Cognition.WorkspaceCapacity,
			DecayRate:     cfg.Cognition.DecayRate,
			Threshold:     cfg.Cognition.Threshold,
			DecayFloor:    cfg.Cognition.DecayFloor,
			MaxPoolRounds: cfg.Cognition.MaxPoolRounds,
		},
		MaxDepth: cfg.Cognition.MaxReflectionDepth,
	}
	mgr := session.NewManager(sessionCfg, session.Deps{
		Router:   router,
		Model:    model,
		Memory:   memStore,
		Episodes: episodes,
		Journal:  jrnl,
		Store:    pgStore,
		Logger:   logger,
	})

	registry := command.NewRegistry()
	command.RegisterBuiltins(registry)

	sweeper := maintenance.New(
		time.Duration(cfg.Maintenance.SweepIntervalMinutes)*time.Minute,
		mgr, memStore, logger)
	sweeper.Start()

	handler := api.NewHandler(mgr, registry, memStore, jrnl, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("Consciousness core listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	sweeper.Stop()
	ctx := context.Background()
	srv.Shutdown(ctx)
	if memStore != nil {
		memStore.Close(ctx)
	}
	if pgStore != nil {
		pgStore.Close()
	}
	if jrnl != nil {
		jrnl.Close()
	}
}
