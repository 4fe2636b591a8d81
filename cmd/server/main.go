package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/storynest/storynest/internal/analysis"
	"github.com/storynest/storynest/internal/config"
	"github.com/storynest/storynest/internal/core/classifier"
	"github.com/storynest/storynest/internal/core/relations"
	"github.com/storynest/storynest/internal/llm"
	"github.com/storynest/storynest/internal/queue"
	"github.com/storynest/storynest/internal/server"
	"github.com/storynest/storynest/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment as-is")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load configuration", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	driver, err := store.NewBoltDriver(cfg.Graph.URI, cfg.Graph.User, cfg.Graph.Password)
	if err != nil {
		slog.Error("failed to connect to graph store", "error", err)
		os.Exit(1)
	}
	st := store.New(driver)
	if err := st.BuildIndices(ctx); err != nil {
		slog.Warn("failed to build indices", "error", err)
	}

	// Without a usable credential the classifier runs in heuristic-only
	// mode; a missing provider is not fatal.
	var llmClient llm.Client
	if cfg.LLM.HasCredential() {
		llmClient, err = llm.NewClient(ctx, cfg.LLM)
		if err != nil {
			slog.Warn("failed to initialize llm client, running heuristic-only", "error", err)
		}
	} else {
		slog.Info("no model credential configured, running heuristic-only")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
		os.Exit(1)
	}

	cls := classifier.New(llmClient, cfg.Analysis, cfg.LLM)
	pipeline := analysis.NewPipeline(cls, st, cfg.Analysis)
	q := queue.New(rdb, cfg.Queue, pipeline.RunJob)
	q.Start(ctx)

	rel := relations.NewService(st, st)
	srv := server.New(st, rel, pipeline, q)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.SetupRouter(),
	}

	go func() {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
	if err := q.Shutdown(shutdownCtx); err != nil {
		slog.Error("queue shutdown failed", "error", err)
	}
	if err := st.Close(shutdownCtx); err != nil {
		slog.Error("store close failed", "error", err)
	}
	_ = rdb.Close()
}
