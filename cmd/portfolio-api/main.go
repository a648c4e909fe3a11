package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/mudasirshah/portfolio-agent/internal/adapters/http"
	"github.com/mudasirshah/portfolio-agent/internal/adapters/llm"
	"github.com/mudasirshah/portfolio-agent/internal/adapters/mcp"
	firestorestore "github.com/mudasirshah/portfolio-agent/internal/adapters/storage/firestore"
	memstore "github.com/mudasirshah/portfolio-agent/internal/adapters/storage/memory"
	"github.com/mudasirshah/portfolio-agent/internal/app/agentflow"
	"github.com/mudasirshah/portfolio-agent/internal/app/chat"
	"github.com/mudasirshah/portfolio-agent/internal/app/tools"
	"github.com/mudasirshah/portfolio-agent/internal/config"
	"github.com/mudasirshah/portfolio-agent/internal/domain"
	"github.com/mudasirshah/portfolio-agent/internal/observability"
)

func main() {
	ctx := context.Background()
	log := observability.Logger()
	cfg := config.Load()

	// LLM client. A missing key doesn't stop the process; the orchestrator
	// answers every chat with a configuration error instead.
	apiKeyMissing := !cfg.UseMockLLM && cfg.Provider != config.ProviderMock && cfg.APIKey == ""
	if apiKeyMissing {
		log.Warn("no LLM API key configured, chat will return a configuration error",
			"provider", cfg.Provider)
	}

	llmClient, err := llm.NewClientFromConfig(ctx, cfg)
	if err != nil {
		log.Error("initializing LLM client failed", "error", err)
		os.Exit(1)
	}
	log.Info("LLM client ready", "provider", cfg.Provider, "model", cfg.ModelName)

	// Storage: Firestore or memory.
	var store domain.SessionStore
	switch cfg.StorageBackend {
	case "firestore":
		log.Info("using Firestore storage", "project", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Error("initializing Firestore store failed", "error", err)
			os.Exit(1)
		}
		store = fsStore
	default:
		log.Info("using in-memory storage", "ttl", cfg.SessionTTL, "max_sessions", cfg.MaxSessions)
		memStore := memstore.NewSessionStore(memstore.Options{
			TTL:         cfg.SessionTTL,
			MaxSessions: cfg.MaxSessions,
		})
		memStore.StartJanitor()
		defer memStore.Close()
		store = memStore
	}

	// Capability registry: the static portfolio tools first, then whatever
	// the calendar provider offers.
	registry := tools.NewRegistry()
	tools.RegisterPortfolioTools(registry)

	gateway := mcp.NewGateway(mcp.Config{
		Command:         cfg.CalendarCommand,
		Args:            cfg.CalendarArgs,
		CredentialsPath: cfg.CredentialsPath,
		Timeout:         cfg.DiscoveryTimeout,
	})
	defer gateway.Close()

	gateway.Discover(ctx)
	calendarTools := mcp.RegisterCalendarTools(registry, gateway, cfg.DefaultUTCOffset)
	if len(calendarTools) == 0 {
		log.Warn("calendar provider unavailable, scheduling runs degraded")
	} else {
		log.Info("calendar tools registered", "tools", calendarTools)
	}

	router := agentflow.NewRouter(llmClient, cfg.ModelName)
	handlers := []agentflow.ModeHandler{
		agentflow.NewInformationalHandler(llmClient, registry, cfg.ModelName),
		agentflow.NewSchedulingHandler(llmClient, registry, gateway, cfg.ModelName, calendarTools),
	}
	orchestrator := agentflow.NewOrchestrator(store, registry, router, handlers, apiKeyMissing)

	svc := chat.NewService(store, orchestrator)
	handler := httpadapter.NewServer(svc, cfg.AllowedOrigin)

	srv := &http.Server{
		Addr:    cfg.Host + ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		log.Info("portfolio agent listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
