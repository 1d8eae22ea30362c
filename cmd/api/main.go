package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/solenne/chatsense/backend/internal/analysis/emotion"
	"github.com/solenne/chatsense/backend/internal/analysis/sentiment"
	"github.com/solenne/chatsense/backend/internal/config"
	"github.com/solenne/chatsense/backend/internal/handler"
	alertHandler "github.com/solenne/chatsense/backend/internal/handler/alert"
	"github.com/solenne/chatsense/backend/internal/service/ai"
	"github.com/solenne/chatsense/backend/internal/service/alert"
	"github.com/solenne/chatsense/backend/internal/service/classifier"
	"github.com/solenne/chatsense/backend/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	sessionSvc := session.NewService(cfg.Sentiment.SessionsDir)

	// Initialize AI service; the engine keeps running without it.
	var aiSvc *ai.Service
	if cfg.AI.Enabled() {
		aiSvc, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without reply generation - check the Ark model environment variables")
		} else {
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, skipping reply generation")
	}

	// Classifiers reuse the chat model; when it is missing, classification
	// degrades to the fixed baselines instead of failing.
	var sentimentClf, emotionClf classifier.Classifier
	if aiSvc != nil {
		if clf, err := classifier.NewLLMClassifier(ctx, aiSvc.GetChatModel(), "sentiment", sentiment.Labels); err != nil {
			log.Printf("warning: failed to initialize sentiment classifier: %v", err)
		} else {
			sentimentClf = clf
		}
		if clf, err := classifier.NewLLMClassifier(ctx, aiSvc.GetChatModel(), "emotion", emotion.DefaultLabels); err != nil {
			log.Printf("warning: failed to initialize emotion classifier: %v", err)
		} else {
			emotionClf = clf
		}
	}
	if sentimentClf == nil {
		log.Println("sentiment classifier unavailable, scores fall back to the neutral baseline")
	}
	classifierSvc := classifier.NewService(sentimentClf, emotionClf, classifier.Config{
		Timeout: cfg.Sentiment.ClassifierTimeout,
	})

	// Alerts fan out to websocket subscribers through the hub.
	hub := alertHandler.NewHub()
	alertMgr := alert.NewManager(cfg.Sentiment.AlertThreshold, hub.Dispatch)
	alertMgr.SetEnabled(cfg.Sentiment.AlertsEnabled)
	log.Printf("alert policy: threshold=%v enabled=%v", cfg.Sentiment.AlertThreshold, cfg.Sentiment.AlertsEnabled)

	router := handler.NewRouter(sessionSvc, classifierSvc, alertMgr, hub, aiSvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("ChatSense backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
