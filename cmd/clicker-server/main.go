// Package main is the entry point for the Click & Hide game server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MRamiBalles/ClickAndHide/server/internal/clock"
	"github.com/MRamiBalles/ClickAndHide/server/internal/config"
	"github.com/MRamiBalles/ClickAndHide/server/internal/events"
	"github.com/MRamiBalles/ClickAndHide/server/internal/game"
	"github.com/MRamiBalles/ClickAndHide/server/internal/infra/storage"
	"github.com/MRamiBalles/ClickAndHide/server/internal/network"
	"github.com/MRamiBalles/ClickAndHide/server/internal/platform/logger"
	"github.com/MRamiBalles/ClickAndHide/server/internal/platform/metrics"
)

// SQLitePersisterAdapter translates domain events to storage events.
type SQLitePersisterAdapter struct {
	repo *storage.SQLiteEventRepository
}

func (a *SQLitePersisterAdapter) Append(event events.GameEvent) error {
	payloadBytes, _ := json.Marshal(event.Payload)
	var payloadMap map[string]interface{}
	json.Unmarshal(payloadBytes, &payloadMap)

	storageEvent := storage.GameEvent{
		ID:        event.ID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		ActorID:   event.ActorID,
		Payload:   payloadMap,
	}
	return a.repo.Append(context.Background(), storageEvent)
}

func main() {
	log.Println("[CLICKER-SERVER] Initializing 'Click & Hide' Authoritative Server...")

	// .env is optional; real env vars win either way.
	_ = godotenv.Load()
	cfg := config.FromEnv()

	appLogger := logger.NewLogger()

	appLogger.Info("Initializing SQLite database '" + cfg.DBPath + "'...")
	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: " + err.Error())
		os.Exit(1)
	}
	eventRepo := storage.NewSQLiteEventRepository(db)
	eventPersister := &SQLitePersisterAdapter{repo: eventRepo}
	achRepo := storage.NewSQLiteAchievementRepository(db)

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(eventPersister)

	appLogger.Info("Bootstrapping Game Session...")
	saves := storage.NewSaveFileGateway(cfg.SavePath)
	session := game.NewSession(game.Config{
		StartingMoney: cfg.StartingMoney,
		ClickCooldown: cfg.ClickCooldown,
		TickPeriod:    cfg.TickPeriod,
	}, clock.RealClock{}, nil, saves, achRepo, eventLog, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session.Bootstrap(ctx)

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(session, appLogger)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	// Outer frame loop: passive income tick + snapshot broadcast.
	go func() {
		frame := time.NewTicker(cfg.FramePeriod)
		defer frame.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-frame.C:
				start := time.Now()
				session.Tick()
				hub.BroadcastSnapshot(session.Snapshot())
				metrics.Get().RecordTick(time.Since(start))
			}
		}
	}()

	// Setup API Routes
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		network.ServeWs(hub, w, r)
	})

	http.HandleFunc("/metrics", metrics.Handler())

	http.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(session.Snapshot())
	})

	http.HandleFunc("/api/new-game", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		session.NewGame(r.Context())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	srv := &http.Server{Addr: cfg.Addr}
	go func() {
		appLogger.Info("HTTP server listening on " + cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed: " + err.Error())
			cancel()
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	cancel()

	if err := db.Close(); err != nil {
		appLogger.Error("Failed to close database: " + err.Error())
	}
	appLogger.Info("Server stopped.")
}
