package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cocomarkup/internal/config"
	"cocomarkup/internal/logger"
	"cocomarkup/internal/models"
	"cocomarkup/internal/repository/sqlite"
	"cocomarkup/internal/routes"
	"cocomarkup/internal/services/ledger"
	"cocomarkup/internal/services/markup"
	"cocomarkup/internal/services/scheduler"
	"cocomarkup/internal/services/websocket"

	"github.com/pkg/errors"
)

type App struct {
	config    *config.Config
	logger    *logger.Logger
	processor *markup.Processor
	db        *sqlite.DB
	recorder  *ledger.Recorder
	hub       *websocket.HubService
	server    *http.Server
	feedOnce  sync.Once
}

func NewApp() *App {
	cfg := config.Load()
	l := logger.NewLogger(cfg)

	a := &App{
		config:    cfg,
		logger:    l,
		processor: markup.NewProcessor(cfg, l),
	}

	if cfg.LedgerPath != "" {
		db, err := openLedger(cfg.LedgerPath)
		if err != nil {
			l.Warning("Run ledger disabled: %v", err)
		} else {
			a.db = db
			a.recorder = ledger.NewRecorder(sqlite.NewRunRepository(db), sqlite.NewTaskRepository(db), l)
		}
	}

	if cfg.ProgressAddr != "" {
		a.hub = websocket.NewHubService(l)
		a.server = &http.Server{
			Addr:    cfg.ProgressAddr,
			Handler: routes.SetupRoutes(a.hub, cfg, l),
		}
	}

	return a
}

func openLedger(path string) (*sqlite.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create ledger directory")
	}
	return sqlite.New(path)
}

// Run builds datasets for source into destination. Only build-fatal problems
// are returned; failed tasks are reported in the RunReport.
func (a *App) Run(source, destination string) (*models.RunReport, error) {
	tasks, err := a.tasks(source, destination)
	if err != nil {
		return nil, err
	}

	a.startProgressFeed()

	runID := ledger.NewRunID()
	var observers []scheduler.Observer
	recorded := false
	if a.hub != nil {
		observers = append(observers, a.hub)
	}
	if a.recorder != nil {
		run := &models.Run{
			ID:          runID,
			Source:      source,
			Destination: destination,
			Workers:     a.config.Workers,
			StartedAt:   time.Now(),
		}
		if err := a.recorder.StartRun(run); err != nil {
			a.logger.Warning("Run %s will not be recorded: %v", runID, err)
		} else {
			observers = append(observers, a.recorder)
			recorded = true
		}
	}

	fmt.Printf("🚀 COCO markup\n")
	fmt.Printf("📁 Source: %s\n", source)
	fmt.Printf("📦 Destination: %s\n", destination)
	fmt.Printf("🔧 Workers: %d, tasks: %d\n", a.config.Workers, len(tasks))

	sched := scheduler.NewScheduler(a.processor, a.config.Workers, a.logger, observers...)
	report := sched.Run(runID, tasks)

	if recorded {
		if err := a.recorder.FinishRun(runID); err != nil {
			a.logger.Warning("%v", err)
		}
	}

	a.printSummary(report)
	return report, nil
}

// tasks resolves the work list for the configured mode and checks the destination.
func (a *App) tasks(source, destination string) ([]models.Task, error) {
	if err := scheduler.EnsureWritable(destination); err != nil {
		return nil, err
	}
	if sameDirectory(source, destination) {
		return nil, errors.Errorf("destination %s is the source directory", destination)
	}

	if a.config.Mode == config.ModeSingle {
		info, err := os.Stat(source)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read source directory %s", source)
		}
		if !info.IsDir() {
			return nil, errors.Errorf("source %s is not a directory", source)
		}
		return []models.Task{{InputDir: source, OutputDir: destination}}, nil
	}

	return scheduler.Discover(source, destination)
}

// sameDirectory reports whether both paths resolve to the same directory.
// Writing a dataset there would clear the input's own images/ folder.
func sameDirectory(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

func (a *App) startProgressFeed() {
	if a.server == nil {
		return
	}
	a.feedOnce.Do(func() {
		go a.hub.Run()
		go func() {
			a.logger.Info("📡 Progress feed on ws://%s/ws", a.config.ProgressAddr)
			if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.logger.Error("Progress server failed: %v", err)
			}
		}()
	})
}

func (a *App) printSummary(report *models.RunReport) {
	fmt.Printf("✅ Completed: %d\n", report.Count(models.TaskCompleted))
	if failed := report.Count(models.TaskFailed); failed > 0 {
		fmt.Printf("❌ Failed: %d\n", failed)
		for _, res := range report.Results {
			if res.State == models.TaskFailed {
				fmt.Printf("   - %s: %v\n", res.Task.InputDir, res.Err)
			}
		}
	}
	fmt.Println("All tasks completed.")
}

// Close stops the progress feed and releases the ledger and log files.
func (a *App) Close() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Warning("Progress server shutdown: %v", err)
		}
		a.hub.Stop()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warning("Failed to close ledger: %v", err)
		}
	}
	a.logger.Close()
}
