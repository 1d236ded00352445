// Package cli implements the interactive terminal frontend: a REPL over the
// run tracker, the record services, analytics, and the local account service.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/raidtracker/internal/analytics"
	"github.com/dmitrijs2005/raidtracker/internal/auth"
	"github.com/dmitrijs2005/raidtracker/internal/config"
	"github.com/dmitrijs2005/raidtracker/internal/export"
	"github.com/dmitrijs2005/raidtracker/internal/logging"
	"github.com/dmitrijs2005/raidtracker/internal/models"
	"github.com/dmitrijs2005/raidtracker/internal/services"
	"github.com/dmitrijs2005/raidtracker/internal/store"
	"github.com/dmitrijs2005/raidtracker/internal/timex"
	"github.com/dmitrijs2005/raidtracker/internal/tracker"
)

// App wires the services together and holds the REPL's session state.
type App struct {
	config *config.Config
	db     *sql.DB
	log    logging.Logger

	wings     *services.WingService
	steps     *services.StepService
	runs      *services.RunService
	deaths    *services.DeathService
	analytics *analytics.Service
	auth      *auth.Service
	tracker   *tracker.Tracker
	exporter  *export.Service

	reader *bufio.Reader
	out    io.Writer

	// userName mirrors the signed-in profile for the prompt; kept current
	// through an auth subscription.
	userName    string
	unsubscribe func()

	// elapsedText holds the latest formatted elapsed time pushed by the
	// tracker's ticker, shown in the prompt while a run is live.
	elapsedText atomic.Value
}

// NewApp opens the database, seeds reference data on first use, and builds
// the application with its full service graph.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := store.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	if err := store.SeedDefaults(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{
		config:    cfg,
		db:        db,
		log:       log,
		wings:     services.NewWingService(db, log),
		steps:     services.NewStepService(db, log),
		runs:      services.NewRunService(db, log),
		deaths:    services.NewDeathService(db, log),
		analytics: analytics.NewService(db),
		auth:      auth.NewService(ctx, db, log),
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}
	a.elapsedText.Store("")

	a.exporter = export.NewService(a.wings, a.steps)
	a.tracker = tracker.New(a.runs, a.wings, a.steps, a.auth, log,
		tracker.WithTickInterval(cfg.TickInterval),
		tracker.WithSettleDelay(cfg.SettleDelay),
		tracker.WithOnElapsed(func(d time.Duration) {
			a.elapsedText.Store(timex.FormatElapsed(d))
		}),
	)

	a.unsubscribe = a.auth.Subscribe(func(p *models.Profile) {
		if p == nil {
			a.userName = ""
		} else {
			a.userName = p.Username
		}
	})

	return a, nil
}

// Run restores any persisted active run and enters the REPL. It blocks until
// the user exits or stdin closes.
func (a *App) Run(ctx context.Context) error {
	if err := a.tracker.Restore(ctx); err != nil {
		a.log.Error(ctx, "failed to restore active run", "error", err)
	}
	a.Root(ctx)
	return nil
}

// Close releases the tracker's timers, the auth subscription and the
// database handle.
func (a *App) Close() error {
	a.tracker.Close()
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.auth.IsLoggedIn()
}
