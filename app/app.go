package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/microseg-go/config"
	"github.com/soocke/microseg-go/debug"
	"github.com/soocke/microseg-go/ui/theme"
	"github.com/soocke/microseg-go/ui/view"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const (
	// tick drains worker completions and coalesces canvas redraws.
	tick = 30 * time.Millisecond
	// debugInterval spaces runtime diagnostics when debug is on.
	debugInterval = 5 * time.Second
)

type app struct {
	title   string
	config  *config.Config
	cfgPath string
	logger  *slog.Logger

	container *AppContainer
	afterID   string
	stopDebug context.CancelFunc
	closed    bool
}

// NewApp prepares the main window. Widgets are created in Start.
func NewApp(title string, cfg *config.Config, cfgPath string, logger *slog.Logger) *app {
	a := &app{title: title, config: cfg, cfgPath: cfgPath, logger: logger}

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", cfg.WindowWidth, cfg.WindowHeight))
	return a
}

// Start builds the UI, launches the worker and blocks in the Tk event loop
// until the window closes. It returns the shutdown error, if any.
func (a *app) Start() error {
	theme.SetDark(a.config.DarkMode)

	a.container = BuildContainer(a.config, a.logger, a.cfgPath)
	c := a.container
	p := c.SegmentationPresenter
	c.RootView.Build(view.Handlers{
		OnLoadLastCapture: p.OnLoadLastCapture,
		OnSelectFile:      p.OnSelectFile,
		OnModeChanged:     p.OnModeChanged,
		OnRun:             p.OnRun,
		OnClear:           p.OnClear,
		OnExit:            a.exitHandler,
		OnSettingsSaved:   a.settingsSaved,
		OnResize:          p.OnResize,
		OnPointerDown:     p.OnPointerDown,
		OnPointerDrag:     p.OnPointerDrag,
		OnPointerUp:       p.OnPointerUp,
	})
	c.Loop.Schedule = a.scheduleUpdate

	c.Queue.Start()
	if a.config.Debug {
		ctx, cancel := context.WithCancel(context.Background())
		a.stopDebug = cancel
		debug.StartRuntimeLogger(ctx, debugInterval, a.logger, c.Queue.Stats)
	}
	a.logger.Info("app started", "base_url", a.config.BaseURL, "data_dir", a.config.DataDir)

	// Kick off update loop.
	a.scheduleUpdate()

	App.Wait()
	return a.shutdown()
}

func (a *app) scheduleUpdate() {
	if a.closed {
		return
	}
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.container.Loop.Tick() })
}

func (a *app) settingsSaved(cfg *config.Config) {
	a.logger.Info("settings saved", "path", a.cfgPath, "base_url", cfg.BaseURL)
}

func (a *app) exitHandler() {
	if a.closed {
		return
	}
	a.closed = true
	// Cancel scheduled after event if any.
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	Destroy(App)
}

func (a *app) shutdown() error {
	a.closed = true
	if a.stopDebug != nil {
		a.stopDebug()
	}
	if a.container == nil {
		return nil
	}
	err := a.container.Close()
	if err != nil {
		a.logger.Error("shutdown", "error", err)
	} else {
		a.logger.Info("app stopped", "client", a.container.Client.Stats())
	}
	return err
}
