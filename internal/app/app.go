// Package app wires the design, the memory model, a display and the session
// loop into a runnable simulation.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"

	"vdpsim/internal/design"
	"vdpsim/internal/graphics"
	"vdpsim/internal/input"
	"vdpsim/internal/sdram"
	"vdpsim/internal/session"
	"vdpsim/internal/trace"
)

// Application represents one simulation run
type Application struct {
	config *Config

	// Simulated hardware
	design *design.VDP
	memory *sdram.Model

	// Graphics backend
	graphicsBackend graphics.Backend
	window          graphics.Window
	display         *graphics.Display

	// Quit sources
	latch       *input.Latch
	limiter     *input.FrameLimiter
	stopSignals func()

	session  *session.Session
	recorder *trace.Recorder
	sdramLog *os.File

	observers []session.Observer
	logOutput io.Writer
	headless  bool

	stats   session.Stats
	ran     bool
	cleaned bool
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("Application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// Option configures an Application.
type Option func(*Application)

// WithHeadless forces the headless backend.
func WithHeadless(headless bool) Option {
	return func(app *Application) {
		app.headless = headless
	}
}

// WithLogOutput sends component logs to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(app *Application) {
		app.logOutput = w
	}
}

// WithObserver adds a session observer.
func WithObserver(o session.Observer) Option {
	return func(app *Application) {
		app.observers = append(app.observers, o)
	}
}

// NewApplication creates a simulation from cfg. A nil cfg uses the
// defaults. Any display resource that cannot be created is fatal.
func NewApplication(cfg *Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, &ApplicationError{Component: "config", Operation: "validation", Err: err}
	}

	app := &Application{
		config:    cfg,
		logOutput: os.Stderr,
	}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.initializeComponents(); err != nil {
		app.Cleanup()
		return nil, err
	}

	return app, nil
}

func (app *Application) logger(prefix string) *log.Logger {
	return log.New(app.logOutput, prefix, log.LstdFlags)
}

func (app *Application) debugLogger(prefix string) *log.Logger {
	if !app.config.Debug.EnableLogging {
		return log.New(io.Discard, "", 0)
	}
	return app.logger(prefix)
}

// initializeComponents initializes all application components
func (app *Application) initializeComponents() error {
	dcfg, err := app.config.DesignConfig()
	if err != nil {
		return &ApplicationError{Component: "design", Operation: "configuration", Err: err}
	}
	app.design, err = design.New(dcfg)
	if err != nil {
		return &ApplicationError{Component: "design", Operation: "creation", Err: err}
	}
	width, height := app.design.Resolution()

	if path := app.config.Debug.TracePath; path != "" {
		app.recorder, err = trace.Open(path, trace.Meta{
			Width:   width,
			Height:  height,
			ClockHz: float64(app.config.Frequency()),
			Design:  string(dcfg.Pattern),
		}, trace.WithLogger(app.debugLogger("[TRACE] ")))
		if err != nil {
			return &ApplicationError{Component: "trace", Operation: "open", Err: err}
		}
	}

	if err := app.initializeMemory(); err != nil {
		return &ApplicationError{Component: "sdram", Operation: "creation", Err: err}
	}

	if err := app.initializeGraphicsBackend(width, height); err != nil {
		return &ApplicationError{Component: "graphics", Operation: "startup", Err: err}
	}
	app.display = graphics.NewDisplay(app.window, app.config.Paths.Snapshots, app.logger("[DISPLAY] "))

	app.latch = input.NewLatch()
	app.latch.EnableDebug(app.config.Debug.EnableLogging)
	app.stopSignals = input.NotifySignals(app.latch)
	app.limiter = input.FrameLimit(app.config.Session.MaxFrames)
	quit := input.Any(app.latch, app.limiter, app.display)

	opts := []session.Option{session.WithLogger(app.logger("[SESSION] "))}
	for _, o := range app.observers {
		opts = append(opts, session.WithObserver(o))
	}
	if app.recorder != nil {
		opts = append(opts, session.WithObserver(app.recorder))
	}

	app.session, err = session.New(session.Config{
		Width:       width,
		Height:      height,
		Frequency:   app.config.Frequency(),
		ResetCycles: app.config.Session.ResetCycles,
	}, app.design, app.memory, app.display, quit, opts...)
	if err != nil {
		return &ApplicationError{Component: "session", Operation: "creation", Err: err}
	}

	return nil
}

// initializeMemory builds the SDRAM model and opens its log file
func (app *Application) initializeMemory() error {
	b := app.config.SDRAMBuilder()

	if path := app.config.SDRAM.LogFile; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "open SDRAM log")
		}
		app.sdramLog = f
		b = b.WithLogger(log.New(f, "[SDRAM] ", log.Lmicroseconds))
	}
	if app.recorder != nil {
		b = b.WithReporter(app.recorder)
	}

	m, err := b.Build()
	if err != nil {
		return err
	}
	app.memory = m
	return nil
}

// initializeGraphicsBackend initializes the graphics backend based on configuration
func (app *Application) initializeGraphicsBackend(width, height int) error {
	backendType := graphics.BackendType(app.config.Video.Backend)
	if app.headless {
		backendType = graphics.BackendHeadless
	}

	graphicsConfig := graphics.Config{
		WindowTitle:    fmt.Sprintf("vdpsim - %dx%d @ %v", width, height, app.config.Frequency()),
		WindowWidth:    app.config.Window.Width,
		WindowHeight:   app.config.Window.Height,
		Fullscreen:     app.config.Window.Fullscreen,
		VSync:          app.config.Video.VSync,
		Filter:         app.config.Video.Filter,
		AspectRatio:    app.config.Video.AspectRatio,
		ShowFPS:        app.config.Video.ShowFPS,
		RefreshRate:    app.config.Video.RefreshRate,
		Brightness:     app.config.Video.Brightness,
		Contrast:       app.config.Video.Contrast,
		Saturation:     app.config.Video.Saturation,
		SnapshotDir:    app.config.Paths.Snapshots,
		SnapshotFrames: app.config.Video.Snapshots,
		Headless:       backendType == graphics.BackendHeadless,
		Debug:          app.config.Debug.EnableLogging,
	}

	backend, err := graphics.CreateBackend(backendType)
	if err != nil {
		return err
	}

	if err := backend.Initialize(graphicsConfig); err != nil {
		var startup *graphics.StartupError
		if backend.GetName() != "Ebitengine" || errors.As(err, &startup) {
			return err
		}
		// Builds without a GUI can still run the simulation
		fmt.Printf("[APP_WARNING] Ebitengine backend failed (%v), falling back to headless mode\n", err)
		backend = graphics.NewHeadlessBackend()
		graphicsConfig.Headless = true
		if err := backend.Initialize(graphicsConfig); err != nil {
			return err
		}
	}
	app.graphicsBackend = backend

	app.window, err = backend.CreateWindow(graphicsConfig.WindowTitle, width, height)
	if err != nil {
		return err
	}

	return nil
}

// Run runs the session until the user quits, the frame limit is reached or
// ctx is cancelled. With Ebitengine the game loop takes over the calling
// goroutine, which must be the main one.
func (app *Application) Run(ctx context.Context) error {
	if app.ran {
		return &ApplicationError{Component: "session", Operation: "run", Err: errors.New("already run")}
	}
	app.ran = true

	var err error
	if lw, ok := graphics.AsLoopWindow(app.window); ok {
		app.stats, err = app.runWithGameLoop(ctx, lw)
	} else {
		app.stats, err = app.session.Run(ctx)
	}

	if app.recorder != nil {
		if ferr := app.recorder.Flush(); ferr != nil && err == nil {
			err = ferr
		}
	}
	if err != nil {
		return &ApplicationError{Component: "session", Operation: "run", Err: err}
	}
	return nil
}

type runResult struct {
	stats session.Stats
	err   error
}

// runWithGameLoop runs the window's loop on the calling goroutine and the
// session on another one. The session starts only once the loop is ready;
// a loop that fails before that is a startup error and nothing is stepped.
// When the loop ends the session stops at the next frame boundary.
func (app *Application) runWithGameLoop(ctx context.Context, lw graphics.LoopWindow) (session.Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan struct{})
	done := make(chan runResult, 1)
	go func() {
		select {
		case <-lw.Ready():
		case <-loopDone:
			lw.Cleanup()
			done <- runResult{stats: app.session.Stats()}
			return
		}
		stats, err := app.session.Run(ctx)
		lw.Cleanup()
		done <- runResult{stats, err}
	}()

	loopErr := lw.Run()
	cancel()
	close(loopDone)
	r := <-done

	if loopErr != nil && r.err == nil {
		r.err = loopErr
		if app.session.Transitions() == 0 {
			r.err = &graphics.StartupError{Backend: app.BackendName(), Resource: "window", Err: loopErr}
		}
	}
	return r.stats, r.err
}

// Stop asks the session to stop at the next frame boundary
func (app *Application) Stop() {
	app.latch.Request("stop requested")
}

// Stats returns the session statistics.
func (app *Application) Stats() session.Stats {
	if app.session == nil {
		return app.stats
	}
	return app.session.Stats()
}

// QuitReason describes why the session stopped.
func (app *Application) QuitReason() string {
	switch {
	case app.latch != nil && app.latch.QuitRequested():
		return app.latch.Reason()
	case app.display != nil && app.display.Reason() != "":
		return app.display.Reason()
	case app.limiter != nil && app.limiter.Reached():
		return fmt.Sprintf("frame limit of %d reached", app.config.Session.MaxFrames)
	}
	return ""
}

// GetConfig returns the configuration
func (app *Application) GetConfig() *Config {
	return app.config
}

// Design returns the simulated design.
func (app *Application) Design() *design.VDP {
	return app.design
}

// Memory returns the SDRAM model.
func (app *Application) Memory() *sdram.Model {
	return app.memory
}

// Window returns the display window.
func (app *Application) Window() graphics.Window {
	return app.window
}

// BackendName returns the name of the graphics backend in use.
func (app *Application) BackendName() string {
	if app.graphicsBackend == nil {
		return ""
	}
	return app.graphicsBackend.GetName()
}

// Recorder returns the trace recorder, or nil when tracing is off.
func (app *Application) Recorder() *trace.Recorder {
	return app.recorder
}

// Cleanup releases all resources. It is safe to call more than once.
func (app *Application) Cleanup() error {
	if app.cleaned {
		return nil
	}
	app.cleaned = true

	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	if app.stopSignals != nil {
		app.stopSignals()
	}
	if app.window != nil {
		keep(app.window.Cleanup())
	}
	if app.graphicsBackend != nil {
		keep(app.graphicsBackend.Cleanup())
	}
	if app.recorder != nil {
		keep(app.recorder.Close())
	}
	if app.sdramLog != nil {
		keep(app.sdramLog.Close())
	}

	return first
}
