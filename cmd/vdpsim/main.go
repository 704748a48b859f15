// Package main implements the vdpsim executable.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"vdpsim/internal/app"
	"vdpsim/internal/version"
)

var flags struct {
	config   string
	backend  string
	nogui    bool
	frames   uint64
	trace    string
	debug    bool
	clockMHz float64
}

var rootCmd = &cobra.Command{
	Use:   "vdpsim",
	Short: "Cycle-accurate simulation of a video design and its SDRAM",
	Long: `vdpsim steps a video output design and an SDRAM timing model in
lock-step on a virtual clock and shows every frame the design scans out.
Press Q or Escape, close the window or send SIGINT to stop at the next
frame boundary.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		version.PrintBuildInfo(cmd.OutOrStdout())
	},
}

func init() {
	// SDL and Ebitengine need the process's main thread. Package init runs
	// on it, and the session runs on the main goroutine with SDL.
	runtime.LockOSThread()

	f := rootCmd.Flags()
	f.StringVar(&flags.config, "config", "", "Path to configuration file (default "+app.GetDefaultConfigPath()+")")
	f.StringVar(&flags.backend, "backend", "", "Display backend: ebitengine, sdl, terminal or headless")
	f.BoolVar(&flags.nogui, "nogui", false, "Run without a window (headless backend)")
	f.Uint64Var(&flags.frames, "frames", 0, "Stop after this many frames, 0 runs until quit")
	f.StringVar(&flags.trace, "trace", "", "Record frames and SDRAM violations to this SQLite file")
	f.BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	f.Float64Var(&flags.clockMHz, "clock-mhz", 0, "Design clock in MHz")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

// applyFlags overrides the configuration with the flags given on the
// command line.
func applyFlags(cmd *cobra.Command, cfg *app.Config) {
	f := cmd.Flags()
	if f.Changed("backend") {
		cfg.Video.Backend = flags.backend
	}
	if f.Changed("frames") {
		cfg.Session.MaxFrames = flags.frames
	}
	if f.Changed("trace") {
		cfg.Debug.TracePath = flags.trace
	}
	if f.Changed("debug") {
		cfg.Debug.EnableLogging = flags.debug
	}
	if f.Changed("clock-mhz") {
		cfg.Clock.MHz = flags.clockMHz
	}
}

func run(cmd *cobra.Command, args []string) error {
	fmt.Println("🎮 vdpsim starting...")

	configPath := flags.config
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	if cfg.Debug.EnableLogging {
		fmt.Println("🐛 Debug mode enabled")
	}
	if flags.nogui {
		fmt.Println("🖥️  Headless mode requested")
	}

	application, err := app.NewApplication(cfg, app.WithHeadless(flags.nogui))
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("Application cleanup error: %v", err)
		}
	}()

	w, h := application.Design().Resolution()
	fmt.Printf("   Resolution: %dx%d\n", w, h)
	fmt.Printf("   Clock: %v\n", cfg.Frequency())
	fmt.Printf("   Backend: %s\n", application.BackendName())
	if cfg.Session.MaxFrames > 0 {
		fmt.Printf("   Frame limit: %d\n", cfg.Session.MaxFrames)
	}
	if cfg.SDRAM.LogFile != "" {
		fmt.Printf("   SDRAM log: %s\n", cfg.SDRAM.LogFile)
	}

	fmt.Println("🎯 Starting session loop...")
	runErr := application.Run(context.Background())

	application.Report().Print(os.Stdout)
	fmt.Println("👋 Simulation shutting down...")

	return runErr
}
