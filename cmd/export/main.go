package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mitsuba-export/internal/config"
	"mitsuba-export/internal/export"
	"mitsuba-export/internal/log"
	"mitsuba-export/internal/scene"
	"mitsuba-export/internal/watch"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a .toml or .json config file")
	scenePath := flag.String("scene", "", "Scene document (JSON)")
	output := flag.String("output", "", "Root scene file, must end in .xml (default: next to the scene)")
	split := flag.Bool("split", false, "Split the scene into per-category fragment files")
	ids := flag.Bool("ids", false, "Give every plugin an id derived from its name")
	keepBackground := flag.Bool("keep-background", false, "Export the default background")
	selection := flag.Bool("selection", false, "Export selected objects only")
	forward := flag.String("forward", "", "Forward axis (default: -Z)")
	up := flag.String("up", "", "Up axis (default: Y)")
	mitsubaDir := flag.String("mitsuba", "", "Renderer build directory (default: $MITSUBA_DIR)")
	workers := flag.Int("workers", 0, "Parallel file writers (default: NumCPU)")
	previewFlag := flag.Bool("preview", false, "Write a WebP preview next to the scene")
	manifest := flag.Bool("manifest", false, "Write a JSON manifest of the written files")
	watchFlag := flag.Bool("watch", false, "Export again whenever the scene document changes")
	debug := flag.Bool("debug", false, "Debug logging")

	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file; booleans only when given.
	flags := config.Flags{
		Scene:       *scenePath,
		Output:      *output,
		MitsubaDir:  *mitsubaDir,
		AxisForward: *forward,
		AxisUp:      *up,
		Workers:     *workers,
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "split":
			flags.SplitFiles = split
		case "ids":
			flags.ExportIDs = ids
		case "keep-background":
			flags.KeepBackground = keepBackground
		case "selection":
			flags.UseSelection = selection
		case "preview":
			flags.Preview = previewFlag
		case "manifest":
			flags.Manifest = manifest
		case "debug":
			flags.Debug = debug
		}
	})
	cfg.Resolve(flags)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\nUse -scene or a config file.\n", err)
		os.Exit(1)
	}

	logger, err := log.NewLogger(log.Options{Development: true, Debug: cfg.Debug})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	opts := []export.Option{export.WithLogger(logger)}
	if cfg.MitsubaDir != "" {
		opts = append(opts, export.WithRenderer(cfg.MitsubaDir))
	}
	session, err := export.NewSession(opts...)
	if err != nil {
		logger.Errorw("cannot start", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ok := run(ctx, session, cfg, logger)
	if *watchFlag {
		err := watch.File(ctx, cfg.Scene, watch.DefaultDebounce, logger, func(ctx context.Context) {
			session.Reset()
			run(ctx, session, cfg, logger)
		})
		if err != nil {
			logger.Errorw("watch failed", "error", err)
			os.Exit(1)
		}
		return
	}
	if !ok {
		os.Exit(1)
	}
}

// run exports once and reports the outcome. It returns false on a fatal error.
func run(ctx context.Context, session *export.Session, cfg config.Config, logger *log.Logger) bool {
	sc, err := scene.Load(cfg.Scene)
	if err != nil {
		logger.Errorw("cannot read scene", "error", err)
		return false
	}

	sum, err := session.Run(ctx, sc, cfg.Export())
	if sum != nil {
		for _, d := range sum.Diagnostics {
			logger.Warnw("skipped", "diagnostic", d.String())
		}
	}
	if err != nil {
		var cerr *export.ConfigError
		if errors.As(err, &cerr) {
			logger.Errorw("invalid configuration", "field", cerr.Field, "reason", cerr.Reason)
		} else {
			logger.Errorw("export failed", "error", err)
		}
		return false
	}

	fmt.Printf("Exported %d entities to %s (%d files, %.2fs)\n",
		sum.Entities, sum.Root, len(sum.Files), sum.Elapsed.Seconds())
	return true
}
