package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ironsheep/dartcam/internal/config"
	"github.com/ironsheep/dartcam/internal/detection"
	"github.com/ironsheep/dartcam/internal/engine"
	"github.com/ironsheep/dartcam/internal/orient"
	"github.com/ironsheep/dartcam/internal/server"
	"github.com/ironsheep/dartcam/internal/source"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type options struct {
	configPath string
	frames     string
	loop       bool
	camera     int
	width      int
	height     int
	fps        float64
	auto       bool
	debugDir   string
	logFile    string
}

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("dartcam %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "dartcam: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("dartcam - camera-based dartboard scoring")
	fmt.Println()
	fmt.Println("Usage: dartcam [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v       Print version information")
	fmt.Println("  --help, -h          Print this help message")
	fmt.Println("  --config PATH       JSON configuration file")
	fmt.Println("  --frames DIR        Replay image files from DIR instead of a camera")
	fmt.Println("  --loop              Restart --frames from the first file when exhausted")
	fmt.Println("  --fps N             Throttle --frames replay to N frames per second")
	fmt.Println("  --camera N          Capture device index (requires a gocv build)")
	fmt.Println("  --width, --height   Requested capture size")
	fmt.Println("  --auto              Calibrate on start and confirm when the board is stable")
	fmt.Println("  --debug-dir DIR     Save an annotated frame for every scored dart")
	fmt.Println("  --log-file PATH     Write rotated JSON logs to PATH instead of stderr")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  DARTCAM_CONFIG=path           Configuration file when --config is absent")
	fmt.Println("  DARTCAM_LOG_LEVEL=debug       Log level (debug, info, warn, error)")
	fmt.Println("  DARTCAM_ROTATION_OFFSET=18    Initial rotation offset in degrees")
	fmt.Println("  DARTCAM_COOLDOWN_MS=2000      Minimum time between darts")
	fmt.Println("  DARTCAM_HIT_THRESHOLD=28      Per-pixel change threshold")
	fmt.Println()
	fmt.Println("Commands are read as JSON-RPC on stdin; scores and status are written")
	fmt.Println("as notifications on stdout.")
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("dartcam", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "JSON configuration file")
	fs.StringVar(&o.frames, "frames", "", "directory of frames to replay")
	fs.BoolVar(&o.loop, "loop", false, "loop the frame directory")
	fs.IntVar(&o.camera, "camera", 0, "capture device index")
	fs.IntVar(&o.width, "width", 0, "requested capture width")
	fs.IntVar(&o.height, "height", 0, "requested capture height")
	fs.Float64Var(&o.fps, "fps", 0, "replay rate for --frames")
	fs.BoolVar(&o.auto, "auto", false, "calibrate on start and auto-confirm")
	fs.StringVar(&o.debugDir, "debug-dir", "", "directory for annotated hit frames")
	fs.StringVar(&o.logFile, "log-file", "", "rotated log file")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return o, nil
}

func run(args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	path := opts.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfig)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}

	logger, closeLog := newLogger(cfg)
	defer closeLog()
	logger.Info("dartcam starting", "version", Version, "build_time", BuildTime, "commit", GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := openSource(opts)
	if err != nil {
		return err
	}
	defer src.Close()

	var orienter engine.Orienter
	if cfg.Orient.Enabled {
		tess, err := orient.NewTesseract(cfg.Orient.Language, cfg.Orient.TessdataPrefix)
		if err != nil {
			logger.Warn("automatic orientation disabled", "error", err)
		} else {
			defer tess.Close()
			logger.Info("tesseract ready", "version", tess.Version(), "language", cfg.Orient.Language)
			orienter = orient.New(tess, cfg.Orient.Config, logger)
		}
	}

	srv := server.New(os.Stdout, Version, logger)
	callbacks := srv.Callbacks()
	tap := &frameTap{src: src}

	var eng *engine.Engine
	if opts.debugDir != "" {
		style, err := cfg.OverlayStyle()
		if err != nil {
			return err
		}
		d, err := newDebugDumper(opts.debugDir, style, logger)
		if err != nil {
			return err
		}
		onScore := callbacks.OnScore
		callbacks.OnScore = func(ev engine.ScoreEvent) {
			onScore(ev)
			d.dump(tap.Last(), eng.Snapshot(), ev)
		}
	}
	if opts.auto {
		onChange := callbacks.OnStateChange
		callbacks.OnStateChange = func(prev, next engine.State) {
			onChange(prev, next)
			if next != engine.StateReady {
				return
			}
			if err := eng.ConfirmPending(); err != nil {
				logger.Warn("auto confirm failed", "error", err)
				return
			}
			if orienter != nil {
				if err := eng.RequestAutoOrient(); err != nil {
					logger.Warn("auto orient request failed", "error", err)
				}
			}
		}
	}

	eng = engine.New(
		cfg.EngineConfig(),
		detection.NewCalibrator(cfg.CalibrationConfig(), logger),
		detection.NewHitDetector(cfg.HitConfig(), logger),
		engine.Options{Orienter: orienter, Callbacks: callbacks, Logger: logger},
	)
	if opts.auto {
		if err := eng.RequestCalibrate(); err != nil {
			return err
		}
	}

	// Closing stdin stops the control channel only; frames keep flowing
	// until the source ends or a signal arrives.
	go func() {
		if err := srv.Run(os.Stdin, eng); err != nil {
			logger.Error("control channel failed", "error", err)
		}
	}()

	err = eng.Run(ctx, tap)
	snap := eng.Snapshot()
	logger.Info("dartcam stopped", "frames", snap.Frames, "hits", snap.Hits, "state", snap.State.String())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// newLogger returns a JSON logger on stderr, or on a rotated file when
// cfg.Log.File is set. stdout is reserved for the control protocol.
func newLogger(cfg *config.Config) (*slog.Logger, func()) {
	var w io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.Log.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
			LocalTime:  true,
			Compress:   true,
		}
		w = lj
		closeFn = func() { _ = lj.Close() }
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel()})
	return slog.New(h), closeFn
}

type frameSource interface {
	engine.FrameSource
	io.Closer
}

func openSource(opts options) (frameSource, error) {
	if opts.frames != "" {
		s, err := source.NewDirSource(opts.frames, source.DirOptions{
			Loop:  opts.loop,
			FPS:   opts.fps,
			Cache: opts.loop,
		})
		if err != nil {
			return nil, err
		}
		return nopCloser{s}, nil
	}
	cam, err := source.OpenCamera(opts.camera, opts.width, opts.height)
	if err != nil {
		return nil, fmt.Errorf("%w (use --frames DIR to replay captured frames)", err)
	}
	return cam, nil
}

type nopCloser struct {
	engine.FrameSource
}

func (nopCloser) Close() error { return nil }
