package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/osr-runtime/browser"
	"github.com/wippyai/osr-runtime/config"
	"github.com/wippyai/osr-runtime/host"
	"github.com/wippyai/osr-runtime/internal/demo"
	"github.com/wippyai/osr-runtime/memview"
	"github.com/wippyai/osr-runtime/surface"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to TOML config file")
		wasmFile    = flag.String("wasm", "", "Path to renderer guest wasm file")
		useDemo     = flag.Bool("demo", false, "Run the built-in demo renderer")
		frames      = flag.Int("frames", 0, "Number of frames to render")
		outDir      = flag.String("out", "", "Directory to write frames to")
		format      = flag.String("format", "", "Frame image format (png, bmp)")
		width       = flag.Int("width", 0, "Surface width")
		height      = flag.Int("height", 0, "Surface height")
		scale       = flag.Float64("scale", 0, "Device scale factor")
		transparent = flag.Bool("transparent", false, "Transparent surface")
		url         = flag.String("url", "", "Start URL")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "wasm":
			cfg.Renderer.Path = *wasmFile
		case "frames":
			cfg.Output.Frames = *frames
		case "out":
			cfg.Output.Dir = *outDir
		case "format":
			cfg.Output.Format = *format
		case "width":
			cfg.Surface.Width = int32(*width)
		case "height":
			cfg.Surface.Height = int32(*height)
		case "scale":
			cfg.Surface.Scale = *scale
		case "transparent":
			cfg.Surface.Transparent = *transparent
		case "url":
			cfg.Surface.URL = *url
		case "v":
			if *verbose {
				cfg.Logging.Level = "debug"
				cfg.Logging.Development = true
			}
		}
	})
	if *useDemo {
		cfg.Renderer.Path = ""
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive && !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: -i needs a terminal on stdout")
		os.Exit(1)
	}

	if err := run(cfg, *configPath, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type logClient struct {
	logger *zap.Logger
}

func (c *logClient) OnAfterParentChanged(b *browser.Browser) {
	c.logger.Info("surface attached",
		zap.Uint64("browser", b.ID()),
		zap.Uint64("handle", b.Handle()),
	)
}

// session is a loaded renderer with one created surface.
type session struct {
	renderer *host.Renderer
	browser  *browser.Browser
	stats    *frameStats
	handle   uint32
}

func run(cfg *config.Config, configPath string, interactive bool) error {
	ctx := context.Background()

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()
	if interactive {
		// The TUI owns the terminal.
		logger = zap.NewNop()
	}
	memview.SetLogger(logger.Named("memview"))
	browser.SetLogger(logger.Named("browser"))
	host.SetLogger(logger.Named("host"))

	s, err := open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.renderer.Close(ctx)

	if cfg.Output.Dir != "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		s.browser.AddPaintListener(newFrameWriter(cfg.Output.Dir, cfg.Output.Format))
	}

	if interactive {
		return runInteractive(ctx, s, configPath)
	}

	var tick <-chan time.Time
	if cfg.Surface.FrameRate > 0 && cfg.Output.Frames > 1 {
		t := time.NewTicker(time.Second / time.Duration(cfg.Surface.FrameRate))
		defer t.Stop()
		tick = t.C
	}
	for i := range cfg.Output.Frames {
		if i > 0 && tick != nil {
			<-tick
		}
		if err := s.renderer.RenderFrame(ctx, s.handle); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}

	last := s.stats.Last()
	fmt.Printf("Rendered %d frames (%d popup) at %dx%d\n",
		s.stats.Frames(), s.stats.Popups(), last.Width, last.Height)
	if cfg.Output.Dir != "" {
		fmt.Printf("Frames written to %s\n", cfg.Output.Dir)
	}
	return nil
}

func open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*session, error) {
	wasm := demo.Guest(demo.Options{Creation: true})
	name := cfg.Renderer.Name
	if cfg.Renderer.Path != "" {
		data, err := os.ReadFile(cfg.Renderer.Path)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		wasm = data
	} else if name == "" {
		name = "demo"
	}

	r, err := host.Load(ctx, wasm, host.Options{
		ModuleName:       name,
		MemoryLimitPages: cfg.Renderer.MemoryLimitPages,
	})
	if err != nil {
		return nil, fmt.Errorf("load renderer: %w", err)
	}

	b, handle := r.NewBrowser(&logClient{logger: logger}, browser.Options{
		URL:         cfg.Surface.URL,
		Transparent: cfg.Surface.Transparent,
		Settings: browser.Settings{
			WindowlessFrameRate: cfg.Surface.FrameRate,
			BackgroundColor:     cfg.Surface.BackgroundColor,
		},
	})
	b.Surface().SetViewRect(surface.Rect{Width: cfg.Surface.Width, Height: cfg.Surface.Height})
	b.Surface().SetScaleFactor(cfg.Surface.Scale)

	stats := &frameStats{}
	b.AddPaintListener(stats)

	// An off-screen surface has no window to be reparented into, so the
	// first EnsureCreated with a parent delivers the attach notification.
	if err := b.CreateImmediately(); err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("create surface: %w", err)
	}
	if err := b.EnsureCreated(true); err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("attach surface: %w", err)
	}

	return &session{
		renderer: r,
		browser:  b,
		handle:   handle,
		stats:    stats,
	}, nil
}
