// Package export runs a complete scene export: walk, build, serialize, and
// the optional preview and manifest.
package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"mitsuba-export/internal/batch"
	"mitsuba-export/internal/builder"
	"mitsuba-export/internal/ir"
	"mitsuba-export/internal/log"
	"mitsuba-export/internal/mitsuba"
	"mitsuba-export/internal/preview"
	"mitsuba-export/internal/scene"
	"mitsuba-export/internal/texture"
)

// State is the lifecycle of a Session.
type State int

const (
	StateIdle State = iota
	StateWalking
	StateBuilding
	StateSerializing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalking:
		return "walking"
	case StateBuilding:
		return "building"
	case StateSerializing:
		return "serializing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Kinds of the extra files a run can add to Summary.Files.
const (
	KindPreview  = "preview"
	KindManifest = "manifest"
)

// Option configures a Session.
type Option func(*Session) error

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) error {
		s.log = log.OrNop(l)
		return nil
	}
}

// WithRenderer locates the renderer build in dir. A build that cannot be
// found makes NewSession fail with a *ConfigError.
func WithRenderer(dir string) Option {
	return func(s *Session) error {
		inst, err := mitsuba.Locate(dir)
		if err != nil {
			return &ConfigError{Field: "renderer", Value: dir, Reason: err.Error()}
		}
		s.install = inst
		return nil
	}
}

// Summary describes a run.
type Summary struct {
	RunID    string
	Root     string
	Files    []mitsuba.File
	Entities int
	// Diagnostics are the recoverable problems, in the order found.
	Diagnostics []builder.Diagnostic
	// Warnings combines the diagnostics' errors; see multierr.Errors.
	Warnings error
	Elapsed  time.Duration
}

// Session owns one export at a time. Run is refused until Reset once a run
// finished or failed. Safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	log     *log.Logger
	install *mitsuba.Install

	state    State
	cfg      Config
	graph    *ir.Node
	diags    []builder.Diagnostic
	warnings error
}

// NewSession returns an idle session.
func NewSession(opts ...Option) (*Session, error) {
	s := &Session{log: log.Nop()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Graph returns the plugin graph of the last run, or nil.
func (s *Session) Graph() *ir.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph
}

// Reset discards everything from the previous run and returns to idle.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.cfg = Config{}
	s.graph = nil
	s.diags = nil
	s.warnings = nil
}

// Run exports sc with cfg. On failure the returned error is an *Error
// carrying the diagnostics; the summary is returned either way.
func (s *Session) Run(ctx context.Context, sc *scene.Scene, cfg Config) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return nil, ErrNotReset
	}

	start := time.Now()
	sum := &Summary{RunID: uuid.NewString()}
	logger := s.log.With("run", sum.RunID)

	err := s.run(ctx, logger, sc, cfg, sum)
	sum.Diagnostics = append([]builder.Diagnostic(nil), s.diags...)
	sum.Warnings = s.warnings
	sum.Elapsed = time.Since(start)

	if err != nil {
		failed := s.state
		s.state = StateFailed
		logger.Errorw("export failed", "state", failed.String(), "error", err)
		return sum, &Error{State: failed, Err: err, Diagnostics: sum.Diagnostics}
	}
	s.state = StateDone
	logger.Infow("export finished",
		"root", sum.Root,
		"files", len(sum.Files),
		"entities", sum.Entities,
		"diagnostics", len(sum.Diagnostics),
		"elapsed", sum.Elapsed.String())
	return sum, nil
}

func (s *Session) run(ctx context.Context, logger *log.Logger, sc *scene.Scene, cfg Config, sum *Summary) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	axis, err := cfg.Axis()
	if err != nil {
		return &ConfigError{Field: "AxisUp", Value: cfg.AxisUp, Reason: err.Error()}
	}
	s.cfg = cfg

	s.state = StateWalking
	walker, err := scene.NewWalker(sc, scene.WalkOptions{
		UseSelection:     cfg.UseSelection,
		IgnoreBackground: cfg.IgnoreBackground,
	})
	if err != nil {
		return err
	}
	logger.Debugw("walking scene", "scene", sc.Name, "objects", len(sc.Objects))

	b := builder.New(builder.Config{Axis: axis, ExportIDs: cfg.ExportIDs, Render: sc.Render}, logger)
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		e, ok := walker.Next()
		if !ok {
			break
		}
		s.state = StateBuilding
		sum.Entities++
		if err := b.Add(e); err != nil {
			var unsupported *builder.UnsupportedEntityError
			if !errors.As(err, &unsupported) {
				return err
			}
			s.warnings = multierr.Append(s.warnings, err)
		}
	}
	s.state = StateBuilding
	s.graph = b.Scene()
	s.diags = b.Diagnostics()

	s.state = StateSerializing
	index := texture.BuildIndex(sc.Dir)
	cache := texture.NewCache(index)
	version := mitsuba.DefaultVersion
	if s.install != nil {
		version = s.install.Version
	}
	res, err := mitsuba.Write(ctx, s.graph, mitsuba.Options{
		Path:     cfg.Path,
		Split:    cfg.SplitFiles,
		Version:  version,
		Workers:  cfg.Workers,
		Textures: texture.NewExporter(index, cache, cfg.TextureMaxSize),
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	sum.Root = res.Root
	sum.Files = res.Files

	if cfg.Preview {
		name, err := s.writePreview(cfg, cache)
		switch {
		case errors.Is(err, preview.ErrNoSensor):
			logger.Warnw("preview skipped", "reason", err)
		case err != nil:
			return err
		default:
			sum.Files = append(sum.Files, mitsuba.File{Path: name, Kind: KindPreview})
		}
	}
	if cfg.Manifest {
		name := stem(cfg.Path) + ".manifest.json"
		m := batch.Manifest{
			Scene: sc.Name,
			Root:  filepath.Base(cfg.Path),
			Split: cfg.SplitFiles,
		}
		for _, f := range sum.Files {
			m.Files = append(m.Files, batch.ManifestEntry{Path: f.Path, Kind: f.Kind})
		}
		for _, d := range s.diags {
			m.Diagnostics = append(m.Diagnostics, d.String())
		}
		if err := batch.WriteManifest(filepath.Join(filepath.Dir(cfg.Path), name), m); err != nil {
			return &mitsuba.WriteError{Path: name, Err: err}
		}
		sum.Files = append(sum.Files, mitsuba.File{Path: name, Kind: KindManifest})
	}
	return nil
}

func (s *Session) writePreview(cfg Config, textures texture.Resolver) (string, error) {
	img, err := preview.Render(s.graph, preview.Options{
		Size:        cfg.PreviewSize,
		Supersample: cfg.Supersample,
		Textures:    textures,
	})
	if err != nil {
		return "", err
	}
	name := stem(cfg.Path) + ".preview.webp"
	if err := preview.WriteFile(filepath.Join(filepath.Dir(cfg.Path), name), img); err != nil {
		return "", &mitsuba.WriteError{Path: name, Err: err}
	}
	return name, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
