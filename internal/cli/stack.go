package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/welllit/internal/config"
	"github.com/aretw0/welllit/internal/logging"
	"github.com/aretw0/welllit/pkg/adapters/file"
	"github.com/aretw0/welllit/pkg/adapters/redis"
	"github.com/aretw0/welllit/pkg/adapters/sqlite"
	"github.com/aretw0/welllit/pkg/domain"
	"github.com/aretw0/welllit/pkg/observability"
	"github.com/aretw0/welllit/pkg/ports"
	"github.com/aretw0/welllit/pkg/protocol"
	"github.com/aretw0/welllit/pkg/session"
)

// Options are the CLI flags shared by every command that hosts a session.
type Options struct {
	ConfigPath string
	Debug      bool
	RecordsDir string // overrides config when set
	Stderr     io.Writer

	// Hooks are installed on the session after the metrics and log hooks.
	Hooks []domain.Hooks
}

// Stack is a fully wired station: logger, sinks, metrics and session.
type Stack struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *observability.Metrics
	Session *session.Session
	Records *file.Store

	closers []io.Closer
}

// NewStack loads the configuration and wires every component it enables.
func NewStack(opts Options) (*Stack, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.RecordsDir != "" {
		cfg.RecordsDir = opts.RecordsDir
	}

	st := &Stack{Config: cfg}
	st.Logger, err = st.createLogger(opts)
	if err != nil {
		return nil, err
	}

	builder, err := createBuilder(cfg, st.Logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	writers, err := st.createWriters(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	st.Metrics = observability.NewMetrics()
	sessOpts := []session.Option{
		session.WithBuilder(builder),
		session.WithWriters(writers...),
		session.WithHooks(st.Metrics.Hooks()),
		session.WithHooks(observability.LogHooks(st.Logger)),
		session.WithLogger(st.Logger),
	}
	for _, h := range opts.Hooks {
		sessOpts = append(sessOpts, session.WithHooks(h))
	}
	st.Session = session.New(sessOpts...)
	return st, nil
}

func (st *Stack) createLogger(opts Options) (*slog.Logger, error) {
	level := logging.ParseLevel(st.Config.Log.Level)
	if opts.Debug {
		level = slog.LevelDebug
	}

	logOpts := []logging.Option{}
	if opts.Stderr != nil {
		logOpts = append(logOpts, logging.WithConsole(opts.Stderr))
	}
	if st.Config.Log.File != "" {
		f, err := logging.OpenAudit(st.Config.Log.File)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, f)
		logOpts = append(logOpts, logging.WithAudit(f))
	}
	return logging.New(level, logOpts...), nil
}

func createBuilder(cfg config.Config, logger *slog.Logger) (*protocol.Builder, error) {
	src, dst, err := cfg.Densities()
	if err != nil {
		return nil, err
	}
	return protocol.NewBuilder(
		protocol.WithDensities(src, dst),
		protocol.WithLogger(logger),
	), nil
}

// createWriters always includes the CSV record log; Redis and SQLite are
// added when configured.
func (st *Stack) createWriters(cfg config.Config) ([]ports.RecordWriter, error) {
	st.Records = file.NewStore(cfg.RecordsDir)
	writers := []ports.RecordWriter{st.Records}

	if cfg.Redis.Addr != "" {
		ttl, err := cfg.Redis.Expiry()
		if err != nil {
			return nil, err
		}
		redisOpts := []redis.Option{redis.WithTTL(ttl)}
		if cfg.Redis.Prefix != "" {
			redisOpts = append(redisOpts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redisOpts...)
		st.closers = append(st.closers, store)
		writers = append(writers, store)
		st.Logger.Debug("redis record sink enabled", "addr", cfg.Redis.Addr)
	}

	if cfg.SQLite.Path != "" {
		store, err := sqlite.NewStore(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite sink: %w", err)
		}
		st.closers = append(st.closers, store)
		writers = append(writers, store)
		st.Logger.Debug("sqlite record sink enabled", "path", cfg.SQLite.Path)
	}
	return writers, nil
}

// Close releases the sinks and the audit log.
func (st *Stack) Close() error {
	var errs []error
	for i := len(st.closers) - 1; i >= 0; i-- {
		if err := st.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	st.closers = nil
	return errors.Join(errs...)
}
