package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/sadopc/taskr/internal/api"
	"github.com/sadopc/taskr/internal/config"
	"github.com/sadopc/taskr/internal/logging"
	"github.com/sadopc/taskr/internal/session"
	"github.com/sadopc/taskr/internal/store"
)

// Env holds the collaborators every command runs against.
type Env struct {
	Config  config.Config
	Log     *log.Logger
	Store   *store.Store
	Session *session.Manager
	API     *api.Client

	closers []io.Closer
}

// OpenEnv opens the log file and session storage described by cfg and builds
// the API client on top of them.
func OpenEnv(cfg config.Config, opts ...api.Option) (*Env, error) {
	logger, logFile, err := logging.Open(cfg.LogPath, cfg.Debug)
	if err != nil {
		return nil, err
	}
	env := &Env{Config: cfg, Log: logger, closers: []io.Closer{logFile}}

	if cfg.PersistSession {
		env.Store, err = store.New(cfg.DBPath)
	} else {
		env.Store, err = store.NewMemory()
	}
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("open session storage: %w", err)
	}
	env.closers = append(env.closers, env.Store)

	env.Session = session.NewManager(env.Store, logger)

	opts = append([]api.Option{
		api.WithLogger(logger),
		api.WithTimeout(cfg.RequestTimeout.Duration),
	}, opts...)
	env.API = api.New(cfg.APIURL, env.Session, opts...)

	logger.Debug("environment ready", "api", cfg.APIURL, "db", cfg.DBPath, "persist", cfg.PersistSession)
	return env, nil
}

// Close releases resources in reverse order of opening.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
