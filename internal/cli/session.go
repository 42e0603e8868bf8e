package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linkbox-cli/internal/gitrepo"
	"linkbox-cli/internal/logging"
	"linkbox-cli/internal/panel"
	"linkbox-cli/internal/store"
)

// session is everything one command invocation needs: config, logger, the
// opened substrate and a panel bound to the resolved workspace folder.
type session struct {
	cfg    *store.Config
	log    *zap.Logger
	kv     store.KV
	links  *store.LinkStore
	panel  *panel.Panel
	folder *store.Folder

	closeLog func()
}

type sessionOptions struct {
	// logToFile forces a file sink, defaulting to <configdir>/linkbox.log when
	// log.file is unset. The TUI owns the terminal.
	logToFile bool
	metrics   *panel.Metrics
	confirmer panel.Confirmer
}

func openSession(cmd *cobra.Command, app *App, opts sessionOptions) (*session, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}

	logFile := cfg.Log.File
	if opts.logToFile && strings.TrimSpace(logFile) == "" {
		dir, err := store.ConfigDir()
		if err != nil {
			return nil, err
		}
		logFile = filepath.Join(dir, "linkbox.log")
	}
	log, closeLog, err := logging.New(logging.Options{Level: cfg.Log.Level, File: logFile})
	if err != nil {
		return nil, errors.Wrap(err, "logger")
	}

	folder, err := resolveFolder(app)
	if err != nil {
		closeLog()
		return nil, err
	}

	dir := strings.TrimSpace(app.Dir)
	if dir == "" {
		if dir, err = cfg.DataDir(); err != nil {
			closeLog()
			return nil, err
		}
	}
	requested := app.Backend
	if strings.TrimSpace(requested) == "" {
		requested = cfg.Storage.Backend
	}
	backend, err := store.ParseBackend(requested)
	if err != nil {
		closeLog()
		return nil, err
	}

	kv, err := store.Store{Dir: dir}.Open(cmd.Context(), backend)
	if err != nil {
		closeLog()
		return nil, errors.Wrapf(err, "open store %s", dir)
	}
	log.Debug("store opened",
		zap.String(logging.FieldBackend, string(kv.Backend())),
		zap.String("dir", dir),
	)

	ls := store.NewLinkStore(kv)
	var folders []*store.Folder
	if folder != nil {
		folders = []*store.Folder{folder}
	}
	p := panel.New(panel.Options{
		Store:     ls,
		Logger:    log,
		Metrics:   opts.metrics,
		Folders:   folders,
		Confirmer: opts.confirmer,
	})

	return &session{
		cfg:      cfg,
		log:      log,
		kv:       kv,
		links:    ls,
		panel:    p,
		folder:   folder,
		closeLog: closeLog,
	}, nil
}

func (s *session) scope() panel.Scope {
	return s.panel.Scope()
}

func (s *session) Close() {
	if err := s.kv.Close(); err != nil {
		s.log.Warn("close store", zap.Error(err))
	}
	s.closeLog()
}

// resolveFolder picks the workspace folder: --global wins, then --folder,
// then the git root of the working directory, then the working directory.
func resolveFolder(app *App) (*store.Folder, error) {
	if app.Global {
		return nil, nil
	}
	if f := strings.TrimSpace(app.Folder); f != "" {
		return store.ParseFolder(f)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := gitrepo.WorkspaceRoot(wd)
	if errors.Is(err, gitrepo.ErrNoWorkspace) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return store.FolderFromPath(root)
}
