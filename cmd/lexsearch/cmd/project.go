package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/Aman-CERP/lexsearch/internal/config"
	"github.com/Aman-CERP/lexsearch/internal/logging"
	"github.com/Aman-CERP/lexsearch/internal/store"
	"github.com/Aman-CERP/lexsearch/internal/telemetry"
)

// project is the loaded state every command works on: the project root, its
// effective configuration, a logger and the run metrics.
type project struct {
	root    string
	cfg     *config.Config
	logger  *slog.Logger
	metrics *telemetry.Metrics

	closeLog func()
}

// openProject finds the project root from dir, loads its .env file and
// configuration, and sets up logging.
func openProject(dir string) (*project, error) {
	root, err := config.FindProjectRoot(dir)
	if err != nil {
		root, _ = os.Getwd()
	}

	if err := loadDotEnv(root); err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	logger, closeLog := setupLogging(cfg)
	logger.Debug("project_opened",
		slog.String("root", root),
		slog.String("backend", cfg.Output.Backend),
		slog.String("index_path", cfg.Output.IndexPath))

	return &project{
		root:     root,
		cfg:      cfg,
		logger:   logger,
		metrics:  telemetry.New(),
		closeLog: closeLog,
	}, nil
}

// Close exports the metrics when a metrics file is configured and closes the
// log file.
func (p *project) Close() {
	if path := p.cfg.Telemetry.MetricsFile; path != "" {
		if err := p.metrics.WriteToTextfile(path); err != nil {
			p.logger.Warn("metrics_export_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}
	if p.closeLog != nil {
		p.closeLog()
		p.closeLog = nil
	}
}

// store opens the configured index store.
func (p *project) store() (store.IndexStore, error) {
	return store.Open(p.cfg.Output.Backend, p.cfg.Output.IndexPath,
		store.WithAtomicWrites(p.cfg.Output.AtomicWrites),
		store.WithLogger(logging.WithComponent(p.logger, "store")))
}

// loadDotEnv loads <root>/.env without overriding variables already set.
func loadDotEnv(root string) error {
	path := filepath.Join(root, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// setupLogging builds the logger from the logging config. --debug raises the
// level and mirrors the log to stderr. A log file that cannot be opened
// leaves logging disabled rather than failing the command.
func setupLogging(cfg *config.Config) (*slog.Logger, func()) {
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.MaxSizeMB = cfg.Logging.MaxSizeMB
	logCfg.MaxFiles = cfg.Logging.MaxFiles
	if cfg.Logging.File != "" {
		logCfg.FilePath = cfg.Logging.File
	}
	if debugMode {
		logCfg.Level = "debug"
		logCfg.WriteToStderr = true
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return logging.Nop(), func() {}
	}
	slog.SetDefault(logger)
	return logger, cleanup
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
