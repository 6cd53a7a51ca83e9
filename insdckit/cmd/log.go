package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Doomsbay/InsdcKit/insdckit/config"
	"github.com/Doomsbay/InsdcKit/insdckit/insdc"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "insdckit",
})

func logf(format string, args ...any) {
	logger.Infof(format, args...)
}

// commonFlags are registered on every subcommand that reads flat files.
type commonFlags struct {
	config   *string
	logLevel *string
	logFile  *string
	verbose  *bool
	debug    *int
	format   *string
	workers  *int
	progress *bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		config:   fs.String("config", "", "JSON config file (default insdckit.json when present)"),
		logLevel: fs.String("log-level", "", "Log level: debug, info, warn, error (overrides config)"),
		logFile:  fs.String("log-file", "", "Also append log output to this file"),
		verbose:  fs.Bool("verbose", false, "Shorthand for -log-level debug"),
		debug:    fs.Int("debug", 0, "Scanner debug output: 0 none, 1 sections, 2 lines, 3 everything"),
		format:   fs.String("format", "auto", "Input format: genbank, embl or auto"),
		workers:  fs.Int("workers", 0, "Input files scanned in parallel (0 uses config, then CPU count)"),
		progress: fs.Bool("progress", true, "Show progress bar"),
	}
}

// session is the resolved runtime setup shared by the subcommands.
type session struct {
	cfg      *config.Config
	dialect  insdc.Dialect // nil sniffs each input
	workers  int
	progress bool
	debug    int
	closeLog func()
}

func (c *commonFlags) setup(fs *flag.FlagSet) (*session, error) {
	cfg, err := config.Load(*c.config)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	s := &session{cfg: cfg, debug: *c.debug, closeLog: func() {}}

	logFile := cfg.LogFile
	if *c.logFile != "" {
		logFile = *c.logFile
	}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Warn("log file could not be opened; logging to stderr only", "path", logFile, "err", err)
		} else {
			logger.SetOutput(io.MultiWriter(os.Stderr, f))
			s.closeLog = func() { _ = f.Close() }
		}
	}

	level := cfg.LogLevel
	if *c.logLevel != "" {
		level = *c.logLevel
	}
	if *c.verbose || s.debug > 0 {
		level = "debug"
	}
	if err := setLogLevel(level); err != nil {
		s.closeLog()
		return nil, err
	}

	if *c.format != "auto" {
		d, err := insdc.DialectByName(*c.format)
		if err != nil {
			s.closeLog()
			return nil, err
		}
		s.dialect = d
	}

	s.workers = *c.workers
	if s.workers <= 0 {
		s.workers = cfg.Workers
	}
	if s.workers <= 0 {
		s.workers = runtime.NumCPU()
	}

	s.progress = *c.progress
	if !set["progress"] && cfg.NoProgress {
		s.progress = false
	}
	logger.Debug("session ready", "format", *c.format, "workers", s.workers, "progress", s.progress, "log_level", level)
	return s, nil
}

func setLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "", "info":
		logger.SetLevel(log.InfoLevel)
	case "warn", "warning":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	return nil
}
