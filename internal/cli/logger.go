package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Leenie/ansible-universe/internal/constants"
	"github.com/Leenie/ansible-universe/internal/logging"
)

// HomeEnv overrides the global state directory (default ~/.universe).
const HomeEnv = "UNIVERSE_HOME"

var (
	logFileWriter   io.WriteCloser //nolint:gochecknoglobals // closed on shutdown
	logFileWriterMu sync.Mutex     //nolint:gochecknoglobals // protects logFileWriter
)

// InitLogger creates the CLI logger.
//
// Log levels:
//   - verbose: debug
//   - quiet: warn
//   - default: info
//
// Console output is human-readable on a color TTY and JSON otherwise. A
// rotating copy goes to ~/.universe/logs/universe.log with credentials
// redacted; failing to open it leaves console-only logging.
func InitLogger(verbose, quiet bool, stderr io.Writer) zerolog.Logger {
	console := selectOutput(stderr)

	writer := console
	if fw, err := createLogFileWriter(); err == nil {
		logFileWriterMu.Lock()
		logFileWriter = fw
		logFileWriterMu.Unlock()
		writer = zerolog.MultiLevelWriter(console, fw)
	}

	logger := zerolog.New(writer).
		Level(selectLevel(verbose, quiet)).
		Hook(logging.NewSensitiveDataHook()).
		With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// CloseLogFile closes the log file opened by InitLogger, if any.
func CloseLogFile() {
	logFileWriterMu.Lock()
	defer logFileWriterMu.Unlock()
	if logFileWriter != nil {
		_ = logFileWriter.Close()
		logFileWriter = nil
	}
}

func selectLevel(verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// selectOutput uses the console writer only for a color-capable terminal.
func selectOutput(w io.Writer) io.Writer {
	f, ok := w.(*os.File)
	if ok && term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return w
}

type filteringWriteCloser struct {
	filter *logging.FilteringWriter
	closer io.Closer
}

func (fwc *filteringWriteCloser) Write(p []byte) (int, error) {
	return fwc.filter.Write(p)
}

func (fwc *filteringWriteCloser) Close() error {
	return fwc.closer.Close()
}

func createLogFileWriter() (io.WriteCloser, error) {
	path, err := LogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   constants.LogCompress,
	}
	return &filteringWriteCloser{filter: logging.NewFilteringWriter(lj), closer: lj}, nil
}

func universeHome() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, constants.UniverseHome), nil
}

// LogFilePath returns the path of the global CLI log file.
func LogFilePath() (string, error) {
	home, err := universeHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.LogsDir, constants.CLILogFileName), nil
}
