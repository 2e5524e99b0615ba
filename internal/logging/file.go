package logging

import (
	"io"
	"log"
	"os"
	"strconv"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig describes rotated file output.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig returns the rotation limits used when the environment
// does not override them.
func DefaultFileConfig() FileConfig {
	return FileConfig{
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// FileConfigFromEnv reads LOG_FILE, LOG_FILE_MAX_SIZE_MB,
// LOG_FILE_MAX_BACKUPS, LOG_FILE_MAX_AGE_DAYS and LOG_FILE_COMPRESS.
// An empty Path means file output is disabled.
func FileConfigFromEnv() FileConfig {
	cfg := DefaultFileConfig()
	cfg.Path = os.Getenv("LOG_FILE")
	cfg.MaxSizeMB = envPositiveInt("LOG_FILE_MAX_SIZE_MB", cfg.MaxSizeMB)
	cfg.MaxBackups = envPositiveInt("LOG_FILE_MAX_BACKUPS", cfg.MaxBackups)
	cfg.MaxAgeDays = envPositiveInt("LOG_FILE_MAX_AGE_DAYS", cfg.MaxAgeDays)
	if v, err := strconv.ParseBool(os.Getenv("LOG_FILE_COMPRESS")); err == nil {
		cfg.Compress = v
	}
	return cfg
}

func envPositiveInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// EnableFile sends log output to stderr and to a rotated file. The returned
// closer releases the file; it is a no-op when cfg.Path is empty.
func EnableFile(cfg FileConfig) io.Closer {
	if cfg.Path == "" {
		return nopCloser{}
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, lj))
	return closerFunc(func() error {
		log.SetOutput(os.Stderr)
		return lj.Close()
	})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
