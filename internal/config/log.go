package config

import (
	"fmt"
	"os"

	"github.com/ledgerwatch/log/v3"
)

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaultLog() LogConfig {
	return LogConfig{Level: "info", Format: "terminal"}
}

func loadLog(base LogConfig) LogConfig {
	return LogConfig{
		Level:  getenv("LOG_LEVEL", base.Level),
		Format: getenv("LOG_FORMAT", base.Format),
	}
}

func (l LogConfig) validate() error {
	if _, err := log.LvlFromString(l.Level); err != nil {
		return fmt.Errorf("config: log level: %w", err)
	}
	switch l.Format {
	case "terminal", "logfmt", "json":
		return nil
	default:
		return fmt.Errorf("config: unknown log format %q", l.Format)
	}
}

// Setup installs the root log handler.
func (l LogConfig) Setup() error {
	lvl, err := log.LvlFromString(l.Level)
	if err != nil {
		return err
	}
	var format log.Format
	switch l.Format {
	case "json":
		format = log.JSONFormat()
	case "logfmt":
		format = log.LogfmtFormat()
	default:
		format = log.TerminalFormatNoColor()
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, format)))
	return nil
}
