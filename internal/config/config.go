package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is assembled from defaults, then the YAML file named by
// TRACER_CONFIG (if any), then environment variables (.env included).
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Compile CompileConfig `yaml:"compile"`
	Trace   TraceConfig   `yaml:"trace"`
	Log     LogConfig     `yaml:"log"`
	Mirror  MirrorConfig  `yaml:"mirror"`
}

func Default() Config {
	return Config{
		Server:  defaultServer(),
		Ledger:  defaultLedger(),
		Compile: defaultCompile(),
		Trace:   defaultTrace(),
		Log:     defaultLog(),
		Mirror:  defaultMirror(),
	}
}

func Load() (Config, error) {
	ensureEnvLoaded()
	cfg := Default()
	if path := os.Getenv("TRACER_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return cfg, err
		}
	}
	cfg.Server = loadServer(cfg.Server)
	cfg.Ledger = loadLedger(cfg.Ledger)
	cfg.Compile = loadCompile(cfg.Compile)
	cfg.Trace = loadTrace(cfg.Trace)
	cfg.Log = loadLog(cfg.Log)
	cfg.Mirror = loadMirror(cfg.Mirror)
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// Validate checks what tracing needs: a ledger source, a replay node and a
// usable listen port.
func (c Config) Validate() error {
	var errs []error
	if err := c.Server.validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Ledger.validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Log.validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Trace.Parallel < 0 {
		errs = append(errs, errors.New("config: trace parallelism must not be negative"))
	}
	return errors.Join(errs...)
}
