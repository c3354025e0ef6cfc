package config

import "time"

// CompileConfig points at the remote compile service. Without an endpoint
// source maps are read from on-chain package registries.
type CompileConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
	Retries  int           `yaml:"retries"`
}

func defaultCompile() CompileConfig {
	return CompileConfig{
		Timeout: 30 * time.Second,
		Retries: 1,
	}
}

func loadCompile(base CompileConfig) CompileConfig {
	return CompileConfig{
		Endpoint: getenv("COMPILE_ENDPOINT", base.Endpoint),
		Timeout:  durationEnvSeconds("COMPILE_TIMEOUT", base.Timeout),
		Retries:  intEnv("COMPILE_RETRIES", base.Retries),
	}
}

func (c CompileConfig) Remote() bool { return c.Endpoint != "" }
