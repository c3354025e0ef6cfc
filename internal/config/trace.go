package config

import "time"

type TraceConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	ReplayTimeout  time.Duration `yaml:"replay_timeout"`
	Parallel       int           `yaml:"parallel"`
	CacheSize      int           `yaml:"cache_size"`
}

func defaultTrace() TraceConfig {
	return TraceConfig{
		RequestTimeout: 60 * time.Second,
		FetchTimeout:   10 * time.Second,
		ReplayTimeout:  30 * time.Second,
		Parallel:       1,
		CacheSize:      256,
	}
}

func loadTrace(base TraceConfig) TraceConfig {
	return TraceConfig{
		RequestTimeout: durationEnvSeconds("TRACE_REQUEST_TIMEOUT", base.RequestTimeout),
		FetchTimeout:   durationEnvSeconds("TRACE_FETCH_TIMEOUT", base.FetchTimeout),
		ReplayTimeout:  durationEnvSeconds("TRACE_REPLAY_TIMEOUT", base.ReplayTimeout),
		Parallel:       intEnv("TRACE_PARALLEL", base.Parallel),
		CacheSize:      intEnv("TRACE_CACHE_SIZE", base.CacheSize),
	}
}
