package config

import (
	"fmt"
	"net"
	"strconv"
)

type ServerConfig struct {
	Disable       bool   `yaml:"disable"`
	ListenAddress string `yaml:"listen_address"`
	ListenPort    int    `yaml:"listen_port"`
}

func defaultServer() ServerConfig {
	return ServerConfig{
		ListenAddress: "0.0.0.0",
		ListenPort:    9102,
	}
}

func loadServer(base ServerConfig) ServerConfig {
	return ServerConfig{
		Disable:       boolenv("SERVER_DISABLE", base.Disable),
		ListenAddress: getenv("SERVER_LISTEN_ADDRESS", base.ListenAddress),
		ListenPort:    intEnv("SERVER_LISTEN_PORT", base.ListenPort),
	}
}

func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.ListenAddress, strconv.Itoa(s.ListenPort))
}

func (s ServerConfig) validate() error {
	if s.Disable {
		return nil
	}
	if s.ListenPort <= 0 || s.ListenPort > 65535 {
		return fmt.Errorf("config: listen port %d out of range", s.ListenPort)
	}
	return nil
}
