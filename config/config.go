// Package config loads node daemon settings from SEQNET_* environment
// variables; command-line flags registered with RegisterFlags override them.
package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"

	"xdao.co/seqnet/xorname"
)

// Node is the daemon configuration.
type Node struct {
	ListenAddr  string `env:"SEQNET_LISTEN_ADDR" envDefault:"127.0.0.1:7420"`
	MetricsAddr string `env:"SEQNET_METRICS_ADDR"`
	MaxMsgBytes int    `env:"SEQNET_MAX_MSG_BYTES" envDefault:"4194304"`

	LogLevel  string `env:"SEQNET_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"SEQNET_LOG_FORMAT" envDefault:"json"`

	// Store selects a single backend ("memory" or "localfs"). StoreConfig,
	// when set, names a JSON file describing several backends and wins.
	Store       string `env:"SEQNET_STORE" envDefault:"memory"`
	StoreDir    string `env:"SEQNET_STORE_DIR"`
	StoreConfig string `env:"SEQNET_STORE_CONFIG"`

	// Prefix is the binary section prefix this node serves; empty serves
	// every name.
	Prefix string `env:"SEQNET_PREFIX"`

	// Snapshot is a bundle file restored at startup when present and
	// rewritten on shutdown.
	Snapshot string `env:"SEQNET_SNAPSHOT"`

	OTelEndpoint string `env:"SEQNET_OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"SEQNET_OTEL_ENABLED" envDefault:"true"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns a Node populated from the environment.
func Load() (Node, error) {
	var n Node
	if err := ParseEnv(&n); err != nil {
		return Node{}, err
	}
	return n, nil
}

// RegisterFlags binds every field to fs, using the current values as
// defaults.
func (n *Node) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&n.ListenAddr, "listen", n.ListenAddr, "gRPC listen address")
	fs.StringVar(&n.MetricsAddr, "metrics", n.MetricsAddr, "Prometheus /metrics listen address (empty disables)")
	fs.IntVar(&n.MaxMsgBytes, "max-msg-bytes", n.MaxMsgBytes, "Max gRPC message size")
	fs.StringVar(&n.LogLevel, "loglevel", n.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&n.LogFormat, "logformat", n.LogFormat, "Log format: json or logfmt")
	fs.StringVar(&n.Store, "store", n.Store, "Chunk store backend: memory or localfs")
	fs.StringVar(&n.StoreDir, "store-dir", n.StoreDir, "Directory for the localfs backend")
	fs.StringVar(&n.StoreConfig, "store-config", n.StoreConfig, "Path to a JSON multi-backend store config")
	fs.StringVar(&n.Prefix, "prefix", n.Prefix, "Binary section prefix served by this node (e.g. 01)")
	fs.StringVar(&n.Snapshot, "snapshot", n.Snapshot, "Snapshot bundle restored on start and written on shutdown")
	fs.StringVar(&n.OTelEndpoint, "otel-endpoint", n.OTelEndpoint, "OTLP/HTTP trace endpoint URL (empty disables tracing)")
	fs.BoolVar(&n.OTelEnabled, "otel", n.OTelEnabled, "Enable tracing when an endpoint is set")
}

// Validate reports the first invalid setting.
func (n Node) Validate() error {
	if n.ListenAddr == "" {
		return errors.New("config: listen address is required")
	}
	if n.MaxMsgBytes < 0 {
		return fmt.Errorf("config: invalid max message size %d", n.MaxMsgBytes)
	}
	switch n.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log level %q", n.LogLevel)
	}
	switch n.LogFormat {
	case "json", "logfmt":
	default:
		return fmt.Errorf("config: invalid log format %q", n.LogFormat)
	}
	if _, err := n.RoutingPrefix(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if n.StoreConfig != "" {
		return nil
	}
	return n.singleStore().Validate()
}

// RoutingPrefix parses Prefix.
func (n Node) RoutingPrefix() (xorname.Prefix, error) {
	return xorname.ParsePrefix(n.Prefix)
}

// StoreSpec returns the store configuration, read from StoreConfig when set.
func (n Node) StoreSpec() (StoreConfig, error) {
	if n.StoreConfig != "" {
		return LoadStoreFile(n.StoreConfig)
	}
	sc := n.singleStore()
	return sc, sc.Validate()
}

func (n Node) singleStore() StoreConfig {
	b := BackendConfig{Name: n.Store}
	if n.StoreDir != "" {
		b.Config = map[string]string{"dir": n.StoreDir}
	}
	return StoreConfig{Backends: []BackendConfig{b}}
}
