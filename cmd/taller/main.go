// Package main implements the taller service-center server and CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/taller/internal/config"
	"github.com/erazemk/taller/internal/httpclient"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "taller",
	Short:        "Vehicle service center inspection server",
	SilenceUsage: true,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "taller.toml", "Configuration file")
}

// loadConfig reads the configuration file named by --config.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// newUpstream returns a client for the configured service-center API.
func newUpstream(cfg *config.Config) *httpclient.Client {
	client := httpclient.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout.Duration)
	for k, v := range cfg.Upstream.Headers {
		client.Headers[k] = v
	}
	return client
}
