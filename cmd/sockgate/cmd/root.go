// Package cmd provides the CLI commands for sockgate.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sockgate/sockgate/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sockgate",
	Short: "sockgate - WebSocket gateway dispatch service",
	Long: `sockgate is an origin backend for managed WebSocket gateways
(AWS API Gateway WebSocket API semantics).

The gateway forwards $connect, $disconnect and route-keyed message events
as HTTP requests; sockgate validates the forwarded header and identity
contracts and dispatches each event to the registered handler.

Quick start:
  1. Create a config file: sockgate.yaml
  2. Run: sockgate start

Configuration:
  Config is loaded from sockgate.yaml in the current directory,
  $HOME/.sockgate/, or /etc/sockgate/.

  Environment variables can override config values with the SOCKGATE_ prefix.
  Example: SOCKGATE_SERVER_ADDR=:9090

Commands:
  start       Start the gateway server
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sockgate.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
