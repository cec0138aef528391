// Package main runs the room server and its admin client
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/room-server/cmd/server/client"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

var rootCmd = &cobra.Command{
	Use:          "room-server",
	Short:        "Virtual-world room server",
	Long:         `Hosts live rooms for websocket clients and exposes an admin gRPC service for operators.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serverCmd, client.ClientCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "room-server:", err)
		os.Exit(1)
	}
}
