package main

import (
	"github.com/spf13/cobra"

	"github.com/qepting91/comment-lottery/internal/dashboard"
)

var (
	serveWinners string
	servePort    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the winners dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		port := servePort
		if port == "" {
			port = settings.Port
		}
		return dashboard.StartServer(cmd.Context(), serveWinners, port)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveWinners, "winners", "data/winners.ndjson", "winners file written by draw or run")
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default $PORT or 8080)")
}
