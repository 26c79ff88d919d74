package main

import (
	"net/http"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/drawpair/server/internal/config"
	"github.com/drawpair/server/internal/server"
	"github.com/drawpair/server/internal/session"
)

var (
	flagPort     string
	flagOrigins  string
	flagLogLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "drawpair-server",
	Short: "Realtime server for two-person collaborative drawing rooms",
	Long: `drawpair-server hosts short-lived drawing rooms identified by a
shareable 6-character code. Exactly two participants share a room over a
websocket; strokes are broadcast live and replayed to whoever joins late.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagPort, "port", "", "port to listen on (default 8080, env PORT)")
	rootCmd.Flags().StringVar(&flagOrigins, "origins", "", "comma-separated allowed websocket origins (env CORS_ALLOWED_ORIGINS)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error (env LOG_LEVEL)")
}

func run() error {
	cfg, err := config.Load(config.Options{
		Port:     flagPort,
		Origins:  flagOrigins,
		LogLevel: flagLogLevel,
	})
	if err != nil {
		return err
	}
	logrus.SetLevel(cfg.LogLevel)

	// Create the hub and start its main event loop
	hub := session.NewHub()
	go hub.Run()

	router := server.NewRouter(hub, cfg.AllowedOrigins)

	logrus.WithFields(logrus.Fields{
		"addr":    cfg.Addr,
		"origins": cfg.AllowedOrigins,
	}).Info("Starting drawing server")

	return http.ListenAndServe(cfg.Addr, router)
}

func main() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(0)
	}()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
