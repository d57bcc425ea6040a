package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"curveOps/internal/config"
	"curveOps/internal/httpapi"
)

func main() {
	// provider keys usually live in .env next to the binary
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "curveops",
		Short:        "Curve Finance operations toolkit",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(newLPPriceCmd())
	root.AddCommand(newWeeklyFeesCmd())
	root.AddCommand(newVoteCmd())
	root.AddCommand(newTransfersCmd())
	root.AddCommand(newTxsCmd())
	root.AddCommand(newBlockAtCmd())
	root.AddCommand(newPoolFeesCmd())
	root.AddCommand(newReceiptsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// addCommonFlags registers the flags every command reads through config.Common.
func addCommonFlags(cmd *cobra.Command, withRPC bool) {
	if withRPC {
		cmd.Flags().String("rpc", "", "Ethereum RPC URL")
	}
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().Duration("http-timeout", 30*time.Second, "HTTP request timeout")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func addPGFlag(cmd *cobra.Command) {
	cmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
}

func configFile(cmd *cobra.Command) string {
	cfgFile, _ := cmd.Flags().GetString("config")
	return cfgFile
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newHTTPClient(cfg config.Common, logger *zap.Logger) *httpapi.Client {
	return httpapi.NewClient(cfg.HTTPTimeout, cfg.Retry(), logger)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redact(secret string) string {
	if secret == "" {
		return secret
	}
	return "***"
}
