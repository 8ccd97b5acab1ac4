package cmd

import (
	"log"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Terminal client for an authenticated RAG answering service",
	Long: `Ragchat is a terminal client for an authenticated, retrieval-augmented
answering service. It keeps a persistent login session on disk and holds a
multi-turn conversation that is reconciled against the server's canonical
history.`,
	PersistentPreRun: loadRootConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func loadRootConfig(_ *cobra.Command, _ []string) {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	loadOptionalFromEnv(&config.APIBaseURL, "RAGCHAT_API_URL")
	loadOptionalFromEnv(&config.SessionStore, "RAGCHAT_SESSION_STORE")
	loadOptionalFromEnv(&config.SessionFile, "RAGCHAT_SESSION_FILE")
	loadOptionalFromEnv(&config.RedisAddr, "RAGCHAT_REDIS_ADDR")
	parseOptionalFromEnv(&config.RequestTimeout, "RAGCHAT_REQUEST_TIMEOUT", time.ParseDuration)
	parseOptionalFromEnv(&config.TelemetryEnabled, "TELEMETRY_ENABLED", strconv.ParseBool)
	loadOptionalFromEnv(&config.OTLPEndpoint, "OTLP_ENDPOINT")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&config.APIBaseURL, "api-url", "", "Base URL of the answering service")
	rootCmd.PersistentFlags().StringVar(&config.SessionStore, "session-store", "file", "Session store driver: file, redis, or memory")
}
