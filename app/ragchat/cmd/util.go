package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/acahill/ragchat/internal/api"
	"github.com/acahill/ragchat/internal/auth"
	"github.com/acahill/ragchat/internal/session"
	"github.com/acahill/ragchat/internal/telemetry"
	"github.com/acahill/ragchat/internal/transport"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

func setupContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		log.Println("Interrupt signal detected, shutting down gracefully...")
		cancel()
		<-interrupt
		log.Fatal("Forcing shutdown")
	}()

	return ctx
}

// clients bundles the wired-up services every command needs.
type clients struct {
	store     session.Store
	api       *api.Client
	auth      *auth.Manager
	telemetry *telemetry.Provider
}

func setupClients(ctx context.Context) (*clients, error) {
	if config.APIBaseURL == "" {
		return nil, fmt.Errorf("no API URL configured: set RAGCHAT_API_URL or pass --api-url")
	}

	telemetryProvider, err := createTelemetryProvider(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}

	store, err := createSessionStore()
	if err != nil {
		return nil, fmt.Errorf("failed to set up session store: %w", err)
	}

	apiClient := createAPIClient(ctx, store, telemetryProvider)
	authManager := auth.NewManager(apiClient, store, cliNavigator{})

	return &clients{
		store:     store,
		api:       apiClient,
		auth:      authManager,
		telemetry: telemetryProvider,
	}, nil
}

func (c *clients) close(ctx context.Context) {
	if err := c.store.Close(); err != nil {
		log.Printf("Failed to close session store: %v", err)
	}
	if err := c.telemetry.Shutdown(ctx); err != nil {
		log.Printf("Failed to shut down telemetry: %v", err)
	}
}

func createSessionStore() (session.Store, error) {
	switch session.StoreType(config.SessionStore) {
	case session.StoreTypeFile:
		path := config.SessionFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to locate home directory: %w", err)
			}
			path = filepath.Join(home, ".ragchat", "session.json")
		}
		return session.NewStore(session.StoreTypeFile, session.WithPath(path))

	case session.StoreTypeRedis:
		if config.RedisAddr == "" {
			return nil, fmt.Errorf("RAGCHAT_REDIS_ADDR not set")
		}
		client := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
		return session.NewStore(session.StoreTypeRedis, session.WithRedisClient(client))

	case session.StoreTypeMemory:
		return session.NewStore(session.StoreTypeMemory)

	default:
		return nil, fmt.Errorf("unknown session store type %q", config.SessionStore)
	}
}

func createAPIClient(ctx context.Context, store session.Store, telemetryProvider *telemetry.Provider) *api.Client {
	baseTransport := transport.WithTracing(transport.WithRequestIDs(nil), telemetryProvider.Tracer())

	plainClient := &http.Client{
		Transport: baseTransport,
		Timeout:   config.RequestTimeout,
	}

	// The authed client reads the session token from the store on every
	// request, so logins and logouts in this process are picked up immediately
	authedClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: session.TokenSource(ctx, store),
			Base:   baseTransport,
		},
		Timeout: config.RequestTimeout,
	}

	return api.NewClient(config.APIBaseURL, plainClient, authedClient)
}

func createTelemetryProvider(ctx context.Context) (*telemetry.Provider, error) {
	telemetryConfig := telemetry.Config{
		Enabled:      config.TelemetryEnabled,
		OTLPEndpoint: config.OTLPEndpoint,
	}
	return telemetry.NewProvider(ctx, telemetryConfig)
}

// cliNavigator translates view-change signals into terminal hints. Route
// changes have no equivalent in a CLI beyond telling the user what to do next.
type cliNavigator struct{}

func (cliNavigator) ShowConversation() {
	fmt.Println("Signed in. Run 'ragchat chat' to start a conversation.")
}

func (cliNavigator) ShowLanding() {
	fmt.Println("Signed out.")
}
