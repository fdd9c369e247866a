// @title           Sijagur Dashboard Gateway
// @version         1.0
// @description     Authenticated gateway between the Sijagur dashboard and the Gin API.
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/sijagur/dashboard-gateway/internal/api"
	"github.com/sijagur/dashboard-gateway/internal/core/domain"
	"github.com/sijagur/dashboard-gateway/internal/core/ports"
	"github.com/sijagur/dashboard-gateway/internal/core/service"
	"github.com/sijagur/dashboard-gateway/internal/infrastructure/db/mongo"
	"github.com/sijagur/dashboard-gateway/internal/infrastructure/db/redis"
	"github.com/sijagur/dashboard-gateway/internal/infrastructure/ginapi"
	"github.com/sijagur/dashboard-gateway/internal/infrastructure/memory"
	"github.com/sijagur/dashboard-gateway/internal/infrastructure/queue"
	"github.com/sijagur/dashboard-gateway/internal/pkg/config"
	"github.com/sijagur/dashboard-gateway/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "dashboard-gateway",
	})
	log.Info().Str("env", cfg.Env).Str("gin_api", cfg.Gin.URL).Msg("starting dashboard gateway")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		rdb *goredis.Client
		db  *gomongo.Database
	)
	if cfg.NeedsRedis() {
		client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer client.Close()
		rdb = client
	}
	if cfg.NeedsMongo() {
		client, database, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connection failed")
		}
		defer func() {
			if err := mongo.Disconnect(client, shutdownTimeout); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
			}
		}()
		db = database
	}

	tokens := tokenStore(cfg, rdb)
	profiles := profileRepository(cfg, db)
	creds := cfg.Gin.Credentials()
	if cfg.Gin.AutoAuth && (creds.Identifier == "" || creds.Password == "") {
		log.Warn().Msg("AUTO_AUTH is on but GIN_USER_EMAIL or GIN_USER_PASSWORD is empty")
	}

	client := ginapi.NewClient(cfg.Gin.URL, cfg.Gin.Timeout, log)
	auth := service.NewAuthenticator(client, tokens, profiles, creds, cfg.Session.AuthTimeout, log)

	policy := domain.ParseExpiryPolicy(cfg.Session.ExpiryPolicy)
	session := service.NewSession(tokens, profiles, creds.Identifier, policy)

	caller := ginapi.NewAuthorizedClient(client, tokens, auth, cfg.Gin.AutoAuth, log)
	caller.OnUnauthorized = func(context.Context) {
		session.Teardown()
		log.Warn().Msg("service session expired, login required")
	}

	if err := session.Initialize(ctx); err != nil {
		log.Warn().Err(err).Msg("could not restore cached user profile")
	}
	defer session.Teardown()

	var snapshots ports.SnapshotCache
	if rdb != nil && cfg.Refresh.SnapshotTTL > 0 {
		snapshots = redis.NewSnapshotCache(rdb)
	}
	dashboard := service.NewDashboardService(caller, snapshots, cfg.Refresh.SnapshotTTL, log)

	refresher := queue.NewRefresher(cfg.Refresh.Workers, cfg.Refresh.Interval, queue.DefaultJobs(cfg.Refresh.Idsatker), dashboard, log)
	refresher.Start(ctx)

	e := api.NewRouter(api.Dependencies{
		GinAPI:    client,
		Caller:    caller,
		Auth:      auth,
		Session:   session,
		Dashboard: dashboard,
		Guard: func(s ports.Session) ports.RouteGuard {
			return service.NewSessionGuard(s, log)
		},
		Sender:        client,
		Verifier:      service.NewTokenVerifier(client, cfg.Session.ClientVerifyTTL, log),
		Mongo:         db,
		Redis:         rdb,
		ExpiryPolicy:  policy,
		RequireClient: cfg.Session.RequireClient,
		Log:           log,
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown incomplete")
	}
	log.Info().Msg("gateway stopped")
}

func tokenStore(cfg *config.Config, rdb *goredis.Client) ports.TokenStore {
	if cfg.Session.TokenStore == config.StoreRedis && rdb != nil {
		return redis.NewTokenStore(rdb, cfg.Session.TokenKey, cfg.Session.TokenTTL)
	}
	return memory.NewTokenStore()
}

func profileRepository(cfg *config.Config, db *gomongo.Database) ports.ProfileRepository {
	if cfg.Session.ProfileStore == config.StoreMongo && db != nil {
		return mongo.NewProfileRepository(db)
	}
	return memory.NewProfileRepository()
}
