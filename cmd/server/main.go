// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	authhandler "portalgate/internal/auth/handler"
	authservice "portalgate/internal/auth/service"
	"portalgate/internal/credential"
	"portalgate/internal/platform/config"
	"portalgate/internal/platform/httpserver"
	"portalgate/internal/platform/logger"
	platformredis "portalgate/internal/platform/redis"
	"portalgate/internal/proxy"
	"portalgate/internal/samlvalidator"
	"portalgate/internal/session"
	"portalgate/internal/slo"
	httptransport "portalgate/internal/transport/http"
	"portalgate/pkg/platform/audit"
	auditmemory "portalgate/pkg/platform/audit/store/memory"
	auditpostgres "portalgate/pkg/platform/audit/store/postgres"
	"portalgate/pkg/platform/audit/publisher"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "portalgate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(string(cfg.SessionType))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: shared Redis in production, in-process fallback for local runs.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	var sessions session.Store
	var index slo.Index
	var ready func(r *http.Request) error
	if redisClient != nil {
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient.Client)
		index = slo.NewRedisIndex(redisClient.Client)
		ready = func(r *http.Request) error { return redisClient.Health(r.Context()) }
		log.Info("using redis session store")
	} else {
		sessions = session.NewMemoryStore()
		index = slo.NewMemoryIndex()
		log.Warn("no REDIS_URL configured, using in-process stores; sessions will not survive a restart and must not be load balanced")
	}

	// Audit trail: durable when a DSN is configured, in-process otherwise.
	var auditStore audit.Store
	if cfg.AuditPostgresDSN != "" {
		pgStore, err := auditpostgres.Open(ctx, cfg.AuditPostgresDSN)
		if err != nil {
			return fmt.Errorf("audit store: %w", err)
		}
		defer pgStore.Close()
		auditStore = pgStore
		log.Info("using postgres audit store")
	} else {
		auditStore = auditmemory.NewInMemoryStore()
	}
	auditor := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(1024),
		publisher.WithLogger(log),
	)
	defer auditor.Close()

	sp, err := samlvalidator.NewServiceProvider(ctx, samlvalidator.ProviderConfig{
		CertFile:       cfg.SAMLCertFile,
		KeyFile:        cfg.SAMLKeyFile,
		EntityID:       cfg.SAMLEntityID,
		RootURL:        cfg.SAMLRootURL,
		IdPMetadataURL: cfg.SAMLMetadataURL,
	})
	if err != nil {
		return fmt.Errorf("saml: %w", err)
	}
	validator := samlvalidator.New(sp)

	authSvc, err := authservice.New(sessions, index, validator,
		string(cfg.SessionType), cfg.SessionTTL,
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(auditor),
	)
	if err != nil {
		return err
	}

	cookies := session.NewCookieCodec(string(cfg.SessionType), cfg.CookieSecret, cfg.CookieSecure)

	var upstreamProxy http.Handler
	if cfg.UpstreamURL != "" {
		upstream, err := url.Parse(cfg.UpstreamURL)
		if err != nil {
			return fmt.Errorf("upstream url: %w", err)
		}
		minter := credential.NewMinter(cfg.CredentialSigningKey, cfg.CredentialIssuer,
			cfg.CredentialAudience, cfg.CredentialTTL)
		upstreamProxy = proxy.New(upstream, minter, log)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		AuthHandler: authhandler.New(authSvc, cookies, log),
		Sessions:    sessions,
		Index:       index,
		Cookies:     cookies,
		SessionTTL:  cfg.SessionTTL,
		Proxy:       upstreamProxy,
		Ready:       ready,
		Logger:      log,
	})
	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting portalgate", "addr", cfg.Addr, "gateway", string(cfg.SessionType))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
