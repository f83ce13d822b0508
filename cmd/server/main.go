// Command ob-server serves the onboarding gRPC API, the public share
// pages and the operator HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/onboarding/internal/api"
	"github.com/and161185/onboarding/internal/config"
	"github.com/and161185/onboarding/internal/limiter"
	"github.com/and161185/onboarding/internal/metrics"
	"github.com/and161185/onboarding/internal/migrate"
	"github.com/and161185/onboarding/internal/repository"
	"github.com/and161185/onboarding/internal/repository/postgres"
	"github.com/and161185/onboarding/internal/repository/sqlite"
	grpcserver "github.com/and161185/onboarding/internal/server/grpc"
	httpserver "github.com/and161185/onboarding/internal/server/http"
	"github.com/and161185/onboarding/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg, err := config.LoadServer(os.Args[1:], os.LookupEnv, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, _ := zap.NewProduction()
	if cfg.Dev {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("grpcAddr", cfg.GRPCAddr),
		zap.String("httpAddr", cfg.HTTPAddr),
		zap.String("db", cfg.DBDriver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// store is the opened backend: repositories, the share lookup limiter and its cleanup.
type store struct {
	clients repository.ClientRepository
	forms   repository.FormRepository
	lim     limiter.Limiter
	prune   func()
	close   func()
}

func openStore(ctx context.Context, cfg config.Server) (*store, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := migrate.UpDB(ctx, db.SQL, migrate.DriverSQLite); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate up: %w", err)
		}
		mem := limiter.NewMemory(cfg.ShareWindow, cfg.ShareMaxFails, cfg.ShareBlockFor)
		return &store{
			clients: sqlite.NewClientRepo(db),
			forms:   sqlite.NewFormRepo(db),
			lim:     mem,
			prune:   mem.Prune,
			close:   func() { _ = db.Close() },
		}, nil
	default:
		if err := migrate.Up(ctx, migrate.DriverPostgres, cfg.DSN); err != nil {
			return nil, fmt.Errorf("migrate up: %w", err)
		}
		db, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return &store{
			clients: postgres.NewClientRepo(db),
			forms:   postgres.NewFormRepo(db),
			lim:     limiter.NewPG(db.Pool, cfg.ShareWindow, cfg.ShareMaxFails, cfg.ShareBlockFor),
			close:   db.Close,
		}, nil
	}
}

func run(ctx context.Context, cfg config.Server, logger *zap.Logger) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	m := metrics.New()
	clientSvc := service.NewClientService(st.clients, st.lim).WithLogger(logger.Named("share"))
	formSvc := service.NewFormService(st.forms, st.clients)

	// gRPC
	unary := []grpc.UnaryServerInterceptor{
		grpcserver.RecoverUnary(logger),
		grpcserver.LoggingUnary(logger),
		grpcserver.MetricsUnary(m),
	}
	if cfg.RPCRPS > 0 {
		unary = append(unary, grpcserver.RateLimitUnary(rate.NewLimiter(rate.Limit(cfg.RPCRPS), cfg.RPCBurst)))
	}
	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(unary...)}
	if cfg.TLS() {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return fmt.Errorf("load TLS cert/key: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	} else {
		logger.Warn("TLS disabled, serving plaintext")
	}
	gs := grpc.NewServer(opts...)
	api.RegisterOnboardingServer(gs, grpcserver.New(clientSvc, formSvc, cfg.PublicURL, m))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	if cfg.Dev {
		reflection.Register(gs)
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	// HTTP
	web := httpserver.New(clientSvc, formSvc, m, logger, httpserver.Options{
		CORSOrigins:       cfg.CORSOrigins,
		RequestsPerMinute: cfg.HTTPPerMinute,
		PublicURL:         cfg.PublicURL,
	})
	hsrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           web.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("grpc listening", zap.String("addr", cfg.GRPCAddr), zap.Bool("tls", cfg.TLS()))
		return gs.Serve(lis)
	})
	g.Go(func() error {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr), zap.Bool("tls", cfg.TLS()))
		var err error
		if cfg.TLS() {
			err = hsrv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = hsrv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	if st.prune != nil {
		g.Go(func() error {
			t := time.NewTicker(cfg.ShareWindow)
			defer t.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-t.C:
					st.prune()
				}
			}
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		hs.Shutdown()

		sctx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		if err := hsrv.Shutdown(sctx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}

		done := make(chan struct{})
		go func() {
			gs.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-sctx.Done():
			gs.Stop()
		}
		return nil
	})

	return g.Wait()
}
