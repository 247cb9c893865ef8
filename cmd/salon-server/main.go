package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"

	"salonbook/backend/internal/config"
	"salonbook/backend/internal/notify"
	"salonbook/backend/internal/seed"
	"salonbook/backend/internal/service/appointments"
	"salonbook/backend/internal/store"
	"salonbook/backend/internal/store/memory"
	"salonbook/backend/internal/store/postgres"
	"salonbook/backend/internal/store/rediscache"
	"salonbook/backend/internal/telemetry"
	grpcTransport "salonbook/backend/internal/transport/grpc"
	"salonbook/backend/internal/transport/httpapi"
)

const serviceName = "salon-server"

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", serviceName),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", serviceName),
	)
	slog.SetDefault(log)

	if err := run(log, cfg); err != nil {
		log.Error("server exited", slog.Any("err", err))
		os.Exit(1)
	}
}

type stores struct {
	appointments store.AppointmentRepository
	catalog      store.ServiceCatalog
	directory    store.UserDirectory
	checks       []httpapi.ReadyCheck
	close        func()
}

func run(log *slog.Logger, cfg config.Config) error {
	log.Info("starting",
		slog.String("grpc_addr", cfg.GRPCAddr()),
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("store_driver", cfg.StoreDriver),
		slog.String("timezone", cfg.Hours.Location.String()),
		slog.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  serviceName,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("tracer shutdown failed", slog.Any("err", err))
		}
	}()

	st, err := openStores(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	catalog := st.catalog
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn("redis close failed", slog.Any("err", err))
			}
		}()
		catalog = rediscache.NewCatalogCache(rdb, st.catalog, cfg.CatalogTTL, log)
		st.checks = append(st.checks, httpapi.ReadyCheck{Name: "redis", Check: rediscache.ReadyCheck(rdb)})
		log.Info("catalog cache enabled", slog.String("redis_addr", cfg.RedisAddr), slog.Duration("ttl", cfg.CatalogTTL))
	}

	var confirmer appointments.Confirmer = notify.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		pub, err := notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			return fmt.Errorf("kafka publisher: %w", err)
		}
		defer func() {
			if err := pub.Close(); err != nil {
				log.Warn("kafka publisher close failed", slog.Any("err", err))
			}
		}()
		confirmer = pub
		st.checks = append(st.checks, httpapi.ReadyCheck{Name: "kafka", Check: notify.ReadyCheck(cfg.KafkaBrokers)})
		log.Info("booking confirmations enabled", slog.String("topic", cfg.KafkaTopic))
	}

	svc := appointments.NewService(appointments.Deps{
		Appointments: st.appointments,
		Catalog:      catalog,
		Directory:    st.directory,
		Confirmer:    confirmer,
		Hours:        cfg.Hours,
		Log:          log,
	})

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpcTransport.RequestIDInterceptor(),
			grpcTransport.RequestTimeoutInterceptor(cfg.GRPCRequestTimeout),
		),
	)
	grpcTransport.RegisterAppointmentsServiceServer(grpcServer, grpcTransport.NewAppointmentsServer(svc, log))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(httpapi.NewRouter(svc, log, st.checks...), "salon-http"),
		ReadHeaderTimeout: cfg.HTTPReadHeaderTime,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		return fmt.Errorf("grpc listen on %s: %w", cfg.GRPCAddr(), err)
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	log.Info("servers started", slog.String("grpc_addr", cfg.GRPCAddr()), slog.String("http_addr", cfg.HTTPAddr))

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) && !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	}
	shutdown(log, grpcServer, httpServer, cfg.ShutdownTimeout)
	return serveErr
}

func openStores(ctx context.Context, log *slog.Logger, cfg config.Config) (stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		mem := memory.New()
		if err := seed.Demo(ctx, mem, mem); err != nil {
			return stores{}, err
		}
		log.Warn("using in-memory store; data is lost on restart")
		return stores{
			appointments: mem,
			catalog:      mem,
			directory:    mem,
			close:        func() {},
		}, nil
	}

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		return stores{}, err
	}
	return stores{
		appointments: postgres.NewAppointmentRepo(db),
		catalog:      postgres.NewServiceRepo(db),
		directory:    postgres.NewUserRepo(db),
		checks:       []httpapi.ReadyCheck{{Name: "db", Check: postgres.ReadyCheck(db)}},
		close: func() {
			if err := postgres.Close(db); err != nil {
				log.Warn("database close failed", slog.Any("err", err))
			}
		},
	}, nil
}

func shutdown(log *slog.Logger, s *grpc.Server, h *http.Server, timeout time.Duration) {
	log.Info("shutting down servers", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := h.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown failed", slog.Any("err", err))
	}

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-ctx.Done():
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.Stop()
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
