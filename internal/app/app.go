package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ims/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/ims/internal/health"
	"github.com/vladislavdragonenkov/ims/internal/httpapi"
	"github.com/vladislavdragonenkov/ims/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/ims/internal/metrics"
	"github.com/vladislavdragonenkov/ims/internal/service/catalog"
	"github.com/vladislavdragonenkov/ims/internal/service/orders"
	"github.com/vladislavdragonenkov/ims/internal/service/requests"
	"github.com/vladislavdragonenkov/ims/internal/storage/memory"
	"github.com/vladislavdragonenkov/ims/internal/storage/postgres"
	"github.com/vladislavdragonenkov/ims/internal/storage/rediscache"
	"github.com/vladislavdragonenkov/ims/internal/version"
)

const productCacheTTL = 5 * time.Minute

// Run запускает сервис и блокируется до отмены контекста или ошибки сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	store, storeCloser, pgStore, err := initStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer storeCloser()

	kafkaProducer := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	m := metrics.NewStockMetrics()
	catalogSvc := catalog.NewService(store, logger.WithField("layer", "catalog"))
	ordersSvc := orders.NewService(store, logger.WithField("layer", "orders"), m, kafkaProducer)
	requestsSvc := requests.NewService(store, logger.WithField("layer", "requests"), m, kafkaProducer)

	healthHandler := healthcheck.NewHandler(version.Version())
	if pgStore != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pgStore.Ping(pingCtx)
		}))
	}

	opsSrv := startOpsServer(ctx, cfg.OpsAddr, logger, healthHandler)

	api := httpapi.NewHandler(catalogSvc, ordersSvc, requestsSvc, logger.WithField("layer", "httpapi"))
	apiSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP API")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(opsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(opsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// initStore выбирает хранилище: PostgreSQL при заданном DSN, иначе память.
// Redis-кэш товаров навешивается только поверх PostgreSQL.
func initStore(ctx context.Context, cfg Config, logger *log.Entry) (domain.Store, func(), *postgres.Store, error) {
	if cfg.PostgresDSN == "" {
		logger.Info("postgres DSN is not set, using in-memory store")
		return memory.NewStore(), func() {}, nil, nil
	}

	pgStore, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Info("postgres store initialized")

	closer := func() {
		if err := pgStore.Close(); err != nil {
			logger.WithError(err).Warn("failed to close postgres store")
		}
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pgStore.DecorateProducts(func(inner domain.ProductRepository) domain.ProductRepository {
			return rediscache.NewProductCache(inner, rdb, productCacheTTL)
		})
		logger.WithField("addr", cfg.RedisAddr).Info("redis product cache enabled")

		pgCloser := closer
		closer = func() {
			if err := rdb.Close(); err != nil {
				logger.WithError(err).Warn("failed to close redis client")
			}
			pgCloser()
		}
	}

	return pgStore, closer, pgStore, nil
}

// initKafkaProducer создаёт producer событий, если заданы брокеры.
// Ошибка подключения не фатальна: сервис продолжает работу без событий.
func initKafkaProducer(brokers string, logger *log.Entry) *kafka.Producer {
	if brokers == "" {
		return nil
	}

	brokerList := strings.Split(brokers, ",")
	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer
}

// closeKafka закрывает producer, если он был создан.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}

// startOpsServer запускает служебный HTTP-сервер: /metrics, /healthz, /livez.
func startOpsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez", addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("ops server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
