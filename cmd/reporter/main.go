package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/opentracing/opentracing-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"

	"max.ks1230/roundup-bot/internal/clients/cache"
	"max.ks1230/roundup-bot/internal/clients/kafka"
	"max.ks1230/roundup-bot/internal/clients/tg"
	"max.ks1230/roundup-bot/internal/config"
	"max.ks1230/roundup-bot/internal/entity/user"
	"max.ks1230/roundup-bot/internal/logger"
	"max.ks1230/roundup-bot/internal/model/reports"
	"max.ks1230/roundup-bot/internal/model/storage"
)

const serviceName = "roundup-reporter"

type userStorage interface {
	GetUser(username string) (user.Record, error)
	SaveUser(username string, rec user.Record) error
	ActiveUser() (string, error)
	SetActiveUser(username string) error
}

// summaryCache matches the consumer's optional cache dependency.
type summaryCache interface {
	CacheSummary(username, summary string) error
}

func main() {
	logger.Info("Reporter init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config", zap.Error(err))
	}

	closer := initTracing(serviceName)
	defer closer.Close()

	store := newStorage(conf)
	generator := reports.NewGenerator(store)

	sender, err := tg.New(conf.Telegram())
	if err != nil {
		logger.Fatal("failed to init telegram client", zap.Error(err))
	}

	var mcache summaryCache
	if conf.Memcached().Enabled() {
		mc, err := cache.NewMemcache(conf.Memcached())
		if err != nil {
			logger.Fatal("failed to init memcached", zap.Error(err))
		}
		mcache = mc
	}

	consumer, err := kafka.NewConsumer(conf.Kafka(), generator, sender, mcache)
	if err != nil {
		logger.Fatal("failed to init kafka consumer", zap.Error(err))
	}

	logger.Info("Reporter init - end")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err = consumer.StartConsuming(ctx); err != nil {
		logger.Fatal("failed to start consuming", zap.Error(err))
	}
}

func newStorage(conf *config.Service) userStorage {
	switch conf.Storage().Backend() {
	case config.MemoryBackend:
		return storage.NewInMemStorage()
	case config.PostgresBackend:
		db, err := storage.NewPostgresStorage(conf.Postgres())
		if err != nil {
			logger.Fatal("failed to init postgres", zap.Error(err))
		}
		return db
	default:
		fs, err := storage.NewFileStorage(conf.Storage())
		if err != nil {
			logger.Fatal("failed to init file storage", zap.Error(err))
		}
		return fs
	}
}

func initTracing(service string) io.Closer {
	cfg := jaegercfg.Configuration{
		ServiceName: service,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
	}
	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	opentracing.SetGlobalTracer(tracer)
	return closer
}
