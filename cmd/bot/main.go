package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"

	"max.ks1230/roundup-bot/internal/clients/cache"
	"max.ks1230/roundup-bot/internal/clients/kafka"
	"max.ks1230/roundup-bot/internal/clients/tg"
	"max.ks1230/roundup-bot/internal/config"
	"max.ks1230/roundup-bot/internal/entity/user"
	"max.ks1230/roundup-bot/internal/logger"
	"max.ks1230/roundup-bot/internal/model/messages"
	"max.ks1230/roundup-bot/internal/model/session"
	"max.ks1230/roundup-bot/internal/model/storage"
)

const serviceName = "roundup-bot"

type userStorage interface {
	GetUser(username string) (user.Record, error)
	SaveUser(username string, rec user.Record) error
	ActiveUser() (string, error)
	SetActiveUser(username string) error
}

func main() {
	logger.Info("Bot init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config", zap.Error(err))
	}

	closer := initTracing(serviceName)
	defer closer.Close()

	client, err := tg.New(conf.Telegram())
	if err != nil {
		logger.Fatal("failed to init client", zap.Error(err))
	}

	store := newStorage(conf)
	binding := session.NewBinding(store, conf.App())
	watcher := session.NewWatcher(binding, conf.App())

	var producer messages.SummaryProducer
	if conf.App().AsyncSummary() {
		kafkaProducer, err := kafka.NewProducer(conf.Kafka())
		if err != nil {
			logger.Fatal("failed to init kafka producer", zap.Error(err))
		}
		defer kafkaProducer.Close()
		producer = kafkaProducer
	}

	var summaryCache messages.SummaryCache
	if conf.Memcached().Enabled() {
		mc, err := cache.NewMemcache(conf.Memcached())
		if err != nil {
			logger.Fatal("failed to init memcached", zap.Error(err))
		}
		summaryCache = mc
	}

	msgService := messages.NewService(client, binding, producer, summaryCache, conf.App())

	logger.Info("Bot init - end")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	go watcher.Watch(ctx)
	go serveMetrics(conf.App().MetricsPort())

	client.ListenUpdates(ctx, msgService)
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

func serveMetrics(port int) {
	if port <= 0 {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	err := http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
	if err != nil {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}
