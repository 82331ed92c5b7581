package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"TradeTuner/internal/domain/repository"
	domsvc "TradeTuner/internal/domain/service"
	"TradeTuner/internal/handler/api"
	mid "TradeTuner/internal/middleware"
	internalrepo "TradeTuner/internal/repository"
	icache "TradeTuner/internal/service/cache"
	"TradeTuner/internal/service/exchange"
	"TradeTuner/internal/service/ratelimit"
	"TradeTuner/internal/services/analytics"
	"TradeTuner/internal/services/optimize"
	"TradeTuner/internal/usecase"
	pkgcache "TradeTuner/pkg/cache"
	pkgch "TradeTuner/pkg/clickhouse"
	"TradeTuner/pkg/config"
	pkgkafka "TradeTuner/pkg/kafka"
	"TradeTuner/pkg/logger"
	"TradeTuner/pkg/metrics"
	"TradeTuner/pkg/queue"
	"TradeTuner/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return logger.New(&logger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS tradetuner",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideAuditStore creates the ClickHouse audit store, or nil without ClickHouse.
func ProvideAuditStore(chClient *pkgch.Client, l *logger.Logger) (repository.AuditStore, error) {
	if chClient == nil {
		return nil, nil
	}
	store := internalrepo.NewCHAuditStore(chClient)
	store.SetLogger(l)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.TradesTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideTradeTape creates the in-memory per-pair trade ring buffer.
func ProvideTradeTape(cfg *config.Config) repository.TradeTape {
	return internalrepo.NewMemoryTradeTape(cfg.Analysis.TapeCapacity)
}

// ProvideMarketDataProvider creates the exchange REST client.
func ProvideMarketDataProvider(cfg *config.Config) domsvc.MarketDataProvider {
	return exchange.New(
		cfg.Exchange.RESTURL,
		cfg.Exchange.APIKey,
		cfg.Exchange.Timeout,
		ratelimit.New(),
		cfg.Exchange.RateCapacity,
		cfg.Exchange.RatePerSec,
	)
}

// ProvideTradeStream creates the exchange WebSocket stream, or nil when no
// stream URL is configured.
func ProvideTradeStream(cfg *config.Config, l *logger.Logger) repository.TradeStream {
	if cfg.Exchange.WebSocketURL == "" {
		return nil
	}
	return exchange.NewStream(
		cfg.Exchange.WebSocketURL,
		cfg.Exchange.Pairs,
		cfg.Exchange.ReconnectDelay,
		cfg.Exchange.PingInterval,
		l,
	)
}

// ProvideBytesCache picks the layered memory+Redis cache when Redis is
// enabled, an in-process TTL cache otherwise.
func ProvideBytesCache(cfg *config.Config) (icache.BytesCache, error) {
	if !cfg.Redis.Enabled {
		return icache.NewTTLCache(), nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return icache.NewServiceBytes(pkgcache.NewLayeredCache(rc)), nil
}

// ProvideExternalOptimizer creates the remote optimizer client, or nil when disabled.
func ProvideExternalOptimizer(cfg *config.Config) domsvc.ExternalOptimizer {
	if !cfg.Optimizer.Enabled {
		return nil
	}
	return analytics.NewHTTPExternalOptimizer(cfg)
}

// ProvidePublisher creates the Kafka decision publisher, or nil without Kafka.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideMarketAnalyzer creates the market analysis use case.
func ProvideMarketAnalyzer(
	provider domsvc.MarketDataProvider,
	tape repository.TradeTape,
	cache icache.BytesCache,
	audit repository.AuditStore,
	m repository.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.MarketAnalyzer {
	a := usecase.NewMarketAnalyzer(provider, tape, cache, cfg.Analysis.CacheTTL, audit, m, l)
	a.SetInterval(repository.NormalizeInterval(cfg.Analysis.Interval))
	return a
}

// ProvideParameterOptimizer creates the optimization use case.
func ProvideParameterOptimizer(
	external domsvc.ExternalOptimizer,
	pub repository.Publisher,
	audit repository.AuditStore,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.ParameterOptimizer {
	return usecase.NewParameterOptimizer(external, optimize.DefaultClampPolicy, pub, audit, m, l)
}

// ProvidePipeline builds the middleware pipeline between the stream and the tape.
func ProvidePipeline(tape repository.TradeTape, m repository.Metrics) *mid.RealtimePipeline {
	return mid.NewRealtimePipeline(mid.TapeWriter{Tape: tape}, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
}

// ProvideTradeCollector creates the trade collector, or nil without a stream.
func ProvideTradeCollector(
	stream repository.TradeStream,
	pipe *mid.RealtimePipeline,
	m repository.Metrics,
) *usecase.TradeCollector {
	if stream == nil {
		return nil
	}
	return usecase.NewTradeCollector(stream, pipe, m)
}

// ProvideKafkaTradesHandler registers the handler for the trade events topic.
func ProvideKafkaTradesHandler(tape repository.TradeTape, m repository.Metrics, cfg *config.Config) *usecase.KafkaTradesHandler {
	return usecase.NewKafkaTradesHandler(cfg.Kafka.TradesTopic, tape, m)
}

// ProvideRedisQueue creates the scheduler job queue, or nil without Redis.
func ProvideRedisQueue(cfg *config.Config, l *logger.Logger) *queue.RedisQueue {
	if !cfg.Redis.Enabled || !cfg.Scheduler.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Scheduler.Workers,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}, client, queue.ModeProducerConsumer)
}

// ProvideAnalysisJob creates the queued analysis job handler.
func ProvideAnalysisJob(analyzer *usecase.MarketAnalyzer, l *logger.Logger) *usecase.AnalysisJob {
	return usecase.NewAnalysisJob(analyzer, l)
}

// ProvideScheduler creates the periodic analysis scheduler, or nil without a queue.
func ProvideScheduler(q *queue.RedisQueue, cfg *config.Config, l *logger.Logger) *usecase.Scheduler {
	if q == nil {
		return nil
	}
	return usecase.NewScheduler(q, cfg.Exchange.Pairs, cfg.Scheduler.Interval, cfg.Analysis.Lookback, l)
}

// ProvideAnalysisHandler creates the HTTP handler for the API surface.
func ProvideAnalysisHandler(
	l *logger.Logger,
	analyzer *usecase.MarketAnalyzer,
	optimizer *usecase.ParameterOptimizer,
	audit repository.AuditStore,
	tape repository.TradeTape,
) *api.AnalysisHandler {
	h := api.NewAnalysisHandler(l, analyzer, optimizer)
	if audit != nil {
		h.SetAuditStore(audit)
	}
	h.SetTradeTape(tape)
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.TradeCollector,
	pipe *mid.RealtimePipeline,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTradesHandler,
	chClient *pkgch.Client,
	handler *api.AnalysisHandler,
	jobQueue *queue.RedisQueue,
	scheduler *usecase.Scheduler,
	job *usecase.AnalysisJob,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	var kmh pkgkafka.MessageHandler
	if consumer != nil {
		kmh = kh
	}
	app := server.New(cfg, collector, pipe, consumer, kmh, chClient)
	app.SetHTTPHandler(handler)
	if jobQueue != nil && scheduler != nil {
		app.SetScheduler(jobQueue, scheduler, job)
	}
	return app
}
