package di

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"astrochart/internal/domain/repository"
	"astrochart/internal/handler/api"
	internalrepo "astrochart/internal/repository"
	icache "astrochart/internal/service/cache"
	"astrochart/internal/service/ratelimit"
	"astrochart/internal/service/stream"
	"astrochart/internal/services/astro"
	"astrochart/internal/usecase"
	pkgcache "astrochart/pkg/cache"
	pkgch "astrochart/pkg/clickhouse"
	"astrochart/pkg/config"
	pkgkafka "astrochart/pkg/kafka"
	applogger "astrochart/pkg/logger"
	"astrochart/pkg/metrics"
	"astrochart/pkg/queue"
	"astrochart/pkg/server"

	"astrochart/internal/domain/models"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "console"
	if cfg.Environment == "production" {
		format = "json"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRedisCache creates the Redis cache layer, or nil when Redis is
// disabled.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	host, port := splitHostPort(cfg.Redis.Addr, 6379)
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideRedisClient exposes the underlying Redis connection for the job
// queue, or nil when Redis is disabled.
func ProvideRedisClient(rc *pkgcache.RedisCache) *redis.Client {
	if rc == nil {
		return nil
	}
	return rc.Client()
}

// ProvideCache creates the chart cache: layered memory+Redis when Redis is
// enabled, memory-only otherwise.
func ProvideCache(rc *pkgcache.RedisCache) pkgcache.Service {
	if rc != nil {
		return pkgcache.NewLayeredCache(rc)
	}
	return pkgcache.NewMemoryCache()
}

func splitHostPort(addr string, defaultPort int) (string, int) {
	host := addr
	port := defaultPort
	if i := strings.LastIndexByte(addr, ':'); i >= 0 {
		host = addr[:i]
		if p, err := strconv.Atoi(addr[i+1:]); err == nil {
			port = p
		}
	}
	return host, port
}

// ProvideClickHouseClient creates a ClickHouse client with the chart_log
// schema, or nil when ClickHouse is disabled.
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

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	table := chartTable(cfg)
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + table + ` (
			id String,
			computed_at DateTime,
			chart_type LowCardinality(String),
			frame LowCardinality(String),
			birth_ts DateTime,
			latitude Float64,
			longitude Float64,
			sun_sign LowCardinality(String),
			moon_sign LowCardinality(String),
			ascendant Float64,
			aspect_count UInt32,
			payload String
		) ENGINE=MergeTree ORDER BY (chart_type, computed_at)`,
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

func chartTable(cfg *config.Config) string {
	table := cfg.ClickHouse.Table
	if table == "" {
		table = "chart_log"
	}
	return cfg.ClickHouse.Database + "." + table
}

// ProvideChartArchive creates ClickHouse chart archival, or nil when disabled.
func ProvideChartArchive(chClient *pkgch.Client, cfg *config.Config) repository.ChartArchive {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseChartArchive(chClient.DB(), chartTable(cfg))
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
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

// ProvideChartPublisher creates the chart.computed event publisher, or nil.
func ProvideChartPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaChartPublisher(producer, cfg.Kafka.ComputedTopic)
}

// ProvideKafkaConsumer creates the chart.requests consumer, or nil when
// Kafka or the requests topic is not configured.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.RequestsTopic == "" {
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

// ProvideAssembler creates the chart assembler over a memoizing ephemeris.
func ProvideAssembler() *astro.Assembler {
	return astro.NewAssembler(astro.NewEngine())
}

// ProvideRegistry wires the six chart-type strategies.
func ProvideRegistry(asm *astro.Assembler) *usecase.Registry {
	return usecase.NewDefaultRegistry(asm)
}

// ProvideQueue creates the Redis-backed background job queue, or nil when
// Redis or the queue is disabled.
func ProvideQueue(cfg *config.Config, rdb *redis.Client, l *applogger.Logger) *queue.RedisQueue {
	if rdb == nil || !cfg.Queue.Enabled {
		return nil
	}
	return queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  cfg.Queue.QueueSize,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, rdb, queue.ModeProducerConsumer)
}

// ProvideChartService creates the chart computation service.
func ProvideChartService(
	registry *usecase.Registry,
	cache pkgcache.Service,
	archive repository.ChartArchive,
	pub repository.Publisher,
	m repository.Metrics,
	l *applogger.Logger,
	jobs *queue.RedisQueue,
	cfg *config.Config,
) *usecase.ChartService {
	opts := []usecase.ChartServiceOption{}
	if cfg.Chart.CacheTTL > 0 {
		opts = append(opts, usecase.WithCacheTTL(cfg.Chart.CacheTTL))
	}
	if cfg.Chart.DefaultFrame != "" {
		opts = append(opts, usecase.WithDefaultFrame(models.Frame(cfg.Chart.DefaultFrame)))
	}
	if jobs != nil {
		opts = append(opts, usecase.WithRefineQueue(jobs))
	}
	return usecase.NewChartService(registry, cache, archive, pub, m, l, opts...)
}

// ProvideChartRequestsHandler registers the handler for the requests topic.
func ProvideChartRequestsHandler(charts *usecase.ChartService, m repository.Metrics, l *applogger.Logger, cfg *config.Config) *usecase.ChartRequestsHandler {
	if cfg.Kafka.RequestsTopic == "" {
		return nil
	}
	return usecase.NewChartRequestsHandler(cfg.Kafka.RequestsTopic, charts, m, l)
}

// ProvideTransitHub creates the WebSocket transit hub, or nil when disabled.
func ProvideTransitHub(asm *astro.Assembler, rdb *redis.Client, l *applogger.Logger, cfg *config.Config) *stream.Hub {
	if !cfg.Transit.Enabled {
		return nil
	}
	opts := []stream.HubOption{}
	if cfg.Transit.Interval > 0 {
		opts = append(opts, stream.WithInterval(cfg.Transit.Interval))
	}
	if cfg.Transit.PingInterval > 0 {
		opts = append(opts, stream.WithPingInterval(cfg.Transit.PingInterval))
	}
	if rdb != nil {
		// shared snapshots survive restarts and serve multiple instances
		opts = append(opts, stream.WithSnapshotCache(icache.NewRedisCacheFromClient(rdb)))
	}
	return stream.NewHub(asm.Engine(), ratelimit.New(), l, opts...)
}

// ProvideChartsHandler creates the HTTP handler.
func ProvideChartsHandler(charts *usecase.ChartService, hub *stream.Hub, archive repository.ChartArchive, l *applogger.Logger) *api.ChartsHandler {
	h := api.NewChartsHandler(charts, hub, l)
	if archive != nil {
		h.SetHealthCheck(archive.Health)
	}
	return h
}

// kafkaLogSink adapts the Kafka producer to the log collector's publisher.
type kafkaLogSink struct {
	producer *pkgkafka.Producer
}

func (s kafkaLogSink) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return s.producer.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.ChartsHandler,
	hub *stream.Hub,
	producer *pkgkafka.Producer,
	consumer *pkgkafka.Consumer,
	kh *usecase.ChartRequestsHandler,
	jobs *queue.RedisQueue,
	job *usecase.SolarReturnRefineJob,
	chClient *pkgch.Client,
	pub repository.Publisher,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	if jobs != nil && job != nil {
		jobs.RegisterJob(job)
	}
	if producer != nil {
		// ship aggregated error logs alongside chart events
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "astrochart.logs",
			Publisher:      kafkaLogSink{producer: producer},
		})
	}
	return server.New(cfg, l, handler, hub, consumer, kh, jobs, chClient, pub)
}

// ProvideSolarReturnJob creates the background solar-return refinement job.
func ProvideSolarReturnJob(asm *astro.Assembler, charts *usecase.ChartService, l *applogger.Logger) *usecase.SolarReturnRefineJob {
	return usecase.NewSolarReturnRefineJob(asm, charts, l)
}
