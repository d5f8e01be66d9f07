package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/Nairolf138/eos-mcp/cache"
	"github.com/Nairolf138/eos-mcp/observe"
	"github.com/Nairolf138/eos-mcp/osc"
	"github.com/Nairolf138/eos-mcp/tools"
)

const version = "1.0.0"

func main() {
	log := observe.NewLogger(os.Getenv("EOS_LOG_LEVEL"))
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	tel, err := observe.Init(ctx, observe.Config{
		ServiceName:     "eos-mcp",
		Version:         version,
		TracingExporter: os.Getenv("EOS_TRACING_EXPORTER"),
		MetricsExporter: os.Getenv("EOS_METRICS_EXPORTER"),
	})
	if err != nil {
		log.Fatal("failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	host := os.Getenv("EOS_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	client, err := osc.NewClient(osc.ClientConfig{
		Host:        host,
		SendPort:    envInt("EOS_PORT"),
		ReceivePort: envInt("EOS_RECEIVE_PORT"),
		Logger:      log,
	})
	if err != nil {
		log.Fatal("failed to create console client", zap.Error(err))
	}
	client.Start()
	defer func() { _ = client.Close() }()

	opts := []cache.Option{cache.WithMeter(tel.Meter())}
	if ttl := envInt("EOS_CACHE_TTL_MS"); ttl > 0 {
		opts = append(opts, cache.WithDefaultTTL(time.Duration(ttl)*time.Millisecond))
	}
	if os.Getenv("EOS_CACHE_COALESCE") == "true" {
		opts = append(opts, cache.WithCoalescing())
	}
	resourceCache := cache.New(opts...)

	// Every inbound message passes through the cache's broadcast handler;
	// it ignores anything outside /eos/out/.
	client.Notify(resourceCache.HandleMessage)

	svc, err := tools.NewService(resourceCache, client, log)
	if err != nil {
		log.Fatal("failed to wire tool handlers", zap.Error(err))
	}

	if err := server.ServeStdio(tools.NewServer(svc, version)); err != nil {
		log.Error("server error", zap.Error(err))
	}
}

func envInt(name string) int {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
