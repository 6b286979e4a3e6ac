package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
	"github.com/kopihaus/barista-agent/agent/dispatch"
	"github.com/kopihaus/barista-agent/agent/engine"
	"github.com/kopihaus/barista-agent/agent/intent"
	memoryx "github.com/kopihaus/barista-agent/agent/memory"
	"github.com/kopihaus/barista-agent/agent/slots"
	"github.com/kopihaus/barista-agent/agent/telemetry"
	"github.com/kopihaus/barista-agent/agent/tool"
	configx "github.com/kopihaus/barista-agent/pkg/config"
	_ "github.com/kopihaus/barista-agent/pkg/logger/autoload"
	openrouterx "github.com/kopihaus/barista-agent/pkg/openrouter"
	"github.com/kopihaus/barista-agent/server"
)

type AppConfig struct {
	StoreBackend    string        `envconfig:"STORE_BACKEND" split_words:"true" default:"memory"`
	ProductDataPath string        `envconfig:"PRODUCT_DATA_PATH" split_words:"true" default:"data/products.json"`
	OutletDBPath    string        `envconfig:"OUTLET_DB_PATH" split_words:"true" default:"data/outlets.db"`
	ToolTimeout     time.Duration `envconfig:"TOOL_TIMEOUT" split_words:"true" default:"10s"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("APP")

	store := buildStore(appCfg.StoreBackend)

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	var summarizer tool.Summarizer
	if client := openrouterx.NewClient(*openRouterCfg); client != nil {
		summarizer = client
	} else {
		log.Info().Msg("openrouter key absent, product summaries use deterministic text")
	}

	outletsDB, err := tool.OpenOutletsDB(appCfg.OutletDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open outlet database")
	}
	defer func() { _ = outletsDB.Close() }()

	calculator := tool.NewCalculatorTool()
	products := tool.NewProductsTool(appCfg.ProductDataPath, summarizer)
	outlets := tool.NewOutletsTool(outletsDB, appCfg.OutletDBPath)

	dispatcher := dispatch.New(map[contractx.Action]tool.Tool{
		contractx.ActionCallCalculator: calculator,
		contractx.ActionCallProducts:   products,
		contractx.ActionCallOutlets:    outlets,
	}, appCfg.ToolTimeout)

	registry := prometheus.NewRegistry()
	recorder := telemetry.NewRecorder(registry)

	classifierCfg := configx.MustNew[intent.Config]("CLASSIFIER")
	engineCfg := configx.MustNew[engine.Config]("ENGINE")

	eng, err := engine.New(
		store,
		intent.NewClassifier(*classifierCfg),
		slots.NewExtractor(),
		dispatcher,
		recorder,
		*engineCfg,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("build decision engine")
	}

	serverCfg := configx.MustNew[server.Config]("SERVER")
	srv, err := server.New(*serverCfg, eng, recorder, registry, map[string]tool.Tool{
		"calculator": calculator,
		"products":   products,
		"outlets":    outlets,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build http server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return srv.Run(ctx) })

	if err := group.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func buildStore(backend string) memoryx.Store {
	switch backend {
	case "upstash":
		cfg := configx.MustNew[memoryx.UpstashRedisConfig]("UPSTASH_REDIS")
		store, err := memoryx.NewUpstashRedisStore(*cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("build upstash store")
		}
		return store
	case "", "memory":
		return memoryx.NewInMemoryStore()
	default:
		log.Fatal().Str("backend", backend).Msg("unknown store backend")
		return nil
	}
}
