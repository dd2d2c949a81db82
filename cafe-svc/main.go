package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"cafe-checkout/config"
	httpapi "cafe-checkout/cafe-svc/internal/api/http"
	"cafe-checkout/cafe-svc/internal/ethapi"
	"cafe-checkout/cafe-svc/internal/metrics"
	"cafe-checkout/cafe-svc/internal/pinning"
	"cafe-checkout/cafe-svc/internal/service"
	"cafe-checkout/cafe-svc/internal/storage"
	"cafe-checkout/cafe-svc/internal/utils"
	"cafe-checkout/cafe-svc/internal/wallet"
	"cafe-checkout/cafe-svc/internal/workflow"
)

func main() {
	cfg := config.Load()
	configureLogging(cfg.LogLevel)
	log.WithField("version", utils.AppVersion(cfg.Version)).Info("starting cafe-svc")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := config.MustInitPostgres()
	defer db.Close()
	orderRepo := storage.NewPostgresRepository(db)
	if err := orderRepo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure schema: ", err)
	}

	rdb := config.MustInitRedis()
	defer rdb.Close()

	writer := config.NewKafkaWriter(cfg.OrdersTopic)
	defer writer.Close()
	reader := config.NewKafkaReader(cfg.OrdersTopic, cfg.SalesGroupID)
	defer reader.Close()

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatal("Failed to register metrics: ", err)
	}

	ethClient := ethapi.NewClient(cfg.EthAPIURL, &http.Client{Timeout: cfg.EthAPITimeout})
	balances := service.NewAggregator(ethClient, storage.NewBalanceCache(rdb, cfg.BalanceCacheTTL))
	orders := service.NewOrderService(orderRepo, storage.NewKafkaPublisher(writer), service.DefaultQRGenerator{})
	businesses := storage.NewBusinessBox(rdb)

	sales := service.NewSalesConsumer(reader, storage.NewSalesStore(rdb))
	go sales.Start(ctx)

	inbox := workflow.NewInbox(0)
	admin := workflow.NewAdmin(businesses, orders, balances, inbox)
	sessions := httpapi.NewSessions(func() *workflow.Order {
		return workflow.NewOrder(businesses, orders, ethClient)
	}, cfg.SessionTTL)
	go sessions.Run(ctx, time.Minute)

	handler := httpapi.NewHandler(balances, orders, sales, admin, sessions)
	handler.Inbox = inbox
	handler.WalletURL = cfg.WalletRPCURL
	handler.AdminToken = cfg.AdminToken
	if cfg.AdminToken == "" {
		log.Warn("ADMIN_TOKEN is not set, admin routes are disabled")
	}
	handler.Dial = func(ctx context.Context, url string) (workflow.Provider, func(), error) {
		provider, release, err := wallet.Dial(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		return provider, release, nil
	}
	if cfg.PinningKey != "" {
		handler.Images = pinning.NewClient(cfg.PinningAPIURL, cfg.PinningGateway, cfg.PinningKey, cfg.PinningSecret, &http.Client{Timeout: cfg.EthAPITimeout})
	}

	if err := httpapi.StartServer(ctx, cfg.Addr, httpapi.NewRouter(handler)); err != nil {
		log.Fatal(err)
	}
	admin.Flush()
}

func configureLogging(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("unknown log level %q, using info", level)
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}
