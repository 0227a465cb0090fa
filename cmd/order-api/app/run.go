package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/configs"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/adapter/cache"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/adapter/client"
	apihttp "github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/adapter/http"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/adapter/http/middleware"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/adapter/kafka"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/adapter/queue"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/adapter/repo"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/gateway"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/logging"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logging.Init(cfg.App.Name, cfg.App.LogFile)
	l := logging.New("bootstrap")

	// database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, nil, fmt.Errorf("ping mysql: %w", err)
	}

	// redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	// rabbitmq
	conn, err := amqp.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	producer, err := queue.NewRabbitProducer(ch, cfg.Rabbit.Exchange)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("init producer: %w", err)
	}

	// infra
	orderRepo := repo.NewMySQLOrderRepo(db)
	stockRepo := repo.NewMySQLStockRepo(db)
	catalogCache := cache.NewRedisCatalogCache(rdb)
	statusCache := cache.NewRedisStatusCache(rdb, cfg.Cache.StatusTTL)
	cartClient := client.NewCartClient(cfg.Cart.BaseURL, cfg.Cart.Timeout)
	productClient := client.NewProductClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)

	gw := gateway.NewClient(gateway.Config{
		PayURL:       cfg.Gateway.PayURL,
		MerchantCode: cfg.Gateway.MerchantCode,
		HashSecret:   cfg.Gateway.HashSecret,
		ReturnURL:    cfg.Gateway.ReturnURL,
		Locale:       cfg.Gateway.Locale,
	})

	// use cases
	createUC := usecase.NewCreateOrder(cartClient, productClient, orderRepo, producer)
	processUC := usecase.NewProcessPayment(orderRepo, producer, statusCache)
	ledger := usecase.NewStockLedger(stockRepo, catalogCache)

	// queue consumers
	setupQueue(ch, statusCache)

	// kafka fulfillment listener
	kafkaCancel, err := setupKafkaListener(cfg, orderRepo, statusCache)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	// handlers + router
	oh := apihttp.NewOrderHandler(createUC, orderRepo, statusCache)
	ph := apihttp.NewPaymentHandler(gw, processUC, orderRepo, cfg.Gateway.ResultURL)
	ih := apihttp.NewInventoryHandler(ledger)
	authz := middleware.NewAuthz(cfg)
	router := apihttp.NewRouter(oh, ph, ih, authz)

	l.Info("order-api wired", "http_addr", cfg.App.HTTPAddr)

	cleanup := func() {
		kafkaCancel()
		_ = ch.Close()
		_ = conn.Close()
		_ = rdb.Close()
		_ = db.Close()
	}
	return &App{Router: router}, cleanup, nil
}

func setupQueue(ch *amqp.Channel, status usecase.StatusCache) {
	created := queue.NewOrderCreatedHandler(status)
	processed := queue.NewPaymentProcessedHandler(status)

	router := queue.NewRouter(ch, queue.WithPrefetch(50))
	router.Register(queue.QueueOrderCreated,
		queue.JSONHandler[usecase.OrderCreatedMsg]{HandleFunc: created.HandleCreated},
		queue.PolicyLeaveUnacked)
	router.Register(queue.QueuePaymentProcessed,
		queue.JSONHandler[usecase.PaymentProcessedMsg]{HandleFunc: processed.HandleProcessed},
		queue.PolicyDrop)

	if err := router.Start(); err != nil {
		panic(err)
	}
}

func setupKafkaListener(cfg configs.Config, orders usecase.OrderRepo, status usecase.StatusCache) (context.CancelFunc, error) {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("kafka group: %w", err)
	}

	h := kafka.NewFulfillmentHandler(orders, status)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.Topic}, h.Handle, logging.New("kafka"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logging.New("kafka").Error("fulfillment consumer stopped", "err", err)
		}
		_ = grp.Close()
	}()
	return cancel, nil
}
