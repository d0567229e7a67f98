package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/khatapp/udhaar/internal/config"
	gateway "github.com/khatapp/udhaar/internal/gateways"
	"github.com/khatapp/udhaar/internal/handlers"
	"github.com/khatapp/udhaar/internal/repository"
	"github.com/khatapp/udhaar/internal/services"
	"github.com/khatapp/udhaar/internal/session"
	xhttp "github.com/khatapp/udhaar/pkg/http"
	"github.com/khatapp/udhaar/pkg/logger"
	"github.com/khatapp/udhaar/pkg/pg"
	"github.com/khatapp/udhaar/pkg/prom"
	"github.com/khatapp/udhaar/pkg/redis"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.NoStoreMiddleware)
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	db, err := openDatabase()
	if err != nil {
		logger.Error("failed opening database", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	if err := prom.Create(config.Get().AppName, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
		logger.Error("failed registering metrics", "error", err)
		return
	}

	ownerRepo := repository.NewOwnerRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	sessions := session.NewStore(redisAdap, config.Get().SessionTTL)

	smsClient, err := buildSMSClient()
	if err != nil {
		logger.Error("failed building sms client", "error", err)
		return
	}

	// services
	accountService := services.NewAccountService(ownerRepo, customerRepo, sessions)
	linkageService := services.NewLinkageService(customerRepo, linkRepo, transactionRepo)
	ledgerService := services.NewLedgerService(transactionRepo, linkRepo)
	reminderService := services.NewReminderService(customerRepo, linkRepo, transactionRepo, ownerRepo, smsClient)
	healthService := services.NewHealthService()

	// v1 handlers
	auth := handlers.NewAuth(sessions)
	authHandler := handlers.NewAuthHandler(accountService, auth)
	customerHandler := handlers.NewCustomerHandler(linkageService, reminderService, auth)
	transactionHandler := handlers.NewTransactionHandler(ledgerService, auth)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterAuthRoutes(g, authHandler)
	handlers.RegisterCustomerRoutes(g, customerHandler)
	handlers.RegisterTransactionRoutes(g, transactionHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)
	s.Router.GET("/metrics", prom.Handler())

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
}

func openDatabase() (*pg.DB, error) {
	debug := config.Get().AppEnv == "dev"
	if config.Get().DBDriver == "postgres" {
		conf := pg.Config{
			User:     config.Get().PostgresUser,
			Host:     config.Get().PostgresHost,
			Port:     config.Get().PostgresPort,
			Password: config.Get().PostgresPassword,
			Database: config.Get().PostgresDatabase,
		}
		return pg.CreateReadWrite(conf, conf, debug)
	}
	return pg.CreateSqlite(config.Get().SqlitePath, debug)
}

func buildSMSClient() (*gateway.Client, error) {
	var providers []*gateway.Provider
	if url := config.Get().SMSPrimaryUrl; url != "" {
		providers = append(providers, gateway.NewProvider("primary", url))
	}
	if url := config.Get().SMSSecondaryUrl; url != "" {
		providers = append(providers, gateway.NewProvider("secondary", url))
	}
	return gateway.NewClient(providers...)
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
