package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/clickcart/storefront/payment-service/config"
	"github.com/clickcart/storefront/payment-service/internal/controller"
	circuitbreaker "github.com/clickcart/storefront/payment-service/internal/infrastructure/circuit-breaker"
	"github.com/clickcart/storefront/payment-service/internal/infrastructure/database/postgres"
	"github.com/clickcart/storefront/payment-service/internal/infrastructure/message-queue/kafka"
	paymentgateway "github.com/clickcart/storefront/payment-service/internal/infrastructure/payment-gateway"
	"github.com/clickcart/storefront/payment-service/internal/infrastructure/tracing"
	localmiddleware "github.com/clickcart/storefront/payment-service/internal/middleware"
	"github.com/clickcart/storefront/payment-service/internal/repository"
	"github.com/clickcart/storefront/payment-service/internal/service"
	"github.com/clickcart/storefront/payment-service/pkg/response"
	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = logger

	config := config.CreateNewConfig()

	payfastClient := paymentgateway.CreatePayFastClient(config)

	kafkaProducer := kafka.CreateKafkaProducer(config)

	db, err := postgres.GetDBInstance(config.PostgreSQLConfig)
	if err != nil {
		panic(err)
	}

	traceProvider, err := tracing.InitTracing(config.TracingConfig.CollectorHost)
	if err != nil {
		fmt.Println(err)
	}

	defer func() {
		if err := traceProvider.Shutdown(context.Background()); err != nil {
			fmt.Println(err)
		}
	}()

	tracer := traceProvider.Tracer("payment-service")

	e := echo.New()
	g := e.Group("/api/v1")

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// span creation and naming
			ctx, span := tracer.Start(c.Request().Context(), fmt.Sprintf("[%s] %s", c.Request().Method, c.Path()))
			defer span.End()

			// add the context to the request
			req := c.Request()
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	})

	// Used empty string so that metrics are not prefixed with the service name making it easier to aggregate across services
	e.Use(echoprometheus.NewMiddleware(""))
	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(fmt.Sprintf(":%s", config.MetricsPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start metrics server")
		}
	}()

	e.Use(localmiddleware.Logger)

	g.GET("/ping", func(c echo.Context) error {
		return response.WriteSuccessResponse(c, "Hello, World!", nil)
	})

	cb := circuitbreaker.CreateCircuitBreaker("payment-service")

	transactionRepo := repository.CreateTransactionRepository(db)
	paymentSvc := service.CreatePaymentService(transactionRepo, payfastClient, kafkaProducer, config, cb)
	controller.CreatePaymentController(g, paymentSvc, localmiddleware.ValidateJWT(config.JWTSecret))

	s, err := gocron.NewScheduler()
	if err != nil {
		panic(err)
	}

	// add a job to the scheduler
	_, err = s.NewJob(
		gocron.DurationJob(
			config.SweepInterval,
		),
		gocron.NewTask(
			paymentSvc.CancelAbandonedPayments,
		),
	)
	if err != nil {
		panic(err)
	}

	s.Start()

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%s", config.ServicePort)))
}
