package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	_ "github.com/jowa-zm/jowa-ussd/docs"
	"github.com/jowa-zm/jowa-ussd/internal/application/housekeeping"
	"github.com/jowa-zm/jowa-ussd/internal/application/menu"
	"github.com/jowa-zm/jowa-ussd/internal/application/ussd"
	"github.com/jowa-zm/jowa-ussd/internal/infrastructure/events"
	"github.com/jowa-zm/jowa-ussd/internal/infrastructure/metrics"
	"github.com/jowa-zm/jowa-ussd/internal/infrastructure/payment"
	"github.com/jowa-zm/jowa-ussd/internal/infrastructure/postgres"
	"github.com/jowa-zm/jowa-ussd/internal/infrastructure/sms"
	httpRouter "github.com/jowa-zm/jowa-ussd/internal/interfaces/http"
	"github.com/jowa-zm/jowa-ussd/pkg/config"
	"github.com/jowa-zm/jowa-ussd/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("ussd_code", cfg.USSD.ServiceCode).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if applied, err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	} else if len(applied) > 0 {
		log.Info().Ints("versions", applied).Msg("esquema actualizado")
	}

	m := metrics.New()

	notifier := sms.New(cfg.AfricasTalking, log.Component("sms"))
	if notifier.Simulated() {
		log.Warn().Msg("AT_API_KEY vacío: los SMS solo se registran en el log")
	}

	// Eventos de dominio: opcionales, sin Redis el servicio sigue atendiendo.
	var (
		publisher ussd.EventPublisher
		rdb       *redis.Client
	)
	if cfg.Redis.URL != "" {
		rdb, err = events.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Error().Err(err).Msg("redis no disponible, eventos desactivados")
		} else {
			publisher = events.NewRedisPublisher(rdb, cfg.Redis.Channel)
		}
	}

	render := menu.New(menu.Options{
		ServiceCode:  cfg.USSD.ServiceCode,
		SupportPhone: cfg.USSD.SupportPhone,
		SupportEmail: cfg.USSD.SupportEmail,
	})

	dispatcher := ussd.NewDispatcher(ussd.Deps{
		Tx:         postgres.NewTxRunner(pool),
		Renderer:   render,
		Payments:   payment.NewSimulator(cfg.Payment.SuccessRate, log.Component("payment")),
		Notifier:   notifier,
		Events:     publisher,
		Metrics:    m,
		Logger:     log.Component("dispatcher"),
		PremiumFee: cfg.USSD.PremiumListingFee,
	})

	cleaner := housekeeping.NewCleaner(postgres.NewSessionRepository(pool), cfg.USSD.SessionTTL, m, log.Component("housekeeping"))
	scheduler := housekeeping.NewScheduler(cfg.USSD.CleanupSchedule, cleaner, log.Component("housekeeping"))
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("programar limpieza de sesiones")
	}

	limiter := httpRouter.NewPhoneLimiter(cfg.USSD.RateLimitPerSecond, cfg.USSD.RateLimitBurst, m.RateLimited)
	if limiter != nil {
		limiter.StartCleanup(5*time.Minute, ctx.Done())
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "JOWA USSD API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		USSD:           httpRouter.NewUSSDHandler(dispatcher, render, limiter, log.Component("gateway")),
		Health:         httpRouter.NewHealthHandler(postgres.NewHealthChecker(pool), log.Component("health")),
		Metrics:        m,
		MetricsHandler: m.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	scheduler.Stop()
	// SMS y eventos posteriores al commit que aún estén en vuelo.
	dispatcher.Wait()
	if rdb != nil {
		_ = rdb.Close()
	}

	log.Info().Msg("aplicación detenida")
}
