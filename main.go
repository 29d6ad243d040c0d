package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/identity"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/seed"
	"storefront/internal/services"
	"storefront/pkg/logger"
	"storefront/pkg/rabbitmq"
)

// App bundles the HTTP server with the resources it owns.
type App struct {
	Fiber   *fiber.App
	DB      *gorm.DB
	MQ      *rabbitmq.Client
	Catalog *services.CatalogService
	Carts   *services.CartService
	Board   *services.ConfirmationBoard
	logger  *zap.Logger
}

// NewApp wires repositories, services and handlers for cfg.
func NewApp(cfg config.Config, log *zap.Logger) (*App, error) {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	// --- RabbitMQ (optional) ---
	var (
		mqClient  *rabbitmq.Client
		publisher services.CartEventPublisher
	)
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, log)
		if err != nil {
			return nil, err
		}
		publisher = mqClient
	} else {
		log.Info("RABBITMQ_URL not set, cart events are not published")
	}

	// --- Repositories ---
	catalogRepo := repositories.NewGORMCatalogRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)

	// --- Services ---
	catalogService := services.NewCatalogService(catalogRepo, log,
		services.WithRelatedExcludeSelf(cfg.ExcludeSelf))
	board := services.NewConfirmationBoard(cfg.ConfirmationTTL)
	cartOpts := []services.CartOption{
		services.WithMaxRetries(cfg.CartMaxRetries),
		services.WithCheckoutPath(cfg.CheckoutPath),
	}
	if publisher != nil {
		cartOpts = append(cartOpts, services.WithPublisher(publisher))
	}
	cartService := services.NewCartService(cartRepo, catalogService, board, log, cartOpts...)
	checkoutService := services.NewCheckoutService(cartService)

	// --- Handlers ---
	productHandler := handlers.NewProductHandler(catalogService, log)
	cartHandler := handlers.NewCartHandler(cartService, board, log)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	app.Use(fiberlogger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitMQ": mqClient != nil,
		})
	})

	apiV1 := app.Group("/api/v1",
		middleware.DeviceIdentity(identity.NewGenerator(0), cfg.DeviceCookieName, cfg.CookieSecure, log))
	productHandler.RegisterRoutes(apiV1)
	cartHandler.RegisterRoutes(apiV1)
	checkoutHandler.RegisterRoutes(apiV1)

	return &App{
		Fiber:   app,
		DB:      db,
		MQ:      mqClient,
		Catalog: catalogService,
		Carts:   cartService,
		Board:   board,
		logger:  log,
	}, nil
}

// Close shuts the server down and releases its resources.
func (a *App) Close() error {
	a.Board.Close()
	if err := a.Fiber.Shutdown(); err != nil {
		a.logger.Warn("Error during Fiber shutdown", zap.Error(err))
	}
	if a.MQ != nil {
		if err := a.MQ.Close(); err != nil {
			a.logger.Warn("Error closing RabbitMQ client", zap.Error(err))
		}
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Product detail and device cart service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "optional config file (yaml, json, toml)")

	root.AddCommand(newServeCmd(&configFile), newSeedCmd(&configFile))
	return root
}

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(*configFile)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			return serve(cmd.Context(), cfg, log)
		},
	}
}

func newSeedCmd(configFile *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a YAML product catalog into the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(*configFile)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			products, err := seed.LoadFile(file)
			if err != nil {
				return err
			}

			db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			catalog := services.NewCatalogService(repositories.NewGORMCatalogRepository(db), log)

			n, err := seed.Apply(cmd.Context(), catalog, products)
			log.Info("Seeded catalog", zap.String("file", file), zap.Int("products", n))
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalog file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func setup(configFile string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(viper.New(), configFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	app, err := NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("Error releasing resources", zap.Error(err))
		}
	}()

	if cfg.SeedDefaults {
		n, err := seed.Apply(ctx, app.Catalog, seed.Defaults())
		if err != nil {
			log.Warn("Error seeding default catalog", zap.Error(err))
		}
		log.Info("Seeded default catalog", zap.Int("products", n))
	}

	// --- Cart event consumer ---
	if app.MQ != nil {
		if err := app.MQ.ConsumeCartEvents(logCartEvent(log)); err != nil {
			log.Warn("Failed to start cart event consumer", zap.Error(err))
		}
	}

	log.Info("Starting server", zap.String("port", cfg.AppPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Fiber.Listen(cfg.AppPort)
	}()

	select {
	case <-quit:
		log.Info("Shutting down server...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
	}

	log.Info("Server gracefully stopped")
	return nil
}

// logCartEvent records every accepted cart change read back from the queue.
func logCartEvent(log *zap.Logger) func(models.CartEvent) error {
	return func(event models.CartEvent) error {
		log.Info("Received cart event",
			zap.String("type", event.Type),
			zap.String("device_id", event.DeviceID),
			zap.String("product_id", event.ProductID),
			zap.Int("quantity", event.Quantity))
		return nil
	}
}
