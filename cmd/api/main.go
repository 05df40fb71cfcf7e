package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-ledger-api/internal/application/auth"
	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	"github.com/jhoicas/inventario-ledger-api/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger-api/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/inventario-ledger-api/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-ledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger-api/pkg/config"
	"github.com/jhoicas/inventario-ledger-api/pkg/idempotency"
	"github.com/jhoicas/inventario-ledger-api/pkg/logger"
	"github.com/jhoicas/inventario-ledger-api/pkg/telemetry"
)

const version = "1.0.0"

// storage repositorios y TxRunner del driver elegido.
type storage struct {
	users      repository.UserRepository
	products   repository.ProductRepository
	movements  repository.InventoryMovementRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	txRunner   inventory.TxRunner
	ping       func(ctx context.Context) error
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}

	ctx := context.Background()
	shutdownTracing, err := telemetry.Setup(ctx, cfg.App.Name, version, cfg.Telemetry)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	registerMovementUC := inventory.NewRegisterMovementUseCase(store.txRunner, log, cfg.Inventory.ConflictRetries)
	ledgerUC := inventory.NewLedgerUseCase(store.movements, store.products)
	stockReportUC := inventory.NewStockReportUseCase(store.products, store.movements, infrapdf.NewMarotoPDFGenerator())
	productUC := usecase.NewProductUseCase(store.products, store.categories, store.suppliers, store.txRunner, registerMovementUC)
	categoryUC := usecase.NewCategoryUseCase(store.categories, store.products)
	supplierUC := usecase.NewSupplierUseCase(store.suppliers, store.products)
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	if cfg.Seed.Enabled() {
		if err := seedAdmin(ctx, authUC, cfg.Seed); err != nil {
			log.Fatal().Err(err).Msg("crear administrador inicial")
		}
	}

	var idem idempotency.Backend
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("REDIS_URL inválido")
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// Sin Redis las escrituras siguen funcionando, sin protección ante reintentos.
			log.Warn().Err(err).Msg("Redis no disponible al arrancar")
		}
		idem = idempotency.NewStore(rdb, cfg.Redis.IdempotencyTTL)
		log.Info().Dur("ttl", cfg.Redis.IdempotencyTTL).Msg("idempotencia habilitada")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerPath != "" {
		if _, err := os.Stat(cfg.HTTP.SwaggerPath); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.HTTP.SwaggerPath,
				Path:     "docs",
				Title:    "Inventario Ledger API",
			}))
		} else {
			log.Warn().Str("path", cfg.HTTP.SwaggerPath).Msg("swagger.json no encontrado, /docs deshabilitado")
		}
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		ProductUC:        productUC,
		CategoryUC:       categoryUC,
		SupplierUC:       supplierUC,
		RegisterMovement: registerMovementUC,
		Ledger:           ledgerUC,
		StockReports:     stockReportUC,
		JWTSecret:        cfg.JWT.Secret,
		Logger:           log,
		Idempotency:      idem,
		HealthCheck:      store.ping,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre de trazas")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.DB.Driver == config.DriverMemory {
		store := memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &storage{
			users:      memory.NewUserRepository(store),
			products:   memory.NewProductRepository(store),
			movements:  memory.NewMovementRepository(store),
			categories: memory.NewCategoryRepository(store),
			suppliers:  memory.NewSupplierRepository(store),
			txRunner:   memory.NewTxRunner(store),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &storage{
		users:      postgres.NewUserRepository(pool),
		products:   postgres.NewProductRepository(pool),
		movements:  postgres.NewInventoryMovementRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		suppliers:  postgres.NewSupplierRepository(pool),
		txRunner:   postgres.NewTxRunner(pool, cfg.DB),
		ping:       pool.Ping,
		close:      pool.Close,
	}, nil
}

// seedAdmin registra el administrador inicial; si el email ya existe no hace nada.
func seedAdmin(ctx context.Context, authUC *auth.AuthUseCase, seed config.SeedConfig) error {
	_, err := authUC.Register(ctx, dto.RegisterRequest{
		Email:    seed.AdminEmail,
		Password: seed.AdminPassword,
		FullName: seed.AdminName,
		Role:     entity.RoleAdmin,
	})
	if errors.Is(err, domain.ErrDuplicate) {
		return nil
	}
	return err
}
