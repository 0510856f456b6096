package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"ecommerce-api/internal/auth"
	"ecommerce-api/internal/config"
	"ecommerce-api/internal/http/handlers"
	"ecommerce-api/internal/http/middleware/ratelimit"
	"ecommerce-api/internal/http/pprofserver"
	"ecommerce-api/internal/http/router"
	"ecommerce-api/internal/logx"
	"ecommerce-api/internal/mailer"
	"ecommerce-api/internal/metrics"
	"ecommerce-api/internal/repository"
	"ecommerce-api/internal/service/account"
	"ecommerce-api/internal/service/category"
	"ecommerce-api/internal/service/coupon"
	"ecommerce-api/internal/service/image"
	"ecommerce-api/internal/service/order"
	"ecommerce-api/internal/service/product"
	"ecommerce-api/internal/service/user"
)

type dbConnectFunc func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error)

type migrateFunc func(context.Context, *pgxpool.Pool) error

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect dbConnectFunc
	migrate   migrateFunc
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		migrate:   repository.Migrate,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithMigrate sets the schema migration function
func (b *ContainerBuilder) WithMigrate(fn migrateFunc) *ContainerBuilder {
	if fn != nil {
		b.migrate = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect, b.migrate); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerInfra(container); err != nil {
		return nil, fmt.Errorf("infra: %w", err)
	}
	if err := registerDomainServices(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		config.Load,
		NewLogger,
		provideMetrics,
	)
}

func registerDb(container *dig.Container, dbConnect dbConnectFunc, migrate migrateFunc) error {
	providerDB := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*pgxpool.Pool, error) {
		pool, err := dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
		if err != nil {
			return nil, err
		}
		if err := migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return pool, nil
	}
	return provideAll(container, providerDB)
}

func registerInfra(container *dig.Container) error {
	return provideAll(container,
		provideStorage,
		provideMailer,
		providePublisher,
		provideTokenManager,
	)
}

func registerDomainServices(container *dig.Container) error {
	return provideAll(container,
		repository.NewCategoryRepo,
		repository.NewProductRepo,
		repository.NewImageRepo,
		repository.NewUserRepo,
		repository.NewTokenRepo,
		repository.NewCouponRepo,
		repository.NewOrderRepo,
		func() time.Duration { return 3 * time.Second },
		func(repo *repository.CategoryRepo, timeout time.Duration) *category.Service {
			return category.NewService(repo, timeout)
		},
		func(repo *repository.ProductRepo, timeout time.Duration) *product.Service {
			return product.NewService(repo, timeout)
		},
		func(
			repo *repository.ImageRepo,
			store image.ObjectStore,
			shop *metrics.Shop,
			cfg *config.Config,
			timeout time.Duration,
			logger logx.Logger,
		) *image.Service {
			return image.NewService(repo, store, shop, cfg.Storage.UploadMaxSize, timeout, logger)
		},
		func(repo *repository.UserRepo, timeout time.Duration) *user.Service {
			return user.NewService(repo, timeout)
		},
		func(
			users *repository.UserRepo,
			tokens *repository.TokenRepo,
			issuer *auth.TokenManager,
			mail mailer.Mailer,
			cfg *config.Config,
			timeout time.Duration,
			logger logx.Logger,
		) *account.Service {
			return account.NewService(users, tokens, issuer, mail, account.Config{
				RefreshTTL: cfg.Auth.RefreshTTL,
				ResetTTL:   cfg.Auth.PasswordResetTTL,
				BaseURL:    cfg.BaseURL,
			}, timeout, logger)
		},
		func(repo *repository.CouponRepo, timeout time.Duration, logger logx.Logger) *coupon.Service {
			return coupon.NewService(repo, timeout, logger)
		},
		func(
			repo *repository.OrderRepo,
			publisher order.EventPublisher,
			shop *metrics.Shop,
			timeout time.Duration,
			logger logx.Logger,
		) *order.Service {
			return order.NewService(repo, publisher, shop, timeout, logger)
		},
	)
}

type routerIn struct {
	dig.In

	Config   *config.Config
	Logger   logx.Logger
	Pool     *pgxpool.Pool
	Tokens   *auth.TokenManager
	URL      handlers.URLFunc
	Uploads  uploadsHandler
	HTTP     *metrics.HTTP
	Limiter  *ratelimit.Middleware `name:"api_limiter"`
	Auth     *ratelimit.Middleware `name:"auth_limiter"`
	Category *category.Service
	Product  *product.Service
	Image    *image.Service
	User     *user.Service
	Account  *account.Service
	Coupon   *coupon.Service
	Order    *order.Service
}

func newRouter(in routerIn) http.Handler {
	return router.New(router.Deps{
		Logger:      in.Logger,
		Verifier:    in.Tokens,
		Base:        handlers.New(in.Logger, in.Pool),
		Categories:  handlers.NewCategoryHandler(in.Logger, in.Category, in.URL),
		Products:    handlers.NewProductHandler(in.Logger, in.Product, in.URL),
		Images:      handlers.NewImageHandler(in.Logger, in.Image, in.URL, in.Config.Storage.UploadMaxSize),
		Users:       handlers.NewUserHandler(in.Logger, in.User),
		Accounts:    handlers.NewAccountHandler(in.Logger, in.Account),
		Coupons:     handlers.NewCouponHandler(in.Logger, in.Coupon),
		Orders:      handlers.NewOrderHandler(in.Logger, in.Order),
		Limiter:     in.Limiter,
		AuthLimiter: in.Auth,
		Uploads:     in.Uploads,
		Metrics:     promhttp.Handler(),
		HTTPMetrics: in.HTTP,
	})
}

type serversOut struct {
	dig.Out

	Main  *http.Server
	Pprof *http.Server `name:"pprof_server"`
}

func newServers(cfg *config.Config, mux http.Handler, logger logx.Logger) serversOut {
	out := serversOut{
		Main: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
	if cfg.Pprof.Enabled {
		out.Pprof = pprofserver.NewServer(pprofserver.Config{
			Addr: cfg.Pprof.Addr,
			User: cfg.Pprof.User,
			Pass: cfg.Pprof.Pass,
		}, logger)
	}
	return out
}

func registerHTTP(container *dig.Container) error {
	return provideAll(container,
		newRateLimitClock,
		newRateLimitMiddlewares,
		newRouter,
		newServers,
	)
}
