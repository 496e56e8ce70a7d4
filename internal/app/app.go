package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/shop/internal/adapter/auth"
	"github.com/rl1809/shop/internal/adapter/storage"
	"github.com/rl1809/shop/internal/config"
	"github.com/rl1809/shop/internal/core/service"
	"github.com/rl1809/shop/internal/port"
)

// Application owns the storage connections and the services built on them.
type Application struct {
	cfg *config.Config
	db  *sql.DB
	rdb *redis.Client

	Products  *service.ProductService
	Orders    *service.OrderService
	Lifecycle *service.OrderLifecycle
	Auth      *service.AuthService
}

type repositories struct {
	products port.ProductRepository
	orders   port.OrderRepository
	users    port.UserRepository
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

func (a *Application) Config() *config.Config {
	return a.cfg
}

// Init opens the configured stores, runs migrations, builds the services and
// seeds demo data when enabled.
func (a *Application) Init(ctx context.Context) error {
	repos, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	var idem port.IdempotencyStore
	if a.cfg.Redis.Enabled {
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
			PoolSize: a.cfg.Redis.PoolSize,
		})
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		zap.S().Infof("connected to redis at %s", a.cfg.Redis.Addr)
		idem = storage.NewRedisAdapter(a.rdb)
	} else {
		idem = storage.NewMemoryIdempotencyStore()
	}

	a.Products = service.NewProductService(repos.products)
	a.Orders = service.NewOrderService(repos.products, repos.orders, idem)
	a.Lifecycle = service.NewOrderLifecycle(repos.orders)
	a.Auth = service.NewAuthService(repos.users,
		auth.NewBcryptHasher(a.cfg.Auth.BcryptCost),
		auth.NewTokenIssuer(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL))

	if a.cfg.Seed {
		if err := a.seed(ctx); err != nil {
			return fmt.Errorf("seed data: %w", err)
		}
	}
	return nil
}

func (a *Application) openStore(ctx context.Context) (repositories, error) {
	if a.cfg.Database.Driver == "memory" {
		mem := storage.NewMemoryAdapter()
		zap.S().Info("using in-memory store")
		return repositories{products: mem, orders: mem, users: mem}, nil
	}

	db, err := sql.Open("mysql", a.cfg.Database.DSN)
	if err != nil {
		return repositories{}, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(a.cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(a.cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(a.cfg.Database.ConnMaxLifetime)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return repositories{}, fmt.Errorf("ping mysql: %w", err)
	}
	a.db = db
	zap.S().Info("connected to mysql")

	mysqlAdapter := storage.NewMySQLAdapter(db)
	if a.cfg.Database.Migrate {
		if err := mysqlAdapter.Migrate(ctx); err != nil {
			return repositories{}, fmt.Errorf("migrate: %w", err)
		}
	}
	return repositories{products: mysqlAdapter, orders: mysqlAdapter, users: mysqlAdapter}, nil
}

// Release closes every connection opened by Init.
func (a *Application) Release() error {
	var errs []error
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
