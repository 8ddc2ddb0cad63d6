package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	tx "github.com/Thiht/transactor/pgx"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cfg "github.com/brokerx/crypto-brokerage-app/backend/config"
)

const defaultConnAttempts = 3

// Postgres wraps the pgx pool together with the transactor pair used by
// repositories and a dollar-placeholder squirrel builder.
type Postgres struct {
	Pool       *pgxpool.Pool
	Builder    squirrel.StatementBuilderType
	DBGetter   tx.DBGetter
	Transactor *tx.Transactor
}

type options struct {
	maxPoolSize       int32
	connTimeout       time.Duration
	healthCheckPeriod time.Duration
	isolation         pgx.TxIsoLevel
}

type Option func(*options)

func MaxPoolSize(size int32) Option {
	return func(o *options) { o.maxPoolSize = size }
}

func ConnTimeout(seconds int) Option {
	return func(o *options) { o.connTimeout = time.Duration(seconds) * time.Second }
}

func HealthCheckPeriod(minutes int) Option {
	return func(o *options) { o.healthCheckPeriod = time.Duration(minutes) * time.Minute }
}

func Isolation(level pgx.TxIsoLevel) Option {
	return func(o *options) { o.isolation = level }
}

// New connects to Postgres and configures the pool from the given options.
// Every connection gets the shopspring decimal codec registered so numeric
// columns scan into decimal.Decimal without passing through float64.
func New(config *cfg.Config, opts ...Option) (*Postgres, error) {
	o := &options{
		maxPoolSize:       4,
		connTimeout:       5 * time.Second,
		healthCheckPeriod: time.Minute,
		isolation:         pgx.ReadCommitted,
	}
	for _, opt := range opts {
		opt(o)
	}

	poolConfig, err := pgxpool.ParseConfig(config.DB.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	poolConfig.MaxConns = o.maxPoolSize
	poolConfig.ConnConfig.ConnectTimeout = o.connTimeout
	poolConfig.HealthCheckPeriod = o.healthCheckPeriod
	poolConfig.ConnConfig.RuntimeParams["default_transaction_isolation"] = string(o.isolation)

	poolConfig.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.connTimeout*defaultConnAttempts)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	transactor, dbGetter := tx.NewTransactorFromPool(pool)

	return &Postgres{
		Pool:       pool,
		Builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		DBGetter:   dbGetter,
		Transactor: transactor,
	}, nil
}

func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}
