package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

const (
	defaultConnTimeout     = 5 * time.Second
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute
)

// querier покрывает *sql.DB и *sql.Tx: репозитории работают поверх того,
// что им выдаст Store.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store оборачивает SQL-подключение к PostgreSQL и реализует domain.Store.
type Store struct {
	db *sql.DB
	// decorateProducts, если задан, оборачивает репозиторий товаров
	// (например, read-through кэшем).
	decorateProducts func(domain.ProductRepository) domain.ProductRepository
}

// Open открывает подключение к PostgreSQL и проверяет доступность базы.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{db: db}, nil
}

// DecorateProducts задаёт обёртку над репозиторием товаров.
func (s *Store) DecorateProducts(d func(domain.ProductRepository) domain.ProductRepository) {
	s.decorateProducts = d
}

// WithinTx выполняет fn в одной транзакции БД; ошибка fn откатывает её.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r domain.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	repos := s.repos(tx)
	if err := fn(ctx, repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	// Отложенные эффекты декораторов (прогрев кэша) — только после фиксации.
	if c, ok := repos.Products.(interface{ OnCommit(context.Context) }); ok {
		c.OnCommit(ctx)
	}
	return nil
}

func (s *Store) repos(q querier) domain.Repos {
	var products domain.ProductRepository = &productRepository{q: q}
	if s.decorateProducts != nil {
		products = s.decorateProducts(products)
	}
	return domain.Repos{
		Products: products,
		Orders:   &orderRepository{q: q},
		Requests: &requestRepository{q: q},
	}
}

// Ping проверяет доступность подключения.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

// Close закрывает подключение к БД.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ domain.Store = (*Store)(nil)
