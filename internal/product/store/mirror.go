package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/catalog/internal/product/model"
	"github.com/jackc/pgx/v5"
)

var productColumns = []string{
	"position", "referencia", "nombre", "marca", "descripcion", "precio", "numero_disponible", "departamento",
}

// DB is the subset of pgxpool.Pool used by the mirror.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Mirror persists catalog snapshots to Postgres from a single worker.
// Only the latest snapshot is kept while a write is in flight, so a slow
// database skips intermediate states instead of delaying the store.
type Mirror struct {
	db           DB
	pending      chan []model.Product
	writeTimeout time.Duration
	retryDelay   time.Duration
	logger       *slog.Logger
}

// NewMirror creates a Mirror writing through db.
func NewMirror(db DB, writeTimeout time.Duration, logger *slog.Logger) *Mirror {
	return &Mirror{
		db:           db,
		pending:      make(chan []model.Product, 1),
		writeTimeout: writeTimeout,
		retryDelay:   time.Second,
		logger:       logger.With("component", "mirror"),
	}
}

// Load returns the persisted catalog in its original order.
func (m *Mirror) Load(ctx context.Context) ([]model.Product, error) {
	rows, err := m.db.Query(ctx,
		`SELECT referencia, nombre, marca, descripcion, precio, numero_disponible, departamento
		 FROM products ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Product, error) {
		var p model.Product
		err := row.Scan(&p.Reference, &p.Name, &p.Brand, &p.Description, &p.Price, &p.AvailableCount, &p.Department)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

// Listen queues a snapshot for persistence. It never blocks and is meant
// to be passed to ProductStore.Subscribe.
func (m *Mirror) Listen(products []model.Product) {
	for {
		select {
		case m.pending <- products:
			return
		default:
			// drop the stale snapshot and try again
			select {
			case <-m.pending:
			default:
			}
		}
	}
}

// Run writes queued snapshots until ctx is done, then flushes the last one.
func (m *Mirror) Run(ctx context.Context) error {
	m.logger.Info("Snapshot mirror started")
	for {
		select {
		case <-ctx.Done():
			m.flush()
			m.logger.Info("Snapshot mirror stopped")
			return nil
		case snapshot := <-m.pending:
			if err := m.write(ctx, snapshot); err != nil {
				m.logger.ErrorContext(ctx, "Failed to persist catalog snapshot", "products", len(snapshot), "error", err)
				m.offer(snapshot)
				select {
				case <-ctx.Done():
				case <-time.After(m.retryDelay):
				}
			}
		}
	}
}

// flush persists a snapshot still queued at shutdown.
func (m *Mirror) flush() {
	select {
	case snapshot := <-m.pending:
		if err := m.write(context.Background(), snapshot); err != nil {
			m.logger.Error("Failed to persist final catalog snapshot", "products", len(snapshot), "error", err)
		}
	default:
	}
}

// offer requeues a failed snapshot unless a newer one is already waiting.
func (m *Mirror) offer(snapshot []model.Product) {
	select {
	case m.pending <- snapshot:
	default:
	}
}

// write replaces the products table with snapshot in one transaction.
func (m *Mirror) write(ctx context.Context, snapshot []model.Product) error {
	ctx, cancel := context.WithTimeout(ctx, m.writeTimeout)
	defer cancel()

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM products"); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}
	_, err = tx.CopyFrom(ctx, pgx.Identifier{"products"}, productColumns,
		pgx.CopyFromSlice(len(snapshot), func(i int) ([]any, error) {
			p := snapshot[i]
			return []any{i, p.Reference, p.Name, p.Brand, p.Description, p.Price, p.AvailableCount, p.Department}, nil
		}))
	if err != nil {
		return fmt.Errorf("failed to copy products: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	m.logger.Debug("Catalog snapshot persisted", "products", len(snapshot))
	return nil
}
