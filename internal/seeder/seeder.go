package seeder

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdemo/internal/database"
	"github.com/Additional-Code/orderdemo/internal/dbcontext"
	"github.com/Additional-Code/orderdemo/internal/entity"
	"github.com/Additional-Code/orderdemo/internal/repository"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return NewForDB(conns.Writer, logger)
}

// NewForDB constructs a Seeder on an explicit database handle.
func NewForDB(db *bun.DB, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{db: db, logger: logger}
}

// DefaultOrder is the order present after a fresh startup.
func DefaultOrder() *entity.Order {
	return entity.NewOrder("123", decimal.NewFromInt(123), "123 Test Street", "456 Test Street")
}

// Orders adds the default order when the orders table is empty and reports
// how many rows were written.
func (s *Seeder) Orders(ctx context.Context) (int, error) {
	return s.withRepository(ctx, func(ctx context.Context, repo repository.Repository[entity.Order]) (int, error) {
		existing, err := repo.GetAll(ctx)
		if err != nil {
			return 0, err
		}
		if len(existing) > 0 {
			s.logger.Info("orders already seeded", zap.Int("count", len(existing)))
			return 0, nil
		}
		return s.insertDefault(ctx, repo)
	})
}

// insertDefault saves the default order. Losing the insert to another
// instance seeding the same database counts as already seeded.
func (s *Seeder) insertDefault(ctx context.Context, repo repository.Repository[entity.Order]) (int, error) {
	order := DefaultOrder()
	if err := repo.Add(ctx, order); err != nil {
		return 0, err
	}
	n, saveErr := repo.SaveChanges(ctx)
	if saveErr == nil {
		s.logger.Info("seeded orders", zap.Int("count", n))
		return n, nil
	}

	exists, err := s.orderNumberExists(ctx, order.Number)
	if err != nil || !exists {
		return 0, saveErr
	}
	s.logger.Info("default order seeded concurrently", zap.String("number", order.Number))
	return 0, nil
}

func (s *Seeder) orderNumberExists(ctx context.Context, number string) (bool, error) {
	dbc, err := dbcontext.Open(ctx, s.db, s.logger)
	if err != nil {
		return false, err
	}
	defer dbc.Close()

	found, err := dbcontext.SetOf[entity.Order](dbc).ToList(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.number = ?", number).Limit(1)
	})
	if err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

// Fake inserts count randomly generated orders in one batch.
func (s *Seeder) Fake(ctx context.Context, count int) (int, error) {
	if count <= 0 {
		return 0, nil
	}
	return s.withRepository(ctx, func(ctx context.Context, repo repository.Repository[entity.Order]) (int, error) {
		orders := make([]*entity.Order, 0, count)
		for i := 0; i < count; i++ {
			orders = append(orders, FakeOrder())
		}
		if err := repo.AddRange(ctx, orders...); err != nil {
			return 0, err
		}
		n, err := repo.SaveChanges(ctx)
		if err != nil {
			return 0, err
		}
		s.logger.Info("seeded fake orders", zap.Int("count", n))
		return n, nil
	})
}

// FakeOrder builds an unsaved order with random data.
func FakeOrder() *entity.Order {
	number := "ORD-" + strings.ToUpper(gofakeit.LetterN(3)) + gofakeit.DigitN(8)
	total := decimal.NewFromFloat(gofakeit.Price(5, 2500)).Round(2)
	return entity.NewOrder(number, total, fakeAddress(), fakeAddress())
}

func fakeAddress() string {
	return fmt.Sprintf("%s, %s %s", gofakeit.Street(), gofakeit.City(), gofakeit.Zip())
}

func (s *Seeder) withRepository(ctx context.Context, fn func(context.Context, repository.Repository[entity.Order]) (int, error)) (int, error) {
	dbc, err := dbcontext.Open(ctx, s.db, s.logger)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := dbc.Close(); err != nil {
			s.logger.Warn("close storage context", zap.Error(err))
		}
	}()

	return fn(ctx, repository.New[entity.Order](dbc))
}
