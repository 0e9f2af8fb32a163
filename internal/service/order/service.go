package order

import (
	"context"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdemo/internal/database"
	"github.com/Additional-Code/orderdemo/internal/dbcontext"
	"github.com/Additional-Code/orderdemo/internal/entity"
	"github.com/Additional-Code/orderdemo/internal/repository"
	"github.com/Additional-Code/orderdemo/pkg/errorbank"
)

const (
	pathDBContext  = "dbcontext"
	pathRepository = "repository"
	pathFind       = "find"
)

var (
	serviceTracer = otel.Tracer("github.com/Additional-Code/orderdemo/service/order")
	serviceMeter  = otel.Meter("github.com/Additional-Code/orderdemo/service/order")
)

// Service runs order reads, each inside its own storage context.
type Service struct {
	db     *bun.DB
	logger *zap.Logger
	reads  metric.Int64Counter
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Connections *database.Connections
	Logger      *zap.Logger
}

// NewService wires a new Service instance reading from the reader pool.
func NewService(p Params) (*Service, error) {
	return New(p.Connections.Reader, p.Logger)
}

// New builds a Service on an explicit database handle.
func New(db *bun.DB, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	reads, err := serviceMeter.Int64Counter("orders.reads",
		metric.WithDescription("Order read operations by data-access path"),
	)
	if err != nil {
		return nil, err
	}
	return &Service{db: db, logger: logger, reads: reads}, nil
}

// ListFromContext loads every order through the storage context's entity set.
func (s *Service) ListFromContext(ctx context.Context) ([]entity.Order, error) {
	var orders []entity.Order
	err := s.withContext(ctx, pathDBContext, func(ctx context.Context, dbc *dbcontext.Context) error {
		var err error
		orders, err = dbcontext.SetOf[entity.Order](dbc).ToList(ctx)
		return err
	})
	if err != nil {
		return nil, errorbank.Internal("failed to load orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// ListFromRepository loads every order through the generic repository.
func (s *Service) ListFromRepository(ctx context.Context) ([]entity.Order, error) {
	var orders []entity.Order
	err := s.withContext(ctx, pathRepository, func(ctx context.Context, dbc *dbcontext.Context) error {
		var err error
		orders, err = repository.New[entity.Order](dbc).GetAll(ctx)
		return err
	})
	if err != nil {
		return nil, errorbank.Internal("failed to load orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Get retrieves a single order by id.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	var order *entity.Order
	err := s.withContext(ctx, pathFind, func(ctx context.Context, dbc *dbcontext.Context) error {
		var err error
		order, err = repository.New[entity.Order](dbc).Find(ctx, id)
		return err
	})
	if err != nil {
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	if order == nil {
		return nil, errorbank.NotFound("order not found", errorbank.WithDetail("id", id))
	}
	return order, nil
}

// withContext opens a storage context for the duration of fn and always
// closes it afterwards.
func (s *Service) withContext(ctx context.Context, path string, fn func(context.Context, *dbcontext.Context) error) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService."+path, trace.WithAttributes(attribute.String("orders.path", path)))
	defer span.End()

	s.reads.Add(ctx, 1, metric.WithAttributes(attribute.String("path", path)))

	dbc, err := dbcontext.Open(ctx, s.db, s.logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open storage context")
		return err
	}
	defer func() {
		if err := dbc.Close(); err != nil {
			s.logger.Warn("close storage context", zap.String("path", path), zap.Error(err))
		}
	}()

	if err := fn(ctx, dbc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		s.logger.Error("order read failed", zap.String("path", path), zap.Error(err))
		return err
	}
	return nil
}
