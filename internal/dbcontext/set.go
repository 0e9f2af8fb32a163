package dbcontext

import (
	"context"
	"database/sql"
	"errors"
	"reflect"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// QueryMod customises the select issued by Set.ToList.
type QueryMod func(*bun.SelectQuery) *bun.SelectQuery

// Set is the collection of one bun model type T inside a Context.
type Set[T any] struct {
	ctx   *Context
	table *schema.Table
}

// SetOf returns the entity set for T. T must be a bun model struct with a
// single-column primary key.
func SetOf[T any](c *Context) *Set[T] {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	return &Set[T]{ctx: c, table: c.table(typ)}
}

// Find loads the entity with the given primary key. A missing row yields
// (nil, nil).
func (s *Set[T]) Find(ctx context.Context, id any) (*T, error) {
	if s.ctx.closed {
		return nil, ErrClosed
	}
	ctx, span := tracer.Start(ctx, "DbSet.Find", trace.WithAttributes(attribute.String("db.table", s.table.Name)))
	defer span.End()

	model := new(T)
	err := s.ctx.conn.NewSelect().
		Model(model).
		Where("?TableAlias.? = ?", s.pk(), id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return model, nil
}

// ToList runs the query and returns every matching row ordered by primary
// key. The slice is fully materialized and never nil.
func (s *Set[T]) ToList(ctx context.Context, mods ...QueryMod) ([]T, error) {
	if s.ctx.closed {
		return nil, ErrClosed
	}
	ctx, span := tracer.Start(ctx, "DbSet.ToList", trace.WithAttributes(attribute.String("db.table", s.table.Name)))
	defer span.End()

	items := make([]T, 0)
	q := s.ctx.conn.NewSelect().Model(&items)
	for _, mod := range mods {
		q = mod(q)
	}
	q = q.OrderExpr("?TableAlias.? ASC", s.pk())

	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("db.rows", len(items)))
	return items, nil
}

// Add stages entity for insertion on the next SaveChanges. Adding an entity
// that is already pending is a no-op.
func (s *Set[T]) Add(entity *T) error {
	if s.ctx.closed {
		return ErrClosed
	}
	if entity == nil {
		return ErrNilEntity
	}
	s.stageAdd(entity)
	return nil
}

// AddRange stages every entity for insertion, skipping ones already pending.
// Nothing is staged when one of them is nil.
func (s *Set[T]) AddRange(entities ...*T) error {
	if s.ctx.closed {
		return ErrClosed
	}
	for _, entity := range entities {
		if entity == nil {
			return ErrNilEntity
		}
	}
	for _, entity := range entities {
		s.stageAdd(entity)
	}
	return nil
}

func (s *Set[T]) stageAdd(entity *T) {
	if s.ctx.stagedAdd(entity) {
		return
	}
	s.ctx.stage(entity, s.table, stateAdded)
}

// Remove stages entity for deletion. Removing an entity that is still
// pending insertion cancels the insert instead.
func (s *Set[T]) Remove(entity *T) error {
	if s.ctx.closed {
		return ErrClosed
	}
	if entity == nil {
		return ErrNilEntity
	}
	if s.ctx.unstageAdded(entity) {
		return nil
	}
	if s.pkValue(entity).IsZero() {
		return ErrNotTracked
	}
	s.ctx.stage(entity, s.table, stateDeleted)
	return nil
}

func (s *Set[T]) pk() bun.Ident {
	return bun.Ident(s.table.PKs[0].Name)
}

func (s *Set[T]) pkValue(entity *T) reflect.Value {
	return s.table.PKs[0].Value(reflect.ValueOf(entity).Elem())
}
