// Package repository offers a narrow, storage-agnostic CRUD interface over
// one entity type, implemented as a passthrough to the dbcontext unit of work.
package repository

import (
	"context"
	"reflect"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdemo/internal/dbcontext"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/orderdemo/repository")

// Repository provides CRUD access for entities of type T. Reads return fully
// materialized values; writes are staged until SaveChanges.
type Repository[T any] interface {
	// Find returns nil without error when no entity has the given id.
	Find(ctx context.Context, id any) (*T, error)
	GetAll(ctx context.Context) ([]T, error)
	Add(ctx context.Context, entity *T) error
	AddRange(ctx context.Context, entities ...*T) error
	Remove(ctx context.Context, entity *T) error
	SaveChanges(ctx context.Context) (int, error)
}

// BunRepository implements Repository on a dbcontext.Context. Errors from the
// context are returned unchanged.
type BunRepository[T any] struct {
	dbc  *dbcontext.Context
	set  *dbcontext.Set[T]
	name string
}

var _ Repository[struct{}] = (*BunRepository[struct{}])(nil)

// New returns a repository for T scoped to dbc.
func New[T any](dbc *dbcontext.Context) *BunRepository[T] {
	return &BunRepository[T]{
		dbc:  dbc,
		set:  dbcontext.SetOf[T](dbc),
		name: reflect.TypeOf((*T)(nil)).Elem().Name(),
	}
}

func (r *BunRepository[T]) Find(ctx context.Context, id any) (*T, error) {
	ctx, span := r.start(ctx, "Find")
	defer span.End()

	entity, err := r.set.Find(ctx, id)
	recordErr(span, err)
	return entity, err
}

func (r *BunRepository[T]) GetAll(ctx context.Context) ([]T, error) {
	ctx, span := r.start(ctx, "GetAll")
	defer span.End()

	items, err := r.set.ToList(ctx)
	recordErr(span, err)
	return items, err
}

func (r *BunRepository[T]) Add(ctx context.Context, entity *T) error {
	_, span := r.start(ctx, "Add")
	defer span.End()

	err := r.set.Add(entity)
	recordErr(span, err)
	return err
}

func (r *BunRepository[T]) AddRange(ctx context.Context, entities ...*T) error {
	_, span := r.start(ctx, "AddRange", attribute.Int("entity.count", len(entities)))
	defer span.End()

	err := r.set.AddRange(entities...)
	recordErr(span, err)
	return err
}

func (r *BunRepository[T]) Remove(ctx context.Context, entity *T) error {
	_, span := r.start(ctx, "Remove")
	defer span.End()

	err := r.set.Remove(entity)
	recordErr(span, err)
	return err
}

func (r *BunRepository[T]) SaveChanges(ctx context.Context) (int, error) {
	ctx, span := r.start(ctx, "SaveChanges")
	defer span.End()

	n, err := r.dbc.SaveChanges(ctx)
	recordErr(span, err)
	span.SetAttributes(attribute.Int("db.rows_affected", n))
	return n, err
}

func (r *BunRepository[T]) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("entity", r.name))
	return repoTracer.Start(ctx, "Repository."+op, trace.WithAttributes(attrs...))
}

func recordErr(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
