// Package dbcontext implements a per-request unit of work on top of bun.
//
// A Context owns one pooled connection from Open until Close. Entity sets
// obtained through SetOf read through that connection and stage inserts and
// deletes; SaveChanges commits everything staged in a single transaction.
package dbcontext

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/Additional-Code/orderdemo/dbcontext")

var (
	// ErrClosed is returned when a Context is used after Close.
	ErrClosed = errors.New("dbcontext: context is closed")
	// ErrNilEntity is returned when staging a nil entity.
	ErrNilEntity = errors.New("dbcontext: nil entity")
	// ErrNotTracked is returned when removing an entity that was never saved.
	ErrNotTracked = errors.New("dbcontext: entity is not tracked")
)

type entryState int

const (
	stateAdded entryState = iota
	stateDeleted
)

type entry struct {
	model any
	table *schema.Table
	state entryState
}

// Context is a unit of work bound to a single database connection.
// It is not safe for concurrent use.
type Context struct {
	db      *bun.DB
	conn    bun.Conn
	logger  *zap.Logger
	pending []entry
	closed  bool
}

// Open acquires a dedicated connection from db. Callers must Close the
// returned Context once the request is done.
func Open(ctx context.Context, db *bun.DB, logger *zap.Logger) (*Context, error) {
	if db == nil {
		return nil, errors.New("dbcontext: nil database")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Context{db: db, conn: conn, logger: logger}, nil
}

// Close releases the connection and discards anything still pending.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if n := len(c.pending); n > 0 {
		c.logger.Debug("discarding pending changes", zap.Int("pending", n))
	}
	c.pending = nil
	return c.conn.Close()
}

// Pending reports how many changes are staged.
func (c *Context) Pending() int {
	return len(c.pending)
}

// SaveChanges commits every staged change inside one transaction and returns
// the number of affected rows. On failure nothing is committed, the storage
// error is returned as-is and the staged changes are kept.
func (c *Context) SaveChanges(ctx context.Context) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	if len(c.pending) == 0 {
		return 0, nil
	}

	ctx, span := tracer.Start(ctx, "DbContext.SaveChanges", trace.WithAttributes(attribute.Int("db.pending", len(c.pending))))
	defer span.End()

	affected := 0
	err := c.conn.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, e := range c.pending {
			res, err := apply(ctx, tx, e)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			affected += int(n)
		}
		return nil
	})
	if err != nil {
		c.resetAssignedKeys()
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return 0, err
	}

	c.logger.Debug("changes saved", zap.Int("changes", len(c.pending)), zap.Int("affected", affected))
	c.pending = nil
	return affected, nil
}

func apply(ctx context.Context, tx bun.Tx, e entry) (sql.Result, error) {
	switch e.state {
	case stateDeleted:
		return tx.NewDelete().Model(e.model).WherePK().Exec(ctx)
	default:
		return tx.NewInsert().Model(e.model).Exec(ctx)
	}
}

// resetAssignedKeys zeroes primary keys that a rolled back insert already
// scanned back, so the staged entities can be saved again.
func (c *Context) resetAssignedKeys() {
	for _, e := range c.pending {
		if e.state != stateAdded {
			continue
		}
		strct := reflect.ValueOf(e.model).Elem()
		for _, pk := range e.table.PKs {
			v := pk.Value(strct)
			v.Set(reflect.Zero(v.Type()))
		}
	}
}

func (c *Context) stage(model any, table *schema.Table, state entryState) {
	c.pending = append(c.pending, entry{model: model, table: table, state: state})
}

// stagedAdd reports whether model is already pending insertion.
func (c *Context) stagedAdd(model any) bool {
	for _, e := range c.pending {
		if e.state == stateAdded && e.model == model {
			return true
		}
	}
	return false
}

// unstageAdded drops a pending insert of model and reports whether one existed.
func (c *Context) unstageAdded(model any) bool {
	for i, e := range c.pending {
		if e.state == stateAdded && e.model == model {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Context) table(typ reflect.Type) *schema.Table {
	return c.db.Table(typ)
}
