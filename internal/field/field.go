// internal/field/field.go
package field

import (
	"context"
	"fmt"

	"github.com/vk/geogridgo/internal/ctxlog"
	"github.com/vk/geogridgo/internal/oppath"
	"github.com/vk/geogridgo/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Owner is the operator-side surface a field needs from the node that owns
// it. The back-reference is non-owning; fields never manage operator
// lifecycle.
type Owner interface {
	Path() oppath.Path
	// FieldChanged is invoked synchronously after a field's value changed
	// or a reference edge signaled an upstream change.
	FieldChanged(ctx context.Context, f *Field) error
}

// Field is a typed, validated, observable value cell.
type Field struct {
	name     string
	schema   schema.Schema
	accessor bool
	owner    Owner

	def   Value
	value Value

	// conns holds active incoming connections keyed by connection id.
	conns map[string]*Connection
	// subs holds outgoing subscriptions in registration order.
	subs []*subscriber

	// notifying is this field's entry in the propagation in-progress set;
	// a re-entrant write while set means a connection cycle.
	notifying bool

	// afterSet and onUpstream are composite hooks, nil for plain fields.
	afterSet   func(ctx context.Context, v Value) error
	onUpstream func(ctx context.Context, connID string) error
}

// Connection is a live directed edge ending at this field.
type Connection struct {
	ID       string
	Kind     ConnKind
	Upstream *Field
}

type subscriber struct {
	id         string
	kind       ConnKind
	downstream *Field
}

// New creates a field holding its schema default.
func New(name string, s schema.Schema, owner Owner) *Field {
	return &Field{
		name:   name,
		schema: s,
		owner:  owner,
		def:    ConcreteVal(s.Default()),
		value:  ConcreteVal(s.Default()),
		conns:  make(map[string]*Connection),
	}
}

// NewAccessor creates a field that additionally accepts deferred thunks as
// values.
func NewAccessor(name string, s schema.Schema, owner Owner) *Field {
	f := New(name, s, owner)
	f.accessor = true
	return f
}

// Name returns the field's name within its operator.
func (f *Field) Name() string { return f.name }

// Schema returns the field's value contract.
func (f *Field) Schema() schema.Schema { return f.schema }

// AccessorEnabled reports whether the field accepts deferred thunks.
func (f *Field) AccessorEnabled() bool { return f.accessor }

// Owner returns the owning operator surface, or nil for detached fields.
func (f *Field) Owner() Owner { return f.owner }

// Value returns the current value.
func (f *Field) Value() Value { return f.value }

// Default returns the field's default value.
func (f *Field) Default() Value { return f.def }

// DebugPath renders an identity string for diagnostics, e.g. `/a/b.size`.
func (f *Field) DebugPath() string {
	if f.owner == nil {
		return f.name
	}
	return f.owner.Path().String() + "." + f.name
}

// SetValue validates and replaces the field's value.
//
// On success the new value is in place and all subscribers have been
// notified, in registration order, by the time SetValue returns. On
// validation failure the write is logged and rejected, the prior value is
// retained, and no subscriber fires; the error return is informational and
// SetValue never panics on bad input.
func (f *Field) SetValue(ctx context.Context, v Value) error {
	logger := ctxlog.FromContext(ctx)

	if v.IsDeferred() {
		if !f.accessor {
			err := fmt.Errorf("field %s does not accept deferred values", f.DebugPath())
			logger.Warn("Rejected field value.", "field", f.DebugPath(), "error", err)
			return err
		}
		f.value = v
		return f.afterWrite(ctx, v)
	}

	raw := v.Concrete()
	if raw == cty.NilVal {
		err := fmt.Errorf("field %s rejected nil value", f.DebugPath())
		logger.Warn("Rejected field value.", "field", f.DebugPath(), "error", err)
		return err
	}

	parsed, err := f.schema.Parse(raw)
	if err != nil {
		logger.Warn("Rejected field value.", "field", f.DebugPath(), "error", err)
		return fmt.Errorf("field %s: %w", f.DebugPath(), err)
	}

	f.value = ConcreteVal(parsed)
	return f.afterWrite(ctx, f.value)
}

// SetConcrete is SetValue for a plain cty.Value.
func (f *Field) SetConcrete(ctx context.Context, v cty.Value) error {
	return f.SetValue(ctx, ConcreteVal(v))
}

func (f *Field) afterWrite(ctx context.Context, v Value) error {
	if f.afterSet != nil {
		if err := f.afterSet(ctx, v); err != nil {
			return err
		}
	}
	return f.emit(ctx)
}

// emit pushes the current value to all subscribers and notifies the owner.
// It is the single propagation point, guarded against cycles.
func (f *Field) emit(ctx context.Context) error {
	if f.notifying {
		err := fmt.Errorf("connection cycle detected at field %s", f.DebugPath())
		ctxlog.FromContext(ctx).Error("Propagation aborted.", "error", err)
		return err
	}
	f.notifying = true
	defer func() { f.notifying = false }()

	for _, sub := range f.subs {
		var err error
		switch sub.kind {
		case ValueConn:
			if sub.downstream.onUpstream != nil {
				err = sub.downstream.onUpstream(ctx, sub.id)
			} else {
				err = sub.downstream.SetValue(ctx, f.value)
			}
		case ReferenceConn:
			err = sub.downstream.pulse(ctx)
		}
		if err != nil {
			return err
		}
	}

	if f.owner != nil {
		return f.owner.FieldChanged(ctx, f)
	}
	return nil
}

// pulse re-emits the field's current value unchanged: a reference edge
// signals "something changed upstream" without coupling values.
func (f *Field) pulse(ctx context.Context) error {
	return f.emit(ctx)
}

// AddConnection materializes a directed edge from upstream into this field.
//
// The call is idempotent per connection id: adding an id that is already
// active is a no-op. A value connection immediately synchronizes this
// field with the upstream's current value; a reference connection only
// subscribes.
func (f *Field) AddConnection(ctx context.Context, id string, upstream *Field, kind ConnKind) error {
	if _, exists := f.conns[id]; exists {
		return nil
	}

	f.conns[id] = &Connection{ID: id, Kind: kind, Upstream: upstream}
	upstream.subs = append(upstream.subs, &subscriber{id: id, kind: kind, downstream: f})

	ctxlog.FromContext(ctx).Debug("Connection added.",
		"id", id, "kind", string(kind), "from", upstream.DebugPath(), "to", f.DebugPath())

	if kind == ValueConn {
		if f.onUpstream != nil {
			return f.onUpstream(ctx, id)
		}
		return f.SetValue(ctx, upstream.value)
	}
	return nil
}

// RemoveConnection tears down the edge with the given id. Removing an
// unknown id is a no-op. Removing a value connection resets this field to
// its default rather than leaving the last pushed value in place.
func (f *Field) RemoveConnection(ctx context.Context, id string, kind ConnKind) error {
	conn, ok := f.conns[id]
	if !ok {
		return nil
	}
	if conn.Kind != kind {
		ctxlog.FromContext(ctx).Warn("Connection kind mismatch on removal.",
			"id", id, "have", string(conn.Kind), "want", string(kind))
	}

	delete(f.conns, id)
	conn.Upstream.detach(id)

	ctxlog.FromContext(ctx).Debug("Connection removed.",
		"id", id, "from", conn.Upstream.DebugPath(), "to", f.DebugPath())

	if conn.Kind == ValueConn {
		if f.onUpstream != nil {
			return f.onUpstream(ctx, "")
		}
		return f.SetValue(ctx, f.def)
	}
	return nil
}

// Connections returns a snapshot of active incoming connections by id.
func (f *Field) Connections() map[string]*Connection {
	out := make(map[string]*Connection, len(f.conns))
	for id, c := range f.conns {
		out[id] = c
	}
	return out
}

// HasConnection reports whether a connection id is active on this field.
func (f *Field) HasConnection(id string) bool {
	_, ok := f.conns[id]
	return ok
}

// HasValueConnection reports whether any incoming value connection is
// active. Serialization omits inputs driven by an unlocked upstream.
func (f *Field) HasValueConnection() bool {
	for _, c := range f.conns {
		if c.Kind == ValueConn {
			return true
		}
	}
	return false
}

// DisconnectAll tears down every incoming connection and every outgoing
// subscription, applying normal removal semantics on both sides (downstream
// fields fed by this one reset to their defaults). Called before the owning
// operator is removed. Failures are logged and do not stop the teardown.
func (f *Field) DisconnectAll(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	incoming := make([]*Connection, 0, len(f.conns))
	for _, conn := range f.conns {
		incoming = append(incoming, conn)
	}
	for _, conn := range incoming {
		if err := f.RemoveConnection(ctx, conn.ID, conn.Kind); err != nil {
			logger.Warn("Teardown of incoming connection failed.", "id", conn.ID, "error", err)
		}
	}

	for len(f.subs) > 0 {
		sub := f.subs[0]
		if err := sub.downstream.RemoveConnection(ctx, sub.id, sub.kind); err != nil {
			logger.Warn("Teardown of outgoing connection failed.", "id", sub.id, "error", err)
		}
	}
}

// detach drops the outgoing subscription with the given id, preserving the
// registration order of the remainder.
func (f *Field) detach(id string) {
	for i, sub := range f.subs {
		if sub.id == id {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return
		}
	}
}
