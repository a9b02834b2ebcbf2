// Package resource implements the Task Resource Manager: a slot-indexed
// lifetime registry for GPU resources, a staging-upload pipeline, a
// dynamic per-frame buffer roster, and shader-to-pipeline cross
// references used to drive hot-reload.
package resource

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/pkg/errors"
)

// slotResource is the minimal contract the manager's dense slot table
// needs from anything it registers. It is satisfied by every concrete
// resource type in this package (buffers, images, targets, shaders,
// pipelines, swap chains, acceleration structures).
type slotResource interface {
	slotID() uint32
	setSlotID(uint32)
	setOwner(*Manager)
}

// resourceBase is embedded by every resource type. It carries the
// owning manager, the stable slot id assigned at registration, and a
// reference count: the last Release triggers backend destruction,
// mirroring the original's RAII ownership model without relying on
// Go's garbage collector for deterministic teardown.
type resourceBase struct {
	owner *Manager
	slot  uint32
	refs  int32
}

func (r *resourceBase) slotID() uint32      { return r.slot }
func (r *resourceBase) setSlotID(s uint32)  { r.slot = s }
func (r *resourceBase) setOwner(m *Manager) { r.owner = m }

// Id returns the resource's stable slot id. It does not change for the
// lifetime of the resource, even across releases and reuse of other
// slots.
func (r *resourceBase) Id() uint32 { return r.slot }

func (r *resourceBase) retain() { atomic.AddInt32(&r.refs, 1) }

// releaseOne decrements the reference count and reports whether this
// was the final reference. Releasing past zero is a double release and
// an invariant violation.
func (r *resourceBase) releaseOne() bool {
	n := atomic.AddInt32(&r.refs, -1)
	if n < 0 {
		r.owner.fatalf("resource: double release of slot %d", r.slot)
	}
	return n == 0
}

// register assigns r a slot, reusing the most recently released slot if
// one is available (LIFO tombstone reuse), else appending a
// new dense slot.
func (m *Manager) register(r slotResource) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var slot uint32
	if n := len(m.tombstones); n > 0 {
		slot = m.tombstones[n-1]
		m.tombstones = m.tombstones[:n-1]
	} else {
		slot = uint32(len(m.resources))
		m.resources = append(m.resources, nil)
	}
	m.resources[slot] = r
	r.setSlotID(slot)
	r.setOwner(m)
	return slot
}

// releaseSlot nulls the slot and pushes it onto the tombstone stack so
// the next registration reuses it.
func (m *Manager) releaseSlot(slot uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resources[slot] == nil {
		m.fatalf("resource: double release of slot %d", slot)
		return
	}
	m.resources[slot] = nil
	m.tombstones = append(m.tombstones, slot)
}

// fatalf reports an invariant violation: it logs at error level and
// panics. Invariant violations indicate corrupt caller state, and this
// library does not attempt to recover from them.
func (m *Manager) fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	m.logger.Error("invariant violation", slog.String("detail", msg))
	panic(msg)
}

// backendFailure wraps and logs a recoverable backend failure.
// Pipeline creation, BLAS creation, and similar system conditions
// degrade gracefully via a sentinel return value and a log line
// instead of a fatal panic.
func (m *Manager) backendFailure(op string, err error) error {
	wrapped := errors.Wrapf(err, "resource: %s failed", op)
	m.logger.Warn("backend failure", slog.String("op", op), slog.Any("err", wrapped))
	return wrapped
}
