package resource

import (
	"github.com/vkforge/taskgraph/backend"
)

// StorageMode classifies how a TaskBuffer's backing memory is managed.
type StorageMode uint8

const (
	// StorageDefault is device-local memory, not host-addressable.
	StorageDefault StorageMode = iota
	// StorageCpuVisible is host-writable device memory.
	StorageCpuVisible
	// StorageReadback is host-readable memory for GPU-to-CPU transfer.
	// Readback implies CpuVisible.
	StorageReadback
	// StorageDynamic allocates FramesInFlight replicas refreshed once
	// per frame.
	StorageDynamic
)

// BufferInfo is the plain descriptor for a persistent buffer.
type BufferInfo struct {
	Size    uint64
	Usage   backend.Usage
	Storage StorageMode
	// CpuVisible on a Dynamic buffer aliases primary to the current
	// replica, with no device-side copy. On non-Dynamic storage it makes
	// the single allocation host-visible (StorageCpuVisible and
	// StorageReadback already imply it).
	CpuVisible bool
	Name       string
}

func (info BufferInfo) cpuVisible() bool {
	return info.Storage == StorageCpuVisible || info.Storage == StorageReadback || info.CpuVisible
}

// bufferResource is the concrete state behind a TaskBuffer handle.
type bufferResource struct {
	resourceBase
	info            BufferInfo
	primary         backend.Buffer
	replicas        []backend.Buffer // len == framesInFlight when Storage == StorageDynamic
	currentInFlight uint32
}

// TaskBuffer is a reference-counted handle to a persistent buffer
// resource. The zero value is not usable; obtain one from
// Manager.CreatePersistentBuffer.
type TaskBuffer struct {
	res *bufferResource
}

// IsValid reports whether the handle wraps a live resource.
func (b TaskBuffer) IsValid() bool { return b.res != nil }

// Id returns the buffer's stable slot id.
func (b TaskBuffer) Id() uint32 { return b.res.Id() }

// Info returns the descriptor this buffer was created with.
func (b TaskBuffer) Info() BufferInfo { return b.res.info }

// Internal returns the backend buffer object current uses should bind:
// for a CpuVisible Dynamic buffer this is whichever replica is current
// after the last dynamic-buffer flush; for a non-CpuVisible Dynamic
// buffer it is the device-local primary that the flush copies the
// current replica into; for all other storage modes it is the single
// primary allocation.
func (b TaskBuffer) Internal() backend.Buffer { return b.res.primary }

// MappedMemory returns the host-visible address of the buffer's current
// in-flight allocation, or nil if the buffer is device-local only.
func (b TaskBuffer) MappedMemory() []byte {
	if b.res.info.Storage == StorageDynamic {
		return b.res.replicas[b.res.currentInFlight].HostAddress()
	}
	return b.res.primary.HostAddress()
}

// Retain adds a reference to the buffer. Pair with Release.
func (b TaskBuffer) Retain() TaskBuffer {
	b.res.retain()
	return b
}

// Release drops a reference to the buffer. When the last reference
// drops, the manager unregisters the slot, purges any pending staging
// uploads and dynamic-buffer roster entry referencing it, and destroys
// the backend buffer(s).
func (b TaskBuffer) Release() {
	if !b.res.releaseOne() {
		return
	}
	b.res.owner.releaseBufferResource(b.res)
}

// CreatePersistentBuffer validates the requested storage-mode
// combination, allocates backend memory, and — if initialData is
// non-empty — enqueues a staging upload to populate it.
func (m *Manager) CreatePersistentBuffer(info BufferInfo, initialData []byte) (TaskBuffer, error) {
	if info.Storage == StorageReadback && !info.cpuVisible() {
		m.fatalf("resource: readback buffer must be cpu-visible")
	}
	if len(initialData) > 0 && info.Storage == StorageDynamic {
		m.fatalf("resource: initial data is not allowed on a dynamic buffer")
	}
	if len(initialData) > 0 && info.Storage == StorageReadback {
		m.fatalf("resource: initial data is not allowed on a readback buffer")
	}

	res := &bufferResource{info: info}
	res.resourceBase.refs = 1

	switch info.Storage {
	case StorageDynamic:
		res.replicas = make([]backend.Buffer, m.framesInFlight)
		for i := range res.replicas {
			buf, err := m.gpu.CreateBuffer(backend.BufferCreateInfo{
				Size: info.Size, Usage: info.Usage, CpuVisible: true, Name: info.Name,
			})
			if err != nil {
				return TaskBuffer{}, m.backendFailure("CreatePersistentBuffer(dynamic replica)", err)
			}
			res.replicas[i] = buf
		}
		if info.CpuVisible {
			res.primary = res.replicas[0]
		} else {
			primary, err := m.gpu.CreateBuffer(backend.BufferCreateInfo{
				Size: info.Size, Usage: info.Usage, CpuVisible: false, Name: info.Name,
			})
			if err != nil {
				return TaskBuffer{}, m.backendFailure("CreatePersistentBuffer(dynamic primary)", err)
			}
			res.primary = primary
		}
	default:
		buf, err := m.gpu.CreateBuffer(backend.BufferCreateInfo{
			Size: info.Size, Usage: info.Usage, CpuVisible: info.cpuVisible(), Name: info.Name,
		})
		if err != nil {
			return TaskBuffer{}, m.backendFailure("CreatePersistentBuffer", err)
		}
		res.primary = buf
	}

	m.register(res)

	if info.Storage == StorageDynamic {
		m.mu.Lock()
		m.dynamicBuffers = append(m.dynamicBuffers, res)
		m.mu.Unlock()
	}

	if len(initialData) > 0 {
		if err := m.enqueueBufferUpload(res, initialData); err != nil {
			return TaskBuffer{}, err
		}
	}

	return TaskBuffer{res: res}, nil
}

func (m *Manager) releaseBufferResource(res *bufferResource) {
	m.releaseSlot(res.slot)
	m.mu.Lock()
	for i, d := range m.dynamicBuffers {
		if d == res {
			m.dynamicBuffers = append(m.dynamicBuffers[:i], m.dynamicBuffers[i+1:]...)
			break
		}
	}
	m.purgeStagingFor(res, nil)
	m.mu.Unlock()

	if res.info.Storage == StorageDynamic {
		for _, r := range res.replicas {
			m.gpu.DestroyBuffer(r)
		}
		if !res.info.CpuVisible {
			m.gpu.DestroyBuffer(res.primary)
		}
		return
	}
	m.gpu.DestroyBuffer(res.primary)
}
