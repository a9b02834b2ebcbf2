package resource

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vkforge/taskgraph/backend"
)

// ManagerInfo configures a Manager at construction.
type ManagerInfo struct {
	GPU            backend.GPU
	FramesInFlight uint32
	Logger         *slog.Logger
}

// Manager owns every graph-visible resource: it assigns stable slot
// ids, schedules staging uploads, manages dynamic per-frame buffer
// replicas, and cross-links shaders to pipelines for reload-dirtying.
type Manager struct {
	gpu            backend.GPU
	framesInFlight uint32
	logger         *slog.Logger

	mu         sync.Mutex
	resources  []slotResource
	tombstones []uint32

	pendingUploads []stagingUploadPair
	dynamicBuffers []*bufferResource

	reload *ShaderReloadListener
}

// NewManager constructs a Manager. info.FramesInFlight must be at least
// 2, mirroring the original's constructor assertion (dynamic buffers
// need at least two replicas to be meaningful).
func NewManager(info ManagerInfo) *Manager {
	if info.GPU == nil {
		panic("resource: ManagerInfo.GPU must not be nil")
	}
	if info.FramesInFlight < 2 {
		panic("resource: ManagerInfo.FramesInFlight must be >= 2")
	}
	logger := info.Logger
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	m := &Manager{
		gpu:            info.GPU,
		framesInFlight: info.FramesInFlight,
		logger:         logger,
	}
	m.reload = &ShaderReloadListener{owner: m}
	return m
}

// GPU returns the backend device this manager was constructed with.
func (m *Manager) GPU() backend.GPU { return m.gpu }

// FramesInFlight returns the number of frames the CPU may build ahead
// of the GPU, as configured at construction.
func (m *Manager) FramesInFlight() uint32 { return m.framesInFlight }

// GetShaderReloadListener returns the bridge that an external shader
// compiler notifies when it delivers replacement bytecode.
func (m *Manager) GetShaderReloadListener() *ShaderReloadListener { return m.reload }

// Close asserts that every resource registered with this manager has
// been released, then reports the violation fatally if not. It does
// not itself destroy backend objects — that happens as each resource's
// last reference is released.
func (m *Manager) Close() {
	m.mu.Lock()
	live := 0
	for _, r := range m.resources {
		if r != nil {
			live++
		}
	}
	m.mu.Unlock()
	if live > 0 {
		m.fatalf("resource: manager closed with %d live resource(s)", live)
	}
}

// discardHandler is a no-op slog.Handler used when no logger is
// supplied at construction, so every subsystem can log unconditionally
// without a nil check at each call site.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
