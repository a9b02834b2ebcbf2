// Package graph implements the Task Command List, the Task Graph
// Compiler, and the Frame Scheduler: the three collaborating pieces
// that turn a user-declared set of tasks into ordered, barrier-safe
// GPU submissions across a multi-frame pipeline.
package graph

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/vkforge/taskgraph/backend"
	"github.com/vkforge/taskgraph/resource"
	"github.com/vkforge/taskgraph/task"
)

// TaskGraphInfo configures a TaskGraph at construction.
type TaskGraphInfo struct {
	GPU            backend.GPU
	Resources      *resource.Manager
	FramesInFlight uint32
	Logger         *slog.Logger
}

// Batch is a maximal set of tasks the compiler determined may execute
// in parallel, surrounded by the barriers Build synthesized on both
// sides.
type Batch struct {
	TaskIds        []int
	BufferBarriers []backend.BufferBarrier
	ImageBarriers  []backend.ImageBarrier
}

// TaskGraph owns the full per-frame lifecycle: task ownership, the
// compiled batch/barrier schedule, and the CPU/GPU timeline
// coordination.
type TaskGraph struct {
	gpu       backend.GPU
	resources *resource.Manager
	logger    *slog.Logger

	framesInFlight uint32

	tasks           []task.GenericTask
	swapchainWrites []int // indices into tasks that are synthesized swap-chain-write tasks

	baked   bool
	inFrame bool

	batches          []Batch
	executionOrder   []int // flattened post-reorder task indices, execution order
	timestampBase    map[int]uint32
	baseGraphTS      uint32
	baseFlushesTS    uint32

	swapchains []resource.TaskSwapChain

	gpuFrameTimeline backend.Fence
	renderFinished   []backend.Semaphore
	timestampPools   []backend.TimestampPool

	cpuTimelineIndex uint64
	frameIndex       uint32
}

// NewTaskGraph constructs a TaskGraph. It creates the GPU timeline
// fence and one render-finished semaphore per frame-in-flight
// immediately, mirroring the original constructor.
func NewTaskGraph(info TaskGraphInfo) *TaskGraph {
	if info.GPU == nil || info.Resources == nil {
		panic("graph: TaskGraphInfo.GPU and Resources must both be set")
	}
	if info.FramesInFlight < 2 {
		panic("graph: TaskGraphInfo.FramesInFlight must be >= 2")
	}
	logger := info.Logger
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	g := &TaskGraph{
		gpu:            info.GPU,
		resources:      info.Resources,
		logger:         logger,
		framesInFlight: info.FramesInFlight,
	}
	fence, err := info.GPU.CreateFence(0)
	if err != nil {
		g.fatalf("graph: failed to create GPU timeline fence: %v", err)
	}
	g.gpuFrameTimeline = fence
	g.renderFinished = make([]backend.Semaphore, info.FramesInFlight)
	for i := range g.renderFinished {
		sem, err := info.GPU.CreateSemaphore()
		if err != nil {
			g.fatalf("graph: failed to create render-finished semaphore: %v", err)
		}
		g.renderFinished[i] = sem
	}
	return g
}

func (g *TaskGraph) fatalf(format string, args ...any) {
	msg := errors.Errorf(format, args...).Error()
	g.logger.Error("invariant violation", slog.String("detail", msg))
	panic(msg)
}

// AddTask transfers ownership of t to the graph until Reset. Calling
// AddTask on a baked graph (one that has been Built but not yet Reset)
// is an invariant violation.
func (g *TaskGraph) AddTask(t task.GenericTask) int {
	if g.baked {
		g.fatalf("graph: AddTask called on a baked graph; call Reset first")
	}
	t.SetupTask()
	g.tasks = append(g.tasks, t)
	return len(g.tasks) - 1
}

// RegisterSwapchain adds sc to the set the frame scheduler checks for
// pending resizes at BeginFrame and presents at EndFrame.
func (g *TaskGraph) RegisterSwapchain(sc resource.TaskSwapChain) {
	g.swapchains = append(g.swapchains, sc)
}

// Reset clears all tasks and the compiled schedule, waiting for the GPU
// to go idle first: batches exist only between Build and the next
// Reset, and Reset is one of the two blocking points in the API.
func (g *TaskGraph) Reset() {
	if g.inFrame {
		g.fatalf("graph: Reset called while a frame is in progress")
	}
	g.gpu.WaitIdle()
	g.tasks = nil
	g.swapchainWrites = nil
	g.batches = nil
	g.executionOrder = nil
	g.timestampBase = nil
	g.baked = false
}

// Log exposes the graph's logger for tests and callers constructing
// synthesized tasks (e.g. AddSwapChainWrite).
func (g *TaskGraph) Log() *slog.Logger { return g.logger }

// Batches returns the compiled batch list. Valid only after Build and
// before the next Reset.
func (g *TaskGraph) Batches() []Batch { return g.batches }

// TaskKind returns the kind of the task at the given AddTask-order
// index.
func (g *TaskGraph) TaskKind(idx int) backend.TaskType { return g.tasks[idx].GetKind() }

// waitContext turns a millisecond timeout into a context, matching the
// original's BeginFrame(timeoutMilliseconds) signature.
func waitContext(timeoutMs uint32) (context.Context, context.CancelFunc) {
	if timeoutMs == 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), msToDuration(timeoutMs))
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
