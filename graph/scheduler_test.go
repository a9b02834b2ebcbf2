package graph_test

import (
	"testing"

	"github.com/vkforge/taskgraph/backend"
	"github.com/vkforge/taskgraph/internal/fakebackend"
	"github.com/vkforge/taskgraph/task"
)

func TestFrameLifecycleAdvancesAndSignalsTimeline(t *testing.T) {
	g, res, gpu := newTestGraph(t)
	r := makeBuf(t, res, "r")

	g.AddTask(task.NewTransferCallbackTask(task.Info{Name: "touch"},
		func(b *task.TransferTaskBase) {
			b.UseBuffer(task.BufferDependency{Buffer: r, Access: backend.Access{Stages: backend.StageTransfer, Type: backend.AccessWrite}})
		},
		func(cl task.CommandList) {},
	))
	g.Build()

	for i := 0; i < 3; i++ {
		g.BeginFrame(0)
		cb := g.Execute()
		if _, ok := cb.(*fakebackend.CmdBuffer); !ok {
			t.Fatalf("Execute: got %T, want *fakebackend.CmdBuffer", cb)
		}
		g.EndFrame(cb)
	}

	if got := gpu.SubmitCount(); got != 3 {
		t.Errorf("EndFrame: queue submitted %d times over 3 frames, want 3", got)
	}

	// GraphTimingsNs reads the pool one frame behind the one currently
	// being built, so it is non-zero once at least one frame has fully
	// retired.
	if got := g.GetGraphTimingsNs(); got == 0 {
		t.Errorf("GetGraphTimingsNs: got 0 after 3 completed frames, want nonzero")
	}
}

func TestBeginFrameWhileInFramePanics(t *testing.T) {
	g, res, _ := newTestGraph(t)
	r := makeBuf(t, res, "r")
	g.AddTask(task.NewTransferCallbackTask(task.Info{Name: "touch"},
		func(b *task.TransferTaskBase) {
			b.UseBuffer(task.BufferDependency{Buffer: r, Access: backend.Access{Stages: backend.StageTransfer, Type: backend.AccessWrite}})
		},
		func(cl task.CommandList) {},
	))
	g.Build()
	g.BeginFrame(0)

	defer func() {
		if recover() == nil {
			t.Error("BeginFrame: expected a panic when called while already in a frame")
		}
	}()
	g.BeginFrame(0)
}

func TestExecuteOutsideFramePanics(t *testing.T) {
	g, res, _ := newTestGraph(t)
	r := makeBuf(t, res, "r")
	g.AddTask(task.NewTransferCallbackTask(task.Info{Name: "touch"},
		func(b *task.TransferTaskBase) {
			b.UseBuffer(task.BufferDependency{Buffer: r, Access: backend.Access{Stages: backend.StageTransfer, Type: backend.AccessWrite}})
		},
		func(cl task.CommandList) {},
	))
	g.Build()

	defer func() {
		if recover() == nil {
			t.Error("Execute: expected a panic when called outside a frame")
		}
	}()
	g.Execute()
}
