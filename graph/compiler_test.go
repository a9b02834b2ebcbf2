package graph_test

import (
	"testing"

	"github.com/vkforge/taskgraph/backend"
	"github.com/vkforge/taskgraph/graph"
	"github.com/vkforge/taskgraph/internal/fakebackend"
	"github.com/vkforge/taskgraph/resource"
	"github.com/vkforge/taskgraph/task"
)

func newTestGraph(t *testing.T) (*graph.TaskGraph, *resource.Manager, *fakebackend.GPU) {
	t.Helper()
	gpu := fakebackend.New(false)
	res := resource.NewManager(resource.ManagerInfo{GPU: gpu, FramesInFlight: 2})
	g := graph.NewTaskGraph(graph.TaskGraphInfo{GPU: gpu, Resources: res, FramesInFlight: 2})
	return g, res, gpu
}

func makeBuf(t *testing.T, m *resource.Manager, name string) resource.TaskBuffer {
	t.Helper()
	b, err := m.CreatePersistentBuffer(resource.BufferInfo{Size: 256, Usage: backend.UsageStorageBuffer, Name: name}, nil)
	if err != nil {
		t.Fatalf("CreatePersistentBuffer: unexpected error: %v", err)
	}
	return b
}

func TestBuildLinearChainProducesThreeBatches(t *testing.T) {
	g, res, _ := newTestGraph(t)
	r := makeBuf(t, res, "r")

	mk := func(name string) *task.TransferCallbackTask {
		return task.NewTransferCallbackTask(task.Info{Name: name},
			func(b *task.TransferTaskBase) {
				b.UseBuffer(task.BufferDependency{Buffer: r, Access: backend.Access{Stages: backend.StageTransfer, Type: backend.AccessWrite}})
			},
			func(cl task.CommandList) {},
		)
	}
	g.AddTask(mk("a"))
	g.AddTask(mk("b"))
	g.AddTask(mk("c"))

	g.Build()

	if batches := len(g.Batches()); batches != 3 {
		t.Fatalf("Build: got %d batches for a 3-task chain on one buffer, want 3", batches)
	}
}

func TestAddTaskAfterBuildPanics(t *testing.T) {
	g, res, _ := newTestGraph(t)
	r := makeBuf(t, res, "r")

	mk := task.NewTransferCallbackTask(task.Info{Name: "a"},
		func(b *task.TransferTaskBase) {
			b.UseBuffer(task.BufferDependency{Buffer: r, Access: backend.Access{Stages: backend.StageTransfer, Type: backend.AccessWrite}})
		},
		func(cl task.CommandList) {},
	)
	g.AddTask(mk)
	g.Build()

	defer func() {
		if recover() == nil {
			t.Error("AddTask: expected a panic when called on an already-baked graph")
		}
	}()
	g.AddTask(mk)
}

func TestReorderBiasesTowardsNeighboringBatchKinds(t *testing.T) {
	g, res, _ := newTestGraph(t)
	// Every repeated touch of a resource orders a task after the previous
	// toucher, so each middle-batch task reads a buffer of its own and
	// each compute task writes a buffer of its own.
	in := make([]resource.TaskBuffer, 6)
	for i := range in {
		in[i] = makeBuf(t, res, "in")
	}
	out0 := makeBuf(t, res, "out0")
	out1 := makeBuf(t, res, "out1")

	readIn := backend.Access{Stages: backend.StageTransfer, Type: backend.AccessRead}
	writeIn := backend.Access{Stages: backend.StageTransfer, Type: backend.AccessWrite}
	writeOut := backend.Access{Stages: backend.StageComputeShader, Type: backend.AccessWrite}
	readOut := backend.Access{Stages: backend.StageComputeShader, Type: backend.AccessRead}

	// Batch 0: a single transfer task that writes every middle-batch
	// task's input, so they all depend on it alone and land in the same
	// batch together.
	g.AddTask(task.NewTransferCallbackTask(task.Info{Name: "seed"},
		func(b *task.TransferTaskBase) {
			for _, r := range in {
				b.UseBuffer(task.BufferDependency{Buffer: r, Access: writeIn})
			}
		},
		func(cl task.CommandList) {},
	))

	kinds := map[string]backend.TaskType{}
	mkMiddle := func(name string, kind backend.TaskType, src, dst resource.TaskBuffer) task.GenericTask {
		switch kind {
		case backend.TaskTypeTransfer:
			return task.NewTransferCallbackTask(task.Info{Name: name},
				func(b *task.TransferTaskBase) {
					b.UseBuffer(task.BufferDependency{Buffer: src, Access: readIn})
				},
				func(cl task.CommandList) {},
			)
		case backend.TaskTypeGraphics:
			return task.NewCustomCallbackTask(task.Info{Name: name}, backend.TaskTypeGraphics,
				func(b *task.CustomTaskBase) {
					b.UseBuffer(task.BufferDependency{Buffer: src, Access: readIn})
				},
				func(cb backend.CmdBuffer) {},
			)
		default:
			return task.NewComputeCallbackTask(task.Info{Name: name},
				func(b *task.ComputeTaskBase) {
					b.UseBuffer(task.BufferDependency{Buffer: src, Access: readIn})
					b.UseBuffer(task.BufferDependency{Buffer: dst, Access: writeOut})
				},
				func(cl task.CommandList) {},
			)
		}
	}

	names := []struct {
		name     string
		kind     backend.TaskType
		src, dst resource.TaskBuffer
	}{
		{"t1", backend.TaskTypeTransfer, in[0], resource.TaskBuffer{}},
		{"g1", backend.TaskTypeGraphics, in[1], resource.TaskBuffer{}},
		{"g2", backend.TaskTypeGraphics, in[2], resource.TaskBuffer{}},
		{"g3", backend.TaskTypeGraphics, in[3], resource.TaskBuffer{}},
		{"c1", backend.TaskTypeCompute, in[4], out0},
		{"c2", backend.TaskTypeCompute, in[5], out1},
	}
	for _, n := range names {
		kinds[n.name] = n.kind
		g.AddTask(mkMiddle(n.name, n.kind, n.src, n.dst))
	}

	// Batch 2: a single compute task depending on the middle batch's
	// compute outputs, making Compute the next batch's leading kind.
	g.AddTask(task.NewComputeCallbackTask(task.Info{Name: "tail"},
		func(b *task.ComputeTaskBase) {
			b.UseBuffer(task.BufferDependency{Buffer: out0, Access: readOut})
			b.UseBuffer(task.BufferDependency{Buffer: out1, Access: readOut})
		},
		func(cl task.CommandList) {},
	))

	g.Build()

	if got := len(g.Batches()); got != 3 {
		t.Fatalf("Build: got %d batches, want 3 (seed, middle, tail)", got)
	}
	middle := g.Batches()[1]
	order := make([]backend.TaskType, len(middle.TaskIds))
	for i, idx := range middle.TaskIds {
		order[i] = g.TaskKind(idx)
	}
	if len(order) != 6 {
		t.Fatalf("Build: middle batch has %d tasks, want 6", len(order))
	}
	if order[0] != backend.TaskTypeTransfer {
		t.Errorf("Build: first task in the middle batch has kind %v, want Transfer (matches the previous batch's trailing kind)", order[0])
	}
	for i := 1; i < 4; i++ {
		if order[i] != backend.TaskTypeGraphics {
			t.Errorf("Build: task at position %d has kind %v, want Graphics", i, order[i])
		}
	}
	for i := 4; i < 6; i++ {
		if order[i] != backend.TaskTypeCompute {
			t.Errorf("Build: task at position %d has kind %v, want Compute (matches the next batch's leading kind)", i, order[i])
		}
	}
}
