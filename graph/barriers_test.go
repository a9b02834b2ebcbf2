package graph_test

import (
	"testing"

	"github.com/vkforge/taskgraph/backend"
	"github.com/vkforge/taskgraph/resource"
	"github.com/vkforge/taskgraph/task"
)

func makeColorImage(t *testing.T, res *resource.Manager, w, h uint32) resource.TaskImage {
	t.Helper()
	img, err := res.CreatePersistentImage(resource.ImageInfo{
		Dimensions: resource.Dim2D, Format: backend.FmtRGBA8,
		Extent: backend.Dim3D{Width: w, Height: h, Depth: 1}, MipLevels: 1, ArrayLayers: 1,
		Usage: backend.UsageColorTarget, Name: "I",
	}, nil)
	if err != nil {
		t.Fatalf("CreatePersistentImage: unexpected error: %v", err)
	}
	return img
}

// Single draw: one graphics task binding a color target and drawing 3
// vertices produces one batch with a single image barrier transitioning
// the target from Undefined to RenderTarget, and no buffer barriers.
func TestSingleDrawProducesUndefinedToRenderTargetBarrier(t *testing.T) {
	g, res, _ := newTestGraph(t)
	img := makeColorImage(t, res, 1000, 700)
	ct := res.CreateColorTarget(resource.ColorTargetInfo{Image: img})

	g.AddTask(task.NewGraphicsCallbackTask(task.Info{Name: "draw"},
		func(b *task.GraphicsTaskBase) {
			b.BindColorTarget(task.ColorTargetBinding{Target: ct, Clear: &[4]float32{0, 0, 0, 1}})
		},
		func(cl task.CommandList) {
			cl.Draw(backend.DrawInfo{VertexCount: 3})
		},
	))
	g.Build()

	if got := len(g.Batches()); got != 1 {
		t.Fatalf("Build: got %d batches, want 1", got)
	}
	batch := g.Batches()[0]
	if got := len(batch.BufferBarriers); got != 0 {
		t.Errorf("Build: got %d buffer barriers, want 0", got)
	}
	if got := len(batch.ImageBarriers); got != 1 {
		t.Fatalf("Build: got %d image barriers, want 1", got)
	}
	b := batch.ImageBarriers[0]
	if b.SrcLayout != backend.ImageLayoutUndefined {
		t.Errorf("Build: image barrier SrcLayout = %v, want Undefined", b.SrcLayout)
	}
	if b.DstLayout != backend.ImageLayoutRenderTarget {
		t.Errorf("Build: image barrier DstLayout = %v, want RenderTarget", b.DstLayout)
	}
}

// Compute -> graphics hand-off: a compute task writes a buffer as a
// UAV, a graphics task reads it as a vertex buffer. Expect two batches,
// each carrying its own buffer barrier: none->UnorderedAccess then
// UnorderedAccess->ReadOnly.
func TestComputeToGraphicsHandoffBarrierSequence(t *testing.T) {
	g, res, _ := newTestGraph(t)
	buf := makeBuf(t, res, "B")

	g.AddTask(task.NewComputeCallbackTask(task.Info{Name: "C1"},
		func(b *task.ComputeTaskBase) {
			b.UseBuffer(task.BufferDependency{Buffer: buf, Access: backend.Access{Stages: backend.StageComputeShader, Type: backend.AccessWrite}})
		},
		func(cl task.CommandList) {},
	))
	g.AddTask(task.NewGraphicsCallbackTask(task.Info{Name: "G1"},
		func(b *task.GraphicsTaskBase) {
			b.UseBuffer(task.BufferDependency{Buffer: buf, Access: backend.Access{Stages: backend.StageVertexInput, Type: backend.AccessRead}})
		},
		func(cl task.CommandList) {},
	))
	g.Build()

	if got := len(g.Batches()); got != 2 {
		t.Fatalf("Build: got %d batches, want 2", got)
	}

	b0 := g.Batches()[0]
	if got := len(b0.BufferBarriers); got != 1 {
		t.Fatalf("Build: batch 0 got %d buffer barriers, want 1", got)
	}
	if b0.BufferBarriers[0].SrcLayout != backend.BufferLayoutUndefined || b0.BufferBarriers[0].DstLayout != backend.BufferLayoutUnorderedAccess {
		t.Errorf("Build: batch 0 barrier = %v -> %v, want Undefined -> UnorderedAccess", b0.BufferBarriers[0].SrcLayout, b0.BufferBarriers[0].DstLayout)
	}

	b1 := g.Batches()[1]
	if got := len(b1.BufferBarriers); got != 1 {
		t.Fatalf("Build: batch 1 got %d buffer barriers, want 1", got)
	}
	if b1.BufferBarriers[0].SrcLayout != backend.BufferLayoutUnorderedAccess || b1.BufferBarriers[0].DstLayout != backend.BufferLayoutReadOnly {
		t.Errorf("Build: batch 1 barrier = %v -> %v, want UnorderedAccess -> ReadOnly", b1.BufferBarriers[0].SrcLayout, b1.BufferBarriers[0].DstLayout)
	}
}

// Three-task ring topology: T1 writes image X, T2 reads X and writes
// image Y, T3 reads Y. Expect three singleton batches with the same
// None->UnorderedAccess->ReadOnly barrier shape on both X and Y.
func TestRingTopologyProducesPerImageBarrierPairs(t *testing.T) {
	g, res, _ := newTestGraph(t)
	x := makeColorImage(t, res, 64, 64)
	y := makeColorImage(t, res, 64, 64)

	uavWrite := backend.Access{Stages: backend.StageComputeShader, Type: backend.AccessWrite}
	uavRead := backend.Access{Stages: backend.StageComputeShader, Type: backend.AccessRead}

	g.AddTask(task.NewComputeCallbackTask(task.Info{Name: "T1"},
		func(b *task.ComputeTaskBase) {
			b.UseImage(task.ImageDependency{Image: x, Access: uavWrite})
		},
		func(cl task.CommandList) {},
	))
	g.AddTask(task.NewComputeCallbackTask(task.Info{Name: "T2"},
		func(b *task.ComputeTaskBase) {
			b.UseImage(task.ImageDependency{Image: x, Access: uavRead})
			b.UseImage(task.ImageDependency{Image: y, Access: uavWrite})
		},
		func(cl task.CommandList) {},
	))
	g.AddTask(task.NewComputeCallbackTask(task.Info{Name: "T3"},
		func(b *task.ComputeTaskBase) {
			b.UseImage(task.ImageDependency{Image: y, Access: uavRead})
		},
		func(cl task.CommandList) {},
	))
	g.Build()

	if got := len(g.Batches()); got != 3 {
		t.Fatalf("Build: got %d batches, want 3", got)
	}

	b0, b1, b2 := g.Batches()[0], g.Batches()[1], g.Batches()[2]

	if got := len(b0.ImageBarriers); got != 1 {
		t.Fatalf("Build: batch 0 got %d image barriers, want 1", got)
	}
	if b0.ImageBarriers[0].SrcLayout != backend.ImageLayoutUndefined || b0.ImageBarriers[0].DstLayout != backend.ImageLayoutUnorderedAccess {
		t.Errorf("Build: batch 0 (X) barrier = %v -> %v, want Undefined -> UnorderedAccess", b0.ImageBarriers[0].SrcLayout, b0.ImageBarriers[0].DstLayout)
	}

	if got := len(b1.ImageBarriers); got != 2 {
		t.Fatalf("Build: batch 1 got %d image barriers, want 2 (X read, Y first write)", got)
	}
	var xBarrier, yBarrier *backend.ImageBarrier
	for i := range b1.ImageBarriers {
		ib := &b1.ImageBarriers[i]
		switch ib.Image {
		case x.Internal():
			xBarrier = ib
		case y.Internal():
			yBarrier = ib
		}
	}
	if xBarrier == nil || xBarrier.SrcLayout != backend.ImageLayoutUnorderedAccess || xBarrier.DstLayout != backend.ImageLayoutReadOnly {
		t.Errorf("Build: batch 1 (X) barrier = %v, want UnorderedAccess -> ReadOnly", xBarrier)
	}
	if yBarrier == nil || yBarrier.SrcLayout != backend.ImageLayoutUndefined || yBarrier.DstLayout != backend.ImageLayoutUnorderedAccess {
		t.Errorf("Build: batch 1 (Y) barrier = %v, want Undefined -> UnorderedAccess", yBarrier)
	}

	if got := len(b2.ImageBarriers); got != 1 {
		t.Fatalf("Build: batch 2 got %d image barriers, want 1", got)
	}
	if b2.ImageBarriers[0].SrcLayout != backend.ImageLayoutUnorderedAccess || b2.ImageBarriers[0].DstLayout != backend.ImageLayoutReadOnly {
		t.Errorf("Build: batch 2 (Y) barrier = %v -> %v, want UnorderedAccess -> ReadOnly", b2.ImageBarriers[0].SrcLayout, b2.ImageBarriers[0].DstLayout)
	}
}
