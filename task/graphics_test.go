package task_test

import (
	"testing"

	"github.com/vkforge/taskgraph/backend"
	"github.com/vkforge/taskgraph/internal/fakebackend"
	"github.com/vkforge/taskgraph/resource"
	"github.com/vkforge/taskgraph/task"
)

func newTestManager(t *testing.T) *resource.Manager {
	t.Helper()
	gpu := fakebackend.New(false)
	return resource.NewManager(resource.ManagerInfo{GPU: gpu, FramesInFlight: 2})
}

func makeColorTarget(t *testing.T, m *resource.Manager) resource.TaskColorTarget {
	t.Helper()
	img, err := m.CreatePersistentImage(resource.ImageInfo{
		Dimensions: resource.Dim2D, Format: backend.FmtRGBA8,
		Extent: backend.Dim3D{Width: 64, Height: 64, Depth: 1}, MipLevels: 1, ArrayLayers: 1,
		Usage: backend.UsageColorTarget, Name: "color",
	}, nil)
	if err != nil {
		t.Fatalf("CreatePersistentImage: unexpected error: %v", err)
	}
	return m.CreateColorTarget(resource.ColorTargetInfo{Image: img})
}

func TestBindColorTargetDeclaresWriteAccess(t *testing.T) {
	m := newTestManager(t)
	ct := makeColorTarget(t, m)

	gt := &task.GraphicsTaskBase{}
	gt.BindColorTarget(task.ColorTargetBinding{Target: ct})

	deps := gt.ImageDependencies()
	if len(deps) != 1 {
		t.Fatalf("GraphicsTaskBase.BindColorTarget: got %d image dependencies, want 1", len(deps))
	}
	if !deps[0].Access.Type.IsWrite() {
		t.Errorf("GraphicsTaskBase.BindColorTarget: access type = %v, want a write access", deps[0].Access.Type)
	}
	if deps[0].Access.Stages&backend.StageColorAttachmentOutput == 0 {
		t.Errorf("GraphicsTaskBase.BindColorTarget: missing StageColorAttachmentOutput in %v", deps[0].Access.Stages)
	}
}

func TestBindColorTargetPanicsPastEight(t *testing.T) {
	m := newTestManager(t)
	gt := &task.GraphicsTaskBase{}
	for i := 0; i < 8; i++ {
		gt.BindColorTarget(task.ColorTargetBinding{Target: makeColorTarget(t, m)})
	}

	defer func() {
		if recover() == nil {
			t.Error("GraphicsTaskBase.BindColorTarget: expected a panic on the 9th color target")
		}
	}()
	gt.BindColorTarget(task.ColorTargetBinding{Target: makeColorTarget(t, m)})
}

func TestBindDepthStencilTargetTwicePanics(t *testing.T) {
	m := newTestManager(t)
	img, err := m.CreatePersistentImage(resource.ImageInfo{
		Dimensions: resource.Dim2D, Format: backend.FmtD32Float,
		Extent: backend.Dim3D{Width: 64, Height: 64, Depth: 1}, MipLevels: 1, ArrayLayers: 1,
		Usage: backend.UsageDepthStencilTarget, Name: "depth",
	}, nil)
	if err != nil {
		t.Fatalf("CreatePersistentImage: unexpected error: %v", err)
	}
	ds := m.CreateDepthStencilTarget(resource.DepthStencilTargetInfo{Image: img, HasDepth: true})

	gt := &task.GraphicsTaskBase{}
	gt.BindDepthStencilTarget(task.DepthStencilTargetBinding{Target: ds, HasDepth: true})

	defer func() {
		if recover() == nil {
			t.Error("GraphicsTaskBase.BindDepthStencilTarget: expected a panic on the second bind")
		}
	}()
	gt.BindDepthStencilTarget(task.DepthStencilTargetBinding{Target: ds, HasDepth: true})
}

func TestCallbackTaskRunsSetupOnEveryCall(t *testing.T) {
	calls := 0
	ct := task.NewComputeCallbackTask(task.Info{Name: "inc"},
		func(b *task.ComputeTaskBase) { calls++ },
		func(cl task.CommandList) {},
	)
	ct.SetupTask()
	ct.SetupTask()
	if calls != 2 {
		t.Errorf("ComputeCallbackTask.SetupTask: setup closure called %d times, want 2 (caller controls call count)", calls)
	}
	if ct.GetKind() != backend.TaskTypeCompute {
		t.Errorf("ComputeCallbackTask.GetKind: got %v, want Compute", ct.GetKind())
	}
}
