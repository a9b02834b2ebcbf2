package resource_test

import (
	"testing"

	"github.com/vkforge/taskgraph/backend"
	"github.com/vkforge/taskgraph/internal/fakebackend"
	"github.com/vkforge/taskgraph/resource"
)

func newManager(t *testing.T) (*resource.Manager, *fakebackend.GPU) {
	t.Helper()
	gpu := fakebackend.New(false)
	m := resource.NewManager(resource.ManagerInfo{GPU: gpu, FramesInFlight: 3})
	return m, gpu
}

func TestSlotReuse(t *testing.T) {
	m, _ := newManager(t)

	b1, err := m.CreatePersistentBuffer(resource.BufferInfo{Size: 64, Usage: backend.UsageStorageBuffer, Name: "b1"}, nil)
	if err != nil {
		t.Fatalf("CreatePersistentBuffer: unexpected error: %v", err)
	}
	id1 := b1.Id()

	b2, err := m.CreatePersistentBuffer(resource.BufferInfo{Size: 64, Usage: backend.UsageStorageBuffer, Name: "b2"}, nil)
	if err != nil {
		t.Fatalf("CreatePersistentBuffer: unexpected error: %v", err)
	}
	id2 := b2.Id()
	if id2 == id1 {
		t.Fatalf("Manager.register: two live resources got the same slot id %d", id1)
	}

	b2.Release()

	b3, err := m.CreatePersistentBuffer(resource.BufferInfo{Size: 64, Usage: backend.UsageStorageBuffer, Name: "b3"}, nil)
	if err != nil {
		t.Fatalf("CreatePersistentBuffer: unexpected error: %v", err)
	}
	if got, want := b3.Id(), id2; got != want {
		t.Errorf("Manager.register: slot not reused after release, got %d want %d", got, want)
	}

	if got, want := b1.Id(), id1; got != want {
		t.Errorf("Manager: live handle's Id changed across an unrelated release/reuse, got %d want %d", got, want)
	}

	b1.Release()
	b3.Release()
}

func TestCreateSamplerAssignsDistinctIds(t *testing.T) {
	m, _ := newManager(t)

	id1, err := m.CreateSampler(backend.SamplerCreateInfo{})
	if err != nil {
		t.Fatalf("CreateSampler: unexpected error: %v", err)
	}
	id2, err := m.CreateSampler(backend.SamplerCreateInfo{})
	if err != nil {
		t.Fatalf("CreateSampler: unexpected error: %v", err)
	}
	if id1 == id2 {
		t.Fatalf("CreateSampler: two live samplers got the same id %d", id1)
	}

	m.ReleaseSampler(id2)

	id3, err := m.CreateSampler(backend.SamplerCreateInfo{})
	if err != nil {
		t.Fatalf("CreateSampler: unexpected error: %v", err)
	}
	if got, want := id3, id2; got != want {
		t.Errorf("CreateSampler: slot not reused after ReleaseSampler, got %d want %d", got, want)
	}

	m.ReleaseSampler(id1)
	m.ReleaseSampler(id3)
}

func TestDoubleReleasePanics(t *testing.T) {
	m, _ := newManager(t)
	b, err := m.CreatePersistentBuffer(resource.BufferInfo{Size: 32, Usage: backend.UsageStorageBuffer, Name: "b"}, nil)
	if err != nil {
		t.Fatalf("CreatePersistentBuffer: unexpected error: %v", err)
	}
	b.Retain()
	b.Release()
	b.Release()

	defer func() {
		if recover() == nil {
			t.Error("TaskBuffer.Release: expected a panic on double release")
		}
	}()
	b.Release()
}
