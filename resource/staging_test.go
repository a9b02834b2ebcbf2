package resource_test

import (
	"bytes"
	"testing"

	"github.com/vkforge/taskgraph/backend"
	"github.com/vkforge/taskgraph/resource"
)

func TestFlushStagingUploadsInitialData(t *testing.T) {
	m, gpu := newManager(t)

	data := []byte("hello task graph")
	buf, err := m.CreatePersistentBuffer(resource.BufferInfo{
		Size: uint64(len(data)), Usage: backend.UsageStorageBuffer, Storage: resource.StorageCpuVisible, Name: "staged",
	}, data)
	if err != nil {
		t.Fatalf("CreatePersistentBuffer: unexpected error: %v", err)
	}

	cb, err := gpu.NewCmdBuffer()
	if err != nil {
		t.Fatalf("NewCmdBuffer: unexpected error: %v", err)
	}
	m.FlushStaging(cb)

	if got := buf.MappedMemory(); !bytes.Equal(got[:len(data)], data) {
		t.Errorf("FlushStaging: buffer contents = %q, want %q", got[:len(data)], data)
	}

	buf.Release()
	m.Close()
}

func TestFlushDynamicCpuVisibleRepointsPrimary(t *testing.T) {
	m, gpu := newManager(t)

	buf, err := m.CreatePersistentBuffer(resource.BufferInfo{
		Size: 16, Usage: backend.UsageUniformBuffer, Storage: resource.StorageDynamic, CpuVisible: true, Name: "dyn",
	}, nil)
	if err != nil {
		t.Fatalf("CreatePersistentBuffer: unexpected error: %v", err)
	}

	before := buf.Internal()

	cb, _ := gpu.NewCmdBuffer()
	m.FlushDynamic(cb, 1)

	after := buf.Internal()
	if after == before {
		t.Errorf("FlushDynamic: primary still points at frame-0's replica after flushing frame 1")
	}

	copy(buf.MappedMemory(), []byte("frame-1-payload!"))
	if got, want := buf.Internal().HostAddress(), buf.MappedMemory(); !bytes.Equal(got, want) {
		t.Errorf("FlushDynamic: primary does not alias the current replica after flush")
	}

	buf.Release()
	m.Close()
}
