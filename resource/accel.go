package resource

import "github.com/vkforge/taskgraph/backend"

// AccelerationStructureInfo is the plain descriptor for a BLAS/TLAS.
// Acceleration structures are a capability-gated extension: they
// behave like other persistent resources but require
// backend.Limits().RayTracing.
type AccelerationStructureInfo struct {
	VertexBuffer, IndexBuffer TaskBuffer
	InstanceBuffer            TaskBuffer
	InstanceCount             uint32
	Name                      string
}

type accelStructResource struct {
	resourceBase
	info   AccelerationStructureInfo
	isTLAS bool
}

// TaskAccelerationStructure is a reference-counted handle to a
// bottom-level or top-level acceleration structure. It holds the build
// parameters returned by BuildInfo; it does not create or expose a
// backend object or address.
type TaskAccelerationStructure struct{ res *accelStructResource }

func (a TaskAccelerationStructure) IsValid() bool { return a.res != nil }
func (a TaskAccelerationStructure) Id() uint32    { return a.res.Id() }
func (a TaskAccelerationStructure) IsTLAS() bool  { return a.res.isTLAS }

func (a TaskAccelerationStructure) Release() {
	if !a.res.releaseOne() {
		return
	}
	a.res.owner.releaseSlot(a.res.slot)
}

// CreateBLAS registers a bottom-level acceleration structure. It is a
// reported backend failure, not a fatal invariant violation, to call
// this against a backend that does not report
// RayTracing support in its Limits — callers that probe capabilities
// first will never hit it.
func (m *Manager) CreateBLAS(info AccelerationStructureInfo) (TaskAccelerationStructure, error) {
	return m.createAccelStruct(info, false)
}

// CreateTLAS registers a top-level acceleration structure referencing
// an instance buffer built from BLAS addresses.
func (m *Manager) CreateTLAS(info AccelerationStructureInfo) (TaskAccelerationStructure, error) {
	return m.createAccelStruct(info, true)
}

func (m *Manager) createAccelStruct(info AccelerationStructureInfo, isTLAS bool) (TaskAccelerationStructure, error) {
	if !m.gpu.Limits().RayTracing {
		return TaskAccelerationStructure{}, m.backendFailure("CreateAccelerationStructure",
			errNotSupported{op: "acceleration structures"})
	}
	res := &accelStructResource{info: info, isTLAS: isTLAS}
	res.resourceBase.refs = 1
	m.register(res)
	return TaskAccelerationStructure{res: res}, nil
}

// BuildInfo returns the backend build parameters for this acceleration
// structure, for the graph package's task-execute phase to submit via
// CmdBuffer.BuildAccelerationStructure.
func (a TaskAccelerationStructure) BuildInfo() backend.AccelerationStructureBuildInfo {
	return backend.AccelerationStructureBuildInfo{
		VertexBuffer:   a.res.info.VertexBuffer.Internal(),
		IndexBuffer:    a.res.info.IndexBuffer.Internal(),
		InstanceBuffer: a.res.info.InstanceBuffer.Internal(),
		InstanceCount:  a.res.info.InstanceCount,
	}
}

type errNotSupported struct{ op string }

func (e errNotSupported) Error() string { return e.op + " not supported by this backend" }
