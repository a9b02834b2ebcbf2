// Package task implements the task authoring surface: an abstract
// GenericTask contract with setup/execute phases, concrete variants for
// each kind of GPU work, and the dependency-declaration methods that
// feed the graph compiler's Build phase.
package task

import (
	"github.com/vkforge/taskgraph/backend"
	"github.com/vkforge/taskgraph/resource"
)

// CommandList is the method set graph.TaskCommandList provides at
// execute time. It is declared here, not in package graph, so that
// task can depend on it without importing graph (graph already imports
// task; a cycle back would be illegal). graph.TaskCommandList satisfies
// this interface structurally.
type CommandList interface {
	CopyBuffer(info CopyBufferInfo)
	CopyImage(info CopyImageInfo)
	ClearUnorderedAccessView(view backend.UnorderedAccessID, clear [4]float32)
	UpdateBuffer(buf resource.TaskBuffer, offset uint64, data []byte)
	PushConstant(data []byte, offset uint32)
	SetUniformBufferView(slot uint32, buf resource.TaskBuffer)
	SetUnorderedAccessView(slot uint32, view backend.UnorderedAccessID)
	SetRasterPipeline(p resource.TaskRasterPipeline)
	SetComputePipeline(p resource.TaskComputePipeline)
	SetViewport(v backend.Viewport)
	SetScissor(r backend.Rect2D)
	SetVertexBuffer(slot uint32, buf resource.TaskBuffer, offset uint64)
	SetIndexBuffer(buf resource.TaskBuffer, offset uint64, indexType backend.IndexType)
	Draw(info backend.DrawInfo)
	DrawIndexed(info backend.DrawIndexedInfo)
	DrawIndirect(indirect resource.TaskBuffer, offset uint64, count, stride uint32)
	DrawIndexedIndirect(indirect resource.TaskBuffer, offset uint64, count, stride uint32)
	Dispatch(info backend.DispatchInfo)
	DispatchIndirect(indirect resource.TaskBuffer, offset uint64)
	Internal() backend.CmdBuffer
}

// CopyBufferInfo describes a buffer-to-buffer copy at the task level.
type CopyBufferInfo struct {
	Src, Dst           resource.TaskBuffer
	SrcOffset, DstOffset uint64
	Size               uint64
}

// CopyImageInfo describes an image-to-image copy at the task level.
type CopyImageInfo struct {
	Src, Dst             resource.TaskImage
	SrcSlice, DstSlice   resource.ImageArraySlice
	SrcOffset, DstOffset backend.Off3D
	Extent               backend.Dim3D
}

// Info names a task for debugging and GPU labels.
type Info struct {
	Name  string
	Color [4]float32
}

// BufferDependency declares how a task touches a buffer.
type BufferDependency struct {
	Buffer resource.TaskBuffer
	Access backend.Access
}

// ImageDependency declares how a task touches an image.
type ImageDependency struct {
	Image  resource.TaskImage
	Access backend.Access
}

// AccelDependency declares how a task touches an acceleration
// structure.
type AccelDependency struct {
	Accel  resource.TaskAccelerationStructure
	Access backend.Access
}

// GenericTask is the abstract contract every task kind satisfies. Setup
// runs once at AddTask time; Execute runs once per frame.
type GenericTask interface {
	SetupTask()
	ExecuteTask(cl CommandList)
	GetBindPoint() backend.PipelineBindPoint
	GetKind() backend.TaskType
	Info() Info

	BufferDependencies() []BufferDependency
	ImageDependencies() []ImageDependency
	AccelDependencies() []AccelDependency
}

// base is embedded by every concrete task type. It implements the
// dependency-declaration methods and their storage; concrete types
// implement SetupTask, ExecuteTask, GetBindPoint, and GetKind.
type base struct {
	info       Info
	bufferDeps []BufferDependency
	imageDeps  []ImageDependency
	accelDeps  []AccelDependency
}

// UseBuffer declares that this task touches buf with the given access.
// Called from SetupTask.
func (b *base) UseBuffer(dep BufferDependency) { b.bufferDeps = append(b.bufferDeps, dep) }

// UseImage declares that this task touches img with the given access.
func (b *base) UseImage(dep ImageDependency) { b.imageDeps = append(b.imageDeps, dep) }

// UseAccelerationStructure declares that this task touches an
// acceleration structure with the given access.
func (b *base) UseAccelerationStructure(dep AccelDependency) { b.accelDeps = append(b.accelDeps, dep) }

func (b *base) Info() Info                            { return b.info }
func (b *base) BufferDependencies() []BufferDependency { return b.bufferDeps }
func (b *base) ImageDependencies() []ImageDependency   { return b.imageDeps }
func (b *base) AccelDependencies() []AccelDependency   { return b.accelDeps }
