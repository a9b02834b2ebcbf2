package graph

import (
	"github.com/vkforge/taskgraph/backend"
	"github.com/vkforge/taskgraph/resource"
	"github.com/vkforge/taskgraph/task"
)

// TaskCommandList is the thin translation layer tasks record against
// during Execute. Every method that takes a task-level handle resolves
// it to its backend handle via Internal() before delegating.
// graph.TaskCommandList structurally satisfies task.CommandList.
type TaskCommandList struct {
	cb        backend.CmdBuffer
	gpu       backend.GPU
	resources *resource.Manager
	bindPoint backend.PipelineBindPoint
}

var _ task.CommandList = (*TaskCommandList)(nil)

func newTaskCommandList(cb backend.CmdBuffer, gpu backend.GPU, resources *resource.Manager) *TaskCommandList {
	return &TaskCommandList{cb: cb, gpu: gpu, resources: resources}
}

func (l *TaskCommandList) setBindPoint(bp backend.PipelineBindPoint) { l.bindPoint = bp }

func (l *TaskCommandList) CopyBuffer(info task.CopyBufferInfo) {
	l.cb.CopyBufferToBuffer(backend.CopyBufferToBuffer{
		Src: info.Src.Internal(), Dst: info.Dst.Internal(),
		SrcOffset: info.SrcOffset, DstOffset: info.DstOffset, Size: info.Size,
	})
}

func (l *TaskCommandList) CopyImage(info task.CopyImageInfo) {
	l.cb.CopyImageToImage(backend.CopyImageToImage{
		Src: info.Src.Internal(), Dst: info.Dst.Internal(),
		SrcMipLevel: info.SrcSlice.MipLevel, DstMipLevel: info.DstSlice.MipLevel,
		SrcLayer: info.SrcSlice.ArrayLayer, DstLayer: info.DstSlice.ArrayLayer,
		SrcOffset: info.SrcOffset, DstOffset: info.DstOffset, Extent: info.Extent,
	})
}

func (l *TaskCommandList) ClearUnorderedAccessView(view backend.UnorderedAccessID, clear [4]float32) {
	l.cb.ClearUnorderedAccessView(view, clear)
}

func (l *TaskCommandList) UpdateBuffer(buf resource.TaskBuffer, offset uint64, data []byte) {
	l.cb.UpdateBuffer(buf.Internal(), offset, data)
}

func (l *TaskCommandList) PushConstant(data []byte, offset uint32) {
	const maxPushConstantSize = 128
	if len(data) > maxPushConstantSize {
		panic("graph: push constant exceeds the 128-byte limit; use a uniform buffer instead")
	}
	l.cb.PushConstant(l.bindPoint, data, offset)
}

func (l *TaskCommandList) SetUniformBufferView(slot uint32, buf resource.TaskBuffer) {
	l.cb.SetUniformBufferView(l.bindPoint, slot, buf.Internal())
}

func (l *TaskCommandList) SetUnorderedAccessView(slot uint32, view backend.UnorderedAccessID) {
	l.cb.SetUnorderedAccessView(l.bindPoint, slot, view)
}

// SetRasterPipeline refreshes the pipeline if a referenced shader has
// reloaded since it was last used, then binds it.
func (l *TaskCommandList) SetRasterPipeline(p resource.TaskRasterPipeline) {
	p.Refresh(l.cb, l.gpu, l.resources)
	l.cb.SetRasterPipeline(p.Internal())
}

// SetComputePipeline refreshes the pipeline if a referenced shader has
// reloaded since it was last used, then binds it.
func (l *TaskCommandList) SetComputePipeline(p resource.TaskComputePipeline) {
	p.Refresh(l.cb, l.gpu, l.resources)
	l.cb.SetComputePipeline(p.Internal())
}

func (l *TaskCommandList) SetViewport(v backend.Viewport) { l.cb.SetViewport(v) }
func (l *TaskCommandList) SetScissor(r backend.Rect2D)     { l.cb.SetScissor(r) }

func (l *TaskCommandList) SetVertexBuffer(slot uint32, buf resource.TaskBuffer, offset uint64) {
	l.cb.SetVertexBuffer(slot, buf.Internal(), offset)
}

func (l *TaskCommandList) SetIndexBuffer(buf resource.TaskBuffer, offset uint64, indexType backend.IndexType) {
	l.cb.SetIndexBuffer(buf.Internal(), offset, indexType)
}

func (l *TaskCommandList) Draw(info backend.DrawInfo)                 { l.cb.Draw(info) }
func (l *TaskCommandList) DrawIndexed(info backend.DrawIndexedInfo)   { l.cb.DrawIndexed(info) }

func (l *TaskCommandList) DrawIndirect(indirect resource.TaskBuffer, offset uint64, count, stride uint32) {
	l.cb.DrawIndirect(indirect.Internal(), offset, count, stride)
}

func (l *TaskCommandList) DrawIndexedIndirect(indirect resource.TaskBuffer, offset uint64, count, stride uint32) {
	l.cb.DrawIndexedIndirect(indirect.Internal(), offset, count, stride)
}

func (l *TaskCommandList) Dispatch(info backend.DispatchInfo) { l.cb.Dispatch(info) }

func (l *TaskCommandList) DispatchIndirect(indirect resource.TaskBuffer, offset uint64) {
	l.cb.DispatchIndirect(indirect.Internal(), offset)
}

func (l *TaskCommandList) Internal() backend.CmdBuffer { return l.cb }

// graphicsTargetProvider is satisfied by any task exposing bound render
// targets, which in practice means task.GraphicsTaskBase and anything
// embedding it. Checked via a type assertion in Execute before opening
// a render pass.
type graphicsTargetProvider interface {
	ColorTargets() []task.ColorTargetBinding
	DepthStencilTarget() *task.DepthStencilTargetBinding
}

// buildRenderPassInfo translates a graphics task's bound targets into
// the backend-level RenderPassInfo Execute passes to BeginRenderPass.
func buildRenderPassInfo(gt graphicsTargetProvider) *backend.RenderPassInfo {
	info := &backend.RenderPassInfo{}
	for _, ct := range gt.ColorTargets() {
		binding := backend.ColorTargetBinding{
			Image:    ct.Target.Image().Internal(),
			Clear:    ct.Clear,
			Blending: ct.Blending,
		}
		if ct.Resolve.IsValid() {
			binding.Resolve = ct.Resolve.Image().Internal()
		}
		info.ColorTargets = append(info.ColorTargets, binding)
		info.Extent = ct.Target.Image().Internal().Extent()
	}
	if ds := gt.DepthStencilTarget(); ds != nil {
		info.DepthStencil = &backend.DepthStencilTargetBinding{
			Image:        ds.Target.Image().Internal(),
			DepthClear:   ds.DepthClear,
			StencilClear: ds.StencilClear,
			ReadOnly:     ds.ReadOnly,
			HasDepth:     ds.HasDepth,
			HasStencil:   ds.HasStencil,
			DepthStore:   ds.DepthStore,
			StencilStore: ds.StencilStore,
		}
		if info.Extent == (backend.Dim3D{}) {
			info.Extent = ds.Target.Image().Internal().Extent()
		}
	}
	return info
}
