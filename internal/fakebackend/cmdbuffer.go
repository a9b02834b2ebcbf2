package fakebackend

import "github.com/vkforge/taskgraph/backend"

// CmdBuffer is the fake backend.CmdBuffer. Every command executes
// immediately against the fake Buffer/Image byte storage rather than
// being deferred to submission time, since the fake has no real
// asynchronous queue to model. Barriers, labels, and draws/dispatches
// are only recorded for test assertions.
type CmdBuffer struct {
	Labels         []string
	ImageBarriers  []backend.ImageBarrier
	BufferBarriers []backend.BufferBarrier
	Draws          int
	Dispatches     int
	RenderPasses   []backend.RenderPassInfo
	Deferred       []any
	bindPoint      backend.PipelineBindPoint
}

func (c *CmdBuffer) BeginLabel(name string, color [4]float32) { c.Labels = append(c.Labels, name) }
func (c *CmdBuffer) EndLabel()                                 {}

func (c *CmdBuffer) BufferBarrier(b backend.BufferBarrier) { c.BufferBarriers = append(c.BufferBarriers, b) }
func (c *CmdBuffer) ImageBarrier(b backend.ImageBarrier)   { c.ImageBarriers = append(c.ImageBarriers, b) }

func (c *CmdBuffer) CopyBufferToBuffer(info backend.CopyBufferToBuffer) {
	src := info.Src.(*Buffer)
	dst := info.Dst.(*Buffer)
	size := info.Size
	if size == 0 {
		size = dst.size
	}
	copy(dst.data[info.DstOffset:info.DstOffset+size], src.data[info.SrcOffset:info.SrcOffset+size])
}

func (c *CmdBuffer) CopyBufferToImage(info backend.CopyBufferToImage) {
	src := info.Src.(*Buffer)
	dst := info.Dst.(*Image)
	n := len(src.data) - int(info.SrcOffset)
	if n > len(dst.data) {
		n = len(dst.data)
	}
	if n > 0 {
		copy(dst.data[:n], src.data[info.SrcOffset:int(info.SrcOffset)+n])
	}
}

func (c *CmdBuffer) CopyImageToImage(info backend.CopyImageToImage) {
	src := info.Src.(*Image)
	dst := info.Dst.(*Image)
	n := len(src.data)
	if n > len(dst.data) {
		n = len(dst.data)
	}
	copy(dst.data[:n], src.data[:n])
}

func (c *CmdBuffer) BlitImageToImage(info backend.BlitImageToImage) {
	src := info.Src.(*Image)
	dst := info.Dst.(*Image)
	n := len(src.data)
	if n > len(dst.data) {
		n = len(dst.data)
	}
	copy(dst.data[:n], src.data[:n])
}

func (c *CmdBuffer) ClearUnorderedAccessView(view backend.UnorderedAccessID, clear [4]float32) {}

func (c *CmdBuffer) UpdateBuffer(buf backend.Buffer, offset uint64, data []byte) {
	b := buf.(*Buffer)
	copy(b.data[offset:offset+uint64(len(data))], data)
}

func (c *CmdBuffer) PushConstant(bindPoint backend.PipelineBindPoint, data []byte, offset uint32) {}

func (c *CmdBuffer) SetUniformBufferView(bindPoint backend.PipelineBindPoint, slot uint32, buf backend.Buffer) {
}
func (c *CmdBuffer) SetUnorderedAccessView(bindPoint backend.PipelineBindPoint, slot uint32, view backend.UnorderedAccessID) {
}

func (c *CmdBuffer) SetRasterPipeline(p backend.Pipeline)  { c.bindPoint = backend.BindPointGraphics }
func (c *CmdBuffer) SetComputePipeline(p backend.Pipeline) { c.bindPoint = backend.BindPointCompute }
func (c *CmdBuffer) SetViewport(v backend.Viewport)        {}
func (c *CmdBuffer) SetScissor(r backend.Rect2D)            {}
func (c *CmdBuffer) SetVertexBuffer(slot uint32, buf backend.Buffer, offset uint64) {}
func (c *CmdBuffer) SetIndexBuffer(buf backend.Buffer, offset uint64, indexType backend.IndexType) {
}

func (c *CmdBuffer) Draw(info backend.DrawInfo)               { c.Draws++ }
func (c *CmdBuffer) DrawIndexed(info backend.DrawIndexedInfo) { c.Draws++ }
func (c *CmdBuffer) DrawIndirect(indirect backend.Buffer, offset uint64, count, stride uint32) {
	c.Draws++
}
func (c *CmdBuffer) DrawIndexedIndirect(indirect backend.Buffer, offset uint64, count, stride uint32) {
	c.Draws++
}

func (c *CmdBuffer) Dispatch(info backend.DispatchInfo)                   { c.Dispatches++ }
func (c *CmdBuffer) DispatchIndirect(indirect backend.Buffer, offset uint64) { c.Dispatches++ }

func (c *CmdBuffer) BeginRenderPass(info backend.RenderPassInfo) { c.RenderPasses = append(c.RenderPasses, info) }
func (c *CmdBuffer) EndRenderPass()                              {}

func (c *CmdBuffer) WriteTimestamp(pool backend.TimestampPool, index uint32) {
	pool.WriteTimestamp(c, index)
}
func (c *CmdBuffer) InvalidateTimestampPool(pool backend.TimestampPool) { pool.Invalidate() }

func (c *CmdBuffer) BuildAccelerationStructure(blas bool, info backend.AccelerationStructureBuildInfo) {
}

func (c *CmdBuffer) DestroyDeferred(obj any) { c.Deferred = append(c.Deferred, obj) }
