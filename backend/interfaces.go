package backend

import "context"

// Buffer is a backend-owned linear memory allocation.
type Buffer interface {
	// HostAddress returns the mapped address for a host-visible buffer,
	// or nil if the buffer is device-local only.
	HostAddress() []byte
	Size() uint64
	Usage() Usage
}

// Image is a backend-owned image allocation.
type Image interface {
	Format() PixelFmt
	Extent() Dim3D
	MipLevels() uint32
	ArrayLayers() uint32
	Usage() Usage
}

// Pipeline is an opaque backend raster or compute pipeline object.
type Pipeline interface {
	BindPoint() PipelineBindPoint
}

// Sampler is an opaque backend sampler object.
type Sampler interface{}

// Fence is a monotonic timeline fence used to coordinate CPU frame
// pacing with GPU completion.
type Fence interface {
	// WaitForValue blocks until the fence has reached value or ctx is
	// done, returning false on timeout/cancellation.
	WaitForValue(ctx context.Context, value uint64) bool
	SignaledValue() uint64
}

// TimestampPool is a per-frame-in-flight pool of GPU timestamp query
// slots, sized by the compiler's timestamp-instrumentation pass at
// Build time.
type TimestampPool interface {
	Invalidate()
	WriteTimestamp(cb CmdBuffer, index uint32)
	// ResolveNanos returns the elapsed nanoseconds between the begin and
	// end indices of a timestamp pair, once the GPU work has completed.
	ResolveNanos(beginIndex, endIndex uint32) uint64
}

// RenderPassInfo describes the attachments a graphics task renders into.
type RenderPassInfo struct {
	ColorTargets      []ColorTargetBinding
	DepthStencil      *DepthStencilTargetBinding
	Extent            Dim3D
}

// ColorTargetBinding is one bound color attachment for a render pass.
type ColorTargetBinding struct {
	Image      Image
	Clear      *[4]float32
	Blending   bool
	Resolve    Image
}

// DepthStencilTargetBinding is the bound depth/stencil attachment for a
// render pass.
type DepthStencilTargetBinding struct {
	Image        Image
	DepthClear   *float32
	StencilClear *uint32
	ReadOnly     bool
	HasDepth     bool
	HasStencil   bool
	DepthStore   bool
	StencilStore bool
}

// CopyBufferToBuffer describes a buffer-to-buffer copy region.
type CopyBufferToBuffer struct {
	Src, Dst           Buffer
	SrcOffset, DstOffset uint64
	Size               uint64
}

// CopyBufferToImage describes a buffer-to-image copy region, respecting
// row pitch and array slice.
type CopyBufferToImage struct {
	Src           Buffer
	Dst           Image
	SrcOffset     uint64
	RowPitch      uint32
	MipLevel      uint32
	ArrayLayer    uint32
	DstOffset     Off3D
	Extent        Dim3D
}

// CopyImageToImage describes an image-to-image copy region.
type CopyImageToImage struct {
	Src, Dst               Image
	SrcMipLevel, DstMipLevel uint32
	SrcLayer, DstLayer     uint32
	SrcOffset, DstOffset   Off3D
	Extent                 Dim3D
}

// BlitImageToImage describes a rect-to-rect blit, optionally stretching.
type BlitImageToImage struct {
	Src, Dst   Image
	SrcRect    Rect2D
	DstRect    Rect2D
}

// DrawInfo describes a non-indexed draw call.
type DrawInfo struct {
	VertexCount, InstanceCount uint32
	FirstVertex, FirstInstance uint32
}

// DrawIndexedInfo describes an indexed draw call.
type DrawIndexedInfo struct {
	IndexCount, InstanceCount uint32
	FirstIndex                uint32
	VertexOffset               int32
	FirstInstance               uint32
}

// DispatchInfo describes a compute dispatch.
type DispatchInfo struct {
	GroupsX, GroupsY, GroupsZ uint32
}

// CmdBuffer is a recorded sequence of GPU commands, naming every
// operation a backend implementation must expose to the rest of this
// module.
type CmdBuffer interface {
	BeginLabel(name string, color [4]float32)
	EndLabel()

	BufferBarrier(b BufferBarrier)
	ImageBarrier(b ImageBarrier)

	CopyBufferToBuffer(info CopyBufferToBuffer)
	CopyBufferToImage(info CopyBufferToImage)
	CopyImageToImage(info CopyImageToImage)
	BlitImageToImage(info BlitImageToImage)

	ClearUnorderedAccessView(view UnorderedAccessID, clear [4]float32)
	UpdateBuffer(buf Buffer, offset uint64, data []byte)
	PushConstant(bindPoint PipelineBindPoint, data []byte, offset uint32)

	SetUniformBufferView(bindPoint PipelineBindPoint, slot uint32, buf Buffer)
	SetUnorderedAccessView(bindPoint PipelineBindPoint, slot uint32, view UnorderedAccessID)

	SetRasterPipeline(p Pipeline)
	SetComputePipeline(p Pipeline)
	SetViewport(v Viewport)
	SetScissor(r Rect2D)
	SetVertexBuffer(slot uint32, buf Buffer, offset uint64)
	SetIndexBuffer(buf Buffer, offset uint64, indexType IndexType)

	Draw(info DrawInfo)
	DrawIndexed(info DrawIndexedInfo)
	DrawIndirect(indirect Buffer, offset uint64, count uint32, stride uint32)
	DrawIndexedIndirect(indirect Buffer, offset uint64, count uint32, stride uint32)
	Dispatch(info DispatchInfo)
	DispatchIndirect(indirect Buffer, offset uint64)

	BeginRenderPass(info RenderPassInfo)
	EndRenderPass()

	WriteTimestamp(pool TimestampPool, index uint32)
	InvalidateTimestampPool(pool TimestampPool)

	BuildAccelerationStructure(blas bool, info AccelerationStructureBuildInfo)

	// DestroyDeferred schedules a backend object for destruction once
	// the GPU has finished all submissions referencing this command
	// buffer's epoch.
	DestroyDeferred(obj any)
}

// AccelerationStructureBuildInfo parameterizes a BLAS/TLAS build command.
type AccelerationStructureBuildInfo struct {
	VertexBuffer, IndexBuffer Buffer
	InstanceBuffer            Buffer
	InstanceCount             uint32
}

// ShaderResourceID and UnorderedAccessID are opaque indices handed back
// by the backend, used from shader code via a bindless or descriptor
// table mechanism the backend owns.
type ShaderResourceID uint32
type UnorderedAccessID uint32
type SamplerID uint32

// ShaderCreateInfo is the plain descriptor used to create a shader
// module from compiled bytecode.
type ShaderCreateInfo struct {
	Bytecode []byte
	Stage    StageMask
}

// RasterPipelineCreateInfo is the plain descriptor for a raster
// pipeline, referencing already-created shader stage bytecode and
// specialization constants.
type RasterPipelineCreateInfo struct {
	VertexBytecode, FragmentBytecode []byte
	SpecializationConstants         []byte
	ColorFormats                    []PixelFmt
	DepthStencilFormat              PixelFmt
}

// ComputePipelineCreateInfo is the plain descriptor for a compute
// pipeline.
type ComputePipelineCreateInfo struct {
	Bytecode                 []byte
	SpecializationConstants []byte
}

// GPU is the device-level backend contract the core requires: every
// operation the resource and graph packages consume from a concrete
// backend.
type GPU interface {
	CreateBuffer(info BufferCreateInfo) (Buffer, error)
	CreateImage(info ImageCreateInfo) (Image, error)
	CreateShaderResource(buf Buffer, img Image) (ShaderResourceID, error)
	CreateUnorderedAccess(buf Buffer, img Image) (UnorderedAccessID, error)
	CreateSampler(info SamplerCreateInfo) (Sampler, error)
	CreateRasterPipeline(info RasterPipelineCreateInfo) (Pipeline, error)
	CreateComputePipeline(info ComputePipelineCreateInfo) (Pipeline, error)
	CreateSwapchain(info SwapchainCreateInfo) (Swapchain, error)
	CreateFence(initialValue uint64) (Fence, error)
	CreateSemaphore() (Semaphore, error)
	CreateTimestampQueryPool(count uint32) (TimestampPool, error)

	DestroyBuffer(b Buffer)
	DestroyImage(i Image)
	DestroyPipeline(p Pipeline)
	DestroySemaphore(s Semaphore)
	DestroyFence(f Fence)
	ReleaseShaderResource(id ShaderResourceID)
	ReleaseUnorderedAccess(id UnorderedAccessID)
	ReleaseSampler(id SamplerID)

	BufferHostAddress(b Buffer) []byte
	ImageSizeRequirements(info ImageCreateInfo) (size uint64, rowPitch uint32)
	BufferImageRowAlignment() uint32

	NewCmdBuffer() (CmdBuffer, error)
	SubmitQueue(cb CmdBuffer, signalFence Fence, signalValue uint64, signalBinary, waitBinary Semaphore) error
	PresentQueue(sc Swapchain, wait Semaphore) error
	WaitIdle()

	Limits() Limits
}

// Semaphore is an opaque per-frame-in-flight binary semaphore used to
// order submission against presentation.
type Semaphore interface{}

// BufferCreateInfo is the plain descriptor for backend buffer creation.
type BufferCreateInfo struct {
	Size       uint64
	Usage      Usage
	CpuVisible bool
	Name       string
}

// ImageCreateInfo is the plain descriptor for backend image creation.
type ImageCreateInfo struct {
	Format      PixelFmt
	Extent      Dim3D
	MipLevels   uint32
	ArrayLayers uint32
	Samples     uint32
	Usage       Usage
	Name        string
}

// SamplerCreateInfo is the plain descriptor for backend sampler creation.
type SamplerCreateInfo struct {
	MinFilter, MagFilter int
	AddressMode          int
}
