// Package backend declares the external GPU abstraction that the task
// graph engine consumes. It contains interfaces and plain value types
// only — no implementation ships in this module. A concrete backend
// (Vulkan, D3D12, Metal, or a test fake) satisfies these contracts.
package backend

// StageMask is a bitmask over pipeline stages. Access declarations and
// barriers carry a StageMask describing which stages touch a resource.
type StageMask uint32

const (
	StageTopOfPipe StageMask = 1 << iota
	StageBottomOfPipe
	StageCopy
	StageBlit
	StageTransfer
	StageComputeShader
	StageVertexInput
	StageVertexShader
	StageFragmentShader
	StageColorAttachmentOutput
	StageEarlyFragmentTests
	StageLateFragmentTests
	StageAccelerationStructureBuild
)

// AccessType classifies how a task touches a resource.
type AccessType uint8

const (
	AccessRead AccessType = iota
	AccessWrite
	AccessReadWrite
)

func (t AccessType) IsRead() bool  { return t == AccessRead || t == AccessReadWrite }
func (t AccessType) IsWrite() bool { return t == AccessWrite || t == AccessReadWrite }

// Access describes how a task touches a resource in one frame: which
// stages, and whether the touch reads, writes, or both.
type Access struct {
	Stages StageMask
	Type   AccessType
}

func (a Access) IsEmpty() bool { return a.Stages == 0 }

func (a Access) touchesTransfer() bool {
	return a.Stages&(StageCopy|StageBlit|StageTransfer) != 0
}

func (a Access) touchesAttachment() bool {
	return a.Stages&(StageColorAttachmentOutput|StageEarlyFragmentTests|StageLateFragmentTests) != 0
}

// BufferLayout is a buffer's current access regime as required by the
// backend.
type BufferLayout uint8

const (
	BufferLayoutUndefined BufferLayout = iota
	BufferLayoutTransferSrc
	BufferLayoutTransferDst
	BufferLayoutReadOnly
	BufferLayoutUnorderedAccess
)

func (l BufferLayout) String() string {
	switch l {
	case BufferLayoutTransferSrc:
		return "TransferSrc"
	case BufferLayoutTransferDst:
		return "TransferDst"
	case BufferLayoutReadOnly:
		return "ReadOnly"
	case BufferLayoutUnorderedAccess:
		return "UnorderedAccess"
	default:
		return "Undefined"
	}
}

// ImageLayout is an image's current access regime as required by the
// backend.
type ImageLayout uint8

const (
	ImageLayoutUndefined ImageLayout = iota
	ImageLayoutTransferSrc
	ImageLayoutTransferDst
	ImageLayoutBlitSrc
	ImageLayoutBlitDst
	ImageLayoutRenderTarget
	ImageLayoutRenderTargetReadOnly
	ImageLayoutReadOnly
	ImageLayoutUnorderedAccess
	ImageLayoutPresentSrc
)

func (l ImageLayout) String() string {
	switch l {
	case ImageLayoutTransferSrc:
		return "TransferSrc"
	case ImageLayoutTransferDst:
		return "TransferDst"
	case ImageLayoutBlitSrc:
		return "BlitSrc"
	case ImageLayoutBlitDst:
		return "BlitDst"
	case ImageLayoutRenderTarget:
		return "RenderTarget"
	case ImageLayoutRenderTargetReadOnly:
		return "RenderTargetReadOnly"
	case ImageLayoutReadOnly:
		return "ReadOnly"
	case ImageLayoutUnorderedAccess:
		return "UnorderedAccess"
	case ImageLayoutPresentSrc:
		return "PresentSrc"
	default:
		return "Undefined"
	}
}

// BufferBarrier transitions a buffer from one access/layout to another.
type BufferBarrier struct {
	Buffer    Buffer
	SrcAccess Access
	DstAccess Access
	SrcLayout BufferLayout
	DstLayout BufferLayout
}

// ImageBarrier transitions an image from one access/layout to another.
type ImageBarrier struct {
	Image     Image
	SrcAccess Access
	DstAccess Access
	SrcLayout ImageLayout
	DstLayout ImageLayout
}

// Usage is a bitset of ways a buffer or image may be used.
type Usage uint32

const (
	UsageTransferSrc Usage = 1 << iota
	UsageTransferDst
	UsageVertexBuffer
	UsageIndexBuffer
	UsageUniformBuffer
	UsageStorageBuffer
	UsageShaderResource
	UsageUnorderedAccess
	UsageColorTarget
	UsageDepthStencilTarget
	UsageBlitSrc
	UsageBlitDst
)

// PixelFmt names a pixel format. Only the subset this module's tests and
// examples need is enumerated; a real backend recognizes more.
type PixelFmt uint32

const (
	FmtUndefined PixelFmt = iota
	FmtRGBA8
	FmtBGRA8
	FmtD32Float
	FmtD24UnormS8Uint
	FmtR32Float
)

// Dim3D is a three-dimensional extent.
type Dim3D struct {
	Width, Height, Depth uint32 //nolint
}

// Off3D is a three-dimensional offset.
type Off3D struct {
	X, Y, Z int32
}

// Rect2D is an axis-aligned 2D sub-region, used for blit rects and
// scissor state.
type Rect2D struct {
	X, Y          int32
	Width, Height uint32
}

// Viewport describes a rasterizer viewport.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// PipelineBindPoint identifies which pipeline state a command list
// targets.
type PipelineBindPoint uint8

const (
	BindPointNone PipelineBindPoint = iota
	BindPointGraphics
	BindPointCompute
)

// TaskType identifies the kind of work a task performs. It doubles as
// the total order used by the compiler's reorder tie-break rule:
// declaration order below is the enum order.
type TaskType uint8

const (
	TaskTypeNone TaskType = iota
	TaskTypeGraphics
	TaskTypeCompute
	TaskTypeTransfer
)

func (t TaskType) String() string {
	switch t {
	case TaskTypeGraphics:
		return "Graphics"
	case TaskTypeCompute:
		return "Compute"
	case TaskTypeTransfer:
		return "Transfer"
	default:
		return "None"
	}
}

// IndexType names the width of an index buffer's elements.
type IndexType uint8

const (
	IndexTypeUint16 IndexType = iota
	IndexTypeUint32
)

// Limits reports backend-specific ceilings the core must respect.
type Limits struct {
	MaxColorTargets    uint32
	MaxPushConstantSize uint32
	RayTracing          bool
}
