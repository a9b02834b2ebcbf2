package task

import (
	"github.com/vkforge/taskgraph/backend"
	"github.com/vkforge/taskgraph/resource"
)

const maxColorTargets = 8

// ColorTargetBinding is one bound color attachment, with the implicit
// access declaration binding it carries.
type ColorTargetBinding struct {
	Target   resource.TaskColorTarget
	Clear    *[4]float32
	Blending bool
	Resolve  resource.TaskColorTarget
}

// DepthStencilTargetBinding is the bound depth/stencil attachment.
type DepthStencilTargetBinding struct {
	Target       resource.TaskDepthStencilTarget
	DepthClear   *float32
	StencilClear *uint32
	ReadOnly     bool
	HasStencil   bool
	HasDepth     bool
	DepthStore   bool
	StencilStore bool
}

// GraphicsTaskBase is embedded by any concrete graphics task (including
// GraphicsCallbackTask). It adds BindColorTarget/BindDepthStencilTarget
// on top of base's buffer/image dependency declaration.
type GraphicsTaskBase struct {
	base
	colorTargets       []ColorTargetBinding
	depthStencilTarget *DepthStencilTargetBinding
}

func (g *GraphicsTaskBase) GetBindPoint() backend.PipelineBindPoint { return backend.BindPointGraphics }
func (g *GraphicsTaskBase) GetKind() backend.TaskType               { return backend.TaskTypeGraphics }

func (g *GraphicsTaskBase) ColorTargets() []ColorTargetBinding { return g.colorTargets }
func (g *GraphicsTaskBase) DepthStencilTarget() *DepthStencilTargetBinding {
	return g.depthStencilTarget
}

// BindColorTarget binds a color attachment, up to maxColorTargets.
// Implicitly declares a COLOR_ATTACHMENT_OUTPUT write access on the
// target's image (read/write if Blending is set); a Resolve target adds
// a second write access.
func (g *GraphicsTaskBase) BindColorTarget(b ColorTargetBinding) {
	if len(g.colorTargets) >= maxColorTargets {
		panic("task: graphics task cannot bind more than 8 color targets")
	}
	g.colorTargets = append(g.colorTargets, b)

	accessType := backend.AccessWrite
	if b.Blending {
		accessType = backend.AccessReadWrite
	}
	g.UseImage(ImageDependency{
		Image:  b.Target.Image(),
		Access: backend.Access{Stages: backend.StageColorAttachmentOutput, Type: accessType},
	})
	if b.Resolve.IsValid() {
		g.UseImage(ImageDependency{
			Image:  b.Resolve.Image(),
			Access: backend.Access{Stages: backend.StageColorAttachmentOutput, Type: backend.AccessWrite},
		})
	}
}

// BindDepthStencilTarget binds the single depth/stencil attachment.
// Calling it twice is an invariant violation.
func (g *GraphicsTaskBase) BindDepthStencilTarget(b DepthStencilTargetBinding) {
	if g.depthStencilTarget != nil {
		panic("task: graphics task cannot bind two depth-stencil targets")
	}
	g.depthStencilTarget = &b

	accessType := backend.AccessReadWrite
	if b.ReadOnly {
		accessType = backend.AccessRead
	}
	g.UseImage(ImageDependency{
		Image:  b.Target.Image(),
		Access: backend.Access{Stages: backend.StageEarlyFragmentTests | backend.StageLateFragmentTests, Type: accessType},
	})
}
