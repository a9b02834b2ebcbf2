package resource

// ImageArraySlice names the mip level and array layer range a view
// covers.
type ImageArraySlice struct {
	MipLevel       uint32
	ArrayLayer     uint32
	ArrayLayerCount uint32
}

// ColorTargetInfo is the plain descriptor for a color render-target
// view over a TaskImage.
type ColorTargetInfo struct {
	Image TaskImage
	Slice ImageArraySlice
}

// colorTargetResource backs a TaskColorTarget handle.
type colorTargetResource struct {
	resourceBase
	info  ColorTargetInfo
	image TaskImage
}

// TaskColorTarget is a view over a TaskImage usable as a render-pass
// color attachment.
type TaskColorTarget struct{ res *colorTargetResource }

func (t TaskColorTarget) IsValid() bool      { return t.res != nil }
func (t TaskColorTarget) Id() uint32         { return t.res.Id() }
func (t TaskColorTarget) Image() TaskImage   { return t.res.image }

func (t TaskColorTarget) Release() {
	if !t.res.releaseOne() {
		return
	}
	t.res.image.Release()
	t.res.owner.releaseSlot(t.res.slot)
}

// CreateColorTarget registers a color-target view over an existing
// image. The view retains a reference to the image for its lifetime.
func (m *Manager) CreateColorTarget(info ColorTargetInfo) TaskColorTarget {
	res := &colorTargetResource{info: info, image: info.Image.Retain()}
	res.resourceBase.refs = 1
	m.register(res)
	return TaskColorTarget{res: res}
}

// DepthStencilTargetInfo is the plain descriptor for a depth/stencil
// render-target view.
type DepthStencilTargetInfo struct {
	Image      TaskImage
	Slice      ImageArraySlice
	HasDepth   bool
	HasStencil bool
	ReadOnly   bool
}

type depthStencilTargetResource struct {
	resourceBase
	info  DepthStencilTargetInfo
	image TaskImage
}

// TaskDepthStencilTarget is a view over a TaskImage usable as a
// render-pass depth/stencil attachment.
type TaskDepthStencilTarget struct{ res *depthStencilTargetResource }

func (t TaskDepthStencilTarget) IsValid() bool    { return t.res != nil }
func (t TaskDepthStencilTarget) Id() uint32       { return t.res.Id() }
func (t TaskDepthStencilTarget) Image() TaskImage { return t.res.image }
func (t TaskDepthStencilTarget) Info() DepthStencilTargetInfo { return t.res.info }

func (t TaskDepthStencilTarget) Release() {
	if !t.res.releaseOne() {
		return
	}
	t.res.image.Release()
	t.res.owner.releaseSlot(t.res.slot)
}

// CreateDepthStencilTarget registers a depth/stencil-target view over
// an existing image.
func (m *Manager) CreateDepthStencilTarget(info DepthStencilTargetInfo) TaskDepthStencilTarget {
	res := &depthStencilTargetResource{info: info, image: info.Image.Retain()}
	res.resourceBase.refs = 1
	m.register(res)
	return TaskDepthStencilTarget{res: res}
}
