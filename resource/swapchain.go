package resource

import "github.com/vkforge/taskgraph/backend"

// SwapChainFormat names a presentation format class, independent of the
// backend's exact pixel format enumeration.
type SwapChainFormat uint8

const (
	SwapChainFormat8Bit SwapChainFormat = iota
	SwapChainFormat10Bit
	SwapChainFormat16BitHDR
)

func (f SwapChainFormat) pixelFmt() backend.PixelFmt {
	switch f {
	case SwapChainFormat10Bit, SwapChainFormat16BitHDR:
		return backend.FmtBGRA8 // placeholder: HDR/10-bit formats are backend-specific
	default:
		return backend.FmtBGRA8
	}
}

// SwapChainInfo is the plain descriptor for a presentable swap chain.
type SwapChainInfo struct {
	Surface        any
	Format         SwapChainFormat
	VSync          bool
	FramesInFlight uint32
}

type swapChainResource struct {
	resourceBase
	info       SwapChainInfo
	swapchain  backend.Swapchain
	needResize bool
}

// TaskSwapChain is a reference-counted handle to a presentable swap
// chain.
type TaskSwapChain struct{ res *swapChainResource }

func (s TaskSwapChain) IsValid() bool                  { return s.res != nil }
func (s TaskSwapChain) Id() uint32                     { return s.res.Id() }
func (s TaskSwapChain) Internal() backend.Swapchain    { return s.res.swapchain }
func (s TaskSwapChain) NeedsResize() bool              { return s.res.needResize }

// Resize flags the swap chain for rebuild at the next BeginFrame's
// resize pass.
func (s TaskSwapChain) Resize() { s.res.needResize = true }

// ResolveResize rebuilds the backend swap chain and clears the resize
// flag. Called only by the graph package's BeginFrame.
func (s TaskSwapChain) ResolveResize(gpu backend.GPU) error {
	if !s.res.needResize {
		return nil
	}
	s.res.needResize = false
	return s.res.swapchain.Recreate(backend.SwapchainCreateInfo{
		Format: s.res.info.Format.pixelFmt(), FramesInFlight: s.res.info.FramesInFlight, VSync: s.res.info.VSync,
	})
}

func (s TaskSwapChain) Release() {
	if !s.res.releaseOne() {
		return
	}
	s.res.owner.releaseSlot(s.res.slot)
}

// CreateSwapChain creates a backend swap chain bound to a platform
// surface.
func (m *Manager) CreateSwapChain(presenter backend.Presenter, info SwapChainInfo) (TaskSwapChain, error) {
	sc, err := presenter.NewSwapchain(info.Surface, backend.SwapchainCreateInfo{
		Format: info.Format.pixelFmt(), FramesInFlight: info.FramesInFlight, VSync: info.VSync,
	})
	if err != nil {
		return TaskSwapChain{}, m.backendFailure("CreateSwapChain", err)
	}
	res := &swapChainResource{info: info, swapchain: sc}
	res.resourceBase.refs = 1
	m.register(res)
	return TaskSwapChain{res: res}, nil
}
