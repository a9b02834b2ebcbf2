package backend

import "errors"

// Errors returned by Swapchain.Next/Present. ErrOutOfDate is not fatal:
// the swap-chain write task returns silently on it, and the next
// BeginFrame's resize pass recovers.
var (
	ErrOutOfDate     = errors.New("backend: swapchain out of date")
	ErrNoBackbuffer  = errors.New("backend: no backbuffer image available")
	ErrSurfaceLost   = errors.New("backend: presentation surface lost")
)

// SwapchainCreateInfo is the plain descriptor for backend swapchain
// creation.
type SwapchainCreateInfo struct {
	Format       PixelFmt
	FramesInFlight uint32
	VSync        bool
}

// Swapchain is a presentable chain of back-buffer images.
type Swapchain interface {
	// Next returns the index of the next back-buffer to render into, or
	// an error (commonly ErrOutOfDate) if acquisition failed.
	Next() (index uint32, err error)
	View(index uint32) Image
	Present(index uint32, wait Semaphore) error
	// Recreate rebuilds the swapchain in place, e.g. after a window
	// resize. Called only from BeginFrame's resize pass, never mid-frame.
	Recreate(info SwapchainCreateInfo) error
	Format() PixelFmt
}

// Presenter creates swapchains bound to a platform surface. The surface
// type itself (a window handle) is opaque to this module — window
// management is out of scope.
type Presenter interface {
	NewSwapchain(surface any, info SwapchainCreateInfo) (Swapchain, error)
}
