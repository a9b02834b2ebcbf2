package fakebackend

import "github.com/vkforge/taskgraph/backend"

// Swapchain is the fake backend.Swapchain: a fixed ring of in-memory
// back-buffer images that never reports ErrOutOfDate on its own. Tests
// that want to exercise the resize/ErrOutOfDate path call ForceOutOfDate.
type Swapchain struct {
	info       backend.SwapchainCreateInfo
	views      []*Image
	next       uint32
	outOfDate  bool
}

func newSwapchain(info backend.SwapchainCreateInfo) *Swapchain {
	n := info.FramesInFlight
	if n == 0 {
		n = 2
	}
	sc := &Swapchain{info: info}
	sc.views = make([]*Image, n)
	for i := range sc.views {
		sc.views[i] = &Image{info: backend.ImageCreateInfo{
			Format: info.Format, Extent: backend.Dim3D{Width: 1920, Height: 1080, Depth: 1},
			MipLevels: 1, ArrayLayers: 1, Usage: backend.UsageBlitDst,
		}, data: make([]byte, 1920*1080*4)}
	}
	return sc
}

// ForceOutOfDate makes the next Next call return backend.ErrOutOfDate,
// mirroring a platform-reported surface resize.
func (s *Swapchain) ForceOutOfDate() { s.outOfDate = true }

func (s *Swapchain) Next() (uint32, error) {
	if s.outOfDate {
		s.outOfDate = false
		return 0, backend.ErrOutOfDate
	}
	index := s.next
	s.next = (s.next + 1) % uint32(len(s.views))
	return index, nil
}

func (s *Swapchain) View(index uint32) backend.Image { return s.views[index] }
func (s *Swapchain) Present(index uint32, wait backend.Semaphore) error { return nil }
func (s *Swapchain) Format() backend.PixelFmt { return s.info.Format }

func (s *Swapchain) Recreate(info backend.SwapchainCreateInfo) error {
	s.info = info
	for i := range s.views {
		s.views[i] = &Image{info: backend.ImageCreateInfo{
			Format: info.Format, Extent: backend.Dim3D{Width: 1920, Height: 1080, Depth: 1},
			MipLevels: 1, ArrayLayers: 1, Usage: backend.UsageBlitDst,
		}, data: make([]byte, 1920*1080*4)}
	}
	return nil
}

// Presenter is the fake backend.Presenter: it ignores the surface
// argument entirely and always creates a working in-memory swap chain.
type Presenter struct{}

func (Presenter) NewSwapchain(surface any, info backend.SwapchainCreateInfo) (backend.Swapchain, error) {
	return newSwapchain(info), nil
}
