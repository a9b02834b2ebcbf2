package graph_test

import (
	"testing"

	"github.com/vkforge/taskgraph/backend"
	"github.com/vkforge/taskgraph/internal/fakebackend"
	"github.com/vkforge/taskgraph/resource"
)

func TestAddSwapChainWriteBlitsIntoBackbuffer(t *testing.T) {
	g, res, _ := newTestGraph(t)

	src, err := res.CreatePersistentImage(resource.ImageInfo{
		Dimensions: resource.Dim2D, Format: backend.FmtRGBA8,
		Extent: backend.Dim3D{Width: 64, Height: 64, Depth: 1}, MipLevels: 1, ArrayLayers: 1,
		Usage: backend.UsageBlitSrc, Name: "offscreen",
	}, nil)
	if err != nil {
		t.Fatalf("CreatePersistentImage: unexpected error: %v", err)
	}

	sc, err := res.CreateSwapChain(fakebackend.Presenter{}, resource.SwapChainInfo{FramesInFlight: 2})
	if err != nil {
		t.Fatalf("CreateSwapChain: unexpected error: %v", err)
	}
	g.RegisterSwapchain(sc)

	g.AddSwapChainWrite(src, sc)
	g.Build()

	g.BeginFrame(0)
	cb := g.Execute()
	g.EndFrame(cb)

	fcb := cb.(*fakebackend.CmdBuffer)
	if len(fcb.ImageBarriers) == 0 {
		t.Errorf("AddSwapChainWrite: no image barrier recorded for the back-buffer present transition")
	} else {
		last := fcb.ImageBarriers[len(fcb.ImageBarriers)-1]
		if last.DstLayout != backend.ImageLayoutPresentSrc {
			t.Errorf("AddSwapChainWrite: final barrier DstLayout = %v, want PresentSrc", last.DstLayout)
		}
	}
}

func TestAddSwapChainWriteSkipsBlitOnOutOfDate(t *testing.T) {
	g, res, _ := newTestGraph(t)

	src, err := res.CreatePersistentImage(resource.ImageInfo{
		Dimensions: resource.Dim2D, Format: backend.FmtRGBA8,
		Extent: backend.Dim3D{Width: 64, Height: 64, Depth: 1}, MipLevels: 1, ArrayLayers: 1,
		Usage: backend.UsageBlitSrc, Name: "offscreen",
	}, nil)
	if err != nil {
		t.Fatalf("CreatePersistentImage: unexpected error: %v", err)
	}

	sc, err := res.CreateSwapChain(fakebackend.Presenter{}, resource.SwapChainInfo{FramesInFlight: 2})
	if err != nil {
		t.Fatalf("CreateSwapChain: unexpected error: %v", err)
	}
	g.RegisterSwapchain(sc)
	sc.Internal().(*fakebackend.Swapchain).ForceOutOfDate()

	g.AddSwapChainWrite(src, sc)
	g.Build()

	g.BeginFrame(0)
	cb := g.Execute()
	g.EndFrame(cb)

	// Only the compiled batch barrier that makes src blit-readable is
	// recorded; the task's own present transition is skipped.
	fcb := cb.(*fakebackend.CmdBuffer)
	if want := len(g.Batches()[0].ImageBarriers); len(fcb.ImageBarriers) != want {
		t.Errorf("AddSwapChainWrite: recorded %d image barriers on a forced ErrOutOfDate acquire, want %d (the compiled batch barriers only)", len(fcb.ImageBarriers), want)
	}
}
