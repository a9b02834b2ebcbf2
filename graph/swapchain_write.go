package graph

import (
	"github.com/vkforge/taskgraph/backend"
	"github.com/vkforge/taskgraph/resource"
	"github.com/vkforge/taskgraph/task"
)

// AddSwapChainWrite synthesizes a transfer task that transitions the
// next available back-buffer of sc to BlitDst, blits src into it, and
// transitions it to PresentSrc —
// the terminal step of any frame that presents. The source
// image's blit-read access is declared like any other task dependency,
// so the compiler schedules the barrier that makes it readable before
// this task's batch runs.
//
// Acquisition failure due to ErrOutOfDate is not an invariant
// violation: the task silently skips its blit, and the next
// BeginFrame's resize pass is expected to recreate the swap chain
// before the following frame reaches this task again.
func (g *TaskGraph) AddSwapChainWrite(src resource.TaskImage, sc resource.TaskSwapChain) int {
	logger := g.logger

	t := task.NewCustomCallbackTask(
		task.Info{Name: "SwapChainWrite"},
		backend.TaskTypeTransfer,
		func(b *task.CustomTaskBase) {
			b.UseImage(task.ImageDependency{
				Image:  src,
				Access: backend.Access{Stages: backend.StageBlit, Type: backend.AccessRead},
			})
		},
		func(cb backend.CmdBuffer) {
			index, err := sc.Internal().Next()
			if err != nil {
				if err != backend.ErrOutOfDate {
					logger.Warn("swapchain acquire failed", "err", err)
				}
				return
			}
			back := sc.Internal().View(index)
			srcExtent := src.Internal().Extent()
			dstExtent := back.Extent()

			cb.ImageBarrier(backend.ImageBarrier{
				Image:     back,
				SrcAccess: backend.Access{},
				DstAccess: backend.Access{Stages: backend.StageBlit, Type: backend.AccessWrite},
				SrcLayout: backend.ImageLayoutUndefined,
				DstLayout: backend.ImageLayoutBlitDst,
			})
			cb.BlitImageToImage(backend.BlitImageToImage{
				Src:     src.Internal(),
				Dst:     back,
				SrcRect: backend.Rect2D{Width: srcExtent.Width, Height: srcExtent.Height},
				DstRect: backend.Rect2D{Width: dstExtent.Width, Height: dstExtent.Height},
			})
			cb.ImageBarrier(backend.ImageBarrier{
				Image:     back,
				SrcAccess: backend.Access{Stages: backend.StageBlit, Type: backend.AccessWrite},
				DstAccess: backend.Access{},
				SrcLayout: backend.ImageLayoutBlitDst,
				DstLayout: backend.ImageLayoutPresentSrc,
			})
		},
	)

	idx := g.AddTask(t)
	g.swapchainWrites = append(g.swapchainWrites, idx)
	return idx
}
