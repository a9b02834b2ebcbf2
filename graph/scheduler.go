package graph

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/vkforge/taskgraph/backend"
)

// BeginFrame advances the CPU timeline, rebuilds any swap chain flagged
// for resize, and waits on the GPU timeline fence so the CPU may not
// build more than FramesInFlight frames ahead of the GPU.
// Build must have been called first. A wait timeout is fatal — it
// almost certainly indicates a GPU fault, not a recoverable condition.
func (g *TaskGraph) BeginFrame(timeoutMs uint32) {
	if !g.baked {
		g.fatalf("graph: BeginFrame called before Build")
	}
	if g.inFrame {
		g.fatalf("graph: BeginFrame called while already in a frame")
	}

	// The CPU timeline index is advanced before anything else in the
	// frame, to the value EndFrame will signal for this frame, so that
	// the wait below targets the frame that must have retired before
	// this one may begin.
	g.cpuTimelineIndex++
	g.inFrame = true

	for _, sc := range g.swapchains {
		if sc.NeedsResize() {
			g.gpu.WaitIdle()
			if err := sc.ResolveResize(g.gpu); err != nil {
				g.logger.Warn("swapchain resize failed", "err", err)
			}
		}
	}

	var waitFor uint64
	if g.cpuTimelineIndex > uint64(g.framesInFlight) {
		waitFor = g.cpuTimelineIndex - uint64(g.framesInFlight)
	}
	ctx, cancel := waitContext(timeoutMs)
	defer cancel()
	if !g.gpuFrameTimeline.WaitForValue(ctx, waitFor) {
		g.fatalf("graph: timed out waiting for GPU timeline value %d", waitFor)
	}
}

// Execute records the frame's command buffer: staging and dynamic
// buffer flushes, then every batch's barriers and tasks, each bracketed
// by timestamp writes. Must be called within a frame
// (after BeginFrame, before EndFrame).
func (g *TaskGraph) Execute() backend.CmdBuffer {
	if !g.inFrame {
		g.fatalf("graph: Execute called outside a frame")
	}

	cb, err := g.gpu.NewCmdBuffer()
	if err != nil {
		g.fatalf("graph: failed to acquire a command buffer: %v", err)
	}

	pool := g.timestampPools[g.frameIndex]
	if pool != nil {
		pool.Invalidate()
		cb.WriteTimestamp(pool, g.baseGraphTS)
		cb.WriteTimestamp(pool, g.baseFlushesTS)
	}

	g.resources.FlushStaging(cb)
	g.resources.FlushDynamic(cb, g.frameIndex)

	if pool != nil {
		cb.WriteTimestamp(pool, g.baseFlushesTS+1)
	}

	cl := newTaskCommandList(cb, g.gpu, g.resources)

	for bi, batch := range g.batches {
		cb.BeginLabel(batchLabel(bi), [4]float32{0.4, 0.4, 0.9, 1})
		for _, b := range batch.ImageBarriers {
			cb.ImageBarrier(b)
		}
		for _, b := range batch.BufferBarriers {
			cb.BufferBarrier(b)
		}

		for _, ti := range batch.TaskIds {
			t := g.tasks[ti]
			cl.setBindPoint(t.GetBindPoint())

			var base uint32
			if pool != nil {
				base = g.timestampBase[ti]
				cb.WriteTimestamp(pool, base)
			}

			isGraphics := t.GetKind() == backend.TaskTypeGraphics
			var rpInfo *backend.RenderPassInfo
			if gt, ok := t.(graphicsTargetProvider); ok && isGraphics {
				rpInfo = buildRenderPassInfo(gt)
				cb.BeginRenderPass(*rpInfo)
			}

			t.ExecuteTask(cl)

			if rpInfo != nil {
				cb.EndRenderPass()
			}
			if pool != nil {
				cb.WriteTimestamp(pool, base+1)
			}
		}
		cb.EndLabel()
	}

	if pool != nil {
		cb.WriteTimestamp(pool, g.baseGraphTS+1)
	}
	return cb
}

// EndFrame submits the frame's work, enqueues swap-chain presentations,
// and advances the frame index. The CPU timeline value reached at
// cpuTimelineIndex is fenced so BeginFrame for cpuTimelineIndex +
// FramesInFlight does not proceed until the GPU signals it.
func (g *TaskGraph) EndFrame(cb backend.CmdBuffer) {
	if !g.inFrame {
		g.fatalf("graph: EndFrame called outside a frame")
	}

	sem := g.renderFinished[g.frameIndex]
	if err := g.gpu.SubmitQueue(cb, g.gpuFrameTimeline, g.cpuTimelineIndex, sem, nil); err != nil {
		g.fatalf("graph: queue submission failed: %v", errors.Wrap(err, "EndFrame"))
	}
	for _, sc := range g.swapchains {
		if err := g.gpu.PresentQueue(sc.Internal(), sem); err != nil {
			g.logger.Warn("present failed", "err", err)
		}
	}

	g.frameIndex = (g.frameIndex + 1) % g.framesInFlight
	g.inFrame = false
}

// GetTaskTimingsNs returns the elapsed nanoseconds the most recently
// completed frame recorded for taskIdx (reads the pool one frame
// behind the one currently being built).
func (g *TaskGraph) GetTaskTimingsNs(taskIdx int) uint64 {
	pool := g.timestampPools[(g.frameIndex+1)%g.framesInFlight]
	if pool == nil {
		return 0
	}
	base := g.timestampBase[taskIdx]
	return pool.ResolveNanos(base, base+1)
}

// GetGraphTimingsNs returns the whole-graph elapsed nanoseconds for the
// most recently completed frame.
func (g *TaskGraph) GetGraphTimingsNs() uint64 {
	pool := g.timestampPools[(g.frameIndex+1)%g.framesInFlight]
	if pool == nil {
		return 0
	}
	return pool.ResolveNanos(g.baseGraphTS, g.baseGraphTS+1)
}

// GetMiscFlushesTimingsNs returns the staging/dynamic-buffer flush
// elapsed nanoseconds for the most recently completed frame.
func (g *TaskGraph) GetMiscFlushesTimingsNs() uint64 {
	pool := g.timestampPools[(g.frameIndex+1)%g.framesInFlight]
	if pool == nil {
		return 0
	}
	return pool.ResolveNanos(g.baseFlushesTS, g.baseFlushesTS+1)
}

func batchLabel(i int) string {
	return "Sync Barriers Batch #" + strconv.Itoa(i)
}
