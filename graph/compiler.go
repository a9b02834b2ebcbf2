package graph

import (
	"sort"

	"github.com/vkforge/taskgraph/backend"
)

// Build runs the five-phase compiler: parent computation,
// Kahn-like topological batching, barrier synthesis, intra-batch
// reordering, and timestamp-pool instrumentation. After Build the graph
// is baked; AddTask is rejected until Reset.
func (g *TaskGraph) Build() {
	if g.baked {
		g.fatalf("graph: Build called on an already-baked graph")
	}

	parents, children := g.computeParents()
	g.batches = g.batchTopologically(parents, children)
	g.synthesizeBarriers()
	g.reorderBatches()
	g.instrumentTimestamps()

	g.baked = true
	g.logger.Info("graph build complete", "tasks", len(g.tasks), "batches", len(g.batches))
}

// computeParents is Phase 1: for every task, in insertion order, record
// the most recent prior task that touched each of its declared
// resources as a parent. Every repeated touch — read or write — creates
// an edge; concurrent reads are serialized pessimistically rather than
// merged into a shared read set.
func (g *TaskGraph) computeParents() (parents [][]int, children [][]int) {
	n := len(g.tasks)
	parents = make([][]int, n)
	children = make([][]int, n)
	lastToucher := make(map[uint32]int)

	addParent := func(i int, slot uint32) {
		if p, ok := lastToucher[slot]; ok {
			if !containsInt(parents[i], p) {
				parents[i] = append(parents[i], p)
			}
		}
		lastToucher[slot] = i
	}

	for i, t := range g.tasks {
		for _, bd := range t.BufferDependencies() {
			addParent(i, bd.Buffer.Id())
		}
		for _, id := range t.ImageDependencies() {
			addParent(i, id.Image.Id())
		}
		for _, ad := range t.AccelDependencies() {
			addParent(i, ad.Accel.Id())
		}
	}
	for i, ps := range parents {
		for _, p := range ps {
			children[p] = append(children[p], i)
		}
	}
	return parents, children
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// batchTopologically is Phase 2: repeatedly select every task whose
// parent set is now empty as the next batch.
func (g *TaskGraph) batchTopologically(parents, children [][]int) []Batch {
	n := len(g.tasks)
	parentsLeft := make([]int, n)
	for i := range parents {
		parentsLeft[i] = len(parents[i])
	}
	processed := make([]bool, n)
	var batches []Batch
	remaining := n

	for remaining > 0 {
		var batch []int
		for i := 0; i < n; i++ {
			if !processed[i] && parentsLeft[i] == 0 {
				batch = append(batch, i)
			}
		}
		if len(batch) == 0 {
			g.fatalf("graph: dependency cycle detected among %d unbatched tasks", remaining)
		}
		for _, i := range batch {
			processed[i] = true
		}
		remaining -= len(batch)
		for _, i := range batch {
			for _, c := range children[i] {
				parentsLeft[c]--
			}
		}
		batches = append(batches, Batch{TaskIds: batch})
	}
	return batches
}

// synthesizeBarriers is Phase 3: a second pass over batches in order,
// tracking each resource's current access and emitting a barrier
// whenever a task's declared access differs from it.
func (g *TaskGraph) synthesizeBarriers() {
	currentBufferAccess := make(map[uint32]backend.Access)
	currentImageAccess := make(map[uint32]backend.Access)

	for bi := range g.batches {
		var bufBarriers []backend.BufferBarrier
		var imgBarriers []backend.ImageBarrier

		for _, ti := range g.batches[bi].TaskIds {
			t := g.tasks[ti]
			for _, bd := range t.BufferDependencies() {
				slot := bd.Buffer.Id()
				cur := currentBufferAccess[slot]
				if !accessEqual(cur, bd.Access) {
					bufBarriers = append(bufBarriers, backend.BufferBarrier{
						Buffer:    bd.Buffer.Internal(),
						SrcAccess: cur,
						DstAccess: bd.Access,
						SrcLayout: g.layoutForBuffer(cur),
						DstLayout: g.layoutForBuffer(bd.Access),
					})
					currentBufferAccess[slot] = bd.Access
				}
			}
			for _, id := range t.ImageDependencies() {
				slot := id.Image.Id()
				cur := currentImageAccess[slot]
				if !accessEqual(cur, id.Access) {
					imgBarriers = append(imgBarriers, backend.ImageBarrier{
						Image:     id.Image.Internal(),
						SrcAccess: cur,
						DstAccess: id.Access,
						SrcLayout: g.layoutForImage(cur),
						DstLayout: g.layoutForImage(id.Access),
					})
					currentImageAccess[slot] = id.Access
				}
			}
		}
		g.batches[bi].BufferBarriers = bufBarriers
		g.batches[bi].ImageBarriers = imgBarriers
	}
}

func accessEqual(a, b backend.Access) bool { return a.Stages == b.Stages && a.Type == b.Type }

// layoutForBuffer implements the buffer half of the layout-derivation
// rule: TransferSrc if transfer+read-only, TransferDst if
// transfer+write-only, ReadOnly if read-only, UnorderedAccess if any
// write, Undefined if access is empty. Mixing transfer read and write
// in one access is a fatal programmer error.
func (g *TaskGraph) layoutForBuffer(a backend.Access) backend.BufferLayout {
	if a.IsEmpty() {
		return backend.BufferLayoutUndefined
	}
	if a.Stages&(backend.StageCopy|backend.StageBlit|backend.StageTransfer) != 0 {
		switch a.Type {
		case backend.AccessRead:
			return backend.BufferLayoutTransferSrc
		case backend.AccessWrite:
			return backend.BufferLayoutTransferDst
		default:
			g.fatalf("graph: mixed transfer read+write in a single buffer access")
		}
	}
	if a.Type == backend.AccessRead {
		return backend.BufferLayoutReadOnly
	}
	return backend.BufferLayoutUnorderedAccess
}

// layoutForImage implements the image half of the layout-derivation
// rule: TransferSrc/Dst, BlitSrc/Dst, RenderTarget/RenderTargetReadOnly
// for attachment-output/fragment-test stages, ReadOnly/UnorderedAccess
// otherwise, Undefined for empty access.
func (g *TaskGraph) layoutForImage(a backend.Access) backend.ImageLayout {
	if a.IsEmpty() {
		return backend.ImageLayoutUndefined
	}
	if a.Stages&(backend.StageColorAttachmentOutput|backend.StageEarlyFragmentTests|backend.StageLateFragmentTests) != 0 {
		if a.Type == backend.AccessRead {
			return backend.ImageLayoutRenderTargetReadOnly
		}
		return backend.ImageLayoutRenderTarget
	}
	if a.Stages&backend.StageBlit != 0 {
		switch a.Type {
		case backend.AccessRead:
			return backend.ImageLayoutBlitSrc
		case backend.AccessWrite:
			return backend.ImageLayoutBlitDst
		default:
			g.fatalf("graph: mixed blit read+write in a single image access")
		}
	}
	if a.Stages&(backend.StageCopy|backend.StageTransfer) != 0 {
		switch a.Type {
		case backend.AccessRead:
			return backend.ImageLayoutTransferSrc
		case backend.AccessWrite:
			return backend.ImageLayoutTransferDst
		default:
			g.fatalf("graph: mixed transfer read+write in a single image access")
		}
	}
	if a.Type == backend.AccessRead {
		return backend.ImageLayoutReadOnly
	}
	return backend.ImageLayoutUnorderedAccess
}

// reorderBatches is Phase 4: stable-sort each batch's task ids biased
// for queue-type locality. A task ranks earliest if its kind matches
// the previous batch's (already-sorted) trailing kind; ranks latest if
// its kind matches the next batch's leading kind (read from that
// batch's pre-sort order, the only order available at this point in
// the forward pass); otherwise ties break by kind enum order.
func (g *TaskGraph) reorderBatches() {
	var prevTrailingKind backend.TaskType
	havePrev := false

	for bi := range g.batches {
		ids := g.batches[bi].TaskIds

		var nextLeadingKind backend.TaskType
		haveNext := false
		if bi+1 < len(g.batches) && len(g.batches[bi+1].TaskIds) > 0 {
			nextLeadingKind = g.tasks[g.batches[bi+1].TaskIds[0]].GetKind()
			haveNext = true
		}

		rank := func(taskIdx int) int {
			kind := g.tasks[taskIdx].GetKind()
			if havePrev && kind == prevTrailingKind {
				return 0
			}
			if haveNext && kind == nextLeadingKind {
				return 2
			}
			return 1
		}

		sort.SliceStable(ids, func(a, b int) bool {
			ra, rb := rank(ids[a]), rank(ids[b])
			if ra != rb {
				return ra < rb
			}
			if ra == 1 {
				return g.tasks[ids[a]].GetKind() < g.tasks[ids[b]].GetKind()
			}
			return false
		})

		g.batches[bi].TaskIds = ids
		if len(ids) > 0 {
			prevTrailingKind = g.tasks[ids[len(ids)-1]].GetKind()
			havePrev = true
		}
	}
}

// instrumentTimestamps is Phase 5: allocate per-frame-in-flight
// timestamp pools sized 2*|tasks|+4, assign each task a base index 2*i
// in final execution order, and reserve two pair-slots for the whole
// graph and for misc flushes.
func (g *TaskGraph) instrumentTimestamps() {
	n := len(g.tasks)
	g.executionOrder = make([]int, 0, n)
	for _, b := range g.batches {
		g.executionOrder = append(g.executionOrder, b.TaskIds...)
	}
	g.timestampBase = make(map[int]uint32, n)
	for pos, taskIdx := range g.executionOrder {
		g.timestampBase[taskIdx] = uint32(2 * pos)
	}
	g.baseGraphTS = uint32(2 * n)
	g.baseFlushesTS = uint32(2*n + 2)

	poolSize := uint32(2*n + 4)
	g.timestampPools = make([]backend.TimestampPool, g.framesInFlight)
	for i := range g.timestampPools {
		pool, err := g.gpu.CreateTimestampQueryPool(poolSize)
		if err != nil {
			g.logger.Warn("failed to create timestamp pool", "frame", i, "err", err)
			continue
		}
		g.timestampPools[i] = pool
	}
}
