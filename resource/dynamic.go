package resource

import "github.com/vkforge/taskgraph/backend"

// FlushDynamic refreshes every dynamic buffer's primary for the given
// frame index. Called after FlushStaging.
//
// CpuVisible dynamic buffers simply re-point primary at the frame's
// replica (zero-copy). Non-CpuVisible dynamic buffers copy the
// host-written replica into the device-local primary, bracketed by
// barriers.
func (m *Manager) FlushDynamic(cb backend.CmdBuffer, frameIndex uint32) {
	m.mu.Lock()
	buffers := make([]*bufferResource, len(m.dynamicBuffers))
	copy(buffers, m.dynamicBuffers)
	m.mu.Unlock()

	hostWrite := backend.Access{Stages: backend.StageTopOfPipe, Type: backend.AccessWrite}
	transferRead := backend.Access{Stages: backend.StageTransfer, Type: backend.AccessRead}
	transferWrite := backend.Access{Stages: backend.StageTransfer, Type: backend.AccessWrite}

	for _, res := range buffers {
		res.currentInFlight = frameIndex
		replica := res.replicas[frameIndex]

		if res.info.CpuVisible {
			res.primary = replica
			continue
		}

		cb.BufferBarrier(backend.BufferBarrier{
			Buffer: replica, SrcAccess: hostWrite, DstAccess: transferRead,
			SrcLayout: backend.BufferLayoutUndefined, DstLayout: backend.BufferLayoutTransferSrc,
		})
		cb.BufferBarrier(backend.BufferBarrier{
			Buffer: res.primary, SrcAccess: backend.Access{}, DstAccess: transferWrite,
			SrcLayout: backend.BufferLayoutUndefined, DstLayout: backend.BufferLayoutTransferDst,
		})
		cb.CopyBufferToBuffer(backend.CopyBufferToBuffer{Src: replica, Dst: res.primary, Size: res.primary.Size()})
		cb.BufferBarrier(backend.BufferBarrier{
			Buffer: res.primary, SrcAccess: transferWrite, DstAccess: backend.Access{},
			SrcLayout: backend.BufferLayoutTransferDst, DstLayout: backend.BufferLayoutReadOnly,
		})
	}
}
