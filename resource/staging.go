package resource

import (
	"github.com/vkforge/taskgraph/backend"
)

// stagingUploadData is one destination copy entry within a pending
// staging-upload pair: either a buffer or an image destination, never
// both.
type stagingUploadData struct {
	dstBuffer       backend.Buffer
	dstBufferLayout backend.BufferLayout

	dstImage       backend.Image
	dstImageLayout backend.ImageLayout
	mipLevel       uint32
	rowPitch       uint32

	ownerBuf *bufferResource
	ownerImg *imageResource
}

// stagingUploadPair is a transient host-visible source buffer together
// with every destination copy it feeds.
type stagingUploadPair struct {
	srcBuffer backend.Buffer
	uploads   []stagingUploadData
}

func (m *Manager) enqueueBufferUpload(res *bufferResource, data []byte) error {
	staging, err := m.gpu.CreateBuffer(backend.BufferCreateInfo{
		Size: uint64(len(data)), CpuVisible: true, Usage: backend.UsageTransferSrc,
		Name: res.info.Name + ".staging",
	})
	if err != nil {
		return m.backendFailure("enqueueBufferUpload", err)
	}
	copy(staging.HostAddress(), data)

	m.mu.Lock()
	m.pendingUploads = append(m.pendingUploads, stagingUploadPair{
		srcBuffer: staging,
		uploads: []stagingUploadData{{
			dstBuffer:       res.primary,
			dstBufferLayout: backend.BufferLayoutReadOnly,
			ownerBuf:        res,
		}},
	})
	m.mu.Unlock()
	return nil
}

func (m *Manager) enqueueImageUpload(res *imageResource, data []byte) error {
	size, rowPitch := m.gpu.ImageSizeRequirements(backend.ImageCreateInfo{
		Format: res.info.Format, Extent: res.info.Extent, MipLevels: res.info.MipLevels,
		ArrayLayers: res.info.ArrayLayers, Samples: res.info.Samples, Usage: res.info.Usage,
	})
	staging, err := m.gpu.CreateBuffer(backend.BufferCreateInfo{
		Size: size, CpuVisible: true, Usage: backend.UsageTransferSrc,
		Name: res.info.Name + ".staging",
	})
	if err != nil {
		return m.backendFailure("enqueueImageUpload", err)
	}

	// Copy the caller's tightly-packed rows into the staging buffer's
	// row-pitched layout, one mip level at a time.
	dst := staging.HostAddress()
	mipCount := res.info.MipLevels
	if mipCount == 0 {
		mipCount = 1
	}
	tightPitch := uint32(len(data)) / mipCount
	uploads := make([]stagingUploadData, 0, mipCount)
	var srcOff, dstOff uint32
	rowsPerMip := res.info.Extent.Height
	for mip := uint32(0); mip < mipCount; mip++ {
		rows := rowsPerMip >> mip
		if rows == 0 {
			rows = 1
		}
		rowBytes := tightPitch / maxu32(rowsPerMip, 1)
		for r := uint32(0); r < rows && int(dstOff)+int(rowPitch) <= len(dst) && int(srcOff)+int(rowBytes) <= len(data); r++ {
			copy(dst[dstOff:dstOff+rowPitch], data[srcOff:srcOff+rowBytes])
			srcOff += rowBytes
			dstOff += rowPitch
		}
		uploads = append(uploads, stagingUploadData{
			dstImage:       res.primary,
			dstImageLayout: backend.ImageLayoutReadOnly,
			mipLevel:       mip,
			rowPitch:       rowPitch,
			ownerImg:       res,
		})
	}

	m.mu.Lock()
	m.pendingUploads = append(m.pendingUploads, stagingUploadPair{srcBuffer: staging, uploads: uploads})
	m.mu.Unlock()
	return nil
}

func maxu32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// purgeStagingFor removes any pending upload entry referencing buf or
// img, called when either is released before its upload has flushed.
// Caller must hold m.mu.
func (m *Manager) purgeStagingFor(buf *bufferResource, img *imageResource) {
	kept := m.pendingUploads[:0:0]
	for _, pair := range m.pendingUploads {
		filtered := pair.uploads[:0:0]
		for _, u := range pair.uploads {
			if (buf != nil && u.ownerBuf == buf) || (img != nil && u.ownerImg == img) {
				continue
			}
			filtered = append(filtered, u)
		}
		if len(filtered) > 0 {
			pair.uploads = filtered
			kept = append(kept, pair)
		}
	}
	m.pendingUploads = kept
}

// FlushStaging executes every pending staging upload and clears the
// pending list. Invoked once per frame by the graph package's frame
// scheduler, before FlushDynamic.
func (m *Manager) FlushStaging(cb backend.CmdBuffer) {
	m.mu.Lock()
	pending := m.pendingUploads
	m.pendingUploads = nil
	m.mu.Unlock()

	hostWrite := backend.Access{Stages: backend.StageTopOfPipe, Type: backend.AccessWrite}
	transferRead := backend.Access{Stages: backend.StageTransfer, Type: backend.AccessRead}
	transferWrite := backend.Access{Stages: backend.StageTransfer, Type: backend.AccessWrite}

	for _, pair := range pending {
		cb.BufferBarrier(backend.BufferBarrier{
			Buffer: pair.srcBuffer, SrcAccess: hostWrite, DstAccess: transferRead,
			SrcLayout: backend.BufferLayoutUndefined, DstLayout: backend.BufferLayoutTransferSrc,
		})
		for _, u := range pair.uploads {
			switch {
			case u.dstBuffer != nil:
				cb.BufferBarrier(backend.BufferBarrier{
					Buffer: u.dstBuffer, SrcAccess: backend.Access{}, DstAccess: transferWrite,
					SrcLayout: backend.BufferLayoutUndefined, DstLayout: backend.BufferLayoutTransferDst,
				})
				cb.CopyBufferToBuffer(backend.CopyBufferToBuffer{Src: pair.srcBuffer, Dst: u.dstBuffer, Size: u.dstBuffer.Size()})
				cb.BufferBarrier(backend.BufferBarrier{
					Buffer: u.dstBuffer, SrcAccess: transferWrite, DstAccess: backend.Access{},
					SrcLayout: backend.BufferLayoutTransferDst, DstLayout: u.dstBufferLayout,
				})
			case u.dstImage != nil:
				cb.ImageBarrier(backend.ImageBarrier{
					Image: u.dstImage, SrcAccess: backend.Access{}, DstAccess: transferWrite,
					SrcLayout: backend.ImageLayoutUndefined, DstLayout: backend.ImageLayoutTransferDst,
				})
				cb.CopyBufferToImage(backend.CopyBufferToImage{
					Src: pair.srcBuffer, Dst: u.dstImage, RowPitch: u.rowPitch, MipLevel: u.mipLevel,
					Extent: u.dstImage.Extent(),
				})
				cb.ImageBarrier(backend.ImageBarrier{
					Image: u.dstImage, SrcAccess: transferWrite, DstAccess: backend.Access{},
					SrcLayout: backend.ImageLayoutTransferDst, DstLayout: u.dstImageLayout,
				})
			}
		}
		cb.DestroyDeferred(pair.srcBuffer)
	}
}
