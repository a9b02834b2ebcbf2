package resource

import (
	"github.com/vkforge/taskgraph/backend"
)

// Dimension names an image's dimensionality.
type Dimension uint8

const (
	Dim1D Dimension = iota
	Dim2D
	Dim3D
	DimCube
)

// ImageInfo is the plain descriptor for a persistent image.
type ImageInfo struct {
	Dimensions  Dimension
	Format      backend.PixelFmt
	Extent      backend.Dim3D
	MipLevels   uint32
	ArrayLayers uint32
	Samples     uint32
	Usage       backend.Usage
	Name        string
}

// imageResource is the concrete state behind a TaskImage handle.
type imageResource struct {
	resourceBase
	info    ImageInfo
	primary backend.Image
}

// TaskImage is a reference-counted handle to a persistent image
// resource.
type TaskImage struct {
	res *imageResource
}

func (i TaskImage) IsValid() bool            { return i.res != nil }
func (i TaskImage) Id() uint32               { return i.res.Id() }
func (i TaskImage) Info() ImageInfo          { return i.res.info }
func (i TaskImage) Internal() backend.Image  { return i.res.primary }

func (i TaskImage) Retain() TaskImage {
	i.res.retain()
	return i
}

func (i TaskImage) Release() {
	if !i.res.releaseOne() {
		return
	}
	i.res.owner.releaseImageResource(i.res)
}

// CreatePersistentImage mirrors CreatePersistentBuffer. When
// initialData is non-empty it computes a row-aligned staging pitch
// from the backend's reported device properties, copies the caller's
// tightly-packed rows into row-pitched staging rows, and enqueues one
// upload entry per mip level.
func (m *Manager) CreatePersistentImage(info ImageInfo, initialData []byte) (TaskImage, error) {
	img, err := m.gpu.CreateImage(backend.ImageCreateInfo{
		Format: info.Format, Extent: info.Extent, MipLevels: info.MipLevels,
		ArrayLayers: info.ArrayLayers, Samples: info.Samples, Usage: info.Usage, Name: info.Name,
	})
	if err != nil {
		return TaskImage{}, m.backendFailure("CreatePersistentImage", err)
	}
	res := &imageResource{info: info, primary: img}
	res.resourceBase.refs = 1
	m.register(res)

	if len(initialData) > 0 {
		if err := m.enqueueImageUpload(res, initialData); err != nil {
			return TaskImage{}, err
		}
	}
	return TaskImage{res: res}, nil
}

func (m *Manager) releaseImageResource(res *imageResource) {
	m.releaseSlot(res.slot)
	m.mu.Lock()
	m.purgeStagingFor(nil, res)
	m.mu.Unlock()
	m.gpu.DestroyImage(res.primary)
}
