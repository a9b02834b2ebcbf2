package resource

import "github.com/vkforge/taskgraph/backend"

// CreateShaderResourceView creates a shader-visible read view over a
// buffer or image. Exactly one of buf/img should be valid; pass the zero value
// for the other.
func (m *Manager) CreateShaderResourceView(buf TaskBuffer, img TaskImage) (backend.ShaderResourceID, error) {
	var bb backend.Buffer
	var bi backend.Image
	if buf.IsValid() {
		bb = buf.Internal()
	}
	if img.IsValid() {
		bi = img.Internal()
	}
	id, err := m.gpu.CreateShaderResource(bb, bi)
	if err != nil {
		return 0, m.backendFailure("CreateShaderResourceView", err)
	}
	return id, nil
}

// CreateUnorderedAccessView creates a shader-visible read/write view
// over a buffer or image.
func (m *Manager) CreateUnorderedAccessView(buf TaskBuffer, img TaskImage) (backend.UnorderedAccessID, error) {
	var bb backend.Buffer
	var bi backend.Image
	if buf.IsValid() {
		bb = buf.Internal()
	}
	if img.IsValid() {
		bi = img.Internal()
	}
	id, err := m.gpu.CreateUnorderedAccess(bb, bi)
	if err != nil {
		return 0, m.backendFailure("CreateUnorderedAccessView", err)
	}
	return id, nil
}

// samplerResource backs the slot a CreateSampler call registers. Unlike
// ShaderResourceID/UnorderedAccessID, the backend hands back an opaque
// Sampler object rather than an id, so the manager assigns one itself
// the same way it does for every other slot-tracked resource.
type samplerResource struct {
	resourceBase
	sampler backend.Sampler
}

// CreateSampler creates a backend sampler, registers it in the slot
// table, and returns a manager-assigned id unique among live samplers.
func (m *Manager) CreateSampler(info backend.SamplerCreateInfo) (backend.SamplerID, error) {
	s, err := m.gpu.CreateSampler(info)
	if err != nil {
		return 0, m.backendFailure("CreateSampler", err)
	}
	res := &samplerResource{sampler: s}
	res.refs = 1
	slot := m.register(res)
	return backend.SamplerID(slot), nil
}

func (m *Manager) ReleaseShaderResourceView(id backend.ShaderResourceID) { m.gpu.ReleaseShaderResource(id) }
func (m *Manager) ReleaseUnorderedAccessView(id backend.UnorderedAccessID) {
	m.gpu.ReleaseUnorderedAccess(id)
}

// ReleaseSampler releases the slot CreateSampler assigned id and tells
// the backend to release the sampler it identifies.
func (m *Manager) ReleaseSampler(id backend.SamplerID) {
	m.releaseSlot(uint32(id))
	m.gpu.ReleaseSampler(id)
}
