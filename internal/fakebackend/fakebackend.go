// Package fakebackend is an in-memory implementation of every backend
// interface, used only by this module's own tests in place of a real
// Vulkan/D3D12/Metal driver. Commands take effect as they are recorded
// and SubmitQueue signals the timeline fence immediately, so there is no
// real GPU latency to model.
package fakebackend

import (
	"context"
	"sync"

	"github.com/vkforge/taskgraph/backend"
)

// GPU is the fake device. Zero value is not usable; use New.
type GPU struct {
	mu         sync.Mutex
	limits     backend.Limits
	rowAlign   uint32
	waitIdleN  int
	submitN    int
}

// New constructs a fake GPU. rayTracing controls whether Limits()
// reports ray-tracing support, letting tests exercise both the
// capability-gated and capability-denied acceleration-structure paths.
func New(rayTracing bool) *GPU {
	return &GPU{
		limits:   backend.Limits{MaxColorTargets: 8, MaxPushConstantSize: 128, RayTracing: rayTracing},
		rowAlign: 256,
	}
}

func (g *GPU) Limits() backend.Limits          { return g.limits }
func (g *GPU) BufferImageRowAlignment() uint32 { return g.rowAlign }
func (g *GPU) WaitIdleCount() int              { g.mu.Lock(); defer g.mu.Unlock(); return g.waitIdleN }
func (g *GPU) SubmitCount() int                { g.mu.Lock(); defer g.mu.Unlock(); return g.submitN }

func (g *GPU) CreateBuffer(info backend.BufferCreateInfo) (backend.Buffer, error) {
	return &Buffer{size: info.Size, usage: info.Usage, cpuVisible: info.CpuVisible, data: make([]byte, info.Size), name: info.Name}, nil
}

func (g *GPU) CreateImage(info backend.ImageCreateInfo) (backend.Image, error) {
	size, _ := g.ImageSizeRequirements(info)
	return &Image{info: info, data: make([]byte, size)}, nil
}

func (g *GPU) CreateShaderResource(buf backend.Buffer, img backend.Image) (backend.ShaderResourceID, error) {
	return backend.ShaderResourceID(1), nil
}

func (g *GPU) CreateUnorderedAccess(buf backend.Buffer, img backend.Image) (backend.UnorderedAccessID, error) {
	return backend.UnorderedAccessID(1), nil
}

func (g *GPU) CreateSampler(info backend.SamplerCreateInfo) (backend.Sampler, error) { return struct{}{}, nil }

func (g *GPU) CreateRasterPipeline(info backend.RasterPipelineCreateInfo) (backend.Pipeline, error) {
	return &Pipeline{bindPoint: backend.BindPointGraphics}, nil
}

func (g *GPU) CreateComputePipeline(info backend.ComputePipelineCreateInfo) (backend.Pipeline, error) {
	return &Pipeline{bindPoint: backend.BindPointCompute}, nil
}

func (g *GPU) CreateSwapchain(info backend.SwapchainCreateInfo) (backend.Swapchain, error) {
	return newSwapchain(info), nil
}

func (g *GPU) CreateFence(initialValue uint64) (backend.Fence, error) {
	return &Fence{value: initialValue}, nil
}

func (g *GPU) CreateSemaphore() (backend.Semaphore, error) { return &struct{}{}, nil }

func (g *GPU) CreateTimestampQueryPool(count uint32) (backend.TimestampPool, error) {
	return &TimestampPool{slots: make([]uint64, count)}, nil
}

func (g *GPU) DestroyBuffer(b backend.Buffer)                        {}
func (g *GPU) DestroyImage(i backend.Image)                          {}
func (g *GPU) DestroyPipeline(p backend.Pipeline)                    {}
func (g *GPU) DestroySemaphore(s backend.Semaphore)                  {}
func (g *GPU) DestroyFence(f backend.Fence)                          {}
func (g *GPU) ReleaseShaderResource(id backend.ShaderResourceID)     {}
func (g *GPU) ReleaseUnorderedAccess(id backend.UnorderedAccessID)   {}
func (g *GPU) ReleaseSampler(id backend.SamplerID)                   {}

func (g *GPU) BufferHostAddress(b backend.Buffer) []byte { return b.(*Buffer).HostAddress() }

func (g *GPU) ImageSizeRequirements(info backend.ImageCreateInfo) (size uint64, rowPitch uint32) {
	bpp := uint32(4)
	rowPitch = alignUp(info.Extent.Width*bpp, g.rowAlign)
	mips := info.MipLevels
	if mips == 0 {
		mips = 1
	}
	layers := info.ArrayLayers
	if layers == 0 {
		layers = 1
	}
	var total uint64
	for mip := uint32(0); mip < mips; mip++ {
		h := info.Extent.Height >> mip
		if h == 0 {
			h = 1
		}
		total += uint64(rowPitch) * uint64(h) * uint64(layers)
	}
	return total, rowPitch
}

func alignUp(v, align uint32) uint32 {
	if align == 0 {
		return v
	}
	return (v + align - 1) / align * align
}

func (g *GPU) NewCmdBuffer() (backend.CmdBuffer, error) { return &CmdBuffer{}, nil }

func (g *GPU) SubmitQueue(cb backend.CmdBuffer, signalFence backend.Fence, signalValue uint64, signalBinary, waitBinary backend.Semaphore) error {
	g.mu.Lock()
	g.submitN++
	g.mu.Unlock()

	if signalFence != nil {
		signalFence.(*Fence).signal(signalValue)
	}
	return nil
}

func (g *GPU) PresentQueue(sc backend.Swapchain, wait backend.Semaphore) error { return nil }

func (g *GPU) WaitIdle() { g.mu.Lock(); g.waitIdleN++; g.mu.Unlock() }

// Buffer is the fake backend.Buffer.
type Buffer struct {
	size       uint64
	usage      backend.Usage
	cpuVisible bool
	data       []byte
	name       string
}

func (b *Buffer) HostAddress() []byte {
	if !b.cpuVisible {
		return nil
	}
	return b.data
}
func (b *Buffer) Size() uint64        { return b.size }
func (b *Buffer) Usage() backend.Usage { return b.usage }

// Image is the fake backend.Image.
type Image struct {
	info backend.ImageCreateInfo
	data []byte
}

func (i *Image) Format() backend.PixelFmt { return i.info.Format }
func (i *Image) Extent() backend.Dim3D    { return i.info.Extent }
func (i *Image) MipLevels() uint32        { return i.info.MipLevels }
func (i *Image) ArrayLayers() uint32      { return i.info.ArrayLayers }
func (i *Image) Usage() backend.Usage     { return i.info.Usage }

// Pipeline is the fake backend.Pipeline.
type Pipeline struct{ bindPoint backend.PipelineBindPoint }

func (p *Pipeline) BindPoint() backend.PipelineBindPoint { return p.bindPoint }

// Fence is the fake backend.Fence: a plain monotonic counter guarded by
// a mutex, since SubmitQueue signals it synchronously.
type Fence struct {
	mu    sync.Mutex
	value uint64
}

func (f *Fence) signal(v uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v > f.value {
		f.value = v
	}
}

func (f *Fence) SignaledValue() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *Fence) WaitForValue(ctx context.Context, value uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value >= value
}

// TimestampPool is the fake backend.TimestampPool. Since there is no
// real GPU clock to sample, ResolveNanos reports a synthetic 1000ns per
// write recorded in the pair's two slots since the last Invalidate, so
// an unwritten pair resolves to 0.
type TimestampPool struct {
	mu    sync.Mutex
	slots []uint64
}

func (p *TimestampPool) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.slots {
		p.slots[i] = 0
	}
}

func (p *TimestampPool) WriteTimestamp(cb backend.CmdBuffer, index uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.slots[index]++
}

func (p *TimestampPool) ResolveNanos(beginIndex, endIndex uint32) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return (p.slots[beginIndex] + p.slots[endIndex]) * 1000
}
