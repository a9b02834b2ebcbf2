package resource

import "github.com/vkforge/taskgraph/backend"

// dirtyable is implemented by every pipeline type so a shader's
// back-set can mark any referencing pipeline dirty without knowing its
// concrete kind.
type dirtyable interface {
	markDirty()
}

// shaderResource is the concrete state behind a TaskShader handle.
type shaderResource struct {
	resourceBase
	bytecode []byte
	stage    backend.StageMask
	usedBy   map[dirtyable]struct{}
}

// TaskShader is a reference-counted handle to a shader bytecode blob.
// Its back-set of referencing pipelines is consulted on reload.
type TaskShader struct{ res *shaderResource }

func (s TaskShader) IsValid() bool { return s.res != nil }
func (s TaskShader) Id() uint32    { return s.res.Id() }

func (s TaskShader) Retain() TaskShader {
	s.res.retain()
	return s
}

func (s TaskShader) Release() {
	if !s.res.releaseOne() {
		return
	}
	s.res.owner.releaseSlot(s.res.slot)
}

func (s TaskShader) addUser(p dirtyable) {
	if s.res.usedBy == nil {
		s.res.usedBy = make(map[dirtyable]struct{})
	}
	s.res.usedBy[p] = struct{}{}
}

func (s TaskShader) removeUser(p dirtyable) { delete(s.res.usedBy, p) }

// CreateShader registers a shader bytecode blob with the manager. The
// shader-language front end that produced bytecode is out of scope;
// this only owns the resulting blob's lifetime and back-set.
func (m *Manager) CreateShader(bytecode []byte, stage backend.StageMask) TaskShader {
	res := &shaderResource{bytecode: append([]byte(nil), bytecode...), stage: stage}
	res.resourceBase.refs = 1
	m.register(res)
	return TaskShader{res: res}
}

// TaskShaderInfo pairs a referenced shader with its specialization
// constants, mirroring the original's per-stage shader-info struct.
type TaskShaderInfo struct {
	Shader                  TaskShader
	SpecializationConstants []byte
}

// RasterPipelineShaders names the (currently vertex+fragment) stages a
// raster pipeline references.
type RasterPipelineShaders struct {
	Vertex   TaskShaderInfo
	Fragment TaskShaderInfo
}

// RasterPipelineInfo is the plain descriptor for a raster pipeline,
// independent of the shaders bound to it (which may be hot-swapped).
type RasterPipelineInfo struct {
	ColorFormats       []backend.PixelFmt
	DepthStencilFormat backend.PixelFmt
	Name               string
}

type rasterPipelineResource struct {
	resourceBase
	info     RasterPipelineInfo
	shaders  RasterPipelineShaders
	pipeline backend.Pipeline
	dirty    bool
}

func (p *rasterPipelineResource) markDirty() { p.dirty = true }

func (p *rasterPipelineResource) recreate(gpu backend.GPU) error {
	pipe, err := gpu.CreateRasterPipeline(backend.RasterPipelineCreateInfo{
		VertexBytecode:          p.shaders.Vertex.Shader.res.bytecode,
		FragmentBytecode:        p.shaders.Fragment.Shader.res.bytecode,
		SpecializationConstants: append(p.shaders.Vertex.SpecializationConstants, p.shaders.Fragment.SpecializationConstants...),
		ColorFormats:            p.info.ColorFormats,
		DepthStencilFormat:      p.info.DepthStencilFormat,
	})
	if err != nil {
		return err
	}
	p.pipeline = pipe
	return nil
}

// TaskRasterPipeline is a reference-counted handle to a raster
// pipeline. It is marked dirty whenever a referenced shader reloads and
// is rebuilt lazily on next use.
type TaskRasterPipeline struct{ res *rasterPipelineResource }

func (p TaskRasterPipeline) IsValid() bool           { return p.res != nil }
func (p TaskRasterPipeline) Id() uint32              { return p.res.Id() }
func (p TaskRasterPipeline) IsDirty() bool           { return p.res.dirty }
func (p TaskRasterPipeline) Internal() backend.Pipeline { return p.res.pipeline }

// Refresh rebuilds the backend pipeline if it is dirty, deferring
// destruction of the stale backend object until the GPU has finished
// with it. It is a no-op when the pipeline is clean. Called by
// graph.TaskCommandList before every SetRasterPipeline.
func (p TaskRasterPipeline) Refresh(cb backend.CmdBuffer, gpu backend.GPU, logger backendFailureLogger) {
	if !p.res.dirty {
		return
	}
	p.res.dirty = false
	if p.res.pipeline != nil {
		cb.DestroyDeferred(p.res.pipeline)
	}
	if err := p.res.recreate(gpu); err != nil {
		logger.backendFailure("RefreshRasterPipeline", err)
	}
}

func (p TaskRasterPipeline) Release() {
	if !p.res.releaseOne() {
		return
	}
	p.res.shaders.Vertex.Shader.removeUser(p.res)
	p.res.shaders.Fragment.Shader.removeUser(p.res)
	p.res.shaders.Vertex.Shader.Release()
	p.res.shaders.Fragment.Shader.Release()
	p.res.owner.releaseSlot(p.res.slot)
	if p.res.pipeline != nil {
		p.res.owner.gpu.DestroyPipeline(p.res.pipeline)
	}
}

// CreateRasterPipeline registers a raster pipeline, retains its
// referenced shaders, registers itself in each shader's back-set, and
// performs the initial build.
func (m *Manager) CreateRasterPipeline(info RasterPipelineInfo, shaders RasterPipelineShaders) (TaskRasterPipeline, error) {
	res := &rasterPipelineResource{info: info, shaders: shaders, dirty: false}
	res.resourceBase.refs = 1
	shaders.Vertex.Shader.Retain()
	shaders.Fragment.Shader.Retain()
	shaders.Vertex.Shader.addUser(res)
	shaders.Fragment.Shader.addUser(res)
	m.register(res)
	if err := res.recreate(m.gpu); err != nil {
		return TaskRasterPipeline{}, m.backendFailure("CreateRasterPipeline", err)
	}
	return TaskRasterPipeline{res: res}, nil
}

// ComputePipelineInfo is the plain descriptor for a compute pipeline.
type ComputePipelineInfo struct {
	Name string
}

type computePipelineResource struct {
	resourceBase
	info     ComputePipelineInfo
	shader   TaskShaderInfo
	pipeline backend.Pipeline
	dirty    bool
}

func (p *computePipelineResource) markDirty() { p.dirty = true }

func (p *computePipelineResource) recreate(gpu backend.GPU) error {
	pipe, err := gpu.CreateComputePipeline(backend.ComputePipelineCreateInfo{
		Bytecode:                p.shader.Shader.res.bytecode,
		SpecializationConstants: p.shader.SpecializationConstants,
	})
	if err != nil {
		return err
	}
	p.pipeline = pipe
	return nil
}

// TaskComputePipeline is a reference-counted handle to a compute
// pipeline, analogous to TaskRasterPipeline.
type TaskComputePipeline struct{ res *computePipelineResource }

func (p TaskComputePipeline) IsValid() bool              { return p.res != nil }
func (p TaskComputePipeline) Id() uint32                 { return p.res.Id() }
func (p TaskComputePipeline) IsDirty() bool              { return p.res.dirty }
func (p TaskComputePipeline) Internal() backend.Pipeline { return p.res.pipeline }

func (p TaskComputePipeline) Refresh(cb backend.CmdBuffer, gpu backend.GPU, logger backendFailureLogger) {
	if !p.res.dirty {
		return
	}
	p.res.dirty = false
	if p.res.pipeline != nil {
		cb.DestroyDeferred(p.res.pipeline)
	}
	if err := p.res.recreate(gpu); err != nil {
		logger.backendFailure("RefreshComputePipeline", err)
	}
}

func (p TaskComputePipeline) Release() {
	if !p.res.releaseOne() {
		return
	}
	p.res.shader.Shader.removeUser(p.res)
	p.res.shader.Shader.Release()
	p.res.owner.releaseSlot(p.res.slot)
	if p.res.pipeline != nil {
		p.res.owner.gpu.DestroyPipeline(p.res.pipeline)
	}
}

// CreateComputePipeline registers a compute pipeline.
func (m *Manager) CreateComputePipeline(info ComputePipelineInfo, shader TaskShaderInfo) (TaskComputePipeline, error) {
	res := &computePipelineResource{info: info, shader: shader}
	res.resourceBase.refs = 1
	shader.Shader.Retain()
	shader.Shader.addUser(res)
	m.register(res)
	if err := res.recreate(m.gpu); err != nil {
		return TaskComputePipeline{}, m.backendFailure("CreateComputePipeline", err)
	}
	return TaskComputePipeline{res: res}, nil
}

// backendFailureLogger is the minimal contract TaskRasterPipeline.Refresh
// and TaskComputePipeline.Refresh need to report a failed rebuild
// without importing *Manager's full surface. *Manager satisfies it.
type backendFailureLogger interface {
	backendFailure(op string, err error) error
}

// ShaderReloadListener receives rebuilt bytecode from an external
// shader compiler and marks every referencing pipeline dirty. The
// actual pipeline rebuild is deferred to next use.
type ShaderReloadListener struct {
	owner *Manager
}

// OnShaderReload swaps shader's bytecode and marks every pipeline in
// its back-set dirty.
func (l *ShaderReloadListener) OnShaderReload(shader TaskShader, newBytecode []byte) {
	shader.res.bytecode = append([]byte(nil), newBytecode...)
	for p := range shader.res.usedBy {
		p.markDirty()
	}
}
