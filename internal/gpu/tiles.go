//go:build !nogpu

package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/tiles.wgsl
var tilesShaderSource string

// TileVertexStride is the byte stride per vertex of the tile pipeline.
// Layout per vertex:
//
//	position (vec2<f32>) = 8 bytes  (location "position")
//	color    (vec4<f32>) = 16 bytes (location "color")
//
// Total = 24 bytes per vertex.
const TileVertexStride = 24

// VerticesPerTile is the vertex count of one tile quad (two triangles).
const VerticesPerTile = 6

// tileUniformSize is the byte size of the mvp uniform (mat4x4<f32>).
const tileUniformSize = 64

// tileSampleCount is the MSAA sample count of the offscreen target.
const tileSampleCount = 4

// copyRowAlignment is the required BytesPerRow alignment of texture to
// buffer copies.
const copyRowAlignment = 256

// initialVertexCapacity is the vertex buffer size allocated at setup.
const initialVertexCapacity = 1024 * VerticesPerTile * TileVertexStride

// TilePipeline owns every GPU object needed to draw heatmap tiles into an
// offscreen target and read the result back: the program, the pipeline, the
// mvp uniform, one reusable vertex buffer and the MSAA/resolve textures.
//
// A TilePipeline is not safe for concurrent use.
type TilePipeline struct {
	device hal.Device
	queue  hal.Queue

	program       *Program
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipeline      hal.RenderPipeline
	uniformBuf    hal.Buffer
	bindGroup     hal.BindGroup

	vertexBuf hal.Buffer
	vertexCap uint64

	msaaTex     hal.Texture
	msaaView    hal.TextureView
	resolveTex  hal.Texture
	resolveView hal.TextureView

	width, height uint32
}

// NewTilePipeline builds the tile program, looks up its "position" and
// "color" attributes and "mvp" uniform, creates the render pipeline and
// allocates the uniform and vertex buffers.
//
// On failure every object created so far is destroyed before the error is
// returned; a *ProgramError carries the compiler log.
func NewTilePipeline(device hal.Device, queue hal.Queue) (*TilePipeline, error) {
	return NewTilePipelineWithSource(device, queue, tilesShaderSource)
}

// NewTilePipelineWithSource is like NewTilePipeline with a replacement
// shader. The shader must declare the same attributes and uniform.
func NewTilePipelineWithSource(device hal.Device, queue hal.Queue, source string) (*TilePipeline, error) {
	p := &TilePipeline{device: device, queue: queue}
	if err := p.setup(source); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *TilePipeline) setup(source string) error {
	program, err := BuildProgram(p.device, "heatmap_tiles_shader", source)
	if err != nil {
		return err
	}
	p.program = program

	if err := program.Require([]string{"position", "color"}, []string{"mvp"}); err != nil {
		return err
	}
	posLoc, _ := program.Locations.Attribute("position")
	colorLoc, _ := program.Locations.Attribute("color")
	mvpSlot, _ := program.Locations.Uniform("mvp")

	uniformLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "heatmap_tiles_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    mvpSlot.Binding,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create uniform layout: %w", err)
	}
	p.uniformLayout = uniformLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "heatmap_tiles_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "heatmap_tiles_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     program.Shader(),
			EntryPoint: program.Locations.VertexEntry,
			Buffers:    tileVertexLayout(posLoc, colorLoc),
		},
		Fragment: &hal.FragmentState{
			Module:     program.Shader(),
			EntryPoint: program.Locations.FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatBGRA8Unorm,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: tileSampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return &ProgramError{Stage: "link", Err: fmt.Errorf("create render pipeline: %w", err)}
	}
	p.pipeline = pipeline

	uniformBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "heatmap_tiles_mvp",
		Size:  tileUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "heatmap_tiles_bind",
		Layout: p.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: mvpSlot.Binding, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: tileUniformSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	p.bindGroup = bindGroup

	return p.ensureVertexCapacity(initialVertexCapacity)
}

// tileVertexLayout describes the interleaved position+color buffer.
func tileVertexLayout(posLoc, colorLoc uint32) []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: TileVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: posLoc},
				{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: colorLoc},
			},
		},
	}
}

// ensureVertexCapacity grows the vertex buffer to hold at least n bytes.
// The buffer is reused while it is large enough.
func (p *TilePipeline) ensureVertexCapacity(n uint64) error {
	if p.vertexBuf != nil && p.vertexCap >= n {
		return nil
	}
	capacity := max(n, p.vertexCap*2, initialVertexCapacity)
	buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "heatmap_tiles_vertices",
		Size:  capacity,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	if p.vertexBuf != nil {
		p.device.DestroyBuffer(p.vertexBuf)
	}
	p.vertexBuf = buf
	p.vertexCap = capacity
	slogger().Debug("gpu: vertex buffer allocated", "bytes", capacity)
	return nil
}

// ensureTextures creates or recreates the MSAA and resolve textures if the
// requested dimensions differ from the current size.
func (p *TilePipeline) ensureTextures(w, h uint32) error {
	if p.width == w && p.height == h && p.msaaTex != nil {
		return nil
	}
	p.destroyTextures()

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	msaaTex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "heatmap_tiles_msaa",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   tileSampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create MSAA texture: %w", err)
	}
	p.msaaTex = msaaTex

	msaaView, err := p.device.CreateTextureView(msaaTex, &hal.TextureViewDescriptor{
		Label:         "heatmap_tiles_msaa_view",
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		p.destroyTextures()
		return fmt.Errorf("create MSAA view: %w", err)
	}
	p.msaaView = msaaView

	resolveTex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "heatmap_tiles_resolve",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		p.destroyTextures()
		return fmt.Errorf("create resolve texture: %w", err)
	}
	p.resolveTex = resolveTex

	resolveView, err := p.device.CreateTextureView(resolveTex, &hal.TextureViewDescriptor{
		Label:         "heatmap_tiles_resolve_view",
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		p.destroyTextures()
		return fmt.Errorf("create resolve view: %w", err)
	}
	p.resolveView = resolveView

	p.width = w
	p.height = h
	return nil
}

// Frame is one draw of the tile pipeline.
type Frame struct {
	// Width and Height are the target dimensions in pixels.
	Width, Height uint32

	// MVP maps vertex positions to clip space, column-major.
	MVP [16]float32

	// Vertices holds VerticesPerTile vertices per tile, built with
	// AppendTile.
	Vertices []byte
}

// VertexCount returns the number of vertices in f.
func (f Frame) VertexCount() uint32 {
	return uint32(len(f.Vertices) / TileVertexStride) //nolint:gosec // bounded by buffer size
}

// Draw clears the target, uploads the mvp and the vertices, issues one
// triangle-list draw and reads the result back into dst in image.RGBA
// layout: premultiplied, 4 bytes per pixel, rows of Width pixels.
func (p *TilePipeline) Draw(f Frame, dst []byte) error {
	if f.Width == 0 || f.Height == 0 {
		return nil
	}
	if need := int(f.Width) * int(f.Height) * 4; len(dst) < need {
		return fmt.Errorf("gpu: destination holds %d bytes, need %d", len(dst), need)
	}
	if err := p.ensureTextures(f.Width, f.Height); err != nil {
		return fmt.Errorf("ensure textures: %w", err)
	}
	if err := p.ensureVertexCapacity(uint64(len(f.Vertices))); err != nil {
		return err
	}

	if err := p.queue.WriteBuffer(p.uniformBuf, 0, mat4Bytes(f.MVP)); err != nil {
		return fmt.Errorf("upload mvp: %w", err)
	}
	if len(f.Vertices) > 0 {
		if err := p.queue.WriteBuffer(p.vertexBuf, 0, f.Vertices); err != nil {
			return fmt.Errorf("upload vertices: %w", err)
		}
	}

	return p.encodeAndReadback(f, dst)
}

// encodeAndReadback encodes the render pass, copies the resolve texture to
// a staging buffer, submits, waits for the device to go idle and maps the
// staging buffer to read the pixels.
func (p *TilePipeline) encodeAndReadback(f Frame, dst []byte) error {
	w, h := f.Width, f.Height

	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "heatmap_tiles_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("heatmap_tiles"); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "heatmap_tiles_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:          p.msaaView,
				ResolveTarget: p.resolveView,
				LoadOp:        gputypes.LoadOpClear,
				StoreOp:       gputypes.StoreOpStore,
				ClearValue:    gputypes.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
	})
	if n := f.VertexCount(); n > 0 {
		rp.SetPipeline(p.pipeline)
		rp.SetBindGroup(0, p.bindGroup, nil)
		rp.SetVertexBuffer(0, p.vertexBuf, 0)
		rp.Draw(n, 1, 0, 0)
	}
	rp.End()

	// The resolve texture is still a color attachment; copying requires the
	// transfer-source layout on Vulkan.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: p.resolveTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	rowBytes := paddedRowBytes(w)
	stagingSize := uint64(rowBytes) * uint64(h)
	stagingBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "heatmap_tiles_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer p.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(p.resolveTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: rowBytes, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: p.resolveTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	if _, err := p.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := p.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}

	m, err := p.device.MapBuffer(stagingBuf, 0, stagingSize)
	if err != nil {
		return fmt.Errorf("map staging buffer: %w", err)
	}
	src := unsafe.Slice((*byte)(m.Ptr), stagingSize)
	stride := int(w) * 4
	for y := range int(h) {
		row := y * int(rowBytes)
		bgraToRGBA(src[row:row+stride], dst[y*stride:(y+1)*stride])
	}
	if err := p.device.UnmapBuffer(stagingBuf); err != nil {
		return fmt.Errorf("unmap staging buffer: %w", err)
	}
	return nil
}

// Size returns the current target dimensions.
func (p *TilePipeline) Size() (uint32, uint32) {
	return p.width, p.height
}

// Program returns the tile program.
func (p *TilePipeline) Program() *Program {
	return p.program
}

// Destroy releases all GPU objects in reverse creation order. Safe to call
// multiple times or on a partially built pipeline.
func (p *TilePipeline) Destroy() {
	if p.device == nil {
		return
	}
	p.destroyTextures()
	if p.vertexBuf != nil {
		p.device.DestroyBuffer(p.vertexBuf)
		p.vertexBuf = nil
		p.vertexCap = 0
	}
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.uniformBuf != nil {
		p.device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.uniformLayout != nil {
		p.device.DestroyBindGroupLayout(p.uniformLayout)
		p.uniformLayout = nil
	}
	if p.program != nil {
		p.program.Release()
		p.program = nil
	}
}

// Released reports whether Destroy has released the program and the vertex
// buffer.
func (p *TilePipeline) Released() bool {
	return p.program == nil && p.vertexBuf == nil
}

// destroyTextures releases all texture resources and resets dimensions.
func (p *TilePipeline) destroyTextures() {
	if p.resolveView != nil {
		p.device.DestroyTextureView(p.resolveView)
		p.resolveView = nil
	}
	if p.resolveTex != nil {
		p.device.DestroyTexture(p.resolveTex)
		p.resolveTex = nil
	}
	if p.msaaView != nil {
		p.device.DestroyTextureView(p.msaaView)
		p.msaaView = nil
	}
	if p.msaaTex != nil {
		p.device.DestroyTexture(p.msaaTex)
		p.msaaTex = nil
	}
	p.width = 0
	p.height = 0
}

// AppendTile appends the two triangles of the axis-aligned quad
// (x0,y0)-(x1,y1) with premultiplied color c to buf.
func AppendTile(buf []byte, x0, y0, x1, y1 float32, c [4]float32) []byte {
	corners := [VerticesPerTile][2]float32{
		{x0, y0}, {x1, y0}, {x0, y1},
		{x0, y1}, {x1, y0}, {x1, y1},
	}
	var v [TileVertexStride]byte
	for _, p := range corners {
		putF32(v[0:], p[0])
		putF32(v[4:], p[1])
		putF32(v[8:], c[0])
		putF32(v[12:], c[1])
		putF32(v[16:], c[2])
		putF32(v[20:], c[3])
		buf = append(buf, v[:]...)
	}
	return buf
}

// paddedRowBytes returns the staging row stride for a target w pixels wide.
func paddedRowBytes(w uint32) uint32 {
	return (w*4 + copyRowAlignment - 1) / copyRowAlignment * copyRowAlignment
}

func putF32(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
}

func mat4Bytes(m [16]float32) []byte {
	out := make([]byte, tileUniformSize)
	for i, f := range m {
		putF32(out[i*4:], f)
	}
	return out
}

// bgraToRGBA swaps BGRA pixels into RGBA byte order. Both sides are
// premultiplied, matching image.RGBA.
func bgraToRGBA(src, dst []byte) {
	for i := 0; i+3 < len(src) && i+3 < len(dst); i += 4 {
		dst[i], dst[i+1], dst[i+2], dst[i+3] = src[i+2], src[i+1], src[i], src[i+3]
	}
}
