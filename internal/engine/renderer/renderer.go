// Package renderer draws a molecule scene with OpenGL: colored lines for
// cell edges, bonds and arrow shafts, lit textured spheres for atoms,
// cylinders and cones for solid bonds and arrow heads, and label quads.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/smolview/internal/engine/camera"
	"github.com/Faultbox/smolview/internal/engine/framebuffer"
	"github.com/Faultbox/smolview/internal/engine/lighting"
	"github.com/Faultbox/smolview/internal/engine/renderer/shaders"
	"github.com/Faultbox/smolview/internal/engine/shader"
	"github.com/Faultbox/smolview/internal/engine/texture"
	"github.com/Faultbox/smolview/internal/logger"
	"github.com/Faultbox/smolview/internal/scene"
	"github.com/Faultbox/smolview/pkg/math"
	"github.com/Faultbox/smolview/pkg/molecule"
)

// Config holds renderer configuration.
type Config struct {
	Width          int
	Height         int
	Background     molecule.Color
	SphereSegments int
	Lights         lighting.Rig
}

type lineBuffer struct {
	vao, vbo uint32
	count    int32
}

type meshBuffer struct {
	vao, vbo, ebo uint32
	count         int32
}

type label struct {
	tex        *texture.Texture
	anchor     [3]float32
	halfWidth  float32
	halfHeight float32
}

// Renderer owns every GL resource of the current scene.
type Renderer struct {
	config Config

	lineProg  *shader.Program
	meshProg  *shader.Program
	labelProg *shader.Program

	textures *texture.Library

	lines   lineBuffer
	overlay lineBuffer
	sphere  meshBuffer
	cyls    meshBuffer
	heads   meshBuffer
	quad    uint32
	quadVBO uint32

	batch  *Batch
	labels []label
}

// New creates a renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config, textures *texture.Library) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	r := &Renderer{config: cfg, textures: textures}

	var err error
	if r.lineProg, err = shader.New(shaders.LineVertexShader, shaders.LineFragmentShader); err != nil {
		return nil, fmt.Errorf("line shader: %w", err)
	}
	if r.meshProg, err = shader.New(shaders.MeshVertexShader, shaders.MeshFragmentShader); err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	if r.labelProg, err = shader.New(shaders.LabelVertexShader, shaders.LabelFragmentShader); err != nil {
		return nil, fmt.Errorf("label shader: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.MULTISAMPLE)
	bg := cfg.Background.RGB()
	gl.ClearColor(bg[0], bg[1], bg[2], 1)

	r.sphere = uploadMesh(scene.SphereMesh(r3.Vec{}, 1, max(3, cfg.SphereSegments)))
	r.createQuad()
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// SetScene replaces the drawn scene.
func (r *Renderer) SetScene(s *scene.Scene) {
	r.releaseScene()

	r.batch = NewBatch(s, max(3, r.config.SphereSegments))
	r.lines = uploadLines(r.batch.LinePositions, r.batch.LineColors)
	r.cyls = uploadMesh(r.batch.Cylinders)
	r.heads = uploadMesh(r.batch.ArrowHeads)

	for _, l := range r.batch.Labels {
		img := texture.Label(l.Text, l.Color, 4)
		tex := texture.Upload(img, false)
		halfH := float32(scene.LabelSize) / 2
		r.labels = append(r.labels, label{
			tex:        tex,
			anchor:     l.Anchor,
			halfHeight: halfH,
			halfWidth:  halfH * float32(tex.Width) / float32(tex.Height),
		})
	}

	logger.Debug("scene uploaded",
		zap.Int("lineVertices", int(r.lines.count)),
		zap.Int("spheres", len(r.batch.Spheres)),
		zap.Int("cylinderIndices", int(r.cyls.count)),
		zap.Int("labels", len(r.labels)),
	)
}

// SetOverlay replaces the lines drawn on top of everything, such as the
// selection box.
func (r *Renderer) SetOverlay(lines []scene.Line) {
	deleteLines(&r.overlay)
	if len(lines) > 0 {
		r.overlay = uploadLines(scene.LineVertices(lines))
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Draw renders one frame from cam.
func (r *Renderer) Draw(cam *camera.Trackball) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if r.batch == nil {
		return
	}
	viewProj := cam.ViewProjection()

	r.lineProg.Use()
	r.lineProg.SetMat4("uViewProj", viewProj)
	drawLines(r.lines)

	r.drawMeshes(viewProj)
	r.drawLabels(viewProj, cam.ProjectionMatrix())

	if r.overlay.count > 0 {
		gl.Disable(gl.DEPTH_TEST)
		r.lineProg.Use()
		drawLines(r.overlay)
		gl.Enable(gl.DEPTH_TEST)
	}
}

func (r *Renderer) drawMeshes(viewProj math.Mat4) {
	p := r.meshProg
	lights := r.config.Lights
	p.Use()
	p.SetMat4("uViewProj", viewProj)
	p.SetInt("uTexture", 0)
	p.SetVec3("uAmbient", scale3(lights.Ambient.Color, lights.Ambient.Intensity))
	p.SetVec3("uLightDir", lights.Key.Direction)
	p.SetVec3("uLightColor", scale3(lights.Key.Color, lights.Key.Intensity))

	p.SetVec2("uUVRepeat", SphereRepeat[0], SphereRepeat[1])
	gl.BindVertexArray(r.sphere.vao)
	for _, sp := range r.batch.Spheres {
		r.textures.Get(sp.Texture).Bind(0)
		p.SetMat4("uModel", sp.Model)
		p.SetVec3("uColor", sp.Color)
		gl.DrawElementsWithOffset(gl.TRIANGLES, r.sphere.count, gl.UNSIGNED_INT, 0)
	}

	r.textures.White().Bind(0)
	p.SetVec2("uUVRepeat", 1, 1)
	p.SetMat4("uModel", math.Identity())
	for _, m := range []struct {
		buf   meshBuffer
		color [3]float32
	}{
		{r.cyls, r.batch.CylinderColor},
		{r.heads, r.batch.ArrowHeadColor},
	} {
		if m.buf.count == 0 {
			continue
		}
		p.SetVec3("uColor", m.color)
		gl.BindVertexArray(m.buf.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, m.buf.count, gl.UNSIGNED_INT, 0)
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) drawLabels(viewProj, proj math.Mat4) {
	if len(r.labels) == 0 {
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	p := r.labelProg
	p.Use()
	p.SetMat4("uViewProj", viewProj)
	p.SetInt("uTexture", 0)
	gl.BindVertexArray(r.quad)
	for _, l := range r.labels {
		l.tex.Bind(0)
		p.SetVec3("uAnchor", l.anchor)
		// ortho: clip-space size is world size times the projection scale
		p.SetVec2("uHalfSize", l.halfWidth*proj[0], l.halfHeight*proj[5])
		gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	}
	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
}

// Capture draws one frame from cam into an offscreen target of the given
// size and returns its bottom-up RGBA rows.
func (r *Renderer) Capture(cam *camera.Trackball, width, height int) ([]byte, error) {
	target, err := framebuffer.New(int32(width), int32(height), framebuffer.DefaultSamples)
	if err != nil {
		return nil, err
	}
	defer target.Delete()

	logger.Debug("capturing",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int32("samples", target.Samples()))
	return target.Render(func() { r.Draw(cam) }), nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.releaseScene()
	deleteLines(&r.overlay)
	deleteMesh(&r.sphere)
	if r.quad != 0 {
		gl.DeleteVertexArrays(1, &r.quad)
		gl.DeleteBuffers(1, &r.quadVBO)
	}
	for _, p := range []*shader.Program{r.lineProg, r.meshProg, r.labelProg} {
		if p != nil {
			p.Delete()
		}
	}
}

func (r *Renderer) releaseScene() {
	deleteLines(&r.lines)
	deleteMesh(&r.cyls)
	deleteMesh(&r.heads)
	for _, l := range r.labels {
		l.tex.Delete()
	}
	r.labels = nil
	r.batch = nil
}

func (r *Renderer) createQuad() {
	corners := []float32{-1, -1, 1, -1, -1, 1, 1, 1}
	gl.GenVertexArrays(1, &r.quad)
	gl.BindVertexArray(r.quad)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(corners)*4, unsafe.Pointer(&corners[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
}

func uploadLines(positions, colors [][3]float32) lineBuffer {
	var lb lineBuffer
	if len(positions) == 0 {
		return lb
	}
	interleaved := make([]float32, 0, 6*len(positions))
	for i, p := range positions {
		c := colors[i]
		interleaved = append(interleaved, p[0], p[1], p[2], c[0], c[1], c[2])
	}

	gl.GenVertexArrays(1, &lb.vao)
	gl.BindVertexArray(lb.vao)
	gl.GenBuffers(1, &lb.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, lb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(interleaved)*4, unsafe.Pointer(&interleaved[0]), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 6*4, 0)
	gl.EnableVertexAttribArray(0)
	// Color
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, 6*4, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	lb.count = int32(len(positions))
	return lb
}

func drawLines(lb lineBuffer) {
	if lb.count == 0 {
		return
	}
	gl.BindVertexArray(lb.vao)
	gl.DrawArrays(gl.LINES, 0, lb.count)
	gl.BindVertexArray(0)
}

func deleteLines(lb *lineBuffer) {
	if lb.vao != 0 {
		gl.DeleteVertexArrays(1, &lb.vao)
		gl.DeleteBuffers(1, &lb.vbo)
	}
	*lb = lineBuffer{}
}

func uploadMesh(m scene.Mesh) meshBuffer {
	var mb meshBuffer
	if len(m.Indices) == 0 {
		return mb
	}
	vertices := make([]float32, 0, 8*m.VertexCount())
	for i, p := range m.Positions {
		n, uv := m.Normals[i], m.UVs[i]
		vertices = append(vertices, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}

	gl.GenVertexArrays(1, &mb.vao)
	gl.BindVertexArray(mb.vao)

	gl.GenBuffers(1, &mb.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 8*4, 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, 8*4, 3*4)
	gl.EnableVertexAttribArray(1)
	// TexCoord
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, 8*4, 6*4)
	gl.EnableVertexAttribArray(2)

	gl.GenBuffers(1, &mb.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mb.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	mb.count = int32(len(m.Indices))
	gl.BindVertexArray(0)
	return mb
}

func deleteMesh(mb *meshBuffer) {
	if mb.vao != 0 {
		gl.DeleteVertexArrays(1, &mb.vao)
		gl.DeleteBuffers(1, &mb.vbo)
		gl.DeleteBuffers(1, &mb.ebo)
	}
	*mb = meshBuffer{}
}

func scale3(v [3]float32, s float32) [3]float32 {
	return [3]float32{v[0] * s, v[1] * s, v[2] * s}
}
