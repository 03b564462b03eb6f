// Package export writes a scene as a binary glTF (.glb) file so it can
// be opened in any external 3D viewer.
package export

import (
	"errors"
	"fmt"
	"sort"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/smolview/internal/logger"
	"github.com/Faultbox/smolview/internal/scene"
	"github.com/Faultbox/smolview/pkg/molecule"
	"go.uber.org/zap"
)

// ErrEmptyScene is returned when there is nothing to export.
var ErrEmptyScene = errors.New("scene has no primitives")

// Mesh names in the exported document.
const (
	MeshLines     = "lines"
	MeshBonds     = "bonds"
	MeshArrowHead = "arrow-heads"
	atomMeshName  = "atoms."
)

// Options control tessellation.
type Options struct {
	Segments  int
	Generator string
}

// DefaultOptions matches the viewer's sphere resolution.
func DefaultOptions() Options {
	return Options{Segments: 16, Generator: "smolview"}
}

type builder struct {
	doc       *gltf.Document
	materials map[molecule.Color]uint32
}

// Document converts s into a glTF document. Spheres are grouped into one
// mesh per element, all bonds share one mesh, and cell edges, line bonds
// and arrow shafts go into a single vertex-colored line primitive.
func Document(s *scene.Scene, opts Options) (*gltf.Document, error) {
	if len(s.Spheres) == 0 && len(s.CellEdges) == 0 {
		return nil, ErrEmptyScene
	}
	if opts.Segments < 3 {
		opts.Segments = DefaultOptions().Segments
	}

	b := &builder{
		doc:       gltf.NewDocument(),
		materials: make(map[molecule.Color]uint32),
	}
	b.doc.Asset.Generator = opts.Generator

	bySym := make(map[string][]scene.Sphere)
	for _, sp := range s.Spheres {
		bySym[sp.Sym] = append(bySym[sp.Sym], sp)
	}
	syms := make([]string, 0, len(bySym))
	for sym := range bySym {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	for _, sym := range syms {
		var m scene.Mesh
		for _, sp := range bySym[sym] {
			m.Append(scene.SphereMesh(sp.Center, sp.Radius, opts.Segments))
		}
		b.addMesh(atomMeshName+sym, m, bySym[sym][0].Color)
	}

	if len(s.Cylinders) > 0 {
		var m scene.Mesh
		for _, c := range s.Cylinders {
			m.Append(scene.CylinderMesh(c.From, c.To, c.Radius, opts.Segments))
		}
		b.addMesh(MeshBonds, m, s.Cylinders[0].Color)
	}

	if len(s.Arrows) > 0 {
		var m scene.Mesh
		for _, a := range s.Arrows {
			m.Append(scene.ArrowHeadMesh(a, opts.Segments))
		}
		b.addMesh(MeshArrowHead, m, s.Arrows[0].Color)
	}

	var lines []scene.Line
	lines = append(lines, s.CellEdges...)
	lines = append(lines, s.BondLines...)
	lines = append(lines, scene.ArrowLines(s.Arrows)...)
	if len(lines) > 0 {
		b.addLines(MeshLines, lines)
	}

	logger.Debug("gltf document built",
		zap.Int("meshes", len(b.doc.Meshes)),
		zap.Int("materials", len(b.doc.Materials)))
	return b.doc, nil
}

// Write exports s to path as a .glb file.
func Write(s *scene.Scene, path string, opts Options) error {
	doc, err := Document(s, opts)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (b *builder) material(c molecule.Color) uint32 {
	if idx, ok := b.materials[c]; ok {
		return idx
	}
	rgba := c.RGBA()
	b.doc.Materials = append(b.doc.Materials, &gltf.Material{
		Name: c.Hex(),
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &rgba,
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(1),
		},
		AlphaMode: gltf.AlphaOpaque,
	})
	idx := uint32(len(b.doc.Materials) - 1)
	b.materials[c] = idx
	return idx
}

func (b *builder) addMesh(name string, m scene.Mesh, c molecule.Color) {
	if m.VertexCount() == 0 {
		return
	}
	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION:   uint32(modeler.WritePosition(b.doc, m.Positions)),
			gltf.NORMAL:     uint32(modeler.WriteNormal(b.doc, m.Normals)),
			gltf.TEXCOORD_0: uint32(modeler.WriteTextureCoord(b.doc, m.UVs)),
		},
		Indices:  gltf.Index(uint32(modeler.WriteIndices(b.doc, m.Indices))),
		Material: gltf.Index(b.material(c)),
	}
	b.addNode(name, prim)
}

func (b *builder) addLines(name string, lines []scene.Line) {
	positions, rgb := scene.LineVertices(lines)
	colors := make([][4]float32, len(rgb))
	for i, c := range rgb {
		colors[i] = [4]float32{c[0], c[1], c[2], 1}
	}
	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION: uint32(modeler.WritePosition(b.doc, positions)),
			gltf.COLOR_0:  uint32(modeler.WriteColor(b.doc, colors)),
		},
		Mode:     gltf.PrimitiveLines,
		Material: gltf.Index(b.material(0xffffff)),
	}
	b.addNode(name, prim)
}

func (b *builder) addNode(name string, prim *gltf.Primitive) {
	b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
	b.doc.Nodes = append(b.doc.Nodes, &gltf.Node{Name: name, Mesh: gltf.Index(uint32(len(b.doc.Meshes) - 1))})
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, uint32(len(b.doc.Nodes)-1))
}
