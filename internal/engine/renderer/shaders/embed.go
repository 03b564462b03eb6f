// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// LineVertexShader is the vertex shader for colored lines.
//
//go:embed line.vert
var LineVertexShader string

// LineFragmentShader is the fragment shader for colored lines.
//
//go:embed line.frag
var LineFragmentShader string

// MeshVertexShader is the vertex shader for lit spheres, cylinders and cones.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader is the fragment shader for lit meshes.
//
//go:embed mesh.frag
var MeshFragmentShader string

// LabelVertexShader is the vertex shader for screen-aligned label quads.
//
//go:embed label.vert
var LabelVertexShader string

// LabelFragmentShader is the fragment shader for label quads.
//
//go:embed label.frag
var LabelFragmentShader string
