// Package shader compiles GLSL programs and caches uniform locations.
package shader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/smolview/pkg/math"
)

// BuildError carries the driver's info log for a stage that failed to
// compile, or for the link step.
type BuildError struct {
	Stage string
	Log   string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, strings.TrimSpace(e.Log))
}

type stage struct {
	name string
	kind uint32
	src  string
}

// Program is a linked shader program.
type Program struct {
	ID       uint32
	uniforms map[string]int32
}

// New builds a program from vertex and fragment sources.
func New(vertexSrc, fragmentSrc string) (*Program, error) {
	id, err := build(
		stage{"vertex shader", gl.VERTEX_SHADER, vertexSrc},
		stage{"fragment shader", gl.FRAGMENT_SHADER, fragmentSrc},
	)
	if err != nil {
		return nil, err
	}
	return &Program{ID: id, uniforms: map[string]int32{}}, nil
}

func build(stages ...stage) (uint32, error) {
	program := gl.CreateProgram()
	var errs []error
	for _, st := range stages {
		id, err := compile(st)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		gl.AttachShader(program, id)
		// Flagged for deletion; freed with the program.
		gl.DeleteShader(id)
	}
	if len(errs) > 0 {
		gl.DeleteProgram(program)
		return 0, errors.Join(errs...)
	}

	gl.LinkProgram(program)
	var ok int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &ok)
	if ok == gl.FALSE {
		log := infoLog(program, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(program)
		return 0, &BuildError{Stage: "link", Log: log}
	}
	return program, nil
}

func compile(st stage) (uint32, error) {
	id := gl.CreateShader(st.kind)
	src, free := gl.Strs(terminated(st.src))
	defer free()
	gl.ShaderSource(id, 1, src, nil)
	gl.CompileShader(id)

	var ok int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &ok)
	if ok == gl.FALSE {
		log := infoLog(id, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(id)
		return 0, &BuildError{Stage: st.name, Log: log}
	}
	return id, nil
}

func infoLog(id uint32,
	param func(uint32, uint32, *int32),
	read func(uint32, int32, *int32, *uint8),
) string {
	var n int32
	param(id, gl.INFO_LOG_LENGTH, &n)
	if n <= 1 {
		return ""
	}
	buf := make([]byte, n)
	read(id, n, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

// terminated returns s with exactly one trailing NUL, as gl.Strs expects.
func terminated(s string) string {
	return strings.TrimRight(s, "\x00") + "\x00"
}

func (p *Program) Use() { gl.UseProgram(p.ID) }

// Uniform returns the location of name, or -1 if the uniform is inactive.
// Lookups are cached per program.
func (p *Program) Uniform(name string) int32 {
	loc, ok := p.uniforms[name]
	if !ok {
		loc = gl.GetUniformLocation(p.ID, gl.Str(terminated(name)))
		p.uniforms[name] = loc
	}
	return loc
}

func (p *Program) SetMat4(name string, m math.Mat4) {
	gl.UniformMatrix4fv(p.Uniform(name), 1, false, m.Ptr())
}

func (p *Program) SetVec3(name string, v [3]float32) {
	gl.Uniform3fv(p.Uniform(name), 1, &v[0])
}

func (p *Program) SetVec2(name string, x, y float32) {
	gl.Uniform2f(p.Uniform(name), x, y)
}

// SetInt sets an int or sampler uniform.
func (p *Program) SetInt(name string, v int32) {
	gl.Uniform1i(p.Uniform(name), v)
}

// Delete releases the program. It is safe to call twice.
func (p *Program) Delete() {
	if p.ID == 0 {
		return
	}
	gl.DeleteProgram(p.ID)
	p.ID = 0
}
