// webgl/program.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package webgl

import (
	"fmt"
	"strings"
)

// ShaderProgram is a linked vertex+fragment shader pair along with the
// locations of the attributes and uniforms it was created with.
type ShaderProgram struct {
	ctx        Context
	program    Program
	attributes map[string]uint32
	order      []uint32
	uniforms   map[string]UniformLocation
}

// NewShaderProgram compiles and links the given GLSL ES 1.00 shader
// bodies, prefixed with the context's shader header, and looks up the
// named attributes and uniforms.
func NewShaderProgram(ctx Context, vertexSource, fragmentSource string, attributes, uniforms []string) (*ShaderProgram, error) {
	vs, err := compileShader(ctx, VertexShader, vertexSource)
	if err != nil {
		return nil, err
	}
	defer ctx.DeleteShader(vs)

	fs, err := compileShader(ctx, FragmentShader, fragmentSource)
	if err != nil {
		return nil, err
	}
	defer ctx.DeleteShader(fs)

	p := ctx.CreateProgram()
	ctx.AttachShader(p, vs)
	ctx.AttachShader(p, fs)
	ctx.LinkProgram(p)
	if !ctx.ProgramLinked(p) && !ctx.IsContextLost() {
		log := ctx.ProgramInfoLog(p)
		ctx.DeleteProgram(p)
		return nil, fmt.Errorf("webgl: link failed: %s", log)
	}

	sp := &ShaderProgram{
		ctx:        ctx,
		program:    p,
		attributes: make(map[string]uint32),
		uniforms:   make(map[string]UniformLocation),
	}
	for _, name := range attributes {
		loc := ctx.GetAttribLocation(p, name)
		if loc < 0 {
			if ctx.IsContextLost() {
				// Calls on a lost context are no-ops; a new program is
				// built once the context comes back.
				sp.attributes[name] = 0
				continue
			}
			ctx.DeleteProgram(p)
			return nil, fmt.Errorf("webgl: attribute %q not found", name)
		}
		sp.attributes[name] = uint32(loc)
		sp.order = append(sp.order, uint32(loc))
	}
	for _, name := range uniforms {
		sp.uniforms[name] = ctx.GetUniformLocation(p, name)
	}

	return sp, nil
}

func compileShader(ctx Context, kind uint32, source string) (Shader, error) {
	s := ctx.CreateShader(kind)
	ctx.ShaderSource(s, ctx.ShaderHeader()+source)
	ctx.CompileShader(s)
	if !ctx.ShaderCompiled(s) && !ctx.IsContextLost() {
		log := ctx.ShaderInfoLog(s)
		ctx.DeleteShader(s)
		return 0, fmt.Errorf("webgl: %s shader compile failed: %s", shaderKindName(kind),
			strings.TrimSpace(log))
	}
	return s, nil
}

func shaderKindName(kind uint32) string {
	switch kind {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	default:
		return fmt.Sprintf("0x%x", kind)
	}
}

// Use makes the program current and enables its attribute arrays.
func (sp *ShaderProgram) Use() {
	sp.ctx.UseProgram(sp.program)
	for _, loc := range sp.order {
		sp.ctx.EnableVertexAttribArray(loc)
	}
}

// Unuse disables the attribute arrays that Use enabled.
func (sp *ShaderProgram) Unuse() {
	for _, loc := range sp.order {
		sp.ctx.DisableVertexAttribArray(loc)
	}
}

// Attribute returns the location of the named attribute; it panics if
// the program was not created with that attribute.
func (sp *ShaderProgram) Attribute(name string) uint32 {
	loc, ok := sp.attributes[name]
	if !ok {
		panic(fmt.Sprintf("webgl: unknown attribute %q", name))
	}
	return loc
}

func (sp *ShaderProgram) Uniform(name string) UniformLocation {
	loc, ok := sp.uniforms[name]
	if !ok {
		panic(fmt.Sprintf("webgl: unknown uniform %q", name))
	}
	return loc
}

func (sp *ShaderProgram) Program() Program {
	return sp.program
}

func (sp *ShaderProgram) Dispose() {
	sp.ctx.DeleteProgram(sp.program)
	sp.program = 0
}
