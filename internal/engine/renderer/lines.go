package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/cubesphere/internal/engine/shader"
)

const lineVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;
uniform mat4 uViewProj;
void main() {
    gl_Position = uViewProj * vec4(aPosition, 1.0);
}
`

const lineFragmentShader = `#version 410 core
uniform vec3 uColor;
out vec4 FragColor;
void main() {
    FragColor = vec4(uColor, 1.0);
}
`

// LineRenderer streams small line batches such as debug markers.
type LineRenderer struct {
	program  *shader.Program
	vao, vbo uint32
	capacity int // floats
}

// NewLineRenderer compiles the line program and allocates its buffer.
func NewLineRenderer() (*LineRenderer, error) {
	p, err := newProgram(lineVertexShader, lineFragmentShader)
	if err != nil {
		return nil, err
	}
	lr := &LineRenderer{program: p}

	gl.GenVertexArrays(1, &lr.vao)
	gl.BindVertexArray(lr.vao)
	gl.GenBuffers(1, &lr.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, lr.vbo)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	return lr, nil
}

// Draw uploads and draws vertices as GL_LINES.
func (lr *LineRenderer) Draw(vertices []float32, viewProj mgl32.Mat4, color mgl32.Vec3) {
	if len(vertices) < 6 {
		return
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, lr.vbo)
	if len(vertices) > lr.capacity {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.DYNAMIC_DRAW)
		lr.capacity = len(vertices)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	}

	lr.program.Use()
	lr.program.SetMat4("uViewProj", viewProj)
	lr.program.SetVec3("uColor", color)

	gl.BindVertexArray(lr.vao)
	gl.DrawArrays(gl.LINES, 0, int32(len(vertices)/3))
	gl.BindVertexArray(0)
}

// Destroy frees the buffers and program.
func (lr *LineRenderer) Destroy() {
	gl.DeleteVertexArrays(1, &lr.vao)
	gl.DeleteBuffers(1, &lr.vbo)
	lr.program.Delete()
}
