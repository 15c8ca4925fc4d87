package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/cubesphere/internal/engine/lighting"
	"github.com/Faultbox/cubesphere/internal/engine/shader"
	"github.com/Faultbox/cubesphere/internal/planet/lod"
)

const patchVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;
layout (location = 3) in vec4 aColor;

uniform mat4 uViewProj;

out vec3 vNormal;
out vec4 vColor;

void main() {
    vNormal = aNormal;
    vColor = aColor;
    gl_Position = uViewProj * vec4(aPosition, 1.0);
}
`

const patchFragmentShader = `#version 410 core
in vec3 vNormal;
in vec4 vColor;

uniform vec3 uSunDir;
uniform vec3 uSunColor;
uniform float uAmbient;

out vec4 FragColor;

void main() {
    float diffuse = max(dot(normalize(vNormal), normalize(uSunDir)), 0.0);
    vec3 lit = vColor.rgb * (uAmbient + diffuse * uSunColor);
    FragColor = vec4(lit, vColor.a);
}
`

// gpuMesh is one patch mesh resident on the GPU.
type gpuMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// PatchRenderer caches one GPU mesh per patch serial. Patch meshes never
// change after creation, so a serial identifies its geometry for life.
type PatchRenderer struct {
	program *shader.Program
	cache   map[uint64]*gpuMesh
}

// NewPatchRenderer compiles the terrain program.
func NewPatchRenderer() (*PatchRenderer, error) {
	p, err := newProgram(patchVertexShader, patchFragmentShader)
	if err != nil {
		return nil, err
	}
	return &PatchRenderer{program: p, cache: make(map[uint64]*gpuMesh)}, nil
}

// Sync uploads meshes of patches not yet cached and frees buffers of
// patches that are no longer visible.
func (pr *PatchRenderer) Sync(visible []*lod.Patch) FrameStats {
	var stats FrameStats

	keep := make(map[uint64]bool, len(visible))
	for _, p := range visible {
		keep[p.Serial] = true
		if _, ok := pr.cache[p.Serial]; ok || p.Mesh == nil || len(p.Mesh.Indices) == 0 {
			continue
		}
		pr.cache[p.Serial] = upload(p.Mesh)
		stats.Uploads++
	}

	for serial, m := range pr.cache {
		if !keep[serial] {
			m.destroy()
			delete(pr.cache, serial)
			stats.Evictions++
		}
	}

	stats.Cached = len(pr.cache)
	return stats
}

// Draw renders every visible patch and returns the triangle count.
func (pr *PatchRenderer) Draw(visible []*lod.Patch, viewProj mgl32.Mat4, sun lighting.Sun) int {
	pr.program.Use()
	pr.program.SetMat4("uViewProj", viewProj)
	pr.program.SetVec3("uSunDir", sun.Direction())
	pr.program.SetVec3("uSunColor", sun.Color)
	pr.program.SetFloat("uAmbient", sun.Ambient)

	triangles := 0
	for _, p := range visible {
		m, ok := pr.cache[p.Serial]
		if !ok {
			continue
		}
		gl.BindVertexArray(m.vao)
		gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil)
		triangles += int(m.indexCount) / 3
	}
	gl.BindVertexArray(0)
	return triangles
}

// Clear frees every cached mesh.
func (pr *PatchRenderer) Clear() {
	for serial, m := range pr.cache {
		m.destroy()
		delete(pr.cache, serial)
	}
}

// Destroy frees the cache and the program.
func (pr *PatchRenderer) Destroy() {
	pr.Clear()
	pr.program.Delete()
}

func upload(mesh *lod.Mesh) *gpuMesh {
	m := &gpuMesh{indexCount: int32(len(mesh.Indices))}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	vertexSize := int(unsafe.Sizeof(lod.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*vertexSize, unsafe.Pointer(&mesh.Vertices[0]), gl.STATIC_DRAW)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)
	// Normal (location 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)
	// UV (location 2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)
	// Color (location 3)
	gl.VertexAttribPointerWithOffset(3, 4, gl.FLOAT, false, int32(vertexSize), 8*4)
	gl.EnableVertexAttribArray(3)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, unsafe.Pointer(&mesh.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return m
}

func (m *gpuMesh) destroy() {
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
}
