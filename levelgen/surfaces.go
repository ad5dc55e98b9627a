// SPDX-License-Identifier: GPL-2.0-or-later

package levelgen

import (
	"govsd/geom"
	"govsd/level"
	"govsd/math/vec"
)

// VisGroupWorld is the visibility group of all generated static geometry.
const VisGroupWorld = 1

func (b *builder) addLightmap(area int) int {
	n := b.cfg.LightmapSize
	if n == 0 {
		return -1
	}
	lm := level.Lightmap{Width: n, Height: n, Texels: make([][3]float32, n*n)}
	tint := 1 / float32(area+1)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := 0.25 + 0.5*(float32(x)+0.5)/float32(n)
			lm.Texels[y*n+x] = [3]float32{v, v * tint, 0.5 * (float32(y) + 0.5) / float32(n)}
		}
	}
	b.l.Lightmaps = append(b.l.Lightmaps, lm)
	return len(b.l.Lightmaps) - 1
}

func (b *builder) appendSurface(area int, s level.Surface) {
	idx := len(b.l.Surfaces)
	b.l.Surfaces = append(b.l.Surfaces, s)
	b.l.Areas[area].Surfaces = append(b.l.Areas[area].Surfaces, idx)
}

// addQuad adds a planar surface facing the side the corners wind counter
// clockwise around.
func (b *builder) addQuad(area, mat int, corners []vec.Vec3) {
	m := &b.l.Mesh
	first := len(m.Vertices)
	uvs := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	width := vec.Dist(corners[0], corners[1])
	height := vec.Dist(corners[1], corners[2])
	bounds := geom.EmptyAABB()
	for i, c := range corners {
		m.Vertices = append(m.Vertices, level.Vertex{
			Pos: c,
			S:   uvs[i][0] * width,
			T:   uvs[i][1] * height,
		})
		m.LightmapUVs = append(m.LightmapUVs, uvs[i])
		bounds.AddPoint(c)
	}
	firstIndex := len(m.Indices)
	m.Indices = append(m.Indices, 0, 1, 2, 0, 2, 3)
	b.appendSurface(area, level.Surface{
		Type:        level.SurfacePlanar,
		Bounds:      bounds,
		Face:        geom.PlaneFromPoints(corners[0], corners[1], corners[2]),
		FaceCull:    level.CullBack,
		VisGroup:    VisGroupWorld,
		Material:    mat,
		Lightmap:    b.addLightmap(area),
		FirstVertex: first,
		NumVertices: 4,
		FirstIndex:  firstIndex,
		NumIndices:  6,
	})
}

// addPyramid adds a four sided trisoup pyramid standing on base with the
// given size.
func (b *builder) addPyramid(area int, base vec.Vec3, size float32) {
	m := &b.l.Mesh
	first := len(m.Vertices)
	h := size / 2
	pts := []vec.Vec3{
		{base[0] - h, base[1] - h, base[2]},
		{base[0] + h, base[1] - h, base[2]},
		{base[0] + h, base[1] + h, base[2]},
		{base[0] - h, base[1] + h, base[2]},
		{base[0], base[1], base[2] + size},
	}
	bounds := geom.EmptyAABB()
	for i, p := range pts {
		m.Vertices = append(m.Vertices, level.Vertex{Pos: p, S: float32(i&1) * size, T: float32(i>>1) * size})
		bounds.AddPoint(p)
		m.LightmapUVs = append(m.LightmapUVs, [2]float32{0.5, 0.5})
	}
	firstIndex := len(m.Indices)
	// sides, counter clockwise from outside
	m.Indices = append(m.Indices,
		0, 1, 4,
		1, 2, 4,
		2, 3, 4,
		3, 0, 4,
	)
	b.appendSurface(area, level.Surface{
		Type:        level.SurfaceTrisoup,
		Bounds:      bounds,
		FaceCull:    level.CullNone,
		VisGroup:    VisGroupWorld,
		Material:    MatProp,
		Lightmap:    -1,
		FirstVertex: first,
		NumVertices: len(pts),
		FirstIndex:  firstIndex,
		NumIndices:  12,
	})
}
