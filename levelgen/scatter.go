// SPDX-License-Identifier: GPL-2.0-or-later

package levelgen

import (
	"govsd/geom"
	"govsd/level"
	"govsd/math/vec"
	"govsd/rand"
)

// VisGroupProps is the visibility group of scattered primitives.
const VisGroupProps = 2

// margin keeps scattered boxes off the room walls.
const margin = 0.01

// ScatterBoxes adds n box primitives with random placement inside the rooms
// of a corridor level and returns their handles. Box edges are between
// minSize and maxSize long.
func ScatterBoxes(l *level.Level, cfg Config, g *rand.Generator, n int, minSize, maxSize float32) []int {
	ids := make([]int, 0, n)
	for i := 0; i < n; i++ {
		room := g.Intn(cfg.Rooms)
		r := l.Areas[room].Bounds
		half := vec.Scale(0.5, vec.Vec3{
			g.Range(minSize, maxSize),
			g.Range(minSize, maxSize),
			g.Range(minSize, maxSize),
		})
		pad := vec.Add(half, vec.Vec3{margin, margin, margin})
		inner := geom.AABB{Mins: vec.Add(r.Mins, pad), Maxs: vec.Sub(r.Maxs, pad)}
		c := g.Vec3(inner.Mins, inner.Maxs)
		ids = append(ids, l.AddPrimitive(level.Primitive{
			Shape:    level.ShapeBox,
			Box:      geom.BoxFromCenter(c, half),
			VisGroup: VisGroupProps,
			Owner:    i,
		}))
	}
	return ids
}
