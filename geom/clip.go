// SPDX-License-Identifier: GPL-2.0-or-later

package geom

import (
	"govsd/math/vec"
)

// MaxHullPoints bounds the vertex count of a clipped polygon.
const MaxHullPoints = 128

type ClipResult int

const (
	// ClipFront means no vertex was behind the plane, out is a copy of in.
	ClipFront ClipResult = iota
	// ClipBack means no vertex was in front of the plane, out is empty.
	ClipBack
	// ClipSplit means the polygon crossed the plane.
	ClipSplit
	// ClipOverflow means in or the result had more than MaxHullPoints
	// vertices. out is unusable.
	ClipOverflow
)

const (
	onFront = iota
	onBack
	onPlane
)

// ClipPolygon keeps the part of in on the front side of p and appends it to
// out[:0]. Vertices within epsilon of the plane count as on the plane.
func ClipPolygon(out, in []vec.Vec3, p Plane, epsilon float32) ([]vec.Vec3, ClipResult) {
	out = out[:0]
	n := len(in)
	if n > MaxHullPoints {
		return out, ClipOverflow
	}
	var (
		dists [MaxHullPoints + 1]float32
		sides [MaxHullPoints + 1]int8
	)
	front, back := 0, 0
	for i := 0; i < n; i++ {
		d := p.Dist(in[i])
		dists[i] = d
		switch {
		case d > epsilon:
			sides[i] = onFront
			front++
		case d < -epsilon:
			sides[i] = onBack
			back++
		default:
			sides[i] = onPlane
		}
	}
	if front == 0 {
		return out, ClipBack
	}
	if back == 0 {
		return append(out, in...), ClipFront
	}
	dists[n] = dists[0]
	sides[n] = sides[0]

	for i := 0; i < n; i++ {
		if len(out) >= MaxHullPoints {
			return out, ClipOverflow
		}
		a := in[i]
		if sides[i] == onPlane {
			out = append(out, a)
			continue
		}
		if sides[i] == onFront {
			out = append(out, a)
		}
		if sides[i+1] == onPlane || sides[i+1] == sides[i] {
			continue
		}
		if len(out) >= MaxHullPoints {
			return out, ClipOverflow
		}
		b := in[(i+1)%n]
		frac := dists[i] / (dists[i] - dists[i+1])
		var mid vec.Vec3
		for j := 0; j < 3; j++ {
			// keep axial planes exact
			switch p.Normal[j] {
			case 1:
				mid[j] = -p.D
			case -1:
				mid[j] = p.D
			default:
				mid[j] = a[j] + frac*(b[j]-a[j])
			}
		}
		out = append(out, mid)
	}
	return out, ClipSplit
}
