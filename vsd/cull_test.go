// SPDX-License-Identifier: GPL-2.0-or-later

package vsd

import (
	"testing"

	"govsd/geom"
	"govsd/math/vec"
	"govsd/rand"
)

// unitCube is the frustum of the box [-1,1]^3.
var unitCube = []geom.Plane{
	{Normal: vec.Vec3{1, 0, 0}, D: 1},
	{Normal: vec.Vec3{-1, 0, 0}, D: 1},
	{Normal: vec.Vec3{0, 1, 0}, D: 1},
	{Normal: vec.Vec3{0, -1, 0}, D: 1},
	{Normal: vec.Vec3{0, 0, 1}, D: 1},
	{Normal: vec.Vec3{0, 0, -1}, D: 1},
}

func randomBoxes(g *rand.Generator, n int) []geom.AABB4 {
	boxes := make([]geom.AABB4, n)
	for i := range boxes {
		c := g.Vec3(vec.Vec3{-4, -4, -4}, vec.Vec3{4, 4, 4})
		h := g.Vec3(vec.Vec3{0.01, 0.01, 0.01}, vec.Vec3{2, 2, 2})
		boxes[i] = geom.BoxFromCenter(c, h).To4()
	}
	return boxes
}

func randomPlanes(g *rand.Generator, n int) []geom.Plane {
	planes := make([]geom.Plane, n)
	for i := range planes {
		nrm := g.Vec3(vec.Vec3{-1, -1, -1}, vec.Vec3{1, 1, 1}).Normalize()
		planes[i] = geom.Plane{Normal: nrm, D: g.Range(-1, 3)}
	}
	return planes
}

func TestCullBoxSingle(t *testing.T) {
	tests := []struct {
		box  geom.AABB
		want bool
	}{
		{geom.BoxFromCenter(vec.Vec3{}, vec.Vec3{0.5, 0.5, 0.5}), false},
		{geom.BoxFromCenter(vec.Vec3{3, 0, 0}, vec.Vec3{0.5, 0.5, 0.5}), true},
		{geom.BoxFromCenter(vec.Vec3{1.2, 0, 0}, vec.Vec3{0.5, 0.5, 0.5}), false},
		{geom.BoxFromCenter(vec.Vec3{}, vec.Vec3{5, 5, 5}), false},
		// touching a plane from outside counts as outside
		{geom.AABB{Mins: vec.Vec3{1, 0, 0}, Maxs: vec.Vec3{2, 1, 1}}, true},
	}
	for _, tc := range tests {
		if got := CullBoxSingle(tc.box, unitCube); got != tc.want {
			t.Errorf("CullBoxSingle(%v) = %v, want %v", tc.box, got, tc.want)
		}
	}
}

func TestCullSphereSingle(t *testing.T) {
	tests := []struct {
		s    geom.Sphere
		want bool
	}{
		{geom.Sphere{Center: vec.Vec3{}, Radius: 0.5}, false},
		{geom.Sphere{Center: vec.Vec3{2, 0, 0}, Radius: 0.5}, true},
		{geom.Sphere{Center: vec.Vec3{1.4, 0, 0}, Radius: 0.5}, false},
		{geom.Sphere{Center: vec.Vec3{0, 0, -1.5}, Radius: 0.5}, true},
	}
	for _, tc := range tests {
		if got := CullSphereSingle(tc.s, unitCube); got != tc.want {
			t.Errorf("CullSphereSingle(%v) = %v, want %v", tc.s, got, tc.want)
		}
	}
}

func TestCullBoxSSEMatchesGeneric(t *testing.T) {
	g := rand.New(7)
	for _, n := range []int{0, 1, 3, 4, 5, 64, 1001} {
		boxes := randomBoxes(&g, n)
		planes := randomPlanes(&g, 5)
		want := make([]bool, n)
		got := make([]bool, n)
		CullBoxGeneric(boxes, planes, want)
		CullBoxSSE(boxes, planes, got)
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("n=%v: CullBoxSSE box %v = %v, want %v", n, i, got[i], want[i])
			}
		}
	}
}

func TestCullBoxGenericMatchesSingle(t *testing.T) {
	g := rand.New(3)
	boxes := randomBoxes(&g, 200)
	culled := make([]bool, len(boxes))
	CullBoxGeneric(boxes, unitCube, culled)
	for i, b := range boxes {
		if want := CullBoxSingle(b.AABB(), unitCube); culled[i] != want {
			t.Errorf("box %v: CullBoxGeneric = %v, CullBoxSingle = %v", i, culled[i], want)
		}
	}
}

// A culled box never contains a point inside all planes.
func TestCullBoxConservative(t *testing.T) {
	g := rand.New(11)
	boxes := randomBoxes(&g, 300)
	culled := make([]bool, len(boxes))
	CullBoxSSE(boxes, unitCube, culled)
	for i, b := range boxes {
		if !culled[i] {
			continue
		}
		box := b.AABB()
		for k := 0; k < 50; k++ {
			p := g.Vec3(box.Mins, box.Maxs)
			inside := true
			for _, pl := range unitCube {
				if pl.Dist(p) <= 0 {
					inside = false
				}
			}
			if inside {
				t.Fatalf("box %v culled but contains %v", box, p)
			}
		}
	}
}

// Adding a plane never makes a culled box visible.
func TestCullBoxMonotonic(t *testing.T) {
	g := rand.New(5)
	boxes := randomBoxes(&g, 500)
	planes := randomPlanes(&g, 6)
	prev := make([]bool, len(boxes))
	cur := make([]bool, len(boxes))
	for k := 1; k <= len(planes); k++ {
		CullBoxSSE(boxes, planes[:k], cur)
		for i := range boxes {
			if prev[i] && !cur[i] {
				t.Errorf("box %v culled by %v planes, visible with %v", i, k-1, k)
			}
		}
		copy(prev, cur)
	}
}

func TestCullNode(t *testing.T) {
	planes := unitCube[:4]
	tests := []struct {
		box      geom.AABB
		culled   bool
		wantBits uint8
	}{
		{geom.BoxFromCenter(vec.Vec3{}, vec.Vec3{0.5, 0.5, 0.5}), false, 0},
		{geom.BoxFromCenter(vec.Vec3{1, 0, 0}, vec.Vec3{0.5, 0.5, 0.5}), false, 0x2},
		{geom.BoxFromCenter(vec.Vec3{0, -1, 0}, vec.Vec3{0.5, 0.5, 0.5}), false, 0x4},
		{geom.BoxFromCenter(vec.Vec3{0, 0, 0}, vec.Vec3{2, 2, 2}), false, 0xf},
		{geom.BoxFromCenter(vec.Vec3{5, 0, 0}, vec.Vec3{0.5, 0.5, 0.5}), true, 0},
	}
	for _, tc := range tests {
		bits := uint8(0xf)
		culled := cullNode(tc.box, planes, &bits)
		if culled != tc.culled {
			t.Errorf("cullNode(%v) = %v, want %v", tc.box, culled, tc.culled)
			continue
		}
		if !culled && bits != tc.wantBits {
			t.Errorf("cullNode(%v) bits = %04b, want %04b", tc.box, bits, tc.wantBits)
		}
	}
}

func TestCullNodeSkipsClearedPlanes(t *testing.T) {
	b := geom.BoxFromCenter(vec.Vec3{-5, 0, 0}, vec.Vec3{0.5, 0.5, 0.5})
	bits := uint8(0xe)
	if cullNode(b, unitCube[:4], &bits) {
		t.Errorf("cullNode with plane 0 cleared culled %v", b)
	}
}

func TestCullNodeAgreesWithCullBoxSingle(t *testing.T) {
	g := rand.New(13)
	planes := randomPlanes(&g, 4)
	for i, b := range randomBoxes(&g, 300) {
		bits := uint8(0xf)
		box := b.AABB()
		if got, want := cullNode(box, planes, &bits), CullBoxSingle(box, planes); got != want {
			t.Errorf("box %v: cullNode = %v, CullBoxSingle = %v", i, got, want)
		}
	}
}
