// SPDX-License-Identifier: GPL-2.0-or-later

package vsd

import (
	"testing"

	"github.com/chewxy/math32"

	"govsd/geom"
	"govsd/level"
	"govsd/levelgen"
	"govsd/math/vec"
	"govsd/rand"
)

func near(a, b float32) bool {
	return math32.Abs(a-b) <= 1e-4
}

func TestRaycastClosestThroughPortal(t *testing.T) {
	r := newRooms()
	s := New(DefaultConfig())
	var hit ClosestHit
	if !s.RaycastClosest(r.l, vec.Vec3{-5, 1, 0}, vec.Vec3{12, 1, 0}, nil, &hit) {
		t.Fatalf("RaycastClosest() = false, want a hit")
	}
	if hit.Primitive != r.sphere || hit.Surface != -1 || hit.Object != "sphere" {
		t.Errorf("hit = primitive %v surface %v object %v, want the sphere", hit.Primitive, hit.Surface, hit.Object)
	}
	if !near(hit.Distance, 9) {
		t.Errorf("Distance = %v, want 9", hit.Distance)
	}
	if !vec.NearEqual(hit.Location, vec.Vec3{4, 1, 0}, 1e-4) {
		t.Errorf("Location = %v, want (4 1 0)", hit.Location)
	}
	if !vec.NearEqual(hit.Normal, vec.Vec3{-1, 0, 0}, 1e-4) {
		t.Errorf("Normal = %v, want (-1 0 0)", hit.Normal)
	}

	r.l.SetPortalBlocked(r.portal, true)
	if s.RaycastClosest(r.l, vec.Vec3{-5, 1, 0}, vec.Vec3{12, 1, 0}, nil, &hit) {
		t.Errorf("RaycastClosest() through blocked portal = true, want false")
	}
}

func TestRaycastClosestSurface(t *testing.T) {
	r := newRooms()
	s := New(DefaultConfig())
	f := DefaultFilter()
	f.VisibilityMask = 1
	var hit ClosestHit
	if !s.RaycastClosest(r.l, vec.Vec3{-5, 1, 0}, vec.Vec3{12, 1, 0}, &f, &hit) {
		t.Fatalf("RaycastClosest() = false, want the wall")
	}
	if hit.Surface != r.wall || hit.Primitive != -1 {
		t.Fatalf("hit = surface %v primitive %v, want surface %v", hit.Surface, hit.Primitive, r.wall)
	}
	if !near(hit.Distance, 15) {
		t.Errorf("Distance = %v, want 15", hit.Distance)
	}
	if !vec.NearEqual(hit.Location, vec.Vec3{10, 1, 0}, 1e-4) {
		t.Errorf("Location = %v, want (10 1 0)", hit.Location)
	}
	if !vec.NearEqual(hit.Normal, vec.Vec3{-1, 0, 0}, 1e-6) {
		t.Errorf("Normal = %v, want the face normal", hit.Normal)
	}
	if !near(hit.TexCoord[0], 0.6) || !near(hit.TexCoord[1], 0.5) {
		t.Errorf("TexCoord = %v, want [0.6 0.5]", hit.TexCoord)
	}
	if !hit.HasLightmap || !near(hit.LightmapUV[0], 0.6) || !near(hit.LightmapUV[1], 0.5) {
		t.Errorf("LightmapUV = %v (%v), want [0.6 0.5]", hit.LightmapUV, hit.HasLightmap)
	}
	if hit.LightmapSample != [3]float32{0, 1, 0} {
		t.Errorf("LightmapSample = %v, want the second texel", hit.LightmapSample)
	}
	if hit.Material == nil || hit.Material.Name != "wall" {
		t.Errorf("Material = %v, want wall", hit.Material)
	}
	if u, v := hit.UV[0], hit.UV[1]; u < 0 || v < 0 || u+v > 1 {
		t.Errorf("UV = %v, want barycentric weights", hit.UV)
	}
}

func TestRaycastBackFace(t *testing.T) {
	r := newRooms()
	s := New(DefaultConfig())
	f := DefaultFilter()
	f.VisibilityMask = 1
	var hit ClosestHit
	// turn the wall away from the ray
	surf := &r.l.Surfaces[r.wall]
	surf.Face = surf.Face.Flipped()
	r.l.Mesh.Indices = []uint32{0, 2, 1, 0, 3, 2}
	if s.RaycastClosest(r.l, vec.Vec3{-5, 1, 0}, vec.Vec3{12, 1, 0}, &f, &hit) {
		t.Errorf("RaycastClosest() hit the back of a back culled wall")
	}
	surf.FaceCull = level.CullNone
	if !s.RaycastClosest(r.l, vec.Vec3{-5, 1, 0}, vec.Vec3{12, 1, 0}, &f, &hit) {
		t.Errorf("RaycastClosest() missed a double sided wall")
	}
}

func TestRaycastAny(t *testing.T) {
	r := newRooms()
	s := New(DefaultConfig())
	var res RaycastResult
	f := DefaultFilter()
	if !s.Raycast(r.l, vec.Vec3{-5, 1, 0}, vec.Vec3{12, 1, 0}, &f, &res) {
		t.Fatalf("Raycast() = false, want hits")
	}
	if len(res.Objects) != 2 {
		t.Fatalf("Raycast() objects = %+v, want wall and sphere", res.Objects)
	}
	if o := res.Objects[0]; o.Surface != r.wall {
		t.Errorf("unsorted first object = %+v, want the wall", o)
	}

	f.SortByDistance = true
	s.Raycast(r.l, vec.Vec3{-5, 1, 0}, vec.Vec3{12, 1, 0}, &f, &res)
	sp, wall := res.Objects[0], res.Objects[1]
	if sp.Primitive != r.sphere || sp.NumHits != 2 || sp.Object != "sphere" {
		t.Errorf("first object = %+v, want the sphere with two hits", sp)
	}
	if d := res.Hits[sp.ClosestHit].Distance; !near(d, 9) {
		t.Errorf("sphere closest distance = %v, want 9", d)
	}
	if wall.Surface != r.wall || wall.NumHits != 1 || !near(res.Hits[wall.ClosestHit].Distance, 15) {
		t.Errorf("second object = %+v, want the wall at 15", wall)
	}
	if m := res.Hits[wall.ClosestHit].Material; m == nil || m.Name != "wall" {
		t.Errorf("wall hit material = %v, want wall", m)
	}
	for i, o := range res.Objects {
		for h := o.FirstHit; h < o.FirstHit+o.NumHits; h++ {
			if res.Hits[h].Distance < res.Hits[o.ClosestHit].Distance {
				t.Errorf("object %v: hit %v nearer than ClosestHit %v", i, h, o.ClosestHit)
			}
		}
	}
}

func TestRaycastCallbacks(t *testing.T) {
	r := newRooms()
	p := &r.l.Primitives[r.sphere]
	calls := 0
	p.RaycastClosest = func(p *level.Primitive, start, dir vec.Vec3, maxDist float32) (level.TriangleHit, bool) {
		calls++
		return level.TriangleHit{
			Location: vec.MA(start, 10, dir),
			Normal:   vec.Vec3{0, 1, 0},
			Distance: 10,
		}, true
	}
	p.Raycast = func(p *level.Primitive, start, end vec.Vec3, hits *[]level.TriangleHit) (int, bool) {
		*hits = append(*hits, level.TriangleHit{Distance: 10.5}, level.TriangleHit{Distance: 10.2})
		return len(*hits) - 1, true
	}
	s := New(DefaultConfig())

	var hit ClosestHit
	if !s.RaycastClosest(r.l, vec.Vec3{-5, 1, 0}, vec.Vec3{12, 1, 0}, nil, &hit) {
		t.Fatalf("RaycastClosest() = false, want the callback hit")
	}
	if calls != 1 || !near(hit.Distance, 10) || hit.Normal != (vec.Vec3{0, 1, 0}) || hit.Primitive != r.sphere {
		t.Errorf("hit = %+v after %v calls, want the callback result", hit, calls)
	}

	// the bounds pretest keeps the callback from running
	s.RaycastClosest(r.l, vec.Vec3{-5, -1.5, 0}, vec.Vec3{9, -1.5, 0}, nil, &hit)
	if calls != 1 {
		t.Errorf("callback ran %v times for a ray missing the bounds", calls)
	}

	var res RaycastResult
	s.Raycast(r.l, vec.Vec3{-5, 1, 0}, vec.Vec3{12, 1, 0}, nil, &res)
	for _, o := range res.Objects {
		if o.Primitive != r.sphere {
			continue
		}
		if o.NumHits != 2 || o.ClosestHit != o.FirstHit+1 {
			t.Errorf("callback object = %+v, want two hits, the second closest", o)
		}
	}
}

func TestRaycastBounds(t *testing.T) {
	r := newRooms()
	s := New(DefaultConfig())
	start, end := vec.Vec3{-5, 0.25, 0}, vec.Vec3{12, 0.25, 0}
	f := DefaultFilter()
	f.SortByDistance = true
	var hits []BoundsHit
	if !s.RaycastBounds(r.l, start, end, &f, &hits) {
		t.Fatalf("RaycastBounds() = false, want hits")
	}
	if len(hits) != 2 {
		t.Fatalf("RaycastBounds() = %+v, want the near box and the sphere", hits)
	}
	if hits[0].Primitive != r.boxNear || !near(hits[0].Distance, 2.5) {
		t.Errorf("first bounds hit = %+v, want the near box at 2.5", hits[0])
	}
	if hits[1].Primitive != r.sphere || hits[1].Distance < 9 || hits[1].Distance > 10 {
		t.Errorf("second bounds hit = %+v, want the sphere", hits[1])
	}

	var hit BoundsHit
	if !s.RaycastClosestBounds(r.l, start, end, nil, &hit) {
		t.Fatalf("RaycastClosestBounds() = false, want a hit")
	}
	if hit.Primitive != r.boxNear || hit.Object != "near" || !vec.NearEqual(hit.Location, vec.Vec3{-2.5, 0.25, 0}, 1e-4) {
		t.Errorf("RaycastClosestBounds() = %+v, want the near box", hit)
	}
}

func TestRaycastDegenerate(t *testing.T) {
	r := newRooms()
	s := New(DefaultConfig())
	p := vec.Vec3{-5, 0, 0}
	var hit ClosestHit
	var res RaycastResult
	var bounds []BoundsHit
	var bhit BoundsHit
	if s.RaycastClosest(r.l, p, p, nil, &hit) ||
		s.Raycast(r.l, p, p, nil, &res) ||
		s.RaycastBounds(r.l, p, p, nil, &bounds) ||
		s.RaycastClosestBounds(r.l, p, p, nil, &bhit) {
		t.Errorf("zero length ray reported a hit")
	}
}

func TestRaycastCorridor(t *testing.T) {
	l, cfg := corridor(t, 0)
	start := vec.Vec3{8, 0, 1.5}
	end := vec.Vec3{70, 0, 1.5}
	endWall := -1
	for _, flood := range []bool{false, true} {
		c := DefaultConfig()
		c.ForcePortalFlood = flood
		s := New(c)
		var hit ClosestHit
		if !s.RaycastClosest(l, start, end, nil, &hit) {
			t.Fatalf("flood=%v: RaycastClosest() = false, want the end wall", flood)
		}
		if !near(hit.Distance, 56) {
			t.Errorf("flood=%v: Distance = %v, want 56", flood, hit.Distance)
		}
		if hit.Material == nil || hit.Material != l.Materials[levelgen.MatWall] {
			t.Errorf("flood=%v: Material = %v, want wall", flood, hit.Material)
		}
		if endWall < 0 {
			endWall = hit.Surface
		} else if hit.Surface != endWall {
			t.Errorf("flood=%v: Surface = %v, want %v", flood, hit.Surface, endWall)
		}

		var res RaycastResult
		s.Raycast(l, start, end, nil, &res)
		if len(res.Objects) != 1 || res.Objects[0].Surface != endWall {
			t.Errorf("flood=%v: Raycast() = %+v, want only the end wall", flood, res.Objects)
		}
	}
	last := l.Areas[cfg.Rooms-1].Surfaces
	found := false
	for _, si := range last {
		found = found || si == endWall
	}
	if !found {
		t.Errorf("surface %v is not in the last room", endWall)
	}
}

// A ray from the outdoor area through the entrance door hits a sphere in
// the first room.
func TestRaycastFromOutside(t *testing.T) {
	l, cfg := corridor(t, 0)
	const r = 0.5
	center := levelgen.RoomCenter(cfg, 0)
	ball := l.AddPrimitive(level.Primitive{
		Shape:    level.ShapeSphere,
		Sphere:   geom.Sphere{Center: center, Radius: r},
		VisGroup: levelgen.VisGroupProps,
		Owner:    "ball",
	})
	start := vec.Vec3{-10, 0, center[2]}
	end := vec.Vec3{20, 0, center[2]}
	want := center[0] - start[0] - r
	for _, flood := range []bool{false, true} {
		c := DefaultConfig()
		c.ForcePortalFlood = flood
		s := New(c)

		var hit ClosestHit
		if !s.RaycastClosest(l, start, end, nil, &hit) {
			t.Fatalf("flood=%v: RaycastClosest() = false, want the ball", flood)
		}
		if hit.Primitive != ball || hit.Object != "ball" {
			t.Errorf("flood=%v: hit %v (%v), want primitive %v (ball)", flood, hit.Primitive, hit.Object, ball)
		}
		if math32.Abs(hit.Distance-want) > 1e-3 {
			t.Errorf("flood=%v: Distance = %v, want %v", flood, hit.Distance, want)
		}
		if !vec.NearEqual(hit.Normal, vec.Vec3{-1, 0, 0}, 1e-3) {
			t.Errorf("flood=%v: Normal = %v, want (-1 0 0)", flood, hit.Normal)
		}

		var bhit BoundsHit
		if !s.RaycastClosestBounds(l, start, end, nil, &bhit) || bhit.Primitive != ball {
			t.Errorf("flood=%v: RaycastClosestBounds() = %+v, want primitive %v", flood, bhit, ball)
		} else if math32.Abs(bhit.Distance-want) > 1e-3 {
			t.Errorf("flood=%v: bounds Distance = %v, want %v", flood, bhit.Distance, want)
		}
	}
}

// The closest hit is the nearest of all hits, and sorted results are
// ordered.
func TestRaycastOrdering(t *testing.T) {
	l, cfg := corridor(t, 300)
	g := rand.New(29)
	bounds := l.Areas[0].Bounds
	bounds.AddAABB(l.Areas[cfg.Rooms-1].Bounds)
	for _, flood := range []bool{false, true} {
		c := DefaultConfig()
		c.ForcePortalFlood = flood
		s := New(c)
		f := DefaultFilter()
		f.SortByDistance = true
		for i := 0; i < 100; i++ {
			start := g.Vec3(vec.Add(bounds.Mins, vec.Vec3{0.5, 0.5, 0.5}), vec.Sub(bounds.Maxs, vec.Vec3{0.5, 0.5, 0.5}))
			end := g.Vec3(vec.Sub(bounds.Mins, vec.Vec3{2, 2, 2}), vec.Add(bounds.Maxs, vec.Vec3{2, 2, 2}))

			var res RaycastResult
			hasAny := s.Raycast(l, start, end, &f, &res)
			var hit ClosestHit
			closest := s.RaycastClosest(l, start, end, &f, &hit)
			if hasAny != closest {
				t.Errorf("flood=%v ray %v: Raycast() = %v, RaycastClosest() = %v", flood, i, hasAny, closest)
				continue
			}
			if !hasAny {
				continue
			}
			prev := float32(-1)
			for _, o := range res.Objects {
				d := res.Hits[o.ClosestHit].Distance
				if d < prev {
					t.Errorf("flood=%v ray %v: objects not sorted by distance", flood, i)
				}
				prev = d
			}
			if want := res.Hits[res.Objects[0].ClosestHit].Distance; math32.Abs(hit.Distance-want) > 1e-3 {
				t.Errorf("flood=%v ray %v: closest distance = %v, want %v", flood, i, hit.Distance, want)
			}
		}
	}
}
