// SPDX-License-Identifier: GPL-2.0-or-later

package vsd

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"github.com/chewxy/math32"

	"govsd/geom"
	"govsd/level"
	math2 "govsd/math"
	"govsd/math/vec"
)

// minRayLength rejects degenerate rays.
const minRayLength = 1e-4

// RaycastFilter restricts which objects a ray can hit. The masks work like
// the masks of a Query.
type RaycastFilter struct {
	QueryMask      uint32
	VisibilityMask uint32
	SortByDistance bool
}

// DefaultFilter hits every object.
func DefaultFilter() RaycastFilter {
	return RaycastFilter{VisibilityMask: ^uint32(0)}
}

// ClosestHit describes the nearest intersection of a ray. Surface or
// Primitive is -1 depending on what was hit.
type ClosestHit struct {
	Object    any
	Primitive int
	Surface   int

	Location vec.Vec3
	Normal   vec.Vec3
	Distance float32
	// UV are the barycentric weights of the second and third vertex.
	UV       [2]float32
	Vertices [3]vec.Vec3
	Indices  [3]uint32

	TexCoord       [2]float32
	HasLightmap    bool
	LightmapUV     [2]float32
	LightmapSample [3]float32
	Material       *level.Material
}

// PrimitiveHit groups the hits of one object in RaycastResult.Hits.
// ClosestHit indexes RaycastResult.Hits.
type PrimitiveHit struct {
	Object     any
	Primitive  int
	Surface    int
	FirstHit   int
	NumHits    int
	ClosestHit int
}

type RaycastResult struct {
	Hits    []level.TriangleHit
	Objects []PrimitiveHit
}

// BoundsHit is a ray hitting the bounding volume of a primitive.
type BoundsHit struct {
	Object    any
	Primitive int
	Location  vec.Vec3
	Distance  float32
}

type rayMode int

const (
	rayClosest rayMode = iota
	rayAny
	rayBounds
	rayClosestBounds
)

func (m rayMode) closest() bool {
	return m == rayClosest || m == rayClosestBounds
}

type rayState struct {
	mode   rayMode
	filter RaycastFilter
	start  vec.Vec3
	end    vec.Vec3
	dir    vec.Vec3
	length float32

	// hitDistMin only shrinks during a closest hit query.
	hitDistMin float32
	closest    ClosestHit
	hasHit     bool

	result *RaycastResult
	bounds *[]BoundsHit
}

func (s *System) beginRay(l *level.Level, start, end vec.Vec3, filter *RaycastFilter, mode rayMode) bool {
	s.reloadCvars()
	delta := vec.Sub(end, start)
	length := delta.Length()
	if length < minRayLength {
		return false
	}
	r := &s.ray
	*r = rayState{
		mode:       mode,
		filter:     DefaultFilter(),
		start:      start,
		end:        end,
		dir:        vec.Scale(1/length, delta),
		length:     length,
		hitDistMin: math.MaxFloat32,
	}
	if filter != nil {
		r.filter = *filter
	}
	s.level = l
	s.marker = l.NextMarker()
	s.warnedDepth = false
	return true
}

func (s *System) endRay() {
	s.level = nil
	s.ray.result = nil
	s.ray.bounds = nil
}

func (s *System) traceRay() {
	l := s.level
	r := &s.ray
	if l.HasPVS && l.HasTree() && !s.cfg.ForcePortalFlood {
		s.rayNode(l.Root, r.start, r.end)
		return
	}
	if area := l.FindArea(r.start); area >= 0 {
		s.rayFlood(area, 0)
	}
}

// RaycastClosest finds the nearest surface or primitive on the segment.
func (s *System) RaycastClosest(l *level.Level, start, end vec.Vec3, filter *RaycastFilter, hit *ClosestHit) bool {
	if !s.beginRay(l, start, end, filter, rayClosest) {
		return false
	}
	defer s.endRay()
	s.traceRay()
	if !s.ray.hasHit {
		return false
	}
	s.resolveHit(&s.ray.closest)
	*hit = s.ray.closest
	return true
}

// Raycast collects every intersection with the segment, grouped by object.
func (s *System) Raycast(l *level.Level, start, end vec.Vec3, filter *RaycastFilter, result *RaycastResult) bool {
	result.Hits = result.Hits[:0]
	result.Objects = result.Objects[:0]
	if !s.beginRay(l, start, end, filter, rayAny) {
		return false
	}
	defer s.endRay()
	s.ray.result = result
	s.traceRay()
	if s.ray.filter.SortByDistance {
		slices.SortStableFunc(result.Objects, func(a, b PrimitiveHit) int {
			return cmp.Compare(result.Hits[a.ClosestHit].Distance, result.Hits[b.ClosestHit].Distance)
		})
	}
	return len(result.Objects) > 0
}

// RaycastBounds collects every primitive whose bounding volume the segment
// touches. Exact shapes and surfaces are not tested.
func (s *System) RaycastBounds(l *level.Level, start, end vec.Vec3, filter *RaycastFilter, hits *[]BoundsHit) bool {
	*hits = (*hits)[:0]
	if !s.beginRay(l, start, end, filter, rayBounds) {
		return false
	}
	defer s.endRay()
	s.ray.bounds = hits
	s.traceRay()
	if s.ray.filter.SortByDistance {
		slices.SortStableFunc(*hits, func(a, b BoundsHit) int {
			return cmp.Compare(a.Distance, b.Distance)
		})
	}
	return len(*hits) > 0
}

// RaycastClosestBounds finds the primitive with the nearest bounding volume
// on the segment.
func (s *System) RaycastClosestBounds(l *level.Level, start, end vec.Vec3, filter *RaycastFilter, hit *BoundsHit) bool {
	if !s.beginRay(l, start, end, filter, rayClosestBounds) {
		return false
	}
	defer s.endRay()
	s.traceRay()
	if !s.ray.hasHit {
		return false
	}
	c := &s.ray.closest
	*hit = BoundsHit{
		Object:    c.Object,
		Primitive: c.Primitive,
		Location:  c.Location,
		Distance:  c.Distance,
	}
	return true
}

// rayNode descends the tree along the part p1, p2 of the ray, near side
// first. It reports true once nothing behind p2 can matter.
func (s *System) rayNode(n level.NodeRef, p1, p2 vec.Vec3) bool {
	l := s.level
	r := &s.ray
	for {
		if n.IsSolid() {
			return true
		}
		if n.IsLeaf() {
			if a := l.Leafs[n.Leaf()].Area; a >= 0 {
				s.rayArea(a)
			}
			return r.mode.closest() && r.hitDistMin <= vec.Dist(r.start, p2)
		}
		node := &l.Nodes[n.Node()]
		d1 := node.Plane.Dist(p1)
		d2 := node.Plane.Dist(p2)
		if d1 >= 0 && d2 >= 0 {
			n = node.Children[0]
			continue
		}
		if d1 < 0 && d2 < 0 {
			n = node.Children[1]
			continue
		}
		frac := math2.Clamp(0, d1/(d1-d2), 1)
		mid := vec.Lerp(p1, p2, frac)
		side := 0
		if d1 < 0 {
			side = 1
		}
		if s.rayNode(node.Children[side], p1, mid) {
			return true
		}
		n = node.Children[side^1]
		p1 = mid
	}
}

// rayFlood tests area and follows the ray through the open portals it
// passes.
func (s *System) rayFlood(area, depth int) {
	l := s.level
	r := &s.ray
	s.rayArea(area)
	for _, li := range l.Areas[area].Portals {
		link := &l.PortalLinks[li]
		portal := &l.Portals[link.Portal]
		if portal.Blocked || portal.VisMark == s.marker {
			continue
		}
		d1 := link.Plane.Dist(r.start)
		d2 := link.Plane.Dist(r.end)
		if d1 <= 0 || d2 > 0 {
			continue
		}
		frac := d1 / (d1 - d2)
		if r.mode.closest() && frac*r.length > r.hitDistMin {
			continue
		}
		p := vec.Lerp(r.start, r.end, frac)
		if !geom.PointInConvexHull(p, link.Hull, link.Plane.Normal) {
			continue
		}
		if depth+1 >= MaxPortalStack {
			if !s.warnedDepth {
				s.warnedDepth = true
				s.log.Warn("raycast portal depth exceeded", slog.Int("depth", depth+1), slog.String("level", l.Name))
			}
			return
		}
		portal.VisMark = s.marker
		s.rayFlood(link.ToArea, depth+1)
	}
}

func (s *System) rayFiltered(queryGroup, visGroup uint32) bool {
	f := &s.ray.filter
	return queryGroup&f.QueryMask != f.QueryMask || visGroup&f.VisibilityMask == 0
}

// limit is the farthest distance a new hit may have.
func (s *System) limit() float32 {
	r := &s.ray
	if r.mode.closest() {
		return min(r.length, r.hitDistMin)
	}
	return r.length
}

func (s *System) rayArea(area int) {
	l := s.level
	a := &l.Areas[area]
	bounds := s.ray.mode == rayBounds || s.ray.mode == rayClosestBounds
	if !bounds {
		for _, si := range a.Surfaces {
			surf := &l.Surfaces[si]
			if surf.VisMark == s.marker {
				continue
			}
			surf.VisMark = s.marker
			if s.rayFiltered(surf.QueryGroup, surf.VisGroup) {
				continue
			}
			s.raySurface(si, surf)
		}
	}
	for _, pi := range a.Primitives {
		p := &l.Primitives[pi]
		if p.VisMark == s.marker {
			continue
		}
		p.VisMark = s.marker
		if s.rayFiltered(p.QueryGroup, p.VisGroup) {
			continue
		}
		if bounds {
			s.rayPrimitiveBounds(pi, p)
		} else {
			s.rayPrimitive(pi, p)
		}
	}
}

func (s *System) raySurface(si int, surf *level.Surface) {
	l := s.level
	r := &s.ray
	lim := s.limit()
	switch surf.Type {
	case level.SurfacePlanar:
		t, ok := geom.RayIntersectPlane(r.start, r.dir, surf.Face)
		if !ok || t < 0 || t > lim {
			return
		}
	case level.SurfaceTrisoup:
		tMin, tMax, ok := geom.RayIntersectBox(r.start, r.dir, surf.Bounds)
		if !ok || tMax < 0 || tMin > lim {
			return
		}
	}

	cullBack := surf.FaceCull == level.CullBack
	idx := l.SurfaceIndices(surf)
	first := 0
	if r.mode == rayAny {
		first = len(r.result.Hits)
	}
	for i := 0; i+2 < len(idx); i += 3 {
		tri := [3]uint32{idx[i], idx[i+1], idx[i+2]}
		a := l.SurfaceVertex(surf, tri[0]).Pos
		b := l.SurfaceVertex(surf, tri[1]).Pos
		c := l.SurfaceVertex(surf, tri[2]).Pos
		dist, u, v, ok := geom.RayIntersectTriangle(r.start, r.dir, a, b, c, cullBack)
		if !ok || dist > s.limit() {
			continue
		}
		normal := surf.Face.Normal
		if surf.Type != level.SurfacePlanar {
			normal = vec.Cross(vec.Sub(b, a), vec.Sub(c, a)).Normalize()
		}
		if r.mode == rayAny {
			r.result.Hits = append(r.result.Hits, level.TriangleHit{
				Location: vec.MA(r.start, dist, r.dir),
				Normal:   normal,
				UV:       [2]float32{u, v},
				Distance: dist,
				Vertices: [3]vec.Vec3{a, b, c},
				Indices:  tri,
				Material: l.Material(surf.Material),
			})
			continue
		}
		r.hitDistMin = dist
		r.hasHit = true
		r.closest = ClosestHit{
			Primitive: -1,
			Surface:   si,
			Normal:    normal,
			Distance:  dist,
			UV:        [2]float32{u, v},
			Vertices:  [3]vec.Vec3{a, b, c},
			Indices:   tri,
		}
	}
	if r.mode == rayAny {
		s.groupHits(PrimitiveHit{Surface: si, Primitive: -1}, first, -1)
	}
}

// groupHits records the hits appended since first as one object. closest is
// the index of the nearest hit or -1 to search for it.
func (s *System) groupHits(ph PrimitiveHit, first, closest int) {
	hits := s.ray.result.Hits
	if len(hits) == first {
		return
	}
	if closest < first || closest >= len(hits) {
		closest = first
		for i := first + 1; i < len(hits); i++ {
			if hits[i].Distance < hits[closest].Distance {
				closest = i
			}
		}
	}
	ph.FirstHit = first
	ph.NumHits = len(hits) - first
	ph.ClosestHit = closest
	s.ray.result.Objects = append(s.ray.result.Objects, ph)
}

func (s *System) rayPrimitive(pi int, p *level.Primitive) {
	r := &s.ray
	b := p.Bounds()
	tMin, tMax, ok := geom.RayIntersectBox(r.start, r.dir, b)
	if !ok || tMax < 0 || tMin > s.limit() {
		return
	}

	if r.mode == rayAny {
		first := len(r.result.Hits)
		closest := -1
		switch {
		case p.Raycast != nil:
			closest, _ = p.Raycast(p, r.start, r.end, &r.result.Hits)
		case p.Shape == level.ShapeBox:
			s.addShapeHits(p, tMin, tMax, func(loc vec.Vec3) vec.Vec3 { return boxNormal(b, loc) })
		case p.Shape == level.ShapeSphere:
			if t0, t1, ok := geom.RayIntersectSphere(r.start, r.dir, p.Sphere); ok {
				s.addShapeHits(p, t0, t1, func(loc vec.Vec3) vec.Vec3 { return sphereNormal(p.Sphere, loc) })
			}
		}
		s.groupHits(PrimitiveHit{Object: p.Owner, Primitive: pi, Surface: -1}, first, closest)
		return
	}

	if p.RaycastClosest != nil {
		th, ok := p.RaycastClosest(p, r.start, r.dir, s.limit())
		if !ok || th.Distance < 0 || th.Distance > s.limit() {
			return
		}
		s.setClosestPrimitive(pi, p, th.Distance, th.Normal)
		c := &r.closest
		c.Location = th.Location
		c.UV = th.UV
		c.Vertices = th.Vertices
		c.Indices = th.Indices
		c.Material = th.Material
		return
	}

	var t float32
	switch p.Shape {
	case level.ShapeBox:
		t = tMin
		if t < 0 {
			t = tMax
		}
		if t > s.limit() {
			return
		}
		s.setClosestPrimitive(pi, p, t, boxNormal(b, vec.MA(r.start, t, r.dir)))
	case level.ShapeSphere:
		t0, t1, ok := geom.RayIntersectSphere(r.start, r.dir, p.Sphere)
		if !ok {
			return
		}
		t = t0
		if t < 0 {
			t = t1
		}
		if t < 0 || t > s.limit() {
			return
		}
		s.setClosestPrimitive(pi, p, t, sphereNormal(p.Sphere, vec.MA(r.start, t, r.dir)))
	}
}

// addShapeHits appends the entry and exit points of a native shape that lie
// on the segment.
func (s *System) addShapeHits(p *level.Primitive, t0, t1 float32, normal func(vec.Vec3) vec.Vec3) {
	r := &s.ray
	for _, t := range [2]float32{t0, t1} {
		if t < 0 || t > r.length {
			continue
		}
		loc := vec.MA(r.start, t, r.dir)
		r.result.Hits = append(r.result.Hits, level.TriangleHit{
			Location: loc,
			Normal:   normal(loc),
			Distance: t,
		})
		if t0 == t1 {
			break
		}
	}
}

func (s *System) setClosestPrimitive(pi int, p *level.Primitive, t float32, normal vec.Vec3) {
	r := &s.ray
	r.hitDistMin = t
	r.hasHit = true
	r.closest = ClosestHit{
		Object:    p.Owner,
		Primitive: pi,
		Surface:   -1,
		Location:  vec.MA(r.start, t, r.dir),
		Normal:    normal,
		Distance:  t,
	}
}

func (s *System) rayPrimitiveBounds(pi int, p *level.Primitive) {
	r := &s.ray
	var t0, t1 float32
	var ok bool
	switch p.Shape {
	case level.ShapeBox:
		t0, t1, ok = geom.RayIntersectBox(r.start, r.dir, p.Box)
	case level.ShapeSphere:
		t0, t1, ok = geom.RayIntersectSphere(r.start, r.dir, p.Sphere)
	}
	if !ok || t1 < 0 {
		return
	}
	t := max(t0, 0)
	if t > s.limit() {
		return
	}
	if r.mode == rayClosestBounds {
		s.setClosestPrimitive(pi, p, t, vec.Vec3{})
		return
	}
	*r.bounds = append(*r.bounds, BoundsHit{
		Object:    p.Owner,
		Primitive: pi,
		Location:  vec.MA(r.start, t, r.dir),
		Distance:  t,
	})
}

// boxNormal returns the outward normal of the box face nearest to p.
func boxNormal(b geom.AABB, p vec.Vec3) vec.Vec3 {
	c := b.Center()
	h := b.HalfSize()
	axis, best := 0, float32(-1)
	for i := 0; i < 3; i++ {
		if h[i] <= 0 {
			continue
		}
		if d := math32.Abs(p[i]-c[i]) / h[i]; d > best {
			axis, best = i, d
		}
	}
	var n vec.Vec3
	n[axis] = 1
	if p[axis] < c[axis] {
		n[axis] = -1
	}
	return n
}

func sphereNormal(sp geom.Sphere, p vec.Vec3) vec.Vec3 {
	return vec.Sub(p, sp.Center).Normalize()
}

// resolveHit fills location, texture coordinates, lightmap data and material
// of a surface hit.
func (s *System) resolveHit(c *ClosestHit) {
	if c.Surface < 0 {
		return
	}
	l := s.level
	surf := &l.Surfaces[c.Surface]
	u, v := c.UV[0], c.UV[1]
	w := 1 - u - v
	c.Location = vec.Barycentric(c.Vertices[0], c.Vertices[1], c.Vertices[2], u, v)
	va := l.SurfaceVertex(surf, c.Indices[0])
	vb := l.SurfaceVertex(surf, c.Indices[1])
	vc := l.SurfaceVertex(surf, c.Indices[2])
	c.TexCoord = [2]float32{
		w*va.S + u*vb.S + v*vc.S,
		w*va.T + u*vb.T + v*vc.T,
	}
	c.Material = l.Material(surf.Material)
	if surf.Lightmap < 0 || len(l.Mesh.LightmapUVs) == 0 {
		return
	}
	uvs := l.Mesh.LightmapUVs
	ua := uvs[surf.FirstVertex+int(c.Indices[0])]
	ub := uvs[surf.FirstVertex+int(c.Indices[1])]
	uc := uvs[surf.FirstVertex+int(c.Indices[2])]
	c.HasLightmap = true
	c.LightmapUV = [2]float32{
		w*ua[0] + u*ub[0] + v*uc[0],
		w*ua[1] + u*ub[1] + v*uc[1],
	}
	c.LightmapSample = l.Lightmaps[surf.Lightmap].Sample(c.LightmapUV)
}
