// SPDX-License-Identifier: GPL-2.0-or-later

package level

import (
	"govsd/geom"
	"govsd/math/vec"
)

type Shape uint8

const (
	ShapeBox Shape = iota
	ShapeSphere
)

// TriangleHit is one ray/triangle intersection.
type TriangleHit struct {
	Location vec.Vec3
	Normal   vec.Vec3
	UV       [2]float32
	Distance float32
	Vertices [3]vec.Vec3
	Indices  [3]uint32
	Material *Material
}

// ClosestRaycastFunc intersects the ray with the exact shape of a primitive
// owner. dir is normalized. It reports false when there is no hit closer than
// maxDist.
type ClosestRaycastFunc func(p *Primitive, start, dir vec.Vec3, maxDist float32) (TriangleHit, bool)

// RaycastFunc appends every hit of the segment start, end to hits and returns
// the index of the closest appended hit.
type RaycastFunc func(p *Primitive, start, end vec.Vec3, hits *[]TriangleHit) (closest int, ok bool)

// Primitive is the visibility proxy of a renderable object.
type Primitive struct {
	Shape  Shape
	Box    geom.AABB
	Sphere geom.Sphere

	QueryGroup uint32
	VisGroup   uint32

	// With HasFacePlane set the primitive is only visible from the front of
	// FacePlane.
	HasFacePlane bool
	FacePlane    geom.Plane

	Owner          any
	RaycastClosest ClosestRaycastFunc
	Raycast        RaycastFunc

	VisMark int
	VisPass int

	ID     int
	areas  []int
	active bool
}

// Bounds returns the box enclosing the primitive.
func (p *Primitive) Bounds() geom.AABB {
	switch p.Shape {
	case ShapeBox:
		return p.Box
	case ShapeSphere:
		return p.Sphere.AABB()
	}
	panic("unknown primitive shape")
}

// Areas returns the areas the primitive is linked into.
func (p *Primitive) Areas() []int {
	return p.areas
}

// AddPrimitive stores p in the level, links it into the areas it touches and
// returns its handle.
func (l *Level) AddPrimitive(p Primitive) int {
	var id int
	if n := len(l.freePrims); n > 0 {
		id = l.freePrims[n-1]
		l.freePrims = l.freePrims[:n-1]
	} else {
		id = len(l.Primitives)
		l.Primitives = append(l.Primitives, Primitive{})
	}
	p.ID = id
	p.areas = nil
	p.active = true
	l.Primitives[id] = p
	l.LinkPrimitive(id)
	return id
}

// Primitive returns the primitive with the given handle or nil.
func (l *Level) Primitive(id int) *Primitive {
	if id < 0 || id >= len(l.Primitives) || !l.Primitives[id].active {
		return nil
	}
	return &l.Primitives[id]
}

// RemovePrimitive unlinks the primitive and frees its handle.
func (l *Level) RemovePrimitive(id int) {
	p := l.Primitive(id)
	if p == nil {
		return
	}
	l.UnlinkPrimitive(id)
	*p = Primitive{}
	l.freePrims = append(l.freePrims, id)
}

// MovePrimitive replaces the bounding volume of a primitive and relinks it.
func (l *Level) MovePrimitive(id int, box geom.AABB, sphere geom.Sphere) {
	p := l.Primitive(id)
	if p == nil {
		return
	}
	p.Box = box
	p.Sphere = sphere
	l.LinkPrimitive(id)
}

// UnlinkPrimitive removes the primitive from all areas.
func (l *Level) UnlinkPrimitive(id int) {
	p := l.Primitive(id)
	if p == nil {
		return
	}
	for _, a := range p.areas {
		prims := l.Areas[a].Primitives
		for i, pi := range prims {
			if pi == id {
				last := len(prims) - 1
				prims[i] = prims[last]
				l.Areas[a].Primitives = prims[:last]
				break
			}
		}
	}
	p.areas = p.areas[:0]
}

// LinkPrimitive (re)links the primitive into every area its bounds touch.
func (l *Level) LinkPrimitive(id int) {
	p := l.Primitive(id)
	if p == nil {
		return
	}
	l.UnlinkPrimitive(id)
	b := p.Bounds()
	if l.HasTree() {
		l.findTouchedAreas(p, l.Root, &b)
	} else {
		for i := range l.Areas {
			if i != l.Outdoor && l.Areas[i].Bounds.Overlaps(b) {
				l.linkArea(p, i)
			}
		}
	}
	if len(p.areas) == 0 && l.Outdoor >= 0 {
		l.linkArea(p, l.Outdoor)
	}
}

func (l *Level) linkArea(p *Primitive, a int) {
	for _, o := range p.areas {
		if o == a {
			return
		}
	}
	p.areas = append(p.areas, a)
	l.Areas[a].Primitives = append(l.Areas[a].Primitives, p.ID)
}

func (l *Level) findTouchedAreas(p *Primitive, n NodeRef, b *geom.AABB) {
	for {
		if n.IsSolid() {
			return
		}
		if n.IsLeaf() {
			if a := l.Leafs[n.Leaf()].Area; a >= 0 {
				l.linkArea(p, a)
			}
			return
		}
		node := &l.Nodes[n.Node()]
		switch node.Plane.BoxOnPlaneSide(b.Mins, b.Maxs) {
		case geom.SideFront:
			n = node.Children[0]
		case geom.SideBack:
			n = node.Children[1]
		default:
			l.findTouchedAreas(p, node.Children[0], b)
			n = node.Children[1]
		}
	}
}
