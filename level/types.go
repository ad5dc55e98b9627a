// SPDX-License-Identifier: GPL-2.0-or-later

package level

import (
	"govsd/geom"
	"govsd/math/vec"
)

// NodeRef is a child reference inside the BSP tree.
//
//	> 0  index into Level.Nodes
//	< 0  leaf, Level.Leafs[-1 - ref]
//	  0  solid, nothing behind it
type NodeRef int32

const Solid NodeRef = 0

func NodeRefFromNode(n int) NodeRef {
	return NodeRef(n)
}

func NodeRefFromLeaf(l int) NodeRef {
	return NodeRef(-1 - l)
}

func (r NodeRef) IsSolid() bool { return r == 0 }
func (r NodeRef) IsLeaf() bool  { return r < 0 }
func (r NodeRef) IsNode() bool  { return r > 0 }
func (r NodeRef) Node() int     { return int(r) }
func (r NodeRef) Leaf() int     { return int(-1 - r) }

type Node struct {
	Plane geom.Plane
	// Children[0] is in front of Plane, Children[1] behind it.
	Children [2]NodeRef
	// Parent is the parent node index, 0 for the root.
	Parent   int
	Bounds   geom.AABB
	ViewMark int
}

type Leaf struct {
	// Area is the area index or -1 if the leaf belongs to no area.
	Area   int
	Parent int
	Bounds geom.AABB
	// Visibility is the run length compressed set of leafs visible from this
	// leaf. Empty means every leaf is visible.
	Visibility []byte
	ViewMark   int
}

// Area is a convex cell. All index slices reference the owning level.
type Area struct {
	Bounds     geom.AABB
	Surfaces   []int
	Portals    []int // PortalLinks
	Primitives []int
}

// Portal is the opening shared by the two directed links through it.
type Portal struct {
	Blocked bool
	VisMark int
	Links   [2]int
}

// PortalLink is a portal as seen from the area listing it. Plane faces into
// that area and Hull is counter clockwise seen from it.
type PortalLink struct {
	Portal int
	ToArea int
	Plane  geom.Plane
	Hull   []vec.Vec3
}

type SurfaceType uint8

const (
	SurfacePlanar SurfaceType = iota
	SurfaceTrisoup
)

type FaceCull uint8

const (
	CullBack FaceCull = iota
	CullFront
	CullNone
)

type Surface struct {
	Type   SurfaceType
	Bounds geom.AABB
	// Face is the surface plane, only used by planar surfaces.
	Face       geom.Plane
	FaceCull   FaceCull
	QueryGroup uint32
	VisGroup   uint32
	Material   int // -1 none
	Lightmap   int // -1 none

	// Indices are relative to FirstVertex.
	FirstVertex int
	NumVertices int
	FirstIndex  int
	NumIndices  int

	VisMark int
	VisPass int
}

type Vertex struct {
	Pos vec.Vec3
	S   float32
	T   float32
}

// Mesh holds the vertex data shared by all surfaces. LightmapUVs is either
// empty or parallel to Vertices.
type Mesh struct {
	Vertices    []Vertex
	Indices     []uint32
	LightmapUVs [][2]float32
}

type Lightmap struct {
	Width  int
	Height int
	Texels [][3]float32
}

// Sample returns the nearest texel at uv, coordinates are clamped.
func (l *Lightmap) Sample(uv [2]float32) [3]float32 {
	if l.Width == 0 || l.Height == 0 {
		return [3]float32{}
	}
	x := int(uv[0] * float32(l.Width))
	y := int(uv[1] * float32(l.Height))
	x = min(max(x, 0), l.Width-1)
	y = min(max(y, 0), l.Height-1)
	return l.Texels[y*l.Width+x]
}

type Material struct {
	Name string
}
