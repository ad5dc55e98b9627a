// SPDX-License-Identifier: GPL-2.0-or-later

package level

import (
	"github.com/google/uuid"

	"govsd/geom"
	"govsd/math/vec"
)

// Level is the read only graph a visibility query runs against. All cross
// references are indices into the slices of the level. Only the VisMark,
// VisPass and ViewMark fields and the primitive links change during queries.
type Level struct {
	ID   uuid.UUID
	Name string

	// Nodes[0] is never used so that a zero NodeRef can mean solid.
	Nodes []Node
	Leafs []Leaf
	Root  NodeRef

	Areas []Area
	// Outdoor receives points and primitives outside every other area, -1 if
	// the level has no such area.
	Outdoor int

	Portals     []Portal
	PortalLinks []PortalLink

	Surfaces  []Surface
	Materials []*Material
	Lightmaps []Lightmap
	Mesh      Mesh

	Primitives []Primitive
	freePrims  []int

	// HasPVS reports whether the leafs carry precomputed visibility.
	HasPVS bool

	marker     int
	viewMark   int
	viewLeaf   int
	viewPVS    bool
	visChanged bool
	visBuf     []byte
	noVis      []byte
}

func New(name string) *Level {
	return &Level{
		ID:       uuid.Must(uuid.NewV7()),
		Name:     name,
		Nodes:    make([]Node, 1),
		Outdoor:  -1,
		viewLeaf: -2,
	}
}

// NextMarker returns a fresh query epoch. Objects tagged with an older value
// count as unvisited.
func (l *Level) NextMarker() int {
	l.marker++
	return l.marker
}

// HasTree reports whether the level has a BSP tree with at least one leaf.
func (l *Level) HasTree() bool {
	return !l.Root.IsSolid()
}

// FindLeaf returns the leaf containing p or -1 if p is in solid space or the
// level has no tree.
func (l *Level) FindLeaf(p vec.Vec3) int {
	n := l.Root
	for n.IsNode() {
		node := &l.Nodes[n.Node()]
		if node.Plane.Dist(p) > 0 {
			n = node.Children[0]
		} else {
			n = node.Children[1]
		}
	}
	if n.IsSolid() {
		return -1
	}
	return n.Leaf()
}

// FindArea returns the area containing p. Without a leaf hit it tests the
// area bounds and falls back to the outdoor area.
func (l *Level) FindArea(p vec.Vec3) int {
	if leaf := l.FindLeaf(p); leaf >= 0 && l.Leafs[leaf].Area >= 0 {
		return l.Leafs[leaf].Area
	}
	for i := range l.Areas {
		if i != l.Outdoor && l.Areas[i].Bounds.Contains(p) {
			return i
		}
	}
	return l.Outdoor
}

// LinkTo connects area from to area to through portal. It returns the index
// of the new link.
func (l *Level) LinkTo(from, to, portal int, plane geom.Plane, hull []vec.Vec3) int {
	idx := len(l.PortalLinks)
	l.PortalLinks = append(l.PortalLinks, PortalLink{
		Portal: portal,
		ToArea: to,
		Plane:  plane,
		Hull:   hull,
	})
	l.Areas[from].Portals = append(l.Areas[from].Portals, idx)
	return idx
}

// AddPortal creates a two sided portal between a and b. hull must be counter
// clockwise seen from a, the plane normal of that winding faces into a.
func (l *Level) AddPortal(a, b int, hull []vec.Vec3) int {
	p := len(l.Portals)
	plane := geom.PlaneFromPoints(hull[0], hull[1], hull[2])
	rev := make([]vec.Vec3, len(hull))
	for i, v := range hull {
		rev[len(hull)-1-i] = v
	}
	l.Portals = append(l.Portals, Portal{})
	la := l.LinkTo(a, b, p, plane, hull)
	lb := l.LinkTo(b, a, p, plane.Flipped(), rev)
	l.Portals[p].Links = [2]int{la, lb}
	return p
}

// SetPortalBlocked opens or closes a portal for traversal and raycasts.
func (l *Level) SetPortalBlocked(p int, blocked bool) {
	l.Portals[p].Blocked = blocked
}

// SurfaceIndices returns the mesh indices of s, relative to s.FirstVertex.
func (l *Level) SurfaceIndices(s *Surface) []uint32 {
	return l.Mesh.Indices[s.FirstIndex : s.FirstIndex+s.NumIndices]
}

// SurfaceVertex returns vertex i of s, i being a surface relative index.
func (l *Level) SurfaceVertex(s *Surface, i uint32) *Vertex {
	return &l.Mesh.Vertices[s.FirstVertex+int(i)]
}

func (l *Level) Material(idx int) *Material {
	if idx < 0 || idx >= len(l.Materials) {
		return nil
	}
	return l.Materials[idx]
}
