// SPDX-License-Identifier: GPL-2.0-or-later

// Package levelgen builds procedural levels: a row of box rooms along +X
// joined by doors, optionally entered from an outdoor area.
package levelgen

import (
	"github.com/pkg/errors"

	"govsd/geom"
	"govsd/level"
	"govsd/math/vec"
)

// WorldExtent is the half size of the box used as bounds of unbounded leafs.
const WorldExtent = 1 << 14

type Config struct {
	Name  string
	Rooms int
	// RoomSize is length along X, width along Y and height along Z.
	RoomSize   vec.Vec3
	DoorWidth  float32
	DoorHeight float32
	// Outdoor adds an area around the building, entered through a door in
	// the first room.
	Outdoor bool
	// PVS precomputes leaf visibility from the portal graph.
	PVS bool
	// Props adds a small trisoup pyramid to every room.
	Props        bool
	LightmapSize int
}

func DefaultConfig() Config {
	return Config{
		Name:         "corridor",
		Rooms:        4,
		RoomSize:     vec.Vec3{16, 8, 4},
		DoorWidth:    2,
		DoorHeight:   3,
		Outdoor:      true,
		PVS:          true,
		Props:        true,
		LightmapSize: 4,
	}
}

// Face materials, indices into Level.Materials.
const (
	MatFloor = iota
	MatWall
	MatCeiling
	MatGround
	MatProp
)

type builder struct {
	l     *level.Level
	cfg   Config
	world geom.AABB
	// outdoor is the outdoor area index or -1.
	outdoor int
}

func (c *Config) validate() error {
	if c.Rooms < 1 {
		return errors.Errorf("need at least one room, got %d", c.Rooms)
	}
	if c.RoomSize[0] <= 0 || c.RoomSize[1] <= 0 || c.RoomSize[2] <= 0 {
		return errors.Errorf("bad room size %v", c.RoomSize)
	}
	if c.DoorWidth <= 0 || c.DoorWidth >= c.RoomSize[1] || c.DoorHeight <= 0 || c.DoorHeight >= c.RoomSize[2] {
		return errors.Errorf("door %vx%v does not fit room %v", c.DoorWidth, c.DoorHeight, c.RoomSize)
	}
	if c.LightmapSize < 0 {
		return errors.Errorf("bad lightmap size %d", c.LightmapSize)
	}
	return nil
}

// Corridor builds the level described by cfg.
func Corridor(cfg Config) (*level.Level, error) {
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "corridor")
	}
	b := &builder{
		l:       level.New(cfg.Name),
		cfg:     cfg,
		world:   geom.BoxFromCenter(vec.Vec3{}, vec.Vec3{WorldExtent, WorldExtent, WorldExtent}),
		outdoor: -1,
	}
	for _, name := range []string{"floor", "wall", "ceiling", "ground", "prop"} {
		b.l.Materials = append(b.l.Materials, &level.Material{Name: name})
	}
	for i := 0; i < cfg.Rooms; i++ {
		b.l.Areas = append(b.l.Areas, level.Area{Bounds: b.roomBounds(i)})
	}
	if cfg.Outdoor {
		b.outdoor = len(b.l.Areas)
		b.l.Outdoor = b.outdoor
		b.l.Areas = append(b.l.Areas, level.Area{Bounds: b.world})
	}

	b.buildTree()
	for i := 0; i < cfg.Rooms; i++ {
		b.buildRoom(i)
	}
	b.buildPortals()
	if cfg.Outdoor {
		b.buildGround()
	}
	if cfg.PVS {
		b.buildPVS()
	}

	if err := b.l.Validate(); err != nil {
		return nil, errors.Wrapf(err, "generated level %q", cfg.Name)
	}
	return b.l, nil
}

func (b *builder) roomBounds(i int) geom.AABB {
	s := b.cfg.RoomSize
	return geom.AABB{
		Mins: vec.Vec3{float32(i) * s[0], -s[1] / 2, 0},
		Maxs: vec.Vec3{float32(i+1) * s[0], s[1] / 2, s[2]},
	}
}

// RoomCenter returns the center of room i.
func RoomCenter(cfg Config, i int) vec.Vec3 {
	s := cfg.RoomSize
	return vec.Vec3{(float32(i) + 0.5) * s[0], 0, s[2] / 2}
}

func (b *builder) addNode(parent int, p geom.Plane, bounds geom.AABB) int {
	idx := len(b.l.Nodes)
	b.l.Nodes = append(b.l.Nodes, level.Node{Plane: p, Parent: parent, Bounds: bounds})
	return idx
}

func (b *builder) addLeaf(parent, area int, bounds geom.AABB) level.NodeRef {
	idx := len(b.l.Leafs)
	b.l.Leafs = append(b.l.Leafs, level.Leaf{Area: area, Parent: parent, Bounds: bounds})
	return level.NodeRefFromLeaf(idx)
}

func (b *builder) outside(parent int) level.NodeRef {
	if b.outdoor < 0 {
		return level.Solid
	}
	return b.addLeaf(parent, b.outdoor, b.world)
}

// buildTree encloses the building with one node per outer face, the back
// sides leading outdoors, and splits the inside into one leaf per room.
func (b *builder) buildTree() {
	s := b.cfg.RoomSize
	length := float32(b.cfg.Rooms) * s[0]
	shell := []geom.Plane{
		{Normal: vec.Vec3{0, 0, 1}, D: 0},
		{Normal: vec.Vec3{0, 0, -1}, D: s[2]},
		{Normal: vec.Vec3{0, 1, 0}, D: s[1] / 2},
		{Normal: vec.Vec3{0, -1, 0}, D: s[1] / 2},
		{Normal: vec.Vec3{1, 0, 0}, D: 0},
		{Normal: vec.Vec3{-1, 0, 0}, D: length},
	}
	prev := 0
	for _, p := range shell {
		n := b.addNode(prev, p, b.world)
		ref := level.NodeRefFromNode(n)
		if prev == 0 {
			b.l.Root = ref
		} else {
			b.l.Nodes[prev].Children[0] = ref
		}
		back := b.outside(n)
		b.l.Nodes[n].Children[1] = back
		prev = n
	}
	inside := b.slabs(prev, 0, b.cfg.Rooms)
	b.l.Nodes[prev].Children[0] = inside
}

func (b *builder) slabs(parent, lo, hi int) level.NodeRef {
	if hi-lo == 1 {
		return b.addLeaf(parent, lo, b.roomBounds(lo))
	}
	mid := (lo + hi) / 2
	bounds := b.roomBounds(lo)
	bounds.AddAABB(b.roomBounds(hi - 1))
	x := float32(mid) * b.cfg.RoomSize[0]
	n := b.addNode(parent, geom.Plane{Normal: vec.Vec3{1, 0, 0}, D: -x}, bounds)
	front := b.slabs(n, mid, hi)
	back := b.slabs(n, lo, mid)
	b.l.Nodes[n].Children = [2]level.NodeRef{front, back}
	return level.NodeRefFromNode(n)
}

// rect returns the corners of an axis aligned rectangle on the plane
// axis = c, counter clockwise seen from the side sign points to. u and v
// span the two following axes in cyclic order.
func rect(axis int, c float32, sign float32, u0, u1, v0, v1 float32) []vec.Vec3 {
	ua, va := (axis+1)%3, (axis+2)%3
	corner := func(u, v float32) vec.Vec3 {
		var p vec.Vec3
		p[axis] = c
		p[ua] = u
		p[va] = v
		return p
	}
	if sign > 0 {
		return []vec.Vec3{corner(u0, v0), corner(u1, v0), corner(u1, v1), corner(u0, v1)}
	}
	return []vec.Vec3{corner(u0, v0), corner(u0, v1), corner(u1, v1), corner(u1, v0)}
}

// buildRoom adds the six inward facing sides of room i. End walls with a
// door are split into three quads around the opening.
func (b *builder) buildRoom(i int) {
	r := b.roomBounds(i)
	hw, dw, dh := b.cfg.RoomSize[1]/2, b.cfg.DoorWidth/2, b.cfg.DoorHeight
	h := b.cfg.RoomSize[2]

	b.addQuad(i, MatFloor, rect(2, r.Mins[2], 1, r.Mins[0], r.Maxs[0], r.Mins[1], r.Maxs[1]))
	b.addQuad(i, MatCeiling, rect(2, r.Maxs[2], -1, r.Mins[0], r.Maxs[0], r.Mins[1], r.Maxs[1]))
	b.addQuad(i, MatWall, rect(1, r.Mins[1], 1, r.Mins[2], r.Maxs[2], r.Mins[0], r.Maxs[0]))
	b.addQuad(i, MatWall, rect(1, r.Maxs[1], -1, r.Mins[2], r.Maxs[2], r.Mins[0], r.Maxs[0]))

	endWall := func(x, sign float32, door bool) {
		if !door {
			b.addQuad(i, MatWall, rect(0, x, sign, -hw, hw, 0, h))
			return
		}
		b.addQuad(i, MatWall, rect(0, x, sign, -hw, -dw, 0, h))
		b.addQuad(i, MatWall, rect(0, x, sign, dw, hw, 0, h))
		b.addQuad(i, MatWall, rect(0, x, sign, -dw, dw, dh, h))
	}
	endWall(r.Mins[0], 1, i > 0 || b.cfg.Outdoor)
	endWall(r.Maxs[0], -1, i < b.cfg.Rooms-1)

	if b.cfg.Props {
		b.addPyramid(i, vec.Vec3{r.Mins[0] + 1.5, r.Mins[1] + 1.5, 0}, 1)
	}
}

func (b *builder) buildPortals() {
	dw, dh := b.cfg.DoorWidth/2, b.cfg.DoorHeight
	for i := 0; i+1 < b.cfg.Rooms; i++ {
		x := b.roomBounds(i).Maxs[0]
		b.l.AddPortal(i, i+1, rect(0, x, -1, -dw, dw, 0, dh))
	}
	if b.outdoor >= 0 {
		b.l.AddPortal(b.outdoor, 0, rect(0, 0, -1, -dw, dw, 0, dh))
	}
}

// buildGround adds a ground quad in front of the entrance.
func (b *builder) buildGround() {
	s := b.cfg.RoomSize
	b.addQuad(b.outdoor, MatGround, rect(2, 0, 1, -2*s[0], 0, -s[1], s[1]))
}

// buildPVS marks every leaf whose area is reachable through the portal graph
// as visible.
func (b *builder) buildPVS() {
	l := b.l
	row := l.VisRowSize()
	reach := make([]bool, len(l.Areas))
	for i := range l.Leafs {
		clear(reach)
		for _, a := range l.ReachableAreas(l.Leafs[i].Area) {
			reach[a] = true
		}
		vis := make([]byte, row)
		for j := range l.Leafs {
			if a := l.Leafs[j].Area; a >= 0 && reach[a] {
				vis[j>>3] |= 1 << (j & 7)
			}
		}
		l.Leafs[i].Visibility = level.CompressVis(vis)
	}
	l.HasPVS = true
}
