// SPDX-License-Identifier: GPL-2.0-or-later

package level

import (
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"govsd/geom"
	"govsd/math/vec"
)

// Field numbers of the level message.
const (
	fieldID protowire.Number = iota + 1
	fieldName
	fieldRoot
	fieldOutdoor
	fieldHasPVS
	fieldNode
	fieldLeaf
	fieldArea
	fieldPortal
	fieldPortalLink
	fieldSurface
	fieldMaterial
	fieldLightmap
	fieldVertices
	fieldIndices
	fieldLightmapUVs
	fieldPrimitive
)

type encoder []byte

func (e *encoder) varint(num protowire.Number, v uint64) {
	*e = protowire.AppendTag(*e, num, protowire.VarintType)
	*e = protowire.AppendVarint(*e, v)
}

func (e *encoder) sint(num protowire.Number, v int) {
	e.varint(num, protowire.EncodeZigZag(int64(v)))
}

func (e *encoder) flag(num protowire.Number, v bool) {
	if v {
		e.varint(num, protowire.EncodeBool(v))
	}
}

func (e *encoder) bytes(num protowire.Number, b []byte) {
	*e = protowire.AppendTag(*e, num, protowire.BytesType)
	*e = protowire.AppendBytes(*e, b)
}

func (e *encoder) str(num protowire.Number, s string) {
	*e = protowire.AppendTag(*e, num, protowire.BytesType)
	*e = protowire.AppendString(*e, s)
}

func (e *encoder) floats(num protowire.Number, fs ...float32) {
	b := make([]byte, 0, 4*len(fs))
	for _, f := range fs {
		b = protowire.AppendFixed32(b, math.Float32bits(f))
	}
	e.bytes(num, b)
}

func (e *encoder) ints(num protowire.Number, vs ...int) {
	var b []byte
	for _, v := range vs {
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(v)))
	}
	e.bytes(num, b)
}

func (e *encoder) message(num protowire.Number, fn func(m *encoder)) {
	var m encoder
	fn(&m)
	e.bytes(num, m)
}

func (e *encoder) plane(num protowire.Number, p geom.Plane) {
	e.floats(num, p.Normal[0], p.Normal[1], p.Normal[2], p.D)
}

func (e *encoder) aabb(num protowire.Number, b geom.AABB) {
	a := b.Array()
	e.floats(num, a[:]...)
}

// Marshal encodes the level graph, mesh and primitives. Owners and raycast
// callbacks of primitives are not part of the encoding.
func (l *Level) Marshal() []byte {
	var e encoder
	e.bytes(fieldID, l.ID[:])
	e.str(fieldName, l.Name)
	e.sint(fieldRoot, int(l.Root))
	e.sint(fieldOutdoor, l.Outdoor)
	e.flag(fieldHasPVS, l.HasPVS)
	for i := 1; i < len(l.Nodes); i++ {
		n := &l.Nodes[i]
		e.message(fieldNode, func(m *encoder) {
			m.plane(1, n.Plane)
			m.ints(2, int(n.Children[0]), int(n.Children[1]))
			m.sint(3, n.Parent)
			m.aabb(4, n.Bounds)
		})
	}
	for i := range l.Leafs {
		lf := &l.Leafs[i]
		e.message(fieldLeaf, func(m *encoder) {
			m.sint(1, lf.Area)
			m.sint(2, lf.Parent)
			m.aabb(3, lf.Bounds)
			m.bytes(4, lf.Visibility)
		})
	}
	for i := range l.Areas {
		a := &l.Areas[i]
		e.message(fieldArea, func(m *encoder) {
			m.aabb(1, a.Bounds)
			m.ints(2, a.Surfaces...)
			m.ints(3, a.Portals...)
		})
	}
	for i := range l.Portals {
		p := &l.Portals[i]
		e.message(fieldPortal, func(m *encoder) {
			m.flag(1, p.Blocked)
			m.ints(2, p.Links[0], p.Links[1])
		})
	}
	for i := range l.PortalLinks {
		pl := &l.PortalLinks[i]
		e.message(fieldPortalLink, func(m *encoder) {
			m.sint(1, pl.Portal)
			m.sint(2, pl.ToArea)
			m.plane(3, pl.Plane)
			hull := make([]float32, 0, 3*len(pl.Hull))
			for _, v := range pl.Hull {
				hull = append(hull, v[:]...)
			}
			m.floats(4, hull...)
		})
	}
	for i := range l.Surfaces {
		s := &l.Surfaces[i]
		e.message(fieldSurface, func(m *encoder) {
			m.varint(1, uint64(s.Type))
			m.aabb(2, s.Bounds)
			m.plane(3, s.Face)
			m.varint(4, uint64(s.FaceCull))
			m.varint(5, uint64(s.QueryGroup))
			m.varint(6, uint64(s.VisGroup))
			m.sint(7, s.Material)
			m.sint(8, s.Lightmap)
			m.ints(9, s.FirstVertex, s.NumVertices, s.FirstIndex, s.NumIndices)
		})
	}
	for _, mat := range l.Materials {
		e.message(fieldMaterial, func(m *encoder) {
			m.str(1, mat.Name)
		})
	}
	for i := range l.Lightmaps {
		lm := &l.Lightmaps[i]
		e.message(fieldLightmap, func(m *encoder) {
			m.sint(1, lm.Width)
			m.sint(2, lm.Height)
			t := make([]float32, 0, 3*len(lm.Texels))
			for _, c := range lm.Texels {
				t = append(t, c[:]...)
			}
			m.floats(3, t...)
		})
	}
	verts := make([]float32, 0, 5*len(l.Mesh.Vertices))
	for _, v := range l.Mesh.Vertices {
		verts = append(verts, v.Pos[0], v.Pos[1], v.Pos[2], v.S, v.T)
	}
	e.floats(fieldVertices, verts...)
	var idx []byte
	for _, i := range l.Mesh.Indices {
		idx = protowire.AppendVarint(idx, uint64(i))
	}
	e.bytes(fieldIndices, idx)
	uvs := make([]float32, 0, 2*len(l.Mesh.LightmapUVs))
	for _, uv := range l.Mesh.LightmapUVs {
		uvs = append(uvs, uv[0], uv[1])
	}
	e.floats(fieldLightmapUVs, uvs...)
	for i := range l.Primitives {
		p := &l.Primitives[i]
		if !p.active {
			continue
		}
		e.message(fieldPrimitive, func(m *encoder) {
			m.varint(1, uint64(p.Shape))
			m.aabb(2, p.Box)
			m.floats(3, p.Sphere.Center[0], p.Sphere.Center[1], p.Sphere.Center[2], p.Sphere.Radius)
			m.varint(4, uint64(p.QueryGroup))
			m.varint(5, uint64(p.VisGroup))
			m.flag(6, p.HasFacePlane)
			m.plane(7, p.FacePlane)
		})
	}
	return e
}

type field struct {
	num protowire.Number
	v   uint64
	b   []byte
}

func (f field) sint() int { return int(protowire.DecodeZigZag(f.v)) }

// fields calls fn for every field of the message in b.
func fields(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		f := field{num: num}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.v = uint64(v)
		case protowire.BytesType:
			f.b, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return errors.Wrapf(protowire.ParseError(n), "field %d", num)
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func decodeFloats(b []byte, want int) ([]float32, error) {
	if len(b)%4 != 0 || (want > 0 && len(b) != 4*want) {
		return nil, errors.Errorf("packed floats of %d bytes", len(b))
	}
	out := make([]float32, 0, len(b)/4)
	for len(b) > 0 {
		v, n := protowire.ConsumeFixed32(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		out = append(out, math.Float32frombits(v))
		b = b[n:]
	}
	return out, nil
}

func decodeVarints(b []byte) ([]uint64, error) {
	var out []uint64
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		out = append(out, v)
		b = b[n:]
	}
	return out, nil
}

func decodeInts(b []byte, want int) ([]int, error) {
	vs, err := decodeVarints(b)
	if err != nil {
		return nil, err
	}
	if want > 0 && len(vs) != want {
		return nil, errors.Errorf("%d packed ints, want %d", len(vs), want)
	}
	if len(vs) == 0 {
		return nil, nil
	}
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = int(protowire.DecodeZigZag(v))
	}
	return out, nil
}

func decodePlane(b []byte) (geom.Plane, error) {
	f, err := decodeFloats(b, 4)
	if err != nil {
		return geom.Plane{}, errors.Wrap(err, "plane")
	}
	return geom.Plane{Normal: vec.Vec3{f[0], f[1], f[2]}, D: f[3]}, nil
}

func decodeAABB(b []byte) (geom.AABB, error) {
	f, err := decodeFloats(b, 6)
	if err != nil {
		return geom.AABB{}, errors.Wrap(err, "bounds")
	}
	return geom.AABB{
		Mins: vec.Vec3{f[0], f[1], f[2]},
		Maxs: vec.Vec3{f[3], f[4], f[5]},
	}, nil
}

func decodeNode(b []byte) (Node, error) {
	var n Node
	err := fields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			n.Plane, err = decodePlane(f.b)
		case 2:
			var c []int
			if c, err = decodeInts(f.b, 2); err == nil {
				n.Children = [2]NodeRef{NodeRef(c[0]), NodeRef(c[1])}
			}
		case 3:
			n.Parent = f.sint()
		case 4:
			n.Bounds, err = decodeAABB(f.b)
		}
		return err
	})
	return n, err
}

func decodeLeaf(b []byte) (Leaf, error) {
	var lf Leaf
	err := fields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			lf.Area = f.sint()
		case 2:
			lf.Parent = f.sint()
		case 3:
			lf.Bounds, err = decodeAABB(f.b)
		case 4:
			lf.Visibility = append([]byte(nil), f.b...)
		}
		return err
	})
	return lf, err
}

func decodeArea(b []byte) (Area, error) {
	var a Area
	err := fields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			a.Bounds, err = decodeAABB(f.b)
		case 2:
			a.Surfaces, err = decodeInts(f.b, 0)
		case 3:
			a.Portals, err = decodeInts(f.b, 0)
		}
		return err
	})
	return a, err
}

func decodePortal(b []byte) (Portal, error) {
	var p Portal
	err := fields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			p.Blocked = protowire.DecodeBool(f.v)
		case 2:
			var ls []int
			if ls, err = decodeInts(f.b, 2); err == nil {
				p.Links = [2]int{ls[0], ls[1]}
			}
		}
		return err
	})
	return p, err
}

func decodePortalLink(b []byte) (PortalLink, error) {
	var pl PortalLink
	err := fields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			pl.Portal = f.sint()
		case 2:
			pl.ToArea = f.sint()
		case 3:
			pl.Plane, err = decodePlane(f.b)
		case 4:
			var fs []float32
			if fs, err = decodeFloats(f.b, 0); err != nil {
				return err
			}
			if len(fs)%3 != 0 {
				return errors.Errorf("hull of %d floats", len(fs))
			}
			for i := 0; i < len(fs); i += 3 {
				pl.Hull = append(pl.Hull, vec.Vec3{fs[i], fs[i+1], fs[i+2]})
			}
		}
		return err
	})
	return pl, err
}

func decodeSurface(b []byte) (Surface, error) {
	s := Surface{Material: -1, Lightmap: -1}
	err := fields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			s.Type = SurfaceType(f.v)
		case 2:
			s.Bounds, err = decodeAABB(f.b)
		case 3:
			s.Face, err = decodePlane(f.b)
		case 4:
			s.FaceCull = FaceCull(f.v)
		case 5:
			s.QueryGroup = uint32(f.v)
		case 6:
			s.VisGroup = uint32(f.v)
		case 7:
			s.Material = f.sint()
		case 8:
			s.Lightmap = f.sint()
		case 9:
			var r []int
			if r, err = decodeInts(f.b, 4); err == nil {
				s.FirstVertex, s.NumVertices, s.FirstIndex, s.NumIndices = r[0], r[1], r[2], r[3]
			}
		}
		return err
	})
	return s, err
}

func decodeLightmap(b []byte) (Lightmap, error) {
	var lm Lightmap
	err := fields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			lm.Width = f.sint()
		case 2:
			lm.Height = f.sint()
		case 3:
			var fs []float32
			if fs, err = decodeFloats(f.b, 0); err != nil {
				return err
			}
			if len(fs)%3 != 0 {
				return errors.Errorf("lightmap of %d floats", len(fs))
			}
			for i := 0; i < len(fs); i += 3 {
				lm.Texels = append(lm.Texels, [3]float32{fs[i], fs[i+1], fs[i+2]})
			}
		}
		return err
	})
	return lm, err
}

func decodePrimitive(b []byte) (Primitive, error) {
	var p Primitive
	err := fields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			p.Shape = Shape(f.v)
		case 2:
			p.Box, err = decodeAABB(f.b)
		case 3:
			var fs []float32
			if fs, err = decodeFloats(f.b, 4); err == nil {
				p.Sphere = geom.Sphere{Center: vec.Vec3{fs[0], fs[1], fs[2]}, Radius: fs[3]}
			}
		case 4:
			p.QueryGroup = uint32(f.v)
		case 5:
			p.VisGroup = uint32(f.v)
		case 6:
			p.HasFacePlane = protowire.DecodeBool(f.v)
		case 7:
			p.FacePlane, err = decodePlane(f.b)
		}
		return err
	})
	if err == nil && p.Shape > ShapeSphere {
		err = errors.Errorf("unknown shape %d", p.Shape)
	}
	return p, err
}

// Unmarshal decodes a level written by Marshal and validates it. Primitives
// are relinked into the decoded tree.
func Unmarshal(b []byte) (*Level, error) {
	l := New("")
	var prims []Primitive
	err := fields(b, func(f field) (err error) {
		switch f.num {
		case fieldID:
			l.ID, err = uuid.FromBytes(f.b)
		case fieldName:
			l.Name = string(f.b)
		case fieldRoot:
			l.Root = NodeRef(f.sint())
		case fieldOutdoor:
			l.Outdoor = f.sint()
		case fieldHasPVS:
			l.HasPVS = protowire.DecodeBool(f.v)
		case fieldNode:
			var n Node
			if n, err = decodeNode(f.b); err == nil {
				l.Nodes = append(l.Nodes, n)
			}
		case fieldLeaf:
			var lf Leaf
			if lf, err = decodeLeaf(f.b); err == nil {
				l.Leafs = append(l.Leafs, lf)
			}
		case fieldArea:
			var a Area
			if a, err = decodeArea(f.b); err == nil {
				l.Areas = append(l.Areas, a)
			}
		case fieldPortal:
			var p Portal
			if p, err = decodePortal(f.b); err == nil {
				l.Portals = append(l.Portals, p)
			}
		case fieldPortalLink:
			var pl PortalLink
			if pl, err = decodePortalLink(f.b); err == nil {
				l.PortalLinks = append(l.PortalLinks, pl)
			}
		case fieldSurface:
			var s Surface
			if s, err = decodeSurface(f.b); err == nil {
				l.Surfaces = append(l.Surfaces, s)
			}
		case fieldMaterial:
			m := &Material{}
			err = fields(f.b, func(mf field) error {
				if mf.num == 1 {
					m.Name = string(mf.b)
				}
				return nil
			})
			l.Materials = append(l.Materials, m)
		case fieldLightmap:
			var lm Lightmap
			if lm, err = decodeLightmap(f.b); err == nil {
				l.Lightmaps = append(l.Lightmaps, lm)
			}
		case fieldVertices:
			var fs []float32
			if fs, err = decodeFloats(f.b, 0); err != nil {
				return err
			}
			if len(fs)%5 != 0 {
				return errors.Errorf("vertices of %d floats", len(fs))
			}
			for i := 0; i < len(fs); i += 5 {
				l.Mesh.Vertices = append(l.Mesh.Vertices, Vertex{
					Pos: vec.Vec3{fs[i], fs[i+1], fs[i+2]},
					S:   fs[i+3],
					T:   fs[i+4],
				})
			}
		case fieldIndices:
			var vs []uint64
			if vs, err = decodeVarints(f.b); err == nil {
				for _, v := range vs {
					l.Mesh.Indices = append(l.Mesh.Indices, uint32(v))
				}
			}
		case fieldLightmapUVs:
			var fs []float32
			if fs, err = decodeFloats(f.b, 0); err != nil {
				return err
			}
			if len(fs)%2 != 0 {
				return errors.Errorf("lightmap uvs of %d floats", len(fs))
			}
			for i := 0; i < len(fs); i += 2 {
				l.Mesh.LightmapUVs = append(l.Mesh.LightmapUVs, [2]float32{fs[i], fs[i+1]})
			}
		case fieldPrimitive:
			var p Primitive
			if p, err = decodePrimitive(f.b); err == nil {
				prims = append(prims, p)
			}
		}
		return errors.Wrapf(err, "field %d", f.num)
	})
	if err != nil {
		return nil, errors.Wrap(err, "decoding level")
	}
	if err := l.Validate(); err != nil {
		return nil, errors.Wrapf(err, "level %q", l.Name)
	}
	for _, p := range prims {
		l.AddPrimitive(p)
	}
	return l, nil
}
