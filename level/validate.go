// SPDX-License-Identifier: GPL-2.0-or-later

package level

import (
	"github.com/pkg/errors"
)

func (l *Level) checkRef(r NodeRef) error {
	switch {
	case r.IsNode():
		if r.Node() >= len(l.Nodes) {
			return errors.Errorf("node %d out of range", r.Node())
		}
	case r.IsLeaf():
		if r.Leaf() >= len(l.Leafs) {
			return errors.Errorf("leaf %d out of range", r.Leaf())
		}
	}
	return nil
}

func (l *Level) checkArea(a int, allowNone bool) error {
	if allowNone && a == -1 {
		return nil
	}
	if a < 0 || a >= len(l.Areas) {
		return errors.Errorf("area %d out of range", a)
	}
	return nil
}

// Validate checks that every index of the level is in range.
func (l *Level) Validate() error {
	if len(l.Nodes) == 0 {
		return errors.New("missing sentinel node")
	}
	if err := l.checkRef(l.Root); err != nil {
		return errors.Wrap(err, "root")
	}
	if err := l.checkArea(l.Outdoor, true); err != nil {
		return errors.Wrap(err, "outdoor")
	}
	for i := 1; i < len(l.Nodes); i++ {
		n := &l.Nodes[i]
		for _, c := range n.Children {
			if err := l.checkRef(c); err != nil {
				return errors.Wrapf(err, "node %d", i)
			}
		}
		if n.Parent < 0 || n.Parent >= len(l.Nodes) {
			return errors.Errorf("node %d: parent %d out of range", i, n.Parent)
		}
	}
	row := l.VisRowSize()
	for i := range l.Leafs {
		lf := &l.Leafs[i]
		if err := l.checkArea(lf.Area, true); err != nil {
			return errors.Wrapf(err, "leaf %d", i)
		}
		if lf.Parent < 0 || lf.Parent >= len(l.Nodes) {
			return errors.Errorf("leaf %d: parent %d out of range", i, lf.Parent)
		}
		if n := decompressedLen(lf.Visibility); len(lf.Visibility) != 0 && n != row {
			return errors.Errorf("leaf %d: visibility row of %d bytes, want %d", i, n, row)
		}
	}
	for i := range l.Areas {
		a := &l.Areas[i]
		for _, s := range a.Surfaces {
			if s < 0 || s >= len(l.Surfaces) {
				return errors.Errorf("area %d: surface %d out of range", i, s)
			}
		}
		for _, p := range a.Portals {
			if p < 0 || p >= len(l.PortalLinks) {
				return errors.Errorf("area %d: portal link %d out of range", i, p)
			}
		}
	}
	for i := range l.Portals {
		for _, li := range l.Portals[i].Links {
			if li < 0 || li >= len(l.PortalLinks) {
				return errors.Errorf("portal %d: link %d out of range", i, li)
			}
		}
	}
	for i := range l.PortalLinks {
		pl := &l.PortalLinks[i]
		if pl.Portal < 0 || pl.Portal >= len(l.Portals) {
			return errors.Errorf("portal link %d: portal %d out of range", i, pl.Portal)
		}
		if err := l.checkArea(pl.ToArea, false); err != nil {
			return errors.Wrapf(err, "portal link %d", i)
		}
		if len(pl.Hull) < 3 {
			return errors.Errorf("portal link %d: hull has %d points", i, len(pl.Hull))
		}
	}
	if n := len(l.Mesh.LightmapUVs); n != 0 && n != len(l.Mesh.Vertices) {
		return errors.Errorf("%d lightmap uvs for %d vertices", n, len(l.Mesh.Vertices))
	}
	for i := range l.Surfaces {
		s := &l.Surfaces[i]
		if s.FirstVertex < 0 || s.NumVertices < 0 || s.FirstVertex+s.NumVertices > len(l.Mesh.Vertices) {
			return errors.Errorf("surface %d: vertex range out of bounds", i)
		}
		if s.FirstIndex < 0 || s.NumIndices < 0 || s.FirstIndex+s.NumIndices > len(l.Mesh.Indices) {
			return errors.Errorf("surface %d: index range out of bounds", i)
		}
		if s.NumIndices%3 != 0 {
			return errors.Errorf("surface %d: %d indices is no triangle list", i, s.NumIndices)
		}
		for _, idx := range l.SurfaceIndices(s) {
			if int(idx) >= s.NumVertices {
				return errors.Errorf("surface %d: index %d out of range", i, idx)
			}
		}
		if s.Material >= len(l.Materials) {
			return errors.Errorf("surface %d: material %d out of range", i, s.Material)
		}
		if s.Lightmap >= len(l.Lightmaps) {
			return errors.Errorf("surface %d: lightmap %d out of range", i, s.Lightmap)
		}
	}
	for i := range l.Lightmaps {
		lm := &l.Lightmaps[i]
		if lm.Width*lm.Height != len(lm.Texels) {
			return errors.Errorf("lightmap %d: %dx%d with %d texels", i, lm.Width, lm.Height, len(lm.Texels))
		}
	}
	return nil
}

func decompressedLen(in []byte) int {
	n := 0
	for i := 0; i < len(in); i++ {
		if in[i] == 0 && i+1 < len(in) {
			i++
			n += int(in[i])
		} else {
			n++
		}
	}
	return n
}
