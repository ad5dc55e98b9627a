// SPDX-License-Identifier: GPL-2.0-or-later

package level

import (
	"reflect"
	"testing"

	"govsd/geom"
	"govsd/math/vec"
)

func TestMarshalRoundTrip(t *testing.T) {
	l := twoRooms()
	l.SetPortalBlocked(0, true)
	l.AddPrimitive(Primitive{
		Shape:      ShapeBox,
		Box:        geom.AABB{Mins: vec.Vec3{-1, -1, -1}, Maxs: vec.Vec3{1, 1, 1}},
		QueryGroup: 2,
		VisGroup:   1,
	})
	l.AddPrimitive(Primitive{
		Shape:        ShapeSphere,
		Sphere:       geom.Sphere{Center: vec.Vec3{5, 0, 0}, Radius: 0.5},
		HasFacePlane: true,
		FacePlane:    geom.Plane{Normal: vec.Vec3{0, 0, 1}, D: -3},
	})

	got, err := Unmarshal(l.Marshal())
	if err != nil {
		t.Fatalf("Unmarshal(Marshal()) = %v", err)
	}
	if got.ID != l.ID || got.Name != l.Name || got.Root != l.Root || got.Outdoor != l.Outdoor || got.HasPVS != l.HasPVS {
		t.Errorf("header = %v %q %v %v %v, want %v %q %v %v %v",
			got.ID, got.Name, got.Root, got.Outdoor, got.HasPVS,
			l.ID, l.Name, l.Root, l.Outdoor, l.HasPVS)
	}
	parts := []struct {
		name      string
		got, want any
	}{
		{"Nodes", got.Nodes, l.Nodes},
		{"Leafs", got.Leafs, l.Leafs},
		{"Areas", got.Areas, l.Areas},
		{"Portals", got.Portals, l.Portals},
		{"PortalLinks", got.PortalLinks, l.PortalLinks},
		{"Surfaces", got.Surfaces, l.Surfaces},
		{"Materials", got.Materials, l.Materials},
		{"Lightmaps", got.Lightmaps, l.Lightmaps},
		{"Mesh", got.Mesh, l.Mesh},
		{"Primitives", got.Primitives, l.Primitives},
	}
	for _, p := range parts {
		if !reflect.DeepEqual(p.got, p.want) {
			t.Errorf("%s = %v, want %v", p.name, p.got, p.want)
		}
	}
}

func TestUnmarshalErrors(t *testing.T) {
	b := twoRooms().Marshal()
	if _, err := Unmarshal(b[:len(b)-3]); err == nil {
		t.Errorf("Unmarshal(truncated) = nil, want error")
	}

	l := twoRooms()
	l.Leafs[0].Area = 7
	if _, err := Unmarshal(l.Marshal()); err == nil {
		t.Errorf("Unmarshal(bad area) = nil, want error")
	}
}
