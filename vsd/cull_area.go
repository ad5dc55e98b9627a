// SPDX-License-Identifier: GPL-2.0-or-later

package vsd

import (
	"govsd/geom"
	"govsd/level"
)

func (s *System) faceCulled(surf *level.Surface) bool {
	if surf.Type != level.SurfacePlanar {
		return false
	}
	d := surf.Face.Dist(s.query.ViewPosition)
	switch surf.FaceCull {
	case level.CullBack:
		return d < 0
	case level.CullFront:
		return d > 0
	}
	return false
}

func (s *System) filtered(queryGroup, visGroup uint32) bool {
	q := s.query
	return queryGroup&q.QueryMask != q.QueryMask || visGroup&q.VisibilityMask == 0
}

// cullArea adds the surfaces and primitives of area visible in frame. Each
// object is decided at most once per query.
func (s *System) cullArea(area int, frame *stackFrame) {
	l := s.level
	a := &l.Areas[area]
	planes := frame.cullPlanes()
	s.stats.Areas++

	for _, si := range a.Surfaces {
		surf := &l.Surfaces[si]
		if surf.VisMark == s.marker {
			continue
		}
		surf.VisMark = s.marker
		s.stats.SurfacesTested++
		if s.filtered(surf.QueryGroup, surf.VisGroup) || s.faceCulled(surf) {
			continue
		}
		if CullBoxSingle(surf.Bounds, planes) {
			continue
		}
		surf.VisPass = s.marker
		s.out.Surfaces = append(s.out.Surfaces, si)
		s.stats.SurfacesVisible++
	}

	for _, pi := range a.Primitives {
		p := &l.Primitives[pi]
		if p.VisMark == s.marker {
			continue
		}
		p.VisMark = s.marker
		s.stats.PrimitivesTested++
		if s.filtered(p.QueryGroup, p.VisGroup) {
			continue
		}
		if p.HasFacePlane && p.FacePlane.Dist(s.query.ViewPosition) < 0 {
			continue
		}
		switch p.Shape {
		case level.ShapeSphere:
			if !CullSphereSingle(p.Sphere, planes) {
				s.visible(pi)
			}
		case level.ShapeBox:
			if s.cfg.CullingType == CullingSimple {
				if !CullBoxSingle(p.Box, planes) {
					s.visible(pi)
				}
				continue
			}
			s.batch = append(s.batch, p.Box.To4())
			s.batchPrims = append(s.batchPrims, pi)
		}
	}

	if s.cfg.CullingType == CullingSeparate {
		s.runBatch(planes)
	}
}

func (s *System) visible(pi int) {
	s.level.Primitives[pi].VisPass = s.marker
	s.out.Primitives = append(s.out.Primitives, pi)
	s.stats.PrimitivesVisible++
}

// runBatch culls the deferred boxes against planes and appends the visible
// ones. The batch is empty afterwards.
func (s *System) runBatch(planes []geom.Plane) {
	n := len(s.batch)
	if n == 0 {
		return
	}
	if cap(s.batchCulled) < n {
		s.batchCulled = make([]bool, n, 2*n)
	}
	culled := s.batchCulled[:n]
	s.stats.BoxesBatched += n
	s.stats.Jobs += SubmitCullingJobs(s.cfg.Pool, s.batch, planes, culled, s.cfg.UseSIMD)
	for i, pi := range s.batchPrims {
		if culled[i] {
			s.stats.BoxesCulled++
			continue
		}
		s.visible(pi)
	}
	s.batch = s.batch[:0]
	s.batchPrims = s.batchPrims[:0]
}
