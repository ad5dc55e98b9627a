// SPDX-License-Identifier: GPL-2.0-or-later

package vsd

import (
	"log/slog"

	"govsd/geom"
	"govsd/level"
	"govsd/math/vec"
)

// calcPortalStack narrows parent to what is visible through link and writes
// the result to child. It reports false if nothing is visible through it.
func (s *System) calcPortalStack(link *level.PortalLink, parent, child *stackFrame) bool {
	pos := s.query.ViewPosition
	d := link.Plane.Dist(pos)
	if d <= 0 {
		return false
	}
	if d <= s.viewZNear {
		// the near plane cuts the portal, looking through it does not
		// narrow anything
		*child = *parent
		child.portal = link.Portal
		return true
	}

	hull, ok := s.clipHull(link.Hull, parent)
	if !ok {
		return false
	}

	sc := scissor{minX: maxScissor, minY: maxScissor, maxX: -maxScissor, maxY: -maxScissor}
	right, up := s.query.ViewRightVec, s.query.ViewUpVec
	for _, p := range hull {
		v := vec.Sub(p, pos)
		proj := vec.MA(pos, s.viewZNear/vec.Dot(s.viewDir, v), v)
		rel := vec.Sub(proj, s.viewCenter)
		x, y := vec.Dot(right, rel), vec.Dot(up, rel)
		sc.minX = min(sc.minX, x)
		sc.maxX = max(sc.maxX, x)
		sc.minY = min(sc.minY, y)
		sc.maxY = max(sc.maxY, y)
	}
	ps := &parent.scissor
	sc.minX = max(sc.minX, ps.minX)
	sc.minY = max(sc.minY, ps.minY)
	sc.maxX = min(sc.maxX, ps.maxX)
	sc.maxY = min(sc.maxY, ps.maxY)
	if sc.minX >= sc.maxX || sc.minY >= sc.maxY {
		return false
	}

	child.portal = link.Portal
	child.scissor = sc
	child.numPlanes = 0
	if n := len(hull); n <= 4 {
		for i := 0; i < n; i++ {
			child.planes[child.numPlanes] = geom.PlaneFromPoints(pos, hull[(i+1)%n], hull[i])
			child.numPlanes++
		}
	} else {
		corner := func(x, y float32) vec.Vec3 {
			return vec.MA(vec.MA(s.viewCenter, x, right), y, up)
		}
		quad := [4]vec.Vec3{
			corner(sc.minX, sc.minY),
			corner(sc.maxX, sc.minY),
			corner(sc.maxX, sc.maxY),
			corner(sc.minX, sc.maxY),
		}
		for i := 0; i < 4; i++ {
			child.planes[child.numPlanes] = geom.PlaneFromPoints(pos, quad[(i+1)%4], quad[i])
			child.numPlanes++
		}
	}
	if s.hasFar {
		child.planes[child.numPlanes] = s.farPlane
		child.numPlanes++
	}
	return true
}

// clipHull clips hull against the view plane and every plane of frame. The
// result lives in the system's clip buffers.
func (s *System) clipHull(hull []vec.Vec3, frame *stackFrame) ([]vec.Vec3, bool) {
	eps := s.cfg.ClipEpsilon
	cur := 0
	pts, res := geom.ClipPolygon(s.clip[cur][:0], hull, s.viewPlane, eps)
	if !s.clipOK(res, pts) {
		return nil, false
	}
	for _, p := range frame.cullPlanes() {
		cur ^= 1
		pts, res = geom.ClipPolygon(s.clip[cur][:0], pts, p, eps)
		if !s.clipOK(res, pts) {
			return nil, false
		}
	}
	return pts, true
}

func (s *System) clipOK(res geom.ClipResult, pts []vec.Vec3) bool {
	if res == geom.ClipOverflow && !s.warnedClip {
		s.warnedClip = true
		s.log.Warn("portal hull clip overflow", slog.Int("points", geom.MaxHullPoints))
	}
	return res != geom.ClipBack && res != geom.ClipOverflow && len(pts) >= 3
}
