// SPDX-License-Identifier: GPL-2.0-or-later

package vsd

import (
	"log/slog"

	"govsd/level"
)

// traverseTree walks the BSP tree below n, skipping everything not marked
// visible from the view leaf and everything outside the view frustum.
// bits holds the frustum planes still to test.
func (s *System) traverseTree(n level.NodeRef, bits uint8) {
	l := s.level
	top := &s.stack[0]
	for {
		if n.IsSolid() {
			return
		}
		if n.IsLeaf() {
			leaf := &l.Leafs[n.Leaf()]
			if leaf.ViewMark != s.viewMark {
				return
			}
			if bits != 0 && cullNode(leaf.Bounds, top.cullPlanes(), &bits) {
				return
			}
			if leaf.Area >= 0 {
				s.cullArea(leaf.Area, top)
			}
			return
		}
		node := &l.Nodes[n.Node()]
		if node.ViewMark != s.viewMark {
			return
		}
		if bits != 0 && cullNode(node.Bounds, top.cullPlanes(), &bits) {
			return
		}
		s.traverseTree(node.Children[0], bits)
		n = node.Children[1]
	}
}

// flowThroughPortals culls area with the frame at depth and recurses into
// every neighbour visible through an open portal.
func (s *System) flowThroughPortals(area int, depth int) {
	l := s.level
	frame := &s.stack[depth]
	s.stats.MaxDepth = max(s.stats.MaxDepth, depth)
	s.cullArea(area, frame)

	for _, li := range l.Areas[area].Portals {
		link := &l.PortalLinks[li]
		portal := &l.Portals[link.Portal]
		if portal.Blocked || portal.VisMark == s.marker {
			continue
		}
		if depth+1 >= MaxPortalStack {
			if !s.warnedDepth {
				s.warnedDepth = true
				s.log.Warn("portal stack overflow", slog.Int("depth", depth+1), slog.String("level", l.Name))
			}
			return
		}
		child := &s.stack[depth+1]
		if !s.calcPortalStack(link, frame, child) {
			continue
		}
		portal.VisMark = s.marker
		s.stats.PortalsPassed++
		s.flowThroughPortals(link.ToArea, depth+1)
	}
}
