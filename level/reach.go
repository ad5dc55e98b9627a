// SPDX-License-Identifier: GPL-2.0-or-later

package level

import (
	"github.com/gammazero/deque"
)

// ReachableAreas returns every area reachable from area through portals that
// are not blocked, in breadth first order starting with area itself.
func (l *Level) ReachableAreas(area int) []int {
	if area < 0 || area >= len(l.Areas) {
		return nil
	}
	seen := make([]bool, len(l.Areas))
	seen[area] = true
	out := []int{area}

	var q deque.Deque[int]
	q.PushBack(area)
	for q.Len() > 0 {
		a := q.PopFront()
		for _, li := range l.Areas[a].Portals {
			link := &l.PortalLinks[li]
			if l.Portals[link.Portal].Blocked || seen[link.ToArea] {
				continue
			}
			seen[link.ToArea] = true
			out = append(out, link.ToArea)
			q.PushBack(link.ToArea)
		}
	}
	return out
}
