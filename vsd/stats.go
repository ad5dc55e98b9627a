// SPDX-License-Identifier: GPL-2.0-or-later

package vsd

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Stats counts the work of the last query.
type Stats struct {
	Areas             int
	PortalsPassed     int
	MaxDepth          int
	SurfacesTested    int
	SurfacesVisible   int
	PrimitivesTested  int
	PrimitivesVisible int
	BoxesBatched      int
	BoxesCulled       int
	Jobs              int
}

func (s *Stats) Add(o *Stats) {
	s.Areas += o.Areas
	s.PortalsPassed += o.PortalsPassed
	s.MaxDepth = max(s.MaxDepth, o.MaxDepth)
	s.SurfacesTested += o.SurfacesTested
	s.SurfacesVisible += o.SurfacesVisible
	s.PrimitivesTested += o.PrimitivesTested
	s.PrimitivesVisible += o.PrimitivesVisible
	s.BoxesBatched += o.BoxesBatched
	s.BoxesCulled += o.BoxesCulled
	s.Jobs += o.Jobs
}

// WriteTable prints the counters as a two column table.
func (s *Stats) WriteTable(w io.Writer) {
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"counter", "value"})
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	rows := []struct {
		name string
		v    int
	}{
		{"areas", s.Areas},
		{"portals passed", s.PortalsPassed},
		{"max depth", s.MaxDepth},
		{"surfaces tested", s.SurfacesTested},
		{"surfaces visible", s.SurfacesVisible},
		{"primitives tested", s.PrimitivesTested},
		{"primitives visible", s.PrimitivesVisible},
		{"boxes batched", s.BoxesBatched},
		{"boxes culled", s.BoxesCulled},
		{"jobs", s.Jobs},
	}
	for _, r := range rows {
		t.Append([]string{r.name, strconv.Itoa(r.v)})
	}
	t.Render()
}
