// SPDX-License-Identifier: GPL-2.0-or-later

package level

import (
	"bytes"
	"log/slog"
)

// VisRowSize is the byte length of one decompressed PVS row.
func (l *Level) VisRowSize() int {
	return (len(l.Leafs) + 7) / 8
}

// DecompressVis expands a run length compressed PVS row. The result is owned
// by the level and only valid until the next call.
func (l *Level) DecompressVis(in []byte) []byte {
	row := l.VisRowSize()
	if cap(l.visBuf) < row {
		l.visBuf = make([]byte, row)
	}
	out := l.visBuf[:row]

	if len(in) == 0 {
		// no vis info, so make all visible
		for i := range out {
			out[i] = 0xff
		}
		return out
	}

	// 'in' is compressed and looks like
	// 70550311
	// and gets uncompressed to
	// 700000500011	(7 5x0 5 3x0 1 1)

	j := 0
	for i := 0; i < len(in) && j < row; i++ {
		if in[i] != 0 {
			out[j] = in[i]
			j++
			continue
		}
		i++
		if i >= len(in) {
			slog.Error("Faulty vis data", slog.String("level", l.Name))
			break
		}
		for c := in[i]; c > 0 && j < row; c-- {
			out[j] = 0
			j++
		}
	}
	for ; j < row; j++ {
		out[j] = 0
	}
	return out
}

// CompressVis is the inverse of DecompressVis.
func CompressVis(row []byte) []byte {
	var out []byte
	for i := 0; i < len(row); i++ {
		if row[i] != 0 {
			out = append(out, row[i])
			continue
		}
		rep := 1
		for i+1 < len(row) && row[i+1] == 0 && rep < 255 {
			rep++
			i++
		}
		out = append(out, 0, byte(rep))
	}
	return out
}

func (l *Level) noVisRow() []byte {
	row := l.VisRowSize()
	if len(l.noVis) != row {
		l.noVis = bytes.Repeat([]byte{0xff}, row)
	}
	return l.noVis
}

// LeafPVS returns the decompressed visibility row of leaf. Solid space and
// levels without PVS see everything.
func (l *Level) LeafPVS(leaf int) []byte {
	if leaf < 0 || !l.HasPVS {
		return l.noVisRow()
	}
	return l.DecompressVis(l.Leafs[leaf].Visibility)
}

// InvalidateVis forces the next MarkLeafs call to re-mark the tree.
func (l *Level) InvalidateVis() {
	l.visChanged = true
}

// MarkLeafs tags every leaf visible from leaf and all their ancestors with a
// view epoch and returns it. Marking only happens again after the view leaf
// changed, HasPVS changed or InvalidateVis was called.
func (l *Level) MarkLeafs(leaf int) int {
	if leaf == l.viewLeaf && l.HasPVS == l.viewPVS && !l.visChanged {
		return l.viewMark
	}
	l.viewLeaf = leaf
	l.viewPVS = l.HasPVS
	l.visChanged = false
	l.viewMark = l.NextMarker()
	mark := l.viewMark

	vis := l.LeafPVS(leaf)
	for i := range l.Leafs {
		if vis[i>>3]&(1<<(i&7)) == 0 {
			continue
		}
		lf := &l.Leafs[i]
		if lf.ViewMark == mark {
			continue
		}
		lf.ViewMark = mark
		for n := lf.Parent; n != 0; n = l.Nodes[n].Parent {
			if l.Nodes[n].ViewMark == mark {
				break
			}
			l.Nodes[n].ViewMark = mark
		}
	}
	return mark
}

// ViewMark returns the epoch of the last MarkLeafs call.
func (l *Level) ViewMark() int {
	return l.viewMark
}
