// SPDX-License-Identifier: GPL-2.0-or-later

package vsd

import (
	"testing"

	"govsd/jobs"
	"govsd/rand"
)

func TestSubmitCullingJobs(t *testing.T) {
	g := rand.New(17)
	pool := jobs.NewWorkerPool(4)
	tests := []struct {
		n        int
		wantJobs int
	}{
		{0, 0},
		{10, 0},
		{15, 0},
		{16, 4},
		{1003, 4},
	}
	for _, tc := range tests {
		boxes := randomBoxes(&g, tc.n)
		planes := randomPlanes(&g, 5)
		want := make([]bool, tc.n)
		CullBoxGeneric(boxes, planes, want)
		for _, simd := range []bool{false, true} {
			got := make([]bool, tc.n)
			if nj := SubmitCullingJobs(pool, boxes, planes, got, simd); nj != tc.wantJobs {
				t.Errorf("SubmitCullingJobs(n=%v, simd=%v) = %v jobs, want %v", tc.n, simd, nj, tc.wantJobs)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("n=%v simd=%v box %v: culled = %v, want %v", tc.n, simd, i, got[i], want[i])
				}
			}
		}
	}
}

func TestSubmitCullingJobsSingleThread(t *testing.T) {
	g := rand.New(19)
	boxes := randomBoxes(&g, 100)
	planes := randomPlanes(&g, 4)
	want := make([]bool, len(boxes))
	CullBoxGeneric(boxes, planes, want)
	for _, pool := range []jobs.Pool{nil, &jobs.Inline{}, jobs.NewWorkerPool(1)} {
		got := make([]bool, len(boxes))
		if n := SubmitCullingJobs(pool, boxes, planes, got, true); n != 0 {
			t.Errorf("SubmitCullingJobs(%T) = %v jobs, want 0", pool, n)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%T box %v: culled = %v, want %v", pool, i, got[i], want[i])
			}
		}
	}
}
