// SPDX-License-Identifier: GPL-2.0-or-later

package vsd

import (
	"bytes"
	"strings"
	"testing"

	"govsd/cvar"
)

func setCvar(t *testing.T, name, value string) {
	t.Helper()
	if _, err := cvar.Execute(name + " " + value); err != nil {
		t.Fatalf("Execute(%q) = %v", name+" "+value, err)
	}
}

func cvarsReset() {
	cvar.ResetAll()
}

func TestConfigFromCvars(t *testing.T) {
	defer cvarsReset()
	if got, want := ConfigFromCvars(), DefaultConfig(); got.CullingType != want.CullingType || got.UseSIMD != want.UseSIMD || got.ForcePortalFlood || got.ClipEpsilon != 0 {
		t.Errorf("ConfigFromCvars() = %+v, want defaults %+v", got, want)
	}

	setCvar(t, "vsd_cullingtype", "1")
	setCvar(t, "vsd_novis", "1")
	setCvar(t, "vsd_clipepsilon", "0.5")
	got := ConfigFromCvars()
	if got.CullingType != CullingSeparate || !got.ForcePortalFlood || got.ClipEpsilon != 0.5 {
		t.Errorf("ConfigFromCvars() = %+v, want separate, flood, epsilon 0.5", got)
	}

	setCvar(t, "vsd_cullingtype", "7")
	if got := ConfigFromCvars().CullingType; got != CullingCombined {
		t.Errorf("bad vsd_cullingtype: CullingType = %v, want %v", got, CullingCombined)
	}
}

func TestCullingTypeString(t *testing.T) {
	tests := []struct {
		c    CullingType
		want string
	}{
		{CullingCombined, "combined"},
		{CullingSeparate, "separate"},
		{CullingSimple, "simple"},
		{CullingType(9), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.c.String(); got != tc.want {
			t.Errorf("CullingType(%d).String() = %q, want %q", int(tc.c), got, tc.want)
		}
	}
}

func TestStatsWriteTable(t *testing.T) {
	s := Stats{Areas: 3, PortalsPassed: 2, Jobs: 4}
	s.Add(&Stats{Areas: 1, MaxDepth: 5})
	if s.Areas != 4 || s.MaxDepth != 5 {
		t.Errorf("Add() = %+v, want 4 areas and depth 5", s)
	}
	var buf bytes.Buffer
	s.WriteTable(&buf)
	out := buf.String()
	for _, want := range []string{"portals passed", "max depth", "jobs"} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteTable() misses %q:\n%s", want, out)
		}
	}
}
