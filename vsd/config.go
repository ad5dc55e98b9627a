// SPDX-License-Identifier: GPL-2.0-or-later

package vsd

import (
	"log/slog"

	"govsd/cvars"
	"govsd/jobs"
)

// CullingType selects when box primitives are tested against the frustum.
type CullingType int

const (
	// CullingCombined batches every box of the query and tests the batch
	// against the top level frustum after traversal.
	CullingCombined CullingType = iota
	// CullingSeparate batches the boxes of each area and tests them with the
	// frustum the area was reached with.
	CullingSeparate
	// CullingSimple tests every box immediately.
	CullingSimple
)

func (c CullingType) String() string {
	switch c {
	case CullingCombined:
		return "combined"
	case CullingSeparate:
		return "separate"
	case CullingSimple:
		return "simple"
	}
	return "unknown"
}

type Config struct {
	CullingType CullingType
	// UseSIMD selects CullBoxSSE over CullBoxGeneric for batches.
	UseSIMD bool
	// ForcePortalFlood ignores precomputed visibility.
	ForcePortalFlood bool
	// ClipEpsilon is the on-plane tolerance of portal hull clipping.
	ClipEpsilon float32
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Pool runs batch culling jobs. Without a pool batches run on the
	// calling goroutine.
	Pool jobs.Pool
}

func DefaultConfig() Config {
	return Config{
		CullingType: CullingCombined,
		UseSIMD:     true,
	}
}

// ConfigFromCvars snapshots the vsd_ cvars. The pool is not part of the
// snapshot, see cvars.VsdWorkers.
func ConfigFromCvars() Config {
	ct := CullingType(cvars.VsdCullingType.Int())
	if ct < CullingCombined || ct > CullingSimple {
		slog.Warn("bad vsd_cullingtype, using combined", slog.Int("value", int(ct)))
		ct = CullingCombined
	}
	return Config{
		CullingType:      ct,
		UseSIMD:          cvars.VsdSIMD.Bool(),
		ForcePortalFlood: cvars.VsdNoVis.Bool(),
		ClipEpsilon:      cvars.VsdClipEpsilon.Value(),
	}
}
