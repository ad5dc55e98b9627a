// SPDX-License-Identifier: GPL-2.0-or-later

package cvars

import (
	"govsd/cvar"
)

var (
	VsdCullingType  *cvar.Cvar
	VsdSIMD         *cvar.Cvar
	VsdNoVis        *cvar.Cvar
	VsdWorkers      *cvar.Cvar
	VsdClipEpsilon  *cvar.Cvar
	VsdSortHits     *cvar.Cvar
	VsdShowStats    *cvar.Cvar
	LevelRooms      *cvar.Cvar
	LevelSeed       *cvar.Cvar
	LevelPrimitives *cvar.Cvar
)

func init() {
	// 0 combined, 1 separate, 2 simple
	VsdCullingType = cvar.MustRegister("vsd_cullingtype", "0", cvar.ARCHIVE)
	VsdSIMD = cvar.MustRegister("vsd_simd", "1", cvar.ARCHIVE)
	VsdNoVis = cvar.MustRegister("vsd_novis", "0", cvar.NONE)
	VsdWorkers = cvar.MustRegister("vsd_workers", "4", cvar.ARCHIVE)
	VsdClipEpsilon = cvar.MustRegister("vsd_clipepsilon", "0", cvar.NONE)
	VsdSortHits = cvar.MustRegister("vsd_sorthits", "1", cvar.NONE)
	VsdShowStats = cvar.MustRegister("vsd_showstats", "0", cvar.NONE)
	LevelRooms = cvar.MustRegister("level_rooms", "4", cvar.NONE)
	LevelSeed = cvar.MustRegister("level_seed", "1", cvar.NONE)
	LevelPrimitives = cvar.MustRegister("level_primitives", "4000", cvar.NONE)
}
