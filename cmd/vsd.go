// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chewxy/math32"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"govsd/cvars"
	"govsd/jobs"
	"govsd/levelgen"
	"govsd/math/vec"
	"govsd/vsd"
)

// SystemFlags tune the visibility system. They write the vsd_ cvars.
var SystemFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "culling",
		Value: 0,
		Usage: "box culling: 0 combined, 1 separate, 2 simple (vsd_cullingtype)",
	},
	cli.BoolTFlag{
		Name:  "simd",
		Usage: "cull box batches four at a time (vsd_simd)",
	},
	cli.BoolFlag{
		Name:  "novis",
		Usage: "ignore precomputed visibility and flood through portals (vsd_novis)",
	},
	cli.IntFlag{
		Name:  "workers",
		Value: 4,
		Usage: "culling worker goroutines, 1 culls on the caller (vsd_workers)",
	},
}

func applySystemFlags(ctx *cli.Context) {
	if ctx.IsSet("culling") {
		cvars.VsdCullingType.SetValue(float32(ctx.Int("culling")))
	}
	if ctx.IsSet("simd") {
		cvars.VsdSIMD.SetByString(boolString(ctx.BoolT("simd")))
	}
	if ctx.IsSet("novis") {
		cvars.VsdNoVis.SetByString(boolString(ctx.Bool("novis")))
	}
	if ctx.IsSet("workers") {
		cvars.VsdWorkers.SetValue(float32(ctx.Int("workers")))
	}
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func newSystem(ctx *cli.Context) *vsd.System {
	applySystemFlags(ctx)
	cfg := vsd.ConfigFromCvars()
	cfg.Logger = slog.Default()
	cfg.Pool = jobs.NewPool(cvars.VsdWorkers.Int())
	s := vsd.New(cfg)
	s.FollowCvars()
	slog.Debug("visibility system",
		slog.String("culling", cfg.CullingType.String()),
		slog.Bool("simd", cfg.UseSIMD),
		slog.Bool("novis", cfg.ForcePortalFlood),
		slog.Int("workers", cvars.VsdWorkers.Int()))
	return s
}

// cameraAt returns the view of frame i of n flying down the corridor with a
// slow sway.
func cameraAt(cfg levelgen.Config, i, n int) vsd.Query {
	length := float32(cfg.Rooms) * cfg.RoomSize[0]
	t := float32(i) / float32(max(n, 1))
	pos := vec.Vec3{0.5 + t*(length-1), 0, cfg.RoomSize[2] / 2}
	yaw := 0.6 * math32.Sin(t*8*math32.Pi)
	fwd := vec.Vec3{math32.Cos(yaw), math32.Sin(yaw), 0}
	return vsd.NewViewQuery(pos, fwd, vec.Vec3{0, 0, 1}, 90, 16.0/9, 0.1, 4096)
}

// Bench runs visibility queries along a camera path and prints timings and
// the accumulated counters.
func Bench(ctx *cli.Context) error {
	if err := setup(ctx); err != nil {
		return err
	}
	l, cfg, err := loadLevel(ctx)
	if err != nil {
		return err
	}
	s := newSystem(ctx)
	frames := ctx.Int("frames")
	if frames < 1 {
		return errors.Errorf("bad frame count %d", frames)
	}

	var out vsd.VisibleSet
	var total vsd.Stats
	visible := 0
	start := time.Now()
	for i := 0; i < frames; i++ {
		q := cameraAt(cfg, i, frames)
		s.QueryVisiblePrimitives(l, &q, &out)
		st := s.Stats()
		total.Add(&st)
		visible += len(out.Primitives) + len(out.Surfaces)
		if cvars.VsdShowStats.Bool() {
			slog.Debug("frame",
				slog.Int("frame", i),
				slog.Int("primitives", len(out.Primitives)),
				slog.Int("surfaces", len(out.Surfaces)),
				slog.Int("portals", st.PortalsPassed))
		}
	}
	elapsed := time.Since(start)

	slog.Info("bench done",
		slog.Int("frames", frames),
		slog.Duration("total", elapsed),
		slog.Duration("per_frame", elapsed/time.Duration(frames)),
		slog.Float64("visible_per_frame", float64(visible)/float64(frames)))
	total.WriteTable(os.Stdout)
	return nil
}

func parseVec(s string) (vec.Vec3, error) {
	var v vec.Vec3
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, errors.Errorf("want x,y,z, got %q", s)
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return v, errors.Wrapf(err, "component %d of %q", i, s)
		}
		v[i] = float32(f)
	}
	return v, nil
}

func fmtVec(v vec.Vec3) string {
	return fmt.Sprintf("%.3f %.3f %.3f", v[0], v[1], v[2])
}

func fmtFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', 3, 32)
}

// Raycast traces one ray through the level and prints what it hit.
func Raycast(ctx *cli.Context) error {
	if err := setup(ctx); err != nil {
		return err
	}
	from, err := parseVec(ctx.String("from"))
	if err != nil {
		return errors.Wrap(err, "--from")
	}
	to, err := parseVec(ctx.String("to"))
	if err != nil {
		return errors.Wrap(err, "--to")
	}
	l, _, err := loadLevel(ctx)
	if err != nil {
		return err
	}
	s := newSystem(ctx)
	f := vsd.DefaultFilter()
	f.SortByDistance = cvars.VsdSortHits.Bool()

	t := tablewriter.NewWriter(os.Stdout)
	t.SetAutoFormatHeaders(false)

	switch mode := ctx.String("mode"); mode {
	case "closest":
		var hit vsd.ClosestHit
		if !s.RaycastClosest(l, from, to, &f, &hit) {
			slog.Info("no hit")
			return nil
		}
		t.SetHeader([]string{"field", "value"})
		t.Append([]string{"distance", fmtFloat(hit.Distance)})
		t.Append([]string{"location", fmtVec(hit.Location)})
		t.Append([]string{"normal", fmtVec(hit.Normal)})
		t.Append([]string{"surface", strconv.Itoa(hit.Surface)})
		t.Append([]string{"primitive", strconv.Itoa(hit.Primitive)})
		if hit.Material != nil {
			t.Append([]string{"material", hit.Material.Name})
		}
		if hit.HasLightmap {
			lm := hit.LightmapSample
			t.Append([]string{"lightmap", fmtVec(vec.Vec3(lm))})
		}
	case "any":
		var res vsd.RaycastResult
		if !s.Raycast(l, from, to, &f, &res) {
			slog.Info("no hit")
			return nil
		}
		t.SetHeader([]string{"surface", "primitive", "hits", "distance", "location"})
		for _, o := range res.Objects {
			h := res.Hits[o.ClosestHit]
			t.Append([]string{strconv.Itoa(o.Surface), strconv.Itoa(o.Primitive), strconv.Itoa(o.NumHits), fmtFloat(h.Distance), fmtVec(h.Location)})
		}
	case "bounds":
		var hits []vsd.BoundsHit
		if !s.RaycastBounds(l, from, to, &f, &hits) {
			slog.Info("no hit")
			return nil
		}
		t.SetHeader([]string{"primitive", "distance", "location"})
		for _, h := range hits {
			t.Append([]string{strconv.Itoa(h.Primitive), fmtFloat(h.Distance), fmtVec(h.Location)})
		}
	case "closestbounds":
		var hit vsd.BoundsHit
		if !s.RaycastClosestBounds(l, from, to, &f, &hit) {
			slog.Info("no hit")
			return nil
		}
		t.SetHeader([]string{"primitive", "distance", "location"})
		t.Append([]string{strconv.Itoa(hit.Primitive), fmtFloat(hit.Distance), fmtVec(hit.Location)})
	default:
		return errors.Errorf("unknown raycast mode %q", mode)
	}
	t.Render()
	return nil
}
