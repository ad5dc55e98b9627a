// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"govsd/cvar"
	"govsd/cvars"
	"govsd/level"
	"govsd/levelgen"
	"govsd/rand"
)

// LevelFlags select the level a command works on.
var LevelFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "load, l",
		Usage: "load a level written by save instead of generating one",
	},
	cli.IntFlag{
		Name:  "rooms",
		Value: 4,
		Usage: "number of generated rooms (level_rooms)",
	},
	cli.IntFlag{
		Name:  "primitives",
		Value: 4000,
		Usage: "number of scattered box primitives (level_primitives)",
	},
	cli.IntFlag{
		Name:  "seed",
		Value: 1,
		Usage: "random seed of the primitive placement (level_seed)",
	},
	cli.BoolFlag{
		Name:  "indoor",
		Usage: "generate the level without an outdoor area",
	},
}

func applyLevelFlags(ctx *cli.Context) {
	if ctx.IsSet("rooms") {
		cvars.LevelRooms.SetValue(float32(ctx.Int("rooms")))
	}
	if ctx.IsSet("primitives") {
		cvars.LevelPrimitives.SetValue(float32(ctx.Int("primitives")))
	}
	if ctx.IsSet("seed") {
		cvars.LevelSeed.SetValue(float32(ctx.Int("seed")))
	}
}

func levelConfig(ctx *cli.Context) levelgen.Config {
	cfg := levelgen.DefaultConfig()
	cfg.Rooms = cvars.LevelRooms.Int()
	cfg.Outdoor = !ctx.Bool("indoor")
	return cfg
}

// loadLevel reads the level named by --load or generates one from the
// level_ cvars.
func loadLevel(ctx *cli.Context) (*level.Level, levelgen.Config, error) {
	applyLevelFlags(ctx)
	cfg := levelConfig(ctx)
	if name := ctx.String("load"); name != "" {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, cfg, errors.Wrap(err, "load level")
		}
		l, err := level.Unmarshal(data)
		if err != nil {
			return nil, cfg, errors.Wrapf(err, "decode %s", name)
		}
		cfg.Rooms = len(l.Areas)
		if l.Outdoor >= 0 {
			cfg.Rooms--
		}
		slog.Debug("level loaded", slog.String("file", name), slog.String("id", l.ID.String()))
		return l, cfg, nil
	}

	l, err := levelgen.Corridor(cfg)
	if err != nil {
		return nil, cfg, err
	}
	g := rand.New(uint32(cvars.LevelSeed.Int()))
	levelgen.ScatterBoxes(l, cfg, &g, cvars.LevelPrimitives.Int(), 0.1, 0.8)
	slog.Debug("level generated",
		slog.Int("rooms", cfg.Rooms),
		slog.Int("primitives", len(l.Primitives)),
		slog.String("id", l.ID.String()))
	return l, cfg, nil
}

// Save writes a generated level to the file given as argument.
func Save(ctx *cli.Context) error {
	if err := setup(ctx); err != nil {
		return err
	}
	if ctx.NArg() != 1 {
		return errors.New("missing output file")
	}
	l, _, err := loadLevel(ctx)
	if err != nil {
		return err
	}
	data := l.Marshal()
	out := ctx.Args().First()
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return errors.Wrap(err, "save level")
	}
	slog.Info("level saved", slog.String("file", out), slog.Int("bytes", len(data)))
	return nil
}

// writeCvars lists every cvar with its current and default value.
func writeCvars(w io.Writer) {
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"cvar", "value", "default", "flags"})
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, cv := range cvar.Sorted() {
		flags := ""
		switch {
		case cv.Archive():
			flags = "archive"
		case cv.UserDefined():
			flags = "user"
		}
		t.Append([]string{cv.Name(), cv.String(), cv.Default(), flags})
	}
	t.Render()
}

// Info prints the size of the level graph and the cvars it was built with.
func Info(ctx *cli.Context) error {
	if err := setup(ctx); err != nil {
		return err
	}
	l, _, err := loadLevel(ctx)
	if err != nil {
		return err
	}
	t := tablewriter.NewWriter(os.Stdout)
	t.SetHeader([]string{"level", l.Name})
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	rows := [][2]string{
		{"id", l.ID.String()},
		{"nodes", strconv.Itoa(len(l.Nodes) - 1)},
		{"leafs", strconv.Itoa(len(l.Leafs))},
		{"areas", strconv.Itoa(len(l.Areas))},
		{"portals", strconv.Itoa(len(l.Portals))},
		{"surfaces", strconv.Itoa(len(l.Surfaces))},
		{"triangles", strconv.Itoa(len(l.Mesh.Indices) / 3)},
		{"lightmaps", strconv.Itoa(len(l.Lightmaps))},
		{"primitives", strconv.Itoa(len(l.Primitives))},
		{"pvs", strconv.FormatBool(l.HasPVS)},
	}
	for _, r := range rows {
		t.Append(r[:])
	}
	t.Render()
	writeCvars(os.Stdout)
	return nil
}
