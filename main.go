// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"govsd/cmd"
)

func main() {
	app := cli.NewApp()
	app.Name = "govsd"
	app.Usage = "visible set determination for portal and BSP levels"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable debug logging",
		},
		cli.StringSliceFlag{
			Name:  "set",
			Value: &cli.StringSlice{},
			Usage: `set a cvar before running, e.g. --set "vsd_cullingtype 1"`,
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "bench",
			Usage: "run visibility queries along a camera path",
			Description: `
Generate or load a level and fly a camera down the corridor, querying the
visible set every frame. Prints the time per frame and the summed counters.`,
			Flags: append(append([]cli.Flag{
				cli.IntFlag{
					Name:  "frames, n",
					Value: 200,
					Usage: "number of queries",
				},
			}, cmd.LevelFlags...), cmd.SystemFlags...),
			Action: cmd.Bench,
		},
		{
			Name:  "raycast",
			Usage: "trace a ray through the level",
			Flags: append(append([]cli.Flag{
				cli.StringFlag{
					Name:  "from",
					Value: "8,0,2",
					Usage: "ray start x,y,z",
				},
				cli.StringFlag{
					Name:  "to",
					Value: "100,0,2",
					Usage: "ray end x,y,z",
				},
				cli.StringFlag{
					Name:  "mode, m",
					Value: "closest",
					Usage: "closest, any, bounds or closestbounds",
				},
			}, cmd.LevelFlags...), cmd.SystemFlags...),
			Action: cmd.Raycast,
		},
		{
			Name:      "save",
			Usage:     "write a generated level to a file",
			ArgsUsage: "level_file",
			Flags:     cmd.LevelFlags,
			Action:    cmd.Save,
		},
		{
			Name:   "info",
			Usage:  "print the size of a level",
			Flags:  cmd.LevelFlags,
			Action: cmd.Info,
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("govsd failed", slog.Any("err", err))
		os.Exit(1)
	}
}
