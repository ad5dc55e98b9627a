// SPDX-License-Identifier: GPL-2.0-or-later

// Package cmd implements the govsd command line actions.
package cmd

import (
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"govsd/cvar"
)

func setupLogging(ctx *cli.Context) {
	level := slog.LevelInfo
	if ctx.GlobalBool("v") {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

// setup configures logging and applies the cvar assignments of --set.
func setup(ctx *cli.Context) error {
	setupLogging(ctx)
	for _, line := range ctx.GlobalStringSlice("set") {
		v, err := cvar.Execute(line)
		if err != nil {
			return errors.Wrap(err, "--set")
		}
		slog.Debug("cvar set", slog.String("line", line), slog.String("value", v))
	}
	return nil
}
