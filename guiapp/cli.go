package guiapp

import (
	cli "github.com/urfave/cli/v2"
)

// CLIApp builds the command-line surface of the GUI executable. The
// renderer factory lets a binary plug in its own toolkit; passing nil
// selects the headless renderer.
func CLIApp(newRenderer func() Renderer) *cli.App {
	if newRenderer == nil {
		newRenderer = func() Renderer { return NewHeadlessRenderer() }
	}
	return &cli.App{
		Name:  "guibridge-gui",
		Usage: "out-of-process gui for a guibridge plugin",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "skin",
				Usage:    "path to the skin directory",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "qml-import",
				Usage: "additional GUI-library import path (repeatable)",
			},
			&cli.IntFlag{
				Name:  "socket",
				Usage: "inherited endpoint file descriptor",
				Value: -1,
			},
			&cli.StringFlag{
				Name:  "pipe-in",
				Usage: "name of the plugin-to-gui pipe",
			},
			&cli.StringFlag{
				Name:  "pipe-out",
				Usage: "name of the gui-to-plugin pipe",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (trace..fatal, none)",
				Value: "info",
			},
		},
		Action: func(ctx *cli.Context) error {
			opts := Options{
				SkinDir:    ctx.String("skin"),
				QMLImports: ctx.StringSlice("qml-import"),
				SocketFd:   ctx.Int("socket"),
				PipeIn:     ctx.String("pipe-in"),
				PipeOut:    ctx.String("pipe-out"),
				LogLevel:   ctx.String("log-level"),
			}
			app, err := New(opts, newRenderer())
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if code := app.Run(); code != 0 {
				return cli.Exit("gui terminated abnormally", code)
			}
			return nil
		},
	}
}
