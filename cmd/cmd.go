package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/piravelha/complua/compiler"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// Execute runs the complua CLI with the given version string.
func Execute(version string) {
	cmd := &cli.Command{
		Name:                   "complua",
		Usage:                  "compile the extended dialect to plain-dialect source",
		Version:                version,
		UseShortOptionHandling: true,
		ArgsUsage:              "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output file",
				Value:   "out.luac",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "expand #debug directives",
			},
		},
		Action: compileAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, colorize(err.Error()))
		os.Exit(1)
	}
}

func compileAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("complua: usage: complua [-o output] [--debug] <file>")
	}
	comp := &compiler.Compiler{Debug: cmd.Bool("debug")}
	output := cmd.String("output")
	if output == "" {
		output = "out.luac"
	}
	return comp.CompileToFile(cmd.Args().First(), output)
}

// colorize wraps the diagnostic line in red when stderr is a terminal.
func colorize(msg string) string {
	if !term.IsTerminal(int(os.Stderr.Fd())) || os.Getenv("NO_COLOR") != "" {
		return msg
	}
	return "\033[31m" + msg + "\033[0m"
}
