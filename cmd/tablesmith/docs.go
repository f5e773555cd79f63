package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/okvist/tablesmith/report"
)

func docsCommand() *cli.Command {
	return &cli.Command{
		Name:  "docs",
		Usage: "Render the compiled schema as documentation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Value: "markdown",
				Usage: "output format: markdown, json, or yaml",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "write to a file instead of stdout",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			res, cfg, err := load(cmd)
			if err != nil {
				return err
			}

			var out []byte
			switch format := cmd.String("format"); format {
			case "markdown":
				out = []byte(report.Markdown(res, cfg))
			case "json":
				out, err = report.JSON(res, cfg)
			case "yaml":
				out, err = report.SchemaYAML(res, cfg)
			default:
				return fmt.Errorf("unknown format %q (want markdown, json, or yaml)", format)
			}
			if err != nil {
				return err
			}

			if path := cmd.String("output"); path != "" {
				if err := os.WriteFile(path, out, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				return nil
			}
			fmt.Print(string(out))
			return nil
		},
	}
}
