// tablesmith compiles declarative entity models into a single-table DynamoDB
// schema: key patterns per entity, a bounded secondary index assignment, and
// a documented access-pattern catalog.
//
//	tablesmith compile   --models models.yaml
//	tablesmith validate  --models models.yaml
//	tablesmith docs      --models models.yaml --format markdown
//	tablesmith provision --models models.yaml [--apply]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

func main() {
	cmd := &cli.Command{
		Name:    "tablesmith",
		Usage:   "compile entity models into a single-table DynamoDB schema",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "models",
				Value: "models.yaml",
				Usage: "path to the YAML model declarations",
			},
			&cli.StringFlag{
				Name:  "config",
				Value: "tablesmith.yaml",
				Usage: "path to the table configuration file (optional)",
			},
		},
		Commands: []*cli.Command{
			compileCommand(),
			validateCommand(),
			docsCommand(),
			provisionCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
