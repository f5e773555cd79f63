package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/okvist/tablesmith/compiler"
	"github.com/okvist/tablesmith/config"
	"github.com/okvist/tablesmith/model"
)

// load reads the table configuration and model declarations, then compiles.
func load(cmd *cli.Command) (*compiler.Result, config.Table, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, config.Table{}, err
	}
	entities, err := model.LoadFile(cmd.String("models"))
	if err != nil {
		return nil, config.Table{}, err
	}
	return compiler.Compile(entities, cfg), cfg, nil
}

func compileCommand() *cli.Command {
	return &cli.Command{
		Name:  "compile",
		Usage: "Compile the models and print a schema summary",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			res, cfg, err := load(cmd)
			if err != nil {
				return err
			}
			printSummary(res, cfg)
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Compile the models and fail on key conflicts (CI gate)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "also fail when access patterns are missing an index",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			res, cfg, err := load(cmd)
			if err != nil {
				return err
			}
			printSummary(res, cfg)

			if len(res.Conflicts) > 0 {
				return fmt.Errorf("schema has %d key conflict(s)", len(res.Conflicts))
			}
			if cmd.Bool("strict") && len(res.Missing) > 0 {
				return fmt.Errorf("schema has %d missing access pattern(s)", len(res.Missing))
			}
			return nil
		},
	}
}

func printSummary(res *compiler.Result, cfg config.Table) {
	fmt.Printf("Table %s: %d entities, %d GSIs (%d sparse), %d LSIs, %d access patterns\n",
		cfg.TableName, res.Registry.Len(), len(res.AllGlobalIndexes()), len(res.Sparse),
		len(res.LSIs), len(res.Patterns))

	for _, c := range res.Conflicts {
		fmt.Printf("CONFLICT: %s\n", c)
	}
	for _, m := range res.Missing {
		fmt.Printf("missing: %s\n", m)
	}
	for _, s := range res.Suggestions {
		fmt.Printf("suggestion: %s\n", s)
	}
	for _, w := range res.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}
