package main

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/urfave/cli/v3"

	"github.com/okvist/tablesmith/provision"
)

func provisionCommand() *cli.Command {
	return &cli.Command{
		Name:  "provision",
		Usage: "Materialize the schema as a CreateTable request",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "apply",
				Usage: "create the table via the AWS SDK instead of printing the request",
			},
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "override the DynamoDB endpoint (e.g. a local instance)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			res, cfg, err := load(cmd)
			if err != nil {
				return err
			}

			if !cmd.Bool("apply") {
				input := provision.BuildCreateTableInput(res, cfg)
				out, err := json.MarshalIndent(input, "", "  ")
				if err != nil {
					return fmt.Errorf("encode create-table request: %w", err)
				}
				fmt.Println(string(out))
				if ttl := provision.BuildTTLInput(res, cfg); ttl != nil {
					fmt.Printf("ttl: attribute %s enabled\n", cfg.TTLAttribute)
				}
				return nil
			}

			awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
			if err != nil {
				return fmt.Errorf("load aws config: %w", err)
			}
			client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
				if endpoint := cmd.String("endpoint"); endpoint != "" {
					o.BaseEndpoint = &endpoint
				}
			})

			if err := provision.Apply(ctx, client, res, cfg); err != nil {
				return err
			}
			fmt.Printf("created table %s\n", cfg.TableName)
			return nil
		},
	}
}
