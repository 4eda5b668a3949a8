package linecatalog

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "lines",
		Usage: "Read the bus line catalogue",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the catalogued lines as label/value options",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "database",
						Usage:    "Path to the SQLite database",
						EnvVars:  []string{"TRANSITRECON_LINES_DATABASE"},
						Required: true,
					},
					&cli.StringFlag{
						Name:  "table",
						Value: DefaultTable,
					},
					&cli.StringFlag{
						Name:  "column",
						Value: DefaultColumn,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the options as JSON",
					},
				},
				Action: func(c *cli.Context) error {
					catalog, err := Open(c.String("database"))
					if err != nil {
						return err
					}
					defer catalog.Close()

					catalog.Table = c.String("table")
					catalog.Column = c.String("column")

					options, err := catalog.ListLines(c.Context)
					if err != nil {
						return err
					}

					log.Info().Int("lines", len(options)).Msg("Read line catalogue")

					if c.Bool("json") {
						output, err := json.MarshalIndent(options, "", "  ")
						if err != nil {
							return err
						}
						fmt.Println(string(output))
						return nil
					}

					for _, option := range options {
						fmt.Println(option.Label)
					}
					return nil
				},
			},
		},
	}
}
