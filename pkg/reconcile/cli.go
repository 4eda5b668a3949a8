package reconcile

import (
	"errors"
	"fmt"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/transitrecon/pkg/config"
	"github.com/urfave/cli/v2"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "Path to the yaml config",
	EnvVars: []string{"TRANSITRECON_CONFIG"},
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("timeout") {
		cfg.Timeout = c.String("timeout")
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func runFromContext(c *cli.Context) (*Result, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	return Run(c.Context, cfg)
}

func queryCommand(name string, usage string, flags []cli.Flag, action func(*cli.Context, *Result) error) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: append([]cli.Flag{configFlag}, flags...),
		Action: func(c *cli.Context) error {
			result, err := runFromContext(c)
			if err != nil {
				return err
			}

			return action(c, result)
		},
	}
}

func printList(items []string) {
	for _, item := range items {
		fmt.Println(item)
	}
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "Reconcile simulator routes and stops with road geometries",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the pipeline and write the configured outputs",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:     "repeat-every",
						Usage:    "Repeat the run every X (Go duration, e.g. 10m)",
						Required: false,
					},
					&cli.StringFlag{
						Name:  "timeout",
						Usage: "ISO 8601 duration limiting a single run, e.g. PT5M",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}

					repeatEvery := c.String("repeat-every")
					repeat := repeatEvery != ""
					var repeatDuration time.Duration
					if repeat {
						repeatDuration, err = time.ParseDuration(repeatEvery)

						if err != nil {
							return err
						}
					}

					for {
						startTime := time.Now()

						result, err := Run(c.Context, cfg)
						if err != nil {
							return err
						}

						if _, err := result.Write(cfg.Output); err != nil {
							return err
						}

						if !repeat {
							break
						}

						executionDuration := time.Since(startTime)
						log.Info().Msgf("Operation took %s", executionDuration.String())

						waitTime := repeatDuration - executionDuration

						if waitTime.Seconds() > 0 {
							select {
							case <-c.Context.Done():
								return c.Context.Err()
							case <-time.After(waitTime):
							}
						}
					}

					return nil
				},
			},
			queryCommand("zone-lines", "List the lines crossing a zone",
				[]cli.Flag{&cli.StringFlag{Name: "zone", Required: true}},
				func(c *cli.Context, result *Result) error {
					printList(result.ZoneLines(c.String("zone")))
					return nil
				},
			),
			queryCommand("zone-of", "Show the zone a segment lies in",
				[]cli.Flag{&cli.StringFlag{Name: "id", Usage: "Segment or edge identifier", Required: true}},
				func(c *cli.Context, result *Result) error {
					zone, found, err := result.ZoneOfSegment(c.String("id"))
					if err != nil {
						return err
					}
					if !found {
						fmt.Println("no zone")
						return nil
					}

					fmt.Println(zone.Name)
					return nil
				},
			),
			queryCommand("zones-with-lines", "List the zones crossed by at least one line", nil,
				func(c *cli.Context, result *Result) error {
					printList(result.ZonesWithLines())
					return nil
				},
			),
			queryCommand("count-lines", "Count the distinct lines per zone", nil,
				func(c *cli.Context, result *Result) error {
					for _, count := range result.CountLines() {
						fmt.Printf("%s\t%d\n", count.Zone, count.Lines)
					}
					return nil
				},
			),
			queryCommand("segment-metrics", "Show the metrics of the lines running over a segment",
				[]cli.Flag{&cli.StringFlag{Name: "id", Usage: "Segment or edge identifier", Required: true}},
				func(c *cli.Context, result *Result) error {
					lineMetrics, err := result.SegmentMetrics(c.String("id"))
					if err != nil {
						return err
					}

					for _, metric := range lineMetrics {
						fmt.Printf("%s\t%.3f km\t%.1f min\n", metric.LineLabel, metric.LengthKM, metric.DurationMinutes)
					}
					return nil
				},
			),
			queryCommand("stops-near", "List the stops near a route",
				[]cli.Flag{&cli.StringFlag{Name: "route", Required: true}},
				func(c *cli.Context, result *Result) error {
					stops, err := result.StopsNearRoute(c.String("route"))
					if err != nil {
						return err
					}

					for _, stop := range stops {
						fmt.Printf("%s\t%s\n", stop.ID, stop.Name)
					}
					return nil
				},
			),
			queryCommand("inspect", "Dump a reconciled route or stop",
				[]cli.Flag{
					&cli.StringFlag{Name: "route"},
					&cli.StringFlag{Name: "stop"},
					&cli.BoolFlag{Name: "diagnostics", Usage: "Dump every diagnostic of the run"},
				},
				func(c *cli.Context, result *Result) error {
					switch {
					case c.String("route") != "":
						route, err := result.Route(c.String("route"))
						if err != nil {
							return err
						}
						pretty.Println(route)
					case c.String("stop") != "":
						stop, found := result.Stops.Get(c.String("stop"))
						if !found {
							return fmt.Errorf("stop %s could not be found", c.String("stop"))
						}
						pretty.Println(stop)
					case c.Bool("diagnostics"):
						for _, diagnostic := range result.Diagnostics {
							fmt.Println(diagnostic.String())
						}
					default:
						return errors.New("one of --route, --stop or --diagnostics is required")
					}

					return nil
				},
			),
		},
	}
}
