package plugin

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bartebuss/pkg/bitbar"
	"github.com/travigo/bartebuss/pkg/config"
	"github.com/travigo/bartebuss/pkg/network"
	"github.com/urfave/cli/v2"
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML config file (defaults to $BARTEBUSS_CONFIG or ~/.bartebuss.yaml)",
		},
		&cli.StringFlag{
			Name:  "network",
			Usage: "use this network name instead of detecting it",
		},
		&cli.StringSliceFlag{
			Name:  "stop",
			Usage: "query this stop ID directly, can be repeated",
		},
		&cli.IntFlag{
			Name:  "max-departures",
			Usage: "number of departures to show",
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	pluginConfig, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("network") {
		pluginConfig.Network = c.String("network")
	}

	if c.IsSet("max-departures") {
		pluginConfig.MaxDepartures = c.Int("max-departures")
	}

	if err := pluginConfig.Validate(); err != nil {
		return nil, err
	}

	return pluginConfig, nil
}

func RegisterCLI() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "run",
			Usage: "print the next departures for the current network as BitBar output",
			Flags: append(commonFlags(), &cli.StringFlag{
				Name:  "format",
				Usage: "output format: bitbar, json or json-detailed",
				Value: "bitbar",
			}),
			Action: func(c *cli.Context) error {
				pluginConfig, err := loadConfig(c)
				if err != nil {
					return err
				}

				result, err := New(pluginConfig).Run(c.Context, c.StringSlice("stop"))
				if err != nil {
					return err
				}

				board, err := result.Board(pluginConfig.MaxDepartures)
				if err != nil {
					return err
				}

				switch c.String("format") {
				case "bitbar":
					formatter := bitbar.Formatter{Labels: pluginConfig.Labels}
					return formatter.Write(os.Stdout, board)
				case "json":
					return bitbar.WriteJSON(os.Stdout, board, "basic")
				case "json-detailed":
					return bitbar.WriteJSON(os.Stdout, board, "detailed")
				default:
					return fmt.Errorf("unknown format %q", c.String("format"))
				}
			},
		},
		{
			Name:  "inspect",
			Usage: "dump every parsed departure in ranked order",
			Flags: commonFlags(),
			Action: func(c *cli.Context) error {
				pluginConfig, err := loadConfig(c)
				if err != nil {
					return err
				}

				result, err := New(pluginConfig).Run(c.Context, c.StringSlice("stop"))
				if err != nil {
					return err
				}

				log.Info().
					Str("network", result.Network).
					Strs("stops", result.StopIDs).
					Int("dropped", result.Dropped).
					Msg("Inspecting departures")

				pretty.Println(result.StopInfo.Summary())
				for _, departure := range result.DepartureBoard {
					pretty.Println(departure)
				}

				return nil
			},
		},
		{
			Name:  "networks",
			Usage: "list the configured networks and the one currently detected",
			Flags: commonFlags(),
			Action: func(c *cli.Context) error {
				pluginConfig, err := loadConfig(c)
				if err != nil {
					return err
				}

				var names []string
				for name := range pluginConfig.Networks {
					names = append(names, name)
				}
				sort.Strings(names)

				for _, name := range names {
					fmt.Printf("%s: %s\n", name, strings.Join(pluginConfig.Networks[name], ", "))
				}

				currentNetwork := pluginConfig.Network
				if currentNetwork == "" {
					currentNetwork = network.NewDetector().CurrentNetwork(c.Context)
				}
				fmt.Printf("current: %s\n", currentNetwork)

				return nil
			},
		},
	}
}
