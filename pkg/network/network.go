package network

import (
	"context"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bartebuss/pkg/util"
)

const UnknownNetwork = "unknown"

const airportCommand = "/System/Library/PrivateFrameworks/Apple80211.framework/Versions/Current/Resources/airport"

var ErrUnknownNetwork = errors.New("network has no configured stops")

type CommandRunner func(ctx context.Context, name string, args ...string) (string, error)

func execRunner(ctx context.Context, name string, args ...string) (string, error) {
	output, err := exec.CommandContext(ctx, name, args...).Output()

	return string(output), err
}

type lookup struct {
	name  string
	args  []string
	parse func(output string) string
}

// Detector finds the name of the wireless network the machine is on
type Detector struct {
	Run  CommandRunner
	GOOS string
}

func NewDetector() *Detector {
	return &Detector{
		Run:  execRunner,
		GOOS: runtime.GOOS,
	}
}

func (d *Detector) lookups() []lookup {
	switch d.GOOS {
	case "darwin":
		return []lookup{
			{name: airportCommand, args: []string{"-I"}, parse: parseAirport},
			{name: "networksetup", args: []string{"-getairportnetwork", "en0"}, parse: parseNetworkSetup},
		}
	case "linux":
		return []lookup{
			{name: "iwgetid", args: []string{"-r"}, parse: strings.TrimSpace},
			{name: "nmcli", args: []string{"-t", "-f", "active,ssid", "dev", "wifi"}, parse: parseNmcli},
		}
	default:
		return nil
	}
}

// CurrentNetwork returns UnknownNetwork when no lookup produced a name
func (d *Detector) CurrentNetwork(ctx context.Context) string {
	for _, lookup := range d.lookups() {
		output, err := d.Run(ctx, lookup.name, lookup.args...)
		if err != nil {
			log.Debug().Err(err).Str("command", lookup.name).Msg("Network lookup failed")
			continue
		}

		if network := lookup.parse(output); network != "" {
			log.Debug().Str("network", network).Str("command", lookup.name).Msg("Detected network")
			return network
		}
	}

	return UnknownNetwork
}

func parseAirport(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if value, found := strings.CutPrefix(strings.TrimSpace(line), "SSID:"); found {
			return strings.TrimSpace(value)
		}
	}

	return ""
}

func parseNetworkSetup(output string) string {
	_, value, found := strings.Cut(strings.TrimSpace(output), "Network: ")
	if !found {
		return ""
	}

	return strings.TrimSpace(value)
}

func parseNmcli(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if value, found := strings.CutPrefix(strings.TrimSpace(line), "yes:"); found {
			return value
		}
	}

	return ""
}

// Resolve maps a network name to the stops configured for it
func Resolve(networks map[string][]string, network string) ([]string, error) {
	stopIDs, ok := networks[network]
	if !ok || len(stopIDs) == 0 {
		return nil, errors.Wrapf(ErrUnknownNetwork, "%q", network)
	}

	return util.RemoveDuplicateStrings(stopIDs), nil
}
