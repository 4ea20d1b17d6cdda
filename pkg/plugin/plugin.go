package plugin

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bartebuss/pkg/bitbar"
	"github.com/travigo/bartebuss/pkg/config"
	"github.com/travigo/bartebuss/pkg/ctdf"
	"github.com/travigo/bartebuss/pkg/dataaggregator"
	"github.com/travigo/bartebuss/pkg/network"
	"github.com/travigo/bartebuss/pkg/util"
)

type NetworkDetector interface {
	CurrentNetwork(ctx context.Context) string
}

type Plugin struct {
	Config   *config.Config
	Source   dataaggregator.DataSource
	Detector NetworkDetector
}

// Result is one pass over the configured stops
type Result struct {
	Network string
	StopIDs []string

	StopInfo ctdf.StopInfo
	Dropped  int

	// Every departure in order, before truncation
	DepartureBoard []*ctdf.DepartureBoard
}

func New(config *config.Config) *Plugin {
	return &Plugin{
		Config:   config,
		Source:   config.Source(),
		Detector: network.NewDetector(),
	}
}

// StopIDs works out which stops to query. Explicit stops win over the network
// mapping, and a forced network wins over detection.
func (p *Plugin) StopIDs(ctx context.Context, explicitStopIDs []string) (string, []string) {
	if stopIDs := util.RemoveDuplicateStrings(explicitStopIDs); len(stopIDs) > 0 {
		return "", stopIDs
	}

	currentNetwork := p.Config.Network
	if currentNetwork == "" && p.Detector != nil {
		currentNetwork = p.Detector.CurrentNetwork(ctx)
	}
	if currentNetwork == "" {
		currentNetwork = network.UnknownNetwork
	}

	stopIDs, err := network.Resolve(p.Config.Networks, currentNetwork)
	if errors.Is(err, network.ErrUnknownNetwork) {
		log.Info().Str("network", currentNetwork).Msg("No stops configured for network")
		return currentNetwork, nil
	}

	return currentNetwork, stopIDs
}

// Run fetches every stop in order, then aggregates and ranks the departures
func (p *Plugin) Run(ctx context.Context, explicitStopIDs []string) (*Result, error) {
	filter, err := p.Config.DepartureFilter()
	if err != nil {
		return nil, err
	}

	currentNetwork, stopIDs := p.StopIDs(ctx, explicitStopIDs)

	result := &Result{
		Network: currentNetwork,
		StopIDs: stopIDs,
	}

	if len(stopIDs) == 0 {
		return result, nil
	}

	payloads := dataaggregator.FetchPayloads(ctx, p.Source, stopIDs)
	aggregator := dataaggregator.Aggregate(payloads)

	departureBoard := aggregator.DepartureBoard
	if filter != nil {
		filter.Apply(&departureBoard)
	}

	result.StopInfo = aggregator.StopInfo
	result.Dropped = aggregator.Dropped
	result.DepartureBoard = ctdf.RankDepartureBoard(departureBoard)

	log.Debug().
		Str("network", currentNetwork).
		Strs("stops", stopIDs).
		Int("departures", len(result.DepartureBoard)).
		Int("dropped", result.Dropped).
		Msg("Collected departures")

	return result, nil
}

// Board cuts the ranked departures down to maxDepartures for rendering
func (r *Result) Board(maxDepartures int) (bitbar.Board, error) {
	lines, err := ctdf.NewDepartureLines(ctdf.TruncateDepartureBoard(r.DepartureBoard, maxDepartures))
	if err != nil {
		return bitbar.Board{}, err
	}

	return bitbar.Board{
		Network:    r.Network,
		Stop:       r.StopInfo.Summary(),
		Departures: lines,
	}, nil
}
