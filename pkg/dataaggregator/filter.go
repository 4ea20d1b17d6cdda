package dataaggregator

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bartebuss/pkg/ctdf"
	"github.com/travigo/bartebuss/pkg/util"
)

// FilterEnvironment is what a filter expression can see of a departure
type FilterEnvironment struct {
	StopRef     string
	Line        string
	Destination string
	Realtime    bool
	NextDay     bool
	// Minutes the realtime estimate is behind the schedule, negative when early
	Delay int
}

type Filter struct {
	Expression string

	program *vm.Program
}

func NewFilter(expression string) (*Filter, error) {
	program, err := expr.Compile(expression, expr.Env(FilterEnvironment{}), expr.AsBool())
	if err != nil {
		return nil, err
	}

	return &Filter{
		Expression: expression,
		program:    program,
	}, nil
}

// Match keeps departures the expression cannot be evaluated for
func (f *Filter) Match(departure *ctdf.DepartureBoard) bool {
	environment := FilterEnvironment{
		StopRef:     departure.StopRef,
		Line:        departure.Line,
		Destination: departure.DestinationDisplay,
		Realtime:    departure.RealtimeTime != nil,
		NextDay:     departure.NextDay,
	}

	if departure.RealtimeTime != nil {
		environment.Delay = int(departure.RealtimeTime.Instant() - departure.ScheduledTime.Instant())
	}

	output, err := expr.Run(f.program, environment)
	if err != nil {
		log.Warn().Err(err).Str("filter", f.Expression).Str("line", departure.Line).Msg("Failed to evaluate filter")
		return true
	}

	return output.(bool)
}

func (f *Filter) Apply(departureBoard *[]*ctdf.DepartureBoard) {
	util.InPlaceFilter(departureBoard, f.Match)
}
