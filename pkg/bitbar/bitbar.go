package bitbar

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/liip/sheriff"
	"github.com/travigo/bartebuss/pkg/config"
	"github.com/travigo/bartebuss/pkg/ctdf"
)

const separator = "---"

// BitBar reads a pipe as the start of the item parameters and a newline as
// the next item, so neither may appear in item text
var textReplacer = strings.NewReplacer("|", "¦", "\r\n", " ", "\n", " ", "\r", " ")

// Board is everything a renderer needs for one run
type Board struct {
	Network    string               `json:"network" groups:"detailed"`
	Stop       ctdf.StopSummary     `json:"stop" groups:"basic,detailed"`
	Departures []ctdf.DepartureLine `json:"departures" groups:"basic,detailed"`
}

type Formatter struct {
	Labels config.Labels
}

func (f *Formatter) colour(line string) string {
	line = textReplacer.Replace(line)
	if f.Labels.TodayColour == "" {
		return line
	}

	return fmt.Sprintf("%s|color=%s", line, f.Labels.TodayColour)
}

// Write renders the board as BitBar plugin output
func (f *Formatter) Write(w io.Writer, board Board) error {
	var output strings.Builder

	output.WriteString(textReplacer.Replace(f.Labels.Title) + "\n")
	output.WriteString(separator + "\n")

	stopName := board.Stop.StopName
	if !board.Stop.KnownStop {
		stopName = f.Labels.UnknownStop
	}
	output.WriteString(f.colour(f.Labels.DeparturesFrom+" "+stopName) + "\n")

	if updated, ok := board.Stop.UpdatedLabel(); ok {
		output.WriteString(f.colour(f.Labels.Updated+" "+updated) + "\n")
	}

	output.WriteString(separator + "\n")

	for _, departure := range board.Departures {
		if departure.IsToday {
			output.WriteString(f.colour(departure.String()) + "\n")
		} else {
			output.WriteString(textReplacer.Replace(departure.String()) + "\n")
		}
	}

	_, err := io.WriteString(w, output.String())
	return err
}

// WriteJSON renders the board reduced to the given sheriff groups
func WriteJSON(w io.Writer, board Board, groups ...string) error {
	if len(groups) == 0 {
		groups = []string{"basic"}
	}

	boardReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, board)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(boardReduced)
}
