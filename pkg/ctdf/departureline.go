package ctdf

import (
	"fmt"

	"github.com/jinzhu/copier"
)

// DepartureLine is the reduced view of a departure handed to renderers
type DepartureLine struct {
	Line               string `json:"line" groups:"basic,detailed"`
	DestinationDisplay string `json:"destination" groups:"basic,detailed"`
	DisplayText        string `json:"displayText" groups:"basic,detailed"`
	IsToday            bool   `json:"isToday" groups:"basic,detailed"`
}

func NewDepartureLines(departureBoard []*DepartureBoard) ([]DepartureLine, error) {
	lines := make([]DepartureLine, 0, len(departureBoard))

	for _, departure := range departureBoard {
		var line DepartureLine
		if err := copier.Copy(&line, departure); err != nil {
			return nil, err
		}

		lines = append(lines, line)
	}

	return lines, nil
}

func (l DepartureLine) String() string {
	return fmt.Sprintf("%s %s: %s", l.Line, l.DestinationDisplay, l.DisplayText)
}
