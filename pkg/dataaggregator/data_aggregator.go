package dataaggregator

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bartebuss/pkg/ctdf"
)

// StopPayload is the raw response for one stop. A nil Body means the fetch
// failed or returned nothing.
type StopPayload struct {
	StopID string
	Body   []byte
}

// Aggregator collects departures and stop information across a batch of
// stop payloads. Payloads must be added in the caller's stop order, the
// stop information is taken from the first payload that supplies it.
type Aggregator struct {
	StopInfo       ctdf.StopInfo
	DepartureBoard []*ctdf.DepartureBoard

	// Departures dropped because of malformed timestamps
	Dropped int
}

// FetchPayloads fetches every stop one after the other. Failures are logged
// and produce an empty payload for that stop.
func FetchPayloads(ctx context.Context, source DataSource, stopIDs []string) []StopPayload {
	payloads := make([]StopPayload, 0, len(stopIDs))

	for _, stopID := range stopIDs {
		body, err := source.Fetch(ctx, stopID)
		if err != nil {
			log.Error().Err(err).Str("source", source.GetName()).Str("stop", stopID).Msg("Failed to fetch stop schedule")
			body = nil
		}

		payloads = append(payloads, StopPayload{
			StopID: stopID,
			Body:   body,
		})
	}

	return payloads
}

func Aggregate(payloads []StopPayload) *Aggregator {
	aggregator := &Aggregator{}

	for _, payload := range payloads {
		aggregator.AddPayload(payload)
	}

	return aggregator
}

func (a *Aggregator) AddPayload(payload StopPayload) {
	if len(bytes.TrimSpace(payload.Body)) == 0 {
		log.Debug().Str("stop", payload.StopID).Msg("Empty payload")
		return
	}

	// Keys are matched case sensitively
	var document map[string]json.RawMessage
	if err := json.Unmarshal(payload.Body, &document); err != nil || document == nil {
		log.Debug().Err(err).Str("stop", payload.StopID).Msg("Payload is not an object")
		return
	}

	var schedule []json.RawMessage
	if err := json.Unmarshal(document["schedule"], &schedule); err != nil || schedule == nil {
		log.Debug().Str("stop", payload.StopID).Msg("Payload has no schedule")
		return
	}

	if name, ok := jsonText(document["name"]); ok {
		a.StopInfo.Name.Offer(payload.StopID, name)
	}

	if serverTime, ok := jsonString(document["serverTime"]); ok && !a.StopInfo.Updated.IsSet() {
		timePoint, err := ctdf.ParseTimePoint(serverTime)
		if err != nil {
			log.Warn().Err(err).Str("stop", payload.StopID).Msg("Ignoring server time")
		} else {
			a.StopInfo.Updated.Offer(payload.StopID, timePoint)
		}
	}

	for _, entry := range schedule {
		a.addScheduleEntry(payload.StopID, entry)
	}
}

func (a *Aggregator) addScheduleEntry(stopID string, entry json.RawMessage) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
		return
	}

	lineRaw, hasLine := fields["line"]
	destinationRaw, hasDestination := fields["destination"]
	departuresRaw, hasDepartures := fields["departures"]
	if !hasLine || !hasDestination || !hasDepartures {
		log.Debug().Str("stop", stopID).Msg("Schedule entry is missing line, destination or departures")
		return
	}

	var departures []json.RawMessage
	if err := json.Unmarshal(departuresRaw, &departures); err != nil || len(departures) == 0 {
		return
	}

	line, _ := jsonText(lineRaw)
	destination, _ := jsonText(destinationRaw)

	for _, departureRaw := range departures {
		var departureFields map[string]json.RawMessage
		if err := json.Unmarshal(departureRaw, &departureFields); err != nil || departureFields == nil {
			log.Debug().Str("stop", stopID).Str("line", line).Msg("Departure is not an object")
			continue
		}

		if isTrue(departureFields["p"]) {
			continue
		}

		raw, err := newRawDeparture(departureFields)
		if err == nil {
			var departure *ctdf.DepartureBoard
			departure, err = ctdf.NewDepartureBoard(stopID, line, destination, raw)
			if err == nil {
				a.DepartureBoard = append(a.DepartureBoard, departure)
				continue
			}
		}

		a.Dropped++
		log.Warn().Err(err).Str("stop", stopID).Str("line", line).Str("destination", destination).Msg("Dropping departure")
	}
}

func newRawDeparture(fields map[string]json.RawMessage) (ctdf.RawDeparture, error) {
	scheduled, ok := jsonString(fields["t"])
	if !ok {
		return ctdf.RawDeparture{}, errors.Wrapf(ctdf.ErrMalformedTimestamp, "t=%s", fields["t"])
	}

	raw := ctdf.RawDeparture{
		Time:    scheduled,
		NextDay: isTrue(fields["nt"]),
	}

	if realtimeRaw := fields["rt"]; !isNull(realtimeRaw) {
		realtime, ok := jsonString(realtimeRaw)
		if !ok {
			return ctdf.RawDeparture{}, errors.Wrapf(ctdf.ErrMalformedTimestamp, "rt=%s", realtimeRaw)
		}
		raw.RealtimeTime = &realtime
	}

	return raw, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)

	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isTrue(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("true"))
}

func jsonString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}

	return value, true
}

// jsonText accepts strings and numbers, numbers keep their JSON spelling
func jsonText(raw json.RawMessage) (string, bool) {
	if value, ok := jsonString(raw); ok {
		return value, true
	}

	if isNull(raw) {
		return "", false
	}

	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil {
		return "", false
	}

	return number.String(), true
}
