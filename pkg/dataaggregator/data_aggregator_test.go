package dataaggregator

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/bartebuss/pkg/ctdf"
)

func payload(stopID string, body string) StopPayload {
	return StopPayload{StopID: stopID, Body: []byte(body)}
}

func lines(departureBoard []*ctdf.DepartureBoard) []string {
	var result []string
	for _, departure := range departureBoard {
		result = append(result, departure.Line+"@"+departure.DisplayText)
	}
	return result
}

func TestAggregate(t *testing.T) {
	t.Run("collects departures and stop info", func(t *testing.T) {
		aggregator := Aggregate([]StopPayload{
			payload("16011333", `{
				"name": "Gløshaugen Syd",
				"serverTime": "2024-03-05 08:01:12",
				"schedule": [
					{"line": "5", "destination": "Dragvoll", "departures": [
						{"t": "2024-03-05 08:07", "rt": null, "p": false, "nt": false},
						{"t": "2024-03-05 08:20", "rt": "2024-03-05 08:22"}
					]},
					{"line": 22, "destination": "Tiller", "departures": [
						{"t": "2024-03-06 00:15", "nt": true}
					]}
				]
			}`),
		})

		assert.Equal(t, []string{"5@(08:07)", "5@(08:20) 08:22", "22@(00:15)"}, lines(aggregator.DepartureBoard))
		assert.False(t, aggregator.DepartureBoard[2].IsToday)
		assert.Equal(t, "16011333", aggregator.DepartureBoard[0].StopRef)
		assert.Equal(t, "Dragvoll", aggregator.DepartureBoard[0].DestinationDisplay)

		summary := aggregator.StopInfo.Summary()
		assert.Equal(t, "Gløshaugen Syd", summary.StopName)
		label, ok := summary.UpdatedLabel()
		assert.True(t, ok)
		assert.Equal(t, "08:01", label)
	})

	t.Run("first payload wins the stop info", func(t *testing.T) {
		aggregator := Aggregate([]StopPayload{
			payload("a", `{"name": "First", "schedule": []}`),
			payload("b", `{"name": "Second", "serverTime": "2024-03-05 10:00", "schedule": []}`),
			payload("c", `{"name": "Third", "serverTime": "2024-03-05 11:00", "schedule": []}`),
		})

		name, _ := aggregator.StopInfo.Name.Get()
		assert.Equal(t, "First", name)
		source, _ := aggregator.StopInfo.Name.Source()
		assert.Equal(t, "a", source)

		updated, _ := aggregator.StopInfo.Updated.Get()
		assert.Equal(t, 10, updated.Hour)
		source, _ = aggregator.StopInfo.Updated.Source()
		assert.Equal(t, "b", source)
	})

	t.Run("stop info follows the payload order", func(t *testing.T) {
		forward := Aggregate([]StopPayload{payload("a", `{"name": "A", "schedule": []}`), payload("b", `{"name": "B", "schedule": []}`)})
		backward := Aggregate([]StopPayload{payload("b", `{"name": "B", "schedule": []}`), payload("a", `{"name": "A", "schedule": []}`)})

		assert.Equal(t, "A", forward.StopInfo.Summary().StopName)
		assert.Equal(t, "B", backward.StopInfo.Summary().StopName)
	})

	t.Run("payloads without a schedule are skipped entirely", func(t *testing.T) {
		aggregator := Aggregate([]StopPayload{
			payload("a", `{"name": "No schedule", "serverTime": "2024-03-05 10:00"}`),
			payload("b", `{"name": "Null schedule", "schedule": null}`),
			payload("c", `[1, 2, 3]`),
			payload("d", `"not an object"`),
			payload("e", `not json`),
			payload("f", ``),
			{StopID: "g"},
			payload("h", `{"name": "Good", "schedule": []}`),
		})

		assert.Empty(t, aggregator.DepartureBoard)
		assert.Equal(t, "Good", aggregator.StopInfo.Summary().StopName)
		assert.False(t, aggregator.StopInfo.Updated.IsSet())
	})

	t.Run("payload keys are case sensitive", func(t *testing.T) {
		aggregator := Aggregate([]StopPayload{
			payload("a", `{"Name": "Wrong", "ServerTime": "2024-03-05 10:00", "SCHEDULE": [
				{"line": "5", "destination": "Dragvoll", "departures": [{"t": "2024-03-05 08:07"}]}
			]}`),
			payload("b", `{"name": "Right", "NAME": "Wrong", "Name": "Wrong", "schedule": []}`),
		})

		assert.Empty(t, aggregator.DepartureBoard)
		assert.False(t, aggregator.StopInfo.Updated.IsSet())
		assert.Equal(t, "Right", aggregator.StopInfo.Summary().StopName)
		source, _ := aggregator.StopInfo.Name.Source()
		assert.Equal(t, "b", source)
	})

	t.Run("schedule entries without data contribute nothing", func(t *testing.T) {
		aggregator := Aggregate([]StopPayload{
			payload("a", `{"schedule": [
				"not an object",
				{"destination": "Dragvoll", "departures": [{"t": "2024-03-05 08:07"}]},
				{"line": "5", "departures": [{"t": "2024-03-05 08:07"}]},
				{"line": "5", "destination": "Dragvoll"},
				{"line": "5", "destination": "Dragvoll", "departures": []},
				{"line": "5", "destination": "Dragvoll", "departures": null},
				{"line": "6", "destination": "Lade", "departures": [{"t": "2024-03-05 09:00"}]}
			]}`),
		})

		assert.Equal(t, []string{"6@(09:00)"}, lines(aggregator.DepartureBoard))
		assert.Zero(t, aggregator.Dropped)
		assert.Equal(t, ctdf.UnknownStopName, aggregator.StopInfo.Summary().StopName)
	})

	t.Run("passed departures are left out", func(t *testing.T) {
		aggregator := Aggregate([]StopPayload{
			payload("a", `{"schedule": [{"line": "5", "destination": "Dragvoll", "departures": [
				{"t": "2024-03-05 08:00", "p": true},
				{"t": "2024-03-05 08:10", "p": false},
				{"t": "2024-03-05 08:20", "p": "true"}
			]}]}`),
		})

		assert.Equal(t, []string{"5@(08:10)", "5@(08:20)"}, lines(aggregator.DepartureBoard))
	})

	t.Run("a malformed departure is dropped on its own", func(t *testing.T) {
		var departures []string
		for i := 0; i < 9; i++ {
			departures = append(departures, fmt.Sprintf(`{"t": "2024-03-05 08:%02d"}`, i))
		}
		departures = append(departures[:4], append([]string{`{"t": "05.03.2024 08:30"}`}, departures[4:]...)...)

		aggregator := Aggregate([]StopPayload{
			payload("a", `{"schedule": [{"line": "5", "destination": "Dragvoll", "departures": [`+strings.Join(departures, ",")+`]}]}`),
		})

		assert.Len(t, aggregator.DepartureBoard, 9)
		assert.Equal(t, 1, aggregator.Dropped)
	})

	t.Run("unusable timestamps are dropped", func(t *testing.T) {
		aggregator := Aggregate([]StopPayload{
			payload("a", `{"schedule": [{"line": "5", "destination": "Dragvoll", "departures": [
				{},
				{"t": 1709626020},
				{"t": "2024-03-05 08:07", "rt": 12},
				{"t": "2024-03-05 08:07", "rt": "soon"},
				{"t": "2024-03-05 08:07", "rt": "2024-03-05 08:09:30"}
			]}]}`),
		})

		assert.Equal(t, []string{"5@(08:07) 08:09"}, lines(aggregator.DepartureBoard))
		assert.Equal(t, 4, aggregator.Dropped)
	})

	t.Run("a malformed server time leaves it for the next stop", func(t *testing.T) {
		aggregator := Aggregate([]StopPayload{
			payload("a", `{"serverTime": "yesterday", "schedule": []}`),
			payload("b", `{"serverTime": "2024-03-05 12:34", "schedule": []}`),
		})

		label, ok := aggregator.StopInfo.Summary().UpdatedLabel()
		assert.True(t, ok)
		assert.Equal(t, "12:34", label)
	})

	t.Run("empty batch", func(t *testing.T) {
		aggregator := Aggregate(nil)

		assert.Empty(t, aggregator.DepartureBoard)
		assert.Empty(t, ctdf.RankDepartureBoard(aggregator.DepartureBoard))
	})
}

type fakeSource struct {
	payloads map[string]string
	calls    []string
}

func (f *fakeSource) GetName() string {
	return "fake"
}

func (f *fakeSource) Fetch(ctx context.Context, stopID string) ([]byte, error) {
	f.calls = append(f.calls, stopID)

	body, ok := f.payloads[stopID]
	if !ok {
		return nil, errors.Errorf("no payload for %s", stopID)
	}

	return []byte(body), nil
}

func TestFetchPayloads(t *testing.T) {
	source := &fakeSource{
		payloads: map[string]string{
			"b": `{"name": "B", "schedule": []}`,
			"c": `{"name": "C", "schedule": []}`,
		},
	}

	payloads := FetchPayloads(context.Background(), source, []string{"c", "a", "b"})

	assert.Equal(t, []string{"c", "a", "b"}, source.calls)
	require.Len(t, payloads, 3)
	assert.Equal(t, "c", payloads[0].StopID)
	assert.Nil(t, payloads[1].Body)
	assert.Equal(t, "C", Aggregate(payloads).StopInfo.Summary().StopName)
}
