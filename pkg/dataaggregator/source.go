package dataaggregator

import (
	"context"
)

// DataSource returns the raw schedule payload for one stop identifier
type DataSource interface {
	GetName() string
	Fetch(ctx context.Context, stopID string) ([]byte, error)
}
