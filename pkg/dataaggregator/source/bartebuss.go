package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultBaseURL = "http://bartebuss.no/api/unified/"
const DefaultUserAgent = "bartebuss-statusbar"

// BartebussSource fetches the unified stop schedule from the Bartebuss API
type BartebussSource struct {
	BaseURL   string
	UserAgent string

	Client *http.Client
}

func NewBartebussSource(baseURL string, userAgent string, timeout time.Duration) *BartebussSource {
	return &BartebussSource{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (b *BartebussSource) GetName() string {
	return "Bartebuss API"
}

func (b *BartebussSource) stopURL(stopID string) string {
	baseURL := b.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return baseURL + url.PathEscape(stopID)
}

func (b *BartebussSource) Fetch(ctx context.Context, stopID string) ([]byte, error) {
	source := b.stopURL(stopID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "stop %s", stopID)
	}

	userAgent := b.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	currentTime := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "stop %s", stopID)
	}
	defer resp.Body.Close()

	log.Debug().Str("url", source).Int("status", resp.StatusCode).Str("Length", time.Since(currentTime).String()).Msg("Fetched stop schedule")

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("stop %s: %s returned HTTP %d", stopID, source, resp.StatusCode)
	}

	byteValue, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "stop %s", stopID)
	}

	return byteValue, nil
}

func (b *BartebussSource) String() string {
	return fmt.Sprintf("%s (%s)", b.GetName(), strings.TrimSuffix(b.stopURL(""), "/"))
}
