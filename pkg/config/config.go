package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/travigo/bartebuss/pkg/dataaggregator"
	"github.com/travigo/bartebuss/pkg/dataaggregator/source"
	"github.com/travigo/bartebuss/pkg/util"
	"gopkg.in/yaml.v3"
)

const EnvironmentPrefix = "BARTEBUSS_"

const defaultConfigFile = ".bartebuss.yaml"
const defaultMaxDepartures = 5
const defaultTimeout = 10 * time.Second

var ErrInvalidConfig = errors.New("invalid config")

type API struct {
	BaseURL   string        `yaml:"base-url"`
	UserAgent string        `yaml:"user-agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

type Labels struct {
	Title          string `yaml:"title"`
	DeparturesFrom string `yaml:"departures-from"`
	Updated        string `yaml:"updated"`
	UnknownStop    string `yaml:"unknown-stop"`
	TodayColour    string `yaml:"today-colour"`
}

type Config struct {
	API           API                 `yaml:"api"`
	MaxDepartures int                 `yaml:"max-departures"`
	Networks      map[string][]string `yaml:"networks"`
	Filter        string              `yaml:"filter"`
	Labels        Labels              `yaml:"labels"`

	// Forces the network instead of detecting it
	Network string `yaml:"-"`
}

func Default() *Config {
	return &Config{
		API: API{
			BaseURL:   source.DefaultBaseURL,
			UserAgent: source.DefaultUserAgent,
			Timeout:   defaultTimeout,
		},
		MaxDepartures: defaultMaxDepartures,
		Networks: map[string][]string{
			"eduroam": {"16011333"},
		},
		Labels: Labels{
			Title:          "Buss",
			DeparturesFrom: "Avgang fra",
			Updated:        "Oppdatert",
			UnknownStop:    "Ukjent",
			TodayColour:    "black",
		},
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultConfigFile
	}

	return filepath.Join(home, defaultConfigFile)
}

// Load builds the config from the defaults, the YAML file at path and then
// the environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Debug().Err(err).Msg("Failed to load .env")
	}

	config := Default()

	if path == "" {
		path = util.GetEnvironmentVariables(EnvironmentPrefix)["CONFIG"]
	}
	if path == "" {
		path = DefaultPath()
	}

	if err := config.ReadFile(path); err != nil {
		return nil, err
	}

	if err := config.ApplyEnvironment(util.GetEnvironmentVariables(EnvironmentPrefix)); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) ReadFile(path string) error {
	configYaml, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Debug().Str("path", path).Msg("No config file")
		return nil
	} else if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	return c.Parse(configYaml)
}

// Parse overlays the YAML document on top of the current values. A networks
// section replaces the default mapping as a whole.
func (c *Config) Parse(configYaml []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(configYaml))
	decoder.KnownFields(true)

	existingNetworks := c.Networks
	c.Networks = nil

	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		c.Networks = existingNetworks
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}

	if c.Networks == nil {
		c.Networks = existingNetworks
	}

	return nil
}

func (c *Config) ApplyEnvironment(env map[string]string) error {
	if env["API_URL"] != "" {
		c.API.BaseURL = env["API_URL"]
	}

	if env["NETWORK"] != "" {
		c.Network = env["NETWORK"]
	}

	if env["MAX_DEPARTURES"] != "" {
		n, err := strconv.Atoi(env["MAX_DEPARTURES"])
		if err != nil {
			return errors.Wrapf(ErrInvalidConfig, "%sMAX_DEPARTURES %q", EnvironmentPrefix, env["MAX_DEPARTURES"])
		}
		c.MaxDepartures = n
	}

	return nil
}

func (c *Config) Validate() error {
	if c.MaxDepartures < 0 {
		return errors.Wrapf(ErrInvalidConfig, "max-departures must be 0 or more, got %d", c.MaxDepartures)
	}

	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.Wrap(ErrInvalidConfig, "api base-url is empty")
	}

	if _, err := c.DepartureFilter(); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "filter: %s", err)
	}

	return nil
}

// DepartureFilter is nil when no filter is configured
func (c *Config) DepartureFilter() (*dataaggregator.Filter, error) {
	if strings.TrimSpace(c.Filter) == "" {
		return nil, nil
	}

	return dataaggregator.NewFilter(c.Filter)
}

func (c *Config) Source() *source.BartebussSource {
	return source.NewBartebussSource(c.API.BaseURL, c.API.UserAgent, c.API.Timeout)
}
