package crmclient

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/crmhook-io/crmhook/pkg/crmhook"
)

// fileConfig is the YAML shape of a client configuration file.
type fileConfig struct {
	WebhookURL        string  `yaml:"webhook_url"`
	BatchSize         int     `yaml:"batch_size"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	HTTPTimeout       string  `yaml:"http_timeout"`
	RetryMax          int     `yaml:"retry_max"`
	RetryWaitMin      string  `yaml:"retry_wait_min"`
	RetryWaitMax      string  `yaml:"retry_wait_max"`
	Debug             bool    `yaml:"debug"`
	UserAgent         string  `yaml:"user_agent"`
}

// LoadConfig reads a client configuration from a YAML file. Duration fields
// use Go duration syntax ("30s", "1m"). The returned config still goes
// through New for normalization and defaults.
func LoadConfig(path string) (*crmhook.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var raw fileConfig

	err = yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config := &crmhook.Config{
		WebhookURL:        raw.WebhookURL,
		BatchSize:         raw.BatchSize,
		RequestsPerSecond: raw.RequestsPerSecond,
		RetryMax:          raw.RetryMax,
		Debug:             raw.Debug,
		UserAgent:         raw.UserAgent,
	}

	config.HTTPTimeout, err = parseDuration("http_timeout", raw.HTTPTimeout)
	if err != nil {
		return nil, err
	}

	config.RetryWaitMin, err = parseDuration("retry_wait_min", raw.RetryWaitMin)
	if err != nil {
		return nil, err
	}

	config.RetryWaitMax, err = parseDuration("retry_wait_max", raw.RetryWaitMax)
	if err != nil {
		return nil, err
	}

	return config, nil
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", field, err)
	}

	return parsed, nil
}
