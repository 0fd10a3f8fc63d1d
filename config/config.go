/*
Copyright 2025 The QueryComplete Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads the tool's YAML configuration and backend
// credentials. Credentials never live in the file itself; the file
// names the environment variables that hold them.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v2"
)

const (
	defaultAddress      = "https://api.observeql.io"
	defaultAPIKeyEnv    = "QC_API_KEY"
	defaultAppKeyEnv    = "QC_APP_KEY"
	defaultTTL          = 30 * time.Second
	defaultCeiling      = 5
	defaultFetchTimeout = 2 * time.Second
	defaultDebounce     = 400 * time.Millisecond
)

// Duration is a time.Duration that round-trips through YAML in Go
// syntax ("30s", "400ms").
type Duration time.Duration

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.Wrapf(err, "config: bad duration %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the on-disk shape. Durations use Go syntax ("30s").
type Config struct {
	Site    string `yaml:"site,omitempty"`
	Address string `yaml:"address,omitempty"`

	APIKeyEnv string `yaml:"apiKeyEnv,omitempty"`
	AppKeyEnv string `yaml:"appKeyEnv,omitempty"`

	Grammar string `yaml:"grammar,omitempty"`

	CacheTTL     Duration `yaml:"cacheTTL,omitempty"`
	FetchCeiling int64    `yaml:"fetchCeiling,omitempty"`
	FetchTimeout Duration `yaml:"fetchTimeout,omitempty"`
	Debounce     Duration `yaml:"debounce,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Address:      defaultAddress,
		APIKeyEnv:    defaultAPIKeyEnv,
		AppKeyEnv:    defaultAppKeyEnv,
		Grammar:      "metrics",
		CacheTTL:     Duration(defaultTTL),
		FetchCeiling: defaultCeiling,
		FetchTimeout: Duration(defaultFetchTimeout),
		Debounce:     Duration(defaultDebounce),
	}
}

// Load reads path and overlays it on the defaults. An empty path
// returns the defaults untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: reading %s", path)
	}
	if err := yaml.UnmarshalStrict(raw, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parsing %s", path)
	}
	if cfg.Site != "" && cfg.Address == defaultAddress {
		cfg.Address = "https://api." + cfg.Site
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Grammar {
	case "metrics", "logs":
	default:
		return errors.Newf("config: unknown grammar %q (want metrics or logs)", c.Grammar)
	}
	if c.CacheTTL < 0 || c.FetchTimeout < 0 || c.Debounce < 0 {
		return errors.New("config: durations must not be negative")
	}
	if c.FetchCeiling < 0 {
		return errors.New("config: fetchCeiling must not be negative")
	}
	return nil
}

// Credentials resolves the API and application keys from the
// environment variables the config names.
func (c Config) Credentials() (apiKey, appKey string, err error) {
	apiKey = os.Getenv(c.APIKeyEnv)
	appKey = os.Getenv(c.AppKeyEnv)
	if apiKey == "" {
		return "", "", errors.Newf("config: %s is not set", c.APIKeyEnv)
	}
	if appKey == "" {
		return "", "", errors.Newf("config: %s is not set", c.AppKeyEnv)
	}
	return apiKey, appKey, nil
}
