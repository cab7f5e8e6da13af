/*
Copyright 2020 Gravitational, Inc.

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

// Package config defines the nodesync configuration: a YAML file
// optionally overridden by command line flags and environment variables
package config

import (
	"encoding/json"
	"io/ioutil"
	"net/url"
	"strings"
	"time"

	"github.com/gravitational/nodesync/lib/constants"
	"github.com/gravitational/nodesync/lib/defaults"
	"github.com/gravitational/nodesync/lib/utils"

	"github.com/ghodss/yaml"
	"github.com/gravitational/trace"
)

// Config is the nodesync configuration
type Config struct {
	// ChefURL is the Chef server organization URL
	ChefURL string `json:"chef_url,omitempty"`
	// ChefUser is the Chef API user
	ChefUser string `json:"chef_user,omitempty"`
	// ChefKeyPath is the path to the PEM encoded private key of ChefUser
	ChefKeyPath string `json:"chef_key,omitempty"`
	// ChefVersion is sent as X-Chef-Version
	ChefVersion string `json:"chef_version,omitempty"`
	// Insecure disables Chef server certificate verification
	Insecure bool `json:"insecure,omitempty"`
	// Region is the AWS region of the metadata table and the queue
	Region string `json:"region,omitempty"`
	// Table is the metadata table name
	Table string `json:"table,omitempty"`
	// BatchMode is one of constants.BatchModes
	BatchMode string `json:"batch_mode,omitempty"`
	// DeleteClient also removes the Chef API client of terminated instances
	DeleteClient bool `json:"delete_client,omitempty"`
	// Queue is the name or the URL of the SQS queue polled in watch mode
	Queue string `json:"queue,omitempty"`
	// HTTPTimeout bounds a single Chef server request
	HTTPTimeout Duration `json:"http_timeout,omitempty"`
}

// Duration is a time.Duration that is read from its string form, e.g. "30s"
type Duration time.Duration

// UnmarshalJSON parses the duration from a string
func (d *Duration) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return trace.BadParameter("expected duration string, got %s", data)
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return trace.BadParameter("invalid duration %q: %v", value, err)
	}
	*d = Duration(duration)
	return nil
}

// MarshalJSON formats the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Value returns the duration as time.Duration
func (d Duration) Value() time.Duration {
	return time.Duration(d)
}

// Parse parses configuration in YAML format
func Parse(data []byte) (*Config, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, trace.BadParameter("invalid configuration: %v", err)
	}
	var config Config
	if err := json.Unmarshal(jsonData, &config); err != nil {
		return nil, trace.BadParameter("invalid configuration: %v", err)
	}
	return &config, nil
}

// ReadFile reads the configuration file at the specified path
func ReadFile(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, trace.ConvertSystemError(err)
	}
	config, err := Parse(data)
	if err != nil {
		return nil, trace.Wrap(err, "failed to parse %v", path)
	}
	return config, nil
}

// Merge overrides values of this configuration with the values
// set in other
func (c *Config) Merge(other Config) {
	c.ChefURL = utils.FirstNonEmpty(other.ChefURL, c.ChefURL)
	c.ChefUser = utils.FirstNonEmpty(other.ChefUser, c.ChefUser)
	c.ChefKeyPath = utils.FirstNonEmpty(other.ChefKeyPath, c.ChefKeyPath)
	c.ChefVersion = utils.FirstNonEmpty(other.ChefVersion, c.ChefVersion)
	c.Region = utils.FirstNonEmpty(other.Region, c.Region)
	c.Table = utils.FirstNonEmpty(other.Table, c.Table)
	c.BatchMode = utils.FirstNonEmpty(other.BatchMode, c.BatchMode)
	c.Queue = utils.FirstNonEmpty(other.Queue, c.Queue)
	c.Insecure = c.Insecure || other.Insecure
	c.DeleteClient = c.DeleteClient || other.DeleteClient
	if other.HTTPTimeout != 0 {
		c.HTTPTimeout = other.HTTPTimeout
	}
}

// CheckAndSetDefaults validates the configuration and sets default values
func (c *Config) CheckAndSetDefaults() error {
	c.ChefURL = utils.FirstNonEmpty(c.ChefURL, defaults.ChefURL)
	c.ChefUser = utils.FirstNonEmpty(c.ChefUser, defaults.ChefUser)
	c.ChefKeyPath = utils.FirstNonEmpty(c.ChefKeyPath, defaults.ChefKeyPath)
	c.ChefVersion = utils.FirstNonEmpty(c.ChefVersion, defaults.ChefVersion)
	c.Region = utils.FirstNonEmpty(c.Region, defaults.Region)
	c.Table = utils.FirstNonEmpty(c.Table, defaults.Table)
	c.BatchMode = utils.FirstNonEmpty(c.BatchMode, constants.BatchModeCollect)
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = Duration(defaults.HTTPTimeout)
	}
	u, err := url.Parse(c.ChefURL)
	if err != nil {
		return trace.BadParameter("invalid Chef server URL %q: %v", c.ChefURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return trace.BadParameter("invalid Chef server URL %q, expected http(s)://host/organizations/<name>", c.ChefURL)
	}
	if !utils.StringInSlice(constants.BatchModes, c.BatchMode) {
		return trace.BadParameter("unsupported batch mode %q, expected one of %v",
			c.BatchMode, constants.BatchModes)
	}
	if c.HTTPTimeout < 0 {
		return trace.BadParameter("negative HTTP timeout %v", c.HTTPTimeout.Value())
	}
	return nil
}

// QueueIsURL returns true if Queue is a queue URL rather than a name
func (c Config) QueueIsURL() bool {
	return strings.HasPrefix(c.Queue, "https://") || strings.HasPrefix(c.Queue, "http://")
}
