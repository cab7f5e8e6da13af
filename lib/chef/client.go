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

package chef

import (
	"context"
	"crypto/rsa"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gravitational/nodesync/lib/constants"
	"github.com/gravitational/nodesync/lib/defaults"

	"github.com/gravitational/roundtrip"
	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// Config is the Chef client configuration
type Config struct {
	// URL is the organization URL, e.g. https://chef.example.com/organizations/acme
	URL string
	// UserID is the API user requests are signed as
	UserID string
	// Key is the private key of the API user
	Key *rsa.PrivateKey
	// ChefVersion is sent as X-Chef-Version
	ChefVersion string
	// ServerAPIVersion is sent as X-Ops-Server-API-Version
	ServerAPIVersion string
	// Timeout bounds a single request
	Timeout time.Duration
	// Insecure turns off server certificate verification
	Insecure bool
	// Transport is an optional base transport
	Transport http.RoundTripper
	// Clock is used to timestamp signed requests
	Clock clockwork.Clock
	// FieldLogger is used for logging
	logrus.FieldLogger
}

// CheckAndSetDefaults validates the configuration and sets default values
func (c *Config) CheckAndSetDefaults() error {
	if c.URL == "" {
		return trace.BadParameter("missing parameter URL")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return trace.BadParameter("invalid Chef server URL %q: %v", c.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return trace.BadParameter("Chef server URL %q must be http or https", c.URL)
	}
	if c.UserID == "" {
		return trace.BadParameter("missing parameter UserID")
	}
	if c.Key == nil {
		return trace.BadParameter("missing parameter Key")
	}
	if c.ChefVersion == "" {
		c.ChefVersion = defaults.ChefVersion
	}
	if c.ServerAPIVersion == "" {
		c.ServerAPIVersion = defaults.ChefServerAPIVersion
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.HTTPTimeout
	}
	if c.Transport == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if c.Insecure {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		c.Transport = transport
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.FieldLogger == nil {
		c.FieldLogger = logrus.WithField(trace.Component, constants.ComponentChef)
	}
	return nil
}

// Client talks to the Chef server API on behalf of a single organization
type Client struct {
	roundtrip.Client
	// Config is the client configuration
	Config
	// base is the organization URL without the trailing slash
	base string
}

// New returns a new Chef server client
func New(config Config) (*Client, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	httpClient := &http.Client{
		Timeout: config.Timeout,
		Transport: &signer{
			userID:        config.UserID,
			key:           config.Key,
			chefVersion:   config.ChefVersion,
			serverVersion: config.ServerAPIVersion,
			clock:         config.Clock,
			next:          config.Transport,
		},
	}
	base := strings.TrimRight(config.URL, "/")
	c, err := roundtrip.NewClient(base, "", roundtrip.HTTPClient(httpClient))
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return &Client{
		Client: *c,
		Config: config,
		base:   base,
	}, nil
}

// DeleteNode removes the node object with the given name
func (c *Client) DeleteNode(ctx context.Context, name string) error {
	c.WithField(constants.FieldNode, name).Debug("Delete node.")
	_, err := convertResponse(c.Client.Delete(ctx, c.endpoint("nodes", name)))
	return trace.Wrap(err)
}

// DeleteClient removes the API client with the given name
func (c *Client) DeleteClient(ctx context.Context, name string) error {
	c.WithField(constants.FieldNode, name).Debug("Delete client.")
	_, err := convertResponse(c.Client.Delete(ctx, c.endpoint("clients", name)))
	return trace.Wrap(err)
}

// CreateClient registers a new API client and returns its credentials
func (c *Client) CreateClient(ctx context.Context, req NewClientRequest) (*CreatedClient, error) {
	if req.Name == "" {
		return nil, trace.BadParameter("missing client name")
	}
	c.WithField(constants.FieldNode, req.Name).Debug("Create client.")
	out, err := convertResponse(c.Client.PostJSON(ctx, c.endpoint("clients"), req))
	if err != nil {
		return nil, trace.Wrap(err)
	}
	var created CreatedClient
	if err := json.Unmarshal(out.Bytes(), &created); err != nil {
		return nil, trace.Wrap(err)
	}
	return &created, nil
}

func (c *Client) endpoint(parts ...string) string {
	escaped := make([]string, 0, len(parts))
	for _, part := range parts {
		escaped = append(escaped, url.PathEscape(part))
	}
	return c.base + "/" + strings.Join(escaped, "/")
}

// convertResponse turns transport failures and non-2xx responses into trace errors
func convertResponse(re *roundtrip.Response, err error) (*roundtrip.Response, error) {
	if err != nil {
		if uerr, ok := trace.Unwrap(err).(*url.Error); ok && uerr != nil && uerr.Err != nil {
			return nil, trace.ConnectionProblem(uerr.Err, "failed to reach Chef server")
		}
		return nil, trace.ConvertSystemError(err)
	}
	if re.Code() < 200 || re.Code() > 299 {
		return nil, trace.ReadError(re.Code(), re.Bytes())
	}
	return re, nil
}
