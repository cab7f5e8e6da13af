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

package lifecycle

import (
	"context"

	"github.com/gravitational/nodesync/lib/chef"
	"github.com/gravitational/nodesync/lib/constants"
	"github.com/gravitational/nodesync/lib/metadata"
	"github.com/gravitational/nodesync/lib/utils"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// Config is the lifecycle handler configuration
type Config struct {
	// Registry is the Chef server client
	Registry Registry
	// Store is the instance metadata store
	Store Store
	// ChefURL is the Chef server URL recorded in the metadata of launched instances
	ChefURL string
	// BatchMode selects how failures of a batch are reported,
	// one of constants.BatchModes
	BatchMode string
	// DeleteClient also removes the API client of a terminated node
	DeleteClient bool
	// FieldLogger is used for logging
	logrus.FieldLogger
}

// CheckAndSetDefaults validates the configuration and sets default values
func (c *Config) CheckAndSetDefaults() error {
	if c.Registry == nil {
		return trace.BadParameter("missing parameter Registry")
	}
	if c.Store == nil {
		return trace.BadParameter("missing parameter Store")
	}
	if c.ChefURL == "" {
		return trace.BadParameter("missing parameter ChefURL")
	}
	if c.BatchMode == "" {
		c.BatchMode = constants.BatchModeCollect
	}
	if !utils.StringInSlice(constants.BatchModes, c.BatchMode) {
		return trace.BadParameter("unsupported batch mode %q, expected one of %v",
			c.BatchMode, constants.BatchModes)
	}
	if c.FieldLogger == nil {
		c.FieldLogger = logrus.WithField(trace.Component, constants.ComponentLifecycle)
	}
	return nil
}

// Handler reacts to Auto Scaling lifecycle notifications by registering
// and removing Chef nodes and their metadata records
type Handler struct {
	Config
}

// New returns a new lifecycle handler
func New(config Config) (*Handler, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Handler{Config: config}, nil
}

// HandleMessage dispatches a single notification by its event type.
// Notifications other than instance launch and terminate are logged and ignored
func (h *Handler) HandleMessage(ctx context.Context, msg Message) error {
	logger := h.WithFields(logrus.Fields{
		constants.FieldEvent:    msg.Event,
		constants.FieldGroup:    msg.AutoScalingGroupName,
		constants.FieldInstance: msg.InstanceID,
	})
	if msg.Description != "" {
		logger.Debug(msg.Description)
	}
	switch msg.Event {
	case constants.EventInstanceTerminate:
		return trace.Wrap(h.terminate(ctx, msg, logger))
	case constants.EventInstanceLaunch:
		return trace.Wrap(h.launch(ctx, msg, logger))
	default:
		logger.Infof("Unrecognized message event: %v.", msg.Event)
		return nil
	}
}

// terminate removes the node of a terminated instance from the Chef server
// and then deletes its metadata record
func (h *Handler) terminate(ctx context.Context, msg Message, logger logrus.FieldLogger) error {
	if err := msg.Check(); err != nil {
		return trace.Wrap(err)
	}
	node := msg.NodeName()
	logger = logger.WithField(constants.FieldNode, node)
	logger.Info("Terminating instance.")
	if err := h.Registry.DeleteNode(ctx, node); err != nil {
		return trace.Wrap(err, "failed to delete node %v", node)
	}
	if h.DeleteClient {
		if err := h.Registry.DeleteClient(ctx, node); err != nil {
			return trace.Wrap(err, "failed to delete client %v", node)
		}
	}
	if err := h.Store.DeleteRecord(ctx, msg.InstanceID); err != nil {
		return trace.Wrap(err, "failed to delete metadata of %v", msg.InstanceID)
	}
	logger.Debug("Instance terminated.")
	return nil
}

// launch registers a Chef client for a launched instance and stores its
// metadata record together with the issued client key
func (h *Handler) launch(ctx context.Context, msg Message, logger logrus.FieldLogger) error {
	if err := msg.Check(); err != nil {
		return trace.Wrap(err)
	}
	node := msg.NodeName()
	logger = logger.WithField(constants.FieldNode, node)
	record := metadata.Record{
		InstanceID:  msg.InstanceID,
		NodeName:    node,
		ChefURL:     h.ChefURL,
		Environment: msg.AutoScalingGroupName,
	}
	logger.Info("Launching instance.")
	client, err := h.Registry.CreateClient(ctx, chef.NewClientRequest{
		Name:      node,
		Admin:     false,
		CreateKey: true,
	})
	if err != nil {
		return trace.Wrap(err, "failed to create client %v", node)
	}
	record.ClientKey = client.Key()
	if err := h.Store.PutRecord(ctx, record); err != nil {
		return trace.Wrap(err, "failed to store metadata of %v", msg.InstanceID)
	}
	logger.Debug("Instance launched.")
	return nil
}
