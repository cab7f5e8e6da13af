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

package cli

import (
	"context"

	"github.com/gravitational/nodesync/lib/config"
	"github.com/gravitational/nodesync/lib/constants"
	"github.com/gravitational/nodesync/lib/lifecycle"
	"github.com/gravitational/nodesync/lib/utils"

	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// watch polls the configured queue until the process is interrupted
func watch(cfg config.Config) error {
	if cfg.Queue == "" {
		return trace.BadParameter("specify the queue name or URL with --queue")
	}
	services, err := newServices(cfg)
	if err != nil {
		return trace.Wrap(err)
	}
	logger := logrus.WithField(trace.Component, constants.ComponentCLI)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	utils.WatchTerminationSignals(ctx, cancel, logger)

	queue := sqs.New(services.session)
	queueURL := cfg.Queue
	if !cfg.QueueIsURL() {
		queueURL, err = lifecycle.GetQueueURL(ctx, queue, cfg.Queue)
		if err != nil {
			return trace.Wrap(err)
		}
		logger.WithField(constants.FieldQueue, queueURL).Debug("Resolved queue URL.")
	}
	poller, err := lifecycle.NewPoller(lifecycle.PollerConfig{
		Queue:    queue,
		QueueURL: queueURL,
		Handler:  services.handler,
	})
	if err != nil {
		return trace.Wrap(err)
	}
	return trace.Wrap(poller.Run(ctx))
}
