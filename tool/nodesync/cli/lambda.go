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

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// startLambda runs the Lambda runtime loop, it only returns on failure
// to initialize
func startLambda(cfg config.Config) error {
	services, err := newServices(cfg)
	if err != nil {
		return trace.Wrap(err)
	}
	lambda.Start(newLambdaHandler(services.handler))
	return nil
}

// newLambdaHandler returns the function invoked by the Lambda runtime
// for every SNS event
func newLambdaHandler(handler *lifecycle.Handler) func(context.Context, events.SNSEvent) error {
	return func(ctx context.Context, event events.SNSEvent) error {
		logger := logrus.WithField(trace.Component, constants.ComponentCLI)
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			logger = logger.WithField(constants.FieldRequestID, lc.AwsRequestID)
		}
		logger.Infof("Received %v records.", len(event.Records))
		if err := handler.HandleEvent(ctx, event); err != nil {
			logger.WithError(err).Warn("Failed to handle event.")
			return trace.Wrap(err)
		}
		return nil
	}
}
