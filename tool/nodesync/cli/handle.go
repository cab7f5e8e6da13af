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
	"encoding/json"
	"io"
	"io/ioutil"
	"os"

	"github.com/gravitational/nodesync/lib/config"
	"github.com/gravitational/nodesync/lib/constants"
	"github.com/gravitational/nodesync/lib/lifecycle"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gravitational/trace"
	"github.com/pborman/uuid"
	"github.com/sirupsen/logrus"
)

// handleFile handles the SNS event or the lifecycle message in the file
// at path
func handleFile(cfg config.Config, path string) error {
	data, err := readInput(path)
	if err != nil {
		return trace.Wrap(err)
	}
	services, err := newServices(cfg)
	if err != nil {
		return trace.Wrap(err)
	}
	return handleData(context.TODO(), services.handler, data)
}

type eventHandler interface {
	lifecycle.MessageHandler
	HandleEvent(ctx context.Context, event events.SNSEvent) error
}

// handleData handles data as a batch if it is an SNS event, otherwise
// as a single SNS notification or a bare lifecycle message
func handleData(ctx context.Context, handler eventHandler, data []byte) error {
	logger := logrus.WithFields(logrus.Fields{
		trace.Component:          constants.ComponentCLI,
		constants.FieldRequestID: uuid.New(),
	})
	var event events.SNSEvent
	if err := json.Unmarshal(data, &event); err == nil && len(event.Records) != 0 {
		logger.Infof("Handling %v records.", len(event.Records))
		return trace.Wrap(handler.HandleEvent(ctx, event))
	}
	msg, err := lifecycle.ParseBody(string(data))
	if err != nil {
		return trace.Wrap(err)
	}
	logger.Infof("Handling %v.", msg)
	return trace.Wrap(handler.HandleMessage(ctx, *msg))
}

func readInput(path string) ([]byte, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, trace.ConvertSystemError(err)
		}
		defer f.Close()
		r = f
	}
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, trace.ConvertSystemError(err)
	}
	return data, nil
}
