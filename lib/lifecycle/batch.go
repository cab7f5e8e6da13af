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

	"github.com/gravitational/nodesync/lib/constants"
	"github.com/gravitational/nodesync/lib/utils"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gravitational/trace"
	"golang.org/x/sync/errgroup"
)

// HandleEvent handles all records of an SNS event concurrently and returns
// once every record has been handled.
//
// In BatchModeFailFast the first observed failure is returned, in
// BatchModeCollect the failures of all records are returned as an aggregate
func (h *Handler) HandleEvent(ctx context.Context, event events.SNSEvent) error {
	h.WithField("records", len(event.Records)).Debug("Handle event.")
	if h.BatchMode == constants.BatchModeFailFast {
		return trace.Wrap(h.dispatchFailFast(ctx, event.Records))
	}
	return trace.Wrap(h.dispatchCollect(ctx, event.Records))
}

func (h *Handler) dispatchFailFast(ctx context.Context, records []events.SNSEventRecord) error {
	var group errgroup.Group
	for _, record := range records {
		record := record
		group.Go(func() error {
			return h.handleRecord(ctx, record)
		})
	}
	return group.Wait()
}

func (h *Handler) dispatchCollect(ctx context.Context, records []events.SNSEventRecord) error {
	errC := make(chan error, len(records))
	for _, record := range records {
		go func(record events.SNSEventRecord) {
			errC <- h.handleRecord(ctx, record)
		}(record)
	}
	return utils.CollectErrors(ctx, errC)
}

func (h *Handler) handleRecord(ctx context.Context, record events.SNSEventRecord) error {
	msg, err := ParseSNSRecord(record)
	if err != nil {
		h.WithError(err).WithField(constants.FieldMessageID, record.SNS.MessageID).
			Warn("Failed to parse record.")
		return trace.Wrap(err)
	}
	if err := h.HandleMessage(ctx, *msg); err != nil {
		h.WithError(err).WithField(constants.FieldMessageID, record.SNS.MessageID).
			Warnf("Failed to handle %v.", msg)
		return trace.Wrap(err, "message %v", record.SNS.MessageID)
	}
	return nil
}
