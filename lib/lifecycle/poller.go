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
	"regexp"
	"time"

	"github.com/gravitational/nodesync/lib/constants"
	"github.com/gravitational/nodesync/lib/defaults"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// PollerConfig is the queue poller configuration
type PollerConfig struct {
	// Queue is the SQS client
	Queue SQS
	// QueueURL is the URL of the queue subscribed to the notification topic
	QueueURL string
	// Handler handles received notifications
	Handler MessageHandler
	// WaitTime is the long polling wait time
	WaitTime time.Duration
	// VisibilityTimeout hides received messages from other consumers
	VisibilityTimeout time.Duration
	// MaxMessages is the maximum number of messages received at once
	MaxMessages int64
	// ErrorInterval is the pause after a failed receive
	ErrorInterval time.Duration
	// FieldLogger is used for logging
	logrus.FieldLogger
}

// CheckAndSetDefaults validates the configuration and sets default values
func (c *PollerConfig) CheckAndSetDefaults() error {
	if c.Queue == nil {
		return trace.BadParameter("missing parameter Queue")
	}
	if c.QueueURL == "" {
		return trace.BadParameter("missing parameter QueueURL")
	}
	if c.Handler == nil {
		return trace.BadParameter("missing parameter Handler")
	}
	if c.WaitTime == 0 {
		c.WaitTime = defaults.QueueWaitTime
	}
	if c.VisibilityTimeout == 0 {
		c.VisibilityTimeout = defaults.QueueVisibilityTimeout
	}
	if c.MaxMessages == 0 {
		c.MaxMessages = defaults.QueueMaxMessages
	}
	if c.ErrorInterval == 0 {
		c.ErrorInterval = defaults.QueueReceiveErrorInterval
	}
	if c.FieldLogger == nil {
		c.FieldLogger = logrus.WithField(trace.Component, constants.ComponentPoller)
	}
	return nil
}

// Poller receives lifecycle notifications from an SQS queue
// and passes them on to a handler
type Poller struct {
	PollerConfig
}

// NewPoller returns a new queue poller
func NewPoller(config PollerConfig) (*Poller, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Poller{PollerConfig: config}, nil
}

// Run receives and handles messages until the context is canceled.
// A message is deleted from the queue only after it has been handled
// successfully, failed messages become visible again after the
// visibility timeout
func (p *Poller) Run(ctx context.Context) error {
	logger := p.WithField(constants.FieldQueue, p.QueueURL)
	logger.Info("Start processing events.")
	for {
		out, err := p.Queue.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(p.QueueURL),
			MaxNumberOfMessages: aws.Int64(p.MaxMessages),
			VisibilityTimeout:   aws.Int64(int64(p.VisibilityTimeout / time.Second)),
			WaitTimeSeconds:     aws.Int64(int64(p.WaitTime / time.Second)),
		})
		if err != nil {
			select {
			case <-ctx.Done():
				logger.Info("Stop processing events.")
				return nil
			default:
			}
			logger.Errorf("Receive message error: %v.", trace.DebugReport(err))
			select {
			case <-time.After(p.ErrorInterval):
			case <-ctx.Done():
				logger.Info("Stop processing events.")
				return nil
			}
			continue
		}
		for _, m := range out.Messages {
			if err := p.processMessage(ctx, m); err != nil {
				logger.WithField(constants.FieldMessageID, aws.StringValue(m.MessageId)).
					Errorf("Failed to process message: %v.", trace.DebugReport(err))
			}
		}
	}
}

func (p *Poller) processMessage(ctx context.Context, m *sqs.Message) error {
	p.Debugf("Got message body: %q.", aws.StringValue(m.Body))
	msg, err := ParseBody(aws.StringValue(m.Body))
	if err != nil {
		return trace.Wrap(err)
	}
	if err := p.Handler.HandleMessage(ctx, *msg); err != nil {
		return trace.Wrap(err)
	}
	_, err = p.Queue.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.QueueURL),
		ReceiptHandle: m.ReceiptHandle,
	})
	return trace.Wrap(err)
}

// unsafeQueueChars matches characters SQS does not accept in queue names
var unsafeQueueChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// GetQueueURL resolves a queue name to its URL
func GetQueueURL(ctx context.Context, queue SQS, name string) (string, error) {
	safeName := unsafeQueueChars.ReplaceAllString(name, "")
	if safeName == "" {
		return "", trace.BadParameter("invalid queue name %q", name)
	}
	out, err := queue.GetQueueUrlWithContext(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(safeName),
	})
	if err != nil {
		return "", trace.Wrap(err)
	}
	return aws.StringValue(out.QueueUrl), nil
}
