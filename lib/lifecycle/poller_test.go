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
	"encoding/json"
	"time"

	"github.com/gravitational/nodesync/lib/constants"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/gravitational/trace"
	"gopkg.in/check.v1"
)

type PollerSuite struct{}

var _ = check.Suite(&PollerSuite{})

func (s *PollerSuite) TestDeletesHandledMessages(c *check.C) {
	queue := newMockQueue("queue-url")
	handler := newMockHandler()
	poller, err := NewPoller(PollerConfig{
		Queue:    queue,
		QueueURL: queue.url,
		Handler:  handler,
		WaitTime: time.Second,
	})
	c.Assert(err, check.IsNil)

	ctx, cancel := context.WithCancel(context.TODO())
	defer cancel()
	doneC := make(chan error, 1)
	go func() {
		doneC <- poller.Run(ctx)
	}()

	expected := Message{
		Event:                constants.EventInstanceLaunch,
		AutoScalingGroupName: "web",
		InstanceID:           "i-1",
	}
	sendMessage(c, queue, &message{
		receipt: "message-1",
		body:    mustMarshalEnvelope(c, expected),
	})

	select {
	case msg := <-handler.messagesC:
		c.Assert(msg, check.DeepEquals, expected)
	case <-time.After(time.Second):
		c.Fatalf("timeout")
	}
	select {
	case m := <-queue.deletedC:
		c.Assert(aws.StringValue(m.ReceiptHandle), check.Equals, "message-1")
		c.Assert(aws.StringValue(m.QueueUrl), check.Equals, "queue-url")
	case <-time.After(time.Second):
		c.Fatalf("timeout")
	}

	cancel()
	select {
	case err := <-doneC:
		c.Assert(err, check.IsNil)
	case <-time.After(time.Second):
		c.Fatalf("timeout")
	}
}

func (s *PollerSuite) TestKeepsFailedMessages(c *check.C) {
	queue := newMockQueue("queue-url")
	handler := newMockHandler()
	handler.errors["i-1"] = trace.ConnectionProblem(nil, "chef is down")
	poller, err := NewPoller(PollerConfig{
		Queue:    queue,
		QueueURL: queue.url,
		Handler:  handler,
		WaitTime: time.Second,
	})
	c.Assert(err, check.IsNil)

	ctx, cancel := context.WithCancel(context.TODO())
	defer cancel()
	go poller.Run(ctx)

	// failed to handle
	sendMessage(c, queue, &message{
		receipt: "message-1",
		body: mustMarshalEnvelope(c, Message{
			Event:                constants.EventInstanceTerminate,
			AutoScalingGroupName: "web",
			InstanceID:           "i-1",
		}),
	})
	// failed to decode
	sendMessage(c, queue, &message{
		receipt: "message-2",
		body:    "{not json",
	})
	// bare lifecycle message without an envelope
	sendMessage(c, queue, &message{
		receipt: "message-3",
		body: mustMarshal(c, Message{
			Event:                constants.EventInstanceTerminate,
			AutoScalingGroupName: "web",
			InstanceID:           "i-2",
		}),
	})

	// only the last message is deleted
	select {
	case m := <-queue.deletedC:
		c.Assert(aws.StringValue(m.ReceiptHandle), check.Equals, "message-3")
	case <-time.After(time.Second):
		c.Fatalf("timeout")
	}
}

func (s *PollerSuite) TestGetQueueURL(c *check.C) {
	queue := newMockQueue("https://sqs.us-west-2.amazonaws.com/1/lifecycle")
	url, err := GetQueueURL(context.TODO(), queue, "life.cycle")
	c.Assert(err, check.IsNil)
	c.Assert(url, check.Equals, queue.url)
	c.Assert(queue.requested, check.DeepEquals, []string{"lifecycle"})

	_, err = GetQueueURL(context.TODO(), queue, "...")
	c.Assert(trace.IsBadParameter(err), check.Equals, true)
}

func (s *PollerSuite) TestConfig(c *check.C) {
	queue := newMockQueue("queue-url")
	handler := newMockHandler()
	for _, cfg := range []PollerConfig{
		{QueueURL: queue.url, Handler: handler},
		{Queue: queue, Handler: handler},
		{Queue: queue, QueueURL: queue.url},
	} {
		_, err := NewPoller(cfg)
		c.Assert(trace.IsBadParameter(err), check.Equals, true)
	}
}

func sendMessage(c *check.C, queue *mockQueue, msg *message) {
	select {
	case <-time.After(time.Second):
		c.Fatalf("timeout")
	case queue.messagesC <- msg:
	}
}

func mustMarshal(c *check.C, msg Message) string {
	data, err := json.Marshal(msg)
	c.Assert(err, check.IsNil)
	return string(data)
}

func mustMarshalEnvelope(c *check.C, msg Message) string {
	data, err := json.Marshal(events.SNSEntity{
		Type:      constants.SNSTypeNotification,
		MessageID: "sns-1",
		Message:   mustMarshal(c, msg),
	})
	c.Assert(err, check.IsNil)
	return string(data)
}

func newMockHandler() *mockHandler {
	return &mockHandler{
		messagesC: make(chan Message, 10),
		errors:    make(map[string]error),
	}
}

type mockHandler struct {
	messagesC chan Message
	errors    map[string]error
}

func (h *mockHandler) HandleMessage(ctx context.Context, msg Message) error {
	h.messagesC <- msg
	return h.errors[msg.InstanceID]
}

type message struct {
	receipt string
	body    string
}

func newMockQueue(url string) *mockQueue {
	return &mockQueue{
		url:       url,
		messagesC: make(chan *message, 10),
		deletedC:  make(chan *sqs.DeleteMessageInput, 10),
	}
}

type mockQueue struct {
	url       string
	messagesC chan *message
	deletedC  chan *sqs.DeleteMessageInput
	requested []string
}

func (q *mockQueue) DeleteMessageWithContext(ctx aws.Context, i *sqs.DeleteMessageInput, opts ...request.Option) (*sqs.DeleteMessageOutput, error) {
	select {
	case q.deletedC <- i:
		return &sqs.DeleteMessageOutput{}, nil
	case <-ctx.Done():
		return nil, trace.ConnectionProblem(nil, "context is terminating")
	default:
		return nil, trace.BadParameter("blocked on send in DeleteMessageWithContext")
	}
}

func (q *mockQueue) ReceiveMessageWithContext(ctx aws.Context, i *sqs.ReceiveMessageInput, opts ...request.Option) (*sqs.ReceiveMessageOutput, error) {
	select {
	case e := <-q.messagesC:
		return &sqs.ReceiveMessageOutput{
			Messages: []*sqs.Message{
				{
					MessageId:     aws.String(e.receipt),
					Body:          aws.String(e.body),
					ReceiptHandle: aws.String(e.receipt),
				},
			},
		}, nil
	case <-time.After(time.Second * time.Duration(aws.Int64Value(i.WaitTimeSeconds))):
		return &sqs.ReceiveMessageOutput{}, nil
	case <-ctx.Done():
		return nil, trace.ConnectionProblem(nil, "context is terminating")
	}
}

//nolint:revive,stylecheck // implements external contract
func (q *mockQueue) GetQueueUrlWithContext(ctx aws.Context, i *sqs.GetQueueUrlInput, opts ...request.Option) (*sqs.GetQueueUrlOutput, error) {
	q.requested = append(q.requested, aws.StringValue(i.QueueName))
	return &sqs.GetQueueUrlOutput{
		QueueUrl: aws.String(q.url),
	}, nil
}
