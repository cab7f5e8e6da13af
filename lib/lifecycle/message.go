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
	"encoding/json"
	"fmt"

	"github.com/gravitational/nodesync/lib/constants"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gravitational/trace"
)

// Message is an Auto Scaling notification as published to SNS:
//
//   {
//     "Event": "autoscaling:EC2_INSTANCE_LAUNCH",
//     "AutoScalingGroupName": "web",
//     "EC2InstanceId": "i-0123456789abcdef0",
//     "Description": "Launching a new EC2 instance: i-0123456789abcdef0",
//     "Cause": "...",
//     "AccountId": "123456789012",
//     "RequestId": "...",
//     "Service": "AWS Auto Scaling",
//     "Time": "2020-03-01T10:00:00.000Z",
//     "StatusCode": "InProgress"
//   }
type Message struct {
	// Event is the notification type
	Event string `json:"Event"`
	// AutoScalingGroupName is the group the instance belongs to
	AutoScalingGroupName string `json:"AutoScalingGroupName"`
	// InstanceID is the EC2 instance ID
	InstanceID string `json:"EC2InstanceId"`
	// Description is a human readable summary of the activity
	Description string `json:"Description,omitempty"`
	// Cause explains why the activity happened
	Cause string `json:"Cause,omitempty"`
	// AccountID is the AWS account ID
	AccountID string `json:"AccountId,omitempty"`
	// RequestID identifies the scaling activity
	RequestID string `json:"RequestId,omitempty"`
	// Service is the sending service
	Service string `json:"Service,omitempty"`
	// Time is the time of the activity
	Time string `json:"Time,omitempty"`
	// StatusCode is the status of the scaling activity
	StatusCode string `json:"StatusCode,omitempty"`
}

// NodeName returns the Chef node name for the instance
func (m Message) NodeName() string {
	return fmt.Sprintf("%v-%v", m.AutoScalingGroupName, m.InstanceID)
}

// Check makes sure the message names both the group and the instance
func (m Message) Check() error {
	if m.AutoScalingGroupName == "" {
		return trace.BadParameter("%v: missing AutoScalingGroupName", m.Event)
	}
	if m.InstanceID == "" {
		return trace.BadParameter("%v: missing EC2InstanceId", m.Event)
	}
	return nil
}

// String returns a short description of the message
func (m Message) String() string {
	return fmt.Sprintf("Message(event=%v, group=%v, instance=%v)",
		m.Event, m.AutoScalingGroupName, m.InstanceID)
}

// ParseSNSRecord extracts the Auto Scaling notification from an SNS record
func ParseSNSRecord(record events.SNSEventRecord) (*Message, error) {
	msg, err := unmarshalMessage(record.SNS.Message)
	if err != nil {
		return nil, trace.Wrap(err, "SNS message %v", record.SNS.MessageID)
	}
	return msg, nil
}

// ParseBody extracts the Auto Scaling notification from an SQS message body.
// The body is either the SNS envelope (SQS subscription without raw message
// delivery) or the notification itself
func ParseBody(body string) (*Message, error) {
	var envelope events.SNSEntity
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, trace.BadParameter("invalid message body: %v", err)
	}
	if envelope.Type == constants.SNSTypeNotification {
		return unmarshalMessage(envelope.Message)
	}
	return unmarshalMessage(body)
}

func unmarshalMessage(data string) (*Message, error) {
	var msg Message
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		return nil, trace.BadParameter("invalid lifecycle message: %v", err)
	}
	return &msg, nil
}
