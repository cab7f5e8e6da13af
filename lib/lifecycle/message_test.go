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
	"github.com/gravitational/nodesync/lib/constants"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gravitational/trace"
	"gopkg.in/check.v1"
)

type MessageSuite struct{}

var _ = check.Suite(&MessageSuite{})

func (s *MessageSuite) TestNodeName(c *check.C) {
	msg := Message{AutoScalingGroupName: "web", InstanceID: "i-0abc"}
	c.Assert(msg.NodeName(), check.Equals, "web-i-0abc")
}

func (s *MessageSuite) TestParseSNSRecord(c *check.C) {
	msg, err := ParseSNSRecord(events.SNSEventRecord{
		SNS: events.SNSEntity{
			MessageID: "m-1",
			Message: `{"Event": "autoscaling:EC2_INSTANCE_LAUNCH", "AutoScalingGroupName": "web",
				"EC2InstanceId": "i-1", "AccountId": "123", "Cause": "scale out"}`,
		},
	})
	c.Assert(err, check.IsNil)
	c.Assert(*msg, check.DeepEquals, Message{
		Event:                constants.EventInstanceLaunch,
		AutoScalingGroupName: "web",
		InstanceID:           "i-1",
		AccountID:            "123",
		Cause:                "scale out",
	})

	_, err = ParseSNSRecord(events.SNSEventRecord{
		SNS: events.SNSEntity{MessageID: "m-2", Message: "not json"},
	})
	c.Assert(trace.IsBadParameter(err), check.Equals, true)
}

func (s *MessageSuite) TestParseBody(c *check.C) {
	expected := Message{
		Event:                constants.EventInstanceTerminate,
		AutoScalingGroupName: "web",
		InstanceID:           "i-1",
	}
	for _, body := range []string{
		mustMarshal(c, expected),
		mustMarshalEnvelope(c, expected),
	} {
		msg, err := ParseBody(body)
		c.Assert(err, check.IsNil)
		c.Assert(*msg, check.DeepEquals, expected)
	}

	_, err := ParseBody("[]")
	c.Assert(trace.IsBadParameter(err), check.Equals, true)
}

func (s *MessageSuite) TestCheck(c *check.C) {
	c.Assert(Message{AutoScalingGroupName: "web", InstanceID: "i-1"}.Check(), check.IsNil)
	c.Assert(trace.IsBadParameter(Message{InstanceID: "i-1"}.Check()), check.Equals, true)
	c.Assert(trace.IsBadParameter(Message{AutoScalingGroupName: "web"}.Check()), check.Equals, true)
}
