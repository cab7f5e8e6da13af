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

// package constants contains global constants
// shared between packages
package constants

const (
	// ComponentLifecycle is the lifecycle event handler
	ComponentLifecycle = "lifecycle"
	// ComponentPoller is the queue poller feeding the lifecycle handler
	ComponentPoller = "poller"
	// ComponentChef is the Chef server client
	ComponentChef = "chef"
	// ComponentMetadata is the metadata store
	ComponentMetadata = "metadata"
	// ComponentCLI is the command line tool
	ComponentCLI = "cli"

	// EventInstanceLaunch is sent by the autoscaling group after it launched an instance
	EventInstanceLaunch = "autoscaling:EC2_INSTANCE_LAUNCH"
	// EventInstanceTerminate is sent by the autoscaling group after it terminated an instance
	EventInstanceTerminate = "autoscaling:EC2_INSTANCE_TERMINATE"
	// EventInstanceLaunchError is sent when the autoscaling group failed to launch an instance
	EventInstanceLaunchError = "autoscaling:EC2_INSTANCE_LAUNCH_ERROR"
	// EventInstanceTerminateError is sent when the autoscaling group failed to terminate an instance
	EventInstanceTerminateError = "autoscaling:EC2_INSTANCE_TERMINATE_ERROR"
	// EventTestNotification is sent once when the notification configuration is created
	EventTestNotification = "autoscaling:TEST_NOTIFICATION"

	// SNSTypeNotification is the SNS envelope type of a published message
	SNSTypeNotification = "Notification"

	// BatchModeFailFast reports only the first failed record of a batch
	BatchModeFailFast = "fail-fast"
	// BatchModeCollect reports every failed record of a batch
	BatchModeCollect = "collect"

	// AttrInstanceID is the metadata table hash key
	AttrInstanceID = "instance_id"

	// FieldInstance is a logging field for the EC2 instance ID
	FieldInstance = "instance"
	// FieldGroup is a logging field for the autoscaling group name
	FieldGroup = "asg_name"
	// FieldNode is a logging field for the Chef node name
	FieldNode = "node"
	// FieldEvent is a logging field for the lifecycle event type
	FieldEvent = "event"
	// FieldMessageID is a logging field for the SNS/SQS message ID
	FieldMessageID = "message_id"
	// FieldRequestID is a logging field for the invocation request ID
	FieldRequestID = "request_id"
	// FieldQueue is a logging field for the SQS queue URL
	FieldQueue = "queue"

	// EnvLambdaFunctionName is set by the Lambda runtime for every function
	EnvLambdaFunctionName = "AWS_LAMBDA_FUNCTION_NAME"
	// EnvChefURL overrides the Chef server organization URL
	EnvChefURL = "NODESYNC_CHEF_URL"
	// EnvChefUser overrides the Chef API user
	EnvChefUser = "NODESYNC_CHEF_USER"
	// EnvChefKey overrides the path to the Chef API user key
	EnvChefKey = "NODESYNC_CHEF_KEY"
	// EnvRegion overrides the AWS region of the metadata table
	EnvRegion = "NODESYNC_REGION"
	// EnvTable overrides the metadata table name
	EnvTable = "NODESYNC_TABLE"
	// EnvBatchMode selects the batch error reporting mode
	EnvBatchMode = "NODESYNC_BATCH_MODE"
	// EnvDeleteClient enables deleting the Chef API client on termination
	EnvDeleteClient = "NODESYNC_DELETE_CLIENT"
	// EnvQueue is the SQS queue name or URL polled by the watch command
	EnvQueue = "NODESYNC_QUEUE"
	// EnvConfig is the path to the YAML configuration file
	EnvConfig = "NODESYNC_CONFIG"
	// EnvDebug enables debug logging
	EnvDebug = "NODESYNC_DEBUG"

	// EncodingText is a text output format
	EncodingText = "text"
	// EncodingJSON is a JSON output format
	EncodingJSON = "json"
)

// BatchModes lists all supported batch error reporting modes
var BatchModes = []string{BatchModeCollect, BatchModeFailFast}
