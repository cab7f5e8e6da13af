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
	"github.com/gravitational/nodesync/lib/metadata"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sqs"
)

// Registry is the configuration management server instances register with
type Registry interface {
	// DeleteNode removes the node object with the given name
	DeleteNode(ctx context.Context, name string) error
	// DeleteClient removes the API client with the given name
	DeleteClient(ctx context.Context, name string) error
	// CreateClient registers a new API client
	CreateClient(ctx context.Context, req chef.NewClientRequest) (*chef.CreatedClient, error)
}

// Store persists instance metadata records
type Store interface {
	// PutRecord creates or overwrites the record of an instance
	PutRecord(ctx context.Context, record metadata.Record) error
	// DeleteRecord removes the record of an instance
	DeleteRecord(ctx context.Context, instanceID string) error
}

// MessageHandler handles a single lifecycle message
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message) error
}

// SQS is an interface representing AWS Queue Service
type SQS interface {
	DeleteMessageWithContext(aws.Context, *sqs.DeleteMessageInput, ...request.Option) (*sqs.DeleteMessageOutput, error)
	ReceiveMessageWithContext(aws.Context, *sqs.ReceiveMessageInput, ...request.Option) (*sqs.ReceiveMessageOutput, error)
	GetQueueUrlWithContext(aws.Context, *sqs.GetQueueUrlInput, ...request.Option) (*sqs.GetQueueUrlOutput, error)
}
