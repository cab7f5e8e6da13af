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

package metadata

import (
	"context"

	"github.com/gravitational/nodesync/lib/constants"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// Record maps an EC2 instance to the Chef node registered for it
type Record struct {
	// InstanceID is the EC2 instance ID, the table hash key
	InstanceID string `dynamodbav:"instance_id"`
	// NodeName is the Chef node and client name
	NodeName string `dynamodbav:"node_name"`
	// ChefURL is the Chef server organization URL the node is registered with
	ChefURL string `dynamodbav:"chef_url"`
	// Environment is the autoscaling group the instance belongs to
	Environment string `dynamodbav:"environment"`
	// ClientKey is the private key issued to the node's Chef client
	ClientKey string `dynamodbav:"client_key,omitempty"`
}

// Check makes sure the record can be stored
func (r Record) Check() error {
	if r.InstanceID == "" {
		return trace.BadParameter("missing instance ID")
	}
	return nil
}

// DynamoDB is the subset of the DynamoDB API the store uses
type DynamoDB interface {
	PutItemWithContext(aws.Context, *dynamodb.PutItemInput, ...request.Option) (*dynamodb.PutItemOutput, error)
	DeleteItemWithContext(aws.Context, *dynamodb.DeleteItemInput, ...request.Option) (*dynamodb.DeleteItemOutput, error)
}

// Config is the DynamoDB store configuration
type Config struct {
	// Table is the table records are kept in
	Table string
	// Client is the DynamoDB API client
	Client DynamoDB
	// FieldLogger is used for logging
	logrus.FieldLogger
}

// CheckAndSetDefaults validates the configuration and sets default values
func (c *Config) CheckAndSetDefaults() error {
	if c.Table == "" {
		return trace.BadParameter("missing parameter Table")
	}
	if c.Client == nil {
		return trace.BadParameter("missing parameter Client")
	}
	if c.FieldLogger == nil {
		c.FieldLogger = logrus.WithField(trace.Component, constants.ComponentMetadata)
	}
	return nil
}

// DynamoStore keeps metadata records in a DynamoDB table
type DynamoStore struct {
	Config
}

// NewDynamoStore returns a new DynamoDB-backed store
func NewDynamoStore(config Config) (*DynamoStore, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &DynamoStore{Config: config}, nil
}

// PutRecord creates or fully overwrites the record for record.InstanceID
func (s *DynamoStore) PutRecord(ctx context.Context, record Record) error {
	if err := record.Check(); err != nil {
		return trace.Wrap(err)
	}
	item, err := dynamodbattribute.MarshalMap(record)
	if err != nil {
		return trace.Wrap(err)
	}
	s.WithField(constants.FieldInstance, record.InstanceID).Debug("Put record.")
	_, err = s.Client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.Table),
		Item:      item,
	})
	return ConvertError(err)
}

// DeleteRecord removes the record for instanceID. Deleting a record
// that does not exist is not an error
func (s *DynamoStore) DeleteRecord(ctx context.Context, instanceID string) error {
	if instanceID == "" {
		return trace.BadParameter("missing instance ID")
	}
	s.WithField(constants.FieldInstance, instanceID).Debug("Delete record.")
	_, err := s.Client.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.Table),
		Key: map[string]*dynamodb.AttributeValue{
			constants.AttrInstanceID: {S: aws.String(instanceID)},
		},
	})
	return ConvertError(err)
}

// ConvertError converts errors specific to DynamoDB to trace-compatible error
func ConvertError(err error) error {
	if err == nil {
		return nil
	}
	awsErr, ok := err.(awserr.Error)
	if !ok {
		return trace.Wrap(err)
	}
	switch awsErr.Code() {
	case dynamodb.ErrCodeResourceNotFoundException:
		return trace.NotFound(awsErr.Error())
	case dynamodb.ErrCodeConditionalCheckFailedException:
		return trace.CompareFailed(awsErr.Error())
	case dynamodb.ErrCodeProvisionedThroughputExceededException,
		"RequestLimitExceeded":
		return trace.LimitExceeded(awsErr.Error())
	case "AccessDeniedException", "UnrecognizedClientException":
		return trace.AccessDenied(awsErr.Error())
	case request.CanceledErrorCode:
		return trace.ConnectionProblem(awsErr, "request canceled")
	}
	return trace.Wrap(err)
}
