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
	"github.com/gravitational/nodesync/lib/chef"
	"github.com/gravitational/nodesync/lib/config"
	"github.com/gravitational/nodesync/lib/lifecycle"
	"github.com/gravitational/nodesync/lib/metadata"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/gravitational/trace"
)

// services groups the clients shared by all commands
type services struct {
	session *session.Session
	handler *lifecycle.Handler
}

// newServices reads the Chef API key and creates the Chef server
// and DynamoDB clients behind the lifecycle handler
func newServices(cfg config.Config) (*services, error) {
	key, err := chef.ReadPrivateKey(cfg.ChefKeyPath)
	if err != nil {
		return nil, trace.Wrap(err, "failed to read Chef API key")
	}
	registry, err := chef.New(chef.Config{
		URL:         cfg.ChefURL,
		UserID:      cfg.ChefUser,
		Key:         key,
		ChefVersion: cfg.ChefVersion,
		Timeout:     cfg.HTTPTimeout.Value(),
		Insecure:    cfg.Insecure,
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	store, err := metadata.NewDynamoStore(metadata.Config{
		Table:  cfg.Table,
		Client: dynamodb.New(sess),
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	handler, err := lifecycle.New(lifecycle.Config{
		Registry:     registry,
		Store:        store,
		ChefURL:      cfg.ChefURL,
		BatchMode:    cfg.BatchMode,
		DeleteClient: cfg.DeleteClient,
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return &services{
		session: sess,
		handler: handler,
	}, nil
}
