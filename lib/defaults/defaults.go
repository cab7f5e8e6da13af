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

package defaults

import "time"

const (
	// ChefURL is the default Chef server organization URL
	ChefURL = "https://api.chef.io/organizations/foo"
	// ChefUser is the default Chef API user
	ChefUser = "admin"
	// ChefKeyPath is the default location of the Chef API user private key
	ChefKeyPath = "client.pem"
	// ChefVersion is sent as X-Chef-Version with every Chef API request
	ChefVersion = "12.0.0"
	// ChefServerAPIVersion is the Chef server API version requested
	ChefServerAPIVersion = "1"

	// Region is the default AWS region of the metadata table
	Region = "us-west-2"
	// Table is the default metadata table name
	Table = "testing"

	// HTTPTimeout bounds a single request to the Chef server
	HTTPTimeout = 30 * time.Second

	// QueueWaitTime is the SQS long polling wait time
	QueueWaitTime = 20 * time.Second
	// QueueVisibilityTimeout hides a received message from other consumers
	// while it is being handled
	QueueVisibilityTimeout = 60 * time.Second
	// QueueMaxMessages is the maximum number of messages received at once
	QueueMaxMessages = 10
	// QueueReceiveErrorInterval is the pause after a failed receive call
	QueueReceiveErrorInterval = 5 * time.Second
)

// SharedReadWriteMask is the file mask for files created by the tool
const SharedReadWriteMask = 0644
