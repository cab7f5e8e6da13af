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
	"time"

	"gopkg.in/alecthomas/kingpin.v2"
)

// Application represents the command-line "nodesync" application and contains
// definitions of all its flags, arguments and subcommands
type Application struct {
	*kingpin.Application
	// Debug enables debug logging
	Debug *bool
	// LogFile duplicates log output into a file
	LogFile *string
	// ConfigFile is the path to the YAML configuration file
	ConfigFile *string
	// ChefURL is the Chef server organization URL
	ChefURL *string
	// ChefUser is the Chef API user
	ChefUser *string
	// ChefKeyPath is the path to the Chef API user private key
	ChefKeyPath *string
	// Insecure turns off Chef server certificate verification
	Insecure *bool
	// Region is the AWS region
	Region *string
	// Table is the metadata table name
	Table *string
	// BatchMode selects how failures of a batch are reported
	BatchMode *string
	// DeleteClient also removes the Chef API client of terminated instances
	DeleteClient *bool
	// HTTPTimeout bounds a single Chef server request
	HTTPTimeout *time.Duration
	// LambdaCmd runs the Lambda function handler
	LambdaCmd LambdaCmd
	// HandleCmd handles a saved notification
	HandleCmd HandleCmd
	// WatchCmd polls a queue for notifications
	WatchCmd WatchCmd
	// VersionCmd prints the binary version
	VersionCmd VersionCmd
}

// LambdaCmd runs the Lambda function handler
type LambdaCmd struct {
	*kingpin.CmdClause
}

// HandleCmd handles SNS event or lifecycle message saved in a file
type HandleCmd struct {
	*kingpin.CmdClause
	// Path is the path to the file with the event, or - for stdin
	Path *string
}

// WatchCmd polls an SQS queue subscribed to the lifecycle notification topic
type WatchCmd struct {
	*kingpin.CmdClause
	// Queue is the queue name or URL
	Queue *string
}

// VersionCmd displays the binary version
type VersionCmd struct {
	*kingpin.CmdClause
	// Output is output format
	Output *string
}
