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
	"github.com/gravitational/nodesync/lib/constants"

	"gopkg.in/alecthomas/kingpin.v2"
)

// RegisterCommands registers all nodesync flags, arguments and subcommands
func RegisterCommands(app *kingpin.Application) Application {
	nodesync := Application{
		Application: app,
	}

	nodesync.Debug = app.Flag("debug", "Enable debug mode.").Envar(constants.EnvDebug).Bool()
	nodesync.LogFile = app.Flag("log-file", "Also write logs to this file.").String()
	nodesync.ConfigFile = app.Flag("config", "Path to the YAML configuration file.").Envar(constants.EnvConfig).String()
	nodesync.ChefURL = app.Flag("chef-url", "Chef server organization URL.").Envar(constants.EnvChefURL).String()
	nodesync.ChefUser = app.Flag("chef-user", "Chef API user.").Envar(constants.EnvChefUser).String()
	nodesync.ChefKeyPath = app.Flag("chef-key", "Path to the Chef API user private key.").Envar(constants.EnvChefKey).String()
	nodesync.Insecure = app.Flag("insecure", "Skip Chef server certificate verification.").Bool()
	nodesync.Region = app.Flag("region", "AWS region of the metadata table.").Envar(constants.EnvRegion).String()
	nodesync.Table = app.Flag("table", "Metadata table name.").Envar(constants.EnvTable).String()
	nodesync.BatchMode = app.Flag("batch-mode", "How failures of a notification batch are reported: collect or fail-fast.").Envar(constants.EnvBatchMode).Enum(constants.BatchModes...)
	nodesync.DeleteClient = app.Flag("delete-client", "Also delete the Chef API client of terminated instances.").Envar(constants.EnvDeleteClient).Bool()
	nodesync.HTTPTimeout = app.Flag("http-timeout", "Chef server request timeout.").Duration()

	nodesync.LambdaCmd.CmdClause = app.Command("lambda", "Run as the Lambda function handler of the lifecycle notification topic.").Default()

	nodesync.HandleCmd.CmdClause = app.Command("handle", "Handle an SNS event or a lifecycle message saved in a file.")
	nodesync.HandleCmd.Path = nodesync.HandleCmd.Arg("path", "Path to the JSON file, - reads from stdin.").Required().String()

	nodesync.WatchCmd.CmdClause = app.Command("watch", "Poll an SQS queue subscribed to the lifecycle notification topic.")
	nodesync.WatchCmd.Queue = nodesync.WatchCmd.Flag("queue", "Queue name or URL.").Envar(constants.EnvQueue).String()

	nodesync.VersionCmd.CmdClause = app.Command("version", "Print version information and exit.")
	nodesync.VersionCmd.Output = nodesync.VersionCmd.Flag("output", "Output format: text or json.").Short('o').Default(constants.EncodingText).Enum(constants.EncodingText, constants.EncodingJSON)

	return nodesync
}
