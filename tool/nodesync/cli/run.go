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
	"os"

	"github.com/gravitational/nodesync/lib/constants"
	"github.com/gravitational/nodesync/lib/utils"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// Run parses the command line and executes the selected command
func Run(g Application, args []string) error {
	cmd, err := g.Parse(args)
	if err != nil {
		return trace.Wrap(err)
	}
	InitAndCheck(g)
	logrus.Debugf("Executing: %v.", args)
	return Execute(g, cmd)
}

// InitAndCheck initializes logging according to the provided flags.
// Under the Lambda runtime log entries are written as JSON
func InitAndCheck(g Application) {
	trace.SetDebug(*g.Debug)
	level := logrus.InfoLevel
	if *g.Debug {
		level = logrus.DebugLevel
	}
	encoding := constants.EncodingText
	if runningInLambda() {
		encoding = constants.EncodingJSON
	}
	utils.InitLogging(utils.LoggingConfig{
		Level:    level,
		Encoding: encoding,
		LogFile:  *g.LogFile,
	})
}

// Execute executes the specified command
func Execute(g Application, cmd string) error {
	if cmd == g.VersionCmd.FullCommand() {
		return printVersion(*g.VersionCmd.Output)
	}

	config, err := g.Config()
	if err != nil {
		return trace.Wrap(err)
	}
	switch cmd {
	case g.LambdaCmd.FullCommand():
		return startLambda(*config)
	case g.HandleCmd.FullCommand():
		return handleFile(*config, *g.HandleCmd.Path)
	case g.WatchCmd.FullCommand():
		return watch(*config)
	}
	return trace.NotFound("unknown command %v", cmd)
}

func runningInLambda() bool {
	return os.Getenv(constants.EnvLambdaFunctionName) != ""
}
