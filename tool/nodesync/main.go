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

package main

import (
	"os"

	"github.com/gravitational/nodesync/tool/nodesync/cli"

	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

func main() {
	app := kingpin.New("nodesync", "Synchronizes Chef nodes and instance metadata with Auto Scaling lifecycle events.")
	if err := run(app); err != nil {
		log.Error(trace.DebugReport(err))
		os.Exit(255)
	}
}

func run(app *kingpin.Application) error {
	nodesync := cli.RegisterCommands(app)
	return cli.Run(nodesync, os.Args[1:])
}
