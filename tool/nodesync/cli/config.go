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
	"github.com/gravitational/nodesync/lib/config"

	"github.com/gravitational/trace"
)

// Config returns the configuration read from the configuration file,
// if any, with the command line flags applied on top
func (g Application) Config() (*config.Config, error) {
	cfg := &config.Config{}
	if *g.ConfigFile != "" {
		var err error
		cfg, err = config.ReadFile(*g.ConfigFile)
		if err != nil {
			return nil, trace.Wrap(err)
		}
	}
	cfg.Merge(g.flagConfig())
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return cfg, nil
}

func (g Application) flagConfig() config.Config {
	return config.Config{
		ChefURL:      *g.ChefURL,
		ChefUser:     *g.ChefUser,
		ChefKeyPath:  *g.ChefKeyPath,
		Insecure:     *g.Insecure,
		Region:       *g.Region,
		Table:        *g.Table,
		BatchMode:    *g.BatchMode,
		DeleteClient: *g.DeleteClient,
		Queue:        *g.WatchCmd.Queue,
		HTTPTimeout:  config.Duration(*g.HTTPTimeout),
	}
}
