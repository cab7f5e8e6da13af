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

package utils

import (
	"io/ioutil"
	"log/syslog"
	"os"

	"github.com/gravitational/nodesync/lib/constants"
	"github.com/gravitational/nodesync/lib/defaults"

	log "github.com/sirupsen/logrus"
	syslogrus "github.com/sirupsen/logrus/hooks/syslog"
)

// LoggingConfig describes the process logging setup
type LoggingConfig struct {
	// Level is the minimum level of logged entries
	Level log.Level
	// Encoding is either constants.EncodingText or constants.EncodingJSON
	Encoding string
	// LogFile optionally duplicates all entries into a file
	LogFile string
}

// InitLogging configures the standard logger: entries go to stderr
// in the requested encoding and, if configured, to a log file
func InitLogging(config LoggingConfig) {
	log.SetLevel(config.Level)
	log.SetOutput(os.Stderr)
	log.SetFormatter(NewFormatter(config.Encoding))
	if config.LogFile != "" {
		log.StandardLogger().Hooks.Add(&Hook{
			path:      config.LogFile,
			formatter: &log.TextFormatter{DisableColors: true, FullTimestamp: true},
		})
	}
}

// NewFormatter returns the log formatter for the specified encoding
func NewFormatter(encoding string) log.Formatter {
	if encoding == constants.EncodingJSON {
		return &log.JSONFormatter{}
	}
	return &log.TextFormatter{FullTimestamp: true}
}

// Hook implements log.Hook and duplicates log entries into a file
type Hook struct {
	path      string
	formatter log.Formatter
}

// Fire writes the provided log entry to the configured log file
//
// It never returns an error to avoid default logrus behavior of spitting
// out fire hook errors into stderr.
func (r *Hook) Fire(entry *log.Entry) error {
	msg, err := r.formatter.Format(entry)
	if err != nil {
		defaultLogger().Warnf("Failed to convert log entry: %v.", err)
		return nil
	}

	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, defaults.SharedReadWriteMask)
	if err != nil {
		defaultLogger().Warnf("Failed to open %v: %v.", r.path, err)
		return nil
	}
	defer f.Close()

	if _, err = f.Write(msg); err != nil {
		defaultLogger().Warnf("Failed to write log entry: %v.", err)
	}
	return nil
}

// Levels returns all levels
func (r *Hook) Levels() []log.Level {
	return log.AllLevels
}

func defaultLogger() *log.Logger {
	logger := log.New()
	hook, err := syslogrus.NewSyslogHook("", "", syslog.LOG_WARNING, "")
	if err != nil {
		return logger
	}
	logger.AddHook(hook)
	logger.Out = ioutil.Discard
	return logger
}
