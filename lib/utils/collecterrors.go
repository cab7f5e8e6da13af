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
	"context"

	"github.com/gravitational/trace"
)

// CollectErrors receives exactly cap(errC) results from errC and returns
// an aggregate of the non-nil ones, or nil if all of them succeeded.
// If the context expires first, the errors seen so far are returned
// together with the context error
func CollectErrors(ctx context.Context, errC chan error) error {
	var errors []error
	for left := cap(errC); left > 0; left-- {
		select {
		case <-ctx.Done():
			errors = append(errors, trace.Wrap(ctx.Err()))
			return trace.NewAggregate(errors...)
		case err := <-errC:
			if err != nil {
				errors = append(errors, err)
			}
		}
	}
	return trace.NewAggregate(errors...)
}
