// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package guard

import (
	"context"

	"github.com/hashicorp/go-multierror"
)

// Do runs fn inside a guarded span. The Guard is constructed immediately before fn runs and disposed after fn
// finishes by any path: a normal return, a panic, or runtime.Goexit.
//
// The returned error holds fn's error, the restoration error, or both. A panic in fn keeps propagating once the
// environment has been restored; if restoration failed too, the panic value becomes a *PanicError carrying both.
func Do(ctx context.Context, cfg Config, fn func() error) (err error) {
	g, err := NewWithConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		r := recover()
		dErr := g.Dispose()
		if r != nil {
			if dErr != nil {
				panic(&PanicError{Value: r, Err: dErr})
			}
			panic(r)
		}
		if dErr != nil {
			err = multierror.Append(err, dErr).ErrorOrNil()
		}
	}()

	return fn()
}
