// Package cache holds the user-list cache used by the capture service.
//
// The list endpoint returns every captured address; caching the encoded
// result means operators polling it do not scan the table on each call.
// A successful capture invalidates the cached list.
package cache

import (
	"context"

	"github.com/sakif/ui-feedback/internal/model"
)

// Noop never stores anything. It is the default when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context) ([]model.User, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, []model.User) error         { return nil }
func (Noop) Invalidate(context.Context) error                { return nil }
