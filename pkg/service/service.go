// Package service runs the long-lived parts of the app together.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Service is started once and stopped with a deadline.
type Service interface {
	fmt.Stringer
	Run()
	Shutdown(ctx context.Context) error
}

// Group starts services in the order of adding
// and stops them in the reverse order.
type Group struct {
	list []Service
}

func (g *Group) Add(services ...Service) { g.list = append(g.list, services...) }

func (g *Group) Start() {
	for _, s := range g.list {
		s.Run()
	}
}

// Shutdown stops every service even if some of them fail.
// Cancellation is not an error.
func (g *Group) Shutdown(ctx context.Context) error {
	var result *multierror.Error
	for i := len(g.list) - 1; i >= 0; i-- {
		if err := g.list[i].Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			result = multierror.Append(result, fmt.Errorf("%v: %w", g.list[i], err))
		}
	}
	return result.ErrorOrNil()
}
