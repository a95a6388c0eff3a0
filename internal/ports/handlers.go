package ports

import (
	"context"
)

// DestinationSelector collects the next destination from the operator.
//
// names is the ordered list of market names; the returned text is either an
// index into that list or a (case-sensitive) part of a name. The call blocks
// until a line is available or ctx is done.
type DestinationSelector interface {
	RequestDestination(ctx context.Context, names []string) (string, error)
}

// CommandSource reads one free-form command line from the operator.
type CommandSource interface {
	RequestCommand(ctx context.Context) (string, error)
}

// SelectorFunc adapts a function to DestinationSelector.
type SelectorFunc func(ctx context.Context, names []string) (string, error)

func (f SelectorFunc) RequestDestination(ctx context.Context, names []string) (string, error) {
	return f(ctx, names)
}
