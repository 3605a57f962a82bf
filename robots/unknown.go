package robots

import (
	"context"
	"fmt"
	"strings"
)

// UnknownPolicy settles an Unknown decision: true lets the crawl go on.
type UnknownPolicy func(ctx context.Context, d Decision) (bool, error)

func AllowUnknown(context.Context, Decision) (bool, error) { return true, nil }

func DenyUnknown(context.Context, Decision) (bool, error) { return false, nil }

// AskOperator defers the choice to ask, typically a terminal prompt.
func AskOperator(ask func(ctx context.Context, d Decision) (bool, error)) UnknownPolicy {
	return func(ctx context.Context, d Decision) (bool, error) {
		if ask == nil {
			return false, nil
		}
		return ask(ctx, d)
	}
}

// ParseUnknownPolicy maps "allow", "deny" or "ask" to a policy. ask is only
// used for "ask".
func ParseUnknownPolicy(name string, ask func(ctx context.Context, d Decision) (bool, error)) (UnknownPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "allow":
		return AllowUnknown, nil
	case "deny":
		return DenyUnknown, nil
	case "ask", "":
		return AskOperator(ask), nil
	default:
		return nil, fmt.Errorf("unknown robots policy %q, want allow, deny or ask", name)
	}
}
