// Package robots evaluates a site's robots.txt.
//
// Only user-agent and disallow lines are understood. Disallow values are
// plain path prefixes: allow, crawl-delay and sitemap lines are ignored and
// no wildcard or "$" matching is done.
package robots

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

type Verdict int

const (
	Allowed Verdict = iota
	Denied
	Unknown
)

func (v Verdict) String() string {
	switch v {
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Decision is the answer for one URL.
type Decision struct {
	Verdict Verdict
	URL     string
	Agent   string
	// Prefix is the disallow rule that matched, set when Denied.
	Prefix string
	// Reason and Err explain an Unknown verdict.
	Reason string
	Err    error
}

// Error converts a non-allowed decision into an error value.
func (d Decision) Error() error {
	switch d.Verdict {
	case Denied:
		return &DeniedError{URL: d.URL, Prefix: d.Prefix, Agent: d.Agent}
	case Unknown:
		if d.Err != nil {
			return fmt.Errorf("%w: %s: %w", ErrPolicyUnknown, d.Reason, d.Err)
		}
		return fmt.Errorf("%w: %s", ErrPolicyUnknown, d.Reason)
	default:
		return nil
	}
}

var ErrPolicyUnknown = errors.New("robots.txt policy unknown")

type DeniedError struct {
	URL    string
	Prefix string
	Agent  string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("robots.txt disallows %s for agent %q (rule %q)", e.URL, e.Agent, e.Prefix)
}

// RuleSet holds the disallowed prefixes that apply to one agent, in document
// order. It is never modified after Parse returns.
type RuleSet struct {
	agent    string
	disallow []string
}

func (r *RuleSet) Agent() string {
	return r.agent
}

func (r *RuleSet) Disallowed() []string {
	out := make([]string, len(r.disallow))
	copy(out, r.disallow)
	return out
}

// Check answers whether path may be fetched.
func (r *RuleSet) Check(path string) Decision {
	if path == "" {
		path = "/"
	}
	for _, prefix := range r.disallow {
		if strings.HasPrefix(path, prefix) {
			return Decision{Verdict: Denied, URL: path, Agent: r.agent, Prefix: prefix}
		}
	}
	return Decision{Verdict: Allowed, URL: path, Agent: r.agent}
}

const (
	userAgentDirective = "user-agent:"
	disallowDirective  = "disallow:"
)

// Parse reads a robots.txt document and keeps the disallow rules of every
// group that applies to agent. Groups are delimited by user-agent lines,
// blank lines do not end a group.
func Parse(r io.Reader, agent string) (*RuleSet, error) {
	rs := &RuleSet{agent: agent}
	applies := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(lower, userAgentDirective):
			applies = agentMatches(directiveValue(line, userAgentDirective), agent)
		case strings.HasPrefix(lower, disallowDirective):
			if !applies {
				continue
			}
			if path := directiveValue(line, disallowDirective); path != "" {
				rs.disallow = append(rs.disallow, path)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	return rs, nil
}

func ParseString(doc string, agent string) (*RuleSet, error) {
	return Parse(strings.NewReader(doc), agent)
}

func directiveValue(line, directive string) string {
	return strings.TrimSpace(line[len(directive):])
}

// agentMatches: "*" groups apply to everyone, an agent of "*" takes every
// group, otherwise the group name must be the agent's product token or
// appear inside the agent string.
func agentMatches(group, agent string) bool {
	if group == "*" || agent == "*" {
		return true
	}
	if group == "" {
		return false
	}
	group = strings.ToLower(group)
	agent = strings.ToLower(agent)

	return group == productToken(agent) || strings.Contains(agent, group)
}

func productToken(agent string) string {
	if i := strings.IndexAny(agent, "/ "); i >= 0 {
		return agent[:i]
	}
	return agent
}
