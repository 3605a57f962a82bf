package robots

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dreamerjackson/listcrawler/spider"
	"go.uber.org/zap"
)

// Evaluator fetches robots.txt lazily, once per scheme and host, and keeps
// the outcome for the rest of its life.
type Evaluator struct {
	options
	hosts map[string]*hostPolicy
}

type hostPolicy struct {
	robotsURL string
	rules     *RuleSet
	err       error
}

func New(opts ...Option) *Evaluator {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.fetcher == nil {
		options.fetcher = spider.NewFetchService()
	}

	return &Evaluator{
		options: options,
		hosts:   make(map[string]*hostPolicy),
	}
}

// URL returns the robots.txt location for target.
func URL(target *url.URL) string {
	return target.Scheme + "://" + target.Host + "/robots.txt"
}

// Evaluate decides whether target may be fetched. A robots.txt that cannot
// be retrieved gives an Unknown verdict.
func (e *Evaluator) Evaluate(ctx context.Context, target string) Decision {
	u, err := parseTarget(target)
	if err != nil {
		return Decision{Verdict: Unknown, URL: target, Agent: e.agent, Reason: "invalid url", Err: err}
	}

	p := e.policy(ctx, u)
	if p.err != nil {
		return Decision{
			Verdict: Unknown,
			URL:     target,
			Agent:   e.agent,
			Reason:  "fetch " + p.robotsURL + " failed",
			Err:     p.err,
		}
	}

	d := p.rules.Check(u.RequestURI())
	d.URL = target
	if d.Verdict == Denied {
		e.logger.Info("robots.txt disallows url",
			zap.String("url", target),
			zap.String("prefix", d.Prefix),
			zap.String("agent", e.agent))
	}

	return d
}

// Rules returns the rule set for the host of target.
func (e *Evaluator) Rules(ctx context.Context, target string) (*RuleSet, error) {
	u, err := parseTarget(target)
	if err != nil {
		return nil, err
	}
	p := e.policy(ctx, u)
	if p.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPolicyUnknown, p.err)
	}
	return p.rules, nil
}

func (e *Evaluator) policy(ctx context.Context, u *url.URL) *hostPolicy {
	key := strings.ToLower(u.Scheme + "://" + u.Host)
	if p, ok := e.hosts[key]; ok {
		return p
	}

	p := &hostPolicy{robotsURL: URL(u)}
	p.rules, p.err = e.fetch(ctx, p.robotsURL)
	if p.err != nil && ctx.Err() != nil {
		// a cancelled run says nothing about the site, do not remember it
		return p
	}
	e.hosts[key] = p

	return p
}

func (e *Evaluator) fetch(ctx context.Context, robotsURL string) (*RuleSet, error) {
	page, err := e.fetcher.Get(ctx, spider.NewRequest(robotsURL, 0, ""))
	if err != nil {
		fields := []zap.Field{zap.String("url", robotsURL), zap.Error(err)}
		var fe *spider.FetchError
		if errors.As(err, &fe) && fe.StatusCode != 0 {
			fields = append(fields, zap.Int("status", fe.StatusCode))
		}
		e.logger.Warn("failed to fetch robots.txt", fields...)
		return nil, err
	}

	rules, err := Parse(bytes.NewReader(page.Body), e.agent)
	if err != nil {
		e.logger.Warn("failed to parse robots.txt", zap.String("url", robotsURL), zap.Error(err))
		return nil, err
	}

	e.logger.Info("robots.txt loaded",
		zap.String("url", robotsURL),
		zap.String("agent", e.agent),
		zap.Strings("disallow", rules.disallow))

	return rules, nil
}

func parseTarget(target string) (*url.URL, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("url %q is not absolute", target)
	}
	return u, nil
}
