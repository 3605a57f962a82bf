package robots

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		agent string
		want  []string
	}{
		{
			name:  "empty document",
			doc:   "",
			agent: "*",
			want:  nil,
		},
		{
			name:  "wildcard group",
			doc:   "User-agent: *\nDisallow: /private\n",
			agent: "listcrawler/1.0",
			want:  []string{"/private"},
		},
		{
			name:  "case insensitive directives",
			doc:   "USER-AGENT: *\ndisALLOW: /a\nDISALLOW:/b",
			agent: "*",
			want:  []string{"/a", "/b"},
		},
		{
			name:  "other agent group skipped",
			doc:   "User-agent: BadBot\nDisallow: /\n\nUser-agent: *\nDisallow: /tmp/",
			agent: "listcrawler/1.0",
			want:  []string{"/tmp/"},
		},
		{
			name:  "blank lines do not close a group",
			doc:   "User-agent: *\n\nDisallow: /a\n\n\nDisallow: /b\nUser-agent: other\nDisallow: /c",
			agent: "listcrawler",
			want:  []string{"/a", "/b"},
		},
		{
			name:  "matching named group",
			doc:   "User-agent: listcrawler\nDisallow: /slow\nUser-agent: other\nDisallow: /c",
			agent: "ListCrawler/2.1 (+https://example.org)",
			want:  []string{"/slow"},
		},
		{
			name:  "wildcard agent takes every group",
			doc:   "User-agent: a\nDisallow: /a\nUser-agent: b\nDisallow: /b",
			agent: "*",
			want:  []string{"/a", "/b"},
		},
		{
			name:  "comments and other directives ignored",
			doc:   "# hello\nUser-agent: * # everyone\nAllow: /public\nCrawl-delay: 10\nSitemap: http://x/s.xml\nDisallow: /private # secret\n",
			agent: "*",
			want:  []string{"/private"},
		},
		{
			name:  "empty disallow allows everything",
			doc:   "User-agent: *\nDisallow:\n",
			agent: "*",
			want:  nil,
		},
		{
			name:  "disallow before any user-agent",
			doc:   "Disallow: /orphan\nUser-agent: *\nDisallow: /x",
			agent: "*",
			want:  []string{"/x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := ParseString(tt.doc, tt.agent)
			require.NoError(t, err)
			assert.Equal(t, tt.agent, rs.Agent())
			if tt.want == nil {
				assert.Empty(t, rs.Disallowed())
				return
			}
			assert.Equal(t, tt.want, rs.Disallowed())
		})
	}
}

func TestRuleSetCheck(t *testing.T) {
	rs, err := ParseString("User-agent: *\nDisallow: /private\n", "*")
	require.NoError(t, err)

	d := rs.Check("/private/page")
	assert.Equal(t, Denied, d.Verdict)
	assert.Equal(t, "/private", d.Prefix)

	assert.Equal(t, Allowed, rs.Check("/public").Verdict)
	assert.Equal(t, Allowed, rs.Check("").Verdict)
	// prefix match only, no wildcard semantics
	assert.Equal(t, Denied, rs.Check("/privateer").Verdict)
	assert.Equal(t, Allowed, rs.Check("/a/private").Verdict)
}

func TestRuleSetCheckNoDisallow(t *testing.T) {
	docs := []string{
		"",
		"User-agent: *\nAllow: /",
		"User-agent: other\nDisallow: /",
	}
	for _, doc := range docs {
		rs, err := ParseString(doc, "listcrawler")
		require.NoError(t, err)
		for _, path := range []string{"/", "/page/2/", "/private", "/a?b=c"} {
			assert.Equal(t, Allowed, rs.Check(path).Verdict, "doc %q path %q", doc, path)
		}
	}
}

func TestRuleSetImmutable(t *testing.T) {
	rs, err := ParseString("User-agent: *\nDisallow: /a", "*")
	require.NoError(t, err)

	got := rs.Disallowed()
	got[0] = "/"
	assert.Equal(t, []string{"/a"}, rs.Disallowed())
}

func TestDecisionError(t *testing.T) {
	assert.NoError(t, Decision{Verdict: Allowed}.Error())

	err := Decision{Verdict: Denied, URL: "http://x/private", Prefix: "/private", Agent: "*"}.Error()
	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "/private", denied.Prefix)

	cause := errors.New("connection refused")
	err = Decision{Verdict: Unknown, Reason: "fetch failed", Err: cause}.Error()
	assert.ErrorIs(t, err, ErrPolicyUnknown)
	assert.ErrorIs(t, err, cause)
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "allowed", Allowed.String())
	assert.Equal(t, "denied", Denied.String())
	assert.Equal(t, "unknown", Unknown.String())
}
