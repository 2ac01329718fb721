package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_UniqueNamesAndPositiveThresholds(t *testing.T) {
	seen := make(map[string]bool)
	for _, r := range Rules {
		assert.False(t, seen[r.Badge], "duplicate rule for %q", r.Badge)
		seen[r.Badge] = true
		assert.Positive(t, r.Threshold, r.Badge)
		assert.Contains(t, Domains, r.Domain, r.Badge)
	}
}

func TestRulesFor(t *testing.T) {
	friends := RulesFor(DomainFriends)
	require.Len(t, friends, 3)
	assert.Equal(t, "Social Butterfly", friends[0].Badge)

	for _, d := range Domains {
		assert.NotEmpty(t, RulesFor(d), d)
	}
	assert.Empty(t, RulesFor(Domain("unknown")))
}

func TestRuleByBadge(t *testing.T) {
	r, ok := RuleByBadge("Morning Person")
	require.True(t, ok)
	assert.Equal(t, MetricEntriesBefore7am, r.Metric)
	assert.Equal(t, 5, r.Threshold)

	r, ok = RuleByBadge("Early Bird")
	require.True(t, ok)
	assert.Equal(t, 1, r.Threshold)

	_, ok = RuleByBadge("Nope")
	assert.False(t, ok)
}

func TestRule_Clamp(t *testing.T) {
	r := Rule{Threshold: 10}
	assert.Equal(t, 0, r.Clamp(-3))
	assert.Equal(t, 0, r.Clamp(0))
	assert.Equal(t, 7, r.Clamp(7))
	assert.Equal(t, 10, r.Clamp(10))
	assert.Equal(t, 10, r.Clamp(250))
}

func TestParseDomain(t *testing.T) {
	d, ok := ParseDomain("daily-focus")
	assert.True(t, ok)
	assert.Equal(t, DomainDailyFocus, d)

	_, ok = ParseDomain("Journal")
	assert.False(t, ok)
}
