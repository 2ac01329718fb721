package badge

// Metric names one number a domain gatherer produces for a user.
type Metric string

const (
	MetricTotalEntries         Metric = "total_entries"
	MetricEntryWords           Metric = "entry_words"
	MetricTotalWords           Metric = "total_words"
	MetricCurrentStreak        Metric = "current_streak"
	MetricWrittenBefore7am     Metric = "written_before_7am"
	MetricWrittenAfter10pm     Metric = "written_after_10pm"
	MetricEntriesBefore7am     Metric = "entries_before_7am"
	MetricEntriesAfterMidnight Metric = "entries_after_midnight"
	MetricEntriesThisWeek      Metric = "entries_this_week"
	MetricEntriesThisMonth     Metric = "entries_this_month"
	MetricEntriesToday         Metric = "entries_today"

	MetricTotalEvents       Metric = "total_events"
	MetricDistinctEventDays Metric = "distinct_event_days"

	MetricTotalFriends Metric = "total_friends"

	MetricTotalChats    Metric = "total_chats"
	MetricTotalMessages Metric = "total_messages"

	MetricCompletedFocus Metric = "completed_focus"
)

// Rule ties a catalog badge to the metric that drives it. Boolean conditions
// are rules with threshold 1 fed a 0/1 metric.
type Rule struct {
	Domain    Domain
	Badge     string
	Metric    Metric
	Threshold int
}

// Rules is the full award table. Badge names must match badges.name.
var Rules = []Rule{
	{DomainJournal, "First Steps", MetricTotalEntries, 1},
	{DomainJournal, "Wellness Warrior", MetricTotalEntries, 30},
	{DomainJournal, "Reflection Master", MetricTotalEntries, 100},
	{DomainJournal, "Journal Journey", MetricTotalEntries, 250},
	{DomainJournal, "Deep Thinker", MetricEntryWords, 500},
	{DomainJournal, "Expressive Writer", MetricEntryWords, 1000},
	{DomainJournal, "Word Wizard", MetricTotalWords, 50000},
	{DomainJournal, "Consistency King", MetricCurrentStreak, 7},
	{DomainJournal, "Perfect Week", MetricCurrentStreak, 7},
	{DomainJournal, "Consistent Contributor", MetricCurrentStreak, 30},
	{DomainJournal, "Perfect Month", MetricCurrentStreak, 30},
	{DomainJournal, "Dedication Demon", MetricCurrentStreak, 90},
	{DomainJournal, "Early Bird", MetricWrittenBefore7am, 1},
	{DomainJournal, "Midnight Owl", MetricWrittenAfter10pm, 1},
	{DomainJournal, "Morning Person", MetricEntriesBefore7am, 5},
	{DomainJournal, "Night Writer", MetricEntriesAfterMidnight, 5},
	{DomainJournal, "Week Warrior", MetricEntriesThisWeek, 7},
	{DomainJournal, "Monthly Champion", MetricEntriesThisMonth, 20},
	{DomainJournal, "Reflection Ready", MetricEntriesToday, 5},

	{DomainCalendar, "Organized Mind", MetricTotalEvents, 5},
	{DomainCalendar, "Planner Pro", MetricTotalEvents, 10},
	{DomainCalendar, "Organizer Extraordinaire", MetricTotalEvents, 50},
	{DomainCalendar, "Time Master", MetricDistinctEventDays, 7},

	{DomainFriends, "Social Butterfly", MetricTotalFriends, 3},
	{DomainFriends, "Community Builder", MetricTotalFriends, 10},
	{DomainFriends, "Networker Extraordinaire", MetricTotalFriends, 25},

	{DomainChat, "Conversation Starter", MetricTotalChats, 5},
	{DomainChat, "Chat Champion", MetricTotalChats, 20},
	{DomainChat, "Communication Master", MetricTotalMessages, 100},

	{DomainDailyFocus, "Focus Starter", MetricCompletedFocus, 10},
	{DomainDailyFocus, "Goal Achiever", MetricCompletedFocus, 50},
	{DomainDailyFocus, "Focus Master", MetricCompletedFocus, 100},
}

// RulesFor returns the rows of Rules belonging to domain, in table order.
func RulesFor(domain Domain) []Rule {
	var out []Rule
	for _, r := range Rules {
		if r.Domain == domain {
			out = append(out, r)
		}
	}
	return out
}

// RuleByBadge finds the rule for a badge name.
func RuleByBadge(name string) (Rule, bool) {
	for _, r := range Rules {
		if r.Badge == name {
			return r, true
		}
	}
	return Rule{}, false
}

// Clamp caps a raw metric at the rule threshold and floors it at zero.
func (r Rule) Clamp(value int) int {
	if value < 0 {
		return 0
	}
	return min(value, r.Threshold)
}
