package interview

import (
	"regexp"
	"strings"

	"quartz/app/service/roster"
	"quartz/app/util/timefmt"
)

type textScope int

const (
	scopeRecent textScope = iota
	scopeAll
)

// arrivalTimePattern is deliberately permissive: any numeric token counts as
// a stated time. Input is lower-cased before matching.
var arrivalTimePattern = regexp.MustCompile(`\d{1,2}:?(\d{2})?\s*(am|pm)?`)

type factRule struct {
	fact     Fact
	scope    textScope
	keywords []string
	pattern  *regexp.Regexp
	clears   Issue
}

// factRules is the ordered (predicate, effect) table driving extraction.
// Keyword hits are case-insensitive substring matches, so word lists must be
// curated with containment in mind ("about" also matches "roundabout").
var factRules = []factRule{
	{
		fact:     FactWasInActivity,
		scope:    scopeAll,
		keywords: []string{"meeting", "training", "session", "conference", "briefing", "workshop"},
	},
	{
		fact:     FactStatedArrivalTime,
		scope:    scopeRecent,
		keywords: []string{"arrived", "came", "reached", "started", "clocked", "entered", "early", "before"},
		pattern:  arrivalTimePattern,
	},
	{
		fact:     FactMentionedOrganizer,
		scope:    scopeRecent,
		keywords: []string{"supervisor", "manager", "team lead", "organized", "lead", "headed", "colleague", "coworker"},
	},
	{
		fact:     FactProvidedDuration,
		scope:    scopeRecent,
		keywords: []string{"minutes", "hours", "duration", "lasted", "until", "from", "about"},
	},
	{
		fact:     FactMentionedPurpose,
		scope:    scopeRecent,
		keywords: []string{"topic", "about", "purpose", "discuss", "agenda", "subject", "work", "preparation"},
	},
	{
		fact:     FactExplainedPhoneDiscrepancy,
		scope:    scopeRecent,
		keywords: []string{"glitch", "error", "technical", "issue", "problem", "malfunction", "wrong", "incorrect", "faulty"},
		clears:   IssuePhoneVsEdited,
	},
}

func (r factRule) matches(text string) bool {
	if r.pattern != nil && r.pattern.MatchString(text) {
		return true
	}

	for _, word := range r.keywords {
		if strings.Contains(text, word) {
			return true
		}
	}

	return false
}

// extractFacts runs the rule table over the lower-cased recent and full user
// text and updates the tracker in place.
func extractFacts(tracker *Tracker, recentText, allText string) {
	for _, rule := range factRules {
		text := recentText
		if rule.scope == scopeAll {
			text = allText
		}

		if !rule.matches(text) {
			continue
		}

		tracker.establish(rule.fact)
		if rule.clears != "" {
			tracker.clearIssue(rule.clears)
		}
	}
}

// detectDiscrepancies compares the phone and system start times against the
// agent-edited one and records unexplained differences as unresolved issues.
// Runs every turn, independent of message text.
func detectDiscrepancies(tracker *Tracker, agent *roster.Agent) {
	phoneTime := timefmt.Normalize(agentStart(agent, sourcePhone))
	systemTime := timefmt.Normalize(agentStart(agent, sourceSystem))
	editedTime := timefmt.Normalize(agentStart(agent, sourceDisputed))

	if diff, ok := timefmt.DifferenceMinutes(phoneTime, editedTime); ok && diff > 0 &&
		!tracker.established(FactExplainedPhoneDiscrepancy) {
		tracker.addIssue(IssuePhoneVsEdited)
	}

	if diff, ok := timefmt.DifferenceMinutes(systemTime, editedTime); ok && diff > 0 &&
		!tracker.established(FactExplainedSystemDiscrepancy) {
		tracker.addIssue(IssueSystemVsEdited)
	}
}

type timeSource int

const (
	sourceSchedule timeSource = iota
	sourceSystem
	sourcePhone
	sourceDisputed
)

// agentStart reads one of the four start-time points, treating a missing
// agent context as absent data rather than an error.
func agentStart(agent *roster.Agent, source timeSource) string {
	if agent == nil {
		return ""
	}

	switch source {
	case sourceSchedule:
		return agent.Schedule.StartTime
	case sourceSystem:
		return agent.System.StartTime
	case sourcePhone:
		return agent.Phone.StartTime
	default:
		return agent.AgentDisputed.StartTime
	}
}
