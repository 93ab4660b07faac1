package interview

import (
	"fmt"
	"regexp"
	"strings"

	"quartz/app/service/roster"
	"quartz/app/util/timefmt"
)

const (
	summaryHeader  = "CONVERSATION SUMMARY:"
	summaryClosing = "Information recorded for review."
	maxKeyPoints   = 4
)

var summaryTimePattern = regexp.MustCompile(`(\d{1,2}):?(\d{2})?\s*([aApP][mM])?`)

// Summarize compiles the interview into a short fixed-format report: an
// optional time-edit line, at most four deduplicated key points pulled from
// the paired user/assistant turns, and a closing line. Deterministic for a
// given message history.
func Summarize(messages []Message, agent *roster.Agent) string {
	userMessages := filterByRole(messages, RoleUser)
	assistantMessages := filterByRole(messages, RoleAssistant)

	pairCount := len(userMessages)
	if len(assistantMessages) < pairCount {
		pairCount = len(assistantMessages)
	}

	var keyPoints []string

	for i := 0; i < pairCount; i++ {
		userMsg := userMessages[i]
		userLower := strings.ToLower(userMsg)

		if m := summaryTimePattern.FindStringSubmatch(userMsg); m != nil && !anyPointContains(keyPoints, "arrival time") {
			minute := m[2]
			if minute == "" {
				minute = "00"
			}
			period := strings.ToUpper(m[3])
			if period == "" {
				period = "AM"
			}
			keyPoints = append(keyPoints, fmt.Sprintf("Arrival time: %s:%s %s", m[1], minute, period))
		}

		if containsAny(userLower, "meeting", "conference", "briefing") {
			keyPoints = append(keyPoints, "Reason: Scheduled meeting")
		} else if containsAny(userLower, "glitch", "error", "technical", "system wrong") {
			keyPoints = append(keyPoints, "Reason: Technical/system issues")
		} else if containsAny(userLower, "early", "before time", "arrived early") {
			keyPoints = append(keyPoints, "Reason: Early arrival for preparation")
		}

		if containsAny(userLower, "work", "preparation", "routine", "task") && !anyPointContains(keyPoints, "activities:") {
			keyPoints = append(keyPoints, "Activities: Work-related tasks")
		}

		if containsAny(userLower, "no one", "nobody", "alone", "verify") {
			keyPoints = append(keyPoints, "Verification: No witnesses mentioned")
		} else if containsAny(userLower, "supervisor", "manager", "colleague", "team") {
			keyPoints = append(keyPoints, "Verification: Colleagues involved")
		}
	}

	uniquePoints := dedupe(keyPoints)

	lines := []string{summaryHeader}

	editedStart := timefmt.Normalize(agentStart(agent, sourceDisputed))
	systemStart := timefmt.Normalize(agentStart(agent, sourceSystem))

	if editedStart != timefmt.Unknown && systemStart != timefmt.Unknown {
		if diff, ok := timefmt.DifferenceMinutes(editedStart, systemStart); ok && diff != 0 {
			lines = append(lines, fmt.Sprintf("Time edit: %s → %s (%d min difference)", systemStart, editedStart, diff))
		}
	}

	if len(uniquePoints) > maxKeyPoints {
		uniquePoints = uniquePoints[len(uniquePoints)-maxKeyPoints:]
	}
	lines = append(lines, uniquePoints...)

	lines = append(lines, summaryClosing)

	return strings.Join(lines, "\n")
}

func filterByRole(messages []Message, role string) []string {
	var out []string
	for _, msg := range messages {
		if msg.Role == role {
			out = append(out, msg.Content)
		}
	}
	return out
}

func containsAny(text string, words ...string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

func anyPointContains(points []string, fragment string) bool {
	for _, point := range points {
		if strings.Contains(strings.ToLower(point), fragment) {
			return true
		}
	}
	return false
}

func dedupe(points []string) []string {
	seen := make(map[string]struct{}, len(points))
	var out []string

	for _, point := range points {
		if _, ok := seen[point]; ok {
			continue
		}
		seen[point] = struct{}{}
		out = append(out, point)
	}

	return out
}
