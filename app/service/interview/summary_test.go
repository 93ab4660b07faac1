package interview

import (
	"strings"
	"testing"

	"quartz/app/service/roster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeEmptyConversation(t *testing.T) {
	out := Summarize(nil, nil)

	lines := strings.Split(out, "\n")
	require.Equal(t, []string{summaryHeader, summaryClosing}, lines)
}

func TestSummarizeFullConversation(t *testing.T) {
	agent := discrepancyAgent()

	messages := []Message{
		{Role: RoleAssistant, Content: "Why did you edit your start time?"},
		{Role: RoleUser, Content: "I arrived at 8:15 AM for a meeting"},
		{Role: RoleAssistant, Content: "Who organized this meeting and what was its purpose?"},
		{Role: RoleUser, Content: "My supervisor organized it, we did preparation work"},
	}

	out := Summarize(messages, agent)
	lines := strings.Split(out, "\n")

	assert.Equal(t, summaryHeader, lines[0])
	assert.Equal(t, "Time edit: 09:00:00 AM → 08:15:00 AM (45 min difference)", lines[1])
	assert.Contains(t, lines, "Arrival time: 8:15 AM")
	assert.Contains(t, lines, "Reason: Scheduled meeting")
	assert.Contains(t, lines, "Verification: Colleagues involved")
	assert.Equal(t, summaryClosing, lines[len(lines)-1])
}

func TestSummarizeSingleArrivalTimePoint(t *testing.T) {
	messages := []Message{
		{Role: RoleAssistant, Content: "First?"},
		{Role: RoleUser, Content: "I came at 8:15 AM"},
		{Role: RoleAssistant, Content: "Second?"},
		{Role: RoleUser, Content: "Actually it was 8:30 AM"},
	}

	out := Summarize(messages, nil)

	assert.Equal(t, 1, strings.Count(out, "Arrival time:"))
	assert.Contains(t, out, "Arrival time: 8:15 AM")
}

func TestSummarizeReasonPriority(t *testing.T) {
	// Meeting wins over the technical classification when both appear.
	messages := []Message{
		{Role: RoleAssistant, Content: "Q?"},
		{Role: RoleUser, Content: "there was a briefing and also a system error"},
	}

	out := Summarize(messages, nil)

	assert.Contains(t, out, "Reason: Scheduled meeting")
	assert.NotContains(t, out, "Reason: Technical/system issues")
}

func TestSummarizeKeepsLastFourPoints(t *testing.T) {
	messages := []Message{
		{Role: RoleAssistant, Content: "Q1?"},
		{Role: RoleUser, Content: "I came at 7:45 AM early for preparation work"},
		{Role: RoleAssistant, Content: "Q2?"},
		{Role: RoleUser, Content: "I was alone, nobody can verify"},
	}

	out := Summarize(messages, nil)
	lines := strings.Split(out, "\n")

	// header + at most four points + closing
	assert.LessOrEqual(t, len(lines), 6)
	assert.Contains(t, out, "Verification: No witnesses mentioned")
}

func TestSummarizeNoTimeEditLineWhenTimesMatch(t *testing.T) {
	agent := &roster.Agent{
		System:        roster.TimeWindow{StartTime: "09:00:00 AM"},
		AgentDisputed: roster.TimeWindow{StartTime: "09:00:00 AM"},
	}

	out := Summarize(nil, agent)

	assert.NotContains(t, out, "Time edit:")
}

func TestSummarizeDeterministic(t *testing.T) {
	messages := []Message{
		{Role: RoleAssistant, Content: "Q?"},
		{Role: RoleUser, Content: "meeting at 9:30 am with my manager, about an hour"},
	}

	assert.Equal(t, Summarize(messages, discrepancyAgent()), Summarize(messages, discrepancyAgent()))
}
