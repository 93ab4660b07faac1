package interview

import (
	"strings"
	"testing"

	"quartz/app/service/roster"

	"github.com/stretchr/testify/assert"
)

func TestOpeningQuestionGreetingAndDate(t *testing.T) {
	out := OpeningQuestion(discrepancyAgent())

	assert.True(t, strings.HasPrefix(out, "Hi Jane,"))
	assert.Contains(t, out, "I am reviewing your work session for March 15, 2024.")
	assert.Contains(t, out, "You edited your start time by 45 minutes.")
}

func TestOpeningQuestionScenarioLargeDiscrepancyBoth(t *testing.T) {
	agent := &roster.Agent{
		Name:          "Jane",
		System:        roster.TimeWindow{StartTime: "09:00:00 AM"},
		Phone:         roster.TimeWindow{StartTime: "09:30:00 AM"},
		AgentDisputed: roster.TimeWindow{StartTime: "08:15:00 AM"},
	}

	out := OpeningQuestion(agent)

	assert.Contains(t, out, "Can you walk me through what happened during this time period?")
	assert.Contains(t, out, "your phone shows 09:30:00 AM")
}

func TestOpeningQuestionScenarioSignificantEdit(t *testing.T) {
	// Phone agrees with the edited time exactly, so neither phone comparison
	// gives a usable signal and the plain significant-edit wording applies.
	agent := &roster.Agent{
		Name:          "Jane",
		System:        roster.TimeWindow{StartTime: "09:00:00 AM"},
		Phone:         roster.TimeWindow{StartTime: "08:15:00 AM"},
		AgentDisputed: roster.TimeWindow{StartTime: "08:15:00 AM"},
	}

	out := OpeningQuestion(agent)

	assert.Contains(t, out, "What prompted this significant change to your recorded time?")
}

func TestOpeningQuestionScenarioPhoneDisagrees(t *testing.T) {
	agent := &roster.Agent{
		Name:          "Jane",
		System:        roster.TimeWindow{StartTime: "09:00:00 AM"},
		Phone:         roster.TimeWindow{StartTime: "09:30:00 AM"},
		AgentDisputed: roster.TimeWindow{StartTime: "09:00:00 AM"},
	}

	out := OpeningQuestion(agent)

	assert.Contains(t, out, "What accounts for this discrepancy with your phone data?")
}

func TestOpeningQuestionScenarioModerateEdit(t *testing.T) {
	agent := &roster.Agent{
		Name:          "Jane",
		System:        roster.TimeWindow{StartTime: "09:00:00 AM"},
		Phone:         roster.TimeWindow{StartTime: "09:20:00 AM"},
		AgentDisputed: roster.TimeWindow{StartTime: "08:40:00 AM"},
	}

	out := OpeningQuestion(agent)

	assert.Contains(t, out, "Could you explain the reason for this 20-minute adjustment?")
}

func TestOpeningQuestionScenarioPhoneSupportsEdit(t *testing.T) {
	agent := &roster.Agent{
		Name:          "Jane",
		System:        roster.TimeWindow{StartTime: "09:00:00 AM"},
		Phone:         roster.TimeWindow{StartTime: "08:35:00 AM"},
		AgentDisputed: roster.TimeWindow{StartTime: "08:40:00 AM"},
	}

	out := OpeningQuestion(agent)

	assert.Contains(t, out, "What explains the difference between your phone and system recordings?")
}

func TestOpeningQuestionScenarioMissingSystemTime(t *testing.T) {
	agent := &roster.Agent{
		Name:          "Jane",
		AgentDisputed: roster.TimeWindow{StartTime: "08:15:00 AM"},
	}

	out := OpeningQuestion(agent)

	assert.Contains(t, out, "the system didn't capture an automatic time")
	assert.NotContains(t, out, "You edited your start time by")
}

func TestOpeningQuestionScenarioMissingPhoneTime(t *testing.T) {
	agent := &roster.Agent{
		Name:          "Jane",
		System:        roster.TimeWindow{StartTime: "09:00:00 AM"},
		AgentDisputed: roster.TimeWindow{StartTime: "08:55:00 AM"},
	}

	out := OpeningQuestion(agent)

	assert.Contains(t, out, "Without phone data available")
}

func TestOpeningQuestionScenarioGeneralInquiry(t *testing.T) {
	agent := &roster.Agent{
		Name:          "Jane",
		System:        roster.TimeWindow{StartTime: "09:00:00 AM"},
		Phone:         roster.TimeWindow{StartTime: "09:00:00 AM"},
		AgentDisputed: roster.TimeWindow{StartTime: "08:50:00 AM"},
	}

	out := OpeningQuestion(agent)

	assert.Contains(t, out, "Could you provide some context about your activities around this time?")
}

func TestOpeningQuestionNoContext(t *testing.T) {
	out := OpeningQuestion(nil)

	assert.True(t, strings.HasPrefix(out, "Hi ,"))
	assert.Contains(t, out, "I am reviewing your work session for N/A.")
	assert.Contains(t, out, "Could you provide some context")
}

func TestShiftDateMalformed(t *testing.T) {
	agent := &roster.Agent{Schedule: roster.TimeWindow{StartTime: "09:00:00 AM"}}
	assert.Equal(t, "N/A", shiftDate(agent))
}
