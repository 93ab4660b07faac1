package interview

import (
	"fmt"
	"strings"
	"time"

	"quartz/app/service/roster"
	"quartz/app/util/timefmt"
)

// timeScenario classifies the time-point constellation the interview opens
// with, so the first question can reference the actual discrepancy instead of
// a generic prompt.
type timeScenario string

const (
	scenarioLargeDiscrepancyBoth timeScenario = "large_discrepancy_both"
	scenarioSystemVsEditedLarge  timeScenario = "system_vs_edited_large"
	scenarioSignificantEdit      timeScenario = "significant_edit"
	scenarioPhoneSupportsEdit    timeScenario = "phone_supports_edit"
	scenarioModerateEdit         timeScenario = "moderate_edit"
	scenarioPhoneDisagrees       timeScenario = "phone_disagrees"
	scenarioMissingSystemTime    timeScenario = "missing_system_time"
	scenarioMissingPhoneTime     timeScenario = "missing_phone_time"
	scenarioGeneralInquiry       timeScenario = "general_inquiry"
)

// minuteDiff carries a minute difference where a zero or unparsable value
// counts as "no usable signal" for scenario classification.
type minuteDiff struct {
	value int
	ok    bool
}

func (d minuteDiff) usable() bool {
	return d.ok && d.value != 0
}

func diffBetween(a, b string) minuteDiff {
	value, ok := timefmt.DifferenceMinutes(a, b)
	return minuteDiff{value: value, ok: ok}
}

// OpeningQuestion produces the first assistant message for a session:
// greeting lines, the shift under review, the size of the edit if known, and
// a scenario-specific question about the discrepancy.
func OpeningQuestion(agent *roster.Agent) string {
	agentName := ""
	if agent != nil {
		agentName = agent.Name
	}

	systemStart := timefmt.Normalize(agentStart(agent, sourceSystem))
	phoneStart := timefmt.Normalize(agentStart(agent, sourcePhone))
	editedStart := timefmt.Normalize(agentStart(agent, sourceDisputed))

	startDiff := diffBetween(editedStart, systemStart)
	phoneSystemDiff := diffBetween(phoneStart, systemStart)
	phoneEditedDiff := diffBetween(phoneStart, editedStart)

	scenario := classifyScenario(systemStart, phoneStart, editedStart, startDiff, phoneSystemDiff, phoneEditedDiff)
	question := scenarioQuestion(scenario, systemStart, phoneStart, editedStart, startDiff, phoneEditedDiff)

	lines := []string{
		fmt.Sprintf("Hi %s,", agentName),
		"",
		fmt.Sprintf("I am reviewing your work session for %s.", shiftDate(agent)),
		"",
	}

	if startDiff.ok {
		lines = append(lines, fmt.Sprintf("You edited your start time by %d minutes.", startDiff.value))
	}

	lines = append(lines, "\n"+question)

	return strings.Join(lines, "\n")
}

func classifyScenario(systemStart, phoneStart, editedStart string, startDiff, phoneSystemDiff, phoneEditedDiff minuteDiff) timeScenario {
	if systemStart == timefmt.Unknown && editedStart != timefmt.Unknown {
		return scenarioMissingSystemTime
	}

	if phoneStart == timefmt.Unknown && editedStart != timefmt.Unknown {
		return scenarioMissingPhoneTime
	}

	switch {
	case startDiff.usable() && startDiff.value > 30:
		if phoneEditedDiff.usable() && phoneEditedDiff.value > 15 {
			return scenarioLargeDiscrepancyBoth
		}
		if phoneSystemDiff.usable() && phoneSystemDiff.value < 5 {
			return scenarioSystemVsEditedLarge
		}
		return scenarioSignificantEdit

	case startDiff.usable() && startDiff.value > 15:
		if phoneEditedDiff.usable() && phoneEditedDiff.value < 10 {
			return scenarioPhoneSupportsEdit
		}
		return scenarioModerateEdit

	case phoneStart != timefmt.Unknown && phoneEditedDiff.usable() && phoneEditedDiff.value > 20:
		return scenarioPhoneDisagrees

	default:
		return scenarioGeneralInquiry
	}
}

func scenarioQuestion(scenario timeScenario, systemStart, phoneStart, editedStart string, startDiff, phoneEditedDiff minuteDiff) string {
	switch scenario {
	case scenarioLargeDiscrepancyBoth:
		return fmt.Sprintf("I notice you changed your start time from %s to %s (%d minutes), and your phone shows %s. Can you walk me through what happened during this time period?",
			systemStart, editedStart, startDiff.value, phoneStart)

	case scenarioSystemVsEditedLarge:
		return fmt.Sprintf("You've edited your start time from %s to %s - a difference of %d minutes. What were you doing during this extended period before your scheduled start?",
			systemStart, editedStart, startDiff.value)

	case scenarioSignificantEdit:
		return fmt.Sprintf("I see you adjusted your start time by %d minutes from the system-recorded %s to %s. What prompted this significant change to your recorded time?",
			startDiff.value, systemStart, editedStart)

	case scenarioPhoneSupportsEdit:
		return fmt.Sprintf("Your phone data shows %s, which is closer to your edited time of %s than the system time of %s. What explains the difference between your phone and system recordings?",
			phoneStart, editedStart, systemStart)

	case scenarioModerateEdit:
		return fmt.Sprintf("You edited your start time from %s to %s. Could you explain the reason for this %d-minute adjustment?",
			systemStart, editedStart, startDiff.value)

	case scenarioPhoneDisagrees:
		return fmt.Sprintf("Your phone recorded %s, but you've entered %s - a difference of %d minutes. What accounts for this discrepancy with your phone data?",
			phoneStart, editedStart, phoneEditedDiff.value)

	case scenarioMissingSystemTime:
		return fmt.Sprintf("You've entered your start time as %s, but the system didn't capture an automatic time. Could you describe how you tracked your arrival and what you were working on initially?",
			editedStart)

	case scenarioMissingPhoneTime:
		return fmt.Sprintf("You recorded your start time as %s compared to the system time of %s. Without phone data available, how did you determine and verify your actual arrival time?",
			editedStart, systemStart)

	default:
		return fmt.Sprintf("I'm reviewing your time entry of %s compared to the system time of %s. Could you provide some context about your activities around this time?",
			editedStart, systemStart)
	}
}

// shiftDate pulls the shift date from the scheduled start time, which may
// carry a leading MM/DD/YYYY token in front of the clock value.
func shiftDate(agent *roster.Agent) string {
	raw := strings.TrimSpace(agentStart(agent, sourceSchedule))
	if raw == "" {
		return "N/A"
	}

	datePart := strings.SplitN(raw, " ", 2)[0]
	dt, err := time.Parse("01/02/2006", datePart)
	if err != nil {
		return "N/A"
	}

	return dt.Format("January 02, 2006")
}
