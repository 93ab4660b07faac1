package interview

import (
	"fmt"
	"regexp"
	"strings"

	"quartz/app/service/roster"
	"quartz/app/util/timefmt"
)

// SummaryRequest is the sentinel the selector returns when the interview
// should wrap up instead of asking another question.
const SummaryRequest = "SUMMARY_REQUEST"

const (
	questionInitial      = "Why did you edit your start time from %s to %s?"
	questionActivities   = "You mentioned arriving early. What specific activities were you engaged in before your scheduled start time?"
	questionPurpose      = "Were these activities work-related or personal?"
	questionWitness      = "Is there anyone who can verify your early arrival time?"
	questionPhoneDiff    = "I notice your phone shows %s but you mentioned %s. Can you explain this %v minute difference?"
	questionTracking     = "How do you typically track your work hours when you arrive early?"
	questionVerification = "To confirm: You %s. Is this complete and accurate?"
)

type followupRule struct {
	pattern   *regexp.Regexp
	questions []string
}

// contextualFollowups maps signals in the agent's latest answer to candidate
// follow-up questions. Order matters: the first matching rule wins, and
// within a rule the first not-yet-asked candidate is used.
var contextualFollowups = []followupRule{
	{
		pattern: regexp.MustCompile(`system.*wrong|phone.*wrong`),
		questions: []string{
			"What makes you think the system and phone recordings are incorrect?",
			"How did you determine your actual start time if both system and phone are wrong?",
			"Do you have any other way to verify your arrival time?",
		},
	},
	{
		pattern: regexp.MustCompile(`daily routine|normal routine|regular routine`),
		questions: []string{
			"Could you describe what your daily routine involves when you first arrive?",
			"What specific tasks are part of your morning routine at the office?",
			"When you say 'daily routine', what work activities does that typically include?",
		},
	},
	{
		pattern: regexp.MustCompile(`not specific|nothing specific|just routine`),
		questions: []string{
			"Let me be more specific - were you checking emails, preparing equipment, or something else?",
			"What's the first work-related task you typically complete when you arrive early?",
			"Could you give an example of what you might do during this early arrival time?",
		},
	},
	{
		pattern: regexp.MustCompile(`security|face scan|building.*enter`),
		questions: []string{
			"Does the building security system provide any timestamp confirmation of your arrival?",
			"If you use face scan for tracking, why do you think it didn't record your early arrival?",
			"Can the security system logs verify your entry time?",
		},
	},
	{
		pattern: regexp.MustCompile(`no one|nobody|alone`),
		questions: []string{
			"Since no one was present, how do you typically document your early start times for record-keeping?",
			"What process do you follow to ensure early arrivals are properly recorded when working alone?",
			"Do you use any digital tools or apps to track your time when arriving before others?",
		},
	},
	{
		pattern: regexp.MustCompile(`meeting|conference|briefing`),
		questions: []string{
			"Who organized this meeting and what was its purpose?",
			"Was this meeting scheduled in advance or was it impromptu?",
			"How long did the meeting last and who else attended?",
		},
	},
	{
		pattern: regexp.MustCompile(`glitch|error|technical|issue|problem`),
		questions: []string{
			"Have you experienced similar technical issues with the time tracking system before?",
			"Did you report this technical issue to IT or your supervisor?",
			"What steps did you take to address the technical problem you mentioned?",
		},
	},
	{
		pattern: regexp.MustCompile(`early|before.*time|arrived.*early`),
		questions: []string{
			"What was the reason for arriving early today specifically?",
			"Did you have any urgent tasks that required early preparation?",
			"Is arriving early part of your regular schedule or was this unusual?",
		},
	},
}

// topicSignatures define when two questions cover the same ground: both
// matching any one signature makes them interchangeable, so the second must
// not be asked.
var topicSignatures = []*regexp.Regexp{
	regexp.MustCompile(`what.*activity`),
	regexp.MustCompile(`work.*related`),
	regexp.MustCompile(`personal`),
	regexp.MustCompile(`who.*verify`),
	regexp.MustCompile(`anyone.*verify`),
	regexp.MustCompile(`witness`),
	regexp.MustCompile(`how.*track`),
	regexp.MustCompile(`track.*work`),
	regexp.MustCompile(`record.*time`),
	regexp.MustCompile(`what.*routine`),
	regexp.MustCompile(`daily.*routine`),
	regexp.MustCompile(`morning.*routine`),
	regexp.MustCompile(`technical.*issue`),
	regexp.MustCompile(`system.*wrong`),
	regexp.MustCompile(`phone.*wrong`),
}

// questionsSimilar reports whether two questions share a topic signature.
func questionsSimilar(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	aLower := strings.ToLower(a)
	bLower := strings.ToLower(b)

	if aLower == bLower {
		return true
	}

	for _, sig := range topicSignatures {
		if sig.MatchString(aLower) && sig.MatchString(bLower) {
			return true
		}
	}

	return false
}

// nextQuestion picks the next question to pose, or SummaryRequest when the
// interview is done. Deterministic given identical state, history and input.
// Selected contextual and fallback questions are recorded on the tracker.
func nextQuestion(state Snapshot, agent *roster.Agent, recentInput string, tracker *Tracker) string {
	if state.ConversationStage == StageVerification {
		return fmt.Sprintf(questionVerification, activityDescription(state, agent))
	}

	if state.QuestionCount >= 5 {
		return SummaryRequest
	}

	if question := contextualFollowup(recentInput, tracker); question != "" {
		tracker.recordAsked(question)
		return question
	}

	return fallbackQuestion(state, agent, tracker)
}

// contextualFollowup returns a question that directly follows from the
// agent's latest answer, or "" when nothing applies.
func contextualFollowup(recentInput string, tracker *Tracker) string {
	if recentInput == "" {
		return ""
	}

	inputLower := strings.ToLower(recentInput)

	for _, rule := range contextualFollowups {
		if !rule.pattern.MatchString(inputLower) {
			continue
		}

		for _, candidate := range rule.questions {
			if !anySimilarAsked(candidate, tracker.AskedQuestions) {
				return candidate
			}
		}
	}

	return ""
}

func anySimilarAsked(candidate string, asked []string) bool {
	for _, q := range asked {
		if questionsSimilar(candidate, q) {
			return true
		}
	}
	return false
}

func anyAskedContains(asked []string, fragment string) bool {
	for _, q := range asked {
		if strings.Contains(strings.ToLower(q), fragment) {
			return true
		}
	}
	return false
}

// fallbackQuestion walks the fixed question flow once no contextual follow-up
// fits: unresolved phone discrepancy first, then the opening "why did you
// edit" probe, then one question per missing required fact.
func fallbackQuestion(state Snapshot, agent *roster.Agent, tracker *Tracker) string {
	if state.hasIssue(IssuePhoneVsEdited) && !anyAskedContains(tracker.AskedQuestions, "phone shows") {
		phoneTime := timefmt.Normalize(agentStart(agent, sourcePhone))
		editedTime := timefmt.Normalize(agentStart(agent, sourceDisputed))

		difference := "some"
		if diff, ok := timefmt.DifferenceMinutes(phoneTime, editedTime); ok && diff != 0 {
			difference = fmt.Sprint(diff)
		}

		question := fmt.Sprintf(questionPhoneDiff, phoneTime, editedTime, difference)
		tracker.recordAsked(question)
		return question
	}

	if !anyAskedContains(tracker.AskedQuestions, "why did you edit") && !state.Has(FactStatedArrivalTime) {
		systemTime := timefmt.Normalize(agentStart(agent, sourceSystem))
		editedTime := timefmt.Normalize(agentStart(agent, sourceDisputed))

		if systemTime != timefmt.Unknown && editedTime != timefmt.Unknown {
			question := fmt.Sprintf(questionInitial, systemTime, editedTime)
			tracker.recordAsked(question)
			return question
		}
	}

	questionFlow := []struct {
		fact     Fact
		template string
	}{
		{FactWasInActivity, questionActivities},
		{FactMentionedPurpose, questionPurpose},
		{FactMentionedOrganizer, questionWitness},
		{FactProvidedDuration, questionTracking},
	}

	for _, step := range questionFlow {
		prefix := strings.ToLower(strings.SplitN(step.template, "?", 2)[0])
		if !state.Has(step.fact) && !anyAskedContains(tracker.AskedQuestions, prefix) {
			tracker.recordAsked(step.template)
			return step.template
		}
	}

	return SummaryRequest
}

// activityDescription assembles the clause used by the verification question
// from whatever facts the interview established.
func activityDescription(state Snapshot, agent *roster.Agent) string {
	var parts []string

	if state.Has(FactWasInActivity) {
		parts = append(parts, "were engaged in preparatory work activities")
	}

	if editedTime := timefmt.Normalize(agentStart(agent, sourceDisputed)); editedTime != timefmt.Unknown {
		parts = append(parts, fmt.Sprintf("starting at %s", editedTime))
	}

	if state.Has(FactProvidedDuration) {
		parts = append(parts, "prior to your scheduled start time")
	}

	if len(parts) == 0 {
		return "arrived early and were engaged in work activities"
	}

	return strings.Join(parts, " ")
}
