// Package interview drives the scripted time-discrepancy investigation: it
// tracks established facts and unresolved timing issues per chat session,
// selects the next question, and decides when to stop and summarize.
package interview

import (
	"context"
	"log/slog"
	"strings"

	"quartz/app/service/phrasing"
	"quartz/app/service/roster"

	"github.com/samber/do"
)

const (
	maxQuestions        = 5
	minPhrasedLength    = 8
	qualityEndThreshold = 60
)

var affirmativeTokens = []string{"yes", "correct", "accurate", "confirm", "right", "true", "yeah", "yep"}

// keyPhrases is the controller-level repetition guard applied to phrased
// model output; the selector has its own, stricter topic signatures.
var keyPhrases = []string{
	"why did you edit",
	"phone shows",
	"explain this difference",
	"what activities",
	"who organized",
	"how long",
	"can verify",
	"work-related",
}

type Service struct {
	registry    *Registry
	phrasingSvc *phrasing.Service
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		registry:    do.MustInvoke[*Registry](di),
		phrasingSvc: do.MustInvoke[*phrasing.Service](di),
	}, nil
}

// Analyze recomputes the conversation state snapshot for a session from the
// full message history and the agent's time context.
func (s *Service) Analyze(messages []Message, agent *roster.Agent, sessionID string) Snapshot {
	tracker, release := s.registry.Acquire(sessionID)
	defer release()

	return analyze(tracker, messages, agent)
}

// analyze updates the tracker from the message text and time context, then
// derives the snapshot. Caller holds the session lock.
func analyze(tracker *Tracker, messages []Message, agent *roster.Agent) Snapshot {
	userMessages := filterByRole(messages, RoleUser)
	assistantMessages := filterByRole(messages, RoleAssistant)

	questionCount := 0
	for _, msg := range assistantMessages {
		if strings.HasSuffix(strings.TrimSpace(msg), "?") {
			questionCount++
		}
	}

	lastQuestion := ""
	if len(assistantMessages) > 0 {
		lastQuestion = assistantMessages[len(assistantMessages)-1]
	}

	recentMessages := userMessages
	if len(recentMessages) > 3 {
		recentMessages = recentMessages[len(recentMessages)-3:]
	}
	recentText := strings.ToLower(strings.Join(recentMessages, " "))
	allText := strings.ToLower(strings.Join(userMessages, " "))

	extractFacts(tracker, recentText, allText)
	detectDiscrepancies(tracker, agent)

	facts := tracker.factList()
	issues := tracker.issueList()

	var remaining []string
	for _, fact := range requiredFacts {
		if !tracker.established(fact) {
			remaining = append(remaining, string(fact))
		}
	}

	return Snapshot{
		EstablishedFacts:   facts,
		UnresolvedIssues:   issues,
		RemainingQuestions: remaining,
		ConversationStage:  StageOf(len(facts), len(issues)),
		QualityScore:       len(facts) * pointsPerFact,
		QuestionCount:      questionCount,
		LastQuestionAsked:  lastQuestion,
		AskedQuestions:     append([]string(nil), tracker.AskedQuestions...),
	}
}

// NextQuestion returns the next question for the session, or SummaryRequest.
func (s *Service) NextQuestion(state Snapshot, agent *roster.Agent, recentInput, sessionID string) string {
	tracker, release := s.registry.Acquire(sessionID)
	defer release()

	return nextQuestion(state, agent, recentInput, tracker)
}

// Summarize compiles the established information into the closing report.
func (s *Service) Summarize(messages []Message, agent *roster.Agent) string {
	return Summarize(messages, agent)
}

// Opening produces the first assistant message for a freshly created session.
func (s *Service) Opening(agent *roster.Agent) string {
	return OpeningQuestion(agent)
}

// ShouldEnd is the termination predicate: question budget exhausted, the
// agent confirmed during verification, or enough facts with nothing
// unresolved.
func (s *Service) ShouldEnd(state Snapshot, recentInput string) bool {
	if state.QuestionCount >= maxQuestions {
		return true
	}

	if state.ConversationStage == StageVerification {
		recentLower := strings.ToLower(recentInput)
		for _, token := range affirmativeTokens {
			if strings.Contains(recentLower, token) {
				return true
			}
		}
	}

	return state.QualityScore >= qualityEndThreshold && len(state.UnresolvedIssues) == 0
}

// ProcessTurn handles one chat turn end to end: update state, pick the next
// question or finish with a summary, and optionally run the question through
// the phrasing model. done reports that the returned text is the final
// summary.
func (s *Service) ProcessTurn(ctx context.Context, messages []Message, agent *roster.Agent, sessionID string) (reply string, done bool) {
	tracker, release := s.registry.Acquire(sessionID)

	state := analyze(tracker, messages, agent)

	recentInput := ""
	if len(messages) > 0 && messages[len(messages)-1].Role == RoleUser {
		recentInput = messages[len(messages)-1].Content
	}

	next := nextQuestion(state, agent, recentInput, tracker)
	release()

	if next == SummaryRequest || s.ShouldEnd(state, recentInput) {
		return Summarize(messages, agent), true
	}

	reply = next

	if s.phrasingSvc.Enabled() {
		phrased, err := s.phrasingSvc.Phrase(ctx, phrasing.Request{
			Question:         next,
			QuestionNumber:   state.QuestionCount + 1,
			EstablishedFacts: state.EstablishedFacts,
			RecentInput:      recentInput,
			History:          toHistory(messages),
		})
		switch {
		case err != nil:
			slog.Warn("Phrasing call failed, using the selected question",
				"session_id", sessionID,
				"error", err)
		case !validPhrasing(phrased, messages):
			slog.Debug("Phrasing output rejected",
				"session_id", sessionID,
				"output", phrased)
		default:
			reply = phrased
		}
	}

	if reply != next {
		tracker, release = s.registry.Acquire(sessionID)
		tracker.recordAsked(reply)
		release()
	}

	return reply, false
}

// validPhrasing accepts model output only when it still looks like a fresh
// question: long enough, ends up containing a question mark, and neither
// identical nor topically close to any prior assistant turn.
func validPhrasing(response string, messages []Message) bool {
	response = strings.TrimSpace(response)

	if len(response) < minPhrasedLength || !strings.Contains(response, "?") {
		return false
	}

	for _, prev := range filterByRole(messages, RoleAssistant) {
		if prev == "" {
			continue
		}
		if strings.EqualFold(prev, response) || sharesKeyPhrase(prev, response) {
			return false
		}
	}

	return true
}

func sharesKeyPhrase(a, b string) bool {
	aLower := strings.ToLower(a)
	bLower := strings.ToLower(b)

	for _, phrase := range keyPhrases {
		if strings.Contains(aLower, phrase) && strings.Contains(bLower, phrase) {
			return true
		}
	}

	return false
}

func toHistory(messages []Message) []phrasing.HistoryMessage {
	out := make([]phrasing.HistoryMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, phrasing.HistoryMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return out
}
