package interview

import (
	"context"
	"strings"
	"testing"

	"quartz/app/config"
	"quartz/app/service/phrasing"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	di := do.New()
	do.ProvideValue(di, &config.Config{})
	do.Provide(di, phrasing.New)
	do.Provide(di, NewRegistry)

	svc, err := New(di)
	require.NoError(t, err)
	return svc
}

func TestAnalyzeFreshDiscrepancySession(t *testing.T) {
	svc := newTestService(t)

	state := svc.Analyze(nil, discrepancyAgent(), "session-1")

	assert.Empty(t, state.EstablishedFacts)
	assert.ElementsMatch(t, []string{
		string(IssuePhoneVsEdited),
		string(IssueSystemVsEdited),
	}, state.UnresolvedIssues)
	assert.Equal(t, StageInitial, state.ConversationStage)
	assert.Equal(t, 0, state.QualityScore)
	assert.Equal(t, 0, state.QuestionCount)
}

func TestAnalyzeQualityScoreTracksFacts(t *testing.T) {
	svc := newTestService(t)

	messages := []Message{
		{Role: RoleAssistant, Content: "Why did you edit your start time?"},
		{Role: RoleUser, Content: "i was in a meeting with my supervisor for 20 minutes about project prep"},
	}

	state := svc.Analyze(messages, nil, "session-quality")

	assert.Equal(t, len(state.EstablishedFacts)*pointsPerFact, state.QualityScore)
	assert.Equal(t, 100, state.QualityScore)
	assert.Empty(t, state.RemainingQuestions)
	assert.Equal(t, StageVerification, state.ConversationStage)
}

func TestAnalyzeQuestionCountAndLastQuestion(t *testing.T) {
	svc := newTestService(t)

	messages := []Message{
		{Role: RoleAssistant, Content: "Why did you edit your start time?"},
		{Role: RoleUser, Content: "I had a meeting"},
		{Role: RoleAssistant, Content: "Noted, thanks."},
		{Role: RoleAssistant, Content: "Who organized this meeting and what was its purpose?  "},
	}

	state := svc.Analyze(messages, nil, "session-count")

	assert.Equal(t, 2, state.QuestionCount)
	assert.Equal(t, "Who organized this meeting and what was its purpose?  ", state.LastQuestionAsked)
}

func TestAnalyzeClearedPhoneIssueStaysCleared(t *testing.T) {
	svc := newTestService(t)
	agent := discrepancyAgent()

	state := svc.Analyze(nil, agent, "session-clear")
	require.Contains(t, state.UnresolvedIssues, string(IssuePhoneVsEdited))

	messages := []Message{
		{Role: RoleAssistant, Content: "Can you explain this difference?"},
		{Role: RoleUser, Content: "my phone had a glitch that morning"},
	}

	state = svc.Analyze(messages, agent, "session-clear")
	assert.NotContains(t, state.UnresolvedIssues, string(IssuePhoneVsEdited))
	assert.Contains(t, state.UnresolvedIssues, string(IssueSystemVsEdited))

	// Re-analyzing the same session must not resurrect the explained issue.
	state = svc.Analyze(messages, agent, "session-clear")
	assert.NotContains(t, state.UnresolvedIssues, string(IssuePhoneVsEdited))
}

func TestAnalyzeRecentWindowIsLastThreeUserMessages(t *testing.T) {
	svc := newTestService(t)

	messages := []Message{
		{Role: RoleUser, Content: "it lasted 20 minutes"},
		{Role: RoleUser, Content: "filler one"},
		{Role: RoleUser, Content: "filler two"},
		{Role: RoleUser, Content: "filler three"},
	}

	state := svc.Analyze(messages, nil, "session-window")

	// Duration talk scrolled out of the recent window, so the fact is gone,
	// but the activity scan still sees the whole conversation.
	assert.NotContains(t, state.EstablishedFacts, string(FactProvidedDuration))
}

func TestShouldEnd(t *testing.T) {
	svc := newTestService(t)

	assert.True(t, svc.ShouldEnd(Snapshot{QuestionCount: 5}, ""))
	assert.True(t, svc.ShouldEnd(Snapshot{ConversationStage: StageVerification}, "Yes, that is correct"))
	assert.True(t, svc.ShouldEnd(Snapshot{QualityScore: 60}, "whatever"))

	assert.False(t, svc.ShouldEnd(Snapshot{QualityScore: 60, UnresolvedIssues: []string{string(IssueSystemVsEdited)}}, ""))
	assert.False(t, svc.ShouldEnd(Snapshot{QualityScore: 40, ConversationStage: StageInvestigation}, "yes"))
	assert.False(t, svc.ShouldEnd(Snapshot{}, ""))
}

func TestProcessTurnAsksAboutPhoneDiscrepancyFirst(t *testing.T) {
	svc := newTestService(t)

	reply, done := svc.ProcessTurn(context.Background(), nil, discrepancyAgent(), "session-turn")

	require.False(t, done)
	assert.Equal(t,
		"I notice your phone shows 09:00:00 AM but you mentioned 08:15:00 AM. Can you explain this 45 minute difference?",
		reply)
}

func TestProcessTurnFinishesAfterQuestionBudget(t *testing.T) {
	svc := newTestService(t)

	var messages []Message
	for i := 0; i < 5; i++ {
		messages = append(messages,
			Message{Role: RoleAssistant, Content: "Another question?"},
			Message{Role: RoleUser, Content: "an answer"},
		)
	}

	reply, done := svc.ProcessTurn(context.Background(), messages, discrepancyAgent(), "session-budget")

	assert.True(t, done)
	assert.True(t, strings.HasPrefix(reply, "CONVERSATION SUMMARY:"))
	assert.True(t, strings.HasSuffix(reply, "Information recorded for review."))
}

func TestProcessTurnFinishesWhenEverythingEstablished(t *testing.T) {
	svc := newTestService(t)

	messages := []Message{
		{Role: RoleAssistant, Content: "Why did you edit your start time?"},
		{Role: RoleUser, Content: "i was in a meeting with my supervisor for 20 minutes about project prep"},
	}

	reply, done := svc.ProcessTurn(context.Background(), messages, nil, "session-complete")

	assert.True(t, done)
	assert.True(t, strings.HasPrefix(reply, "CONVERSATION SUMMARY:"))
}

func TestProcessTurnSessionsAreIndependent(t *testing.T) {
	svc := newTestService(t)
	agent := discrepancyAgent()

	first, _ := svc.ProcessTurn(context.Background(), nil, agent, "session-a")
	second, _ := svc.ProcessTurn(context.Background(), nil, agent, "session-b")

	// A fresh session starts from the same question even though another
	// session already asked it.
	assert.Equal(t, first, second)

	// Within one session the guard kicks in and the next fallback is used.
	followup, done := svc.ProcessTurn(context.Background(), nil, agent, "session-a")
	require.False(t, done)
	assert.NotEqual(t, first, followup)
}

func TestValidPhrasing(t *testing.T) {
	history := []Message{
		{Role: RoleAssistant, Content: "Why did you edit your start time from 09:00:00 AM to 08:15:00 AM?"},
		{Role: RoleUser, Content: "I was early"},
	}

	assert.True(t, validPhrasing("What were you working on before your shift started?", history))

	assert.False(t, validPhrasing("Short?", history), "too short")
	assert.False(t, validPhrasing("This is a statement without any question", history), "no question mark")
	assert.False(t, validPhrasing("why did you edit your start time from 09:00:00 am to 08:15:00 am?", history), "repeats a prior turn")
	assert.False(t, validPhrasing("Remind me why did you edit the entry again?", history), "shares a key phrase")
}

func TestRegistryAcquireReturnsSameTracker(t *testing.T) {
	registry, err := NewRegistry(nil)
	require.NoError(t, err)

	tracker, release := registry.Acquire("s1")
	tracker.establish(FactWasInActivity)
	release()

	again, release := registry.Acquire("s1")
	defer release()
	assert.True(t, again.established(FactWasInActivity))

	other, releaseOther := registry.Acquire("s2")
	defer releaseOther()
	assert.False(t, other.established(FactWasInActivity))
}
