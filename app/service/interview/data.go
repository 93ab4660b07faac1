package interview

import (
	"sort"
)

// Fact tags recording information obtained from the agent during the
// interview. The vocabulary is fixed.
type Fact string

const (
	FactWasInActivity             Fact = "was_in_activity"
	FactStatedArrivalTime         Fact = "stated_arrival_time"
	FactMentionedOrganizer        Fact = "mentioned_organizer"
	FactProvidedDuration          Fact = "provided_duration"
	FactMentionedPurpose          Fact = "mentioned_purpose"
	FactExplainedPhoneDiscrepancy Fact = "explained_phone_discrepancy"

	// No extraction rule establishes this tag. The system discrepancy check
	// still consults it, so the system_vs_edited issue is never cleared.
	// Kept until there is a product decision on the asymmetry.
	FactExplainedSystemDiscrepancy Fact = "explained_system_discrepancy"
)

// Issue tags recording detected timing inconsistencies not yet explained.
type Issue string

const (
	IssuePhoneVsEdited  Issue = "phone_vs_edited_discrepancy"
	IssueSystemVsEdited Issue = "system_vs_edited_discrepancy"
)

// requiredFacts are the five facts a complete interview establishes, in the
// order the fallback questions walk them.
var requiredFacts = []Fact{
	FactWasInActivity,
	FactStatedArrivalTime,
	FactMentionedOrganizer,
	FactProvidedDuration,
	FactMentionedPurpose,
}

const pointsPerFact = 20

// Stage classifies interview progress. It is always derived from fact and
// issue counts, never stored.
type Stage string

const (
	StageInitial       Stage = "initial"
	StageInvestigation Stage = "investigation"
	StageVerification  Stage = "verification"
)

// StageOf is the pure stage function: verification once at least four facts
// are established and nothing is unresolved, investigation from two facts on.
func StageOf(factCount, issueCount int) Stage {
	switch {
	case factCount >= 4 && issueCount == 0:
		return StageVerification
	case factCount >= 2:
		return StageInvestigation
	default:
		return StageInitial
	}
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tracker is the per-session interview record: which facts have been
// established, which timing issues are still unexplained, and every question
// already posed. Access is serialized by the Registry.
type Tracker struct {
	AskedQuestions   []string
	EstablishedFacts map[Fact]struct{}
	UnresolvedIssues map[Issue]struct{}
}

func newTracker() *Tracker {
	return &Tracker{
		EstablishedFacts: make(map[Fact]struct{}),
		UnresolvedIssues: make(map[Issue]struct{}),
	}
}

func (t *Tracker) establish(f Fact) {
	t.EstablishedFacts[f] = struct{}{}
}

func (t *Tracker) established(f Fact) bool {
	_, ok := t.EstablishedFacts[f]
	return ok
}

func (t *Tracker) addIssue(i Issue) {
	t.UnresolvedIssues[i] = struct{}{}
}

func (t *Tracker) clearIssue(i Issue) {
	delete(t.UnresolvedIssues, i)
}

func (t *Tracker) recordAsked(question string) {
	t.AskedQuestions = append(t.AskedQuestions, question)
}

func (t *Tracker) factList() []string {
	out := make([]string, 0, len(t.EstablishedFacts))
	for f := range t.EstablishedFacts {
		out = append(out, string(f))
	}
	sort.Strings(out)
	return out
}

func (t *Tracker) issueList() []string {
	out := make([]string, 0, len(t.UnresolvedIssues))
	for i := range t.UnresolvedIssues {
		out = append(out, string(i))
	}
	sort.Strings(out)
	return out
}

// Snapshot is the conversation state derived on every turn. Fact and issue
// lists are sorted so identical tracker state yields identical snapshots.
type Snapshot struct {
	EstablishedFacts   []string `json:"established_facts"`
	UnresolvedIssues   []string `json:"unresolved_issues"`
	RemainingQuestions []string `json:"remaining_questions"`
	ConversationStage  Stage    `json:"conversation_stage"`
	QualityScore       int      `json:"quality_score"`
	QuestionCount      int      `json:"question_count"`
	LastQuestionAsked  string   `json:"last_question_asked"`
	AskedQuestions     []string `json:"asked_questions"`
}

// Has reports whether the snapshot carries the given established fact.
func (s Snapshot) Has(f Fact) bool {
	for _, fact := range s.EstablishedFacts {
		if fact == string(f) {
			return true
		}
	}
	return false
}

func (s Snapshot) hasIssue(i Issue) bool {
	for _, issue := range s.UnresolvedIssues {
		if issue == string(i) {
			return true
		}
	}
	return false
}
