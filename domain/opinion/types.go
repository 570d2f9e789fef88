package opinion

import "opinionmap/domain/core"

// ============================================================================
// VOTES
// ============================================================================

// Vote is a participant's ternary response to a statement.
// A participant who never voted has no entry at all; that is not a pass.
type Vote int8

const (
	VoteDisagree Vote = -1
	VotePass     Vote = 0
	VoteAgree    Vote = 1
)

// ParseVote validates a raw vote value from storage
func ParseVote(raw int) (Vote, bool) {
	switch raw {
	case -1, 0, 1:
		return Vote(raw), true
	}
	return 0, false
}

func (v Vote) String() string {
	switch v {
	case VoteAgree:
		return "agree"
	case VoteDisagree:
		return "disagree"
	default:
		return "pass"
	}
}

// VoteRecord is the canonical vote row every store adapter must produce
type VoteRecord struct {
	Participant core.ParticipantID `json:"participant_id" db:"participant_id"`
	Statement   core.StatementID   `json:"statement_id" db:"statement_id"`
	Vote        Vote               `json:"vote" db:"vote"`
}

// GroupVoteMatrix maps participant -> statement -> vote for one group.
// Built once per run and never mutated afterwards.
type GroupVoteMatrix map[core.ParticipantID]map[core.StatementID]Vote

// ============================================================================
// STATEMENTS
// ============================================================================

// ModerationState is the tri-state moderation flag of a statement
type ModerationState int

const (
	ModerationUnknown ModerationState = iota
	ModerationKept
	ModerationRemoved
)

// ModerationFromRaw maps the exporter's numeric flag (-1 removed, 0 unmoderated, 1 accepted)
func ModerationFromRaw(raw int) ModerationState {
	switch raw {
	case -1:
		return ModerationRemoved
	case 0, 1:
		return ModerationKept
	default:
		return ModerationUnknown
	}
}

func (m ModerationState) String() string {
	switch m {
	case ModerationKept:
		return "kept"
	case ModerationRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// MissingText is shown wherever a statement has no text
const MissingText = "<missing>"

// Statement is a votable statement as loaded by the data collaborator
type Statement struct {
	TID        core.StatementID `json:"tid"`
	Text       string           `json:"txt"`
	Moderation ModerationState  `json:"mod"`
	Meta       map[string]any   `json:"meta,omitempty"`
}

// IsRemoved reports whether a moderator removed the statement
func (s Statement) IsRemoved() bool {
	return s.Moderation == ModerationRemoved
}

// DisplayText returns the statement text or the missing placeholder
func (s Statement) DisplayText() string {
	if s.Text == "" {
		return MissingText
	}
	return s.Text
}

// ============================================================================
// GROUPS
// ============================================================================

// GroupLabel is a user-defined group identifier (a palette color in the painting tool)
type GroupLabel string

// UnpaintedLabel is the pseudo-group for every participant without a label
const UnpaintedLabel GroupLabel = "unpainted"

// Group is a label with its display order
type Group struct {
	Label GroupLabel `json:"label"`
	Index int        `json:"index"`
}

// Letter returns the display letter for the group index (0 -> "A"). Past "Z" it keeps
// counting character codes, so index 26 is "[".
func (g Group) Letter() string {
	if g.Index < 0 {
		return ""
	}
	return string(rune('A' + g.Index))
}

// ============================================================================
// RESULTS
// ============================================================================

// Direction is the side (agree/disagree) a statement is representative for
type Direction string

const (
	DirectionAgree    Direction = "agree"
	DirectionDisagree Direction = "disagree"
)

// RepStatement is the finalized, externally visible statistics of one statement within one group.
// Success/trial counts and scores are restated for the representative direction only.
type RepStatement struct {
	TID         core.StatementID `json:"tid"`
	NAgree      int              `json:"n_agree"`
	NDisagree   int              `json:"n_disagree"`
	NPass       int              `json:"n_pass"`
	NSuccess    int              `json:"n_success"`
	NTrials     int              `json:"n_trials"`
	PSuccess    float64          `json:"p_success"`
	PTest       float64          `json:"p_test"`
	Repness     float64          `json:"repness"`
	RepnessTest float64          `json:"repness_test"`
	RepfulFor   Direction        `json:"repful_for"`
	BestAgree   bool             `json:"best_agree,omitempty"`
	PValue      float64          `json:"p_value"` // one-tailed p-value of RepnessTest
}

// Metric is the composite ranking score: the product of all four finalized scores
func (r RepStatement) Metric() float64 {
	return r.Repness * r.RepnessTest * r.PSuccess * r.PTest
}

// GroupRepness is the ordered list of representative statements for one group
type GroupRepness struct {
	Group      Group          `json:"group"`
	Statements []RepStatement `json:"statements"`
}

// RepnessResult holds every group's representative statements in group order
type RepnessResult struct {
	Groups []GroupRepness `json:"groups"`
}

// ByLabel indexes the result by group label
func (r RepnessResult) ByLabel() map[GroupLabel][]RepStatement {
	out := make(map[GroupLabel][]RepStatement, len(r.Groups))
	for _, g := range r.Groups {
		out[g.Group.Label] = g.Statements
	}
	return out
}

// For returns the statements for one label, or nil if the group is unknown
func (r RepnessResult) For(label GroupLabel) []RepStatement {
	for _, g := range r.Groups {
		if g.Group.Label == label {
			return g.Statements
		}
	}
	return nil
}
