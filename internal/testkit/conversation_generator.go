package testkit

import (
	"fmt"
	"math/rand"

	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
)

// ConversationGeneratorConfig configures the synthetic conversation generator
type ConversationGeneratorConfig struct {
	GroupCount           int     `json:"group_count"`
	ParticipantsPerGroup int     `json:"participants_per_group"`
	StatementCount       int     `json:"statement_count"`
	VoteProbability      float64 `json:"vote_probability"` // chance a participant votes on a statement at all
	PassProbability      float64 `json:"pass_probability"`
	RemovedEvery         int     `json:"removed_every"` // every Nth statement is moderated out; 0 disables
	Seed                 int64   `json:"seed"`
}

// DefaultConversationConfig returns sensible defaults for conversation generation
func DefaultConversationConfig() ConversationGeneratorConfig {
	return ConversationGeneratorConfig{
		GroupCount:           3,
		ParticipantsPerGroup: 40,
		StatementCount:       60,
		VoteProbability:      0.7,
		PassProbability:      0.15,
		RemovedEvery:         0,
		Seed:                 42,
	}
}

// Conversation is a generated dataset: participants with parallel labels, statements and votes
type Conversation struct {
	Participants []core.ParticipantID
	Labels       []*opinion.GroupLabel
	Statements   []opinion.Statement
	Matrices     map[opinion.GroupLabel]opinion.GroupVoteMatrix
	Store        *MemoryVoteStore
}

// ConversationGenerator generates polarized conversations where each group leans
// towards agree or disagree on each statement with its own probability
type ConversationGenerator struct {
	config ConversationGeneratorConfig
	rng    *rand.Rand
}

// NewConversationGenerator creates a new generator
func NewConversationGenerator(config ConversationGeneratorConfig) *ConversationGenerator {
	return &ConversationGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the conversation
func (g *ConversationGenerator) Generate() *Conversation {
	conv := &Conversation{
		Matrices: make(map[opinion.GroupLabel]opinion.GroupVoteMatrix),
		Store:    NewMemoryVoteStore(),
	}

	for i := 0; i < g.config.StatementCount; i++ {
		mod := opinion.ModerationKept
		if g.config.RemovedEvery > 0 && (i+1)%g.config.RemovedEvery == 0 {
			mod = opinion.ModerationRemoved
		}
		conv.Statements = append(conv.Statements, opinion.Statement{
			TID:        core.StatementID(i),
			Text:       fmt.Sprintf("statement %d", i),
			Moderation: mod,
		})
	}

	for gi := 0; gi < g.config.GroupCount; gi++ {
		label := opinion.GroupLabel(fmt.Sprintf("group-%c", 'a'+gi))
		leans := make([]float64, g.config.StatementCount)
		for i := range leans {
			leans[i] = g.rng.Float64()
		}

		matrix := make(opinion.GroupVoteMatrix)
		for p := 0; p < g.config.ParticipantsPerGroup; p++ {
			pid := core.ParticipantID(fmt.Sprintf("%s-p%03d", label, p))
			row := make(map[core.StatementID]opinion.Vote)
			for i, lean := range leans {
				if g.rng.Float64() > g.config.VoteProbability {
					continue
				}
				vote := opinion.VoteDisagree
				switch r := g.rng.Float64(); {
				case r < g.config.PassProbability:
					vote = opinion.VotePass
				case g.rng.Float64() < lean:
					vote = opinion.VoteAgree
				}
				tid := core.StatementID(i)
				row[tid] = vote
				conv.Store.Add(pid, tid, vote)
			}
			if len(row) > 0 {
				matrix[pid] = row
			}

			l := label
			conv.Participants = append(conv.Participants, pid)
			conv.Labels = append(conv.Labels, &l)
		}
		conv.Matrices[label] = matrix
	}

	return conv
}

// Groups returns the generated groups in creation order
func (c *Conversation) Groups() []opinion.Group {
	var groups []opinion.Group
	seen := make(map[opinion.GroupLabel]bool)
	for _, l := range c.Labels {
		if l == nil || seen[*l] {
			continue
		}
		seen[*l] = true
		groups = append(groups, opinion.Group{Label: *l, Index: len(groups)})
	}
	return groups
}
