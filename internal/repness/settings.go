package repness

import (
	"encoding/json"

	"opinionmap/adapters/stats/proportion"
)

// Default values of the selection policy
const (
	DefaultMinVotes           = 3
	DefaultMaxResultsPerGroup = 20
)

// Settings are the tunable constants of one analysis run
type Settings struct {
	// MinVotes is the vote count below which a direction is not trusted when finalizing
	MinVotes int `json:"min_votes" yaml:"min_votes" validate:"gte=0"`
	// SignificanceZ is the one-tailed z threshold
	SignificanceZ float64 `json:"significance_z" yaml:"significance_z" validate:"gt=0"`
	// MaxResultsPerGroup bounds each group's list
	MaxResultsPerGroup int `json:"max_results_per_group" yaml:"max_results_per_group" validate:"gt=0"`
	// IncludeModerated keeps statements a moderator removed
	IncludeModerated bool `json:"include_moderated" yaml:"include_moderated"`
}

// DefaultSettings returns the calibrated defaults
func DefaultSettings() Settings {
	return Settings{
		MinVotes:           DefaultMinVotes,
		SignificanceZ:      proportion.DefaultSignificanceZ,
		MaxResultsPerGroup: DefaultMaxResultsPerGroup,
	}
}

// UnmarshalJSON decodes over the defaults, so fields a document omits keep their
// default value and an explicit zero stays zero.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type plain Settings
	decoded := plain(DefaultSettings())
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*s = Settings(decoded)
	return nil
}

// normalized fills zero values that would make the selector meaningless
func (s Settings) normalized() Settings {
	if s.SignificanceZ <= 0 {
		s.SignificanceZ = proportion.DefaultSignificanceZ
	}
	if s.MaxResultsPerGroup <= 0 {
		s.MaxResultsPerGroup = DefaultMaxResultsPerGroup
	}
	if s.MinVotes < 0 {
		s.MinVotes = 0
	}
	return s
}
