package entities

import "time"

// Option is one selectable choice within a poll. Vote counts are never stored
// on the option; tallies are always derived from the vote records.
type Option struct {
	OptionID string
	Text     string
}

type Poll struct {
	PollID            string
	Title             string
	Description       string
	Options           []Option
	CreatedBy         string
	CreatedByUsername string
	IsActive          bool
	ResultsPublished  bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasOption reports whether optionID belongs to the poll's option set.
func (p Poll) HasOption(optionID string) bool {
	for _, option := range p.Options {
		if option.OptionID == optionID {
			return true
		}
	}
	return false
}

// OptionText resolves the display text for optionID, empty when absent.
func (p Poll) OptionText(optionID string) string {
	for _, option := range p.Options {
		if option.OptionID == optionID {
			return option.Text
		}
	}
	return ""
}

// Vote binds one user to one option within one poll. Votes are immutable once
// admitted; OptionText is a denormalized copy taken at admission time.
type Vote struct {
	VoteID     string
	PollID     string
	UserID     string
	OptionID   string
	Username   string
	OptionText string
	CreatedAt  time.Time
}

type OptionTally struct {
	OptionID   string
	Text       string
	Votes      int
	Percentage float64
}

// PollResults is the derived tally for a poll. LeadingOptionID is empty when
// Total is zero; on a tie it is the first tied option in poll option order.
type PollResults struct {
	PollID          string
	Total           int
	LeadingOptionID string
	Options         []OptionTally
}

type Summary struct {
	TotalPolls     int64
	TotalVotes     int64
	PublishedPolls int64
}
