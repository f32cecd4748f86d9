package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreatePollRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Options         []string `json:"options"`
	CreatorUsername string   `json:"creator_username,omitempty"`
}

// UpdatePollRequest carries the only two mutable poll fields. Requests naming
// any other field are rejected at decode time.
type UpdatePollRequest struct {
	IsActive         *bool `json:"is_active,omitempty"`
	ResultsPublished *bool `json:"results_published,omitempty"`
}

type OptionResponse struct {
	OptionID string `json:"option_id"`
	Text     string `json:"text"`
}

type PollResponse struct {
	PollID            string           `json:"poll_id"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Options           []OptionResponse `json:"options"`
	CreatedBy         string           `json:"created_by"`
	CreatedByUsername string           `json:"created_by_username,omitempty"`
	IsActive          bool             `json:"is_active"`
	ResultsPublished  bool             `json:"results_published"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

type PollListResponse struct {
	Items []PollResponse `json:"items"`
}

type SubmitVoteRequest struct {
	PollID   string `json:"poll_id"`
	OptionID string `json:"option_id"`
	Username string `json:"username,omitempty"`
}

type VoteResponse struct {
	VoteID     string    `json:"vote_id"`
	PollID     string    `json:"poll_id"`
	UserID     string    `json:"user_id"`
	OptionID   string    `json:"option_id"`
	Username   string    `json:"username,omitempty"`
	OptionText string    `json:"option_text"`
	CreatedAt  time.Time `json:"created_at"`
}

type VoteListResponse struct {
	Items []VoteResponse `json:"items"`
}

type OptionTallyResponse struct {
	OptionID   string  `json:"option_id"`
	Text       string  `json:"text"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

type PollResultsResponse struct {
	PollID          string                `json:"poll_id"`
	TotalVotes      int                   `json:"total_votes"`
	LeadingOptionID string                `json:"leading_option_id,omitempty"`
	Options         []OptionTallyResponse `json:"options"`
}

type SummaryResponse struct {
	TotalPolls     int64 `json:"total_polls"`
	TotalVotes     int64 `json:"total_votes"`
	PublishedPolls int64 `json:"published_polls"`
}
