package errors

import "errors"

var (
	ErrInvalidPollInput     = errors.New("invalid poll input")
	ErrInvalidVoteInput     = errors.New("invalid vote input")
	ErrPollNotFound         = errors.New("poll not found")
	ErrVoteNotFound         = errors.New("vote not found")
	ErrPollInactive         = errors.New("poll is not active")
	ErrInvalidOption        = errors.New("option does not belong to poll")
	ErrDuplicateVote        = errors.New("user has already voted in this poll")
	ErrNotAuthorized        = errors.New("only the poll creator may do this")
	ErrResultsNotPublished  = errors.New("poll results are not published")
	ErrConflict             = errors.New("poll store conflict")
	ErrStoreUnavailable     = errors.New("poll store unavailable")
	ErrPollCodeSpaceExhaust = errors.New("poll code generation exhausted retries")
)
