package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	userdirectory "ballotbox/contexts/identity-access/user-directory"
	usererrors "ballotbox/contexts/identity-access/user-directory/domain/errors"
	userhttp "ballotbox/contexts/identity-access/user-directory/transport/http"
	pollservice "ballotbox/contexts/poll-operations/poll-service"
	pollerrors "ballotbox/contexts/poll-operations/poll-service/domain/errors"
	pollhttp "ballotbox/contexts/poll-operations/poll-service/transport/http"

	_ "ballotbox/internal/platform/httpserver/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	polls  pollservice.Module
	users  userdirectory.Module
}

func New(
	polls pollservice.Module,
	users userdirectory.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		polls:  polls,
		users:  users,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /api/summary", s.handleSummary)

	s.mux.HandleFunc("POST /api/polls", s.handleCreatePoll)
	s.mux.HandleFunc("GET /api/polls", s.handleListPolls)
	s.mux.HandleFunc("GET /api/polls/{poll_id}", s.handleGetPoll)
	s.mux.HandleFunc("PATCH /api/polls/{poll_id}", s.handleUpdatePoll)
	s.mux.HandleFunc("DELETE /api/polls/{poll_id}", s.handleDeletePoll)
	s.mux.HandleFunc("GET /api/polls/{poll_id}/results", s.handlePollResults)

	s.mux.HandleFunc("POST /api/votes", s.handleSubmitVote)
	s.mux.HandleFunc("GET /api/votes", s.handleListVotes)
	s.mux.HandleFunc("GET /api/votes/poll/{poll_id}", s.handleVotesByPoll)
	s.mux.HandleFunc("GET /api/votes/user/{user_id}", s.handleVotesByUser)

	s.mux.HandleFunc("GET /api/attended-polls/{user_id}", s.handleAttendedPolls)

	s.mux.HandleFunc("POST /api/users", s.handleCreateUser)
	s.mux.HandleFunc("GET /api/users", s.handleListUsers)
	s.mux.HandleFunc("GET /api/users/find", s.handleFindUserByEmail)
	s.mux.HandleFunc("GET /api/users/{user_id}", s.handleGetUser)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polls.Handler.SummaryHandler(r.Context())
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writePollError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req pollhttp.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.polls.Handler.CreatePollHandler(r.Context(), userID, req)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListPolls(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polls.Handler.ListPollsHandler(r.Context())
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polls.Handler.GetPollHandler(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUpdatePoll accepts only the two lifecycle flags; any other field in
// the payload fails the request instead of being silently written through.
func (s *Server) handleUpdatePoll(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writePollError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	var req pollhttp.UpdatePollRequest
	if err := decoder.Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_update", "only is_active and results_published may be updated")
		return
	}

	resp, err := s.polls.Handler.UpdatePollHandler(r.Context(), r.PathValue("poll_id"), userID, req)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeletePoll(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writePollError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	if err := s.polls.Handler.DeletePollHandler(r.Context(), r.PathValue("poll_id"), userID); err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handlePollResults(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	resp, err := s.polls.Handler.PollResultsHandler(r.Context(), r.PathValue("poll_id"), userID)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writePollError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req pollhttp.SubmitVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.polls.Handler.SubmitVoteHandler(r.Context(), userID, req)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListVotes(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polls.Handler.ListVotesHandler(r.Context())
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVotesByPoll(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polls.Handler.VotesByPollHandler(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVotesByUser(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polls.Handler.VotesByUserHandler(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAttendedPolls(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polls.Handler.AttendedPollsHandler(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userhttp.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeUserError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.users.Handler.CreateUserHandler(r.Context(), req)
	if err != nil {
		writeUserDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	resp, err := s.users.Handler.ListUsersHandler(r.Context())
	if err != nil {
		writeUserDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFindUserByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	resp, err := s.users.Handler.FindUserByEmailHandler(r.Context(), email)
	if err != nil {
		writeUserDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	resp, err := s.users.Handler.GetUserHandler(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writeUserDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writePollDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pollerrors.ErrPollNotFound):
		writePollError(w, http.StatusNotFound, "poll_not_found", err.Error())
	case errors.Is(err, pollerrors.ErrVoteNotFound):
		writePollError(w, http.StatusNotFound, "vote_not_found", err.Error())
	case errors.Is(err, pollerrors.ErrDuplicateVote):
		writePollError(w, http.StatusConflict, "duplicate_vote", err.Error())
	case errors.Is(err, pollerrors.ErrPollInactive):
		writePollError(w, http.StatusConflict, "poll_inactive", err.Error())
	case errors.Is(err, pollerrors.ErrInvalidOption):
		writePollError(w, http.StatusUnprocessableEntity, "invalid_option", err.Error())
	case errors.Is(err, pollerrors.ErrInvalidPollInput),
		errors.Is(err, pollerrors.ErrInvalidVoteInput):
		writePollError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, pollerrors.ErrNotAuthorized):
		writePollError(w, http.StatusForbidden, "not_authorized", err.Error())
	case errors.Is(err, pollerrors.ErrResultsNotPublished):
		writePollError(w, http.StatusForbidden, "results_not_published", err.Error())
	case errors.Is(err, pollerrors.ErrConflict),
		errors.Is(err, pollerrors.ErrPollCodeSpaceExhaust):
		writePollError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, pollerrors.ErrStoreUnavailable):
		writePollError(w, http.StatusServiceUnavailable, "store_unavailable", "storage is unavailable")
	default:
		writePollError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeUserDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usererrors.ErrUserNotFound):
		writeUserError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, usererrors.ErrEmailTaken),
		errors.Is(err, usererrors.ErrConflict):
		writeUserError(w, http.StatusConflict, "email_taken", err.Error())
	case errors.Is(err, usererrors.ErrInvalidUserInput),
		errors.Is(err, usererrors.ErrUnknownRole):
		writeUserError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, usererrors.ErrStoreUnavailable):
		writeUserError(w, http.StatusServiceUnavailable, "store_unavailable", "storage is unavailable")
	default:
		writeUserError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writePollError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, pollhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeUserError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, userhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
