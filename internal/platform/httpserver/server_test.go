package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	userdirectory "ballotbox/contexts/identity-access/user-directory"
	pollservice "ballotbox/contexts/poll-operations/poll-service"
	pollhttp "ballotbox/contexts/poll-operations/poll-service/transport/http"
)

func newTestServer() *Server {
	polls := pollservice.NewInMemoryModule(nil, nil)
	users := userdirectory.NewInMemoryModule(nil, nil)
	return New(polls, users, nil, ":0")
}

func doJSON(t *testing.T, server *Server, method string, path string, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
}

func createPollViaHTTP(t *testing.T, server *Server, creatorID string) pollhttp.PollResponse {
	t.Helper()
	rec := doJSON(t, server, http.MethodPost, "/api/polls", creatorID, pollhttp.CreatePollRequest{
		Title:       "Team lunch",
		Description: "Friday options",
		Options:     []string{"Pizza", "Sushi"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create poll: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var poll pollhttp.PollResponse
	decodeInto(t, rec, &poll)
	return poll
}

func TestHealthz(t *testing.T) {
	server := newTestServer()
	rec := doJSON(t, server, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPollLifecycleOverHTTP(t *testing.T) {
	server := newTestServer()
	poll := createPollViaHTTP(t, server, "creator-1")

	rec := doJSON(t, server, http.MethodPost, "/api/votes", "voter-1", pollhttp.SubmitVoteRequest{
		PollID:   poll.PollID,
		OptionID: poll.Options[0].OptionID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("vote: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, server, http.MethodPost, "/api/votes", "voter-1", pollhttp.SubmitVoteRequest{
		PollID:   poll.PollID,
		OptionID: poll.Options[1].OptionID,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate vote: expected 409, got %d", rec.Code)
	}

	rec = doJSON(t, server, http.MethodGet, "/api/polls/"+poll.PollID+"/results", "voter-1", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unpublished results: expected 403, got %d", rec.Code)
	}

	published := true
	rec = doJSON(t, server, http.MethodPatch, "/api/polls/"+poll.PollID, "creator-1", pollhttp.UpdatePollRequest{
		ResultsPublished: &published,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("publish: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, server, http.MethodGet, "/api/polls/"+poll.PollID+"/results", "voter-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("published results: expected 200, got %d", rec.Code)
	}
	var results pollhttp.PollResultsResponse
	decodeInto(t, rec, &results)
	if results.TotalVotes != 1 || results.LeadingOptionID != poll.Options[0].OptionID {
		t.Fatalf("unexpected results: %+v", results)
	}

	rec = doJSON(t, server, http.MethodDelete, "/api/polls/"+poll.PollID, "creator-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, server, http.MethodGet, "/api/polls/"+poll.PollID, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deleted poll: expected 404, got %d", rec.Code)
	}
}

func TestPatchPollRejectsUnknownFields(t *testing.T) {
	server := newTestServer()
	poll := createPollViaHTTP(t, server, "creator-1")

	rec := doJSON(t, server, http.MethodPatch, "/api/polls/"+poll.PollID, "creator-1", map[string]any{
		"title": "hijacked",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-flag field, got %d", rec.Code)
	}

	rec = doJSON(t, server, http.MethodGet, "/api/polls/"+poll.PollID, "", nil)
	var unchanged pollhttp.PollResponse
	decodeInto(t, rec, &unchanged)
	if unchanged.Title != "Team lunch" {
		t.Fatalf("title must be immutable, got %q", unchanged.Title)
	}
}

func TestWriteEndpointsRequireIdentity(t *testing.T) {
	server := newTestServer()
	poll := createPollViaHTTP(t, server, "creator-1")

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/api/polls", pollhttp.CreatePollRequest{Title: "t", Description: "d", Options: []string{"a", "b"}}},
		{http.MethodPost, "/api/votes", pollhttp.SubmitVoteRequest{PollID: poll.PollID, OptionID: poll.Options[0].OptionID}},
		{http.MethodPatch, "/api/polls/" + poll.PollID, pollhttp.UpdatePollRequest{}},
		{http.MethodDelete, "/api/polls/" + poll.PollID, nil},
	}
	for _, tc := range cases {
		rec := doJSON(t, server, tc.method, tc.path, "", tc.body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 without X-User-Id, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestUserRoutes(t *testing.T) {
	server := newTestServer()

	rec := doJSON(t, server, http.MethodPost, "/api/users", "", map[string]string{
		"username": "casey",
		"email":    "casey@example.com",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, server, http.MethodPost, "/api/users", "", map[string]string{
		"username": "other",
		"email":    "casey@example.com",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate email: expected 409, got %d", rec.Code)
	}

	rec = doJSON(t, server, http.MethodGet, "/api/users/find?email=casey@example.com", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("find user: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, server, http.MethodGet, "/api/users/find?email=ghost@example.com", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown email: expected 404, got %d", rec.Code)
	}
}

func TestSummaryRoute(t *testing.T) {
	server := newTestServer()
	createPollViaHTTP(t, server, "creator-1")

	rec := doJSON(t, server, http.MethodGet, "/api/summary", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d", rec.Code)
	}
	var summary pollhttp.SummaryResponse
	decodeInto(t, rec, &summary)
	if summary.TotalPolls != 1 {
		t.Fatalf("expected 1 poll in summary, got %d", summary.TotalPolls)
	}
}
