package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analyticsdomain "coldcall-sim/backend/internal/features/analytics/domain"
	"coldcall-sim/backend/internal/features/conversation/application"
	"coldcall-sim/backend/internal/features/conversation/domain"
	"coldcall-sim/backend/internal/features/conversation/infrastructure"
	"coldcall-sim/backend/internal/retry"
)

type scriptedStreamer struct {
	fragments []string
	err       error
}

func (s *scriptedStreamer) Stream(_ context.Context, _ infrastructure.PromptContext, onToken func(string)) (string, error) {
	reply := ""
	for _, f := range s.fragments {
		onToken(f)
		reply += f
	}
	return reply, s.err
}

type scriptedAnalyzer struct {
	result *analyticsdomain.CallAnalytics
	err    error
}

func (a *scriptedAnalyzer) Analyze(context.Context, []domain.Turn) (*analyticsdomain.CallAnalytics, error) {
	return a.result, a.err
}

type fixture struct {
	router   *gin.Engine
	streamer *scriptedStreamer
	analyzer *scriptedAnalyzer
}

func newFixture(defaultKey string) *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		streamer: &scriptedStreamer{fragments: []string{"Yes, ", "who's calling?"}},
		analyzer: &scriptedAnalyzer{result: &analyticsdomain.CallAnalytics{
			Successful:  true,
			KeyShift:    "Owner agreed to a viewing.",
			Suggestions: []string{"Be concise"},
		}},
	}
	log, _ := test.NewNullLogger()
	service := application.NewConversationService(
		func(string) (infrastructure.ReplyStreamer, error) { return f.streamer, nil },
		func(string) (application.CallAnalyzer, error) { return f.analyzer, nil },
		defaultKey, log)

	f.router = gin.New()
	NewConversationHandler(service, log).RegisterRoutes(f.router.Group("/api"))
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

var personaBody = map[string]any{
	"persona": map[string]any{
		"owner_name":           "Jane Doe",
		"nature":               "Reserved or Private",
		"description":          "Is meticulous, ensuring all transaction details are well-defined and met.",
		"difficulty":           "Tough",
		"property_description": "A cottage by the lake",
		"asking_price":         250000,
		"price_tier":           "Above Average",
	},
}

func (f *fixture) start(t *testing.T) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/conversations", personaBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var session domain.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	return session.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestPersonaOptions(t *testing.T) {
	f := newFixture("sk-env")
	w := f.do(t, http.MethodGet, "/api/persona/options", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Above Average")
}

func TestStartConversation_IncompletePersona(t *testing.T) {
	f := newFixture("sk-env")
	w := f.do(t, http.MethodPost, "/api/conversations", map[string]any{"persona": map[string]any{"owner_name": "Jane"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "incomplete_persona", body["error"])
	assert.Contains(t, body["missing"], "asking_price")
	assert.NotContains(t, body["missing"], "owner_name")
}

func TestStartConversation_MissingCredential(t *testing.T) {
	f := newFixture("")
	w := f.do(t, http.MethodPost, "/api/conversations", personaBody)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.Equal(t, "missing_credential", body["error"])
	assert.Contains(t, body["message"], "OpenAI API key")
}

func TestSendMessage_StreamsEvents(t *testing.T) {
	f := newFixture("sk-env")
	id := f.start(t)

	w := f.do(t, http.MethodPost, "/api/conversations/"+id+"/messages", map[string]string{"message": "Hi, is this the homeowner?"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	out := w.Body.String()
	assert.Contains(t, out, "event:token")
	assert.Contains(t, out, "event:done")
	assert.Less(t, bytes.Index(w.Body.Bytes(), []byte("Yes, ")), bytes.Index(w.Body.Bytes(), []byte("event:done")))

	w = f.do(t, http.MethodGet, "/api/conversations/"+id, nil)
	var session domain.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, []domain.Turn{
		{Role: domain.RoleAgent, Content: "Hi, is this the homeowner?"},
		{Role: domain.RoleOwner, Content: "Yes, who's calling?"},
	}, session.Transcript)
}

type sseEvent struct {
	name string
	data string
}

// readEvents splits an event stream the way a browser EventSource does,
// dropping one space after each field colon.
func readEvents(body string) []sseEvent {
	var (
		events []sseEvent
		name   string
		data   []string
	)
	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			if data != nil {
				events = append(events, sseEvent{name: name, data: strings.Join(data, "\n")})
			}
			name, data = "", nil
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			name = value
		case "data":
			data = append(data, value)
		}
	}
	return events
}

func TestSendMessage_TokensKeepLeadingSpaces(t *testing.T) {
	f := newFixture("sk-env")
	f.streamer.fragments = []string{"Yes,", " who's", " calling?"}
	id := f.start(t)

	w := f.do(t, http.MethodPost, "/api/conversations/"+id+"/messages", map[string]string{"message": "Hi"})
	require.Equal(t, http.StatusOK, w.Code)

	var joined strings.Builder
	var reply string
	for _, event := range readEvents(w.Body.String()) {
		switch event.name {
		case "token":
			var token struct {
				Text string `json:"text"`
			}
			require.NoError(t, json.Unmarshal([]byte(event.data), &token), event.data)
			joined.WriteString(token.Text)
		case "done":
			var done struct {
				Reply string `json:"reply"`
			}
			require.NoError(t, json.Unmarshal([]byte(event.data), &done), event.data)
			reply = done.Reply
		}
	}
	assert.Equal(t, "Yes, who's calling?", reply)
	assert.Equal(t, reply, joined.String())
}

func TestSendMessage_EmptyReply(t *testing.T) {
	f := newFixture("sk-env")
	f.streamer.fragments = nil
	id := f.start(t)

	w := f.do(t, http.MethodPost, "/api/conversations/"+id+"/messages", map[string]string{"message": "Hi"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "empty_reply", decode(t, w)["error"])
}

func TestErrorResponse_HidesInternalDetail(t *testing.T) {
	status, body := errorResponse(errors.New("failed to create reply streamer: dial tcp 10.0.0.1:443"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal", body["error"])
	assert.NotContains(t, body["message"], "10.0.0.1")
}

func TestSendMessage_ErrorAfterFirstToken(t *testing.T) {
	f := newFixture("sk-env")
	id := f.start(t)
	f.streamer.err = errors.New("stream broke")

	w := f.do(t, http.MethodPost, "/api/conversations/"+id+"/messages", map[string]string{"message": "Hi"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event:error")
	assert.NotContains(t, w.Body.String(), "event:done")
}

func TestSendMessage_ErrorBeforeStreaming(t *testing.T) {
	f := newFixture("sk-env")
	id := f.start(t)

	w := f.do(t, http.MethodPost, "/api/conversations/"+id+"/messages", map[string]string{"message": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/conversations/unknown/messages", map[string]string{"message": "Hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalytics_Lifecycle(t *testing.T) {
	f := newFixture("sk-env")
	id := f.start(t)
	f.do(t, http.MethodPost, "/api/conversations/"+id+"/messages", map[string]string{"message": "Hi"})

	w := f.do(t, http.MethodPost, "/api/conversations/"+id+"/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp domain.AnalyticsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Analytics.Successful)
	assert.Empty(t, resp.Session.Transcript)
	assert.Contains(t, resp.Report, "**Yes**")
	assert.Contains(t, resp.Report, "- Be concise")

	w = f.do(t, http.MethodPost, "/api/conversations/"+id+"/messages", map[string]string{"message": "Hello?"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/api/conversations/"+id+"/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var session domain.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Nil(t, session.Analytics)
	assert.Empty(t, session.Transcript)
}

func TestAnalytics_ErrorKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{&retry.TransientFailure{Attempts: 5, Err: errors.New("timeout")}, http.StatusBadGateway, "transient_failure"},
		{&analyticsdomain.ParseError{Field: "key_shift", Reason: "missing"}, http.StatusUnprocessableEntity, "parse_error"},
	}
	for _, tc := range cases {
		f := newFixture("sk-env")
		id := f.start(t)
		f.analyzer.err = tc.err
		f.analyzer.result = nil

		w := f.do(t, http.MethodPost, "/api/conversations/"+id+"/analytics", nil)

		assert.Equal(t, tc.status, w.Code)
		assert.Equal(t, tc.kind, decode(t, w)["error"])
	}
}

func TestDeleteConversation(t *testing.T) {
	f := newFixture("sk-env")
	id := f.start(t)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/conversations/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/conversations/"+id, nil).Code)
}
