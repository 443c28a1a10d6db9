package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/gokatarajesh/dsa-vault/internal/metrics"
	"github.com/gokatarajesh/dsa-vault/internal/question"
	ws "github.com/gokatarajesh/dsa-vault/pkg/http/ws"
)

type stubStore struct {
	saved   []question.Question
	saveErr error
}

func (s *stubStore) Load(context.Context) ([]question.Question, error) { return nil, nil }

func (s *stubStore) Save(_ context.Context, qs []question.Question) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = qs
	return nil
}

type fixture struct {
	repo   *question.Repository
	store  *stubStore
	router http.Handler
	hub    *ws.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := &stubStore{}
	repo, err := question.Open(context.Background(), st, question.Options{Logger: zerolog.Nop()})
	assert.NoError(t, err)
	hub := ws.NewHub(zerolog.Nop())
	stream := NewStreamHandler(repo, hub, zerolog.Nop())
	repo.Subscribe(stream.Broadcast)
	collector := metrics.New(prometheus.NewRegistry())
	return &fixture{
		repo:   repo,
		store:  st,
		hub:    hub,
		router: NewRouter(zerolog.Nop(), repo, stream, collector, nil),
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestQuestionLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/questions", map[string]string{
		"title": "Two Sum", "description": "pairs", "difficulty": "Easy", "topic": "Arrays", "tags": "hash-table",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	a := decode[question.Question](t, rec)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, []string{"hash-table"}, a.Tags)

	rec = f.do(t, http.MethodPost, "/v1/questions", map[string]string{
		"title": "Merge Intervals", "description": "sort", "difficulty": "medium", "topic": "Arrays",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/questions?search=two&difficulty=all&topic=all", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	list := decode[listResponse](t, rec)
	assert.Equal(t, 1, list.Matched)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, a.ID, list.Questions[0].ID)

	rec = f.do(t, http.MethodGet, "/v1/topics", nil)
	assert.JSONEq(t, `{"topics":["Arrays"]}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/v1/stats", nil)
	assert.JSONEq(t, `{"total":2,"easy":1,"medium":1,"hard":0}`, rec.Body.String())

	rec = f.do(t, http.MethodPut, "/v1/questions/"+a.ID, map[string]string{
		"title": "Two Sum", "description": "pairs", "difficulty": "Hard", "topic": "Hashing", "solution": "map",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	updated := decode[question.Question](t, rec)
	assert.Equal(t, question.DifficultyHard, updated.Difficulty)
	assert.True(t, a.CreatedAt.Equal(updated.CreatedAt))

	rec = f.do(t, http.MethodGet, "/v1/questions/"+a.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "map", *decode[question.Question](t, rec).Solution)

	rec = f.do(t, http.MethodDelete, "/v1/questions/"+a.ID+"?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodDelete, "/v1/questions/"+a.ID+"?confirm=true", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, f.store.saved, 1)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/questions", map[string]string{"title": "  ", "topic": "Graphs"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "missing_field", body["error"])
	assert.Equal(t, "title,description", body["field"])
	assert.Empty(t, f.repo.List(context.Background()))
}

func TestCreateRejectsUnknownDifficulty(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/questions", map[string]string{
		"title": "t", "description": "d", "topic": "x", "difficulty": "Insane",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "validation_failed", body["error"])
	assert.Equal(t, "difficulty", body["field"])
}

func TestMutationsReportOutcomes(t *testing.T) {
	var logs bytes.Buffer
	st := &stubStore{}
	repo, err := question.Open(context.Background(), st, question.Options{Logger: zerolog.Nop()})
	assert.NoError(t, err)
	router := NewRouter(zerolog.New(&logs), repo, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/questions", strings.NewReader(`{"title":"t","description":"d","topic":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	created := decode[question.Question](t, rec)

	req = httptest.NewRequest(http.MethodDelete, "/v1/questions/"+created.ID+"?confirm=true", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Contains(t, logs.String(), `"message":"question created"`)
	assert.Contains(t, logs.String(), `"message":"question deleted"`)
	assert.Contains(t, logs.String(), created.ID)
}

func TestCreateRejectsMalformedBody(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/questions", strings.NewReader("{"))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateUnknownQuestion(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPut, "/v1/questions/missing", map[string]string{
		"title": "t", "description": "d", "topic": "x",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteRequiresConfirm(t *testing.T) {
	f := newFixture(t)
	created, err := f.repo.Create(context.Background(), question.Fields{
		Title: "t", Description: "d", Topic: "x", Difficulty: question.DifficultyEasy,
	})
	assert.NoError(t, err)

	rec := f.do(t, http.MethodDelete, "/v1/questions/"+created.ID, nil)

	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.Len(t, f.repo.List(context.Background()), 1)
}

func TestPersistFailureReturns503(t *testing.T) {
	f := newFixture(t)
	f.store.saveErr = errors.New("disk full")

	rec := f.do(t, http.MethodPost, "/v1/questions", map[string]string{
		"title": "t", "description": "d", "topic": "x",
	})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, f.repo.List(context.Background()))
}

func TestListRejectsUnknownDifficulty(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/questions?difficulty=insane", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPingReportsUnreachableStore(t *testing.T) {
	repo, err := question.Open(context.Background(), &stubStore{}, question.Options{Logger: zerolog.Nop()})
	assert.NoError(t, err)
	ping := func(context.Context) error { return errors.New("dial tcp: connection refused") }
	router := NewRouter(zerolog.Nop(), repo, nil, nil, ping)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"service_unavailable","message":"store unreachable","details":{"reason":"dial tcp: connection refused"}}`, rec.Body.String())
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStreamPushesSnapshots(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/questions", nil)
	if !assert.NoError(t, err) {
		return
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var initial ws.Message
	assert.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, ws.TypeSnapshot, initial.Type)

	assert.Eventually(t, func() bool { return f.hub.Count() == 1 }, time.Second, 10*time.Millisecond)
	_, err = f.repo.Create(context.Background(), question.Fields{
		Title: "Course Schedule", Description: "topo sort", Topic: "Graphs", Difficulty: question.DifficultyMedium,
	})
	assert.NoError(t, err)

	var pushed ws.Message
	assert.NoError(t, conn.ReadJSON(&pushed))
	var payload SnapshotPayload
	assert.NoError(t, json.Unmarshal(pushed.Payload, &payload))
	assert.Equal(t, question.OpCreated, payload.Op)
	assert.Equal(t, []string{"Graphs"}, payload.Topics)
	assert.Equal(t, 1, payload.Statistics.Medium)

	assert.NoError(t, conn.WriteJSON(ws.Message{Type: ws.TypePing, RequestID: "r1"}))
	var pong ws.Message
	assert.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, ws.TypePong, pong.Type)
	assert.Equal(t, "r1", pong.RequestID)
}

func TestStreamEndsOnLatestSnapshotUnderConcurrentWrites(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	const writes = 20
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < writes; i++ {
			_, err := f.repo.Create(context.Background(), question.Fields{
				Title: "q", Description: "d", Topic: "x", Difficulty: question.DifficultyEasy,
			})
			assert.NoError(t, err)
		}
	}()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/questions", nil)
	if !assert.NoError(t, err) {
		return
	}
	defer conn.Close()
	<-done

	last := -1
	for {
		_ = conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
		var msg ws.Message
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		var payload SnapshotPayload
		assert.NoError(t, json.Unmarshal(msg.Payload, &payload))
		last = payload.Statistics.Total
	}
	assert.Equal(t, writes, last)
}
