package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/dsa-vault/internal/logging"
	"github.com/gokatarajesh/dsa-vault/internal/metrics"
	"github.com/gokatarajesh/dsa-vault/internal/question"
	"github.com/gokatarajesh/dsa-vault/internal/session"
	httperrors "github.com/gokatarajesh/dsa-vault/pkg/http/errors"
)

// QuestionHandlers exposes the repository over REST.
type QuestionHandlers struct {
	repo      *question.Repository
	collector *metrics.Collector
	logger    zerolog.Logger
}

func NewQuestionHandlers(repo *question.Repository, collector *metrics.Collector, logger zerolog.Logger) *QuestionHandlers {
	return &QuestionHandlers{
		repo:      repo,
		collector: collector,
		logger:    logger.With().Str("component", "question_http").Logger(),
	}
}

type listResponse struct {
	Questions []question.Question `json:"questions"`
	Matched   int                 `json:"matched"`
	Total     int                 `json:"total"`
}

// List handles GET /v1/questions?search=&difficulty=&topic=
func (h *QuestionHandlers) List(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := question.Query{
		Search:     params.Get("search"),
		Difficulty: params.Get("difficulty"),
		Topic:      params.Get("topic"),
	}
	if q.Difficulty != "" && q.Difficulty != question.All {
		d, err := question.ParseDifficulty(q.Difficulty)
		if err != nil {
			httperrors.RespondBadRequest(w, err.Error())
			return
		}
		q.Difficulty = string(d)
	}

	all := h.repo.List(r.Context())
	matched := question.Filter(all, q)
	respondJSON(w, http.StatusOK, listResponse{Questions: matched, Matched: len(matched), Total: len(all)})
}

// Get handles GET /v1/questions/{id}
func (h *QuestionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondRepoError(w, r, "", err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

// Create handles POST /v1/questions with a form body.
func (h *QuestionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeForm(w, r, question.OpCreated)
	if !ok {
		return
	}
	ctrl := h.controller()
	if err := ctrl.Add(); err != nil {
		h.respondRepoError(w, r, question.OpCreated, err)
		return
	}
	if err := ctrl.SetForm(form); err != nil {
		h.respondRepoError(w, r, question.OpCreated, err)
		return
	}
	created, err := ctrl.Submit(r.Context())
	if err != nil {
		h.respondRepoError(w, r, question.OpCreated, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Update handles PUT /v1/questions/{id} with a form body.
func (h *QuestionHandlers) Update(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeForm(w, r, question.OpUpdated)
	if !ok {
		return
	}
	ctrl := h.controller()
	if err := ctrl.Edit(r.Context(), r.PathValue("id")); err != nil {
		h.respondRepoError(w, r, question.OpUpdated, err)
		return
	}
	if err := ctrl.SetForm(form); err != nil {
		h.respondRepoError(w, r, question.OpUpdated, err)
		return
	}
	updated, err := ctrl.Submit(r.Context())
	if err != nil {
		h.respondRepoError(w, r, question.OpUpdated, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /v1/questions/{id}?confirm=true. The confirm flag is
// the client's answer to the delete prompt.
func (h *QuestionHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "true"
	err := h.controller().Delete(r.Context(), r.PathValue("id"), session.ConfirmFunc(func(context.Context, string) (bool, error) {
		return confirmed, nil
	}))
	switch {
	case errors.Is(err, session.ErrDeleteDeclined):
		h.failed(question.OpDeleted, "unconfirmed")
		httperrors.RespondError(w, http.StatusPreconditionRequired, httperrors.ErrCodeConfirmationRequired, session.DeletePrompt)
	case err != nil:
		h.respondRepoError(w, r, question.OpDeleted, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// Topics handles GET /v1/topics
func (h *QuestionHandlers) Topics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"topics": h.repo.Topics(r.Context())})
}

// Stats handles GET /v1/stats
func (h *QuestionHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.repo.Statistics(r.Context()))
}

func (h *QuestionHandlers) decodeForm(w http.ResponseWriter, r *http.Request, op question.Op) (session.Form, bool) {
	var form session.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.failed(op, "invalid_body")
		httperrors.RespondBadRequest(w, "invalid request body")
		return session.Form{}, false
	}
	return form, true
}

// controller opens a fresh edit session for one request.
func (h *QuestionHandlers) controller() *session.Controller {
	return session.NewController(h.repo, session.NotifierFunc(h.notify), h.logger)
}

func (h *QuestionHandlers) notify(o session.Outcome) {
	if o.Err != nil {
		return
	}
	h.logger.Info().Str("action", string(o.Action)).Str("id", o.ID).Msg("question " + string(o.Action))
}

func (h *QuestionHandlers) respondRepoError(w http.ResponseWriter, r *http.Request, op question.Op, err error) {
	var verr *question.ValidationError
	switch {
	case errors.As(err, &verr):
		h.failed(op, "validation")
		code := httperrors.ErrCodeValidationFailed
		if verr.Reason == "" {
			code = httperrors.ErrCodeMissingField
		}
		httperrors.RespondValidationError(w, code, verr.Error(), strings.Join(verr.Fields, ","))
	case errors.Is(err, question.ErrNotFound):
		h.failed(op, "not_found")
		httperrors.RespondNotFound(w, "question not found")
	case errors.Is(err, question.ErrPersist):
		h.failed(op, "persist")
		logger := logging.FromContext(r.Context())
		logger.Error().Err(err).Msg("question change not saved")
		httperrors.RespondError(w, http.StatusServiceUnavailable, httperrors.ErrCodePersistFailed, "change could not be saved")
	default:
		h.failed(op, "internal")
		h.logger.Error().Err(err).Msg("unexpected repository error")
		httperrors.RespondInternalError(w, "internal error")
	}
}

func (h *QuestionHandlers) failed(op question.Op, reason string) {
	if h.collector != nil && op != "" {
		h.collector.Failed(op, reason)
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
