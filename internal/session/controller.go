package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/dsa-vault/internal/question"
)

// DeletePrompt is the question put to the Confirmer before a delete.
const DeletePrompt = "Are you sure you want to delete this question?"

var (
	ErrNotEditing     = errors.New("no question is being edited")
	ErrAlreadyEditing = errors.New("a question is already being edited")
	ErrDeleteDeclined = errors.New("delete not confirmed")
)

// Repository is what the controller needs from the question repository.
type Repository interface {
	Get(ctx context.Context, id string) (question.Question, error)
	Create(ctx context.Context, f question.Fields) (question.Question, error)
	Update(ctx context.Context, id string, f question.Fields) (question.Question, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Action names a reported outcome.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Outcome reports the result of a create, update or delete to the environment.
type Outcome struct {
	Action   Action
	ID       string
	Question question.Question
	Err      error
}

// Notifier receives outcomes; formatting them for the user is its job.
type Notifier interface {
	Notify(Outcome)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Outcome)

func (f NotifierFunc) Notify(o Outcome) { f(o) }

// State of the edit session.
type State int

const (
	StateIdle State = iota
	StateEditing
)

func (s State) String() string {
	if s == StateEditing {
		return "editing"
	}
	return "idle"
}

// Controller drives one form at a time against the repository. It is not
// safe for concurrent use; each UI owns its own controller.
type Controller struct {
	repo      Repository
	notifier  Notifier
	logger    zerolog.Logger
	state     State
	editingID string
	form      Form
}

func NewController(repo Repository, notifier Notifier, logger zerolog.Logger) *Controller {
	if notifier == nil {
		notifier = NotifierFunc(func(Outcome) {})
	}
	return &Controller{
		repo:     repo,
		notifier: notifier,
		logger:   logger.With().Str("component", "edit_session").Logger(),
	}
}

func (c *Controller) State() State { return c.state }

// EditingID returns the id bound to the open form; ok is false for a new question.
func (c *Controller) EditingID() (id string, ok bool) {
	return c.editingID, c.state == StateEditing && c.editingID != ""
}

// Form returns a copy of the form being edited.
func (c *Controller) Form() Form { return c.form }

// Add opens a blank form for a new question.
func (c *Controller) Add() error {
	if c.state == StateEditing {
		return ErrAlreadyEditing
	}
	c.state = StateEditing
	c.editingID = ""
	c.form = NewForm()
	c.logger.Debug().Msg("editing new question")
	return nil
}

// Edit opens a form pre-populated from question id.
func (c *Controller) Edit(ctx context.Context, id string) error {
	if c.state == StateEditing {
		return ErrAlreadyEditing
	}
	q, err := c.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	c.state = StateEditing
	c.editingID = q.ID
	c.form = FormFrom(q)
	c.logger.Debug().Str("id", id).Msg("editing question")
	return nil
}

// SetField changes one field of the open form.
func (c *Controller) SetField(field, value string) error {
	if c.state != StateEditing {
		return ErrNotEditing
	}
	return c.form.Set(field, value)
}

// SetForm replaces the whole open form.
func (c *Controller) SetForm(f Form) error {
	if c.state != StateEditing {
		return ErrNotEditing
	}
	c.form = f
	return nil
}

// Cancel closes the form without saving.
func (c *Controller) Cancel() {
	c.reset()
}

// Submit validates the form and creates or updates the question. On a
// validation or repository error the form stays open.
func (c *Controller) Submit(ctx context.Context) (question.Question, error) {
	if c.state != StateEditing {
		return question.Question{}, ErrNotEditing
	}
	fields, err := c.form.Fields()
	if err != nil {
		return question.Question{}, err
	}

	var (
		saved  question.Question
		action Action
	)
	if c.editingID == "" {
		action = ActionCreated
		saved, err = c.repo.Create(ctx, fields)
	} else {
		action = ActionUpdated
		saved, err = c.repo.Update(ctx, c.editingID, fields)
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("action", string(action)).Msg("submit failed")
		c.notifier.Notify(Outcome{Action: action, ID: c.editingID, Err: err})
		return question.Question{}, fmt.Errorf("%s question: %w", action, err)
	}

	c.notifier.Notify(Outcome{Action: action, ID: saved.ID, Question: saved})
	c.reset()
	return saved, nil
}

// Delete removes question id once confirmer agrees. A declined confirmation
// returns ErrDeleteDeclined and never reaches the repository.
func (c *Controller) Delete(ctx context.Context, id string, confirmer Confirmer) error {
	if confirmer == nil {
		return ErrDeleteDeclined
	}
	ok, err := confirmer.Confirm(ctx, DeletePrompt)
	if err != nil {
		return fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		return ErrDeleteDeclined
	}

	removed, err := c.repo.Delete(ctx, id)
	if err == nil && !removed {
		err = question.ErrNotFound
	}
	if err != nil {
		c.notifier.Notify(Outcome{Action: ActionDeleted, ID: id, Err: err})
		return err
	}
	c.notifier.Notify(Outcome{Action: ActionDeleted, ID: id})
	if c.editingID == id {
		c.reset()
	}
	return nil
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.editingID = ""
	c.form = Form{}
}
