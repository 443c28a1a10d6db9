package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/dsa-vault/internal/question"
	"github.com/gokatarajesh/dsa-vault/internal/session"
)

// ErrQuit is returned by Execute when the user asks to leave.
var ErrQuit = errors.New("quit")

// REPL is the interactive front end: it renders repository views and routes
// form commands through an edit session controller.
type REPL struct {
	repo      *question.Repository
	ctrl      *session.Controller
	confirmer session.Confirmer
	out       io.Writer
	logger    zerolog.Logger

	query    question.Query
	lastView []question.Question
}

func New(repo *question.Repository, out io.Writer, confirmer session.Confirmer, logger zerolog.Logger) *REPL {
	r := &REPL{
		repo:      repo,
		confirmer: confirmer,
		out:       out,
		logger:    logger,
		query:     question.Query{Difficulty: question.All, Topic: question.All},
	}
	r.ctrl = session.NewController(repo, session.NotifierFunc(r.notify), logger)
	return r
}

// Run reads commands from rl until EOF, interrupt or quit.
func (r *REPL) Run(ctx context.Context, rl *readline.Instance) error {
	r.printLine("DSA Vault. Type 'help' for commands.")
	for {
		rl.SetPrompt(r.prompt())
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		if err := r.Execute(ctx, line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			r.printLine("error: %v", err)
		}
	}
}

func (r *REPL) prompt() string {
	if r.ctrl.State() != session.StateEditing {
		return "vault> "
	}
	if id, ok := r.ctrl.EditingID(); ok {
		return fmt.Sprintf("vault[edit %s]> ", shortID(id))
	}
	return "vault[new]> "
}

// Execute runs one command line.
func (r *REPL) Execute(ctx context.Context, line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(tokens[0]), tokens[1:]

	switch cmd {
	case "help":
		r.printHelp()
	case "quit", "exit":
		return ErrQuit
	case "list", "ls":
		r.list(ctx)
	case "search":
		r.query.Search = strings.Join(args, " ")
		r.list(ctx)
	case "filter":
		if err := r.setFilter(args); err != nil {
			return err
		}
		r.list(ctx)
	case "clear":
		r.query = question.Query{Difficulty: question.All, Topic: question.All}
		r.list(ctx)
	case "topics":
		for _, topic := range r.repo.Topics(ctx) {
			r.printLine("  %s", topic)
		}
	case "stats":
		s := r.repo.Statistics(ctx)
		r.printLine("Total %d | Easy %d | Medium %d | Hard %d", s.Total, s.Easy, s.Medium, s.Hard)
	case "view", "show":
		if len(args) == 0 {
			return r.showForm()
		}
		return r.view(ctx, args[0])
	case "add":
		if err := r.ctrl.Add(); err != nil {
			return err
		}
		r.printLine("New question. Use 'set <field> <value>' then 'submit' (fields: %s).", strings.Join(session.FieldNames, ", "))
	case "edit":
		if len(args) != 1 {
			return errors.New("usage: edit <id|#>")
		}
		id, err := r.resolveID(ctx, args[0])
		if err != nil {
			return err
		}
		if err := r.ctrl.Edit(ctx, id); err != nil {
			return err
		}
		return r.showForm()
	case "set":
		if len(args) < 1 {
			return errors.New("usage: set <field> <value>")
		}
		return r.ctrl.SetField(strings.ToLower(args[0]), strings.Join(args[1:], " "))
	case "submit", "save":
		_, err := r.ctrl.Submit(ctx)
		var verr *question.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("please fill in: %s", strings.Join(verr.Fields, ", "))
		}
		return err
	case "cancel":
		r.ctrl.Cancel()
	case "delete", "rm":
		if len(args) != 1 {
			return errors.New("usage: delete <id|#>")
		}
		id, err := r.resolveID(ctx, args[0])
		if err != nil {
			return err
		}
		err = r.ctrl.Delete(ctx, id, r.confirmer)
		if errors.Is(err, session.ErrDeleteDeclined) {
			r.printLine("Delete cancelled.")
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
	return nil
}

func (r *REPL) setFilter(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: filter difficulty|topic <value|all>")
	}
	switch strings.ToLower(args[0]) {
	case "difficulty":
		if strings.EqualFold(args[1], question.All) {
			r.query.Difficulty = question.All
			return nil
		}
		d, err := question.ParseDifficulty(args[1])
		if err != nil {
			return err
		}
		r.query.Difficulty = string(d)
	case "topic":
		if strings.EqualFold(args[1], question.All) {
			r.query.Topic = question.All
			return nil
		}
		r.query.Topic = args[1]
	default:
		return fmt.Errorf("unknown filter %q", args[0])
	}
	return nil
}

func (r *REPL) list(ctx context.Context) {
	all := r.repo.List(ctx)
	r.lastView = question.Filter(all, r.query)
	switch {
	case len(all) == 0:
		r.printLine("No questions yet. Start building your vault with 'add'.")
		return
	case len(r.lastView) == 0:
		r.printLine("No questions match your search. Try adjusting the search or filters.")
		return
	}
	for i, q := range r.lastView {
		r.printLine("%3d  %-8s %-6s  %-40s [%s] %s", i+1, shortID(q.ID), q.Difficulty, q.Title, q.Topic, strings.Join(q.Tags, ", "))
	}
	r.printLine("%d of %d questions", len(r.lastView), len(all))
}

func (r *REPL) view(ctx context.Context, ref string) error {
	id, err := r.resolveID(ctx, ref)
	if err != nil {
		return err
	}
	q, err := r.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	r.printLine("%s  (%s, %s)", q.Title, q.Difficulty, q.Topic)
	r.printLine("id:      %s", q.ID)
	r.printLine("added:   %s", q.CreatedAt.Local().Format("2006-01-02 15:04"))
	if len(q.Tags) > 0 {
		r.printLine("tags:    %s", strings.Join(q.Tags, ", "))
	}
	r.printLine("\n%s\n", q.Description)
	if q.Solution != nil {
		r.printLine("solution:\n%s", *q.Solution)
	}
	if q.TimeComplexity != nil {
		r.printLine("time:    %s", *q.TimeComplexity)
	}
	if q.SpaceComplexity != nil {
		r.printLine("space:   %s", *q.SpaceComplexity)
	}
	return nil
}

func (r *REPL) showForm() error {
	if r.ctrl.State() != session.StateEditing {
		return session.ErrNotEditing
	}
	f := r.ctrl.Form()
	rows := []struct{ name, value string }{
		{session.FieldTitle, f.Title},
		{session.FieldDescription, f.Description},
		{session.FieldDifficulty, f.Difficulty},
		{session.FieldTopic, f.Topic},
		{session.FieldTags, f.Tags},
		{session.FieldSolution, f.Solution},
		{session.FieldTimeComplexity, f.TimeComplexity},
		{session.FieldSpaceComplexity, f.SpaceComplexity},
	}
	for _, row := range rows {
		r.printLine("  %-12s %s", row.name, row.value)
	}
	return nil
}

// resolveID accepts a row number from the last listing, a full id, or a
// unique id prefix.
func (r *REPL) resolveID(ctx context.Context, ref string) (string, error) {
	if n, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		if n >= 1 && n <= len(r.lastView) {
			return r.lastView[n-1].ID, nil
		}
	}
	var match string
	for _, q := range r.repo.List(ctx) {
		if q.ID == ref {
			return q.ID, nil
		}
		if strings.HasPrefix(q.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", ref)
			}
			match = q.ID
		}
	}
	if match == "" {
		return "", question.ErrNotFound
	}
	return match, nil
}

func (r *REPL) notify(o session.Outcome) {
	if o.Err != nil {
		r.logger.Debug().Err(o.Err).Str("action", string(o.Action)).Msg("action failed")
		return
	}
	switch o.Action {
	case session.ActionCreated:
		r.printLine("Question Added: your DSA question has been successfully added.")
	case session.ActionUpdated:
		r.printLine("Question Updated: your DSA question has been successfully updated.")
	case session.ActionDeleted:
		r.printLine("Question Deleted: the DSA question has been removed from your vault.")
	}
}

func (r *REPL) printHelp() {
	r.printLine(`Commands:
  list | search <term> | filter difficulty|topic <value|all> | clear
  topics | stats | view <id|#>
  add | edit <id|#> | set <field> <value> | show | submit | cancel
  delete <id|#>
  quit`)
}

func (r *REPL) printLine(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
