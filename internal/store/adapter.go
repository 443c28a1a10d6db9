package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/dsa-vault/internal/question"
)

// DefaultSlot is the slot name used when none is configured.
const DefaultSlot = "dsaQuestions"

// Slot is a single named blob in some durable backend.
type Slot interface {
	// Read returns the stored blob, or found=false if the slot was never written.
	Read(ctx context.Context) (data []byte, found bool, err error)
	// Write replaces the blob in one step; readers never observe a partial value.
	Write(ctx context.Context, data []byte) error
	Name() string
}

// Adapter maps the question collection onto a Slot as a JSON array.
type Adapter struct {
	slot   Slot
	logger zerolog.Logger
}

var _ question.Store = (*Adapter)(nil)

func NewAdapter(slot Slot, logger zerolog.Logger) *Adapter {
	return &Adapter{
		slot:   slot,
		logger: logger.With().Str("component", "store").Str("slot", slot.Name()).Logger(),
	}
}

// Load decodes the slot. A missing slot yields an empty collection; a blob
// that does not decode into valid questions yields question.ErrCorruptSnapshot.
func (a *Adapter) Load(ctx context.Context) ([]question.Question, error) {
	data, found, err := a.slot.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", a.slot.Name(), err)
	}
	if !found {
		a.logger.Debug().Msg("slot empty")
		return []question.Question{}, nil
	}
	questions, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("slot %s: %w", a.slot.Name(), err)
	}
	return questions, nil
}

// Save writes the full collection in a single slot write.
func (a *Adapter) Save(ctx context.Context, questions []question.Question) error {
	data, err := Encode(questions)
	if err != nil {
		return err
	}
	if err := a.slot.Write(ctx, data); err != nil {
		return fmt.Errorf("write slot %s: %w", a.slot.Name(), err)
	}
	a.logger.Debug().Int("count", len(questions)).Int("bytes", len(data)).Msg("snapshot saved")
	return nil
}

type record struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Difficulty      string   `json:"difficulty"`
	Topic           string   `json:"topic"`
	Tags            []string `json:"tags"`
	Solution        *string  `json:"solution,omitempty"`
	TimeComplexity  *string  `json:"timeComplexity,omitempty"`
	SpaceComplexity *string  `json:"spaceComplexity,omitempty"`
	CreatedAt       string   `json:"createdAt"`
}

// Encode renders questions in the persisted layout.
func Encode(questions []question.Question) ([]byte, error) {
	records := make([]record, len(questions))
	for i, q := range questions {
		tags := q.Tags
		if tags == nil {
			tags = []string{}
		}
		records[i] = record{
			ID:              q.ID,
			Title:           q.Title,
			Description:     q.Description,
			Difficulty:      string(q.Difficulty),
			Topic:           q.Topic,
			Tags:            tags,
			Solution:        q.Solution,
			TimeComplexity:  q.TimeComplexity,
			SpaceComplexity: q.SpaceComplexity,
			CreatedAt:       q.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode questions: %w", err)
	}
	return data, nil
}

// Decode parses the persisted layout, rejecting records that break the
// collection invariants.
func Decode(data []byte) ([]question.Question, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", question.ErrCorruptSnapshot, err)
	}

	questions := make([]question.Question, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		if strings.TrimSpace(rec.ID) == "" {
			return nil, fmt.Errorf("%w: record %d has no id", question.ErrCorruptSnapshot, i)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", question.ErrCorruptSnapshot, rec.ID)
		}
		seen[rec.ID] = struct{}{}

		createdAt, err := time.Parse(time.RFC3339Nano, rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: record %q createdAt: %v", question.ErrCorruptSnapshot, rec.ID, err)
		}
		tags := rec.Tags
		if tags == nil {
			tags = []string{}
		}
		q := question.Question{
			ID:              rec.ID,
			Title:           rec.Title,
			Description:     rec.Description,
			Difficulty:      question.Difficulty(rec.Difficulty),
			Topic:           rec.Topic,
			Tags:            tags,
			Solution:        rec.Solution,
			TimeComplexity:  rec.TimeComplexity,
			SpaceComplexity: rec.SpaceComplexity,
			CreatedAt:       createdAt.UTC(),
		}
		if err := q.Fields().Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %q: %v", question.ErrCorruptSnapshot, rec.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}
