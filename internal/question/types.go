package question

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is the closed set of difficulty levels a question can carry.
type Difficulty string

// Difficulty constants. The string values are what gets persisted.
const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists every level in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ParseDifficulty accepts any casing of a known level ("hard", "HARD").
func ParseDifficulty(raw string) (Difficulty, error) {
	trimmed := strings.TrimSpace(raw)
	for _, d := range Difficulties {
		if strings.EqualFold(trimmed, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", raw)
}

// Question is a single catalogued practice problem.
type Question struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Difficulty      Difficulty `json:"difficulty"`
	Topic           string     `json:"topic"`
	Tags            []string   `json:"tags"`
	Solution        *string    `json:"solution,omitempty"`
	TimeComplexity  *string    `json:"timeComplexity,omitempty"`
	SpaceComplexity *string    `json:"spaceComplexity,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Fields are the mutable attributes of a Question: everything except ID and CreatedAt.
type Fields struct {
	Title           string
	Description     string
	Difficulty      Difficulty
	Topic           string
	Tags            []string
	Solution        *string
	TimeComplexity  *string
	SpaceComplexity *string
}

// Fields extracts the mutable attributes of q.
func (q Question) Fields() Fields {
	return Fields{
		Title:           q.Title,
		Description:     q.Description,
		Difficulty:      q.Difficulty,
		Topic:           q.Topic,
		Tags:            cloneTags(q.Tags),
		Solution:        cloneText(q.Solution),
		TimeComplexity:  cloneText(q.TimeComplexity),
		SpaceComplexity: cloneText(q.SpaceComplexity),
	}
}

// Validate checks the required text fields, the difficulty level and that
// every tag is a non-blank token.
func (f Fields) Validate() error {
	var missing []string
	if strings.TrimSpace(f.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(f.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(f.Topic) == "" {
		missing = append(missing, "topic")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	if !f.Difficulty.Valid() {
		return &ValidationError{Fields: []string{"difficulty"}, Reason: fmt.Sprintf("unknown difficulty %q", f.Difficulty)}
	}
	for _, tag := range f.Tags {
		if strings.TrimSpace(tag) == "" {
			return &ValidationError{Fields: []string{"tags"}, Reason: "tags must not be blank"}
		}
	}
	return nil
}

func (q *Question) apply(f Fields) {
	q.Title = f.Title
	q.Description = f.Description
	q.Difficulty = f.Difficulty
	q.Topic = f.Topic
	q.Tags = cloneTags(f.Tags)
	q.Solution = cloneText(f.Solution)
	q.TimeComplexity = cloneText(f.TimeComplexity)
	q.SpaceComplexity = cloneText(f.SpaceComplexity)
}

// Clone returns a deep copy that shares no slices or pointers with q.
func (q Question) Clone() Question {
	out := q
	out.Tags = cloneTags(q.Tags)
	out.Solution = cloneText(q.Solution)
	out.TimeComplexity = cloneText(q.TimeComplexity)
	out.SpaceComplexity = cloneText(q.SpaceComplexity)
	return out
}

// Text returns a pointer to s, for filling the optional fields.
func Text(s string) *string {
	return &s
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

func cloneText(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneAll(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}
