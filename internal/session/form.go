package session

import (
	"fmt"
	"strings"

	"github.com/gokatarajesh/dsa-vault/internal/question"
)

// Form holds the raw text a user is editing. Tags is comma separated.
type Form struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Difficulty      string `json:"difficulty"`
	Topic           string `json:"topic"`
	Tags            string `json:"tags"`
	Solution        string `json:"solution"`
	TimeComplexity  string `json:"timeComplexity"`
	SpaceComplexity string `json:"spaceComplexity"`
}

// Field names accepted by SetField.
const (
	FieldTitle           = "title"
	FieldDescription     = "description"
	FieldDifficulty      = "difficulty"
	FieldTopic           = "topic"
	FieldTags            = "tags"
	FieldSolution        = "solution"
	FieldTimeComplexity  = "time"
	FieldSpaceComplexity = "space"
)

// FieldNames lists the editable fields in form order.
var FieldNames = []string{
	FieldTitle, FieldDescription, FieldDifficulty, FieldTopic,
	FieldTags, FieldSolution, FieldTimeComplexity, FieldSpaceComplexity,
}

// NewForm returns the blank form shown for a new question.
func NewForm() Form {
	return Form{Difficulty: string(question.DifficultyEasy)}
}

// FormFrom pre-populates a form from an existing question.
func FormFrom(q question.Question) Form {
	return Form{
		Title:           q.Title,
		Description:     q.Description,
		Difficulty:      string(q.Difficulty),
		Topic:           q.Topic,
		Tags:            strings.Join(q.Tags, ", "),
		Solution:        deref(q.Solution),
		TimeComplexity:  deref(q.TimeComplexity),
		SpaceComplexity: deref(q.SpaceComplexity),
	}
}

// Set assigns one field by name.
func (f *Form) Set(field, value string) error {
	switch field {
	case FieldTitle:
		f.Title = value
	case FieldDescription:
		f.Description = value
	case FieldDifficulty:
		f.Difficulty = value
	case FieldTopic:
		f.Topic = value
	case FieldTags:
		f.Tags = value
	case FieldSolution:
		f.Solution = value
	case FieldTimeComplexity:
		f.TimeComplexity = value
	case FieldSpaceComplexity:
		f.SpaceComplexity = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// Fields validates the form and converts it to repository input.
// Required text is trimmed, blank optional text becomes absent.
func (f Form) Fields() (question.Fields, error) {
	out := question.Fields{
		Title:           strings.TrimSpace(f.Title),
		Description:     strings.TrimSpace(f.Description),
		Topic:           strings.TrimSpace(f.Topic),
		Tags:            SplitTags(f.Tags),
		Solution:        optional(f.Solution),
		TimeComplexity:  optional(f.TimeComplexity),
		SpaceComplexity: optional(f.SpaceComplexity),
	}

	var missing []string
	if out.Title == "" {
		missing = append(missing, FieldTitle)
	}
	if out.Description == "" {
		missing = append(missing, FieldDescription)
	}
	if out.Topic == "" {
		missing = append(missing, FieldTopic)
	}
	if len(missing) > 0 {
		return question.Fields{}, &question.ValidationError{Fields: missing}
	}

	difficulty := question.DifficultyEasy
	if strings.TrimSpace(f.Difficulty) != "" {
		parsed, err := question.ParseDifficulty(f.Difficulty)
		if err != nil {
			return question.Fields{}, &question.ValidationError{Fields: []string{FieldDifficulty}, Reason: err.Error()}
		}
		difficulty = parsed
	}
	out.Difficulty = difficulty
	return out, nil
}

// SplitTags splits comma separated input, trimming tokens and dropping empty ones.
func SplitTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func optional(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
