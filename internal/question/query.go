package question

import (
	"strings"

	"golang.org/x/text/cases"
)

// All is the filter sentinel meaning "no restriction".
const All = "all"

// Query selects a view of the collection. Empty Difficulty/Topic behave like All.
type Query struct {
	Search     string `json:"search"`
	Difficulty string `json:"difficulty"`
	Topic      string `json:"topic"`
}

// Statistics partitions a collection by difficulty.
type Statistics struct {
	Total  int `json:"total"`
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// Filter returns the questions matching q, keeping the input order.
func Filter(questions []Question, q Query) []Question {
	fold := cases.Fold()
	term := fold.String(q.Search)
	out := make([]Question, 0, len(questions))
	for _, item := range questions {
		if !matchesDifficulty(item, q.Difficulty) || !matchesTopic(item, q.Topic) {
			continue
		}
		if term != "" && !matchesTerm(fold, item, term) {
			continue
		}
		out = append(out, item.Clone())
	}
	return out
}

func matchesDifficulty(item Question, filter string) bool {
	if filter == "" || filter == All {
		return true
	}
	return string(item.Difficulty) == filter
}

func matchesTopic(item Question, filter string) bool {
	if filter == "" || filter == All {
		return true
	}
	return item.Topic == filter
}

func matchesTerm(fold cases.Caser, item Question, term string) bool {
	if strings.Contains(fold.String(item.Title), term) {
		return true
	}
	if strings.Contains(fold.String(item.Description), term) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(fold.String(tag), term) {
			return true
		}
	}
	return false
}

// DistinctTopics returns each topic present once, in order of first appearance.
func DistinctTopics(questions []Question) []string {
	seen := make(map[string]struct{}, len(questions))
	topics := make([]string, 0)
	for _, item := range questions {
		if _, ok := seen[item.Topic]; ok {
			continue
		}
		seen[item.Topic] = struct{}{}
		topics = append(topics, item.Topic)
	}
	return topics
}

// Stats counts questions per difficulty.
func Stats(questions []Question) Statistics {
	var s Statistics
	for _, item := range questions {
		switch item.Difficulty {
		case DifficultyEasy:
			s.Easy++
		case DifficultyMedium:
			s.Medium++
		case DifficultyHard:
			s.Hard++
		default:
			// unreachable for loaded or validated records
			continue
		}
		s.Total++
	}
	return s
}
