package question

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleQuestions() []Question {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []Question{
		{ID: "3", Title: "LRU Cache", Description: "Design a cache with O(1) ops.", Difficulty: DifficultyMedium, Topic: "Design", Tags: []string{"Linked-List", "hash-table"}, CreatedAt: created},
		{ID: "2", Title: "Trapping Rain Water", Description: "Compute trapped water.", Difficulty: DifficultyHard, Topic: "Arrays", Tags: []string{"two-pointers"}, CreatedAt: created},
		{ID: "1", Title: "Two Sum", Description: "Classic warmup.", Difficulty: DifficultyEasy, Topic: "Arrays", Tags: []string{}, CreatedAt: created},
	}
}

func ids(qs []Question) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}

func TestFilterEmptyQueryKeepsEverything(t *testing.T) {
	qs := sampleQuestions()

	assert.Equal(t, qs, Filter(qs, Query{Search: "", Difficulty: All, Topic: All}))
	assert.Equal(t, qs, Filter(qs, Query{}))
}

func TestFilter(t *testing.T) {
	qs := sampleQuestions()

	cases := []struct {
		name  string
		query Query
		want  []string
	}{
		{name: "title match is case insensitive", query: Query{Search: "TWO SUM"}, want: []string{"1"}},
		{name: "tag match", query: Query{Search: "two"}, want: []string{"2", "1"}},
		{name: "description match", query: Query{Search: "o(1)"}, want: []string{"3"}},
		{name: "tag casing folded", query: Query{Search: "linked-list"}, want: []string{"3"}},
		{name: "difficulty", query: Query{Difficulty: "Hard"}, want: []string{"2"}},
		{name: "topic", query: Query{Topic: "Arrays", Difficulty: All}, want: []string{"2", "1"}},
		{name: "predicates are anded", query: Query{Search: "two", Topic: "Arrays", Difficulty: "Easy"}, want: []string{"1"}},
		{name: "topic is exact", query: Query{Topic: "arrays"}, want: []string{}},
		{name: "no match", query: Query{Search: "graph"}, want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Filter(qs, tc.query)))
		})
	}
}

func TestDistinctTopics(t *testing.T) {
	assert.Equal(t, []string{"Design", "Arrays"}, DistinctTopics(sampleQuestions()))
	assert.Empty(t, DistinctTopics(nil))
}

func TestStatsAddUp(t *testing.T) {
	qs := sampleQuestions()
	qs = append(qs, Question{ID: "4", Difficulty: DifficultyEasy})

	s := Stats(qs)

	assert.Equal(t, Statistics{Total: 4, Easy: 2, Medium: 1, Hard: 1}, s)
	assert.Equal(t, s.Total, s.Easy+s.Medium+s.Hard)
	assert.Equal(t, Statistics{}, Stats(nil))
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty(" medium ")
	assert.NoError(t, err)
	assert.Equal(t, DifficultyMedium, d)

	_, err = ParseDifficulty("impossible")
	assert.Error(t, err)
}
