package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/gokatarajesh/dsa-vault/internal/question"
)

func assertSameQuestions(t *testing.T, want, got []question.Question) {
	t.Helper()
	if !assert.Len(t, got, len(want)) {
		return
	}
	for i := range want {
		assert.Equal(t, want[i].Fields(), got[i].Fields())
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.True(t, want[i].CreatedAt.Equal(got[i].CreatedAt), "createdAt %s != %s", want[i].CreatedAt, got[i].CreatedAt)
	}
}

func TestAdapterRoundTrip(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter(NewFileSlot(t.TempDir(), ""), zerolog.Nop())

	repo, err := question.Open(ctx, adapter, question.Options{Logger: zerolog.Nop()})
	assert.NoError(t, err)
	_, err = repo.Create(ctx, question.Fields{
		Title: "Two Sum", Description: "d", Difficulty: question.DifficultyEasy, Topic: "Arrays",
		Tags: []string{"hash-table", "hash-table"}, Solution: question.Text(""),
	})
	assert.NoError(t, err)
	_, err = repo.Create(ctx, question.Fields{
		Title: "Word Ladder", Description: "bfs", Difficulty: question.DifficultyHard, Topic: "Graphs",
		TimeComplexity: question.Text("O(n*m)"), SpaceComplexity: question.Text("O(n)"),
	})
	assert.NoError(t, err)

	before := repo.List(ctx)
	assert.NoError(t, adapter.Save(ctx, before))
	loaded, err := adapter.Load(ctx)

	assert.NoError(t, err)
	assertSameQuestions(t, before, loaded)
	assert.NotNil(t, loaded[1].Solution, "empty solution stays distinct from absent")
	assert.Equal(t, "", *loaded[1].Solution)
	assert.Nil(t, loaded[0].Solution)

	reopened, err := question.Open(ctx, adapter, question.Options{Logger: zerolog.Nop()})
	assert.NoError(t, err)
	assert.False(t, reopened.Recovered())
	assertSameQuestions(t, before, reopened.List(ctx))
}

func TestAdapterLoadMissingSlot(t *testing.T) {
	adapter := NewAdapter(NewFileSlot(t.TempDir(), "nothing"), zerolog.Nop())

	loaded, err := adapter.Load(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestAdapterLoadRejectsCorruptBlobs(t *testing.T) {
	blobs := map[string]string{
		"not json":        `{"broken"`,
		"bad timestamp":   `[{"id":"1","title":"t","description":"d","difficulty":"Easy","topic":"x","tags":[],"createdAt":"yesterday"}]`,
		"bad difficulty":  `[{"id":"1","title":"t","description":"d","difficulty":"Extreme","topic":"x","tags":[],"createdAt":"2024-01-01T00:00:00Z"}]`,
		"missing id":      `[{"title":"t","description":"d","difficulty":"Easy","topic":"x","tags":[],"createdAt":"2024-01-01T00:00:00Z"}]`,
		"duplicate id":    `[{"id":"1","title":"t","description":"d","difficulty":"Easy","topic":"x","createdAt":"2024-01-01T00:00:00Z"},{"id":"1","title":"t","description":"d","difficulty":"Easy","topic":"x","createdAt":"2024-01-01T00:00:00Z"}]`,
		"blank title":     `[{"id":"1","title":" ","description":"d","difficulty":"Easy","topic":"x","createdAt":"2024-01-01T00:00:00Z"}]`,
		"blank tag":       `[{"id":"1","title":"t","description":"d","difficulty":"Easy","topic":"x","tags":["graphs",""],"createdAt":"2024-01-01T00:00:00Z"}]`,
		"object not list": `{"id":"1"}`,
	}

	for name, blob := range blobs {
		t.Run(name, func(t *testing.T) {
			slot := NewFileSlot(t.TempDir(), "")
			assert.NoError(t, slot.Write(context.Background(), []byte(blob)))
			adapter := NewAdapter(slot, zerolog.Nop())

			_, err := adapter.Load(context.Background())
			assert.ErrorIs(t, err, question.ErrCorruptSnapshot)

			repo, err := question.Open(context.Background(), adapter, question.Options{Logger: zerolog.Nop()})
			assert.NoError(t, err)
			assert.True(t, repo.Recovered())
			assert.Empty(t, repo.List(context.Background()))
		})
	}
}

func TestDecodeAcceptsMillisecondTimestamps(t *testing.T) {
	blob := `[{"id":"1717000000000","title":"Two Sum","description":"d","difficulty":"Easy","topic":"Arrays","tags":["hash-table"],"createdAt":"2024-05-29T16:26:40.123Z"}]`

	got, err := Decode([]byte(blob))

	assert.NoError(t, err)
	assert.Len(t, got, 1)
	want := time.Date(2024, 5, 29, 16, 26, 40, 123_000_000, time.UTC)
	assert.True(t, want.Equal(got[0].CreatedAt))
	assert.Equal(t, []string{"hash-table"}, got[0].Tags)
}

func TestEncodeLayout(t *testing.T) {
	created := time.Date(2024, 5, 29, 16, 26, 40, 5, time.UTC)
	data, err := Encode([]question.Question{{
		ID: "a", Title: "t", Description: "d", Difficulty: question.DifficultyMedium, Topic: "x", CreatedAt: created,
	}})

	assert.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a","title":"t","description":"d","difficulty":"Medium","topic":"x","tags":[],"createdAt":"2024-05-29T16:26:40.000000005Z"}]`, string(data))
}

func TestFileSlotWriteReplacesWholeFile(t *testing.T) {
	dir := t.TempDir()
	slot := NewFileSlot(dir, "vault")
	ctx := context.Background()

	assert.NoError(t, slot.Write(ctx, []byte(`[1,2,3,4,5,6,7,8,9]`)))
	assert.NoError(t, slot.Write(ctx, []byte(`[]`)))

	data, found, err := slot.Read(ctx)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, string(data))

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
	assert.Equal(t, "vault.json", entries[0].Name())
}
