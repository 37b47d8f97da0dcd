package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcoot/spreadgame/internal/model"
)

// MustParseBoard builds a board fixture from its rendering, one string per
// row: R and B for stones, - playable, . pending, # obstacle.
func MustParseBoard(t testing.TB, rows ...string) *model.Board {
	t.Helper()
	b, err := model.ParseBoard(rows...)
	require.NoError(t, err)
	return b
}

// PlayAll applies plays in order and fails the test on an invalid one.
// It returns the last result.
func PlayAll(t testing.TB, b *model.Board, indexes ...int) model.PlayResult {
	t.Helper()
	result := model.Played
	for _, idx := range indexes {
		result = b.Play(idx)
		require.NotEqual(t, model.InvalidPosition, result, "play at %d", idx)
	}
	return result
}
