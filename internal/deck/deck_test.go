package deck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/czarbot/czarbot/internal/randutil"
)

func TestLoadCardsSkipsCommentsAndBlanks(t *testing.T) {
	path := writeCardFile(t, "first card\n# commented out\n\nsecond card\n  \nthird card\n")

	cards, err := LoadCards(path)
	require.NoError(t, err)
	assert.Equal(t, []Card{"first card", "second card", "third card"}, cards)
}

func TestLoadCardsMissingFile(t *testing.T) {
	_, err := LoadCards(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestLoadCardsEmptyFile(t *testing.T) {
	path := writeCardFile(t, "# only a comment\n\n")

	_, err := LoadCards(path)
	assert.Error(t, err, "a deck with no cards cannot build a game")
}

func TestDealRemovesCard(t *testing.T) {
	d := New([]Card{"a", "b", "c"}, randutil.New(1))

	seen := map[Card]bool{}
	for i := 3; i > 0; i-- {
		require.Equal(t, i, d.Len())
		card, err := d.Deal()
		require.NoError(t, err)
		assert.False(t, seen[card], "dealt the same instance twice")
		seen[card] = true
	}

	assert.True(t, d.Empty())
	_, err := d.Deal()
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestReturnAndReshuffle(t *testing.T) {
	d := New([]Card{"a", "b", "c"}, randutil.New(2))

	card, err := d.Deal()
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())

	d.Return(card)
	d.Shuffle()
	assert.Equal(t, 3, d.Len())

	// The returned card must be present exactly once.
	count := 0
	for !d.Empty() {
		c, err := d.Deal()
		require.NoError(t, err)
		if c == card {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestDuplicateCardsAreDistinctInstances(t *testing.T) {
	d := New([]Card{"same", "same", "same"}, randutil.New(3))

	_, err := d.Deal()
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len(), "dealing removes exactly one instance")
}

func TestNewCopiesInput(t *testing.T) {
	cards := []Card{"a", "b", "c", "d"}
	d := New(cards, randutil.New(4))

	_, err := d.Deal()
	require.NoError(t, err)
	assert.Equal(t, []Card{"a", "b", "c", "d"}, cards, "caller's slice must be untouched")
}

func writeCardFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cards.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
