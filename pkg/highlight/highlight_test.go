package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerms(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty", "", nil},
		{"single word", "Meeting", []string{"meeting"}},
		{"single stopword kept", "the", []string{"the"}},
		{"stopwords dropped", "the meeting notes", []string{"meeting", "notes"}},
		{"duplicates dropped", "meeting MEETING", []string{"meeting"}},
		{"all stopwords keeps first", "the of and", []string{"the"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Terms(tc.query))
		})
	}
}

func TestSpansCaseInsensitive(t *testing.T) {
	h, err := New("meeting")
	require.NoError(t, err)

	spans := h.Spans("Meeting today, another MEETING tomorrow")
	require.Len(t, spans, 2)

	assert.Equal(t, Span{From: 0, To: 7, Term: "meeting"}, spans[0])
	assert.Equal(t, Span{From: 23, To: 30, Term: "meeting"}, spans[1])
}

func TestSpansUseRuneOffsets(t *testing.T) {
	h, err := New("meeting")
	require.NoError(t, err)

	// "naïve " is 6 runes but 7 bytes; offsets must count runes.
	spans := h.Spans("naïve meeting")
	require.Len(t, spans, 1)
	assert.Equal(t, Span{From: 6, To: 13, Term: "meeting"}, spans[0])
}

func TestSpansMultiTermDropsStopwords(t *testing.T) {
	h, err := New("the shopping list")
	require.NoError(t, err)

	spans := h.Spans("the shopping list on the fridge")
	require.Len(t, spans, 2)
	assert.Equal(t, "shopping", spans[0].Term)
	assert.Equal(t, "list", spans[1].Term)

	for _, sp := range spans {
		assert.NotEqual(t, "the", sp.Term, "stopwords must not be highlighted")
	}
}

func TestSpansOverlapKeepsLongest(t *testing.T) {
	h, err := New("note notebook")
	require.NoError(t, err)

	spans := h.Spans("my notebook")
	require.Len(t, spans, 1)
	assert.Equal(t, Span{From: 3, To: 11, Term: "notebook"}, spans[0])
}

func TestSpansAdjacentMatchesBothKept(t *testing.T) {
	h, err := New("note")
	require.NoError(t, err)

	spans := h.Spans("notenote")
	require.Len(t, spans, 2)
	assert.Equal(t, Span{From: 0, To: 4, Term: "note"}, spans[0])
	assert.Equal(t, Span{From: 4, To: 8, Term: "note"}, spans[1])
}

func TestEmptyQueryMatchesNothing(t *testing.T) {
	h, err := New("")
	require.NoError(t, err)

	assert.Nil(t, h.Spans("anything at all"))
}

func TestSpansEmptyText(t *testing.T) {
	h, err := New("meeting")
	require.NoError(t, err)

	assert.Nil(t, h.Spans(""))
}
