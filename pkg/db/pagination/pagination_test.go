package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: "2026-03-10T12:00:00Z", ID: "rec-9"}

	encoded := EncodeCursor(in)
	require.NotEmpty(t, encoded)

	out, err := DecodeCursor(encoded)
	require.NoError(t, err)
	require.Equal(t, in, *out)
}

func TestDecodeCursorInvalid(t *testing.T) {
	_, err := DecodeCursor("not-base64!")
	require.Error(t, err)

	_, err = DecodeCursor("bm90LWpzb24=")
	require.Error(t, err)
}

type row struct{ id string }

func TestBuildPage(t *testing.T) {
	extract := func(r *row) Cursor { return Cursor{ID: r.id} }

	rows := []*row{{"a"}, {"b"}, {"c"}, {"d"}}
	page, info := BuildPage(rows, 3, extract)
	require.Len(t, page, 3)
	require.True(t, info.HasMore)
	require.NotEmpty(t, info.NextCursor)

	cursor, err := DecodeCursor(info.NextCursor)
	require.NoError(t, err)
	require.Equal(t, "c", cursor.ID)

	page, info = BuildPage(rows[:2], 3, extract)
	require.Len(t, page, 2)
	require.False(t, info.HasMore)

	page, info = BuildPage(nil, 3, extract)
	require.Empty(t, page)
	require.False(t, info.HasMore)
	require.Empty(t, info.NextCursor)
}
