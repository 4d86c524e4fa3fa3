package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCursor(t *testing.T) {
	ts := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	encoded := EncodeCursor("post-42", ts)
	require.NotEmpty(t, encoded)

	cursor, err := DecodeCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, "post-42", cursor.LastID)
	assert.True(t, ts.Equal(cursor.Timestamp))
}

func TestEncodeCursorEmptyID(t *testing.T) {
	assert.Empty(t, EncodeCursor("", time.Now()))
}

func TestDecodeCursorEmpty(t *testing.T) {
	cursor, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeCursorInvalid(t *testing.T) {
	_, err := DecodeCursor("not-base64!!!")
	assert.Equal(t, ErrInvalidCursor, err)

	// Valid base64 but missing separator.
	_, err = DecodeCursor("cG9zdC00Mg==")
	assert.Equal(t, ErrInvalidCursor, err)
}

func TestCreateNextCursor(t *testing.T) {
	type item struct {
		id string
		ts time.Time
	}
	ts := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	items := []item{{"a", ts}, {"b", ts.Add(time.Minute)}}

	getID := func(i item) string { return i.id }
	getTS := func(i item) time.Time { return i.ts }

	// Full page: cursor points at the last item.
	cursor := CreateNextCursor(items, 2, getID, getTS)
	decoded, err := DecodeCursor(cursor)
	require.NoError(t, err)
	assert.Equal(t, "b", decoded.LastID)

	// Short page: no more results.
	assert.Empty(t, CreateNextCursor(items, 3, getID, getTS))
	assert.Empty(t, CreateNextCursor([]item{}, 2, getID, getTS))
}
