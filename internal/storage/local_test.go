package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_PutGetRoundTrip(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := s.Put(ctx, "documents/doc-1/contract.docx", []byte("content"))
	require.NoError(t, err)
	assert.Equal(t, "documents/doc-1/contract.docx", ref)

	data, err := s.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), data)
}

func TestLocal_PutOverwrites(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Put(ctx, "a.txt", []byte("one"))
	require.NoError(t, err)
	_, err = s.Put(ctx, "a.txt", []byte("two"))
	require.NoError(t, err)

	data, err := s.Get(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)
}

func TestLocal_GetMissing(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "never/written.bin")
	assert.Error(t, err)
}

func TestLocal_RejectsTraversal(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "../outside.txt", []byte("x"))
	assert.Error(t, err)

	_, err = s.Get(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
}

func TestLocal_DeleteMissingIsNoop(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, s.Delete(context.Background(), "gone.txt"))
}
