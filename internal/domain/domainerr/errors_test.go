package domainerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStorageError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewStorageError("insert match", nil))

	cause := errors.New("disk full")
	err := fmt.Errorf("collect: %w", NewStorageError("insert match", cause))
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)

	var storageErr *StorageError
	if assert.ErrorAs(t, err, &storageErr) {
		assert.Equal(t, "insert match", storageErr.Op)
	}
	assert.Equal(t, "collect: storage insert match: disk full", err.Error())
}
