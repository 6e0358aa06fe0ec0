package vcerrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsType(t *testing.T) {
	t.Run("DirectMatch", func(t *testing.T) {
		err := CommitNotFound("abc123")
		assert.True(t, IsType(err, ErrorTypeCommitNotFound))
		assert.False(t, IsType(err, ErrorTypeMissingObject))
	})

	t.Run("WrappedMatch", func(t *testing.T) {
		err := fmt.Errorf("restoring: %w", MissingObject("aaf4_a.txt"))
		assert.True(t, IsType(err, ErrorTypeMissingObject))
	})

	t.Run("PlainError", func(t *testing.T) {
		assert.False(t, IsType(fmt.Errorf("boom"), ErrorTypeEmptyStaging))
	})

	t.Run("NilError", func(t *testing.T) {
		assert.False(t, IsType(nil, ErrorTypeEmptyStaging))
	})
}
