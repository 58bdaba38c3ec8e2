package kernel_test

import (
	"testing"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	t.Run("should create valid unique UUIDs", func(t *testing.T) {
		a := kernel.NewUUID()
		b := kernel.NewUUID()

		require.NoError(t, a.Validate())
		require.NoError(t, b.Validate())
		assert.False(t, a.IsEqual(b))
	})
}

func TestUUIDFromString(t *testing.T) {
	t.Run("should parse canonical form", func(t *testing.T) {
		id, err := kernel.UUIDFromString("550e8400-e29b-41d4-a716-446655440000")

		require.NoError(t, err)
		assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())
	})

	t.Run("should reject malformed input", func(t *testing.T) {
		_, err := kernel.UUIDFromString("not-a-uuid")

		require.Error(t, err)
	})
}

func TestUUIDFromBytes(t *testing.T) {
	t.Run("should round-trip through bytes", func(t *testing.T) {
		original := kernel.NewUUID()
		raw := original.Bytes()

		restored, err := kernel.UUIDFromBytes(raw[:])
		require.NoError(t, err)
		assert.True(t, original.IsEqual(restored))
	})

	t.Run("should reject nil UUID bytes", func(t *testing.T) {
		_, err := kernel.UUIDFromBytes(make([]byte, 16))

		require.Error(t, err)
	})

	t.Run("should reject wrong length", func(t *testing.T) {
		_, err := kernel.UUIDFromBytes([]byte{1, 2, 3})

		require.Error(t, err)
	})
}

func TestUUID_Validate(t *testing.T) {
	t.Run("zero value is invalid", func(t *testing.T) {
		var id kernel.UUID

		require.Error(t, id.Validate())
		assert.Equal(t, kernel.ErrUUIDIsNotConstructed, id.Validate())
	})
}
