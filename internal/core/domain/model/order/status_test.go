package order_test

import (
	"testing"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Validate(t *testing.T) {
	t.Run("should accept all defined statuses", func(t *testing.T) {
		statuses := []order.Status{
			order.StatusPending,
			order.StatusOffered,
			order.StatusAssigned,
			order.StatusPickedUp,
			order.StatusDelivered,
			order.StatusCancelled,
			order.StatusUnmatched,
		}

		for _, s := range statuses {
			assert.NoError(t, s.Validate(), s.String())
		}
	})

	t.Run("should reject unknown status", func(t *testing.T) {
		err := order.StatusUnknown.Validate()

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestStatus_Transitions(t *testing.T) {
	t.Run("offer from pending and offered", func(t *testing.T) {
		next, err := order.StatusPending.Offer()
		require.NoError(t, err)
		assert.Equal(t, order.StatusOffered, next)

		next, err = order.StatusOffered.Offer()
		require.NoError(t, err)
		assert.Equal(t, order.StatusOffered, next)
	})

	t.Run("offer rejected elsewhere", func(t *testing.T) {
		_, err := order.StatusAssigned.Offer()
		require.Error(t, err)

		_, err = order.StatusDelivered.Offer()
		require.Error(t, err)
	})

	t.Run("assign only from offered", func(t *testing.T) {
		next, err := order.StatusOffered.Assign()
		require.NoError(t, err)
		assert.Equal(t, order.StatusAssigned, next)

		_, err = order.StatusPending.Assign()
		require.Error(t, err)
	})

	t.Run("delivery chain", func(t *testing.T) {
		next, err := order.StatusAssigned.PickUp()
		require.NoError(t, err)
		assert.Equal(t, order.StatusPickedUp, next)

		next, err = next.Deliver()
		require.NoError(t, err)
		assert.Equal(t, order.StatusDelivered, next)
	})

	t.Run("cancel from any non-terminal status", func(t *testing.T) {
		for _, s := range []order.Status{
			order.StatusPending,
			order.StatusOffered,
			order.StatusAssigned,
			order.StatusPickedUp,
		} {
			next, err := s.Cancel()
			require.NoError(t, err, s.String())
			assert.Equal(t, order.StatusCancelled, next)
		}
	})

	t.Run("cancel rejected on terminal statuses", func(t *testing.T) {
		for _, s := range []order.Status{
			order.StatusDelivered,
			order.StatusCancelled,
			order.StatusUnmatched,
		} {
			_, err := s.Cancel()
			require.Error(t, err, s.String())
		}
	})

	t.Run("unmatch only before assignment", func(t *testing.T) {
		next, err := order.StatusPending.Unmatch()
		require.NoError(t, err)
		assert.Equal(t, order.StatusUnmatched, next)

		next, err = order.StatusOffered.Unmatch()
		require.NoError(t, err)
		assert.Equal(t, order.StatusUnmatched, next)

		_, err = order.StatusAssigned.Unmatch()
		require.Error(t, err)
	})
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "Pending", order.StatusPending.String())
	assert.Equal(t, "PickedUp", order.StatusPickedUp.String())
	assert.Equal(t, "Unknown", order.Status(42).String())
}
