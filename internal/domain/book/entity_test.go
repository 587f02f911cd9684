package book

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBook_AllCopiesAvailable(t *testing.T) {
	b := NewBook("1111111111", "X", "Y", "Z", 2020, 2)

	assert.Equal(t, 2, b.TotalCopies)
	assert.Equal(t, 2, b.AvailableCopies)
	assert.False(t, b.CreatedAt.IsZero())
}

func TestBook_BorrowCopy(t *testing.T) {
	b := NewBook("1111111111", "X", "Y", "Z", 2020, 1)

	require.NoError(t, b.BorrowCopy())
	assert.Equal(t, 0, b.AvailableCopies)

	err := b.BorrowCopy()
	assert.True(t, errors.Is(err, ErrNoCopiesAvailable))
	assert.Equal(t, 0, b.AvailableCopies, "failed borrow must not change availability")
}

func TestBook_ReturnCopy_RejectsOverReturn(t *testing.T) {
	b := NewBook("1111111111", "X", "Y", "Z", 2020, 1)

	err := b.ReturnCopy()
	assert.True(t, errors.Is(err, ErrOverReturn))
	assert.Equal(t, 1, b.AvailableCopies)

	require.NoError(t, b.BorrowCopy())
	require.NoError(t, b.ReturnCopy())
	assert.Equal(t, 1, b.AvailableCopies)
}

func TestBook_AvailabilityStaysInBounds(t *testing.T) {
	b := NewBook("1111111111", "X", "Y", "Z", 2020, 3)
	ops := []bool{true, true, false, true, true, true, false, false, false, false, true}
	for _, borrow := range ops {
		if borrow {
			_ = b.BorrowCopy()
		} else {
			_ = b.ReturnCopy()
		}
		assert.GreaterOrEqual(t, b.AvailableCopies, 0)
		assert.LessOrEqual(t, b.AvailableCopies, b.TotalCopies)
	}
}

func TestBook_Availability(t *testing.T) {
	b := NewBook("1111111111", "X", "Y", "Z", 2020, 3)
	require.NoError(t, b.BorrowCopy())

	assert.Equal(t, Availability{Total: 3, Available: 2, Borrowed: 1}, b.Availability())
	assert.Equal(t, 2, b.AvailableCopies, "availability is a pure read")
}

func TestValidateNew(t *testing.T) {
	assert.NoError(t, ValidateNew("1111111111", 0))
	assert.ErrorIs(t, ValidateNew("  ", 1), ErrInvalidISBN)
	assert.ErrorIs(t, ValidateNew("1111111111", -1), ErrInvalidCopies)
}
