package member

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMember_Defaults(t *testing.T) {
	m := NewMember("M1", "Alice", "alice@example.com", "555-0100", "1 Main St")

	assert.True(t, m.IsActive)
	assert.Zero(t, m.TotalFines)
	assert.Zero(t, m.BorrowedCount())
	assert.False(t, m.MembershipDate.IsZero())
}

func TestMember_AddBorrowedBookIsIdempotent(t *testing.T) {
	m := NewMember("M1", "Alice", "", "", "")

	m.AddBorrowedBook("1111111111")
	m.AddBorrowedBook("1111111111")

	assert.Equal(t, []string{"1111111111"}, m.BorrowedBooks())
	assert.Equal(t, 1, m.BorrowedCount())
}

func TestMember_RemoveBorrowedBook(t *testing.T) {
	m := NewMember("M1", "Alice", "", "", "")
	m.AddBorrowedBook("1111111111")

	assert.False(t, m.RemoveBorrowedBook("2222222222"))
	assert.True(t, m.RemoveBorrowedBook("1111111111"))
	assert.False(t, m.RemoveBorrowedBook("1111111111"))
	assert.False(t, m.HasBorrowed("1111111111"))
}

func TestMember_ZeroValueSet(t *testing.T) {
	var m Member
	assert.False(t, m.RemoveBorrowedBook("x"))
	m.AddBorrowedBook("x")
	assert.True(t, m.HasBorrowed("x"))
}

func TestMember_Fines(t *testing.T) {
	m := NewMember("M1", "Alice", "", "", "")

	m.AddFine(1400)
	m.AddFine(-50)
	assert.Equal(t, int64(1400), m.TotalFines)

	assert.ErrorIs(t, m.PayFine(1500), ErrFineOverpayment)
	assert.Equal(t, int64(1400), m.TotalFines, "overpayment leaves fines unchanged")

	assert.ErrorIs(t, m.PayFine(0), ErrInvalidAmount)

	require.NoError(t, m.PayFine(400))
	assert.Equal(t, int64(1000), m.TotalFines)
	require.NoError(t, m.PayFine(1000))
	assert.Zero(t, m.TotalFines)
}

func TestMember_CloneIsIndependent(t *testing.T) {
	m := NewMember("M1", "Alice", "", "", "")
	m.AddBorrowedBook("1111111111")

	c := m.Clone()
	c.AddBorrowedBook("2222222222")
	c.Deactivate()

	assert.Equal(t, 1, m.BorrowedCount())
	assert.True(t, m.IsActive)
	assert.Equal(t, 2, c.BorrowedCount())
}
