package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func leg(accountID string, side EntrySide, amount string) LineItem {
	d, _ := decimal.NewFromString(amount)
	return LineItem{AccountID: accountID, Side: side, Amount: d}
}

func TestStructurallyEqual(t *testing.T) {
	a := []LineItem{
		leg("acc-1", Debit, "100"),
		leg("acc-2", Credit, "100"),
	}

	t.Run("identical sets are equal", func(t *testing.T) {
		b := []LineItem{
			leg("acc-1", Debit, "100"),
			leg("acc-2", Credit, "100"),
		}
		assert.True(t, StructurallyEqual(a, b))
	})

	t.Run("order does not matter", func(t *testing.T) {
		b := []LineItem{
			leg("acc-2", Credit, "100"),
			leg("acc-1", Debit, "100"),
		}
		assert.True(t, StructurallyEqual(a, b))
	})

	t.Run("ids and memos do not matter", func(t *testing.T) {
		b := []LineItem{
			{LineItemID: "other-id", VoucherID: "other-voucher", AccountID: "acc-1", Side: Debit, Amount: decimal.NewFromInt(100), Memo: "different memo"},
			leg("acc-2", Credit, "100"),
		}
		assert.True(t, StructurallyEqual(a, b))
	})

	t.Run("trailing zeros compare equal", func(t *testing.T) {
		b := []LineItem{
			leg("acc-1", Debit, "100.00"),
			leg("acc-2", Credit, "100.000"),
		}
		assert.True(t, StructurallyEqual(a, b))
	})

	t.Run("different amount is structural", func(t *testing.T) {
		b := []LineItem{
			leg("acc-1", Debit, "150"),
			leg("acc-2", Credit, "150"),
		}
		assert.False(t, StructurallyEqual(a, b))
	})

	t.Run("different account is structural", func(t *testing.T) {
		b := []LineItem{
			leg("acc-3", Debit, "100"),
			leg("acc-2", Credit, "100"),
		}
		assert.False(t, StructurallyEqual(a, b))
	})

	t.Run("flipped side is structural", func(t *testing.T) {
		b := []LineItem{
			leg("acc-1", Credit, "100"),
			leg("acc-2", Debit, "100"),
		}
		assert.False(t, StructurallyEqual(a, b))
	})

	t.Run("different cardinality is structural", func(t *testing.T) {
		b := []LineItem{
			leg("acc-1", Debit, "100"),
			leg("acc-2", Credit, "60"),
			leg("acc-2", Credit, "40"),
		}
		assert.False(t, StructurallyEqual(a, b))
	})

	t.Run("duplicate legs are counted", func(t *testing.T) {
		x := []LineItem{
			leg("acc-1", Debit, "50"),
			leg("acc-1", Debit, "50"),
			leg("acc-2", Credit, "100"),
		}
		y := []LineItem{
			leg("acc-1", Debit, "50"),
			leg("acc-2", Credit, "100"),
			leg("acc-1", Debit, "50"),
		}
		assert.True(t, StructurallyEqual(x, y))

		z := []LineItem{
			leg("acc-1", Debit, "50"),
			leg("acc-2", Credit, "100"),
			leg("acc-2", Credit, "100"),
		}
		assert.False(t, StructurallyEqual(x, z))
	})
}

func TestEntrySideOpposite(t *testing.T) {
	assert.Equal(t, Credit, Debit.Opposite())
	assert.Equal(t, Debit, Credit.Opposite())
}

func TestVoucherIsReversed(t *testing.T) {
	v := Voucher{Status: StatusCurrent}
	assert.False(t, v.IsReversed())

	v.Status = StatusReversed
	assert.True(t, v.IsReversed())

	v.Status = StatusSuperseded
	assert.True(t, v.IsReversed())

	now := time.Now()
	v = Voucher{Status: StatusCurrent, DeletedAt: &now}
	assert.True(t, v.IsReversed())
}
