package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type productNames map[int]string

func (n productNames) Name(id int) (string, bool) {
	name, ok := n[id]
	return name, ok
}

type customerNames map[int64]string

func (n customerNames) Name(id int64) (string, bool) {
	name, ok := n[id]
	return name, ok
}

func seedOrder(repo *InMemoryRepository, customerID int64, placed time.Time) int64 {
	id := repo.NextID()
	repo.Save(Order{
		ID:         id,
		CustomerID: &customerID,
		DatePlaced: placed,
		Status:     StatusPaid,
		Subtotal:   decimal.RequireFromString("6.00"),
		Tax:        decimal.RequireFromString("0.48"),
		Total:      decimal.RequireFromString("6.48"),
	}, []Line{{OrderID: id, ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("3.00")}})
	return id
}

func TestInMemoryGetReceipt_UsesSnapshotPriceAndLiveName(t *testing.T) {
	products := productNames{1: "Apple"}
	repo := NewInMemoryRepository(products, customerNames{1: "Guest Customer"})
	id := seedOrder(repo, 1, time.Now())

	products[1] = "Green Apple"
	rec, err := repo.GetReceipt(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "Guest Customer", rec.CustomerName)
	require.Len(t, rec.Items, 1)
	require.Equal(t, "Green Apple", rec.Items[0].Name)
	require.Equal(t, "3.00", rec.Items[0].Price.StringFixed(2))
	require.Equal(t, "6.00", rec.Items[0].LineTotal.StringFixed(2))

	rec, err = repo.GetReceipt(context.Background(), id+100)
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestInMemoryListRecent(t *testing.T) {
	repo := NewInMemoryRepository(nil, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := seedOrder(repo, 1, base)
	second := seedOrder(repo, 1, base.Add(time.Hour))
	third := seedOrder(repo, 1, base.Add(time.Hour))

	orders, err := repo.ListRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, third, orders[0].ID)
	require.Equal(t, second, orders[1].ID)

	orders, err = repo.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, first, orders[2].ID)
}

func TestInMemoryUpdates(t *testing.T) {
	repo := NewInMemoryRepository(nil, customerNames{1: "Guest", 12: "Ana Lima"})
	id := seedOrder(repo, 1, time.Now())
	ctx := context.Background()

	require.NoError(t, repo.AssignCustomer(ctx, id, 12))
	require.ErrorIs(t, repo.AssignCustomer(ctx, id, 77), ErrCustomerNotFound)
	require.ErrorIs(t, repo.AssignCustomer(ctx, id+1, 12), ErrNotFound)

	require.NoError(t, repo.UpdateStatus(ctx, id, "VOID"))
	require.ErrorIs(t, repo.UpdateStatus(ctx, id, "lost"), ErrInvalidStatus)
	require.ErrorIs(t, repo.UpdateStatus(ctx, id+1, "paid"), ErrNotFound)

	o, lines, ok := repo.Get(id)
	require.True(t, ok)
	require.Equal(t, int64(12), *o.CustomerID)
	require.Equal(t, StatusVoid, o.Status)
	require.Len(t, lines, 1)

	orders, lineCount := repo.Count()
	require.Equal(t, 1, orders)
	require.Equal(t, 1, lineCount)
}
