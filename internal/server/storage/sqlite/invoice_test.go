package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/invoicekeeper/internal/models"
	"github.com/iudanet/invoicekeeper/internal/server/storage"
)

func testInvoice(no string) *models.Invoice {
	return &models.Invoice{
		ID:           uuid.New().String(),
		InvoiceNo:    no,
		Date:         "2026-10-18",
		CustomerName: "Acme",
		Total:        23.8,
		CreatedBy:    "alice",
		CreatedAt:    time.Now(),
	}
}

func testItem(no, description string) *models.InvoiceItem {
	return &models.InvoiceItem{
		ID:          uuid.New().String(),
		InvoiceNo:   no,
		Description: description,
		Quantity:    2,
		UnitPrice:   10.25,
		Amount:      20.5,
		CreatedAt:   time.Now(),
	}
}

func TestInvoiceStorage_NextInvoiceNo(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	no, err := s.NextInvoiceNo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", no)

	require.NoError(t, s.CreateInvoice(ctx, testInvoice("INV-0001")))
	require.NoError(t, s.CreateInvoice(ctx, testInvoice("INV-0009")))

	no, err = s.NextInvoiceNo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-0010", no)

	// Номер не резервируется
	again, err := s.NextInvoiceNo(ctx)
	require.NoError(t, err)
	assert.Equal(t, no, again)
}

func TestInvoiceStorage_CreateInvoice_Duplicate(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NoError(t, s.CreateInvoice(ctx, testInvoice("INV-0001")))
	assert.ErrorIs(t, s.CreateInvoice(ctx, testInvoice("INV-0001")), storage.ErrInvoiceExists)
}

func TestInvoiceStorage_Items(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	inv := testInvoice("INV-0001")
	require.NoError(t, s.CreateInvoice(ctx, inv))

	for _, description := range []string{"Paint", "Brush", "Tape"} {
		require.NoError(t, s.AddInvoiceItem(ctx, testItem("INV-0001", description)))
	}

	got, items, err := s.GetInvoice(ctx, "INV-0001")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.Equal(t, "Acme", got.CustomerName)
	assert.Equal(t, 23.8, got.Total)

	require.Len(t, items, 3)
	assert.Equal(t, "Paint", items[0].Description)
	assert.Equal(t, "Brush", items[1].Description)
	assert.Equal(t, "Tape", items[2].Description)
	assert.Equal(t, 20.5, items[0].Amount)
}

func TestInvoiceStorage_AddItem_UnknownInvoice(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	err := s.AddInvoiceItem(ctx, testItem("INV-0404", "Paint"))
	assert.ErrorIs(t, err, storage.ErrInvoiceNotFound)
}

func TestInvoiceStorage_GetInvoice_NotFound(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, _, err := s.GetInvoice(context.Background(), "INV-0404")
	assert.ErrorIs(t, err, storage.ErrInvoiceNotFound)
}
