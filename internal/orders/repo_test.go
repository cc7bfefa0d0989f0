package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sellora/sellora-backend/pkg/db/models"
	"github.com/sellora/sellora-backend/pkg/enums"
	"github.com/sellora/sellora-backend/pkg/pagination"
)

func seedOrder(t *testing.T, db *gorm.DB, ownerKey string, createdAt time.Time) models.Order {
	t.Helper()
	order := models.Order{
		ID:            uuid.New(),
		OwnerKey:      ownerKey,
		Status:        enums.OrderStatusPending,
		PaymentMethod: enums.PaymentMethodCash,
		SubtotalCents: 1000,
		TotalCents:    1500,
		ShippingCents: 500,
		CreatedAt:     createdAt,
		Items: []models.OrderItem{
			{
				ID:                uuid.New(),
				ProductID:         uuid.New(),
				SellerID:          uuid.New(),
				SKU:               "SKU-" + uuid.NewString()[:8],
				Title:             "Widget",
				UnitPriceCents:    500,
				Quantity:          2,
				LineSubtotalCents: 1000,
			},
		},
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestFindByIDPreloadsItems(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	order := seedOrder(t, db, testOwner, time.Now())

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, order.Items[0].SKU, found.Items[0].SKU)
	assert.Equal(t, 2, found.Items[0].Quantity)
}

func TestUpdateStatusGuardedWinsOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	order := seedOrder(t, db, testOwner, time.Now())

	moved, err := repo.UpdateStatusGuarded(context.Background(), order.ID, enums.OrderStatusPending, enums.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, moved)

	// A second transition from the same origin must lose the guard.
	moved, err = repo.UpdateStatusGuarded(context.Background(), order.ID, enums.OrderStatusPending, enums.OrderStatusCanceled)
	require.NoError(t, err)
	assert.False(t, moved)

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, found.Status)
	require.NotNil(t, found.ConfirmedAt)
	assert.Nil(t, found.CanceledAt)
}

func TestListByOwnerNewestFirstWithCursor(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	oldest := seedOrder(t, db, testOwner, base)
	middle := seedOrder(t, db, testOwner, base.Add(10*time.Minute))
	newest := seedOrder(t, db, testOwner, base.Add(20*time.Minute))
	seedOrder(t, db, "user:"+uuid.NewString(), base.Add(30*time.Minute))

	page, err := repo.ListByOwner(context.Background(), testOwner, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, newest.ID, page[0].ID)
	assert.Equal(t, middle.ID, page[1].ID)

	cursor := &pagination.Cursor{CreatedAt: page[1].CreatedAt, ID: page[1].ID}
	rest, err := repo.ListByOwner(context.Background(), testOwner, cursor, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, oldest.ID, rest[0].ID)
}

func TestListByStatusFiltersOthers(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	pending := seedOrder(t, db, testOwner, time.Now())
	confirmed := seedOrder(t, db, testOwner, time.Now())
	moved, err := repo.UpdateStatusGuarded(context.Background(), confirmed.ID, enums.OrderStatusPending, enums.OrderStatusConfirmed)
	require.NoError(t, err)
	require.True(t, moved)

	page, err := repo.ListByStatus(context.Background(), enums.OrderStatusPending, nil, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, pending.ID, page[0].ID)
}

func TestDeleteWithItemsRemovesEverything(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	order := seedOrder(t, db, testOwner, time.Now())

	require.NoError(t, repo.DeleteWithItems(context.Background(), order.ID))

	_, err := repo.FindByID(context.Background(), order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Zero(t, count)
}
