package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sellora/sellora-backend/pkg/db/models"
	"github.com/sellora/sellora-backend/pkg/enums"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
)

func seedNotification(t *testing.T, repo Repository, ownerKey string, createdAt time.Time) uuid.UUID {
	t.Helper()
	row := &models.Notification{
		ID:        uuid.New(),
		OwnerKey:  ownerKey,
		Type:      enums.NotificationTypeOrderPlaced,
		Title:     "Order received",
		Message:   "Your order is awaiting review.",
		CreatedAt: createdAt,
	}
	if err := repo.Create(context.Background(), row); err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return row.ID
}

func TestListNotificationsPaginates(t *testing.T) {
	t.Parallel()

	db := newConsumerDB(t)
	ctx := context.Background()
	repo := NewRepository(db)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ownerKey := "user:" + uuid.NewString()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		seedNotification(t, repo, ownerKey, base.Add(time.Duration(i)*time.Minute))
	}
	seedNotification(t, repo, "user:"+uuid.NewString(), base)

	first, err := svc.List(ctx, ListParams{OwnerKey: ownerKey, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(first.Items))
	}
	if first.NextCursor == "" {
		t.Fatal("expected a next cursor")
	}
	if !first.Items[0].CreatedAt.After(first.Items[1].CreatedAt) {
		t.Fatal("expected newest-first ordering")
	}

	second, err := svc.List(ctx, ListParams{OwnerKey: ownerKey, Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Items) != 1 {
		t.Fatalf("expected 1 item on second page, got %d", len(second.Items))
	}
	if second.NextCursor != "" {
		t.Fatal("expected no cursor on the last page")
	}
}

func TestMarkReadScopedToOwner(t *testing.T) {
	t.Parallel()

	db := newConsumerDB(t)
	ctx := context.Background()
	repo := NewRepository(db)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ownerKey := "user:" + uuid.NewString()
	id := seedNotification(t, repo, ownerKey, time.Now().UTC())

	if err := svc.MarkRead(ctx, "user:"+uuid.NewString(), id); err == nil {
		t.Fatal("expected error marking another owner's notification")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}

	if err := svc.MarkRead(ctx, ownerKey, id); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	// Re-reading is a no-op, not an error.
	if err := svc.MarkRead(ctx, ownerKey, id); err != nil {
		t.Fatalf("second mark read: %v", err)
	}

	unread, err := svc.List(ctx, ListParams{OwnerKey: ownerKey, Limit: 10, UnreadOnly: true})
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread.Items) != 0 {
		t.Fatalf("expected no unread items, got %d", len(unread.Items))
	}
}

func TestMarkAllRead(t *testing.T) {
	t.Parallel()

	db := newConsumerDB(t)
	ctx := context.Background()
	repo := NewRepository(db)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ownerKey := "user:" + uuid.NewString()
	now := time.Now().UTC()
	seedNotification(t, repo, ownerKey, now.Add(-2*time.Minute))
	seedNotification(t, repo, ownerKey, now.Add(-time.Minute))

	count, err := svc.MarkAllRead(ctx, ownerKey)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows updated, got %d", count)
	}

	again, err := svc.MarkAllRead(ctx, ownerKey)
	if err != nil {
		t.Fatalf("second mark all read: %v", err)
	}
	if again != 0 {
		t.Fatalf("expected 0 rows on second pass, got %d", again)
	}
}
