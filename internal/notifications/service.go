// Package notifications materializes order lifecycle events into in-app
// notifications and exposes the list/read surface for the API. Delivery is
// asynchronous: the consumer runs off the domain Pub/Sub subscription, so a
// failed notification never fails the order transition that caused it.
package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sellora/sellora-backend/pkg/db/models"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
	"github.com/sellora/sellora-backend/pkg/pagination"
)

// Service defines notification list/read operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, ownerKey string, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, ownerKey string) (int64, error)
}

// ListParams configures pagination for an owner's notifications.
type ListParams struct {
	OwnerKey   string
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps one page and the cursor for the next.
type ListResult struct {
	Items      []models.Notification `json:"items"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

type service struct {
	repo Repository
}

// NewService wires the notifications read surface.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if strings.TrimSpace(params.OwnerKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner key required")
	}

	query := listParams{
		OwnerKey:   params.OwnerKey,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	result := &ListResult{Items: rows}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) MarkRead(ctx context.Context, ownerKey string, notificationID uuid.UUID) error {
	if strings.TrimSpace(ownerKey) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner key required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, ownerKey, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.NotFoundEntity("notification")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, ownerKey string) (int64, error) {
	if strings.TrimSpace(ownerKey) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "owner key required")
	}

	count, err := s.repo.MarkAllRead(ctx, ownerKey, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}
