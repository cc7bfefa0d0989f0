// Package sellers manages storefront seller profiles. A profile's ID is the
// authenticated user's ID, which is the same value products carry as their
// seller reference.
package sellers

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/sellora/sellora-backend/pkg/db"
	"github.com/sellora/sellora-backend/pkg/db/models"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
	"github.com/sellora/sellora-backend/pkg/types"
)

type assetResolver interface {
	PublicURL(path string) string
}

// RegisterInput carries a new seller profile.
type RegisterInput struct {
	SellerID    uuid.UUID
	Name        string
	Slug        string
	Description *string
	Email       *string
	Phone       *string
	Address     *types.Address
	LogoPath    *string
}

// UpdateInput carries a partial profile update. Nil fields are untouched.
type UpdateInput struct {
	Name        *string
	Description *string
	Email       *string
	Phone       *string
	Address     *types.Address
	LogoPath    *string
}

// SellerView is the public read model with the resolved logo URL.
type SellerView struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description *string        `json:"description,omitempty"`
	Email       *string        `json:"email,omitempty"`
	Phone       *string        `json:"phone,omitempty"`
	Address     *types.Address `json:"address,omitempty"`
	LogoURL     string         `json:"logo_url,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Service defines seller profile operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*SellerView, error)
	Update(ctx context.Context, sellerID uuid.UUID, input UpdateInput) (*SellerView, error)
	Get(ctx context.Context, sellerID uuid.UUID) (*SellerView, error)
	GetBySlug(ctx context.Context, slug string) (*SellerView, error)
}

type service struct {
	repo   Repository
	assets assetResolver
}

// NewService wires the sellers service. The asset resolver may be nil.
func NewService(repo Repository, assets assetResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sellers repository required")
	}
	return &service{repo: repo, assets: assets}, nil
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a display name.
func Slugify(name string) string {
	slug := slugCleaner.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*SellerView, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller name is required")
	}
	slug := Slugify(input.Slug)
	if slug == "" {
		slug = Slugify(input.Name)
	}
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a slug could not be derived from the name")
	}
	if input.Address != nil {
		if err := input.Address.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address")
		}
	}

	seller := &models.Seller{
		ID:          input.SellerID,
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: input.Description,
		Email:       input.Email,
		Phone:       input.Phone,
		Address:     input.Address,
		LogoPath:    input.LogoPath,
	}
	if err := s.repo.Create(ctx, seller); err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_sellers_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "seller profile or slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create seller")
	}
	view := s.toView(seller)
	return &view, nil
}

func (s *service) Update(ctx context.Context, sellerID uuid.UUID, input UpdateInput) (*SellerView, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if _, err := s.load(ctx, sellerID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller name must not be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Address != nil {
		if err := input.Address.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address")
		}
		updates["address"] = input.Address
	}
	if input.LogoPath != nil {
		updates["logo_path"] = *input.LogoPath
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, sellerID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update seller")
		}
	}
	return s.Get(ctx, sellerID)
}

func (s *service) Get(ctx context.Context, sellerID uuid.UUID) (*SellerView, error) {
	seller, err := s.load(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	view := s.toView(seller)
	return &view, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*SellerView, error) {
	seller, err := s.repo.FindBySlug(ctx, Slugify(slug))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.NotFoundEntity("seller")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	view := s.toView(seller)
	return &view, nil
}

func (s *service) load(ctx context.Context, sellerID uuid.UUID) (*models.Seller, error) {
	seller, err := s.repo.FindByID(ctx, sellerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.NotFoundEntity("seller")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	return seller, nil
}

func (s *service) toView(seller *models.Seller) SellerView {
	view := SellerView{
		ID:          seller.ID,
		Name:        seller.Name,
		Slug:        seller.Slug,
		Description: seller.Description,
		Email:       seller.Email,
		Phone:       seller.Phone,
		Address:     seller.Address,
		CreatedAt:   seller.CreatedAt,
	}
	if s.assets != nil && seller.LogoPath != nil {
		view.LogoURL = s.assets.PublicURL(*seller.LogoPath)
	}
	return view
}
