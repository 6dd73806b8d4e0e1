package equipment

import (
	"context"
	"net/url"
	"strings"

	"gearvault/internal/domain"
	"gearvault/internal/modules/access"
	"gearvault/internal/pkg/apperror"
	"gearvault/internal/pkg/validator"
	"gearvault/internal/repository"
)

// AddImage appends an image URL. Marking it primary clears the previous
// primary in the same transaction.
func (s *Service) AddImage(ctx context.Context, p domain.Principal, equipmentID int64, req AddImageRequest) (*domain.Image, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	imageURL := strings.TrimSpace(req.ImageURL)
	if !validImageURL(imageURL) {
		return nil, apperror.NewValidationError("image_url", "must be an http(s) URL or an absolute path")
	}

	img := &domain.Image{ImageURL: imageURL, IsPrimary: req.IsPrimary, CreatedAt: s.engine.Now()}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		eq, err := s.guard.Equipment(ctx, tx, p, access.ActionWrite, equipmentID)
		if err != nil {
			return err
		}
		img.EquipmentID = eq.ID

		if img.IsPrimary {
			if err := tx.Images().ClearPrimary(ctx, eq.ID); err != nil {
				return err
			}
		}
		return tx.Images().Create(ctx, img)
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (s *Service) ListImages(ctx context.Context, p domain.Principal, equipmentID int64) ([]domain.Image, error) {
	eq, err := s.guard.Equipment(ctx, s.store, p, access.ActionRead, equipmentID)
	if err != nil {
		return nil, err
	}
	return s.store.Images().ListByEquipment(ctx, eq.ID)
}

func (s *Service) SetPrimaryImage(ctx context.Context, p domain.Principal, equipmentID, imageID int64) (*domain.Image, error) {
	var img *domain.Image
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		img, _, err = s.guard.Image(ctx, tx, p, access.ActionWrite, equipmentID, imageID)
		if err != nil {
			return err
		}
		if err := tx.Images().ClearPrimary(ctx, img.EquipmentID); err != nil {
			return err
		}
		if err := tx.Images().SetPrimary(ctx, img.ID); err != nil {
			return err
		}
		img.IsPrimary = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (s *Service) DeleteImage(ctx context.Context, p domain.Principal, equipmentID, imageID int64) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		img, _, err := s.guard.Image(ctx, tx, p, access.ActionDelete, equipmentID, imageID)
		if err != nil {
			return err
		}
		return tx.Images().Delete(ctx, img.ID)
	})
}

func validImageURL(raw string) bool {
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return true
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
