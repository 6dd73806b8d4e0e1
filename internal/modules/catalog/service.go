// Package catalog manages the owner-scoped categories and locations that
// equipment can be filed under.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gearvault/internal/domain"
	"gearvault/internal/modules/access"
	"gearvault/internal/pkg/apperror"
	"gearvault/internal/pkg/validator"
	"gearvault/internal/repository"

	"go.uber.org/zap"
)

type Service struct {
	store *repository.Store
	guard *access.Guard
	log   *zap.Logger
}

func NewService(store *repository.Store, guard *access.Guard, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, guard: guard, log: log}
}

/* ---------- CATEGORIES ---------- */

func (s *Service) CreateCategory(ctx context.Context, p domain.Principal, req CategoryRequest) (*domain.Category, error) {
	if p.IsZero() {
		return nil, apperror.ErrUnauthenticated
	}
	name, err := cleanName(req.Name, req)
	if err != nil {
		return nil, err
	}

	c := &domain.Category{OwnerID: p.UserID, Name: name}
	if err := s.store.Categories().Create(ctx, c); err != nil {
		return nil, conflict(err, "category")
	}
	return c, nil
}

func (s *Service) ListCategories(ctx context.Context, p domain.Principal) ([]domain.Category, error) {
	if p.IsZero() {
		return nil, apperror.ErrUnauthenticated
	}
	return s.store.Categories().ListByOwner(ctx, p.UserID)
}

func (s *Service) RenameCategory(ctx context.Context, p domain.Principal, id int64, req CategoryRequest) (*domain.Category, error) {
	name, err := cleanName(req.Name, req)
	if err != nil {
		return nil, err
	}

	var c *domain.Category
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		c, err = s.guard.Category(ctx, tx, p, access.ActionWrite, id)
		if err != nil {
			return err
		}
		if c.Name == name {
			return nil
		}
		if err := tx.Categories().Rename(ctx, c.ID, name); err != nil {
			return conflict(err, "category")
		}
		c.Name = name
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory refuses while any equipment still points at the category.
func (s *Service) DeleteCategory(ctx context.Context, p domain.Principal, id int64) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		c, err := s.guard.Category(ctx, tx, p, access.ActionDelete, id)
		if err != nil {
			return err
		}
		n, err := tx.Equipment().CountByCategory(ctx, c.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return inUse("category", c.ID)
		}
		if err := tx.Categories().Delete(ctx, c.ID); err != nil {
			if errors.Is(err, repository.ErrForeignKeyViolation) {
				return inUse("category", c.ID)
			}
			return err
		}
		return nil
	})
}

/* ---------- LOCATIONS ---------- */

func (s *Service) CreateLocation(ctx context.Context, p domain.Principal, req CreateLocationRequest) (*domain.Location, error) {
	if p.IsZero() {
		return nil, apperror.ErrUnauthenticated
	}
	name, err := cleanName(req.Name, req)
	if err != nil {
		return nil, err
	}

	l := &domain.Location{OwnerID: p.UserID, Name: name, Description: strings.TrimSpace(req.Description)}
	if err := s.store.Locations().Create(ctx, l); err != nil {
		return nil, conflict(err, "location")
	}
	return l, nil
}

func (s *Service) ListLocations(ctx context.Context, p domain.Principal) ([]domain.Location, error) {
	if p.IsZero() {
		return nil, apperror.ErrUnauthenticated
	}
	return s.store.Locations().ListByOwner(ctx, p.UserID)
}

func (s *Service) UpdateLocation(ctx context.Context, p domain.Principal, id int64, req UpdateLocationRequest) (*domain.Location, error) {
	name, err := cleanName(req.Name, req)
	if err != nil {
		return nil, err
	}

	var l *domain.Location
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		l, err = s.guard.Location(ctx, tx, p, access.ActionWrite, id)
		if err != nil {
			return err
		}

		next := *l
		next.Name = name
		if req.Description != nil {
			next.Description = strings.TrimSpace(*req.Description)
		}
		if next.Name == l.Name && next.Description == l.Description {
			return nil
		}
		if err := tx.Locations().Update(ctx, &next); err != nil {
			return conflict(err, "location")
		}
		l = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// DeleteLocation refuses while any equipment is stored at the location.
func (s *Service) DeleteLocation(ctx context.Context, p domain.Principal, id int64) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		l, err := s.guard.Location(ctx, tx, p, access.ActionDelete, id)
		if err != nil {
			return err
		}
		n, err := tx.Equipment().CountByLocation(ctx, l.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return inUse("location", l.ID)
		}
		if err := tx.Locations().Delete(ctx, l.ID); err != nil {
			if errors.Is(err, repository.ErrForeignKeyViolation) {
				return inUse("location", l.ID)
			}
			return err
		}
		return nil
	})
}

func cleanName(name string, req any) (string, error) {
	if err := validator.Validate(req); err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.NewValidationError("name", "is required")
	}
	return name, nil
}

// inUse is returned when equipment still points at the entity, whether the
// count caught it or the foreign key did.
func inUse(entity string, id int64) error {
	return &apperror.ReferentialIntegrityError{
		Entity: entity,
		ID:     id,
		Reason: "referenced by equipment",
	}
}

func conflict(err error, entity string) error {
	if errors.Is(err, repository.ErrUniqueViolation) {
		return fmt.Errorf("%w: %s name is taken", apperror.ErrConflict, entity)
	}
	return err
}
