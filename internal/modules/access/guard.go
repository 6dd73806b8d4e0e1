// Package access decides whether a principal may touch an owner-scoped
// entity. Every denial is reported to callers as apperror.ErrAccessDenied so
// a foreign resource cannot be told apart from a missing one.
package access

import (
	"context"
	"errors"

	"gearvault/internal/domain"
	"gearvault/internal/pkg/apperror"
	"gearvault/internal/pkg/metrics"
	"gearvault/internal/repository"

	"go.uber.org/zap"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

type Kind string

const (
	KindEquipment   Kind = "equipment"
	KindMaintenance Kind = "maintenance_record"
	KindImage       Kind = "image"
	KindCategory    Kind = "category"
	KindLocation    Kind = "location"
)

type Reason string

const (
	ReasonNotFound Reason = "NOT_FOUND"
	ReasonNotOwner Reason = "NOT_OWNER"
)

// Resource is what the guard knows about the target. For records and images
// OwnerID is the owner of the parent equipment.
type Resource struct {
	Kind    Kind
	ID      int64
	OwnerID int64
	Found   bool
}

type Decision struct {
	Allowed bool
	Reason  Reason
}

func Allow() Decision             { return Decision{Allowed: true} }
func Deny(reason Reason) Decision { return Decision{Reason: reason} }

// Authorize is ownership only; roles never widen access to another owner's data.
func Authorize(p domain.Principal, action Action, res Resource) Decision {
	if !res.Found {
		return Deny(ReasonNotFound)
	}
	if p.IsZero() || res.OwnerID != p.UserID {
		return Deny(ReasonNotOwner)
	}
	switch action {
	case ActionRead, ActionWrite, ActionDelete:
		return Allow()
	}
	return Deny(ReasonNotOwner)
}

type Guard struct {
	log *zap.Logger
}

func NewGuard(log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{log: log}
}

// Check applies Authorize and converts a denial into ErrAccessDenied.
func (g *Guard) Check(p domain.Principal, action Action, res Resource) error {
	d := Authorize(p, action, res)
	if d.Allowed {
		return nil
	}

	metrics.RecordAccessDenied(string(res.Kind), string(d.Reason))
	g.log.Debug("access denied",
		zap.Int64("user_id", p.UserID),
		zap.String("action", string(action)),
		zap.String("kind", string(res.Kind)),
		zap.Int64("resource_id", res.ID),
		zap.String("reason", string(d.Reason)),
	)
	return apperror.ErrAccessDenied
}

// Equipment loads and authorizes an equipment row. Writes and deletes read
// the row under a row lock, so callers should pass a transaction-bound store.
func (g *Guard) Equipment(ctx context.Context, s *repository.Store, p domain.Principal, action Action, id int64) (*domain.Equipment, error) {
	var (
		eq  *domain.Equipment
		err error
	)
	if action == ActionRead {
		eq, err = s.Equipment().GetByID(ctx, id)
	} else {
		eq, err = s.Equipment().GetForUpdate(ctx, id)
	}

	res, err := resolve(KindEquipment, id, err, func() int64 { return eq.OwnerID })
	if err != nil {
		return nil, err
	}
	if err := g.Check(p, action, res); err != nil {
		return nil, err
	}
	return eq, nil
}

// MaintenanceRecord authorizes through the owning equipment and returns both.
func (g *Guard) MaintenanceRecord(ctx context.Context, s *repository.Store, p domain.Principal, action Action, id int64) (*domain.MaintenanceRecord, *domain.Equipment, error) {
	rec, err := s.Maintenance().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, g.Check(p, action, Resource{Kind: KindMaintenance, ID: id})
	}
	if err != nil {
		return nil, nil, err
	}

	eq, err := g.Equipment(ctx, s, p, action, rec.EquipmentID)
	if err != nil {
		return nil, nil, err
	}
	return rec, eq, nil
}

// Image authorizes an image addressed under its equipment. An image attached
// to a different equipment is treated as missing.
func (g *Guard) Image(ctx context.Context, s *repository.Store, p domain.Principal, action Action, equipmentID, imageID int64) (*domain.Image, *domain.Equipment, error) {
	eq, err := g.Equipment(ctx, s, p, action, equipmentID)
	if err != nil {
		return nil, nil, err
	}

	img, err := s.Images().GetByID(ctx, imageID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && img.EquipmentID != eq.ID) {
		return nil, nil, g.Check(p, action, Resource{Kind: KindImage, ID: imageID})
	}
	if err != nil {
		return nil, nil, err
	}
	return img, eq, nil
}

func (g *Guard) Category(ctx context.Context, s *repository.Store, p domain.Principal, action Action, id int64) (*domain.Category, error) {
	c, err := s.Categories().GetByID(ctx, id)
	res, err := resolve(KindCategory, id, err, func() int64 { return c.OwnerID })
	if err != nil {
		return nil, err
	}
	if err := g.Check(p, action, res); err != nil {
		return nil, err
	}
	return c, nil
}

func (g *Guard) Location(ctx context.Context, s *repository.Store, p domain.Principal, action Action, id int64) (*domain.Location, error) {
	l, err := s.Locations().GetByID(ctx, id)
	res, err := resolve(KindLocation, id, err, func() int64 { return l.OwnerID })
	if err != nil {
		return nil, err
	}
	if err := g.Check(p, action, res); err != nil {
		return nil, err
	}
	return l, nil
}

func resolve(kind Kind, id int64, loadErr error, owner func() int64) (Resource, error) {
	res := Resource{Kind: kind, ID: id}
	switch {
	case errors.Is(loadErr, repository.ErrNotFound):
		return res, nil
	case loadErr != nil:
		return res, loadErr
	}
	res.Found = true
	res.OwnerID = owner()
	return res, nil
}
