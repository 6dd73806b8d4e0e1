package equipment

import (
	"context"
	"errors"
	"strings"
	"time"

	"gearvault/internal/domain"
	"gearvault/internal/modules/access"
	"gearvault/internal/modules/events"
	"gearvault/internal/pkg/apperror"
	"gearvault/internal/pkg/validator"
	"gearvault/internal/repository"

	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Service struct {
	store  *repository.Store
	guard  *access.Guard
	engine *Engine
	events events.Publisher
	log    *zap.Logger
}

func NewService(store *repository.Store, guard *access.Guard, engine *Engine, publisher events.Publisher, log *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:  store,
		guard:  guard,
		engine: engine,
		events: publisher,
		log:    log,
	}
}

// Create stores a new item owned by p. Any status in the request is
// ignored; equipment always starts ACTIVE.
func (s *Service) Create(ctx context.Context, p domain.Principal, req CreateEquipmentRequest) (*View, error) {
	if p.IsZero() {
		return nil, apperror.ErrUnauthenticated
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.NewValidationError("name", "is required")
	}

	eq := &domain.Equipment{
		OwnerID:       p.UserID,
		Name:          name,
		Description:   strings.TrimSpace(req.Description),
		SerialNumber:  strings.TrimSpace(req.SerialNumber),
		Manufacturer:  strings.TrimSpace(req.Manufacturer),
		Model:         strings.TrimSpace(req.Model),
		CategoryID:    req.CategoryID,
		LocationID:    req.LocationID,
		Status:        domain.StatusActive,
		PurchaseDate:  utc(req.PurchaseDate),
		PurchasePrice: req.PurchasePrice,
		CurrentValue:  req.CurrentValue,
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := s.checkReferences(ctx, tx, p, req.CategoryID, req.LocationID); err != nil {
			return err
		}
		return staleReference(tx.Equipment().Create(ctx, eq), 0)
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(events.Event{
		Type:        events.TypeEquipmentCreated,
		OwnerID:     eq.OwnerID,
		EquipmentID: eq.ID,
		To:          eq.Status,
		At:          eq.CreatedAt,
	})
	return s.view(ctx, s.store, eq)
}

func (s *Service) Get(ctx context.Context, p domain.Principal, id int64) (*View, error) {
	eq, err := s.guard.Equipment(ctx, s.store, p, access.ActionRead, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, s.store, eq)
}

func (s *Service) List(ctx context.Context, p domain.Principal, q ListQuery) (*ListResult, error) {
	if p.IsZero() {
		return nil, apperror.ErrUnauthenticated
	}

	verr := &apperror.ValidationError{}
	status := domain.EquipmentStatus(strings.ToUpper(strings.TrimSpace(q.Status)))
	if status != "" && !status.Valid() {
		verr.Add("status", "must be one of: ACTIVE MAINTENANCE LOST SOLD")
	}
	if q.Limit < 0 || q.Limit > maxPageSize {
		verr.Add("limit", "must be between 1 and 100")
	}
	if q.Offset < 0 {
		verr.Add("offset", "must be greater than or equal to 0")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit == 0 {
		limit = defaultPageSize
	}

	items, total, err := s.store.Equipment().List(ctx, repository.EquipmentFilter{
		OwnerID:    p.UserID,
		Status:     status,
		CategoryID: q.CategoryID,
		LocationID: q.LocationID,
		Query:      q.Query,
		Limit:      limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(items))
	for i := range items {
		v, err := s.view(ctx, s.store, &items[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return &ListResult{Items: views, Total: total, Limit: limit, Offset: q.Offset}, nil
}

// Update applies a partial update. Fields equal to the stored value are
// skipped; when nothing changes no row is written and updated_at stays put.
func (s *Service) Update(ctx context.Context, p domain.Principal, id int64, req UpdateEquipmentRequest) (*View, error) {
	if req.Status != nil {
		return nil, apperror.NewValidationError("status", "cannot be set here; use the status endpoint")
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, apperror.NewValidationError("name", "is required")
	}
	if err := checkClears(req); err != nil {
		return nil, err
	}

	var (
		eq      *domain.Equipment
		changed bool
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		eq, err = s.guard.Equipment(ctx, tx, p, access.ActionWrite, id)
		if err != nil {
			return err
		}

		fields := diffEquipment(eq, req)
		if len(fields) == 0 {
			return nil
		}

		var categoryID, locationID *int64
		if v, ok := fields["category_id"].(int64); ok {
			categoryID = &v
		}
		if v, ok := fields["location_id"].(int64); ok {
			locationID = &v
		}
		if err := s.checkReferences(ctx, tx, p, categoryID, locationID); err != nil {
			return err
		}

		if err := tx.Equipment().UpdateFields(ctx, eq.ID, fields, s.engine.Now()); err != nil {
			return staleReference(err, eq.ID)
		}
		changed = true
		eq, err = tx.Equipment().GetByID(ctx, eq.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.events.Publish(events.Event{
			Type:        events.TypeEquipmentUpdated,
			OwnerID:     eq.OwnerID,
			EquipmentID: eq.ID,
			At:          eq.UpdatedAt,
		})
	}
	return s.view(ctx, s.store, eq)
}

// ChangeStatus is the caller-driven transition. Moves into MAINTENANCE and
// back to ACTIVE from MAINTENANCE belong to the maintenance scheduler.
func (s *Service) ChangeStatus(ctx context.Context, p domain.Principal, id int64, req ChangeStatusRequest) (*View, error) {
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	target := domain.EquipmentStatus(req.Status)

	var (
		eq  *domain.Equipment
		out Outcome
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		eq, err = s.guard.Equipment(ctx, tx, p, access.ActionWrite, id)
		if err != nil {
			return err
		}
		out, err = s.engine.Apply(ctx, tx, eq, target, TriggerCaller)
		return err
	})
	if err != nil {
		var transitionErr *apperror.InvalidTransitionError
		if errors.As(err, &transitionErr) {
			s.log.Info("status transition rejected",
				zap.Int64("equipment_id", id),
				zap.String("from", string(transitionErr.From)),
				zap.String("to", string(transitionErr.To)),
			)
		}
		return nil, err
	}

	RecordTransition(out)
	s.events.Publish(events.Event{
		Type:        events.TypeStatusChanged,
		OwnerID:     eq.OwnerID,
		EquipmentID: eq.ID,
		From:        out.From,
		To:          out.Status,
		At:          eq.UpdatedAt,
	})
	return s.view(ctx, s.store, eq)
}

// Delete removes the equipment with its closed history and images. An open
// maintenance record blocks deletion.
func (s *Service) Delete(ctx context.Context, p domain.Principal, id int64) error {
	var ownerID int64
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		eq, err := s.guard.Equipment(ctx, tx, p, access.ActionDelete, id)
		if err != nil {
			return err
		}
		ownerID = eq.OwnerID

		open, err := tx.Maintenance().CountOpen(ctx, eq.ID)
		if err != nil {
			return err
		}
		if open > 0 {
			return &apperror.ReferentialIntegrityError{
				Entity: "equipment",
				ID:     eq.ID,
				Reason: "an open maintenance record exists",
			}
		}

		if err := tx.Images().DeleteByEquipment(ctx, eq.ID); err != nil {
			return err
		}
		if err := tx.Maintenance().DeleteByEquipment(ctx, eq.ID); err != nil {
			return err
		}
		return tx.Equipment().Delete(ctx, eq.ID)
	})
	if err != nil {
		return err
	}

	s.events.Publish(events.Event{
		Type:        events.TypeEquipmentDeleted,
		OwnerID:     ownerID,
		EquipmentID: id,
		At:          s.engine.Now(),
	})
	return nil
}

// checkReferences rejects a category or location the caller does not own.
func (s *Service) checkReferences(ctx context.Context, tx *repository.Store, p domain.Principal, categoryID, locationID *int64) error {
	verr := &apperror.ValidationError{}
	if categoryID != nil {
		if _, err := s.guard.Category(ctx, tx, p, access.ActionRead, *categoryID); err != nil {
			if !errors.Is(err, apperror.ErrAccessDenied) {
				return err
			}
			verr.Add("category_id", "category not found")
		}
	}
	if locationID != nil {
		if _, err := s.guard.Location(ctx, tx, p, access.ActionRead, *locationID); err != nil {
			if !errors.Is(err, apperror.ErrAccessDenied) {
				return err
			}
			verr.Add("location_id", "location not found")
		}
	}
	return verr.OrNil()
}

func (s *Service) view(ctx context.Context, store *repository.Store, eq *domain.Equipment) (*View, error) {
	if err := store.Equipment().LoadRelations(ctx, eq); err != nil {
		return nil, err
	}
	v := NewView(eq)
	return &v, nil
}

// diffEquipment returns the column updates that differ from eq.
func diffEquipment(eq *domain.Equipment, req UpdateEquipmentRequest) map[string]any {
	fields := map[string]any{}

	setText := func(column string, current string, next *string) {
		if next == nil {
			return
		}
		v := strings.TrimSpace(*next)
		if v == current {
			return
		}
		if v == "" {
			fields[column] = nil
			return
		}
		fields[column] = v
	}
	setText("name", eq.Name, req.Name)
	setText("description", eq.Description, req.Description)
	setText("serial_number", eq.SerialNumber, req.SerialNumber)
	setText("manufacturer", eq.Manufacturer, req.Manufacturer)
	setText("model", eq.Model, req.Model)

	setRef := func(column string, current, next *int64) {
		if next == nil {
			return
		}
		if *next == 0 {
			if current != nil {
				fields[column] = nil
			}
			return
		}
		if current == nil || *current != *next {
			fields[column] = *next
		}
	}
	setRef("category_id", eq.CategoryID, req.CategoryID)
	setRef("location_id", eq.LocationID, req.LocationID)

	setAmount := func(column string, current, next *int64) {
		if next != nil && (current == nil || *current != *next) {
			fields[column] = *next
		}
	}
	setAmount("purchase_price", eq.PurchasePrice, req.PurchasePrice)
	setAmount("current_value", eq.CurrentValue, req.CurrentValue)

	if req.PurchaseDate != nil {
		next := req.PurchaseDate.UTC()
		if eq.PurchaseDate == nil || !eq.PurchaseDate.Equal(next) {
			fields["purchase_date"] = next
		}
	}

	set := map[string]bool{
		"purchase_price": eq.PurchasePrice != nil,
		"current_value":  eq.CurrentValue != nil,
		"purchase_date":  eq.PurchaseDate != nil,
	}
	for _, column := range req.Clear {
		if set[column] {
			fields[column] = nil
		}
	}

	return fields
}

// checkClears rejects a field that is both cleared and given a value.
func checkClears(req UpdateEquipmentRequest) error {
	given := map[string]bool{
		"purchase_price": req.PurchasePrice != nil,
		"current_value":  req.CurrentValue != nil,
		"purchase_date":  req.PurchaseDate != nil,
	}
	verr := &apperror.ValidationError{}
	for _, column := range req.Clear {
		if given[column] {
			verr.Add(column, "cannot be set and cleared in one request")
		}
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// staleReference reports a category or location that was deleted after
// checkReferences accepted it.
func staleReference(err error, id int64) error {
	if errors.Is(err, repository.ErrForeignKeyViolation) {
		return &apperror.ReferentialIntegrityError{
			Entity: "equipment",
			ID:     id,
			Reason: "category or location no longer exists",
		}
	}
	return err
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
