package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the entity repositories over one gorm handle. A Store
// obtained inside Transaction is bound to that transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Users() *UserRepository              { return NewUserRepository(s.db) }
func (s *Store) Equipment() *EquipmentRepository     { return NewEquipmentRepository(s.db) }
func (s *Store) Categories() *CategoryRepository     { return NewCategoryRepository(s.db) }
func (s *Store) Locations() *LocationRepository      { return NewLocationRepository(s.db) }
func (s *Store) Maintenance() *MaintenanceRepository { return NewMaintenanceRepository(s.db) }
func (s *Store) Images() *ImageRepository            { return NewImageRepository(s.db) }

// Transaction runs fn in a single database transaction. Any error returned
// by fn rolls the whole unit back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
	if isUnavailable(err) {
		return translateError(err)
	}
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return translateError(sqlDB.PingContext(ctx))
}
