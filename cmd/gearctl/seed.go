package main

import (
	"context"
	"fmt"

	"gearvault/internal/domain"
	"gearvault/internal/modules/access"
	"gearvault/internal/modules/catalog"
	"gearvault/internal/modules/equipment"
	"gearvault/internal/modules/maintenance"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const seedPassword = "gearvault123"

func seedCmd(open func(bool) (*env, error)) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, catalog and equipment",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(true)
			if err != nil {
				return err
			}
			if e.cfg.IsProduction() {
				return fmt.Errorf("refusing to seed a %s database", e.cfg.AppEnv)
			}
			if reset {
				if err := wipe(e); err != nil {
					return err
				}
			}
			return seed(cmd.Context(), e)
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Delete existing data first")
	return cmd
}

// wipe deletes in foreign key order.
func wipe(e *env) error {
	for _, table := range []string{"equipment_images", "maintenance_records", "equipment", "categories", "locations", "users"} {
		if err := e.store.DB().Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clean %s: %w", table, err)
		}
	}
	e.log.Info("old data removed")
	return nil
}

func seed(ctx context.Context, e *env) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &domain.User{
		Email:        "admin@gearvault.local",
		PasswordHash: string(hash),
		Name:         "Administrator",
		Roles:        []domain.Role{domain.RoleUser, domain.RoleAdmin},
		Active:       true,
	}
	owner := &domain.User{
		Email:        "owner@gearvault.local",
		PasswordHash: string(hash),
		Name:         "Demo Owner",
		Roles:        []domain.Role{domain.RoleUser},
		Active:       true,
	}
	for _, u := range []*domain.User{admin, owner} {
		if err := e.store.Users().Create(ctx, u); err != nil {
			return fmt.Errorf("create user %s: %w", u.Email, err)
		}
	}
	p := owner.Principal()

	guard := access.NewGuard(e.log)
	engine := equipment.NewEngine()
	catalogSvc := catalog.NewService(e.store, guard, e.log)
	equipmentSvc := equipment.NewService(e.store, guard, engine, nil, e.log)
	maintenanceSvc := maintenance.NewService(e.store, guard, engine, nil, e.cfg.MaintenanceInterval, e.log)

	categories := map[string]int64{}
	for _, name := range []string{"Guitars", "Amplifiers", "Keyboards", "Microphones"} {
		c, err := catalogSvc.CreateCategory(ctx, p, catalog.CategoryRequest{Name: name})
		if err != nil {
			return err
		}
		categories[name] = c.ID
	}

	studio, err := catalogSvc.CreateLocation(ctx, p, catalog.CreateLocationRequest{Name: "Studio A", Description: "Live room"})
	if err != nil {
		return err
	}
	storage, err := catalogSvc.CreateLocation(ctx, p, catalog.CreateLocationRequest{Name: "Storage", Description: "Basement cage"})
	if err != nil {
		return err
	}

	items := []struct {
		req     equipment.CreateEquipmentRequest
		repair  string
		outcome domain.EquipmentStatus
	}{
		{req: equipment.CreateEquipmentRequest{Name: "Les Paul Standard", Manufacturer: "Gibson", Model: "LP-STD", SerialNumber: "LP0001", CategoryID: ptr(categories["Guitars"]), LocationID: &studio.ID, PurchasePrice: ptr(int64(249900))}, repair: "Fret repair"},
		{req: equipment.CreateEquipmentRequest{Name: "AC30", Manufacturer: "Vox", CategoryID: ptr(categories["Amplifiers"]), LocationID: &studio.ID}, repair: "Retube", outcome: domain.StatusMaintenance},
		{req: equipment.CreateEquipmentRequest{Name: "Rhodes Mk I", Manufacturer: "Fender Rhodes", CategoryID: ptr(categories["Keyboards"]), LocationID: &storage.ID}},
		{req: equipment.CreateEquipmentRequest{Name: "SM57", Manufacturer: "Shure", CategoryID: ptr(categories["Microphones"]), LocationID: &storage.ID}, outcome: domain.StatusLost},
	}

	for _, it := range items {
		v, err := equipmentSvc.Create(ctx, p, it.req)
		if err != nil {
			return fmt.Errorf("create %s: %w", it.req.Name, err)
		}
		if it.repair != "" {
			rec, err := maintenanceSvc.Open(ctx, p, v.ID, maintenance.OpenRequest{Description: it.repair})
			if err != nil {
				return err
			}
			if it.outcome != domain.StatusMaintenance {
				if _, err := maintenanceSvc.Close(ctx, p, rec.ID, maintenance.CloseRequest{Cost: ptr(int64(15000))}); err != nil {
					return err
				}
			}
		}
		if it.outcome == domain.StatusLost {
			if _, err := equipmentSvc.ChangeStatus(ctx, p, v.ID, equipment.ChangeStatusRequest{Status: string(domain.StatusLost)}); err != nil {
				return err
			}
		}
	}

	e.log.Info("seed completed",
		zap.String("owner", owner.Email),
		zap.String("admin", admin.Email),
		zap.String("password", seedPassword),
		zap.Int("equipment", len(items)),
	)
	return nil
}

func ptr[T any](v T) *T { return &v }
