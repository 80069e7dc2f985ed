// Package migrate exports the flat JSON documents into a relational
// database. It is a one-way copy for reporting and ad-hoc SQL: records
// already present in the target are left untouched, so the export can be
// re-run as the documents grow.
package migrate

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/premstore/storebot/internal/models"
	"github.com/premstore/storebot/internal/storage"
)

type Migrator struct {
	st  storage.Store
	db  *gorm.DB
	log *slog.Logger
}

func New(st storage.Store, db *gorm.DB, log *slog.Logger) *Migrator {
	if log == nil {
		log = slog.Default()
	}
	return &Migrator{st: st, db: db, log: log}
}

// Report counts the records each run copied. Skipped records already
// existed in the target.
type Report struct {
	Products int `json:"products"`
	Users    int `json:"users"`
	Orders   int `json:"orders"`
	Deposits int `json:"deposits"`
	Skipped  int `json:"skipped"`
}

func (m *Migrator) Run(ctx context.Context) (*Report, error) {
	db := m.db.WithContext(ctx)
	if err := db.AutoMigrate(&Product{}, &Variant{}, &User{}, &Order{}, &OrderItem{}, &Deposit{}); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	r := &Report{}
	if err := m.copyProducts(ctx, db, r); err != nil {
		return nil, err
	}
	if err := m.copyUsers(ctx, db, r); err != nil {
		return nil, err
	}
	if err := m.copyOrders(ctx, db, r); err != nil {
		return nil, err
	}
	if err := m.copyDeposits(ctx, db, r); err != nil {
		return nil, err
	}

	m.log.Info("export finished",
		"products", r.Products,
		"users", r.Users,
		"orders", r.Orders,
		"deposits", r.Deposits,
		"skipped", r.Skipped,
	)
	return r, nil
}

func (m *Migrator) copyProducts(ctx context.Context, db *gorm.DB, r *Report) error {
	var src []models.Product
	if err := m.st.Load(ctx, storage.DocProducts, &src); err != nil {
		return err
	}
	for _, p := range src {
		exists, err := rowExists(db, &Product{}, p.ID)
		if err != nil {
			return err
		}
		if exists {
			r.Skipped++
			continue
		}
		row := productRow(p)
		if err := db.Create(&row).Error; err != nil {
			return fmt.Errorf("insert product %d: %w", p.ID, err)
		}
		r.Products++
	}
	return nil
}

func (m *Migrator) copyUsers(ctx context.Context, db *gorm.DB, r *Report) error {
	var src []models.User
	if err := m.st.Load(ctx, storage.DocUsers, &src); err != nil {
		return err
	}
	for _, u := range src {
		exists, err := rowExists(db, &User{}, u.ID)
		if err != nil {
			return err
		}
		if exists {
			r.Skipped++
			continue
		}
		row := userRow(u)
		if err := db.Create(&row).Error; err != nil {
			return fmt.Errorf("insert user %d: %w", u.ID, err)
		}
		r.Users++
	}
	return nil
}

func (m *Migrator) copyOrders(ctx context.Context, db *gorm.DB, r *Report) error {
	var src []models.Order
	if err := m.st.Load(ctx, storage.DocOrders, &src); err != nil {
		return err
	}
	for _, o := range src {
		exists, err := rowExists(db, &Order{}, o.ID)
		if err != nil {
			return err
		}
		if exists {
			r.Skipped++
			continue
		}
		row := orderRow(o)
		if err := db.Create(&row).Error; err != nil {
			return fmt.Errorf("insert order %s: %w", o.OrderNumber, err)
		}
		r.Orders++
	}
	return nil
}

func (m *Migrator) copyDeposits(ctx context.Context, db *gorm.DB, r *Report) error {
	var src []models.Deposit
	if err := m.st.Load(ctx, storage.DocDeposits, &src); err != nil {
		return err
	}
	for _, d := range src {
		exists, err := rowExists(db, &Deposit{}, d.ID)
		if err != nil {
			return err
		}
		if exists {
			r.Skipped++
			continue
		}
		row := depositRow(d)
		if err := db.Create(&row).Error; err != nil {
			return fmt.Errorf("insert deposit %s: %w", d.Reference, err)
		}
		r.Deposits++
	}
	return nil
}

func rowExists(db *gorm.DB, model any, id int64) (bool, error) {
	var n int64
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return n > 0, nil
}
