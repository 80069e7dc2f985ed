package migrate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/premstore/storebot/internal/models"
)

// Row types mirror the JSON documents, one table per record kind. Money
// columns stay decimal end to end; both drivers read them back losslessly.

type Product struct {
	ID          int64 `gorm:"primaryKey"`
	Name        string
	Description string
	Price       decimal.Decimal `gorm:"type:numeric;not null"`
	Category    string          `gorm:"index"`
	ImageURL    string
	Stock       int
	CreatedAt   time.Time
	Variants    []Variant `gorm:"constraint:OnDelete:CASCADE"`
}

type Variant struct {
	ProductID int64 `gorm:"primaryKey;autoIncrement:false"`
	VariantID int   `gorm:"primaryKey;autoIncrement:false"`
	Name      string
	Price     decimal.Decimal `gorm:"type:numeric;not null"`
	Stock     int
}

type User struct {
	ID             int64 `gorm:"primaryKey"`
	FirstName      string
	Username       string
	Balance        decimal.Decimal `gorm:"type:numeric;not null"`
	TotalDeposited decimal.Decimal `gorm:"type:numeric;not null"`
	TotalSpent     decimal.Decimal `gorm:"type:numeric;not null"`
	OrderCount     int
	CreatedAt      time.Time
	LastActivity   time.Time
}

type Order struct {
	ID          int64  `gorm:"primaryKey"`
	OrderNumber string `gorm:"uniqueIndex;not null"`
	UserID      int64  `gorm:"index;not null"`
	UserName    string
	Total       decimal.Decimal `gorm:"type:numeric;not null"`
	Status      string          `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Items       []OrderItem `gorm:"constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	OrderID     int64 `gorm:"index;not null"`
	ProductID   int64 `gorm:"not null"`
	ProductName string
	VariantID   int
	Variant     string
	Quantity    int
	UnitPrice   decimal.Decimal `gorm:"type:numeric;not null"`
	LineTotal   decimal.Decimal `gorm:"type:numeric;not null"`
}

type Deposit struct {
	ID        int64           `gorm:"primaryKey"`
	UserID    int64           `gorm:"index;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric;not null"`
	Method    string
	Status    string `gorm:"not null"`
	Reference string `gorm:"uniqueIndex;not null"`
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func productRow(p models.Product) Product {
	row := Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
	}
	for _, v := range p.Variants {
		row.Variants = append(row.Variants, Variant{
			ProductID: p.ID,
			VariantID: v.ID,
			Name:      v.Name,
			Price:     v.Price,
			Stock:     v.Stock,
		})
	}
	return row
}

func userRow(u models.User) User {
	return User{
		ID:             u.ID,
		FirstName:      u.FirstName,
		Username:       u.Username,
		Balance:        u.Balance,
		TotalDeposited: u.TotalDeposited,
		TotalSpent:     u.TotalSpent,
		OrderCount:     u.OrderCount,
		CreatedAt:      u.CreatedAt,
		LastActivity:   u.LastActivity,
	}
}

func orderRow(o models.Order) Order {
	row := Order{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		UserName:    o.UserName,
		Total:       o.Total,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	for _, it := range o.Items {
		row.Items = append(row.Items, OrderItem{
			OrderID:     o.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			VariantID:   it.VariantID,
			Variant:     it.Variant,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	return row
}

func depositRow(d models.Deposit) Deposit {
	return Deposit{
		ID:        d.ID,
		UserID:    d.UserID,
		Amount:    d.Amount,
		Method:    d.Method,
		Status:    d.Status,
		Reference: d.Reference,
		Note:      d.Note,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
