package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusAvailable     = "Available"
	DefaultCategory     = "Uncategorized"
	DefaultSupplier     = "No Supplier"
	MinSearchQueryLen   = 2
	DefaultSearchLimit  = 10
	maxSearchLimitBound = 100
)

// Product описывает товар каталога. Имя уникально без учёта регистра.
type Product struct {
	ID          int64
	Name        string
	Category    string
	Subcategory string
	UnitPrice   decimal.Decimal
	Supplier    string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewProduct(name, category, subcategory string, price decimal.Decimal, supplier string) *Product {
	p := &Product{
		Name:        NormalizeName(name),
		Category:    strings.TrimSpace(category),
		Subcategory: strings.TrimSpace(subcategory),
		UnitPrice:   price,
		Supplier:    strings.TrimSpace(supplier),
		Status:      StatusAvailable,
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if p.Supplier == "" {
		p.Supplier = DefaultSupplier
	}

	return p
}

// IsAvailable сообщает, можно ли продавать товар.
func (p *Product) IsAvailable() bool {
	return p.Status == StatusAvailable
}

// NormalizeName схлопывает повторяющиеся пробелы и обрезает края.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// NameKey — ключ сравнения имён без учёта регистра.
func NameKey(name string) string {
	return strings.ToLower(NormalizeName(name))
}

// ClampSearchLimit приводит лимит поиска к допустимому диапазону.
func ClampSearchLimit(limit int) int {
	if limit <= 0 {
		return DefaultSearchLimit
	}
	if limit > maxSearchLimitBound {
		return maxSearchLimitBound
	}
	return limit
}
