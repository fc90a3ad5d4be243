package memory

import (
	"context"
	"strings"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
)

type ProductRepo struct {
	s *Store
}

// FindByName: точное совпадение, без учёта регистра, затем первая подстрока в порядке каталога.
func (r *ProductRepo) FindByName(ctx context.Context, name string) (*domain.Product, bool, error) {
	const op = "memory.ProductRepo.FindByName"

	if err := r.s.fault(func(f Faults) error { return f.Products }); err != nil {
		return nil, false, e.Wrap(op, err)
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	name = domain.NormalizeName(name)
	key := strings.ToLower(name)
	if key == "" {
		return nil, false, nil
	}

	matchers := []func(p domain.Product) bool{
		func(p domain.Product) bool { return p.Name == name },
		func(p domain.Product) bool { return domain.NameKey(p.Name) == key },
		func(p domain.Product) bool { return strings.Contains(domain.NameKey(p.Name), key) },
	}
	for _, match := range matchers {
		for _, p := range r.s.products {
			if match(p) {
				found := p
				return &found, true, nil
			}
		}
	}

	return nil, false, nil
}

func (r *ProductRepo) Search(ctx context.Context, query string, limit int) ([]string, error) {
	const op = "memory.ProductRepo.Search"

	if err := r.s.fault(func(f Faults) error { return f.Products }); err != nil {
		return nil, e.Wrap(op, err)
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	key := domain.NameKey(query)
	names := make([]string, 0, limit)
	for _, p := range r.s.products {
		if len(names) >= limit {
			break
		}
		if p.IsAvailable() && strings.Contains(domain.NameKey(p.Name), key) {
			names = append(names, p.Name)
		}
	}

	return names, nil
}

func (r *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	const op = "memory.ProductRepo.Create"

	if err := r.s.fault(func(f Faults) error { return f.Products }); err != nil {
		return nil, e.Wrap(op, err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.indexOf(product.Name) >= 0 {
		return nil, e.Wrap(op, e.ErrProductExists)
	}

	r.s.nextProductID++
	created := *product
	created.ID = r.s.nextProductID
	created.CreatedAt = time.Now()
	r.s.products = append(r.s.products, created)

	return &created, nil
}

func (r *ProductRepo) Update(ctx context.Context, originalName string, product *domain.Product) (*domain.Product, bool, error) {
	const op = "memory.ProductRepo.Update"

	if err := r.s.fault(func(f Faults) error { return f.Products }); err != nil {
		return nil, false, e.Wrap(op, err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	idx := r.indexOf(originalName)
	if idx < 0 {
		return nil, false, nil
	}
	if other := r.indexOf(product.Name); other >= 0 && other != idx {
		return nil, false, e.Wrap(op, e.ErrProductExists)
	}

	now := time.Now()
	updated := *product
	updated.ID = r.s.products[idx].ID
	updated.CreatedAt = r.s.products[idx].CreatedAt
	updated.UpdatedAt = &now
	r.s.products[idx] = updated

	return &updated, true, nil
}

func (r *ProductRepo) Delete(ctx context.Context, name string) (bool, error) {
	const op = "memory.ProductRepo.Delete"

	if err := r.s.fault(func(f Faults) error { return f.Products }); err != nil {
		return false, e.Wrap(op, err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	idx := r.indexOf(name)
	if idx < 0 {
		return false, nil
	}
	r.s.products = append(r.s.products[:idx], r.s.products[idx+1:]...)

	return true, nil
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Product, len(r.s.products))
	copy(out, r.s.products)
	return out, nil
}

func (r *ProductRepo) CountAvailable(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, p := range r.s.products {
		if p.IsAvailable() {
			n++
		}
	}
	return n, nil
}

func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.s.products)), nil
}

// indexOf ищет товар по имени без учёта регистра. Вызывается под r.s.mu.
func (r *ProductRepo) indexOf(name string) int {
	key := domain.NameKey(name)
	for i, p := range r.s.products {
		if domain.NameKey(p.Name) == key {
			return i
		}
	}
	return -1
}
