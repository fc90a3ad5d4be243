package memory

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
)

type CartRepo struct {
	s *Store
}

func (r *CartRepo) Get(ctx context.Context, owner string) (*domain.Cart, error) {
	const op = "memory.CartRepo.Get"

	if err := r.s.fault(func(f Faults) error { return f.Carts }); err != nil {
		return nil, e.Wrap(op, err)
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cart, ok := r.s.carts[owner]
	if !ok {
		return domain.NewCart(owner), nil
	}

	items := make([]domain.CartItem, len(cart.Items))
	copy(items, cart.Items)
	return &domain.Cart{Owner: owner, Items: items}, nil
}

func (r *CartRepo) Take(ctx context.Context, owner string) (*domain.Cart, error) {
	const op = "memory.CartRepo.Take"

	if err := r.s.fault(func(f Faults) error { return f.Carts }); err != nil {
		return nil, e.Wrap(op, err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cart, ok := r.s.carts[owner]
	if !ok {
		return domain.NewCart(owner), nil
	}
	delete(r.s.carts, owner)

	return &domain.Cart{Owner: owner, Items: cart.Items}, nil
}

func (r *CartRepo) Save(ctx context.Context, cart *domain.Cart) error {
	const op = "memory.CartRepo.Save"

	if err := r.s.fault(func(f Faults) error { return f.Carts }); err != nil {
		return e.Wrap(op, err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	items := make([]domain.CartItem, len(cart.Items))
	copy(items, cart.Items)
	r.s.carts[cart.Owner] = domain.Cart{Owner: cart.Owner, Items: items}

	return nil
}

func (r *CartRepo) Clear(ctx context.Context, owner string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.carts, owner)
	return nil
}

type SessionRepo struct {
	s *Store
}

func (r *SessionRepo) Create(ctx context.Context, session *domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.sessions[session.Token] = *session
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, token string) (*domain.Session, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	session, ok := r.s.sessions[token]
	if !ok {
		return nil, false, nil
	}
	return &session, true, nil
}

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.sessions, token)
	return nil
}

type CacheRepo struct {
	s *Store
}

func (r *CacheRepo) GetProduct(ctx context.Context, nameKey string) (*domain.Product, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.cache[nameKey]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (r *CacheRepo) SetProduct(ctx context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.cache[domain.NameKey(product.Name)] = *product
	return nil
}

func (r *CacheRepo) DeleteProducts(ctx context.Context, names ...string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, name := range names {
		delete(r.s.cache, domain.NameKey(name))
	}
	return nil
}

type ReportRepo struct {
	s *Store
}

func (r *ReportRepo) Upload(ctx context.Context, report *usecase.Report) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := "exports/" + report.Name
	data := make([]byte, len(report.Data))
	copy(data, report.Data)
	r.s.reports[key] = data

	return key, nil
}

func (r *ReportRepo) PresignedURL(ctx context.Context, key string) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.reports[key]; !ok {
		return "", e.Wrap("memory.ReportRepo.PresignedURL", e.ErrNotFound)
	}
	return fmt.Sprintf("memory://%s", key), nil
}

// Report возвращает содержимое загруженной выгрузки.
func (r *ReportRepo) Report(key string) ([]byte, bool) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	data, ok := r.s.reports[key]
	return data, ok
}
