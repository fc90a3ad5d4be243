package usecase

import (
	"context"
	"unicode/utf8"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
)

// CatalogUseCase — поиск товаров для касс и редактирование каталога администратором.
type CatalogUseCase struct {
	products    ProductRepository
	cacheRepo   CacheRepository
	searchLimit int
	logger      logger.Logger
}

func NewCatalogUC(products ProductRepository, cacheRepo CacheRepository, searchLimit int, logger logger.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		products:    products,
		cacheRepo:   cacheRepo,
		searchLimit: domain.ClampSearchLimit(searchLimit),
		logger:      logger,
	}
}

// FindProduct ищет товар: точное имя, затем без учёта регистра, затем первая подстрока в порядке каталога.
// Отсутствие товара не ошибка: found = false.
func (c *CatalogUseCase) FindProduct(ctx context.Context, name string) (*domain.Product, bool, error) {
	const op = "CatalogUseCase.FindProduct"

	key := domain.NameKey(name)
	if key == "" {
		return nil, false, nil
	}

	product, found, err := c.cacheRepo.GetProduct(ctx, key)
	if err != nil {
		c.logger.Warnf("Failed to read product from cache: %v", e.Wrap(op, err))
	} else if found {
		return product, true, nil
	}

	product, found, err = c.products.FindByName(ctx, name)
	if err != nil {
		return nil, false, e.Persistence(op, err)
	}
	if !found {
		return nil, false, nil
	}

	// В кэш попадают только совпадения по имени, иначе инвалидация по имени их не найдёт
	if domain.NameKey(product.Name) == key {
		if err := c.cacheRepo.SetProduct(ctx, product); err != nil {
			c.logger.Warnf("Failed to cache product: %v", e.Wrap(op, err))
		}
	}

	return product, true, nil
}

// SearchProducts возвращает имена доступных товаров, содержащие запрос без учёта регистра.
// Запрос короче двух символов даёт пустой результат. Лимит ограничен POS_SEARCH_LIMIT.
func (c *CatalogUseCase) SearchProducts(ctx context.Context, query string, limit int) ([]string, error) {
	const op = "CatalogUseCase.SearchProducts"

	query = domain.NormalizeName(query)
	if utf8.RuneCountInString(query) < domain.MinSearchQueryLen {
		return []string{}, nil
	}
	// Лимит клиента не может превышать настроенный
	if limit <= 0 || limit > c.searchLimit {
		limit = c.searchLimit
	}

	names, err := c.products.Search(ctx, query, limit)
	if err != nil {
		return nil, e.Persistence(op, err)
	}

	return names, nil
}

// ListProducts возвращает весь каталог в порядке добавления.
func (c *CatalogUseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "CatalogUseCase.ListProducts"

	products, err := c.products.List(ctx)
	if err != nil {
		return nil, e.Persistence(op, err)
	}

	return products, nil
}

func (c *CatalogUseCase) CreateProduct(ctx context.Context, req *ProductReq) (*domain.Product, error) {
	const op = "CatalogUseCase.CreateProduct"

	product, err := c.buildProduct(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	created, err := c.products.Create(ctx, product)
	if err != nil {
		return nil, e.Persistence(op, err)
	}

	c.invalidate(ctx, op, created.Name)
	c.logger.Infof("Product created. name: %s, price: %s", created.Name, created.UnitPrice.StringFixed(2))

	return created, nil
}

// UpdateProduct обновляет товар, найденный по имени без учёта регистра. Переименование допустимо.
func (c *CatalogUseCase) UpdateProduct(ctx context.Context, originalName string, req *ProductReq) (*domain.Product, error) {
	const op = "CatalogUseCase.UpdateProduct"

	product, err := c.buildProduct(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	updated, found, err := c.products.Update(ctx, originalName, product)
	if err != nil {
		return nil, e.Persistence(op, err)
	}
	if !found {
		return nil, e.Wrap(op, e.ErrProductNotFound)
	}

	c.invalidate(ctx, op, originalName, updated.Name)
	c.logger.Infof("Product updated. name: %s, price: %s", updated.Name, updated.UnitPrice.StringFixed(2))

	return updated, nil
}

func (c *CatalogUseCase) DeleteProduct(ctx context.Context, name string) error {
	const op = "CatalogUseCase.DeleteProduct"

	deleted, err := c.products.Delete(ctx, name)
	if err != nil {
		return e.Persistence(op, err)
	}
	if !deleted {
		return e.Wrap(op, e.ErrProductNotFound)
	}

	c.invalidate(ctx, op, name)
	c.logger.Infof("Product deleted. name: %s", name)

	return nil
}

func (c *CatalogUseCase) buildProduct(req *ProductReq) (*domain.Product, error) {
	if domain.NormalizeName(req.Name) == "" {
		return nil, e.ErrProductNameRequired
	}
	if !req.UnitPrice.IsPositive() {
		return nil, e.ErrInvalidPrice
	}
	if !req.UnitPrice.Equal(req.UnitPrice.Truncate(2)) {
		return nil, e.ErrPricePrecision
	}

	product := domain.NewProduct(req.Name, req.Category, req.Subcategory, req.UnitPrice, req.Supplier)
	if req.Status != "" {
		product.Status = req.Status
	}

	return product, nil
}

func (c *CatalogUseCase) invalidate(ctx context.Context, op string, names ...string) {
	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, domain.NameKey(name))
	}

	if err := c.cacheRepo.DeleteProducts(ctx, keys...); err != nil {
		c.logger.Warnf("Failed to delete products from cache: %v", e.Wrap(op, err))
	}
}
