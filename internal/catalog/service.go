package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora-shop/backend-storefront/internal/cart"
	"github.com/velora-shop/backend-storefront/internal/common"
	"github.com/velora-shop/backend-storefront/internal/pricing"
)

// ErrNotFound indicates the requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog record with its quantity price tiers. The cart engine
// reads BasePrice, Stock, MOQ and Tiers; everything else is display data.
type Product struct {
	ID        string         `json:"id"`
	Slug      string         `json:"slug"`
	Name      string         `json:"name"`
	BasePrice pricing.Money  `json:"basePrice"`
	Stock     int            `json:"stock"`
	MOQ       int            `json:"moq"`
	Tiers     []pricing.Tier `json:"tierPrices"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Service reads the product catalog from Postgres through a Redis JSON cache.
type Service struct {
	Pool         *pgxpool.Pool
	Cache        *Cache
	DefaultLimit int
	MaxLimit     int
}

func (s *Service) limits(limit int) int {
	def := s.DefaultLimit
	if def <= 0 {
		def = 20
	}
	max := s.MaxLimit
	if max <= 0 {
		max = 100
	}
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// List returns a catalog page plus the total product count.
func (s *Service) List(ctx context.Context, page, limit int) ([]Product, int, error) {
	if s == nil || s.Pool == nil {
		return nil, 0, errors.New("catalog service not configured")
	}
	if page <= 0 {
		page = 1
	}
	limit = s.limits(limit)
	cacheKey := fmt.Sprintf("catalog:products:p%d:l%d", page, limit)

	var cached struct {
		Products []Product `json:"products"`
		Total    int       `json:"total"`
	}
	if ok, err := s.Cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
		return cached.Products, cached.Total, nil
	}

	var total int
	if err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, slug, name, base_price, stock, moq, created_at, updated_at
		 FROM products
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := make([]Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := s.attachTiers(ctx, products); err != nil {
		return nil, 0, err
	}

	cached.Products = products
	cached.Total = total
	_ = s.Cache.SetJSON(ctx, cacheKey, cached)
	return products, total, nil
}

// GetBySlug returns a single product by its URL slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (Product, error) {
	if s == nil || s.Pool == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	cacheKey := "catalog:product:slug:" + slug
	var cached Product
	if ok, err := s.Cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
		return cached, nil
	}
	row := s.Pool.QueryRow(ctx,
		`SELECT id, slug, name, base_price, stock, moq, created_at, updated_at
		 FROM products WHERE slug = $1`, slug)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, &common.AppError{Code: "NOT_FOUND", Message: "product not found", HTTPStatus: http.StatusNotFound, Err: ErrNotFound}
		}
		return Product{}, err
	}
	batch := []Product{p}
	if err := s.attachTiers(ctx, batch); err != nil {
		return Product{}, err
	}
	_ = s.Cache.SetJSON(ctx, cacheKey, batch[0])
	return batch[0], nil
}

// GetByID returns a single product by id.
func (s *Service) GetByID(ctx context.Context, id string) (Product, error) {
	if s == nil || s.Pool == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Product{}, fmt.Errorf("parse product id: %w", ErrNotFound)
	}
	cacheKey := "catalog:product:id:" + id
	var cached Product
	if ok, err := s.Cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
		return cached, nil
	}
	row := s.Pool.QueryRow(ctx,
		`SELECT id, slug, name, base_price, stock, moq, created_at, updated_at
		 FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	batch := []Product{p}
	if err := s.attachTiers(ctx, batch); err != nil {
		return Product{}, err
	}
	_ = s.Cache.SetJSON(ctx, cacheKey, batch[0])
	return batch[0], nil
}

// ProductByID implements cart.ProductSource on top of the catalog. Unknown
// products surface as invalid input to the cart engine.
func (s *Service) ProductByID(ctx context.Context, productID string) (cart.Product, error) {
	p, err := s.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return cart.Product{}, fmt.Errorf("unknown product %s: %w", productID, cart.ErrInvalidInput)
		}
		return cart.Product{}, err
	}
	return cart.Product{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		BasePrice: p.BasePrice,
		Stock:     p.Stock,
		MOQ:       p.MOQ,
		Tiers:     p.Tiers,
	}, nil
}

func (s *Service) attachTiers(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, 0, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids = append(ids, p.ID)
		index[p.ID] = i
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT product_id, min_quantity, COALESCE(max_quantity, 0), unit_price
		 FROM product_tiers
		 WHERE product_id = ANY($1)
		 ORDER BY min_quantity ASC`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			productID pgtype.UUID
			tier      pricing.Tier
		)
		if err := rows.Scan(&productID, &tier.MinQuantity, &tier.MaxQuantity, &tier.UnitPrice); err != nil {
			return err
		}
		if !productID.Valid {
			continue
		}
		key := uuid.UUID(productID.Bytes).String()
		if i, ok := index[key]; ok {
			products[i].Tiers = append(products[i].Tiers, tier)
		}
	}
	return rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		id pgtype.UUID
		p  Product
	)
	if err := row.Scan(&id, &p.Slug, &p.Name, &p.BasePrice, &p.Stock, &p.MOQ, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, err
	}
	if id.Valid {
		p.ID = uuid.UUID(id.Bytes).String()
	}
	return p, nil
}
