package repository

import (
	"context"
	"fmt"

	"marketplace/aggregator/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepository interface {
	SaveProduct(ctx context.Context, product *domain.Product) error
}

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r *productRepository) SaveProduct(ctx context.Context, product *domain.Product) error {
	query := `
	INSERT INTO products (marketplace, external_id, category_path, data)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (marketplace, external_id)
	DO UPDATE SET category_path = $3, data = $4`
	_, err := r.db.Exec(ctx, query, product.Marketplace.String(), product.ExternalID, product.CategoryPath, product)
	if err != nil {
		return fmt.Errorf("failed to save product %s: %w", product.ExternalID, err)
	}

	return nil
}
