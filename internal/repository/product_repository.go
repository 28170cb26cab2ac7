package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/postpilot/postpilot/internal/models"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	CheckByUserID(ctx context.Context, productID, userID int64) (bool, error)
	Remove(ctx context.Context, id int64) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) (int64, error) {
	query := `
		INSERT INTO products (user_id, name, description, target_audience, brand_voice, hashtags, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, product.UserID, product.Name, product.Description,
		product.TargetAudience, product.BrandVoice, product.Hashtags, product.IsActive).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT id, user_id, name, description, target_audience, brand_voice, hashtags,
		is_active, created_at, updated_at FROM products WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var p models.Product
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.TargetAudience,
		&p.BrandVoice, &p.Hashtags, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &p, nil
}

func (r *productRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Product, error) {
	query := `SELECT id, user_id, name, description, target_audience, brand_voice, hashtags,
		is_active, created_at, updated_at FROM products WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.TargetAudience,
			&p.BrandVoice, &p.Hashtags, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, target_audience = $3, brand_voice = $4,
			hashtags = $5, is_active = $6, updated_at = $7
		WHERE id = $8 AND user_id = $9
	`
	_, err := r.db.ExecContext(ctx, query, product.Name, product.Description,
		product.TargetAudience, product.BrandVoice, product.Hashtags, product.IsActive,
		time.Now(), product.ID, product.UserID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *productRepository) CheckByUserID(ctx context.Context, productID, userID int64) (bool, error) {
	query := "SELECT 1 FROM products WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, productID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *productRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
