package cartstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Repository interface {
	ListItems(ctx context.Context, userID string) ([]SavedItem, error)
	AddItem(ctx context.Context, userID string, req AddRequest) (SavedLine, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	listItemsSQL = `SELECT ci.id, ci.quantity, p.id, p.name, p.price_cents, p.image_url
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_user_id = $1
ORDER BY ci.created_at DESC`

	ensureCartSQL = `INSERT INTO carts (user_id) VALUES ($1)
ON CONFLICT (user_id) DO NOTHING`

	findProductByNameSQL = `SELECT id FROM products WHERE name = $1 LIMIT 1`

	insertProductSQL = `INSERT INTO products (name, price_cents, image_url)
VALUES ($1, $2, $3)
RETURNING id`

	upsertItemSQL = `INSERT INTO cart_items (cart_user_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_user_id, product_id) DO UPDATE
SET quantity = EXCLUDED.quantity
RETURNING id, quantity`
)

const foreignKeyViolation = "23503"

func (r *PostgresRepository) ListItems(ctx context.Context, userID string) ([]SavedItem, error) {
	rows, err := r.db.QueryContext(ctx, listItemsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	items := []SavedItem{}
	for rows.Next() {
		var (
			it       SavedItem
			cents    sql.NullInt64
			imageURL sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.Quantity, &it.Product.ID, &it.Product.Name, &cents, &imageURL); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		if cents.Valid {
			v := cents.Int64
			it.Product.PriceCents = &v
		}
		if imageURL.Valid {
			v := imageURL.String
			it.Product.ImageURL = &v
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return items, nil
}

// AddItem ensures the user's cart exists, resolves the product (creating it
// by name when only details were sent) and sets the line quantity.
func (r *PostgresRepository) AddItem(ctx context.Context, userID string, req AddRequest) (line SavedLine, err error) {
	if req.quantity() < 1 {
		return SavedLine{}, ErrInvalidQuantity
	}
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" && req.productName() == "" {
		return SavedLine{}, ErrMissingProduct
	}
	if productID != "" {
		if _, perr := uuid.Parse(productID); perr != nil {
			return SavedLine{}, ErrInvalidProduct
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return SavedLine{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, ensureCartSQL, userID); err != nil {
		return SavedLine{}, fmt.Errorf("ensure cart: %w", err)
	}

	if productID == "" {
		productID, err = resolveProduct(ctx, tx, *req.Product)
		if err != nil {
			return SavedLine{}, err
		}
	}

	err = tx.QueryRowContext(ctx, upsertItemSQL, userID, productID, req.quantity()).Scan(&line.ID, &line.Quantity)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			err = ErrUnknownProduct
			return SavedLine{}, err
		}
		return SavedLine{}, fmt.Errorf("upsert cart item: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return SavedLine{}, fmt.Errorf("commit tx: %w", err)
	}
	return line, nil
}

func resolveProduct(ctx context.Context, tx *sql.Tx, p ProductDetails) (string, error) {
	name := strings.TrimSpace(p.Name)

	var id string
	err := tx.QueryRowContext(ctx, findProductByNameSQL, name).Scan(&id)
	switch {
	case err == nil:
		return id, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("find product by name: %w", err)
	}

	if err := tx.QueryRowContext(ctx, insertProductSQL, name, p.priceCents(), p.imageURL()).Scan(&id); err != nil {
		return "", fmt.Errorf("insert product: %w", err)
	}
	return id, nil
}
