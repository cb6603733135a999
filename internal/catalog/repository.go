package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository interface {
	List(ctx context.Context, q ListQuery) (Page, error)
	Get(ctx context.Context, dbID string) (ProductSummary, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const productColumns = `id::text, item_no, name, price_cents, original_price_cents, image_url, category, is_new, is_sale, colors, sizes`

func (r *PostgresRepository) List(ctx context.Context, q ListQuery) (Page, error) {
	q = q.normalized()
	where, args := q.filter()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return Page{}, fmt.Errorf("count products: %w", err)
	}

	args = append(args, q.Limit, q.Offset)
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, where, q.orderBy(), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return Page{}, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	items := []ProductSummary{}
	for rows.Next() {
		pr, err := scanProduct(rows)
		if err != nil {
			return Page{}, err
		}
		items = append(items, pr.summary(len(items)+1))
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("iterate products: %w", err)
	}

	next := q.Offset + len(items)
	return Page{Items: items, Total: total, NextOffset: next, HasMore: next < total}, nil
}

func (r *PostgresRepository) Get(ctx context.Context, dbID string) (ProductSummary, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id::text = $1`, dbID)
	pr, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductSummary{}, ErrNotFound
		}
		return ProductSummary{}, err
	}
	return pr.summary(1), nil
}

func scanProduct(row pgx.Row) (productRow, error) {
	var pr productRow
	err := row.Scan(
		&pr.id, &pr.itemNo, &pr.name,
		&pr.priceCents, &pr.originalPriceCents,
		&pr.imageURL, &pr.category,
		&pr.isNew, &pr.isSale,
		&pr.colors, &pr.sizes,
	)
	if err != nil {
		return productRow{}, fmt.Errorf("scan product: %w", err)
	}
	return pr, nil
}

func (q ListQuery) normalized() ListQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Category = strings.TrimSpace(q.Category)
	return q
}

func (q ListQuery) filter() (string, []any) {
	var conds []string
	var args []any

	if q.Search != "" {
		args = append(args, "%"+escapeLike(q.Search)+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if q.Category != "" && !strings.EqualFold(q.Category, "all") {
		args = append(args, escapeLike(q.Category))
		conds = append(conds, fmt.Sprintf("category ILIKE $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (q ListQuery) orderBy() string {
	switch q.Sort {
	case SortPriceLow:
		return "price_cents ASC NULLS FIRST"
	case SortPriceHigh:
		return "price_cents DESC NULLS FIRST"
	case SortName:
		return "name ASC"
	default:
		return "created_at DESC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
