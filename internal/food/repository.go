package food

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"foodzz/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context) ([]Item, error)
	GetByID(ctx context.Context, id int) (*Item, error)
	GetByIDs(ctx context.Context, ids []int) (map[int]Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, id int, patch Patch) (Item, error)
	Delete(ctx context.Context, id int) error
	ListFeatured(ctx context.Context) ([]int, error)
	SetFeatured(ctx context.Context, id int, featured bool) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const foodColumns = `id, name, description, price, category, image, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (Item, error) {
	var (
		it          Item
		description sql.NullString
		category    sql.NullString
		image       sql.NullString
		createdAt   sql.NullTime
	)
	if err := row.Scan(&it.ID, &it.Name, &description, &it.Price, &category, &image, &createdAt); err != nil {
		return Item{}, err
	}
	it.Description = description.String
	it.Category = category.String
	it.Image = image.String
	if createdAt.Valid {
		t := createdAt.Time
		it.CreatedAt = &t
	}
	return it, nil
}

func (r *repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+foodColumns+` FROM foods ORDER BY id`)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query foods", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedListFoods, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailedListFoods, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedListFoods, err)
	}

	return items, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = $1`, id)

	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFoodNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []int) (map[int]Item, error) {
	out := make(map[int]Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ids64 := make([]int64, 0, len(ids))
	for _, id := range ids {
		ids64 = append(ids64, int64(id))
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE id = ANY($1)`,
		pq.Array(ids64),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedListFoods, err)
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailedListFoods, err)
		}
		out[it.ID] = it
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, item Item) (Item, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO foods (name, description, price, category, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+foodColumns,
		item.Name, item.Description, item.Price, item.Category, item.Image,
	)

	created, err := scanItem(row)
	if err != nil {
		return Item{}, fmt.Errorf("%w: %w", ErrFailedCreateFood, err)
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, id int, patch Patch) (Item, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE foods SET
			name        = COALESCE($2, name),
			description = COALESCE($3, description),
			price       = COALESCE($4, price),
			category    = COALESCE($5, category),
			image       = COALESCE($6, image)
		WHERE id = $1
		RETURNING `+foodColumns,
		id, patch.Name, patch.Description, patch.Price, patch.Category, patch.Image,
	)

	updated, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrFoodNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("%w: %w", ErrFailedUpdateFood, err)
	}
	return updated, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM foods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedDeleteFood, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedDeleteFood, err)
	}
	if affected == 0 {
		return ErrFoodNotFound
	}
	return nil
}

func (r *repository) ListFeatured(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT food_id FROM featured_foods ORDER BY food_id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedListFoods, err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repository) SetFeatured(ctx context.Context, id int, featured bool) error {
	var err error
	if featured {
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO featured_foods (food_id) VALUES ($1) ON CONFLICT (food_id) DO NOTHING`, id)
	} else {
		_, err = r.db.ExecContext(ctx, `DELETE FROM featured_foods WHERE food_id = $1`, id)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedSetFeatured, err)
	}
	return nil
}
