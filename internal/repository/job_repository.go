package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/camp-registration/internal/domain"
)

// JobCategoryRepository manages job category persistence.
type JobCategoryRepository interface {
	Create(ctx context.Context, category *domain.JobCategory) error
	Update(ctx context.Context, category *domain.JobCategory) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.JobCategory, error)
	List(ctx context.Context) ([]domain.JobCategory, error)
}

// JobRepository manages job persistence.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	Update(ctx context.Context, job *domain.Job) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context) ([]domain.Job, error)
}

type jobCategoryRepository struct {
	db Querier
}

// NewJobCategoryRepository builds repository.
func NewJobCategoryRepository(db Querier) JobCategoryRepository {
	return &jobCategoryRepository{db: db}
}

func (r *jobCategoryRepository) Create(ctx context.Context, category *domain.JobCategory) error {
	const query = `
        INSERT INTO job_categories (name, description)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query, category.Name, category.Description).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
}

func (r *jobCategoryRepository) Update(ctx context.Context, category *domain.JobCategory) error {
	const query = `
        UPDATE job_categories SET name=$1, description=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.db.Exec(ctx, query, category.Name, category.Description, category.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *jobCategoryRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM job_categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *jobCategoryRepository) GetByID(ctx context.Context, id string) (*domain.JobCategory, error) {
	const query = `
        SELECT id, name, description, created_at, updated_at
        FROM job_categories WHERE id=$1`
	var category domain.JobCategory
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *jobCategoryRepository) List(ctx context.Context) ([]domain.JobCategory, error) {
	const query = `
        SELECT id, name, description, created_at, updated_at
        FROM job_categories ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.JobCategory
	for rows.Next() {
		var category domain.JobCategory
		if err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Description,
			&category.CreatedAt,
			&category.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}

type jobRepository struct {
	db Querier
}

// NewJobRepository builds repository.
func NewJobRepository(db Querier) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	const query = `
        INSERT INTO jobs (category_id, name, location, staff_only, always_required)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		job.CategoryID,
		job.Name,
		job.Location,
		job.StaffOnly,
		job.AlwaysRequired,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

func (r *jobRepository) Update(ctx context.Context, job *domain.Job) error {
	const query = `
        UPDATE jobs SET category_id=$1, name=$2, location=$3, staff_only=$4, always_required=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.db.Exec(ctx, query,
		job.CategoryID,
		job.Name,
		job.Location,
		job.StaffOnly,
		job.AlwaysRequired,
		job.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *jobRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	const query = `
        SELECT id, category_id, name, location, staff_only, always_required, created_at, updated_at
        FROM jobs WHERE id=$1`
	var job domain.Job
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.CategoryID,
		&job.Name,
		&job.Location,
		&job.StaffOnly,
		&job.AlwaysRequired,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) List(ctx context.Context) ([]domain.Job, error) {
	const query = `
        SELECT id, category_id, name, location, staff_only, always_required, created_at, updated_at
        FROM jobs ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Job
	for rows.Next() {
		var job domain.Job
		if err := rows.Scan(
			&job.ID,
			&job.CategoryID,
			&job.Name,
			&job.Location,
			&job.StaffOnly,
			&job.AlwaysRequired,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, job)
	}
	return result, rows.Err()
}
