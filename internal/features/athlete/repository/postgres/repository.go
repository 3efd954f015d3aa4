package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"athlete-registry-backend/internal/features/athlete/models"
	"athlete-registry-backend/internal/features/athlete/repository"
)

// selectWithNames joins the creating/updating users so responses can show
// who touched the record.
const selectWithNames = `
	SELECT a.*,
	       cu.first_name || ' ' || cu.last_name              AS created_by_name,
	       COALESCE(uu.first_name || ' ' || uu.last_name, '') AS updated_by_name
	FROM athletes a
	JOIN users cu ON cu.id = a.created_by
	LEFT JOIN users uu ON uu.id = a.updated_by
`

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) repository.AthleteRepository {
	return &postgresRepository{db: db}
}

func isDuplicate(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *postgresRepository) Create(ctx context.Context, athlete *models.Athlete) error {
	query := `
		INSERT INTO athletes (first_name, last_name, id_number, date_of_birth, event, description, image, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		athlete.FirstName, athlete.LastName, athlete.IDNumber, athlete.DateOfBirth,
		athlete.Event, athlete.Description, athlete.Image, athlete.CreatedBy,
	).Scan(&athlete.ID, &athlete.CreatedAt, &athlete.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return repository.ErrDuplicateAthlete
		}
		return fmt.Errorf("failed to create athlete: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*models.Athlete, error) {
	var athlete models.Athlete
	if err := r.db.GetContext(ctx, &athlete, selectWithNames+` WHERE a.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrAthleteNotFound
		}
		return nil, fmt.Errorf("failed to get athlete: %w", err)
	}
	return &athlete, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]models.Athlete, error) {
	var athletes []models.Athlete
	if err := r.db.SelectContext(ctx, &athletes, selectWithNames+` ORDER BY a.created_at DESC`); err != nil {
		return nil, fmt.Errorf("failed to list athletes: %w", err)
	}
	return athletes, nil
}

func (r *postgresRepository) Update(ctx context.Context, athlete *models.Athlete) error {
	query := `
		UPDATE athletes
		SET first_name = $2, last_name = $3, date_of_birth = $4, event = $5,
		    description = $6, image = $7, updated_by = $8, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		athlete.ID, athlete.FirstName, athlete.LastName, athlete.DateOfBirth,
		athlete.Event, athlete.Description, athlete.Image, athlete.UpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update athlete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrAthleteNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM athletes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete athlete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrAthleteNotFound
	}
	return nil
}

func (r *postgresRepository) IDNumberExists(ctx context.Context, idNumber string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM athletes WHERE id_number = $1)`
	if err := r.db.GetContext(ctx, &exists, query, idNumber); err != nil {
		return false, fmt.Errorf("failed to check athlete id number: %w", err)
	}
	return exists, nil
}
