package repository

import (
	"context"
	"errors"

	"athlete-registry-backend/internal/features/athlete/models"
)

var (
	ErrAthleteNotFound  = errors.New("athlete not found")
	ErrDuplicateAthlete = errors.New("athlete with this id number already exists")
)

type AthleteRepository interface {
	Create(ctx context.Context, athlete *models.Athlete) error
	GetByID(ctx context.Context, id int64) (*models.Athlete, error)
	List(ctx context.Context) ([]models.Athlete, error)
	Update(ctx context.Context, athlete *models.Athlete) error
	Delete(ctx context.Context, id int64) error
	IDNumberExists(ctx context.Context, idNumber string) (bool, error)
}
