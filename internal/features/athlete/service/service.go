package service

import (
	"context"
	stderrors "errors"
	"time"

	"athlete-registry-backend/internal/common/config"
	"athlete-registry-backend/internal/common/errors"
	"athlete-registry-backend/internal/common/validation"
	"athlete-registry-backend/internal/features/athlete/models"
	"athlete-registry-backend/internal/features/athlete/repository"
	usermodels "athlete-registry-backend/internal/features/user/models"
)

const dateLayout = "2006-01-02"

type AthleteService interface {
	GetAthlete(ctx context.Context, id int64) (*models.Athlete, error)
	ListAthletes(ctx context.Context) ([]models.Athlete, error)
	CreateAthlete(ctx context.Context, actor *usermodels.User, req *models.CreateAthleteRequest, image *string) (*models.Athlete, error)
	UpdateAthlete(ctx context.Context, actor *usermodels.User, id int64, req *models.UpdateAthleteRequest, image *string) (*models.Athlete, error)
	DeleteAthlete(ctx context.Context, id int64) error
}

type athleteService struct {
	repo repository.AthleteRepository
	cfg  *config.Config
}

func NewAthleteService(repo repository.AthleteRepository, cfg *config.Config) AthleteService {
	return &athleteService{repo: repo, cfg: cfg}
}

func (s *athleteService) GetAthlete(ctx context.Context, id int64) (*models.Athlete, error) {
	athlete, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrAthleteNotFound) {
			return nil, errors.NewNotFoundError("athlete", id)
		}
		return nil, errors.NewStoreError("get athlete", err)
	}
	return athlete, nil
}

func (s *athleteService) ListAthletes(ctx context.Context) ([]models.Athlete, error) {
	athletes, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.NewStoreError("list athletes", err)
	}
	return athletes, nil
}

func (s *athleteService) CreateAthlete(ctx context.Context, actor *usermodels.User, req *models.CreateAthleteRequest, image *string) (*models.Athlete, error) {
	if err := validation.ValidateName("first_name", req.FirstName); err != nil {
		return nil, errors.NewValidationError("first_name", err.Error())
	}
	if err := validation.ValidateName("last_name", req.LastName); err != nil {
		return nil, errors.NewValidationError("last_name", err.Error())
	}
	if err := validation.ValidateDigits("id_number", req.IDNumber, s.cfg.Registration.IDNumberDigits); err != nil {
		return nil, errors.NewValidationError("id_number", err.Error())
	}
	if req.Event == "" {
		return nil, errors.NewValidationError("event", "event cannot be empty")
	}
	if req.Description == "" {
		return nil, errors.NewValidationError("description", "description cannot be empty")
	}
	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return nil, errors.NewValidationError("date_of_birth", "must be a date in YYYY-MM-DD format")
	}

	exists, err := s.repo.IDNumberExists(ctx, req.IDNumber)
	if err != nil {
		return nil, errors.NewStoreError("check athlete id number", err)
	}
	if exists {
		return nil, errors.New(errors.ErrCodeConflict, "An athlete with this ID number already exists").
			WithDetail("field", "id_number")
	}

	athlete := &models.Athlete{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		IDNumber:    req.IDNumber,
		DateOfBirth: dob,
		Event:       req.Event,
		Description: req.Description,
		Image:       image,
		CreatedBy:   actor.ID,
	}

	if err := s.repo.Create(ctx, athlete); err != nil {
		if stderrors.Is(err, repository.ErrDuplicateAthlete) {
			// The pre-check raced another create; the unique index decided.
			return nil, errors.New(errors.ErrCodeConflict, "An athlete with this ID number already exists").
				WithDetail("field", "id_number")
		}
		return nil, errors.NewStoreError("create athlete", err)
	}
	return athlete, nil
}

func (s *athleteService) UpdateAthlete(ctx context.Context, actor *usermodels.User, id int64, req *models.UpdateAthleteRequest, image *string) (*models.Athlete, error) {
	athlete, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrAthleteNotFound) {
			return nil, errors.NewNotFoundError("athlete", id)
		}
		return nil, errors.NewStoreError("get athlete", err)
	}

	if req.FirstName != "" {
		athlete.FirstName = req.FirstName
	}
	if req.LastName != "" {
		athlete.LastName = req.LastName
	}
	if req.Event != "" {
		athlete.Event = req.Event
	}
	if req.Description != "" {
		athlete.Description = req.Description
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			return nil, errors.NewValidationError("date_of_birth", "must be a date in YYYY-MM-DD format")
		}
		athlete.DateOfBirth = dob
	}
	if image != nil {
		athlete.Image = image
	}
	athlete.UpdatedBy = &actor.ID

	if err := s.repo.Update(ctx, athlete); err != nil {
		if stderrors.Is(err, repository.ErrAthleteNotFound) {
			return nil, errors.NewNotFoundError("athlete", id)
		}
		return nil, errors.NewStoreError("update athlete", err)
	}
	return athlete, nil
}

func (s *athleteService) DeleteAthlete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrAthleteNotFound) {
			return errors.NewNotFoundError("athlete", id)
		}
		return errors.NewStoreError("delete athlete", err)
	}
	return nil
}
