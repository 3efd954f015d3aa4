package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athlete-registry-backend/internal/common/config"
	"athlete-registry-backend/internal/common/errors"
	"athlete-registry-backend/internal/features/athlete/models"
	"athlete-registry-backend/internal/features/athlete/repository"
	usermodels "athlete-registry-backend/internal/features/user/models"
)

type memoryAthleteRepo struct {
	mu       sync.Mutex
	nextID   int64
	athletes map[int64]*models.Athlete
}

func newMemoryAthleteRepo() *memoryAthleteRepo {
	return &memoryAthleteRepo{nextID: 1, athletes: make(map[int64]*models.Athlete)}
}

func (m *memoryAthleteRepo) Create(_ context.Context, athlete *models.Athlete) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.athletes {
		if a.IDNumber == athlete.IDNumber {
			return repository.ErrDuplicateAthlete
		}
	}
	athlete.ID = m.nextID
	m.nextID++
	athlete.CreatedAt = time.Now()
	athlete.UpdatedAt = athlete.CreatedAt
	m.athletes[athlete.ID] = athlete
	return nil
}

func (m *memoryAthleteRepo) GetByID(_ context.Context, id int64) (*models.Athlete, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.athletes[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, repository.ErrAthleteNotFound
}

func (m *memoryAthleteRepo) List(_ context.Context) ([]models.Athlete, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Athlete
	for _, a := range m.athletes {
		out = append(out, *a)
	}
	return out, nil
}

func (m *memoryAthleteRepo) Update(_ context.Context, athlete *models.Athlete) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.athletes[athlete.ID]; !ok {
		return repository.ErrAthleteNotFound
	}
	copied := *athlete
	copied.UpdatedAt = time.Now()
	m.athletes[athlete.ID] = &copied
	return nil
}

func (m *memoryAthleteRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.athletes[id]; !ok {
		return repository.ErrAthleteNotFound
	}
	delete(m.athletes, id)
	return nil
}

func (m *memoryAthleteRepo) IDNumberExists(_ context.Context, idNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.athletes {
		if a.IDNumber == idNumber {
			return true, nil
		}
	}
	return false, nil
}

func newAthleteService(t *testing.T) (AthleteService, *memoryAthleteRepo) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Registration.IDNumberDigits = 12
	repo := newMemoryAthleteRepo()
	return NewAthleteService(repo, cfg), repo
}

func adminActor() *usermodels.User {
	return &usermodels.User{ID: 7, Role: usermodels.RoleAdmin}
}

func validCreate() *models.CreateAthleteRequest {
	return &models.CreateAthleteRequest{
		FirstName:   "Maria",
		LastName:    "Sauer",
		IDNumber:    "295072100108",
		DateOfBirth: "1998-04-17",
		Event:       "100m hurdles",
		Description: "National champion 2024",
	}
}

func wantCode(t *testing.T, err error, code errors.ErrorCode) *errors.AppError {
	t.Helper()
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestCreateAthleteRecordsCreator(t *testing.T) {
	svc, _ := newAthleteService(t)

	created, err := svc.CreateAthlete(context.Background(), adminActor(), validCreate(), nil)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(7), created.CreatedBy)
	assert.Nil(t, created.UpdatedBy)
	assert.Equal(t, 1998, created.DateOfBirth.Year())
}

func TestCreateAthleteValidation(t *testing.T) {
	svc, _ := newAthleteService(t)
	ctx := context.Background()

	for name, alter := range map[string]func(*models.CreateAthleteRequest){
		"empty first name": func(r *models.CreateAthleteRequest) { r.FirstName = "" },
		"short id number":  func(r *models.CreateAthleteRequest) { r.IDNumber = "12345" },
		"alpha id number":  func(r *models.CreateAthleteRequest) { r.IDNumber = "29507210010a" },
		"empty event":      func(r *models.CreateAthleteRequest) { r.Event = "" },
		"no description":   func(r *models.CreateAthleteRequest) { r.Description = "" },
		"bad date":         func(r *models.CreateAthleteRequest) { r.DateOfBirth = "17/04/1998" },
	} {
		t.Run(name, func(t *testing.T) {
			req := validCreate()
			alter(req)
			_, err := svc.CreateAthlete(ctx, adminActor(), req, nil)
			wantCode(t, err, errors.ErrCodeValidation)
		})
	}
}

func TestCreateAthleteDuplicateIDNumber(t *testing.T) {
	svc, _ := newAthleteService(t)
	ctx := context.Background()

	_, err := svc.CreateAthlete(ctx, adminActor(), validCreate(), nil)
	require.NoError(t, err)

	_, err = svc.CreateAthlete(ctx, adminActor(), validCreate(), nil)
	appErr := wantCode(t, err, errors.ErrCodeConflict)
	assert.Equal(t, "id_number", appErr.Details["field"])
}

func TestUpdateAthletePartialAndAttribution(t *testing.T) {
	svc, _ := newAthleteService(t)
	ctx := context.Background()

	created, err := svc.CreateAthlete(ctx, adminActor(), validCreate(), nil)
	require.NoError(t, err)

	editor := &usermodels.User{ID: 9, Role: usermodels.RoleSuperAdmin}
	updated, err := svc.UpdateAthlete(ctx, editor, created.ID, &models.UpdateAthleteRequest{Event: "200m"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "200m", updated.Event)
	assert.Equal(t, "Maria", updated.FirstName)
	assert.Equal(t, int64(7), updated.CreatedBy)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, int64(9), *updated.UpdatedBy)
}

func TestUpdateAthleteBadDate(t *testing.T) {
	svc, _ := newAthleteService(t)
	ctx := context.Background()

	created, err := svc.CreateAthlete(ctx, adminActor(), validCreate(), nil)
	require.NoError(t, err)

	_, err = svc.UpdateAthlete(ctx, adminActor(), created.ID, &models.UpdateAthleteRequest{DateOfBirth: "not-a-date"}, nil)
	wantCode(t, err, errors.ErrCodeValidation)
}

func TestUpdateAthleteNotFound(t *testing.T) {
	svc, _ := newAthleteService(t)

	_, err := svc.UpdateAthlete(context.Background(), adminActor(), 404, &models.UpdateAthleteRequest{Event: "200m"}, nil)
	wantCode(t, err, errors.ErrCodeNotFound)
}

func TestUpdateAthleteReplacesImage(t *testing.T) {
	svc, _ := newAthleteService(t)
	ctx := context.Background()

	first := "1-portrait.jpg"
	created, err := svc.CreateAthlete(ctx, adminActor(), validCreate(), &first)
	require.NoError(t, err)
	require.NotNil(t, created.Image)

	second := "2-portrait.jpg"
	updated, err := svc.UpdateAthlete(ctx, adminActor(), created.ID, &models.UpdateAthleteRequest{}, &second)
	require.NoError(t, err)
	require.NotNil(t, updated.Image)
	assert.Equal(t, second, *updated.Image)

	// Omitting the file keeps the stored image.
	kept, err := svc.UpdateAthlete(ctx, adminActor(), created.ID, &models.UpdateAthleteRequest{}, nil)
	require.NoError(t, err)
	require.NotNil(t, kept.Image)
	assert.Equal(t, second, *kept.Image)
}

func TestGetListDeleteAthlete(t *testing.T) {
	svc, _ := newAthleteService(t)
	ctx := context.Background()

	created, err := svc.CreateAthlete(ctx, adminActor(), validCreate(), nil)
	require.NoError(t, err)

	got, err := svc.GetAthlete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.IDNumber, got.IDNumber)

	listed, err := svc.ListAthletes(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	require.NoError(t, svc.DeleteAthlete(ctx, created.ID))

	_, err = svc.GetAthlete(ctx, created.ID)
	wantCode(t, err, errors.ErrCodeNotFound)
	err = svc.DeleteAthlete(ctx, created.ID)
	wantCode(t, err, errors.ErrCodeNotFound)
}
