package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athlete-registry-backend/internal/common/config"
	"athlete-registry-backend/internal/common/errors"
	"athlete-registry-backend/internal/common/password"
	"athlete-registry-backend/internal/features/user/models"
	"athlete-registry-backend/internal/features/user/repository"
	"athlete-registry-backend/internal/platform/token"
)

type memoryUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{nextID: 1, users: make(map[int64]*models.User)}
}

func (m *memoryUserRepo) duplicateOf(user *models.User) *repository.DuplicateError {
	for _, u := range m.users {
		if u.ID == user.ID {
			continue
		}
		switch {
		case u.Email == user.Email:
			return &repository.DuplicateError{Field: "email"}
		case u.Phone == user.Phone:
			return &repository.DuplicateError{Field: "phone"}
		case u.IDNumber == user.IDNumber:
			return &repository.DuplicateError{Field: "id_number"}
		}
	}
	return nil
}

func (m *memoryUserRepo) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if dup := m.duplicateOf(user); dup != nil {
		return dup
	}
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = user
	return nil
}

func (m *memoryUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryUserRepo) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Phone == phone {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryUserRepo) List(_ context.Context, role *models.Role) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if role != nil && u.Role != *role {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (m *memoryUserRepo) Update(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	if dup := m.duplicateOf(user); dup != nil {
		return dup
	}
	copied := *user
	copied.UpdatedAt = time.Now()
	m.users[user.ID] = &copied
	return nil
}

func (m *memoryUserRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memoryUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(context.Background(), email)
	return err == nil, nil
}

func (m *memoryUserRepo) PhoneExists(_ context.Context, phone string) (bool, error) {
	_, err := m.GetByPhone(context.Background(), phone)
	return err == nil, nil
}

func (m *memoryUserRepo) IDNumberExists(_ context.Context, idNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.IDNumber == idNumber {
			return true, nil
		}
	}
	return false, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	to   []string
	body []string
	fail bool
}

func (r *recordingMailer) Send(_ context.Context, to, _ string, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return fmt.Errorf("smtp: connection refused")
	}
	r.to = append(r.to, to)
	r.body = append(r.body, body)
	return nil
}

func newService(t *testing.T) (UserService, *memoryUserRepo, *recordingMailer) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Registration.PhoneDigits = 8
	cfg.Registration.IDNumberDigits = 12
	cfg.SMTP.From = "noreply@example.com"
	cfg.SMTP.ContactTo = "office@example.com"

	repo := newMemoryUserRepo()
	mailer := &recordingMailer{}
	svc := NewUserService(repo, password.Bcrypt{Cost: 4}, token.NewManager("test-secret", time.Hour), mailer, cfg)
	return svc, repo, mailer
}

func seedUser(t *testing.T, repo *memoryUserRepo, role models.Role, email, phone, idNumber, plain string) *models.User {
	t.Helper()
	hash, err := password.Bcrypt{Cost: 4}.Hash(plain)
	require.NoError(t, err)
	u := &models.User{
		FirstName: "Seed", LastName: "User",
		Email: email, Phone: phone, IDNumber: idNumber,
		Role: role, PasswordHash: hash,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func assertCode(t *testing.T, err error, code errors.ErrorCode) *errors.AppError {
	t.Helper()
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestLoginByEmailAndPhone(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	seedUser(t, repo, models.RoleVoter, "a@b.com", "66850080", "295072100108", "s3cret!")

	byEmail, err := svc.Login(ctx, "a@b.com", "s3cret!")
	require.NoError(t, err)
	assert.NotEmpty(t, byEmail.Token)
	assert.Equal(t, "a@b.com", byEmail.User.Email)

	byPhone, err := svc.Login(ctx, "66850080", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, byEmail.User.ID, byPhone.User.ID)
}

func TestLoginMixedCaseEmail(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, &models.CreateUserRequest{
		FirstName: "Jane", LastName: "Doe",
		Email: "John@Example.com", Phone: "66850080", IDNumber: "295072100108",
		Password: "s3cret!",
	}, nil)
	require.NoError(t, err)

	// The stored email is lowercased; logging in with the casing used at
	// registration must still work.
	resp, err := svc.Login(ctx, "John@Example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", resp.User.Email)

	exists, err := svc.EmailExists(ctx, "John@Example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	seedUser(t, repo, models.RoleVoter, "a@b.com", "66850080", "295072100108", "s3cret!")

	_, unknownErr := svc.Login(ctx, "nobody@b.com", "s3cret!")
	_, wrongErr := svc.Login(ctx, "a@b.com", "wrong-password")

	unknown := assertCode(t, unknownErr, errors.ErrCodeUnauthorized)
	wrong := assertCode(t, wrongErr, errors.ErrCodeUnauthorized)
	assert.Equal(t, unknown.Message, wrong.Message)
}

func TestLoginTokenCarriesIdentity(t *testing.T) {
	svc, repo, _ := newService(t)
	seeded := seedUser(t, repo, models.RoleAdmin, "a@b.com", "66850080", "295072100108", "s3cret!")

	resp, err := svc.Login(context.Background(), "a@b.com", "s3cret!")
	require.NoError(t, err)

	claims, err := token.NewManager("test-secret", time.Hour).Parse(resp.Token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, id)
	assert.Equal(t, string(models.RoleAdmin), claims.Role)
}

func TestGetUserSelfAccess(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	voter := seedUser(t, repo, models.RoleVoter, "a@b.com", "66850080", "295072100108", "s3cret!")
	other := seedUser(t, repo, models.RoleVoter, "c@d.com", "11111111", "111111111111", "s3cret!")
	admin := seedUser(t, repo, models.RoleAdmin, "e@f.com", "22222222", "222222222222", "s3cret!")

	self, err := svc.GetUser(ctx, voter, voter.ID)
	require.NoError(t, err)
	assert.Equal(t, voter.ID, self.ID)

	_, err = svc.GetUser(ctx, voter, other.ID)
	assertCode(t, err, errors.ErrCodeForbidden)

	got, err := svc.GetUser(ctx, admin, other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.ID)
}

func TestListUsersScopedByRole(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	voter := seedUser(t, repo, models.RoleVoter, "a@b.com", "66850080", "295072100108", "s3cret!")
	seedUser(t, repo, models.RoleVoter, "c@d.com", "11111111", "111111111111", "s3cret!")
	admin := seedUser(t, repo, models.RoleAdmin, "e@f.com", "22222222", "222222222222", "s3cret!")

	own, err := svc.ListUsers(ctx, voter, "")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, voter.ID, own[0].ID)

	all, err := svc.ListUsers(ctx, admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	admins, err := svc.ListUsers(ctx, admin, "Admin")
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, admin.ID, admins[0].ID)

	_, err = svc.ListUsers(ctx, admin, "Overlord")
	assertCode(t, err, errors.ErrCodeValidation)
}

func TestCreateUserDefaultsToVoter(t *testing.T) {
	svc, _, _ := newService(t)

	created, err := svc.CreateUser(context.Background(), &models.CreateUserRequest{
		FirstName: "Jane", LastName: "Doe",
		Email: "A@B.com", Phone: "66850080", IDNumber: "295072100108",
		Password: "s3cret!",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleVoter, created.Role)
	// Email is stored lowercased so lookups are case insensitive.
	assert.Equal(t, "a@b.com", created.Email)
}

func TestCreateUserWithExplicitRole(t *testing.T) {
	svc, _, _ := newService(t)

	created, err := svc.CreateUser(context.Background(), &models.CreateUserRequest{
		FirstName: "Jane", LastName: "Doe",
		Email: "a@b.com", Phone: "66850080", IDNumber: "295072100108",
		Role: "Admin", Password: "s3cret!",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, created.Role)

	_, err = svc.CreateUser(context.Background(), &models.CreateUserRequest{
		FirstName: "Jane", LastName: "Doe",
		Email: "c@d.com", Phone: "11111111", IDNumber: "111111111111",
		Role: "Overlord", Password: "s3cret!",
	}, nil)
	assertCode(t, err, errors.ErrCodeValidation)
}

func TestCreateUserDuplicateConflict(t *testing.T) {
	svc, repo, _ := newService(t)
	seedUser(t, repo, models.RoleVoter, "a@b.com", "66850080", "295072100108", "s3cret!")

	_, err := svc.CreateUser(context.Background(), &models.CreateUserRequest{
		FirstName: "Jane", LastName: "Doe",
		Email: "a@b.com", Phone: "11111111", IDNumber: "111111111111",
		Password: "s3cret!",
	}, nil)
	appErr := assertCode(t, err, errors.ErrCodeConflict)
	assert.Equal(t, "email", appErr.Details["field"])
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	voter := seedUser(t, repo, models.RoleVoter, "a@b.com", "66850080", "295072100108", "old-pass")

	_, err := svc.UpdateUser(ctx, voter, voter.ID, &models.UpdateUserRequest{Password: "new-pass"}, nil)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@b.com", "old-pass")
	assertCode(t, err, errors.ErrCodeUnauthorized)

	_, err = svc.Login(ctx, "a@b.com", "new-pass")
	require.NoError(t, err)
}

func TestUpdateUserLeavesOmittedFields(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	voter := seedUser(t, repo, models.RoleVoter, "a@b.com", "66850080", "295072100108", "s3cret!")

	updated, err := svc.UpdateUser(ctx, voter, voter.ID, &models.UpdateUserRequest{FirstName: "Renamed"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FirstName)
	assert.Equal(t, "a@b.com", updated.Email)
	assert.Equal(t, "66850080", updated.Phone)
}

func TestUpdateUserRoleChange(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	admin := seedUser(t, repo, models.RoleAdmin, "e@f.com", "22222222", "222222222222", "s3cret!")
	voter := seedUser(t, repo, models.RoleVoter, "a@b.com", "66850080", "295072100108", "s3cret!")

	// Only administrators may change roles; a self-update cannot elevate.
	_, err := svc.UpdateUser(ctx, voter, voter.ID, &models.UpdateUserRequest{Role: "Admin"}, nil)
	assertCode(t, err, errors.ErrCodeForbidden)

	promoted, err := svc.UpdateUser(ctx, admin, voter.ID, &models.UpdateUserRequest{Role: "Admin"}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	_, err = svc.UpdateUser(ctx, admin, voter.ID, &models.UpdateUserRequest{Role: "Overlord"}, nil)
	assertCode(t, err, errors.ErrCodeValidation)
}

func TestUpdateUserForbiddenForOtherVoter(t *testing.T) {
	svc, repo, _ := newService(t)
	voter := seedUser(t, repo, models.RoleVoter, "a@b.com", "66850080", "295072100108", "s3cret!")
	other := seedUser(t, repo, models.RoleVoter, "c@d.com", "11111111", "111111111111", "s3cret!")

	_, err := svc.UpdateUser(context.Background(), voter, other.ID, &models.UpdateUserRequest{FirstName: "Hijack"}, nil)
	assertCode(t, err, errors.ErrCodeForbidden)
}

func TestDeleteUser(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	voter := seedUser(t, repo, models.RoleVoter, "a@b.com", "66850080", "295072100108", "s3cret!")

	require.NoError(t, svc.DeleteUser(ctx, voter.ID))
	err := svc.DeleteUser(ctx, voter.ID)
	assertCode(t, err, errors.ErrCodeNotFound)
}

func TestExistenceChecks(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	seedUser(t, repo, models.RoleVoter, "a@b.com", "66850080", "295072100108", "s3cret!")

	for _, tc := range []struct {
		name  string
		check func() (bool, error)
		want  bool
	}{
		{"known email", func() (bool, error) { return svc.EmailExists(ctx, "a@b.com") }, true},
		{"unknown email", func() (bool, error) { return svc.EmailExists(ctx, "x@y.com") }, false},
		{"known phone", func() (bool, error) { return svc.PhoneExists(ctx, "66850080") }, true},
		{"unknown phone", func() (bool, error) { return svc.PhoneExists(ctx, "00000000") }, false},
		{"known id number", func() (bool, error) { return svc.IDNumberExists(ctx, "295072100108") }, true},
		{"unknown id number", func() (bool, error) { return svc.IDNumberExists(ctx, "000000000000") }, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.check()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestContactRelaysToOfficeAddress(t *testing.T) {
	svc, _, mailer := newService(t)

	err := svc.Contact(context.Background(), &models.ContactRequest{
		FirstName: "Jane", LastName: "Doe",
		Email: "a@b.com", Phone: "66850080", IDNumber: "295072100108",
		Message: "Where do I collect my accreditation?",
	})
	require.NoError(t, err)
	require.Len(t, mailer.to, 1)
	assert.Equal(t, "office@example.com", mailer.to[0])
	assert.Contains(t, mailer.body[0], "Where do I collect my accreditation?")
}

func TestContactDeliveryFailure(t *testing.T) {
	svc, _, mailer := newService(t)
	mailer.fail = true

	err := svc.Contact(context.Background(), &models.ContactRequest{
		FirstName: "Jane", LastName: "Doe",
		Email: "a@b.com", Phone: "66850080", IDNumber: "295072100108",
		Message: "hello",
	})
	assertCode(t, err, errors.ErrCodeDelivery)
}
