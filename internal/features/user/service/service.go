package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"athlete-registry-backend/internal/common/config"
	"athlete-registry-backend/internal/common/errors"
	"athlete-registry-backend/internal/common/password"
	"athlete-registry-backend/internal/common/validation"
	"athlete-registry-backend/internal/features/user/models"
	"athlete-registry-backend/internal/features/user/repository"
	"athlete-registry-backend/internal/platform/mail"
	"athlete-registry-backend/internal/platform/token"
)

type UserService interface {
	// Login authenticates by email or phone. Any failure resolves to one
	// generic unauthorized error so callers cannot enumerate accounts.
	Login(ctx context.Context, identifier, plainPassword string) (*models.LoginResponse, error)

	GetUser(ctx context.Context, actor *models.User, id int64) (*models.UserResponse, error)
	ListUsers(ctx context.Context, actor *models.User, roleFilter string) ([]models.UserResponse, error)
	// CreateUser is the administrator direct-create path; it bypasses the
	// OTP registration flow and may assign any valid role.
	CreateUser(ctx context.Context, req *models.CreateUserRequest, idImage *string) (*models.UserResponse, error)
	UpdateUser(ctx context.Context, actor *models.User, id int64, req *models.UpdateUserRequest, idImage *string) (*models.UserResponse, error)
	DeleteUser(ctx context.Context, id int64) error

	EmailExists(ctx context.Context, email string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
	IDNumberExists(ctx context.Context, idNumber string) (bool, error)

	Contact(ctx context.Context, req *models.ContactRequest) error
}

type userService struct {
	repo   repository.UserRepository
	hasher password.Hasher
	tokens *token.Manager
	mailer mail.Sender
	cfg    *config.Config
}

func NewUserService(repo repository.UserRepository, hasher password.Hasher, tokens *token.Manager, mailer mail.Sender, cfg *config.Config) UserService {
	return &userService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		mailer: mailer,
		cfg:    cfg,
	}
}

func (s *userService) Login(ctx context.Context, identifier, plainPassword string) (*models.LoginResponse, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plainPassword == "" {
		return nil, errors.NewValidationError("email_or_phone", "identifier and password are required")
	}

	// An identifier containing '@' is an email, otherwise a phone number.
	// Emails are stored lowercased, so the lookup lowercases too.
	var user *models.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = s.repo.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.repo.GetByPhone(ctx, identifier)
	}
	if err != nil {
		if stderrors.Is(err, repository.ErrUserNotFound) {
			return nil, invalidCredentials()
		}
		return nil, errors.NewStoreError("login lookup", err)
	}

	if !s.hasher.Verify(user.PasswordHash, plainPassword) {
		return nil, invalidCredentials()
	}

	signed, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "could not issue token")
	}

	return &models.LoginResponse{Token: signed, User: user.ToResponse()}, nil
}

// invalidCredentials is shared by every login failure path; the response
// never reveals which of identifier/password was wrong.
func invalidCredentials() *errors.AppError {
	return errors.NewUnauthorizedError("Invalid email/phone or password")
}

func (s *userService) GetUser(ctx context.Context, actor *models.User, id int64) (*models.UserResponse, error) {
	// Self-access exception: a user may always read their own record.
	if actor.ID != id && !actor.Role.CanManageUsers() {
		return nil, errors.NewForbiddenError("You do not have permission to access this user's data")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.NewNotFoundError("user", id)
		}
		return nil, errors.NewStoreError("get user", err)
	}
	return user.ToResponse(), nil
}

func (s *userService) ListUsers(ctx context.Context, actor *models.User, roleFilter string) ([]models.UserResponse, error) {
	if !actor.Role.CanManageUsers() {
		// Voters see only their own profile.
		self, err := s.repo.GetByID(ctx, actor.ID)
		if err != nil {
			return nil, errors.NewStoreError("list users", err)
		}
		return []models.UserResponse{*self.ToResponse()}, nil
	}

	var role *models.Role
	if roleFilter != "" {
		parsed, err := models.ParseRole(roleFilter)
		if err != nil {
			return nil, errors.NewValidationError("role", err.Error())
		}
		role = &parsed
	}

	users, err := s.repo.List(ctx, role)
	if err != nil {
		return nil, errors.NewStoreError("list users", err)
	}

	responses := make([]models.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *users[i].ToResponse())
	}
	return responses, nil
}

func (s *userService) CreateUser(ctx context.Context, req *models.CreateUserRequest, idImage *string) (*models.UserResponse, error) {
	if err := s.validateIdentity(req.FirstName, req.LastName, req.Email, req.Phone, req.IDNumber, req.Password); err != nil {
		return nil, err
	}

	role := models.DefaultRole
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			return nil, errors.NewValidationError("role", err.Error())
		}
		role = parsed
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "could not hash password")
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		IDNumber:     req.IDNumber,
		Role:         role,
		PasswordHash: hash,
		IDImage:      idImage,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, translateRepoError("create user", err)
	}
	return user.ToResponse(), nil
}

func (s *userService) UpdateUser(ctx context.Context, actor *models.User, id int64, req *models.UpdateUserRequest, idImage *string) (*models.UserResponse, error) {
	if actor.ID != id && !actor.Role.CanManageUsers() {
		return nil, errors.NewForbiddenError("You do not have permission to update this user")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.NewNotFoundError("user", id)
		}
		return nil, errors.NewStoreError("get user", err)
	}

	if req.FirstName != "" {
		if err := validation.ValidateName("first_name", req.FirstName); err != nil {
			return nil, errors.NewValidationError("first_name", err.Error())
		}
		user.FirstName = strings.TrimSpace(req.FirstName)
	}
	if req.LastName != "" {
		if err := validation.ValidateName("last_name", req.LastName); err != nil {
			return nil, errors.NewValidationError("last_name", err.Error())
		}
		user.LastName = strings.TrimSpace(req.LastName)
	}
	if req.Email != "" {
		if err := validation.ValidateEmail(req.Email); err != nil {
			return nil, errors.NewValidationError("email", err.Error())
		}
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Phone != "" {
		if err := validation.ValidateDigits("phone", req.Phone, s.cfg.Registration.PhoneDigits); err != nil {
			return nil, errors.NewValidationError("phone", err.Error())
		}
		user.Phone = req.Phone
	}
	if req.Role != "" {
		// Role assignment stays an administrator capability; a user can
		// never elevate themselves through a self-update.
		if !actor.Role.CanManageUsers() {
			return nil, errors.NewForbiddenError("You do not have permission to change roles")
		}
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			return nil, errors.NewValidationError("role", err.Error())
		}
		user.Role = parsed
	}
	if req.Password != "" {
		if err := validation.ValidatePassword(req.Password); err != nil {
			return nil, errors.NewValidationError("password", err.Error())
		}
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "could not hash password")
		}
		user.PasswordHash = hash
	}
	if idImage != nil {
		user.IDImage = idImage
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, translateRepoError("update user", err)
	}
	return user.ToResponse(), nil
}

func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrUserNotFound) {
			return errors.NewNotFoundError("user", id)
		}
		return errors.NewStoreError("delete user", err)
	}
	return nil
}

func (s *userService) EmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := s.repo.EmailExists(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, errors.NewStoreError("check email", err)
	}
	return exists, nil
}

func (s *userService) PhoneExists(ctx context.Context, phone string) (bool, error) {
	exists, err := s.repo.PhoneExists(ctx, phone)
	if err != nil {
		return false, errors.NewStoreError("check phone", err)
	}
	return exists, nil
}

func (s *userService) IDNumberExists(ctx context.Context, idNumber string) (bool, error) {
	exists, err := s.repo.IDNumberExists(ctx, idNumber)
	if err != nil {
		return false, errors.NewStoreError("check id number", err)
	}
	return exists, nil
}

func (s *userService) Contact(ctx context.Context, req *models.ContactRequest) error {
	if len(req.Message) > validation.MaxMessageLength {
		return errors.NewValidationError("message", fmt.Sprintf("message cannot exceed %d characters", validation.MaxMessageLength))
	}
	to := s.cfg.SMTP.ContactTo
	if to == "" {
		to = s.cfg.SMTP.From
	}

	body := fmt.Sprintf(
		"Contact form submission\n\nName: %s %s\nEmail: %s\nPhone: %s\nID number: %s\n\n%s\n",
		req.FirstName, req.LastName, req.Email, req.Phone, req.IDNumber, req.Message,
	)
	if err := s.mailer.Send(ctx, to, "New contact form message", body); err != nil {
		return errors.NewDeliveryError(err)
	}
	return nil
}

// validateIdentity runs the shared registration field checks.
func (s *userService) validateIdentity(firstName, lastName, email, phone, idNumber, plainPassword string) error {
	if err := validation.ValidateName("first_name", firstName); err != nil {
		return errors.NewValidationError("first_name", err.Error())
	}
	if err := validation.ValidateName("last_name", lastName); err != nil {
		return errors.NewValidationError("last_name", err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return errors.NewValidationError("email", err.Error())
	}
	if err := validation.ValidateDigits("phone", phone, s.cfg.Registration.PhoneDigits); err != nil {
		return errors.NewValidationError("phone", err.Error())
	}
	if err := validation.ValidateDigits("id_number", idNumber, s.cfg.Registration.IDNumberDigits); err != nil {
		return errors.NewValidationError("id_number", err.Error())
	}
	if err := validation.ValidatePassword(plainPassword); err != nil {
		return errors.NewValidationError("password", err.Error())
	}
	return nil
}

// translateRepoError maps repository failures to application errors.
func translateRepoError(operation string, err error) error {
	var dup *repository.DuplicateError
	if stderrors.As(err, &dup) {
		return errors.NewConflictError(dup.Field)
	}
	if stderrors.Is(err, repository.ErrUserNotFound) {
		return errors.New(errors.ErrCodeNotFound, "user not found")
	}
	return errors.NewStoreError(operation, err)
}
