package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	stderrors "errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"athlete-registry-backend/internal/common/config"
	"athlete-registry-backend/internal/common/errors"
	"athlete-registry-backend/internal/common/logger"
	"athlete-registry-backend/internal/common/password"
	"athlete-registry-backend/internal/common/validation"
	regmodels "athlete-registry-backend/internal/features/registration/models"
	"athlete-registry-backend/internal/features/registration/repository"
	usermodels "athlete-registry-backend/internal/features/user/models"
	userrepo "athlete-registry-backend/internal/features/user/repository"
	"athlete-registry-backend/internal/platform/mail"
)

// RegistrationService drives the two-phase OTP-gated registration flow:
// stage -> verify -> confirm, with expiry and explicit discard as the
// competing terminal transitions.
type RegistrationService interface {
	// Initiate validates the payload, checks uniqueness against confirmed
	// users, stages the registration with a fresh OTP and emails the code.
	// If the email cannot be delivered the staged record is rolled back.
	Initiate(ctx context.Context, req *regmodels.InitiateRequest, idImage *string) (*regmodels.InitiateResponse, error)

	// Verify reports whether the submitted code matches the staged record.
	// It never deletes the record.
	Verify(ctx context.Context, pendingID, code string) (*regmodels.VerifyResult, error)

	// Confirm re-checks the code and promotes the staged record into a
	// permanent user with the least-privileged role, then discards the
	// staging record.
	Confirm(ctx context.Context, pendingID, code string) (*usermodels.UserResponse, error)

	// Discard cancels a staged registration. Idempotent.
	Discard(ctx context.Context, pendingID string) error
}

type registrationService struct {
	pending repository.PendingRepository
	users   userrepo.UserRepository
	hasher  password.Hasher
	mailer  mail.Sender
	cfg     *config.Config
}

func NewRegistrationService(pending repository.PendingRepository, users userrepo.UserRepository, hasher password.Hasher, mailer mail.Sender, cfg *config.Config) RegistrationService {
	return &registrationService{
		pending: pending,
		users:   users,
		hasher:  hasher,
		mailer:  mailer,
		cfg:     cfg,
	}
}

func (s *registrationService) Initiate(ctx context.Context, req *regmodels.InitiateRequest, idImage *string) (*regmodels.InitiateResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Uniqueness is checked per field so the client can surface the exact
	// duplicate. Staged records are not cross-checked against each other;
	// the users table unique indexes arbitrate any race at confirm time.
	if exists, err := s.users.EmailExists(ctx, email); err != nil {
		return nil, errors.NewStoreError("check email", err)
	} else if exists {
		return nil, errors.NewConflictError("email")
	}
	if exists, err := s.users.PhoneExists(ctx, req.Phone); err != nil {
		return nil, errors.NewStoreError("check phone", err)
	} else if exists {
		return nil, errors.NewConflictError("phone")
	}
	if exists, err := s.users.IDNumberExists(ctx, req.IDNumber); err != nil {
		return nil, errors.NewStoreError("check id number", err)
	} else if exists {
		return nil, errors.NewConflictError("id_number")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "could not hash password")
	}

	otp, err := generateOTP(s.cfg.Registration.OTPLength)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "could not generate verification code")
	}

	now := time.Now()
	pending := &regmodels.PendingRegistration{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		Phone:        req.Phone,
		IDNumber:     req.IDNumber,
		PasswordHash: hash,
		IDImage:      idImage,
		OTP:          otp,
		ExpiresAt:    now.Add(s.cfg.Registration.OTPTTL),
		CreatedAt:    now,
	}

	if err := s.pending.Stage(ctx, pending); err != nil {
		return nil, errors.NewStoreError("stage registration", err)
	}

	subject := "Your verification code"
	body := fmt.Sprintf(
		"Hello %s,\n\nYour verification code is %s. It expires in %s.\n\nIf you did not request this, ignore this message.\n",
		pending.FirstName, otp, s.cfg.Registration.OTPTTL,
	)
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		// An unreachable applicant cannot complete the flow; roll the
		// staging back rather than leaving a dead record until expiry.
		if derr := s.pending.Discard(ctx, pending.ID); derr != nil {
			logger.Warn().Str("pending_id", pending.ID).Err(derr).
				Msg("Could not roll back staged registration after mail failure")
		}
		return nil, errors.NewDeliveryError(err)
	}

	logger.Info().Str("pending_id", pending.ID).Msg("Registration staged, verification code sent")
	return &regmodels.InitiateResponse{PendingID: pending.ID}, nil
}

func (s *registrationService) Verify(ctx context.Context, pendingID, code string) (*regmodels.VerifyResult, error) {
	pending, err := s.pending.Get(ctx, pendingID)
	if err != nil {
		if stderrors.Is(err, repository.ErrPendingNotFound) {
			// Absent and expired are indistinguishable once the TTL fires.
			return &regmodels.VerifyResult{Expired: true}, nil
		}
		return nil, errors.NewStoreError("get pending registration", err)
	}
	if pending.Expired(time.Now()) {
		return &regmodels.VerifyResult{Expired: true}, nil
	}

	return &regmodels.VerifyResult{Matched: codeMatches(pending.OTP, code)}, nil
}

func (s *registrationService) Confirm(ctx context.Context, pendingID, code string) (*usermodels.UserResponse, error) {
	pending, err := s.pending.Get(ctx, pendingID)
	if err != nil {
		if stderrors.Is(err, repository.ErrPendingNotFound) {
			return nil, errors.NewNotFoundError("pending registration", pendingID)
		}
		return nil, errors.NewStoreError("get pending registration", err)
	}
	if pending.Expired(time.Now()) {
		return nil, errors.NewNotFoundError("pending registration", pendingID)
	}

	// Confirm is stateless: the code is always re-checked here, so a
	// record whose code was never confirmed can never be promoted.
	if !codeMatches(pending.OTP, code) {
		return nil, errors.NewValidationError("otp", "verification code does not match")
	}

	user := &usermodels.User{
		FirstName:    pending.FirstName,
		LastName:     pending.LastName,
		Email:        pending.Email,
		Phone:        pending.Phone,
		IDNumber:     pending.IDNumber,
		Role:         usermodels.DefaultRole,
		PasswordHash: pending.PasswordHash,
		IDImage:      pending.IDImage,
	}

	if err := s.users.Create(ctx, user); err != nil {
		var dup *userrepo.DuplicateError
		if stderrors.As(err, &dup) {
			// Lost a finalize race; surface as a normal conflict.
			return nil, errors.NewConflictError(dup.Field)
		}
		return nil, errors.NewStoreError("create user", err)
	}

	// Best effort: a leftover staging record after successful promotion is
	// harmless, since re-registration now fails the uniqueness check.
	if err := s.pending.Discard(ctx, pendingID); err != nil {
		logger.Warn().Str("pending_id", pendingID).Err(err).
			Msg("Could not discard staging record after promotion")
	}

	logger.Info().Int64("user_id", user.ID).Msg("Registration confirmed")
	return user.ToResponse(), nil
}

func (s *registrationService) Discard(ctx context.Context, pendingID string) error {
	if err := s.pending.Discard(ctx, pendingID); err != nil {
		return errors.NewStoreError("discard pending registration", err)
	}
	return nil
}

func (s *registrationService) validate(req *regmodels.InitiateRequest) error {
	if err := validation.ValidateName("first_name", req.FirstName); err != nil {
		return errors.NewValidationError("first_name", err.Error())
	}
	if err := validation.ValidateName("last_name", req.LastName); err != nil {
		return errors.NewValidationError("last_name", err.Error())
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return errors.NewValidationError("email", err.Error())
	}
	if err := validation.ValidateDigits("phone", req.Phone, s.cfg.Registration.PhoneDigits); err != nil {
		return errors.NewValidationError("phone", err.Error())
	}
	if err := validation.ValidateDigits("id_number", req.IDNumber, s.cfg.Registration.IDNumberDigits); err != nil {
		return errors.NewValidationError("id_number", err.Error())
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return errors.NewValidationError("password", err.Error())
	}
	return nil
}

// codeMatches compares codes in constant time. Codes are numeric strings;
// matching is exact, never partial.
func codeMatches(stored, submitted string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}

// generateOTP draws each digit from crypto/rand so codes are unpredictable.
// Leading zeros are valid.
func generateOTP(length int) (string, error) {
	const digits = "0123456789"
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		buf[i] = digits[n.Int64()]
	}
	return string(buf), nil
}
