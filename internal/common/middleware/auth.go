package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"

	"athlete-registry-backend/internal/common/errors"
	"athlete-registry-backend/internal/features/user/models"
	"athlete-registry-backend/internal/features/user/repository"
	"athlete-registry-backend/internal/platform/token"
)

const userContextKey = "current_user"

// Protect verifies the bearer token and resolves the embedded subject to a
// live user. A deleted user's still-unexpired token is rejected here, which
// is why the gate performs a lookup instead of trusting the signature alone.
func Protect(users repository.UserRepository, tokens *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			Abort(c, errors.NewUnauthorizedError("Not authorized to access this route"))
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			Abort(c, errors.NewUnauthorizedError("Not authorized to access this route"))
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			Abort(c, errors.NewUnauthorizedError("Not authorized to access this route"))
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if stderrors.Is(err, repository.ErrUserNotFound) {
				Abort(c, errors.NewUnauthorizedError("Not authorized to access this route"))
				return
			}
			Abort(c, errors.NewStoreError("resolve token subject", err))
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RestrictTo rejects requests whose resolved role is outside the allowed set.
// Must run after Protect.
func RestrictTo(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			Abort(c, errors.NewUnauthorizedError("Not authorized to access this route"))
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		Abort(c, errors.NewForbiddenError("You do not have permission to perform this action"))
	}
}

// CurrentUser returns the user resolved by Protect.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
