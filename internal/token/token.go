// Package token 负责签发和校验携带用户身份与角色的 JWT。
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/worksync-dev/worksync/backend/internal/domain"
)

// ErrInvalidToken 不区分具体原因，避免向调用方泄露校验细节
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Role           string `json:"role"`
	SessionVersion int64  `json:"sv"`
	SuperAdmin     bool   `json:"sup,omitempty"`
	jwt.RegisteredClaims
}

type Service struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewService 中 expiration 为 0 时签发的令牌不带 exp
func NewService(secret string, expiration time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

func (s *Service) Issue(identity domain.Identity, sessionVersion int64) (string, error) {
	now := s.now()

	claims := Claims{
		Role:           string(identity.Role),
		SessionVersion: sessionVersion,
		SuperAdmin:     identity.SuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(identity.UserID, 10),
		},
	}
	if s.expiration > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.expiration))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) Verify(tokenString string) (domain.Identity, int64, error) {
	if tokenString == "" {
		return domain.Identity{}, 0, ErrInvalidToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return domain.Identity{}, 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return domain.Identity{}, 0, ErrInvalidToken
	}

	role := domain.Role(claims.Role)
	if role != domain.RoleAdmin && role != domain.RoleEmployee {
		return domain.Identity{}, 0, ErrInvalidToken
	}

	identity := domain.Identity{
		UserID:     userID,
		Role:       role,
		SuperAdmin: claims.SuperAdmin && role == domain.RoleAdmin,
	}
	return identity, claims.SessionVersion, nil
}
