// README: Bearer-token verification; yields the acting (user, role, department) triple.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims is the verified identity triple the rest of the system trusts.
type Claims struct {
	UserID       string
	Role         string
	DepartmentID string
}

type Service struct {
	secret   []byte
	tokenExp time.Duration
}

func NewService(secret string, tokenExp time.Duration) *Service {
	return &Service{secret: []byte(secret), tokenExp: tokenExp}
}

// GenerateToken mints a signed token for a user. Token issuance flows live
// outside this service; this exists for tooling and tests.
func (s *Service) GenerateToken(userID, role, departmentID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":       userID,
		"role":          role,
		"department_id": departmentID,
		"exp":           now.Add(s.tokenExp).Unix(),
		"iat":           now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken validates a raw bearer token and extracts the identity triple.
func (s *Service) VerifyToken(raw string) (*Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	c := &Claims{}
	if v, ok := mc["user_id"].(string); ok {
		c.UserID = v
	}
	if v, ok := mc["role"].(string); ok {
		c.Role = v
	}
	if v, ok := mc["department_id"].(string); ok {
		c.DepartmentID = v
	}
	if c.UserID == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}
