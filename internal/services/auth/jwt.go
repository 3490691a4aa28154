package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/Mohzhal/absensi/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

type JWTService struct {
	secretKey []byte
	redis     *redis.Client
}

func NewJWTService(secretKey string, redisClient *redis.Client) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		redis:     redisClient,
	}
}

// GenerateToken mints an access token plus an opaque refresh token parked
// in redis under the user id.
func (s *JWTService) GenerateToken(userID int, nik string, role models.Role) (string, string, error) {
	claims := jwt.MapClaims{
		"user_id": strconv.Itoa(userID),
		"nik":     nik,
		"role":    string(role),
		"exp":     time.Now().Add(accessTokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %v", err)
	}

	refreshToken, err := s.issueRefreshToken(userID)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *JWTService) issueRefreshToken(userID int) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %v", err)
	}
	token := hex.EncodeToString(buf)

	key := "refresh:" + token
	if err := s.redis.Set(context.Background(), key, userID, refreshTokenTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %v", err)
	}
	return token, nil
}

// ValidateRefreshToken resolves a refresh token back to its user id.
func (s *JWTService) ValidateRefreshToken(token string) (int, error) {
	val, err := s.redis.Get(context.Background(), "refresh:"+token).Int()
	if err != nil {
		return 0, fmt.Errorf("refresh token not found or expired")
	}
	return val, nil
}

// RevokeRefreshToken drops the token at logout.
func (s *JWTService) RevokeRefreshToken(token string) error {
	return s.redis.Del(context.Background(), "refresh:"+token).Err()
}
