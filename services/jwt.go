package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/studypool/studypool_api/dto"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alphabatem/common/context"
)

type JWTService struct {
	context.DefaultService

	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	jwtSecretKey         string
}

type CustomClaims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"` // access or refresh
	jwt.RegisteredClaims
}

const JWT_SVC = "jwt_svc"

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

func (svc JWTService) Id() string {
	return JWT_SVC
}

func (svc *JWTService) Configure(ctx *context.Context) error {
	svc.AccessTokenDuration = 24 * time.Hour
	svc.RefreshTokenDuration = 7 * 24 * time.Hour

	svc.jwtSecretKey = os.Getenv("JWT_SECRET")
	if svc.jwtSecretKey == "" {
		return errors.New("JWT_SECRET is not set")
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *JWTService) Start() error {
	return nil
}

// VerifyToken parses and validates a signed token and returns its claims.
// Callers decide whether the token type fits the operation.
func (svc *JWTService) VerifyToken(jwtToken string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(jwtToken, &CustomClaims{}, svc.getJWTKey)
	if err == nil && token.Valid {
		claims, ok := token.Claims.(*CustomClaims)
		if ok && claims != nil {
			expTime, err := claims.GetExpirationTime()
			if err != nil {
				return nil, fmt.Errorf("failed to get expiration time: %v", err)
			}
			now := jwt.NewNumericDate(time.Now())
			if expTime.Unix() < now.Unix() {
				return nil, errors.New("token has expired")
			}

			return claims, nil
		}
	}

	return nil, errors.New("unsupported JWT format")
}

func (svc *JWTService) getJWTKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	return []byte(svc.jwtSecretKey), nil
}

func (svc *JWTService) GenerateTokenPair(userID, role string) (*dto.TokenPair, error) {
	accessToken, err := svc.toJWT(userID, role, TokenTypeAccess, svc.AccessTokenDuration)
	if err != nil {
		return nil, err
	}

	refreshToken, err := svc.toJWT(userID, role, TokenTypeRefresh, svc.RefreshTokenDuration)
	if err != nil {
		return nil, err
	}

	return &dto.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(svc.AccessTokenDuration.Seconds()),
	}, nil
}

func (svc *JWTService) toJWT(userID, role, tokenType string, ttl time.Duration) (string, error) {
	expTime := time.Now().Add(ttl)

	claims := &CustomClaims{
		UserID:    userID,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "studypool",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(svc.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}

	return tokenString, nil
}

func (svc *JWTService) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return "", errors.New("invalid authorization header format")
	}

	return authHeader[7:], nil
}
