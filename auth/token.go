package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"storefront/apperr"
)

const DefaultTokenTTL = 24 * time.Hour

var ErrInvalidToken = apperr.New(apperr.Unauthorized, "invalid or expired token")

type Claims struct {
	UserID uint
	ID     string
	Expiry time.Time
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// 生成JWT Token
func (t *Tokens) Issue(userID uint) (string, Claims, error) {
	now := t.now()
	claims := Claims{
		UserID: userID,
		ID:     uuid.NewString(),
		Expiry: now.Add(t.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ID:        claims.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(claims.Expiry),
	})

	tokenString, err := token.SignedString(t.secret)
	if err != nil {
		return "", Claims{}, err
	}
	return tokenString, claims, nil
}

// 驗證JWT Token並回傳Claims，任何錯誤都只回傳ErrInvalidToken
func (t *Tokens) Validate(tokenString string) (Claims, error) {
	if tokenString == "" {
		return Claims{}, ErrInvalidToken
	}

	var registered jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &registered, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err == nil && !token.Valid {
		err = jwt.ErrTokenSignatureInvalid
	}
	if err != nil {
		return Claims{}, apperr.Wrap(apperr.Unauthorized, "invalid or expired token", err)
	}

	userID, err := strconv.ParseUint(registered.Subject, 10, 64)
	if err != nil || registered.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		UserID: uint(userID),
		ID:     registered.ID,
		Expiry: registered.ExpiresAt.Time,
	}, nil
}
