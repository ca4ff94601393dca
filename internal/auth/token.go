// Package auth はIdPが発行したベアラートークンの検証を提供する。
// トークンの発行はIdP側の責務であり、本システムは検証のみを行う。
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/taskhub/internal/model"
)

var (
	// ErrInvalidToken はトークンが不正な場合に返される。
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken はトークンの有効期限が切れている場合に返される。
	ErrExpiredToken = errors.New("token has expired")
)

// Claims はIdPが発行するトークンのクレームを表す。
// subは認証主体のユーザーID、groupsは所属グループ（ロール）の配列。
type Claims struct {
	Username string   `json:"username"`
	Groups   []string `json:"groups"`
	jwt.RegisteredClaims
}

// TokenVerifier はHMAC署名付きベアラートークンを検証する。
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier はTokenVerifierを生成する。
// secretはIdPと共有する署名鍵を指定する。
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify はトークン文字列を検証し、認証主体を返す。
// 署名方式がHMAC以外、期限切れ、subクレーム欠落の場合はエラーを返す。
func (v *TokenVerifier) Verify(tokenString string) (*model.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &model.Principal{
		UserID:   claims.Subject,
		Username: claims.Username,
		Groups:   claims.Groups,
	}, nil
}

// SignForTest はテスト用にトークンを発行する。
// 本番のトークン発行はIdP側で行われるため、プロダクションコードからは使用しないこと。
func SignForTest(secret, userID, username string, groups []string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		Groups:   groups,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
