package payment

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const callbackTokenIssuer = "mock-gateway"

// SignCallbackToken mints the provider confirmation token for a payment. The
// mock gateway is the only signer; a real integration would verify the
// provider's own signature scheme instead.
func SignCallbackToken(secret, paymentID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    callbackTokenIssuer,
		Subject:   paymentID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyCallbackToken checks the signature and returns the payment id the
// token was minted for.
func VerifyCallbackToken(secret, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(callbackTokenIssuer))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid callback token claims")
	}

	return claims.Subject, nil
}
