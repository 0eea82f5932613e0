package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TrackingTTL is how long a guest can follow an order from the link handed out at checkout.
const TrackingTTL = 30 * 24 * time.Hour

type TrackingClaims struct {
	OrderNumber string `json:"order_number"`
	jwt.RegisteredClaims
}

func SignTracking(orderID uuid.UUID, orderNumber string, secret []byte, now time.Time) (string, time.Time, error) {
	if len(secret) == 0 {
		return "", time.Time{}, errors.New("tracking secret is empty")
	}
	exp := now.Add(TrackingTTL)
	claims := TrackingClaims{
		OrderNumber: orderNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   orderID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func TrackingClaimsFromToken(tokenStr string, secret []byte) (*TrackingClaims, error) {
	var claims TrackingClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid tracking token")
	}
	return &claims, nil
}

func (c *TrackingClaims) OrderID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}
