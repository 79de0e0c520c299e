package middleware

import (
	"fmt"
	"strings"

	"github.com/clickcart/storefront/payment-service/pkg/errs"
	"github.com/clickcart/storefront/payment-service/pkg/response"
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
)

// ValidateJWT guards merchant-facing endpoints. The notification endpoint
// must not sit behind this: the gateway authenticates itself with the
// payload signature, not a bearer token.
func ValidateJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == "" || tokenString == authHeader {
				return response.WriteErrorResponse(c, errs.ErrNotLoggedIn, nil)
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				return response.WriteErrorResponse(c, errs.ErrNotLoggedIn, nil)
			}

			c.Set("user", token)

			return next(c)
		}
	}
}
