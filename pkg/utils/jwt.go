package utils

import (
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
)

func ExtractTokenUser(c echo.Context) (uint64, string) {
	user, ok := c.Get("user").(*jwt.Token)
	if !ok || !user.Valid {
		return 0, ""
	}

	claims, ok := user.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ""
	}

	userID, _ := claims["userID"].(float64)
	name, _ := claims["name"].(string)

	return uint64(userID), name
}
