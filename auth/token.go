package auth

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
)

var ErrNoToken = errors.New("no token provided")

// CreateToken mints a JWT whose subject is the (lowercased) wallet address.
func CreateToken(wallet string) (string, error) {
	claims := jwt.MapClaims{}
	claims["authorized"] = true
	claims["wallet"] = strings.ToLower(wallet)
	claims["exp"] = time.Now().Add(time.Hour * 24).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("API_SECRET")))
}

// ExtractTokenWallet returns the wallet address carried by the request's
// bearer token.
func ExtractTokenWallet(r *http.Request) (string, error) {
	tokenString := ExtractToken(r)
	if tokenString == "" {
		return "", ErrNoToken
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(os.Getenv("API_SECRET")), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	wallet, ok := claims["wallet"].(string)
	if !ok || wallet == "" {
		return "", errors.New("token carries no wallet")
	}
	return strings.ToLower(wallet), nil
}

// ExtractToken pulls the raw token from the query string or the
// Authorization header. The query form exists for EventSource clients, which
// cannot set headers.
func ExtractToken(r *http.Request) string {
	keys := r.URL.Query()
	token := keys.Get("token")
	if token != "" {
		return token
	}
	bearerToken := r.Header.Get("Authorization")
	if len(strings.Split(bearerToken, " ")) == 2 {
		return strings.Split(bearerToken, " ")[1]
	}
	return ""
}

// TokenValid reports an error when the request carries no valid token.
func TokenValid(r *http.Request) error {
	_, err := ExtractTokenWallet(r)
	return err
}
