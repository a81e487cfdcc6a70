package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSession = errors.New("no session cookie")

// Claims carry the session id and the cached email string.
type Claims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

type CookieConfig struct {
	Name       string
	Secret     string
	Expiration time.Duration
	Secure     bool
}

func (c CookieConfig) issue(w http.ResponseWriter, sid, email string) error {
	expiration := time.Now().Add(c.Expiration)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: sid,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   email,
		},
	})
	ss, err := token.SignedString([]byte(c.Secret))
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     c.Name,
		Value:    ss,
		Expires:  expiration,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if c.Secure {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}

	http.SetCookie(w, cookie)
	return nil
}

func (c CookieConfig) read(r *http.Request) (*Claims, error) {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return nil, ErrNoSession
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(c.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (c CookieConfig) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
	})
}
