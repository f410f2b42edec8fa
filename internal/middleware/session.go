package middleware

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"yatube/internal/config"
	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "sessionid"

// LoginPath is where anonymous callers are sent by LoginRequired.
const LoginPath = "/auth/login"

const (
	localUserID = "userID"
	localUser   = "user"
)

var errInvalidSession = errors.New("invalid session token")

// UserLoader resolves the caller behind a session.
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// SessionManager issues and validates cookie sessions signed with HS256.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSessionManager builds a SessionManager from the application config.
func NewSessionManager(cfg *config.Config) *SessionManager {
	return &SessionManager{
		secret: []byte(cfg.SessionSecret),
		ttl:    cfg.SessionTTL(),
		secure: cfg.IsProduction(),
	}
}

// Sign returns a session token for the user.
func (m *SessionManager) Sign(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates a session token and returns the user ID it carries.
func (m *SessionManager) Parse(token string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidSession
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, errInvalidSession
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return 0, errInvalidSession
	}
	return uint(userID), nil
}

// Login sets the session cookie for the user.
func (m *SessionManager) Login(c *fiber.Ctx, userID uint) error {
	token, err := m.Sign(userID)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(m.ttl),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// Logout expires the session cookie.
func (m *SessionManager) Logout(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Identify resolves the caller from the session cookie. Requests without a
// valid session continue anonymously.
func (m *SessionManager) Identify(users UserLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookieName)
		if token == "" {
			return c.Next()
		}

		userID, err := m.Parse(token)
		if err != nil {
			m.Logout(c)
			return c.Next()
		}

		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil {
			if !models.IsNotFound(err) {
				return err
			}
			m.Logout(c)
			return c.Next()
		}

		c.Locals(localUserID, user.ID)
		c.Locals(localUser, user)
		return c.Next()
	}
}

// CurrentUser returns the caller resolved by Identify, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

// LoginRequired redirects anonymous callers to the login page, remembering where they were headed.
func LoginRequired(c *fiber.Ctx) error {
	if CurrentUser(c) != nil {
		return c.Next()
	}
	return c.Redirect(LoginURL(c.OriginalURL()), fiber.StatusFound)
}

// LoginURL builds the login address with the return path in "next".
func LoginURL(next string) string {
	return LoginPath + "?next=" + url.QueryEscape(next)
}
