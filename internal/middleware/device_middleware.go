package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"storefront/internal/identity"
)

const (
	deviceIDLocal = "device_id"

	// cookieMaxAge keeps the identity cookie for as long as browsers allow.
	cookieMaxAge = 400 * 24 * time.Hour
)

// CookieStore is an identity.Store backed by the request and response
// cookies of a single Fiber request.
type CookieStore struct {
	c      *fiber.Ctx
	secure bool
}

// NewCookieStore wraps c as an identity.Store.
func NewCookieStore(c *fiber.Ctx, secure bool) *CookieStore {
	return &CookieStore{c: c, secure: secure}
}

// Get returns the cookie value sent by the client. The value is copied so it
// outlives the request.
func (s *CookieStore) Get(key string) (string, error) {
	return utils.CopyString(s.c.Cookies(key)), nil
}

// Set sends the value back as a persistent cookie.
func (s *CookieStore) Set(key, value string) error {
	s.c.Cookie(&fiber.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(cookieMaxAge),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// DeviceIdentity is a Fiber middleware resolving the device identity of the
// caller, issuing a new one on first visit. Requests for which no identity
// can be established continue with an empty id.
func DeviceIdentity(gen identity.IDGenerator, cookieName string, secure bool, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provider := identity.NewProvider(NewCookieStore(c, secure), gen, cookieName)

		deviceID, err := provider.GetOrCreate()
		if err != nil {
			logger.Warn("Device identity unavailable, cart operations disabled", zap.Error(err))
			deviceID = ""
		}

		c.Locals(deviceIDLocal, deviceID)
		return c.Next()
	}
}

// DeviceID returns the identity resolved by DeviceIdentity, or "".
func DeviceID(c *fiber.Ctx) string {
	id, _ := c.Locals(deviceIDLocal).(string)
	return id
}
