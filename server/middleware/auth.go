package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Auth modes.
const (
	// AuthModeNone disables authentication.
	AuthModeNone = "none"
	// AuthModeKey checks the presented credential against configured
	// API keys (plain or bcrypt-hashed).
	AuthModeKey = "key"
	// AuthModeJWT validates an HS256-signed bearer token.
	AuthModeJWT = "jwt"
)

// AuthConfig configures the gateway authentication middleware.
type AuthConfig struct {
	Mode string `yaml:"mode" mapstructure:"mode"`

	// APIKeys are accepted plaintext keys (key mode).
	APIKeys []string `yaml:"api_keys" mapstructure:"api_keys"`

	// HashedKeys are accepted bcrypt hashes of keys (key mode). Hashes
	// keep the plaintext out of config files.
	HashedKeys []string `yaml:"hashed_keys" mapstructure:"hashed_keys"`

	// JWTSecret is the HMAC secret for jwt mode.
	JWTSecret string `yaml:"jwt_secret" mapstructure:"jwt_secret"`

	// SkipPaths are URL path prefixes that bypass authentication.
	SkipPaths []string `yaml:"skip_paths" mapstructure:"skip_paths"`
}

// Validate checks the auth configuration.
func (c *AuthConfig) Validate() error {
	switch c.Mode {
	case "", AuthModeNone:
		return nil
	case AuthModeKey:
		if len(c.APIKeys) == 0 && len(c.HashedKeys) == 0 {
			return fmt.Errorf("auth.mode %q requires api_keys or hashed_keys", c.Mode)
		}
		return nil
	case AuthModeJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("auth.mode %q requires jwt_secret", c.Mode)
		}
		return nil
	default:
		return fmt.Errorf("auth.mode must be one of [none, key, jwt] (got: %q)", c.Mode)
	}
}

// Auth returns a Gin middleware enforcing the configured mode. The
// credential is read from "Authorization: Bearer <key>" or the
// X-API-Key header.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Mode == "" || cfg.Mode == AuthModeNone {
			c.Next()
			return
		}
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if strings.HasPrefix(path, skip) {
				c.Next()
				return
			}
		}

		credential := extractCredential(c)
		if credential == "" {
			unauthorized(c, "Missing credentials")
			return
		}

		switch cfg.Mode {
		case AuthModeKey:
			if !keyAccepted(credential, cfg) {
				unauthorized(c, "Invalid API key")
				return
			}
		case AuthModeJWT:
			claims, err := validateJWT(credential, cfg.JWTSecret)
			if err != nil {
				unauthorized(c, "Invalid token")
				return
			}
			if sub, err := claims.GetSubject(); err == nil && sub != "" {
				c.Set("user_id", sub)
			}
		}
		c.Next()
	}
}

func extractCredential(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return c.GetHeader("X-API-Key")
}

func keyAccepted(credential string, cfg AuthConfig) bool {
	for _, key := range cfg.APIKeys {
		if subtle.ConstantTimeCompare([]byte(credential), []byte(key)) == 1 {
			return true
		}
	}
	for _, hash := range cfg.HashedKeys {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(credential)) == nil {
			return true
		}
	}
	return false
}

func validateJWT(token, secret string) (jwt.Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return parsed.Claims, nil
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
