package app

import (
	"time"

	"github.com/hazemkhaled/digimarket/internal/auth"
)

const (
	defaultLockoutThreshold = 5
	defaultLockoutDuration  = 15 * time.Minute
	defaultRefreshLength    = 48
	defaultResetCodeTTL     = time.Hour
)

// JWTServiceConfig builds the JWT service settings, applying defaults when unset.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	cfg := auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: c.JWT.TTL,
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = auth.DefaultAccessTokenTTL
	}
	return cfg
}

// SessionServiceConfig builds the session service settings, applying defaults when unset.
func (c AuthConfig) SessionServiceConfig() auth.SessionConfig {
	cfg := auth.SessionConfig{
		RefreshTokenTTL: c.Session.RefreshTTL,
		RefreshLength:   c.Session.RefreshLength,
	}
	if cfg.RefreshTokenTTL <= 0 {
		cfg.RefreshTokenTTL = auth.DefaultRefreshTokenTTL
	}
	if cfg.RefreshLength <= 0 {
		cfg.RefreshLength = defaultRefreshLength
	}
	return cfg
}

// LocalAuthConfig builds the password authenticator settings, applying defaults when unset.
func (c AuthConfig) LocalAuthConfig() auth.LocalConfig {
	cfg := auth.LocalConfig{
		LockoutThreshold: c.Local.LockoutThreshold,
		LockoutDuration:  c.Local.LockoutDuration,
	}
	if cfg.LockoutThreshold <= 0 {
		cfg.LockoutThreshold = defaultLockoutThreshold
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = defaultLockoutDuration
	}
	return cfg
}

// ResetCodeTTL returns the configured reset code lifetime, applying the default when unset.
func (c AuthConfig) ResetCodeTTL() time.Duration {
	if c.Reset.CodeTTL <= 0 {
		return defaultResetCodeTTL
	}
	return c.Reset.CodeTTL
}
