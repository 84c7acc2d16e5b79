package oidcauth

import (
	"errors"
)

var (
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrNilParameter        = errors.New("nil parameter")
	ErrInvalidCACert       = errors.New("invalid CA certificate")
	ErrTokenGeneration     = errors.New("token generation failed")
	ErrMissingIDToken      = errors.New("id_token is missing")
	ErrIDTokenVerification = errors.New("id_token verification failed")
	ErrInvalidAudience     = errors.New("invalid audience")
	ErrLoginFailed         = errors.New("login failed")
	ErrInvalidState        = errors.New("invalid state parameter")
	ErrMissingAuthCode     = errors.New("authorization code is missing")
	ErrSessionFromURL      = errors.New("session id must be carried by a cookie")
	ErrResponseWrite       = errors.New("unable to write authentication response")
)
