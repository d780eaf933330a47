package service

import "errors"

var (
	ErrRefreshRejected = errors.New("refresh token rejected")
	ErrWeakPassword    = errors.New("password is too weak")
	ErrWrongPassword   = errors.New("wrong password given")
)
