// Package tokens issues and validates the signed access and refresh tokens
// used by the auth service. Both token kinds are HS256 JWTs signed with
// separate secrets, so a refresh token can never pass as an access token.
package tokens

import "github.com/golang-jwt/jwt/v5"

type AccessClaims struct {
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	jwt.RegisteredClaims
}
