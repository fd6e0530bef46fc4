package model

import "github.com/golang-jwt/jwt/v5"

type Claims struct {
	UserHash string `json:"userHash"`
	jwt.RegisteredClaims
}

type StoredToken struct {
	AccessToken string `json:"access_token"`
}
