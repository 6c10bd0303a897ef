package storage

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// StaticUserRepo backs basic auth for the memory backend with a single
// credential pair hashed at startup.
type StaticUserRepo struct {
	username string
	hash     []byte
}

func NewStaticUserRepo(username, password string) (*StaticUserRepo, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &StaticUserRepo{username: username, hash: hash}, nil
}

func (r *StaticUserRepo) ValidateUser(_ context.Context, username, password string) (bool, error) {
	if username != r.username {
		return false, nil
	}
	if err := bcrypt.CompareHashAndPassword(r.hash, []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}
