package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrTokenNotFound       = errors.New("token not found")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrDuplicateAssignment = errors.New("permission already assigned to role")
)

type Repo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Repo {
	return &Repo{DB: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
