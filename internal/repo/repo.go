package repo

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrUserAlreadyExist = errors.New("user already exist")
	ErrQuantityLimit    = errors.New("cart line quantity limit reached")
)

type GormRepo struct {
	DB *gorm.DB
}

// isUniqueViolation recognises duplicate-key errors from Postgres (lib/pq) and SQLite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isCheckViolation recognises CHECK constraint failures from Postgres (lib/pq) and SQLite.
func isCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "check_violation"
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}
