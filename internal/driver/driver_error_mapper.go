package driver

import (
	"errors"
	"strings"

	drivererrors "go-courier/internal/driver/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return drivererrors.ErrDriverNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "phone") {
			return drivererrors.ErrPhoneAlreadyUsed
		}
	}

	return err
}
