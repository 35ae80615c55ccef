package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"billing-analytics/internal/model"
)

// storageError оборачивает ошибку драйвера так, чтобы сервисы видели отказ хранилища
func storageError(op string, err error) error {
	return model.NewCollaboratorError("storage", fmt.Errorf("failed to %s: %w", op, err))
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
