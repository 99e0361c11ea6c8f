package models

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
)

func MigrateTable() {
	db := config.GetDB()
	utils.ErrorPanic(db.AutoMigrate(
		&User{},
		&Product{},
		&Item{},
	))
}

// isDuplicateEntry detects MySQL error 1062 so unique-index races
// surface as conflicts instead of generic storage failures.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
