package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/flowyn/flowyn-core/internal/config"
	"github.com/flowyn/flowyn-core/internal/models"
	"github.com/flowyn/flowyn-core/interfaces"
)

type Repositories struct {
	AccountRepository  interfaces.AccountRepository
	SnapshotRepository interfaces.SnapshotRepository
}

func InitRepositories(flowynDB *gorm.DB) *Repositories {
	return &Repositories{
		AccountRepository:  NewAccountRepository(flowynDB),
		SnapshotRepository: NewSnapshotRepository(flowynDB),
	}
}

func MigrateDB(dbConfig *config.DatabaseConfig, flowynDB *gorm.DB) error {
	db, err := flowynDB.DB()
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(5)

	err = flowynDB.AutoMigrate(
		&models.Account{},
		&models.Snapshot{},
	)

	db.SetMaxIdleConns(dbConfig.MaxIdleConn)
	db.SetMaxOpenConns(dbConfig.MaxConn)
	db.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Minute)

	return err
}
