package accounts

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/talaria-id/talaria/core"
	"github.com/talaria-id/talaria/ports"
)

type accountModel struct {
	gorm.Model
	DID      string `gorm:"column:did;uniqueIndex"`
	Nickname string `gorm:"column:nickname"`
	Email    string `gorm:"column:email;index"`
}

func (accountModel) TableName() string {
	return "accounts"
}

// GormDirectory is a gorm-backed implementation of the AccountDirectory
// interface.
type GormDirectory struct {
	db *gorm.DB
}

// OpenSQLite opens (and migrates) the sqlite account database at path.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open account database: %w", err)
	}

	return db, nil
}

// NewGormDirectory creates a new gorm-backed account directory
func NewGormDirectory(db *gorm.DB) (*GormDirectory, error) {
	if err := db.AutoMigrate(&accountModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate accounts table: %w", err)
	}

	return &GormDirectory{db: db}, nil
}

var _ ports.AccountDirectory = (*GormDirectory)(nil)

// FindByDID looks up an account by its DID
func (d *GormDirectory) FindByDID(ctx context.Context, did string) (*core.Account, error) {
	var model accountModel

	err := d.db.WithContext(ctx).Where("did = ?", did).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	return &core.Account{
		DID:      model.DID,
		Nickname: model.Nickname,
		Email:    model.Email,
	}, nil
}

// Create registers a new account. The unique index on did makes the insert
// itself the duplicate check, so concurrent registrations cannot race past
// each other.
func (d *GormDirectory) Create(ctx context.Context, account *core.Account) error {
	model := accountModel{
		DID:      account.DID,
		Nickname: account.Nickname,
		Email:    account.Email,
	}

	if err := d.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return core.ErrAccountExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}
