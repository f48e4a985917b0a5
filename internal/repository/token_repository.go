package repository

import (
	"errors"
	"time"

	"github.com/gorillaworkout/dupoin-sheet-converter/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRepository Xero 令牌仓储接口
type TokenRepository interface {
	Save(token *model.XeroTokenModel) error
	Load() (*model.XeroTokenModel, error)
}

// tokenRepository Xero 令牌仓储实现
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository 创建令牌仓储
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

// Save 写入单行令牌(id=1,存在则覆盖)
func (r *tokenRepository) Save(token *model.XeroTokenModel) error {
	if err := token.Validate(); err != nil {
		return err
	}

	token.ID = model.XeroTokenSingletonID
	token.UpdatedAt = time.Now()

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(token).Error
}

// Load 读取令牌,不存在返回 nil
func (r *tokenRepository) Load() (*model.XeroTokenModel, error) {
	var token model.XeroTokenModel
	err := r.db.Where("id = ?", model.XeroTokenSingletonID).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}
