package model

import (
	"errors"
	"time"
)

// XeroTokenSingletonID 令牌表只保留一行
const XeroTokenSingletonID = 1

// XeroTokenModel Xero 令牌数据模型(单行,id=1)
type XeroTokenModel struct {
	ID           int       `gorm:"primaryKey"`
	AccessToken  string    `gorm:"type:text;not null"`
	RefreshToken string    `gorm:"type:text;not null"`
	ExpiresAt    time.Time `gorm:"not null"`
	TenantID     string    `gorm:"type:varchar(64)"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName 指定表名
func (XeroTokenModel) TableName() string {
	return "xero_tokens"
}

// Validate 验证令牌模型
func (m *XeroTokenModel) Validate() error {
	if m.AccessToken == "" {
		return errors.New("access token is required")
	}
	if m.RefreshToken == "" {
		return errors.New("refresh token is required")
	}
	return nil
}
