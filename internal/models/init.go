package models

import (
	"github.com/caja-pos/internal/constants"
	"github.com/caja-pos/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultOperator 初始化默认操作员账号
func InitDefaultOperator(username, password string) error {
	var count int64
	DB.Model(&Operator{}).Count(&count)
	if count > 0 {
		return nil
	}

	if username == "" {
		username = constants.DefaultOperatorUsername
	}
	if password == "" {
		password = constants.DefaultOperatorPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	operator := Operator{
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  username,
		IsActive:     true,
	}
	if err := DB.Create(&operator).Error; err != nil {
		return err
	}

	if password == constants.DefaultOperatorPassword {
		logger.Warnw("default_operator_created_with_default_password", "username", username)
		logger.Warnw("default_operator_password_change_required", "username", username)
	} else {
		logger.Warnw("default_operator_created", "username", username, "password_hidden", true)
	}
	return nil
}
