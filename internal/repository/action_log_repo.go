package repository

import (
	"go-stocktrack/internal/model"

	"gorm.io/gorm"
)

// ActionLogRepository is the audit sink. Write-only from the services' point of view;
// FindRecent exists for the dashboard.
type ActionLogRepository interface {
	Create(tx *gorm.DB, entry *model.ActionLog) error
	FindRecent(n int) ([]model.ActionLog, error)
}

type actionLogRepo struct {
	db *gorm.DB
}

func NewActionLogRepo(db *gorm.DB) ActionLogRepository {
	return &actionLogRepo{db}
}

func (r *actionLogRepo) Create(tx *gorm.DB, entry *model.ActionLog) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(entry).Error
}

func (r *actionLogRepo) FindRecent(n int) ([]model.ActionLog, error) {
	var entries []model.ActionLog
	err := r.db.Preload("User").Order("logged_at DESC").Limit(n).Find(&entries).Error
	return entries, err
}
