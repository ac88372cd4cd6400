package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/epiwatch/surveillance/pkg/common/logger"
	"github.com/epiwatch/surveillance/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Repository stores a local trail of admin mutations, independent of
// whatever history the external platform keeps.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type auditModel struct {
	ID        int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Actor     string         `gorm:"column:actor"`
	Action    string         `gorm:"column:action;index"`
	Entity    string         `gorm:"column:entity"`
	EntityID  string         `gorm:"column:entity_id;index"`
	Payload   datatypes.JSON `gorm:"column:payload"`
	CreatedAt time.Time      `gorm:"column:created_at"`
}

func (auditModel) TableName() string { return "audit_logs" }

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&auditModel{})
}

// Append records one admin action. Callers treat it as best-effort; a lost
// audit row never fails the action it describes.
func (r *Repository) Append(ctx context.Context, entry models.AuditLog) error {
	if entry.Actor == "" {
		entry.Actor = "system"
	}
	payload := datatypes.JSON([]byte("{}"))
	if entry.Payload != nil {
		if data, err := json.Marshal(entry.Payload); err == nil {
			payload = datatypes.JSON(data)
		}
	}
	row := auditModel{
		Actor:     entry.Actor,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		logger.Log.WithError(err).Warn("failed to append audit log")
		return err
	}
	return nil
}

func (r *Repository) List(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []auditModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]models.AuditLog, 0, len(rows))
	for _, row := range rows {
		payload := map[string]interface{}{}
		if len(row.Payload) > 0 {
			if err := json.Unmarshal(row.Payload, &payload); err != nil {
				payload = map[string]interface{}{"raw": string(row.Payload)}
			}
		}
		out = append(out, models.AuditLog{
			ID:        row.ID,
			Actor:     row.Actor,
			Action:    row.Action,
			Entity:    row.Entity,
			EntityID:  row.EntityID,
			Payload:   payload,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}
