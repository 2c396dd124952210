package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionSettle AuditAction = "settle"
	AuditActionAdjust AuditAction = "adjust"
)

// AuditLog: rastro de operaciones sensibles (asignar, rendir, corregir, pagar).
// Solo lectura desde la API; nunca se edita ni se revierte — el historial
// rendido es inmutable por diseño.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID   uint   `json:"user_id"`
	UserName string `gorm:"size:100" json:"user_name"`

	EntityType  string      `gorm:"size:50;index" json:"entity_type"` // "assignment", "settlement", ...
	EntityID    uint        `gorm:"index" json:"entity_id"`
	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:500" json:"description"`

	// Snapshots JSON del estado antes/después (jsonb en Postgres)
	BeforeData string `gorm:"type:jsonb;default:'null'" json:"before_data"`
	AfterData  string `gorm:"type:jsonb;default:'null'" json:"after_data"`
}
