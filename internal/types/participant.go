package types

import (
	"time"

	"github.com/google/uuid"
)

type Participant struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalUserID *string   `gorm:"uniqueIndex;column:external_user_id" json:"external_user_id,omitempty"`
	DisplayName    *string   `gorm:"column:display_name" json:"display_name,omitempty"`
	Age            *int      `gorm:"column:age" json:"age,omitempty"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (Participant) TableName() string {
	return "participant"
}
