package activity

import (
	"time"

	"gorm.io/datatypes"
)

// ProgressEntry is the stored shape of one monthly progress snapshot.
type ProgressEntry struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Percentage int    `json:"percentage"`
	Comment    string `json:"comment"`
}

type Activity struct {
	ID              string                             `gorm:"column:id;primaryKey;type:varchar(36)"`
	UserID          string                             `gorm:"column:user_id;type:varchar(36);index;not null"`
	Title           string                             `gorm:"column:title;not null"`
	Description     string                             `gorm:"column:description"`
	StartDate       time.Time                          `gorm:"column:start_date;not null"`
	ProgressHistory datatypes.JSONSlice[ProgressEntry] `gorm:"column:progress_history"`
	CreatedAt       time.Time                          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Activity) TableName() string {
	return "activities"
}
