package association

import "time"

type Association struct {
	ID          string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	AppraiseeID string    `gorm:"column:appraisee_id;type:varchar(36);index;not null"`
	AppraiserID string    `gorm:"column:appraiser_id;type:varchar(36);index;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Association) TableName() string {
	return "associations"
}
