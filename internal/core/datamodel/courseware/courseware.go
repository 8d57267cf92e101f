package courseware

import "time"

type Courseware struct {
	ID          string    `gorm:"primaryKey;type:text"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description"`
	Thumbnail   string    `gorm:"column:thumbnail"`
	FilePath    string    `gorm:"column:file_path;not null"`
	IsFree      bool      `gorm:"column:is_free;default:true"`
	PriceCents  int64     `gorm:"column:price_cents;default:0"`
	Category    string    `gorm:"column:category;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Courseware) TableName() string {
	return "coursewares"
}
