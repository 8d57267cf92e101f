package postgres

import (
	coursewarepkg "github.com/frahmantamala/courseware-platform/internal/courseware"
	cwmodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/courseware"
	"gorm.io/gorm"
)

type CoursewareRepository struct {
	db *gorm.DB
}

func NewCoursewareRepository(db *gorm.DB) coursewarepkg.Repository {
	return &CoursewareRepository{db: db}
}

func (r *CoursewareRepository) GetByID(id string) (*cwmodel.Courseware, error) {
	var cw cwmodel.Courseware
	if err := r.db.Where("id = ?", id).First(&cw).Error; err != nil {
		return nil, err
	}
	return &cw, nil
}

func (r *CoursewareRepository) List(category string) ([]*cwmodel.Courseware, error) {
	var rows []*cwmodel.Courseware
	q := r.db.Order("created_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *CoursewareRepository) Search(keyword string) ([]*cwmodel.Courseware, error) {
	var rows []*cwmodel.Courseware
	pattern := "%" + keyword + "%"
	err := r.db.
		Where("title LIKE ? OR description LIKE ?", pattern, pattern).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
