package repository

import (
	"github.com/yukikurage/project-dashboard-api/internal/database"
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns projects matching filter, ordered by id
func (r *GormProjectRepository) List(filter ProjectFilter) ([]models.Project, error) {
	projects := []models.Project{}
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return projects, nil
	}

	query := r.db.Model(&models.Project{}).Scopes(database.Search(filter.Search, "name", "description"))
	if filter.IDs != nil {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Order("id ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Update merges fields into the project. A missing id reports found=false.
func (r *GormProjectRepository) Update(id uint64, fields map[string]interface{}) (bool, error) {
	result := r.db.Model(&models.Project{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
