package repository

import (
	"github.com/yukikurage/creative-task-api/internal/models"
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
func (r *GormProjectRepository) FindByID(id string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByIDs returns the projects found among ids, keyed by ID
func (r *GormProjectRepository) FindByIDs(ids []string) (map[string]models.Project, error) {
	projects := make(map[string]models.Project, len(ids))
	if len(ids) == 0 {
		return projects, nil
	}

	var found []models.Project
	if err := r.db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	for _, p := range found {
		projects[p.ID] = p
	}
	return projects, nil
}

// ListByAssignedAM lists the projects an account manager is responsible for
func (r *GormProjectRepository) ListByAssignedAM(organizationID, userID string) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Where("organization_id = ? AND assigned_am = ?", organizationID, userID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}
