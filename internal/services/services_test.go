package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/creative-task-api/internal/access"
	"github.com/yukikurage/creative-task-api/internal/database"
	"github.com/yukikurage/creative-task-api/internal/models"
	"github.com/yukikurage/creative-task-api/internal/repository"
	"gorm.io/gorm"
)

// recordingPusher captures pushed notifications
type recordingPusher struct {
	mu     sync.Mutex
	pushed []models.Notification
	err    error
}

func (p *recordingPusher) Push(ctx context.Context, n *models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.pushed = append(p.pushed, *n)
	return nil
}

func (p *recordingPusher) Close() error { return nil }

func (p *recordingPusher) recipients() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.pushed))
	for i, n := range p.pushed {
		out[i] = n.UserID
	}
	return out
}

var errPushDown = errors.New("push channel down")

// serviceSuite wires every service over an in-memory database with a small
// agency: one account manager, one design lead, three designers and an
// admin, plus a second organization.
type serviceSuite struct {
	suite.Suite
	db       *gorm.DB
	store    repository.Store
	pusher   *recordingPusher
	notifier *NotificationService
	tasks    *TaskService
	workload *WorkloadService
	ctx      context.Context
	now      time.Time

	org      *models.Organization
	otherOrg *models.Organization
	project  *models.Project

	am, lead, d1, d2, d3, admin, gm, outsider *models.User
}

func (s *serviceSuite) SetupTest() {
	var err error
	s.db, err = database.OpenSQLite(":memory:")
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = repository.NewStore(s.db)
	s.pusher = &recordingPusher{}
	s.notifier = NewNotificationService(s.store, s.pusher, logger, 0)
	s.tasks = NewTaskService(s.store, s.notifier, nil, logger)
	s.workload = NewWorkloadService(s.store, logger)
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	clock := func() time.Time { return s.now }
	s.tasks.now = clock
	s.notifier.now = clock
	s.workload.now = clock

	s.org = &models.Organization{Name: "Studio"}
	s.Require().NoError(s.store.Organizations().Create(s.org))
	s.otherOrg = &models.Organization{Name: "Elsewhere"}
	s.Require().NoError(s.store.Organizations().Create(s.otherOrg))

	s.am = s.createUser(s.org.ID, "Alice AM", models.RoleAccountManager, models.TeamAM)
	s.lead = s.createUser(s.org.ID, "Lena Lead", models.RoleDesignLead, models.TeamDesign)
	s.d1 = s.createUser(s.org.ID, "Dan Designer", models.RoleDesigner, models.TeamDesign)
	s.d2 = s.createUser(s.org.ID, "Eve Designer", models.RoleDesigner, models.TeamDesign)
	s.d3 = s.createUser(s.org.ID, "Finn Designer", models.RoleDesigner, models.TeamDesign)
	s.admin = s.createUser(s.org.ID, "Ada Admin", models.RoleAdmin, models.TeamManagement)
	s.gm = s.createUser(s.org.ID, "Gus GM", models.RoleGeneralManager, models.TeamManagement)
	s.outsider = s.createUser(s.otherOrg.ID, "Olga Outsider", models.RoleDesigner, models.TeamDesign)

	s.project = &models.Project{
		OrganizationID: s.org.ID,
		ProjectName:    "Spring Campaign",
		AssignedAM:     &s.am.ID,
		Status:         models.ProjectStatusActive,
		CreatedBy:      s.am.ID,
	}
	s.Require().NoError(s.store.Projects().Create(s.project))
}

func (s *serviceSuite) TearDownTest() {
	s.notifier.Wait()
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *serviceSuite) createUser(orgID, name string, role models.Role, team models.Team) *models.User {
	user := &models.User{
		OrganizationID: orgID,
		Email:          name + "@example.com",
		FullName:       name,
		Role:           role,
		Team:           team,
	}
	s.Require().NoError(s.store.Users().Create(user))
	return user
}

func (s *serviceSuite) actor(u *models.User) access.Actor {
	return access.Actor{
		UserID:         u.ID,
		OrganizationID: u.OrganizationID,
		Role:           u.Role,
		Team:           u.Team,
	}
}

func (s *serviceSuite) reloadUser(u *models.User) *models.User {
	fresh, err := s.store.Users().FindByID(u.ID)
	s.Require().NoError(err)
	return fresh
}

func (s *serviceSuite) reloadTask(id string) *models.Task {
	task, err := s.store.Tasks().FindByID(id, "StatusHistory", "Activity", "Designers", "Deliverables")
	s.Require().NoError(err)
	return task
}

func (s *serviceSuite) ledger(u *models.User) []models.TaskDifficulty {
	var rows []models.TaskDifficulty
	s.Require().NoError(s.db.Where("user_id = ?", u.ID).Find(&rows).Error)
	return rows
}

// createTask creates a graphic design task due in seven days
func (s *serviceSuite) createTask(name string) string {
	due := s.now.AddDate(0, 0, 7)
	task, err := s.tasks.CreateTask(s.ctx, s.actor(s.am), s.project.ID, CreateTaskInput{
		TaskName: name,
		Brief:    "Key visual for the " + name,
		TaskType: models.TaskTypeGraphicDesign,
		DueDate:  &due,
	})
	s.Require().NoError(err)
	return task.ID
}

func (s *serviceSuite) assign(taskID string, designer *models.User, rating *int) {
	_, err := s.tasks.UpdateTask(s.ctx, s.actor(s.lead), taskID, UpdateTaskInput{
		AssignedDesigner: &designer.ID,
		StarRate:         rating,
	})
	s.Require().NoError(err)
}

// tick advances the shared clock so rows written next sort after earlier ones
func (s *serviceSuite) tick() {
	s.now = s.now.Add(time.Minute)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
