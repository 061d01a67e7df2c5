package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/creative-task-api/internal/access"
	"github.com/yukikurage/creative-task-api/internal/database"
	"github.com/yukikurage/creative-task-api/internal/dto"
	"github.com/yukikurage/creative-task-api/internal/models"
	"github.com/yukikurage/creative-task-api/internal/repository"
	"github.com/yukikurage/creative-task-api/internal/workflow"
	"pgregory.net/rapid"
)

func TestCapacity(t *testing.T) {
	tests := []struct {
		score int
		want  dto.CapacityBand
	}{
		{0, dto.CapacityLow},
		{5, dto.CapacityLow},
		{6, dto.CapacityMedium},
		{10, dto.CapacityMedium},
		{11, dto.CapacityHigh},
		{20, dto.CapacityHigh},
		{21, dto.CapacityOverloaded},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Capacity(tt.score), "score %d", tt.score)
	}
}

type WorkloadServiceTestSuite struct {
	serviceSuite
}

func TestWorkloadServiceSuite(t *testing.T) {
	suite.Run(t, new(WorkloadServiceTestSuite))
}

func (s *WorkloadServiceTestSuite) entryFor(entries []dto.WorkloadEntryDTO, u *models.User) dto.WorkloadEntryDTO {
	for _, e := range entries {
		if e.User.ID == u.ID {
			return e
		}
	}
	s.FailNow("no workload entry for " + u.FullName)
	return dto.WorkloadEntryDTO{}
}

func (s *WorkloadServiceTestSuite) TestDesignerWorkload() {
	rated := s.createTask("poster")
	s.assign(rated, s.d1, intPtr(4))
	unrated := s.createTask("banner")
	s.assign(unrated, s.d1, nil)
	inReview := s.createTask("flyer")
	s.assign(inReview, s.d2, intPtr(5))
	_, err := s.tasks.SetStatus(s.ctx, s.actor(s.lead), inReview, models.TaskStatusDraftSubmitted, "")
	s.Require().NoError(err)

	due := s.now.AddDate(0, 0, -1)
	copyTask, err := s.tasks.CreateTask(s.ctx, s.actor(s.am), s.project.ID, CreateTaskInput{
		TaskName: "tagline",
		Brief:    "Write a tagline",
		TaskType: models.TaskTypeCopyWriting,
		DueDate:  &due,
	})
	s.Require().NoError(err)
	s.assign(copyTask.ID, s.d2, intPtr(2))

	overdue, err := s.tasks.CreateTask(s.ctx, s.actor(s.am), s.project.ID, CreateTaskInput{
		TaskName: "late banner",
		Brief:    "Banner",
		TaskType: models.TaskTypeWebDesign,
		DueDate:  &due,
	})
	s.Require().NoError(err)
	s.assign(overdue.ID, s.d3, intPtr(1))

	entries, err := s.workload.DesignerWorkload(s.ctx, s.actor(s.lead), s.org.ID)
	s.Require().NoError(err)
	s.Len(entries, 4)

	d1 := s.entryFor(entries, s.d1)
	s.Equal(2, d1.OngoingTasks)
	s.Equal(4+3, d1.WorkloadScore)
	s.Equal(dto.CapacityMedium, d1.Capacity)

	// draft_submitted and copy writing are not designer work
	d2 := s.entryFor(entries, s.d2)
	s.Equal(0, d2.OngoingTasks)
	s.Equal(0, d2.WorkloadScore)

	d3 := s.entryFor(entries, s.d3)
	s.Equal(1, d3.OngoingTasks)
	s.Equal(1, d3.OverdueTasks)

	s.Equal(s.d1.ID, entries[0].User.ID)
}

func (s *WorkloadServiceTestSuite) TestDesignerWorkload_OtherOrganization() {
	_, err := s.workload.DesignerWorkload(s.ctx, s.actor(s.lead), s.otherOrg.ID)
	s.ErrorIs(err, ErrOrganizationNotFound)
}

func (s *WorkloadServiceTestSuite) TestOrganizationOverview() {
	late := s.now.AddDate(0, 0, -2)
	_, err := s.tasks.CreateTask(s.ctx, s.actor(s.am), s.project.ID, CreateTaskInput{
		TaskName: "late",
		Brief:    "Overdue work",
		TaskType: models.TaskTypeGraphicDesign,
		DueDate:  &late,
	})
	s.Require().NoError(err)
	s.createTask("poster")
	done := s.createTask("banner")
	_, err = s.tasks.SetStatus(s.ctx, s.actor(s.am), done, models.TaskStatusClientApproved, "")
	s.Require().NoError(err)

	amLead := s.createUser(s.org.ID, "Amy AM Lead", models.RoleAMLead, models.TeamAM)

	overview, err := s.workload.OrganizationOverview(s.ctx, s.actor(amLead), s.org.ID)
	s.Require().NoError(err)
	s.Equal(2, overview.OngoingTasks)
	s.Equal(1, overview.OverdueTasks)
	s.Len(overview.AccountManagers, 2)
	for _, row := range overview.AccountManagers {
		if row.User.ID == s.am.ID {
			s.Equal(2, row.OngoingTasks)
			s.Equal(1, row.OverdueTasks)
		} else {
			s.Equal(0, row.OngoingTasks)
		}
	}

	own, err := s.workload.OrganizationOverview(s.ctx, s.actor(s.am), s.org.ID)
	s.Require().NoError(err)
	s.Require().Len(own.AccountManagers, 1)
	s.Equal(s.am.ID, own.AccountManagers[0].User.ID)
}

func (s *WorkloadServiceTestSuite) TestReconcile_RepairsDrift() {
	taskID := s.createTask("poster")
	s.assign(taskID, s.d1, intPtr(3))

	// simulate a lost release and a skewed counter
	s.Require().NoError(s.db.Model(&models.User{}).Where("id = ?", s.d1.ID).
		Updates(map[string]interface{}{"ongoing_tasks": 7, "workload_score": 40}).Error)
	s.Require().NoError(s.db.Create(&models.TaskDifficulty{UserID: s.d2.ID, TaskID: taskID, StarRating: 3}).Error)

	res, err := s.workload.Reconcile(s.ctx, s.org.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), res.RowsRemoved)

	d1 := s.reloadUser(s.d1)
	s.Equal(1, d1.OngoingTasks)
	s.Equal(3, d1.WorkloadScore)
	d2 := s.reloadUser(s.d2)
	s.Equal(0, d2.OngoingTasks)
	s.Empty(s.ledger(s.d2))
}

func (s *WorkloadServiceTestSuite) TestReconcile_UnknownOrganization() {
	_, err := s.workload.Reconcile(s.ctx, "missing")
	s.ErrorIs(err, ErrOrganizationNotFound)
}

// After any sequence of assignments, rating changes and status moves, each
// designer's counters equal the sum over their ledger rows, and the ledger
// holds exactly the assigned designer of every task short of approval.
func TestProperty_WorkloadCountersMatchLedger(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		db, err := database.OpenSQLite(":memory:")
		require.NoError(rt, err)
		sqlDB, _ := db.DB()
		defer sqlDB.Close()

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		store := repository.NewStore(db)
		notifier := NewNotificationService(store, &recordingPusher{}, logger, 0)
		defer notifier.Wait()
		svc := NewTaskService(store, notifier, nil, logger)
		ctx := context.Background()

		org := &models.Organization{Name: "Studio"}
		require.NoError(rt, store.Organizations().Create(org))
		project := &models.Project{OrganizationID: org.ID, ProjectName: "P"}
		require.NoError(rt, store.Projects().Create(project))

		admin := access.Actor{UserID: "admin", OrganizationID: org.ID, IsAdmin: true, Role: models.RoleAdmin}
		var designers []string
		for i := 0; i < 3; i++ {
			u := &models.User{OrganizationID: org.ID, Email: rapidEmail(i), FullName: "D", Role: models.RoleDesigner, Team: models.TeamDesign}
			require.NoError(rt, store.Users().Create(u))
			designers = append(designers, u.ID)
		}

		var taskIDs []string
		for i := 0; i < 2; i++ {
			due := project.CreatedAt.AddDate(0, 0, 7)
			view, err := svc.CreateTask(ctx, admin, project.ID, CreateTaskInput{
				TaskName: "t", Brief: "b", TaskType: models.TaskTypeGraphicDesign, DueDate: &due,
			})
			require.NoError(rt, err)
			taskIDs = append(taskIDs, view.ID)
		}

		steps := rapid.IntRange(1, 25).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			taskID := rapid.SampledFrom(taskIDs).Draw(rt, "task")
			switch rapid.IntRange(0, 4).Draw(rt, "op") {
			case 0:
				designer := rapid.SampledFrom(designers).Draw(rt, "designer")
				var rating *int
				if rapid.Bool().Draw(rt, "rated") {
					r := rapid.IntRange(0, 5).Draw(rt, "rating")
					rating = &r
				}
				_, err = svc.UpdateTask(ctx, admin, taskID, UpdateTaskInput{AssignedDesigner: &designer, StarRate: rating})
			case 1:
				_, err = svc.UpdateTask(ctx, admin, taskID, UpdateTaskInput{ClearAssignedDesigner: true})
			case 2:
				r := rapid.IntRange(0, 5).Draw(rt, "new_rating")
				_, err = svc.UpdateTask(ctx, admin, taskID, UpdateTaskInput{StarRate: &r})
			case 3:
				status := rapid.SampledFrom(workflow.SettableStatuses()).Draw(rt, "status")
				_, err = svc.SetStatus(ctx, admin, taskID, status, "")
			case 4:
				kind := rapid.SampledFrom(workflow.CommentTypes()).Draw(rt, "activity")
				_, err = svc.AddActivity(ctx, admin, taskID, ActivityInput{Type: kind, Comment: "c"})
			}
			require.NoError(rt, err)
		}

		for _, id := range designers {
			user, err := store.Users().FindByID(id)
			require.NoError(rt, err)

			var rows []models.TaskDifficulty
			require.NoError(rt, db.Where("user_id = ?", id).Find(&rows).Error)
			sum := 0
			for _, r := range rows {
				sum += r.StarRating
			}
			if user.OngoingTasks != len(rows) || user.WorkloadScore != sum {
				rt.Fatalf("designer %s: counters (%d, %d) ledger (%d, %d)", id, user.OngoingTasks, user.WorkloadScore, len(rows), sum)
			}
		}

		for _, taskID := range taskIDs {
			task, err := store.Tasks().FindByID(taskID)
			require.NoError(rt, err)

			var rows []models.TaskDifficulty
			require.NoError(rt, db.Where("task_id = ?", taskID).Find(&rows).Error)
			wantRow := task.HasDesigner() && !workflow.IsTerminal(task.Status)
			switch {
			case wantRow && (len(rows) != 1 || rows[0].UserID != *task.AssignedDesigner):
				rt.Fatalf("task %s: ledger %v for designer %s", taskID, rows, *task.AssignedDesigner)
			case !wantRow && len(rows) != 0:
				rt.Fatalf("task %s at %s: unexpected ledger %v", taskID, task.Status, rows)
			}
		}
	})
}

func rapidEmail(i int) string {
	return "designer" + string(rune('a'+i)) + "@example.com"
}
