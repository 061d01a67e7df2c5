package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/yukikurage/creative-task-api/internal/access"
	"github.com/yukikurage/creative-task-api/internal/constants"
	"github.com/yukikurage/creative-task-api/internal/dto"
	"github.com/yukikurage/creative-task-api/internal/metrics"
	"github.com/yukikurage/creative-task-api/internal/models"
	"github.com/yukikurage/creative-task-api/internal/repository"
	"github.com/yukikurage/creative-task-api/internal/workflow"
	"gorm.io/gorm"
)

var ErrOrganizationNotFound = errors.New("organization not found")

type workloadOp int

const (
	opAcquire workloadOp = iota
	opRelease
	opAdjust
)

func (o workloadOp) String() string {
	switch o {
	case opAcquire:
		return "acquire"
	case opRelease:
		return "release"
	default:
		return "adjust"
	}
}

type workloadStep struct {
	op     workloadOp
	userID string
	rating int
}

// workloadPlan is the ordered list of ledger moves one task mutation implies
type workloadPlan struct {
	steps []workloadStep
}

func (p *workloadPlan) acquire(userID string, rating int) {
	p.steps = append(p.steps, workloadStep{op: opAcquire, userID: userID, rating: rating})
}

func (p *workloadPlan) release(userID string) {
	for _, st := range p.steps {
		if st.op == opRelease && st.userID == userID {
			return
		}
	}
	p.steps = append(p.steps, workloadStep{op: opRelease, userID: userID})
}

func (p *workloadPlan) adjust(userID string, rating int) {
	p.steps = append(p.steps, workloadStep{op: opAdjust, userID: userID, rating: rating})
}

// completionPlan releases the designer's ledger row when a task reaches
// client approval and takes it again when the task is reopened.
func completionPlan(task *models.Task, tr workflow.Transition) workloadPlan {
	var plan workloadPlan
	if !task.HasDesigner() {
		return plan
	}
	switch {
	case tr.Completed:
		plan.release(*task.AssignedDesigner)
	case tr.Reopened:
		rating := 0
		if task.StarRate != nil {
			rating = *task.StarRate
		}
		plan.acquire(*task.AssignedDesigner, rating)
	}
	return plan
}

// applyWorkload runs plan inside a savepoint of tx. A failing step rolls back
// only the ledger moves; the surrounding task write still commits.
func (s *TaskService) applyWorkload(tx repository.Store, taskID string, plan workloadPlan) {
	if len(plan.steps) == 0 {
		return
	}

	var failed workloadStep
	err := tx.Transaction(func(sp repository.Store) error {
		users := sp.Users()
		for _, st := range plan.steps {
			var (
				changed bool
				err     error
			)
			switch st.op {
			case opAcquire:
				changed, err = users.AcquireTask(st.userID, taskID, st.rating)
			case opRelease:
				changed, err = users.ReleaseTask(st.userID, taskID)
			case opAdjust:
				changed, err = users.AdjustRating(st.userID, taskID, st.rating)
			}
			if err != nil {
				failed = st
				return err
			}

			result := "noop"
			if changed {
				result = "applied"
			}
			metrics.WorkloadUpdates.WithLabelValues(st.op.String(), result).Inc()
		}
		return nil
	})
	if err != nil {
		metrics.WorkloadUpdates.WithLabelValues(failed.op.String(), "failed").Inc()
		s.logger.Warn("workload update failed",
			"task_id", taskID,
			"operation", failed.op.String(),
			"user_id", failed.userID,
			"error", err)
	}
}

// Capacity classifies a workload score
func Capacity(score int) dto.CapacityBand {
	switch {
	case score <= constants.CapacityLowMax:
		return dto.CapacityLow
	case score <= constants.CapacityMediumMax:
		return dto.CapacityMedium
	case score <= constants.CapacityHighMax:
		return dto.CapacityHigh
	default:
		return dto.CapacityOverloaded
	}
}

// WorkloadService serves the workload dashboards and ledger reconciliation
type WorkloadService struct {
	store  repository.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewWorkloadService creates a new WorkloadService
func NewWorkloadService(store repository.Store, logger *slog.Logger) *WorkloadService {
	return &WorkloadService{store: store, logger: logger, now: time.Now}
}

// DesignerWorkload aggregates active design work per member of the Design
// team. Tasks without a rating count as DefaultWorkloadRating.
func (s *WorkloadService) DesignerWorkload(ctx context.Context, actor access.Actor, organizationID string) ([]dto.WorkloadEntryDTO, error) {
	if err := s.checkOrganization(actor, organizationID); err != nil {
		return nil, err
	}

	team := models.TeamDesign
	designers, err := s.store.Users().ListByOrganization(organizationID, &team)
	if err != nil {
		return nil, fmt.Errorf("failed to list designers: %w", err)
	}

	tasks, _, err := s.store.Tasks().List(repository.TaskFilter{
		OrganizationID:  organizationID,
		AssignedOnly:    true,
		TaskTypes:       models.DesignTaskTypes(),
		ExcludeStatuses: workflow.DesignerIdleStatuses(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list active tasks: %w", err)
	}

	type tally struct{ ongoing, overdue, score int }
	byDesigner := make(map[string]*tally, len(designers))
	for _, d := range designers {
		byDesigner[d.ID] = &tally{}
	}

	now := s.now()
	for i := range tasks {
		t := &tasks[i]
		acc, ok := byDesigner[*t.AssignedDesigner]
		if !ok {
			continue
		}
		acc.ongoing++
		acc.score += ratingOrDefault(t.StarRate)
		if t.IsOverdue(now) {
			acc.overdue++
		}
	}

	entries := make([]dto.WorkloadEntryDTO, 0, len(designers))
	for _, d := range designers {
		acc := byDesigner[d.ID]
		entries = append(entries, dto.WorkloadEntryDTO{
			User:          dto.ToUserDTO(d),
			OngoingTasks:  acc.ongoing,
			OverdueTasks:  acc.overdue,
			WorkloadScore: acc.score,
			Capacity:      Capacity(acc.score),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].WorkloadScore > entries[j].WorkloadScore
	})
	return entries, nil
}

func ratingOrDefault(rate *int) int {
	if rate == nil || *rate == 0 {
		return constants.DefaultWorkloadRating
	}
	return *rate
}

// OrganizationOverview counts every task short of client approval and breaks
// the count down per account manager over the projects they are assigned to.
// A plain account manager only sees their own row.
func (s *WorkloadService) OrganizationOverview(ctx context.Context, actor access.Actor, organizationID string) (*dto.OrganizationOverviewDTO, error) {
	if err := s.checkOrganization(actor, organizationID); err != nil {
		return nil, err
	}

	ongoing, _, err := s.store.Tasks().List(repository.TaskFilter{
		OrganizationID:  organizationID,
		ExcludeStatuses: []models.TaskStatus{models.TaskStatusClientApproved},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list ongoing tasks: %w", err)
	}

	now := s.now()
	overview := &dto.OrganizationOverviewDTO{
		OngoingTasks:    len(ongoing),
		AccountManagers: []dto.AccountManagerLoadDTO{},
	}

	byProject := make(map[string][]*models.Task)
	for i := range ongoing {
		t := &ongoing[i]
		if t.IsOverdue(now) {
			overview.OverdueTasks++
		}
		byProject[t.ProjectID] = append(byProject[t.ProjectID], t)
	}

	managers, err := s.accountManagers(actor, organizationID)
	if err != nil {
		return nil, err
	}

	for _, am := range managers {
		projects, err := s.store.Projects().ListByAssignedAM(organizationID, am.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list projects of account manager: %w", err)
		}

		row := dto.AccountManagerLoadDTO{User: dto.ToUserDTO(am)}
		for _, p := range projects {
			for _, t := range byProject[p.ID] {
				row.OngoingTasks++
				if t.IsOverdue(now) {
					row.OverdueTasks++
				}
			}
		}
		overview.AccountManagers = append(overview.AccountManagers, row)
	}

	return overview, nil
}

func (s *WorkloadService) accountManagers(actor access.Actor, organizationID string) ([]models.User, error) {
	if actor.Role == models.RoleAccountManager && !actor.IsAdministrator() {
		self, err := s.store.Users().FindByID(actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		return []models.User{*self}, nil
	}

	team := models.TeamAM
	users, err := s.store.Users().ListByOrganization(organizationID, &team)
	if err != nil {
		return nil, fmt.Errorf("failed to list account managers: %w", err)
	}
	return users, nil
}

// Reconcile rebuilds the workload ledger of an organization and recomputes
// every member's counters from it
func (s *WorkloadService) Reconcile(ctx context.Context, organizationID string) (repository.ReconcileResult, error) {
	if _, err := s.store.Organizations().FindByID(organizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ReconcileResult{}, ErrOrganizationNotFound
		}
		return repository.ReconcileResult{}, fmt.Errorf("failed to find organization: %w", err)
	}

	res, err := s.store.Users().ReconcileWorkload(organizationID)
	if err != nil {
		return res, fmt.Errorf("failed to reconcile workload: %w", err)
	}

	metrics.WorkloadUpdates.WithLabelValues("reconcile", "applied").Inc()
	s.logger.Info("workload reconciled",
		"organization_id", organizationID,
		"rows_removed", res.RowsRemoved,
		"rows_added", res.RowsAdded,
		"users_synced", res.UsersSynced)
	return res, nil
}

// checkOrganization reports other tenants as absent
func (s *WorkloadService) checkOrganization(actor access.Actor, organizationID string) error {
	if organizationID == "" || organizationID != actor.OrganizationID {
		return ErrOrganizationNotFound
	}
	if _, err := s.store.Organizations().FindByID(organizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to find organization: %w", err)
	}
	return nil
}
