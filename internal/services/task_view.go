package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/creative-task-api/internal/dto"
	"github.com/yukikurage/creative-task-api/internal/models"
	"golang.org/x/sync/errgroup"
)

// populate resolves the users and projects referenced by tasks and builds the
// response views. Lookups run concurrently, one batch query each.
func (s *TaskService) populate(ctx context.Context, tasks []models.Task) ([]dto.TaskDTO, error) {
	if len(tasks) == 0 {
		return []dto.TaskDTO{}, nil
	}

	var userIDs, projectIDs []string
	seenProjects := make(map[string]struct{})
	for _, t := range tasks {
		userIDs = append(userIDs, dto.ReferencedUserIDs(t)...)
		if _, ok := seenProjects[t.ProjectID]; !ok {
			seenProjects[t.ProjectID] = struct{}{}
			projectIDs = append(projectIDs, t.ProjectID)
		}
	}

	var (
		users    map[string]models.User
		projects map[string]models.Project
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.store.Users().FindByIDs(recipients("", userIDs...))
		if err != nil {
			return fmt.Errorf("failed to load task users: %w", err)
		}
		users = found
		return gctx.Err()
	})
	g.Go(func() error {
		found, err := s.store.Projects().FindByIDs(projectIDs)
		if err != nil {
			return fmt.Errorf("failed to load task projects: %w", err)
		}
		projects = found
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]dto.TaskDTO, len(tasks))
	for i, t := range tasks {
		var project *models.Project
		if p, ok := projects[t.ProjectID]; ok {
			project = &p
		}
		items[i] = dto.ToTaskDTO(t, users, project)
	}
	return items, nil
}
