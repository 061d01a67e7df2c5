// Package access derives which tasks an authenticated actor may see or act on.
package access

import "github.com/yukikurage/creative-task-api/internal/models"

// Actor is the authenticated caller, scoped to exactly one organization.
type Actor struct {
	UserID         string
	OrganizationID string
	Role           models.Role
	Team           models.Team
	IsAdmin        bool
}

// IsAdministrator covers both the admin identity and users holding the admin role.
func (a Actor) IsAdministrator() bool {
	return a.IsAdmin || a.Role == models.RoleAdmin
}

// SeesAllTasks reports whether the actor's listing covers the whole organization.
// Design leads currently get the same breadth as design heads.
func (a Actor) SeesAllTasks() bool {
	return a.IsAdministrator() || a.Role.IsDesignSupervisor()
}

// CanListUnassigned gates the unassigned-task queue.
func (a Actor) CanListUnassigned() bool {
	return a.SeesAllTasks()
}

// CanCreateTasks covers the account-management side of the agency.
func (a Actor) CanCreateTasks() bool {
	return a.IsAdministrator() || a.Role.IsAccountManager() || a.Role == models.RoleGeneralManager
}

// CanDelete allows administrative deletes and creators removing their own task.
func (a Actor) CanDelete(task *models.Task) bool {
	return a.IsAdministrator() || task.CreatedBy == a.UserID
}

// TaskScope is the listing predicate for one actor.
type TaskScope struct {
	OrganizationID string
	// ParticipantID, when set, limits results to tasks where this user is the
	// assigned designer or the design lead.
	ParticipantID string
	// UnassignedOnly limits results to tasks without an assigned designer.
	UnassignedOnly bool
}

// ScopeFor returns the listing predicate for actor.
func ScopeFor(actor Actor) TaskScope {
	scope := TaskScope{OrganizationID: actor.OrganizationID}
	if !actor.SeesAllTasks() {
		scope.ParticipantID = actor.UserID
	}
	return scope
}

// ProjectScope is the predicate for listing inside one project. It follows
// single-task access breadth, so account and general managers see every task
// of the project.
func ProjectScope(actor Actor) TaskScope {
	scope := ScopeFor(actor)
	if actor.opensAnyTask() {
		scope.ParticipantID = ""
	}
	return scope
}

// UnassignedScope returns the unassigned-queue predicate, or false when the
// actor may not see the queue.
func UnassignedScope(actor Actor) (TaskScope, bool) {
	if !actor.CanListUnassigned() {
		return TaskScope{}, false
	}
	return TaskScope{OrganizationID: actor.OrganizationID, UnassignedOnly: true}, true
}

// Matches evaluates scope against a single task in memory.
func (s TaskScope) Matches(task *models.Task) bool {
	if task.OrganizationID != s.OrganizationID {
		return false
	}
	if s.UnassignedOnly && task.HasDesigner() {
		return false
	}
	if s.ParticipantID != "" && !isParticipant(s.ParticipantID, task) {
		return false
	}
	return true
}

// CanAccess decides whether actor may open or act on a single task. Tenant
// mismatch always fails. Account managers and general managers may open any
// task in their organization; everyone else needs to be a participant, the
// creator or a past designer.
func CanAccess(actor Actor, task *models.Task) bool {
	if task.OrganizationID != actor.OrganizationID {
		return false
	}
	if actor.opensAnyTask() {
		return true
	}
	if isParticipant(actor.UserID, task) || task.CreatedBy == actor.UserID {
		return true
	}
	for _, d := range task.Designers {
		if d.UserID == actor.UserID {
			return true
		}
	}
	return false
}

func (a Actor) opensAnyTask() bool {
	return a.SeesAllTasks() || a.Role.IsAccountManager() || a.Role == models.RoleGeneralManager
}

func isParticipant(userID string, task *models.Task) bool {
	if task.AssignedDesigner != nil && *task.AssignedDesigner == userID {
		return true
	}
	return task.DesignLead != nil && *task.DesignLead == userID
}
