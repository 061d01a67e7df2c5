package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/creative-task-api/internal/access"
	"github.com/yukikurage/creative-task-api/internal/constants"
	"github.com/yukikurage/creative-task-api/internal/database"
	"github.com/yukikurage/creative-task-api/internal/models"
	"github.com/yukikurage/creative-task-api/internal/repository"
	"gorm.io/gorm"
)

// sessionRouter seeds the session with values on /login and guards /me
func sessionRouter(values map[string]interface{}) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.GET("/login", func(c *gin.Context) {
		session := sessions.Default(c)
		for k, v := range values {
			session.Set(k, v)
		}
		_ = session.Save()
		c.Status(http.StatusNoContent)
	})
	r.GET("/me", RequireAuth(), func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":  actor.UserID,
			"org":      actor.OrganizationID,
			"role":     actor.Role,
			"team":     actor.Team,
			"is_admin": actor.IsAdmin,
		})
	})
	return r
}

func login(t *testing.T, r *gin.Engine) []*http.Cookie {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	return w.Result().Cookies()
}

func TestRequireAuth_BuildsActor(t *testing.T) {
	r := sessionRouter(map[string]interface{}{
		constants.ContextKeyUserID:         "u1",
		constants.ContextKeyOrganizationID: "org1",
		constants.ContextKeyRole:           "Design Lead",
		constants.ContextKeyTeam:           "Design",
		constants.ContextKeyIsAdmin:        false,
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, c := range login(t, r) {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"u1","org":"org1","role":"design_lead","team":"Design","is_admin":false}`, w.Body.String())
}

func TestRequireAuth_MissingOrganization(t *testing.T) {
	r := sessionRouter(map[string]interface{}{
		constants.ContextKeyUserID: "u1",
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, c := range login(t, r) {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_NoSession(t *testing.T) {
	r := sessionRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// AccessMiddlewareTestSuite covers the task and project gates
type AccessMiddlewareTestSuite struct {
	suite.Suite
	db      *gorm.DB
	store   repository.Store
	project *models.Project
	task    *models.Task
}

func TestAccessMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AccessMiddlewareTestSuite))
}

func (s *AccessMiddlewareTestSuite) SetupTest() {
	var err error
	s.db, err = database.OpenSQLite(":memory:")
	s.Require().NoError(err)
	database.SetDB(s.db)
	s.store = repository.NewStore(s.db)

	s.project = &models.Project{OrganizationID: "org1", ProjectName: "Spring", Status: models.ProjectStatusActive, CreatedBy: "am"}
	s.Require().NoError(s.store.Projects().Create(s.project))

	designer := "d1"
	s.task = &models.Task{
		OrganizationID:   "org1",
		ProjectID:        s.project.ID,
		TaskName:         "Poster",
		Brief:            "b",
		TaskType:         models.TaskTypeGraphicDesign,
		Priority:         models.TaskPriorityMedium,
		Status:           models.TaskStatusDesignerAssigned,
		AssignedDesigner: &designer,
		CreatedBy:        "am",
	}
	s.Require().NoError(s.store.Tasks().Create(s.task))
}

func (s *AccessMiddlewareTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *AccessMiddlewareTestSuite) serve(actor *access.Actor, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if actor != nil {
			c.Set(constants.ContextKeyActor, *actor)
		}
	})
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/tasks/:taskId", RequireTaskAccess(), func(c *gin.Context) {
		task, exists := c.Get(constants.ContextKeyTask)
		s.True(exists)
		s.Equal(s.task.ID, task.(models.Task).ID)
		c.Status(http.StatusOK)
	})
	r.GET("/projects/:projectId", RequireProjectAccess(), ok)
	r.GET("/orgs/:organizationId", RequireOrganizationScope(), ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (s *AccessMiddlewareTestSuite) TestRequireTaskAccess() {
	assigned := access.Actor{UserID: "d1", OrganizationID: "org1", Role: models.RoleDesigner}
	stranger := access.Actor{UserID: "d2", OrganizationID: "org1", Role: models.RoleDesigner}
	foreignAM := access.Actor{UserID: "am2", OrganizationID: "org2", Role: models.RoleAccountManager}

	s.Equal(http.StatusOK, s.serve(&assigned, "/tasks/"+s.task.ID).Code)
	s.Equal(http.StatusNotFound, s.serve(&stranger, "/tasks/"+s.task.ID).Code)
	s.Equal(http.StatusNotFound, s.serve(&foreignAM, "/tasks/"+s.task.ID).Code)
	s.Equal(http.StatusNotFound, s.serve(&assigned, "/tasks/missing").Code)
	s.Equal(http.StatusUnauthorized, s.serve(nil, "/tasks/"+s.task.ID).Code)
}

func (s *AccessMiddlewareTestSuite) TestRequireProjectAccess() {
	member := access.Actor{UserID: "am", OrganizationID: "org1", Role: models.RoleAccountManager}
	foreign := access.Actor{UserID: "x", OrganizationID: "org2", Role: models.RoleAccountManager}

	s.Equal(http.StatusOK, s.serve(&member, "/projects/"+s.project.ID).Code)
	s.Equal(http.StatusNotFound, s.serve(&foreign, "/projects/"+s.project.ID).Code)
	s.Equal(http.StatusNotFound, s.serve(&member, "/projects/missing").Code)
}

func (s *AccessMiddlewareTestSuite) TestRequireOrganizationScope() {
	member := access.Actor{UserID: "am", OrganizationID: "org1"}

	s.Equal(http.StatusOK, s.serve(&member, "/orgs/org1").Code)
	s.Equal(http.StatusNotFound, s.serve(&member, "/orgs/org2").Code)
}
