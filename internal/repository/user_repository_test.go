package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/creative-task-api/internal/database"
	"github.com/yukikurage/creative-task-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type UserRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	store Store
	user  *models.User
}

func TestUserRepositorySuite(t *testing.T) {
	suite.Run(t, new(UserRepositoryTestSuite))
}

func (s *UserRepositoryTestSuite) SetupTest() {
	var err error
	s.db, err = database.OpenSQLite(":memory:")
	s.Require().NoError(err)
	s.store = NewStore(s.db)

	s.user = &models.User{OrganizationID: "org", Email: "dan@example.com", FullName: "Dan", Role: models.RoleDesigner}
	s.Require().NoError(s.store.Users().Create(s.user))
}

func (s *UserRepositoryTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *UserRepositoryTestSuite) counters() (int, int) {
	u, err := s.store.Users().FindByID(s.user.ID)
	s.Require().NoError(err)
	return u.OngoingTasks, u.WorkloadScore
}

func (s *UserRepositoryTestSuite) TestAcquireIsIdempotent() {
	users := s.store.Users()

	ok, err := users.AcquireTask(s.user.ID, "t1", 4)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = users.AcquireTask(s.user.ID, "t1", 4)
	s.Require().NoError(err)
	s.False(ok)

	ongoing, score := s.counters()
	s.Equal(1, ongoing)
	s.Equal(4, score)
}

func (s *UserRepositoryTestSuite) TestReleaseUsesLedgerRating() {
	users := s.store.Users()
	_, err := users.AcquireTask(s.user.ID, "t1", 4)
	s.Require().NoError(err)
	_, err = users.AcquireTask(s.user.ID, "t2", 2)
	s.Require().NoError(err)

	ok, err := users.ReleaseTask(s.user.ID, "t1")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = users.ReleaseTask(s.user.ID, "t1")
	s.Require().NoError(err)
	s.False(ok)

	ongoing, score := s.counters()
	s.Equal(1, ongoing)
	s.Equal(2, score)
}

func (s *UserRepositoryTestSuite) TestAdjustRating() {
	users := s.store.Users()
	_, err := users.AcquireTask(s.user.ID, "t1", 1)
	s.Require().NoError(err)

	ok, err := users.AdjustRating(s.user.ID, "t1", 5)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = users.AdjustRating(s.user.ID, "t1", 5)
	s.Require().NoError(err)
	s.False(ok)

	ok, err = users.AdjustRating(s.user.ID, "missing", 3)
	s.Require().NoError(err)
	s.False(ok)

	ongoing, score := s.counters()
	s.Equal(1, ongoing)
	s.Equal(5, score)
}

func (s *UserRepositoryTestSuite) TestAcquireUnknownUserRollsBack() {
	_, err := s.store.Users().AcquireTask("ghost", "t1", 3)
	s.ErrorIs(err, ErrCounterUpdate)

	var rows int64
	s.Require().NoError(s.db.Model(&models.TaskDifficulty{}).Count(&rows).Error)
	s.Zero(rows)
}

func (s *UserRepositoryTestSuite) TestSavepointRollbackKeepsOuterWrites() {
	err := s.store.Transaction(func(tx Store) error {
		if _, err := tx.Users().AcquireTask(s.user.ID, "t1", 2); err != nil {
			return err
		}
		inner := tx.Transaction(func(sp Store) error {
			if _, err := sp.Users().AcquireTask(s.user.ID, "t2", 3); err != nil {
				return err
			}
			return errors.New("abort")
		})
		s.Error(inner)
		return nil
	})
	s.Require().NoError(err)

	ongoing, score := s.counters()
	s.Equal(1, ongoing)
	s.Equal(2, score)
}

func (s *UserRepositoryTestSuite) TestListByOrganization() {
	lead := &models.User{OrganizationID: "org", Email: "lena@example.com", FullName: "Lena", Role: models.RoleDesignLead, Team: models.TeamDesign}
	s.Require().NoError(s.store.Users().Create(lead))
	other := &models.User{OrganizationID: "other", Email: "olga@example.com", FullName: "Olga", Team: models.TeamDesign}
	s.Require().NoError(s.store.Users().Create(other))

	all, err := s.store.Users().ListByOrganization("org", nil)
	s.Require().NoError(err)
	s.Len(all, 2)

	team := models.TeamDesign
	design, err := s.store.Users().ListByOrganization("org", &team)
	s.Require().NoError(err)
	s.Require().Len(design, 1)
	s.Equal(lead.ID, design[0].ID)
}

func TestReleaseTask_DeleteFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "task_difficulties"`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "task_id", "star_rating", "created_at"}).
			AddRow("u1", "t1", 4, time.Now()))
	mock.ExpectExec(`DELETE FROM "task_difficulties"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	released, err := NewUserRepository(db).ReleaseTask("u1", "t1")
	assert.False(t, released)
	assert.ErrorIs(t, err, ErrLedgerRow)
	assert.NoError(t, mock.ExpectationsWereMet())
}
