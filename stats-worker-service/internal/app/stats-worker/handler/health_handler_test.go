package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type MockSnapshotService struct {
	mock.Mock
}

func (m *MockSnapshotService) Snapshot(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSnapshotService) LastSnapshot() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

type HealthHandlerTestSuite struct {
	suite.Suite
	sqlDB       *sql.DB
	dbMock      sqlmock.Sqlmock
	mr          *miniredis.Miniredis
	redisClient *redis.Client
	snapshotter *MockSnapshotService
	handler     *HealthCheckHandler
	mux         *http.ServeMux
	now         time.Time
}

func TestHealthHandlerSuite(t *testing.T) {
	suite.Run(t, new(HealthHandlerTestSuite))
}

func (s *HealthHandlerTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.dbMock, err = sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(s.T(), err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(s.T(), err)

	s.mr, err = miniredis.Run()
	require.NoError(s.T(), err)
	s.redisClient = redis.NewClient(&redis.Options{
		Addr:        s.mr.Addr(),
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})

	s.snapshotter = new(MockSnapshotService)
	s.handler = NewHealthCheckHandler(db, s.redisClient, s.snapshotter, 15*time.Minute)
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.handler.now = func() time.Time { return s.now }

	s.mux = http.NewServeMux()
	s.handler.RegisterRoutes(s.mux)
}

func (s *HealthHandlerTestSuite) TearDownTest() {
	s.redisClient.Close()
	s.mr.Close()
	s.sqlDB.Close()
}

func (s *HealthHandlerTestSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	return w
}

func (s *HealthHandlerTestSuite) decode(w *httptest.ResponseRecorder) HealthResponse {
	var resp HealthResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *HealthHandlerTestSuite) TestHealth_AllHealthy() {
	s.dbMock.ExpectPing()
	s.snapshotter.On("LastSnapshot").Return(s.now.Add(-time.Minute))

	w := s.get("/health")

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), "application/json", w.Header().Get("Content-Type"))
	resp := s.decode(w)
	assert.Equal(s.T(), "healthy", resp.Status)
	assert.Equal(s.T(), map[string]string{
		"database": "healthy",
		"redis":    "healthy",
		"snapshot": "healthy",
	}, resp.Checks)
	assert.NoError(s.T(), s.dbMock.ExpectationsWereMet())
}

func (s *HealthHandlerTestSuite) TestHealth_DatabaseDown() {
	s.dbMock.ExpectPing().WillReturnError(errors.New("connection refused"))
	s.snapshotter.On("LastSnapshot").Return(s.now)

	w := s.get("/health")

	assert.Equal(s.T(), http.StatusServiceUnavailable, w.Code)
	resp := s.decode(w)
	assert.Equal(s.T(), "unhealthy", resp.Status)
	assert.Equal(s.T(), "unhealthy: connection refused", resp.Checks["database"])
	assert.Equal(s.T(), "healthy", resp.Checks["redis"])
}

func (s *HealthHandlerTestSuite) TestHealth_RedisDown() {
	s.dbMock.ExpectPing()
	s.snapshotter.On("LastSnapshot").Return(s.now)
	s.mr.Close()

	w := s.get("/health")

	assert.Equal(s.T(), http.StatusServiceUnavailable, w.Code)
	resp := s.decode(w)
	assert.Equal(s.T(), "healthy", resp.Checks["database"])
	assert.Contains(s.T(), resp.Checks["redis"], "unhealthy")
}

func (s *HealthHandlerTestSuite) TestHealth_SnapshotWarningsKeepStatusHealthy() {
	tests := []struct {
		name     string
		last     time.Time
		expected string
	}{
		{"no snapshot yet", time.Time{}, "warning: no snapshot taken yet"},
		{"stale snapshot", s.now.Add(-time.Hour), "warning: last snapshot is 1h0m0s old"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.dbMock.ExpectPing()
			s.snapshotter.ExpectedCalls = nil
			s.snapshotter.On("LastSnapshot").Return(tt.last)

			w := s.get("/health")

			assert.Equal(s.T(), http.StatusOK, w.Code)
			resp := s.decode(w)
			assert.Equal(s.T(), "healthy", resp.Status)
			assert.Equal(s.T(), tt.expected, resp.Checks["snapshot"])
		})
	}
}

func (s *HealthHandlerTestSuite) TestReadiness() {
	s.dbMock.ExpectPing()

	w := s.get("/health/readiness")

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), "ready", w.Body.String())
}

func (s *HealthHandlerTestSuite) TestReadiness_DatabaseNotReady() {
	s.dbMock.ExpectPing().WillReturnError(errors.New("starting up"))

	w := s.get("/health/readiness")

	assert.Equal(s.T(), http.StatusServiceUnavailable, w.Code)
	assert.Contains(s.T(), w.Body.String(), "database not ready")
}

func (s *HealthHandlerTestSuite) TestReadiness_RedisNotReady() {
	s.dbMock.ExpectPing()
	s.mr.Close()

	w := s.get("/health/readiness")

	assert.Equal(s.T(), http.StatusServiceUnavailable, w.Code)
	assert.Contains(s.T(), w.Body.String(), "redis not ready")
}

func (s *HealthHandlerTestSuite) TestLiveness() {
	w := s.get("/health/liveness")

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), "alive", w.Body.String())
}
