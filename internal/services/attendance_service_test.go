package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"attendhq/internal/common"
	"attendhq/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockAttendanceRepository struct {
	mock.Mock
}

func (m *MockAttendanceRepository) Create(ctx context.Context, service *models.Service, visitors []models.VisitorInput) error {
	args := m.Called(ctx, service, visitors)
	return args.Error(0)
}

func (m *MockAttendanceRepository) GetByMonth(ctx context.Context, organizationID uuid.UUID, month, year int) ([]*models.Service, error) {
	args := m.Called(ctx, organizationID, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Service), args.Error(1)
}

func (m *MockAttendanceRepository) GetByYear(ctx context.Context, organizationID uuid.UUID, year int) ([]*models.Service, error) {
	args := m.Called(ctx, organizationID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Service), args.Error(1)
}

func (m *MockAttendanceRepository) GetRecent(ctx context.Context, organizationID uuid.UUID, limit int) ([]*models.Service, error) {
	args := m.Called(ctx, organizationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Service), args.Error(1)
}

func (m *MockAttendanceRepository) GetVisitors(ctx context.Context, organizationID, serviceID uuid.UUID) ([]*models.Visitor, error) {
	args := m.Called(ctx, organizationID, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Visitor), args.Error(1)
}

func (m *MockAttendanceRepository) CountVisitors(ctx context.Context, serviceID uuid.UUID) (int, error) {
	args := m.Called(ctx, serviceID)
	return args.Int(0), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetMonthlyStats(ctx context.Context, organizationID uuid.UUID, month, year int) (*models.MonthlyStats, error) {
	args := m.Called(ctx, organizationID, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MonthlyStats), args.Error(1)
}

func (m *MockCacheService) SetMonthlyStats(ctx context.Context, organizationID uuid.UUID, month, year int, stats *models.MonthlyStats, ttl time.Duration) error {
	args := m.Called(ctx, organizationID, month, year, stats, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetYearComparison(ctx context.Context, organizationID uuid.UUID, currentYear, previousYear int) ([]models.YearComparison, error) {
	args := m.Called(ctx, organizationID, currentYear, previousYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.YearComparison), args.Error(1)
}

func (m *MockCacheService) SetYearComparison(ctx context.Context, organizationID uuid.UUID, currentYear, previousYear int, comparison []models.YearComparison, ttl time.Duration) error {
	args := m.Called(ctx, organizationID, currentYear, previousYear, comparison, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateOrganization(ctx context.Context, organizationID uuid.UUID) error {
	args := m.Called(ctx, organizationID)
	return args.Error(0)
}

func (m *MockCacheService) SetSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	args := m.Called(ctx, sessionID, userID, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type AttendanceServiceTestSuite struct {
	suite.Suite
	mockRepo  *MockAttendanceRepository
	mockCache *MockCacheService
	service   AttendanceService
	orgID     uuid.UUID
}

func (suite *AttendanceServiceTestSuite) SetupTest() {
	suite.mockRepo = &MockAttendanceRepository{}
	suite.mockCache = &MockCacheService{}
	suite.service = NewAttendanceService(suite.mockRepo, suite.mockCache)
	suite.orgID = uuid.New()

	suite.mockRepo.Test(suite.T())
	suite.mockCache.Test(suite.T())
}

func (suite *AttendanceServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

func TestAttendanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AttendanceServiceTestSuite))
}

func (suite *AttendanceServiceTestSuite) validRequest() *CreateAttendanceRequest {
	return &CreateAttendanceRequest{
		OrganizationID:  suite.orgID,
		ServiceDate:     time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		ServiceType:     "Sunday Service",
		TotalAttendance: 150,
	}
}

func (suite *AttendanceServiceTestSuite) TestCreate_Success() {
	ctx := context.Background()
	req := suite.validRequest()

	suite.mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Service"), mock.Anything).Return(nil)
	suite.mockCache.On("InvalidateOrganization", ctx, suite.orgID).Return(nil)

	service, err := suite.service.Create(ctx, req)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.orgID, service.OrganizationID)
	assert.Equal(suite.T(), "Sunday Service", service.ServiceType)
	assert.Equal(suite.T(), 150, service.TotalAttendance)
}

func (suite *AttendanceServiceTestSuite) TestCreate_DefaultsServiceType() {
	ctx := context.Background()
	req := suite.validRequest()
	req.ServiceType = "   "

	suite.mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Service"), mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		svc := args.Get(1).(*models.Service)
		assert.Equal(suite.T(), DefaultServiceType, svc.ServiceType)
	})
	suite.mockCache.On("InvalidateOrganization", ctx, suite.orgID).Return(nil)

	_, err := suite.service.Create(ctx, req)
	assert.NoError(suite.T(), err)
}

func (suite *AttendanceServiceTestSuite) TestCreate_AttendanceBounds() {
	ctx := context.Background()

	for _, total := range []int{0, -5, common.MaxTotalAttendance + 1} {
		req := suite.validRequest()
		req.TotalAttendance = total

		_, err := suite.service.Create(ctx, req)
		assert.Error(suite.T(), err)
		assert.True(suite.T(), common.IsValidationError(err))
	}

	// Both ends of the valid range pass validation.
	for _, total := range []int{1, common.MaxTotalAttendance} {
		req := suite.validRequest()
		req.TotalAttendance = total

		suite.mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Service"), mock.Anything).Return(nil).Once()
		suite.mockCache.On("InvalidateOrganization", ctx, suite.orgID).Return(nil).Once()

		_, err := suite.service.Create(ctx, req)
		assert.NoError(suite.T(), err)
	}
}

func (suite *AttendanceServiceTestSuite) TestCreate_DuplicatePropagates() {
	ctx := context.Background()
	req := suite.validRequest()

	suite.mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Service"), mock.Anything).Return(common.ErrDuplicateRecord)

	_, err := suite.service.Create(ctx, req)
	assert.ErrorIs(suite.T(), err, common.ErrDuplicateRecord)
}

func (suite *AttendanceServiceTestSuite) TestCreate_DropsEmptyVisitors() {
	ctx := context.Background()
	req := suite.validRequest()
	req.Visitors = []models.VisitorInput{
		{Name: "Jane Mwangi", Contact: "0712 000 111"},
		{Name: "   ", Contact: ""},
		{Name: "", Contact: "0733 222 333"},
	}

	suite.mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Service"), mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		visitors := args.Get(2).([]models.VisitorInput)
		assert.Len(suite.T(), visitors, 2)
		assert.Equal(suite.T(), "Jane Mwangi", visitors[0].Name)
		assert.Equal(suite.T(), "0733 222 333", visitors[1].Contact)
	})
	suite.mockCache.On("InvalidateOrganization", ctx, suite.orgID).Return(nil)

	service, err := suite.service.Create(ctx, req)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, service.VisitorCount)
}

func (suite *AttendanceServiceTestSuite) TestCreate_TruncatesVisitorFields() {
	ctx := context.Background()
	req := suite.validRequest()
	req.Visitors = []models.VisitorInput{
		{Name: strings.Repeat("n", 600), Contact: strings.Repeat("c", 600)},
	}

	suite.mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Service"), mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		visitors := args.Get(2).([]models.VisitorInput)
		assert.Len(suite.T(), visitors, 1)
		assert.Len(suite.T(), visitors[0].Name, 100)
		assert.Len(suite.T(), visitors[0].Contact, 500)
	})
	suite.mockCache.On("InvalidateOrganization", ctx, suite.orgID).Return(nil)

	_, err := suite.service.Create(ctx, req)
	assert.NoError(suite.T(), err)
}

func (suite *AttendanceServiceTestSuite) TestCreate_CacheInvalidationFailureIsNotFatal() {
	ctx := context.Background()
	req := suite.validRequest()

	suite.mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Service"), mock.Anything).Return(nil)
	suite.mockCache.On("InvalidateOrganization", ctx, suite.orgID).Return(assert.AnError)

	_, err := suite.service.Create(ctx, req)
	assert.NoError(suite.T(), err)
}

func (suite *AttendanceServiceTestSuite) TestGetByMonth_RejectsBadMonth() {
	ctx := context.Background()

	for _, month := range []int{0, 13, -1} {
		_, err := suite.service.GetByMonth(ctx, suite.orgID, month, 2026)
		assert.Error(suite.T(), err)
		assert.True(suite.T(), common.IsValidationError(err))
	}
}

func (suite *AttendanceServiceTestSuite) TestGetRecent_ClampsCount() {
	ctx := context.Background()

	suite.mockRepo.On("GetRecent", ctx, suite.orgID, 5).Return([]*models.Service{}, nil).Once()
	_, err := suite.service.GetRecent(ctx, suite.orgID, 0)
	assert.NoError(suite.T(), err)

	suite.mockRepo.On("GetRecent", ctx, suite.orgID, 100).Return([]*models.Service{}, nil).Once()
	_, err = suite.service.GetRecent(ctx, suite.orgID, 5000)
	assert.NoError(suite.T(), err)
}
