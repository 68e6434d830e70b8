package services

import (
	"context"
	"testing"

	"attendhq/internal/common"
	"attendhq/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) List(ctx context.Context, limit, offset int) ([]*models.Organization, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) AddMember(ctx context.Context, organizationID, userID uuid.UUID) error {
	args := m.Called(ctx, organizationID, userID)
	return args.Error(0)
}

func (m *MockOrganizationRepository) IsMember(ctx context.Context, organizationID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, organizationID, userID)
	return args.Bool(0), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetOrganizationIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type OrganizationServiceTestSuite struct {
	suite.Suite
	mockOrgRepo  *MockOrganizationRepository
	mockUserRepo *MockUserRepository
	service      OrganizationService
	userID       uuid.UUID
}

func (suite *OrganizationServiceTestSuite) SetupTest() {
	suite.mockOrgRepo = &MockOrganizationRepository{}
	suite.mockUserRepo = &MockUserRepository{}
	suite.service = NewOrganizationService(suite.mockOrgRepo, suite.mockUserRepo)
	suite.userID = uuid.New()

	suite.mockOrgRepo.Test(suite.T())
	suite.mockUserRepo.Test(suite.T())
}

func (suite *OrganizationServiceTestSuite) TearDownTest() {
	suite.mockOrgRepo.AssertExpectations(suite.T())
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func TestOrganizationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrganizationServiceTestSuite))
}

func (suite *OrganizationServiceTestSuite) TestCreate_DerivesKenyanSettings() {
	ctx := context.Background()
	req := &CreateOrganizationRequest{
		Name:    "Grace Chapel",
		Type:    "church",
		Country: "Kenya",
		OwnerID: suite.userID,
	}

	suite.mockOrgRepo.On("Create", ctx, mock.AnythingOfType("*models.Organization")).Return(nil)
	suite.mockOrgRepo.On("AddMember", ctx, mock.AnythingOfType("uuid.UUID"), suite.userID).Return(nil)

	org, err := suite.service.Create(ctx, req)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "KES", org.Currency)
	assert.Equal(suite.T(), "Africa/Nairobi", org.Timezone)
}

func (suite *OrganizationServiceTestSuite) TestCreate_UnknownCountryDefaults() {
	ctx := context.Background()
	req := &CreateOrganizationRequest{
		Name:    "City Fellowship",
		Type:    "church",
		Country: "Iceland",
		OwnerID: suite.userID,
	}

	suite.mockOrgRepo.On("Create", ctx, mock.AnythingOfType("*models.Organization")).Return(nil)
	suite.mockOrgRepo.On("AddMember", ctx, mock.AnythingOfType("uuid.UUID"), suite.userID).Return(nil)

	org, err := suite.service.Create(ctx, req)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "USD", org.Currency)
	assert.Equal(suite.T(), "UTC", org.Timezone)
}

func (suite *OrganizationServiceTestSuite) TestCreate_RequiresName() {
	ctx := context.Background()
	req := &CreateOrganizationRequest{
		Name:    "  ",
		Country: "Kenya",
		OwnerID: suite.userID,
	}

	_, err := suite.service.Create(ctx, req)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsValidationError(err))
}

func (suite *OrganizationServiceTestSuite) TestGetUserOrganizations_SkipsMissing() {
	ctx := context.Background()
	liveID := uuid.New()
	goneID := uuid.New()

	suite.mockUserRepo.On("GetOrganizationIDs", ctx, suite.userID).Return([]uuid.UUID{goneID, liveID}, nil)
	suite.mockOrgRepo.On("GetByID", ctx, goneID).Return(nil, common.ErrNotFound)
	suite.mockOrgRepo.On("GetByID", ctx, liveID).Return(&models.Organization{ID: liveID, Name: "Grace Chapel"}, nil)

	orgs, err := suite.service.GetUserOrganizations(ctx, suite.userID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), orgs, 1)
	assert.Equal(suite.T(), liveID, orgs[0].ID)
}

func (suite *OrganizationServiceTestSuite) TestGetUserOrganizations_EmptyIsNotAnError() {
	ctx := context.Background()

	suite.mockUserRepo.On("GetOrganizationIDs", ctx, suite.userID).Return([]uuid.UUID{}, nil)

	orgs, err := suite.service.GetUserOrganizations(ctx, suite.userID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), orgs)
}

func (suite *OrganizationServiceTestSuite) TestGetUserOrganizations_StoreFailurePropagates() {
	ctx := context.Background()
	orgID := uuid.New()

	suite.mockUserRepo.On("GetOrganizationIDs", ctx, suite.userID).Return([]uuid.UUID{orgID}, nil)
	suite.mockOrgRepo.On("GetByID", ctx, orgID).Return(nil, common.ErrStoreUnavailable)

	_, err := suite.service.GetUserOrganizations(ctx, suite.userID)
	assert.ErrorIs(suite.T(), err, common.ErrStoreUnavailable)
}

func (suite *OrganizationServiceTestSuite) TestEnsureUserOrgAccess() {
	ctx := context.Background()
	orgID := uuid.New()

	suite.mockOrgRepo.On("AddMember", ctx, orgID, suite.userID).Return(nil)
	suite.mockUserRepo.On("TouchLastLogin", ctx, suite.userID).Return(nil)

	err := suite.service.EnsureUserOrgAccess(ctx, suite.userID, orgID)
	assert.NoError(suite.T(), err)
}

func (suite *OrganizationServiceTestSuite) TestUpdate_KeepsSettingsWhenOmitted() {
	ctx := context.Background()
	orgID := uuid.New()
	existing := &models.Organization{
		ID:       orgID,
		Name:     "Grace Chapel",
		Country:  "Kenya",
		Currency: "KES",
		Timezone: "Africa/Nairobi",
	}

	suite.mockOrgRepo.On("GetByID", ctx, orgID).Return(existing, nil)
	suite.mockOrgRepo.On("Update", ctx, mock.AnythingOfType("*models.Organization")).Return(nil).Run(func(args mock.Arguments) {
		updated := args.Get(1).(*models.Organization)
		assert.Equal(suite.T(), "Grace Chapel Intl", updated.Name)
		assert.Equal(suite.T(), "KES", updated.Currency)
		assert.Equal(suite.T(), "Africa/Nairobi", updated.Timezone)
	})

	err := suite.service.Update(ctx, &UpdateOrganizationRequest{
		ID:      orgID,
		Name:    "Grace Chapel Intl",
		Type:    "church",
		Country: "Kenya",
	})
	assert.NoError(suite.T(), err)
}
