package offerrepo_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/offerrepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	m.Called(id, aggregate)
}

// OfferRepositoryIntegrationTestSuite provides integration tests for OfferRepository
// using PostgreSQL containers to verify database persistence behavior.
type OfferRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *offerrepo.GormOfferRepository
	tracker    *MockAggregateTracker
}

func (suite *OfferRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&offerrepo.OfferDTO{}))
}

func (suite *OfferRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE offers").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = offerrepo.NewGormOfferRepository(suite.db, suite.tracker)
}

func (suite *OfferRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OfferRepositoryIntegrationTestSuite) TestAdd_PendingOffer_RoundTripsAggregate() {
	ctx := context.Background()

	pending := suite.createPendingOffer(kernel.NewUUID(), time.Now())
	suite.tracker.On("TrackAggregate", pending.ID(), pending).Once()
	suite.Require().NoError(suite.repository.Add(ctx, pending))

	retrieved, err := suite.repository.Get(ctx, pending.ID())
	suite.Require().NoError(err)

	suite.Equal(pending.ID(), retrieved.ID())
	suite.Equal(pending.OrderID(), retrieved.OrderID())
	suite.Equal(pending.CourierID(), retrieved.CourierID())
	suite.Equal(offer.StatusPending, retrieved.Status())
	suite.WithinDuration(pending.ExpiresAt(), retrieved.ExpiresAt(), time.Millisecond)
	suite.Nil(retrieved.ResolvedAt())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OfferRepositoryIntegrationTestSuite) TestUpdate_PersistsResolution() {
	ctx := context.Background()

	pending := suite.createPendingOffer(kernel.NewUUID(), time.Now())
	suite.tracker.On("TrackAggregate", pending.ID(), pending).Twice()
	suite.Require().NoError(suite.repository.Add(ctx, pending))

	resolvedAt := time.Now()
	suite.Require().NoError(pending.Accept(pending.CourierID(), resolvedAt))
	suite.Require().NoError(suite.repository.Update(ctx, pending))

	retrieved, err := suite.repository.Get(ctx, pending.ID())
	suite.Require().NoError(err)

	suite.Equal(offer.StatusAccepted, retrieved.Status())
	suite.Require().NotNil(retrieved.ResolvedAt())
	suite.WithinDuration(resolvedAt, *retrieved.ResolvedAt(), time.Millisecond)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OfferRepositoryIntegrationTestSuite) TestGet_NonExistentOffer_ReturnsNotFoundError() {
	ctx := context.Background()

	retrieved, err := suite.repository.Get(ctx, kernel.NewUUID())

	suite.Nil(retrieved)
	suite.Require().Error(err)

	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OfferRepositoryIntegrationTestSuite) TestGetAllForOrder_ReturnsAuditTrailOldestFirst() {
	ctx := context.Background()

	orderID := kernel.NewUUID()
	first := suite.createPendingOffer(orderID, time.Now().Add(-time.Minute))
	suite.Require().NoError(first.Expire(time.Now().Add(-45*time.Second)))
	second := suite.createPendingOffer(orderID, time.Now())
	unrelated := suite.createPendingOffer(kernel.NewUUID(), time.Now())

	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything).Times(3)
	suite.Require().NoError(suite.repository.Add(ctx, second))
	suite.Require().NoError(suite.repository.Add(ctx, unrelated))
	suite.Require().NoError(suite.repository.Add(ctx, first))

	offers, err := suite.repository.GetAllForOrder(ctx, orderID)
	suite.Require().NoError(err)
	suite.Require().Len(offers, 2)

	suite.Equal(first.ID(), offers[0].ID())
	suite.Equal(offer.StatusExpired, offers[0].Status())
	suite.Equal(second.ID(), offers[1].ID())
	suite.Equal(offer.StatusPending, offers[1].Status())

	suite.tracker.AssertExpectations(suite.T())
}

// createPendingOffer extends a fresh offer for the given order.
func (suite *OfferRepositoryIntegrationTestSuite) createPendingOffer(
	orderID kernel.UUID, createdAt time.Time,
) *offer.Offer {
	pending, err := offer.NewOffer(kernel.NewUUID(), orderID, kernel.NewUUID(), createdAt, 15*time.Second)
	suite.Require().NoError(err)
	return pending
}

func TestOfferRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OfferRepositoryIntegrationTestSuite))
}
