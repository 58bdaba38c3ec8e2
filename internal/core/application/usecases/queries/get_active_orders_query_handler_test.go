package queries_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// nullAggregateTracker discards aggregate tracking; the read model tests
// only need seeded rows.
type nullAggregateTracker struct{}

func (nullAggregateTracker) TrackAggregate(_ kernel.UUID, _ any) {}

type GetActiveOrdersQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetActiveOrdersQueryHandler
}

func (suite *GetActiveOrdersQueryHandlerTestSuite) SetupSuite() {
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

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&orderrepo.OrderDTO{})
	suite.Require().NoError(err)

	suite.handler = queries.NewGetActiveOrdersQueryHandler(db)
}

func (suite *GetActiveOrdersQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *GetActiveOrdersQueryHandlerTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders").Error
	suite.Require().NoError(err)
}

func (suite *GetActiveOrdersQueryHandlerTestSuite) TestHandle_EmptyDatabase_ReturnsEmptySlice() {
	query := queries.NewGetActiveOrdersQuery()

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *GetActiveOrdersQueryHandlerTestSuite) TestHandle_MixedStatuses_ReturnsOnlyActiveOrders() {
	courierID := kernel.NewUUID()
	suite.seedOrder(order.StatusPending, nil)
	offered := suite.seedOrder(order.StatusOffered, nil)
	assigned := suite.seedOrder(order.StatusAssigned, &courierID)
	pickedUp := suite.seedOrder(order.StatusPickedUp, &courierID)
	suite.seedOrder(order.StatusDelivered, &courierID)
	suite.seedOrder(order.StatusCancelled, nil)
	suite.seedOrder(order.StatusUnmatched, nil)

	query := queries.NewGetActiveOrdersQuery()

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 3)

	byID := make(map[kernel.UUID]queries.GetActiveOrdersQueryResponse)
	for _, r := range result {
		byID[r.ID] = r
	}

	offeredResp, ok := byID[offered.ID()]
	suite.Require().True(ok)
	suite.Equal(order.StatusOffered, offeredResp.Status)
	suite.Nil(offeredResp.CourierID)

	assignedResp, ok := byID[assigned.ID()]
	suite.Require().True(ok)
	suite.Equal(order.StatusAssigned, assignedResp.Status)
	suite.Require().NotNil(assignedResp.CourierID)
	suite.Equal(courierID, *assignedResp.CourierID)

	pickedUpResp, ok := byID[pickedUp.ID()]
	suite.Require().True(ok)
	suite.Equal(order.StatusPickedUp, pickedUpResp.Status)

	suite.True(assigned.Pickup().IsEqual(assignedResp.Pickup))
	suite.True(assigned.Dropoff().IsEqual(assignedResp.Dropoff))
}

func (suite *GetActiveOrdersQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	invalidQuery := queries.GetActiveOrdersQuery{}

	result, err := suite.handler.Handle(context.Background(), invalidQuery)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.Contains(err.Error(), "must be created via NewGetActiveOrdersQuery constructor")
}

// seedOrder persists an order restored into the given status.
func (suite *GetActiveOrdersQueryHandlerTestSuite) seedOrder(
	status order.Status, courierID *kernel.UUID,
) *order.Order {
	pickup, err := kernel.NewLocation(55.7558, 37.6173)
	suite.Require().NoError(err)
	dropoff, err := kernel.NewLocation(55.7658, 37.6273)
	suite.Require().NoError(err)

	seeded, err := order.RestoreOrder(
		kernel.NewUUID(), pickup, dropoff, status, courierID,
		map[order.Status]time.Time{order.StatusPending: time.Now()},
	)
	suite.Require().NoError(err)

	repo := orderrepo.NewGormOrderRepository(suite.db, nullAggregateTracker{})
	suite.Require().NoError(repo.Add(context.Background(), seeded))
	return seeded
}

func TestGetActiveOrdersQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetActiveOrdersQueryHandlerTestSuite))
}
