package queries_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type GetAvailableCouriersQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetAvailableCouriersQueryHandler
}

func (suite *GetAvailableCouriersQueryHandlerTestSuite) SetupSuite() {
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

	err = db.AutoMigrate(&courierrepo.CourierDTO{})
	suite.Require().NoError(err)

	suite.handler = queries.NewGetAvailableCouriersQueryHandler(db)
}

func (suite *GetAvailableCouriersQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *GetAvailableCouriersQueryHandlerTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE couriers").Error
	suite.Require().NoError(err)
}

func (suite *GetAvailableCouriersQueryHandlerTestSuite) TestHandle_EmptyDatabase_ReturnsEmptySlice() {
	query := queries.NewGetAvailableCouriersQuery()

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *GetAvailableCouriersQueryHandlerTestSuite) TestHandle_MixedStatuses_ReturnsOnlyAvailableSortedByName() {
	location, err := kernel.NewLocation(55.7558, 37.6173)
	suite.Require().NoError(err)
	seenAt := time.Now()

	bob := suite.seedCourier("Bob", courier.StatusAvailable, &location, seenAt)
	alice := suite.seedCourier("Alice", courier.StatusAvailable, &location, seenAt)
	suite.seedCourier("Carol", courier.StatusBusy, &location, seenAt)
	suite.seedCourier("Dave", courier.StatusOffline, nil, time.Time{})
	suite.seedCourier("Erin", courier.StatusOffered, &location, seenAt)

	query := queries.NewGetAvailableCouriersQuery()

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 2)

	suite.Equal("Alice", result[0].Name)
	suite.Equal(alice.ID(), result[0].ID)
	suite.Equal(courier.VehicleBicycle, result[0].Vehicle)
	suite.Require().NotNil(result[0].Location)
	suite.True(location.IsEqual(*result[0].Location))
	suite.WithinDuration(seenAt, result[0].LocationSeenAt, time.Millisecond)

	suite.Equal("Bob", result[1].Name)
	suite.Equal(bob.ID(), result[1].ID)
}

func (suite *GetAvailableCouriersQueryHandlerTestSuite) TestHandle_CourierWithoutLocation_ReturnsNilLocation() {
	seeded := suite.seedCourier("Frank", courier.StatusAvailable, nil, time.Time{})

	query := queries.NewGetAvailableCouriersQuery()

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.Equal(seeded.ID(), result[0].ID)
	suite.Nil(result[0].Location)
}

func (suite *GetAvailableCouriersQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	invalidQuery := queries.GetAvailableCouriersQuery{}

	result, err := suite.handler.Handle(context.Background(), invalidQuery)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.Contains(err.Error(), "must be created via NewGetAvailableCouriersQuery constructor")
}

// seedCourier persists a courier restored into the given state.
func (suite *GetAvailableCouriersQueryHandlerTestSuite) seedCourier(
	name string, status courier.Status, location *kernel.Location, seenAt time.Time,
) *courier.Courier {
	seeded, err := courier.RestoreCourier(
		kernel.NewUUID(), name, courier.VehicleBicycle, status, location, seenAt, 0, 0,
	)
	suite.Require().NoError(err)

	repo := courierrepo.NewGormCourierRepository(suite.db, nullAggregateTracker{})
	suite.Require().NoError(repo.Add(context.Background(), seeded))
	return seeded
}

func TestGetAvailableCouriersQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetAvailableCouriersQueryHandlerTestSuite))
}
