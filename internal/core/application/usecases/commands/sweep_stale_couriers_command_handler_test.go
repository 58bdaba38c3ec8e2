package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sweepFixture struct {
	registry *services.AvailabilityRegistry
	geoIndex *services.GeoIndex
	repo     *MockCourierRepository
	handler  commands.SweepStaleCouriersCommandHandler
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()

	repo := new(MockCourierRepository)
	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("CourierRepository").Return(repo)
	uow.On("Commit", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)
	factory := new(MockCourierUoWFactory)
	factory.On("Create").Return(uow)

	registry := services.NewAvailabilityRegistry()
	geoIndex := services.NewGeoIndex()

	return &sweepFixture{
		registry: registry,
		geoIndex: geoIndex,
		repo:     repo,
		handler:  commands.NewSweepStaleCouriersCommandHandler(factory, registry, geoIndex, nil),
	}
}

func (f *sweepFixture) addCourier(t *testing.T, name string, seenAt time.Time) kernel.UUID {
	t.Helper()

	c, err := courier.NewCourier(kernel.NewUUID(), name, courier.VehicleBicycle)
	require.NoError(t, err)
	require.NoError(t, f.registry.Register(c))
	require.NoError(t, f.registry.SetOnline(c.ID()))

	loc, err := kernel.NewLocation(55.75, 37.61)
	require.NoError(t, err)
	_, err = f.registry.UpdateLocation(c.ID(), loc, seenAt)
	require.NoError(t, err)
	_, err = f.geoIndex.Upsert(c.ID(), loc, seenAt)
	require.NoError(t, err)
	return c.ID()
}

func TestSweepStaleCouriersCommandHandler_Handle_TakesSilentCourierOffline(t *testing.T) {
	f := newSweepFixture(t)
	staleID := f.addCourier(t, "Alice", time.Now().Add(-2*time.Minute))
	freshID := f.addCourier(t, "Bob", time.Now())

	f.repo.On("Update", mock.Anything, mock.AnythingOfType("*courier.Courier")).Return(nil).Once()

	cmd, err := commands.NewSweepStaleCouriersCommand(time.Minute)
	require.NoError(t, err)
	require.NoError(t, f.handler.Handle(t.Context(), cmd))

	staleView, err := f.registry.View(staleID)
	require.NoError(t, err)
	assert.Equal(t, courier.StatusOffline, staleView.Status)

	freshView, err := f.registry.View(freshID)
	require.NoError(t, err)
	assert.Equal(t, courier.StatusAvailable, freshView.Status)

	assert.Equal(t, 1, f.geoIndex.Len())
	f.repo.AssertExpectations(t)
}

func TestSweepStaleCouriersCommandHandler_Handle_SkipsCouriersHoldingWork(t *testing.T) {
	f := newSweepFixture(t)
	busyID := f.addCourier(t, "Alice", time.Now().Add(-2*time.Minute))
	require.NoError(t, f.registry.MarkOffered(busyID))
	require.NoError(t, f.registry.MarkBusy(busyID))

	cmd, err := commands.NewSweepStaleCouriersCommand(time.Minute)
	require.NoError(t, err)
	require.NoError(t, f.handler.Handle(t.Context(), cmd))

	view, err := f.registry.View(busyID)
	require.NoError(t, err)
	assert.Equal(t, courier.StatusBusy, view.Status)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSweepStaleCouriersCommandHandler_Handle_RepositoryFailureDoesNotStopSweep(t *testing.T) {
	f := newSweepFixture(t)
	first := f.addCourier(t, "Alice", time.Now().Add(-2*time.Minute))
	second := f.addCourier(t, "Bob", time.Now().Add(-2*time.Minute))

	f.repo.On("Update", mock.Anything, mock.AnythingOfType("*courier.Courier")).
		Return(errs.NewValueIsInvalidError("courier")).Twice()

	cmd, err := commands.NewSweepStaleCouriersCommand(time.Minute)
	require.NoError(t, err)
	require.NoError(t, f.handler.Handle(t.Context(), cmd))

	for _, id := range []kernel.UUID{first, second} {
		view, viewErr := f.registry.View(id)
		require.NoError(t, viewErr)
		assert.Equal(t, courier.StatusOffline, view.Status)
	}
	f.repo.AssertExpectations(t)
}

func TestSweepStaleCouriersCommand_New_RejectsNonPositiveTTL(t *testing.T) {
	_, err := commands.NewSweepStaleCouriersCommand(0)
	assert.ErrorIs(t, err, commands.ErrStaleTTLIsInvalid)
}
