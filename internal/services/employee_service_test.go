package services

import (
	"testing"

	"freshcart/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmployeeFixture(t *testing.T) (*fakeEmployeeRepo, EmployeeService) {
	t.Helper()
	repo := newFakeEmployeeRepo()
	return repo, NewEmployeeService(repo, nil, 0)
}

func TestLocationFallsBackToStoredRow(t *testing.T) {
	repo, svc := newEmployeeFixture(t)
	require.NoError(t, repo.Create(&models.Employee{UserID: 1, StoreID: 1}))

	_, _, err := svc.Location(1)
	assert.ErrorIs(t, err, ErrLocationUnknown)

	require.NoError(t, svc.UpdateLocation(1, 1.3, 103.8))
	lat, lng, err := svc.Location(1)
	require.NoError(t, err)
	assert.Equal(t, 1.3, lat)
	assert.Equal(t, 103.8, lng)
}

func TestLocationUnknownEmployee(t *testing.T) {
	_, svc := newEmployeeFixture(t)
	_, _, err := svc.Location(99)
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestOnlineWithoutCacheIsFalse(t *testing.T) {
	_, svc := newEmployeeFixture(t)
	assert.False(t, svc.Online(1))
}

func TestSetAvailability(t *testing.T) {
	repo, svc := newEmployeeFixture(t)
	require.NoError(t, repo.Create(&models.Employee{UserID: 1, StoreID: 1, IsAvailable: true}))

	require.NoError(t, svc.SetAvailability(1, false))
	employee, err := svc.GetByID(1)
	require.NoError(t, err)
	assert.False(t, employee.IsAvailable)

	assert.ErrorIs(t, svc.SetAvailability(99, true), ErrEmployeeNotFound)
}

func TestRecordDeliveryFoldsRatingIntoAverage(t *testing.T) {
	repo, svc := newEmployeeFixture(t)
	require.NoError(t, repo.Create(&models.Employee{UserID: 1, StoreID: 1, Rating: 4.0, RatingCount: 1}))

	five := 5.0
	require.NoError(t, svc.RecordDelivery(1, &five))

	employee, err := svc.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, 1, employee.DeliveredCount)
	assert.Equal(t, 2, employee.RatingCount)
	assert.InDelta(t, 4.5, employee.Rating, 1e-9)
}

func TestRecordDeliveryIgnoresOutOfRangeRating(t *testing.T) {
	repo, svc := newEmployeeFixture(t)
	require.NoError(t, repo.Create(&models.Employee{UserID: 1, StoreID: 1, Rating: 4.0, RatingCount: 2}))

	bad := 7.0
	require.NoError(t, svc.RecordDelivery(1, &bad))

	employee, err := svc.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, 1, employee.DeliveredCount)
	assert.Equal(t, 2, employee.RatingCount)
	assert.Equal(t, 4.0, employee.Rating)
}
