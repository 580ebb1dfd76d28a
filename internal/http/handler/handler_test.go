package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	storeMocks "fileintake/internal/storage/mocks"
)

func TestHealthEndpoints(t *testing.T) {
	t.Run("health ok when both stores respond", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		dbMock.ExpectPing()

		mStore := new(storeMocks.MockObjectStore)
		mStore.On("Ping", mock.Anything).Return(nil)

		app := fiber.New()
		RegisterRoutes(app, db, mStore, prometheus.NewRegistry())

		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("health unavailable when db ping fails", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		dbMock.ExpectPing().WillReturnError(assert.AnError)

		mStore := new(storeMocks.MockObjectStore)

		app := fiber.New()
		RegisterRoutes(app, db, mStore, prometheus.NewRegistry())

		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
		mStore.AssertNotCalled(t, "Ping", mock.Anything)
	})

	t.Run("health unavailable when bucket check fails", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		dbMock.ExpectPing()

		mStore := new(storeMocks.MockObjectStore)
		mStore.On("Ping", mock.Anything).Return(assert.AnError)

		app := fiber.New()
		RegisterRoutes(app, db, mStore, prometheus.NewRegistry())

		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("healthz is always ok", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		app := fiber.New()
		RegisterRoutes(app, db, new(storeMocks.MockObjectStore), prometheus.NewRegistry())

		resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("metrics endpoint serves the registry", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		app := fiber.New()
		RegisterRoutes(app, db, new(storeMocks.MockObjectStore), prometheus.NewRegistry())

		resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
