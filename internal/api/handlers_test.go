package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/price-tracker/internal/domain"
	"github.com/maltedev/price-tracker/internal/scraper"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) List(ctx context.Context) ([]*domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Track(ctx context.Context, rawURL string) (*domain.Product, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockTracker) SetActive(ctx context.Context, id string, active bool) (*domain.Product, error) {
	args := m.Called(ctx, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

type MockChecker struct {
	started chan struct{}
}

func (m *MockChecker) Run(ctx context.Context) error {
	if m.started != nil {
		close(m.started)
	}
	return nil
}

func newTestServer(store *MockStore, tracker *MockTracker, checker *MockChecker) *httptest.Server {
	handlers := NewHandlers(store, tracker, checker, slog.Default())
	return httptest.NewServer(NewRouter(handlers))
}

func sampleProduct() *domain.Product {
	p := domain.NewProduct("Logitech MX Master 3S", "https://www.amazon.com.mx/dp/B0TEST", "Amazon")
	p.CurrentPrice = 2149.00
	p.Currency = "MXN"
	p.IsAvailable = true
	return p
}

func TestTrackProduct(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		store := new(MockStore)
		tracker := new(MockTracker)
		product := sampleProduct()
		tracker.On("Track", mock.Anything, "https://www.amazon.com.mx/dp/B0TEST").Return(product, nil)

		srv := newTestServer(store, tracker, &MockChecker{})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/v1/products", "application/json",
			strings.NewReader(`{"url":"https://www.amazon.com.mx/dp/B0TEST"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body ProductResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, product.ID.String(), body.ID)
		assert.Equal(t, 2149.00, body.CurrentPrice)
		assert.Equal(t, "MXN", body.Currency)
	})

	t.Run("missing url", func(t *testing.T) {
		srv := newTestServer(new(MockStore), new(MockTracker), &MockChecker{})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/v1/products", "application/json",
			strings.NewReader(`{}`))
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("error mapping", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			want int
		}{
			{"invalid url", domain.ErrInvalidURL, http.StatusBadRequest},
			{"duplicate", domain.ErrDuplicateURL, http.StatusConflict},
			{"unsupported vendor", scraper.ErrUnsupportedVendor, http.StatusUnprocessableEntity},
			{"invalid price", domain.ErrInvalidPrice, http.StatusUnprocessableEntity},
			{"empty content", scraper.ErrEmptyContent, http.StatusBadGateway},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tracker := new(MockTracker)
				tracker.On("Track", mock.Anything, mock.Anything).Return(nil, tt.err)

				srv := newTestServer(new(MockStore), tracker, &MockChecker{})
				defer srv.Close()

				resp, err := http.Post(srv.URL+"/api/v1/products", "application/json",
					strings.NewReader(`{"url":"https://example.com/x"}`))
				require.NoError(t, err)
				resp.Body.Close()

				assert.Equal(t, tt.want, resp.StatusCode)
			})
		}
	})
}

func TestListProducts(t *testing.T) {
	store := new(MockStore)
	store.On("List", mock.Anything).Return([]*domain.Product{sampleProduct()}, nil)

	srv := newTestServer(store, new(MockTracker), &MockChecker{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/products")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body []ProductResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, "Logitech MX Master 3S", body[0].Name)
}

func TestGetProduct(t *testing.T) {
	product := sampleProduct()

	t.Run("found", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetByID", mock.Anything, product.ID).Return(product, nil)

		srv := newTestServer(store, new(MockTracker), &MockChecker{})
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/api/v1/products/" + product.ID.String())
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown id", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetByID", mock.Anything, mock.Anything).Return(nil, nil)

		srv := newTestServer(store, new(MockTracker), &MockChecker{})
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/api/v1/products/" + uuid.NewString())
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed id", func(t *testing.T) {
		srv := newTestServer(new(MockStore), new(MockTracker), &MockChecker{})
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/api/v1/products/not-a-uuid")
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestGetProductHistory(t *testing.T) {
	product := sampleProduct()
	product.History = []domain.PriceSnapshot{
		{ID: uuid.New(), ProductID: product.ID, Price: 2399.00, Timestamp: time.Now().UTC()},
		{ID: uuid.New(), ProductID: product.ID, Price: 2299.00, Timestamp: time.Now().UTC().Add(-24 * time.Hour)},
	}

	store := new(MockStore)
	store.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	srv := newTestServer(store, new(MockTracker), &MockChecker{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/products/" + product.ID.String() + "/history")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var history []SnapshotResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Len(t, history, 2)
	assert.Equal(t, 2399.00, history[0].Price)
}

func TestPauseAndResume(t *testing.T) {
	id := uuid.NewString()

	paused := sampleProduct()
	paused.IsActive = false

	tracker := new(MockTracker)
	tracker.On("SetActive", mock.Anything, id, false).Return(paused, nil)
	tracker.On("SetActive", mock.Anything, id, true).Return(sampleProduct(), nil)

	srv := newTestServer(new(MockStore), tracker, &MockChecker{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/products/"+id+"/pause", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/v1/products/"+id+"/resume", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	tracker.AssertExpectations(t)
}

func TestPauseUnknownProduct(t *testing.T) {
	tracker := new(MockTracker)
	tracker.On("SetActive", mock.Anything, mock.Anything, false).Return(nil, domain.ErrNotFound)

	srv := newTestServer(new(MockStore), tracker, &MockChecker{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/products/"+uuid.NewString()+"/pause", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTriggerCheck(t *testing.T) {
	checker := &MockChecker{started: make(chan struct{})}

	srv := newTestServer(new(MockStore), new(MockTracker), checker)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/check", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case <-checker.started:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep did not start")
	}
}
