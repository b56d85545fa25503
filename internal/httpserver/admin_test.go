package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pet_shop/internal/httpserver/mocks"
	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/service"
)

func TestAdminHTTP_Reconcile(t *testing.T) {
	ctrl := gomock.NewController(t)
	maint := mocks.NewMockMaintenanceService(ctrl)
	h := &AdminHTTP{Maintenance: maint}

	want := service.StockReport{FoodsUpdated: 3, AccessoriesUpdated: 2, ProductsWithSales: 4}
	maint.EXPECT().RecomputeRemainingStock(gomock.Any()).Return(want, nil)

	c, rec := newContext(http.MethodPost, "/api/v1/admin/reconcile", "")
	require.NoError(t, h.Reconcile(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got service.StockReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}

	maint.EXPECT().RecomputeRemainingStock(gomock.Any()).Return(service.StockReport{}, service.ErrSweepInProgress)
	c, _ = newContext(http.MethodPost, "/api/v1/admin/reconcile", "")
	assert.Equal(t, http.StatusConflict, httpStatus(t, h.Reconcile(c)))
}

func TestAdminHTTP_CleanupOrders(t *testing.T) {
	ctrl := gomock.NewController(t)
	maint := mocks.NewMockMaintenanceService(ctrl)
	gomock.InOrder(
		maint.EXPECT().CleanupInvalidOrders(gomock.Any()).Return(int64(2), nil),
		maint.EXPECT().CleanupDanglingOrders(gomock.Any()).Return(int64(1), nil),
	)
	h := &AdminHTTP{Maintenance: maint}

	c, rec := newContext(http.MethodPost, "/", "")
	require.NoError(t, h.CleanupOrders(c))

	var got map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, map[string]int{"invalid_removed": 2, "dangling_removed": 1}, got)
}

func TestAdminHTTP_Revenue(t *testing.T) {
	ctrl := gomock.NewController(t)
	reports := mocks.NewMockReportService(ctrl)
	h := &AdminHTTP{Reports: reports}

	reports.EXPECT().Revenue(gomock.Any(), service.PeriodWeek).Return(&service.RevenueReport{
		Period:       service.PeriodWeek,
		Buckets:      []service.Bucket{{Label: "2026-03-16", Revenue: 35, Orders: 2}},
		TotalRevenue: 35,
		TotalOrders:  2,
	}, nil)

	c, rec := newContext(http.MethodGet, "/api/v1/admin/reports/revenue?period=week", "")
	require.NoError(t, h.Revenue(c))

	var got service.RevenueReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, service.PeriodWeek, got.Period)
	assert.InDelta(t, 35, got.TotalRevenue, 1e-9)
	require.Len(t, got.Buckets, 1)

	c, _ = newContext(http.MethodGet, "/api/v1/admin/reports/revenue?period=fortnight", "")
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, h.Revenue(c)))
}

func TestAdminHTTP_UpdateStatus(t *testing.T) {
	adminID, orderID := uuid.New(), uuid.New()

	ctrl := gomock.NewController(t)
	orders := mocks.NewMockOrderService(ctrl)
	orders.EXPECT().UpdateStatus(gomock.Any(), orderID, models.StatusShipped, adminID).
		Return(&models.Order{ID: orderID, Status: models.StatusShipped}, nil)
	orders.EXPECT().UpdateStatus(gomock.Any(), orderID, models.StatusPending, adminID).
		Return(nil, service.ErrInvalidTransition)
	h := &AdminHTTP{Orders: orders}

	c, rec := newContext(http.MethodPatch, "/", `{"status":"shipped"}`)
	asUser(c, adminID, "admin")
	c.SetParamNames("id")
	c.SetParamValues(orderID.String())
	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, _ = newContext(http.MethodPatch, "/", `{"status":"pending"}`)
	asUser(c, adminID, "admin")
	c.SetParamNames("id")
	c.SetParamValues(orderID.String())
	assert.Equal(t, http.StatusConflict, httpStatus(t, h.UpdateStatus(c)))
}

func TestAdminHTTP_SearchWithoutBackend(t *testing.T) {
	h := &AdminHTTP{}
	c, _ := newContext(http.MethodGet, "/api/v1/admin/orders/search?q=returned", "")
	assert.Equal(t, http.StatusServiceUnavailable, httpStatus(t, h.SearchOrders(c)))
}
