package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pet_shop/internal/httpserver/mocks"
	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/service"
	"github.com/Skotchmaster/pet_shop/internal/transport"
	middleware "github.com/Skotchmaster/pet_shop/pkg/middleware/auth"
)

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func asUser(c echo.Context, id uuid.UUID, role string) {
	c.Set(middleware.CtxUserID, id.String())
	c.Set(middleware.CtxRole, role)
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "want *echo.HTTPError, got %T", err)
	return he.Code
}

const validOrderBody = `{"products":[{"product_id":"%s","quantity":2,"price":5}],"summary":{"total":20},"customer_info_id":"%s"}`

func TestOrderHTTP_CreateOrder(t *testing.T) {
	productID, addressID, userID := uuid.New(), uuid.New(), uuid.New()
	body := fmt.Sprintf(validOrderBody, productID, addressID)

	tests := []struct {
		name       string
		body       string
		user       *uuid.UUID
		setup      func(m *mocks.MockOrderService)
		wantStatus int
	}{
		{
			name: "created_for_user",
			body: body,
			user: &userID,
			setup: func(m *mocks.MockOrderService) {
				m.EXPECT().CreateOrder(gomock.Any(), &userID, gomock.Any()).
					DoAndReturn(func(_ any, _ *uuid.UUID, req transport.CreateOrderRequest) (*models.Order, error) {
						assert.Equal(t, productID, req.Items[0].ProductID)
						return &models.Order{ID: uuid.New(), UserID: &userID, Status: models.StatusPending}, nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "created_for_guest",
			body: body,
			setup: func(m *mocks.MockOrderService) {
				m.EXPECT().CreateOrder(gomock.Any(), gomock.Nil(), gomock.Any()).
					Return(&models.Order{ID: uuid.New(), Status: models.StatusPending}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "body_fails_validation",
			body:       `{"products":[],"summary":{"total":1}}`,
			setup:      func(m *mocks.MockOrderService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed_json",
			body:       `{"products":`,
			setup:      func(m *mocks.MockOrderService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "service_validation_error",
			body: body,
			setup: func(m *mocks.MockOrderService) {
				m.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: summary total mismatch", service.ErrValidation))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown_product",
			body: body,
			setup: func(m *mocks.MockOrderService) {
				m.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: product", service.ErrNotFound))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "store_failure",
			body: body,
			setup: func(m *mocks.MockOrderService) {
				m.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: create order: disk full", service.ErrInternal))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockOrderService(ctrl)
			tt.setup(svc)
			h := &OrderHTTP{Orders: svc}

			c, rec := newContext(http.MethodPost, "/api/v1/orders", tt.body)
			if tt.user != nil {
				asUser(c, *tt.user, "user")
			}

			err := h.CreateOrder(c)
			if tt.wantStatus == http.StatusCreated {
				require.NoError(t, err)
				assert.Equal(t, http.StatusCreated, rec.Code)
				return
			}
			assert.Equal(t, tt.wantStatus, httpStatus(t, err))
		})
	}
}

func TestOrderHTTP_CreateOrderReportsInvalidFields(t *testing.T) {
	h := &OrderHTTP{Orders: mocks.NewMockOrderService(gomock.NewController(t))}
	c, _ := newContext(http.MethodPost, "/api/v1/orders",
		fmt.Sprintf(`{"products":[{"product_id":"%s","quantity":0,"price":-1}],"summary":{}}`, uuid.New()))

	err := h.CreateOrder(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)

	msg, ok := he.Message.(map[string]any)
	require.True(t, ok)
	want := map[string]string{
		"products[0].quantity": "gt",
		"products[0].price":    "gte",
		"summary.total":        "required",
	}
	if diff := cmp.Diff(want, msg["fields"]); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderHTTP_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: gone", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: not yours", service.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: shipped", service.ErrInvalidTransition), http.StatusConflict},
		{fmt.Errorf("%w: again", service.ErrConflict), http.StatusConflict},
		{fmt.Errorf("%w: %w: pending", service.ErrForbidden, service.ErrInvalidTransition), http.StatusForbidden},
		{service.ErrSweepInProgress, http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusOf(tt.err), tt.err.Error())
	}
}

func TestOrderHTTP_CancelOrder(t *testing.T) {
	userID, orderID := uuid.New(), uuid.New()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockOrderService(ctrl)
	svc.EXPECT().CancelOrder(gomock.Any(), orderID, service.Actor{UserID: userID}).
		Return(&models.Order{ID: orderID, UserID: &userID, Status: models.StatusCancelled}, nil)
	h := &OrderHTTP{Orders: svc}

	c, rec := newContext(http.MethodPost, "/", "")
	asUser(c, userID, "user")
	c.SetParamNames("id")
	c.SetParamValues(orderID.String())

	require.NoError(t, h.CancelOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	want := map[string]any{"id": orderID.String(), "user_id": userID.String(), "status": "cancelled"}
	if diff := cmp.Diff(want, map[string]any{"id": got["id"], "user_id": got["user_id"], "status": got["status"]}); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderHTTP_CancelOrderRejectsBadInput(t *testing.T) {
	h := &OrderHTTP{Orders: mocks.NewMockOrderService(gomock.NewController(t))}

	c, _ := newContext(http.MethodPost, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, h.CancelOrder(c)))

	c, _ = newContext(http.MethodPost, "/", "")
	asUser(c, uuid.New(), "user")
	c.SetParamNames("id")
	c.SetParamValues("42")
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, h.CancelOrder(c)))
}

func TestOrderHTTP_ReturnOrder(t *testing.T) {
	userID, orderID := uuid.New(), uuid.New()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockOrderService(ctrl)
	svc.EXPECT().RequestReturn(gomock.Any(), orderID, userID, "damaged", "torn bag").
		Return(nil, fmt.Errorf("%w: return already requested", service.ErrConflict))
	h := &OrderHTTP{Orders: svc}

	c, _ := newContext(http.MethodPost, "/", `{"return_reason":"damaged","return_description":"torn bag"}`)
	asUser(c, userID, "user")
	c.SetParamNames("id")
	c.SetParamValues(orderID.String())
	assert.Equal(t, http.StatusConflict, httpStatus(t, h.ReturnOrder(c)))

	c, _ = newContext(http.MethodPost, "/", `{"return_description":"no reason"}`)
	asUser(c, userID, "user")
	c.SetParamNames("id")
	c.SetParamValues(orderID.String())
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, h.ReturnOrder(c)))
}
