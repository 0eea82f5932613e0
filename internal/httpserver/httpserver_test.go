package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/general_store/internal/events"
	"github.com/Skotchmaster/general_store/internal/models"
	"github.com/Skotchmaster/general_store/internal/repo"
	"github.com/Skotchmaster/general_store/internal/repo/repotest"
	"github.com/Skotchmaster/general_store/internal/service"
	"github.com/Skotchmaster/general_store/internal/transport"
	"github.com/Skotchmaster/general_store/internal/util"
	"github.com/Skotchmaster/general_store/pkg/cookies"
)

type testEnv struct {
	E    *echo.Echo
	Repo *repo.GormRepo
	Auth *service.AuthService
	Pub  *events.Memory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	r := repotest.InitTestDB(t)
	pub := &events.Memory{}
	auth := service.NewAuthService(r, pub, 0)

	e := echo.New()
	Register(e, &Deps{
		DB:             r.DB,
		AuthHandler:    &AuthHTTP{Svc: auth},
		CatalogHandler: &CatalogHTTP{Svc: service.NewCatalogService(r, nil, pub)},
		OrderHandler:   &OrderHTTP{Svc: service.NewOrderService(r, pub, []byte("http-test-secret"))},
		AccountHandler: &AccountHTTP{Cart: service.NewCartService(r), Loyalty: service.NewLoyaltyService(r)},
		OfferHandler:   &OfferHTTP{Svc: service.NewOfferService(r)},
		InboxHandler: &InboxHTTP{
			Notifications: service.NewNotificationService(r),
			Messages:      service.NewMessageService(r, pub),
			Stats:         service.NewStatsService(r),
		},
	})
	return &testEnv{E: e, Repo: r, Auth: auth, Pub: pub}
}

func (env *testEnv) do(method, path string, body any, cks ...*http.Cookie) *httptest.ResponseRecorder {
	var rd *strings.Reader
	switch b := body.(type) {
	case nil:
		rd = strings.NewReader("")
	case string:
		rd = strings.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		rd = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cks {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	res, err := env.Auth.Login(context.Background(), transport.LoginRequest{Email: email, Password: password})
	require.NoError(t, err)
	return &http.Cookie{Name: cookies.SessionCookie, Value: res.Token}
}

func (env *testEnv) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	_, err := env.Auth.CreateAdmin(context.Background(), "Owner", "owner@store.pk", "admin-pass")
	require.NoError(t, err)
	return env.login(t, "owner@store.pk", "admin-pass")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookies.SessionCookie {
			return ck
		}
	}
	return nil
}

func TestHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/ready", nil).Code)
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/auth/register", transport.RegisterRequest{
		Name: "Ayesha", Email: "Ayesha@Mail.com", Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "secret1")
	assert.NotContains(t, rec.Body.String(), "password")

	rec = env.do(http.MethodPost, "/api/v1/auth/register", transport.RegisterRequest{
		Name: "Again", Email: "ayesha@mail.com", Password: "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/auth/login", transport.LoginRequest{Email: "ayesha@mail.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/auth/login", transport.LoginRequest{Email: "ayesha@mail.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ck := sessionCookie(rec)
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)
	assert.Len(t, ck.Value, 43)

	rec = env.do(http.MethodGet, "/api/v1/auth/me", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[struct{ User models.User }](t, rec)
	assert.Equal(t, "ayesha@mail.com", me.User.Email)

	rec = env.do(http.MethodPost, "/api/v1/auth/logout", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)

	rec = env.do(http.MethodPost, "/api/v1/auth/logout", nil, ck)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/auth/me", nil, ck)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_ValidationField(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/auth/register", transport.RegisterRequest{
		Name: "A", Email: "not-an-email", Password: "secret1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "validation", body["error"])
	assert.Equal(t, "email", body["field"])

	rec = env.do(http.MethodPost, "/api/v1/auth/register", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminGuard(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/admin/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, err := env.Auth.Register(context.Background(), transport.RegisterRequest{Name: "C", Email: "c@x.pk", Password: "secret1"})
	require.NoError(t, err)
	customer := env.login(t, "c@x.pk", "secret1")
	rec = env.do(http.MethodGet, "/api/v1/admin/stats", nil, customer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	stale := &http.Cookie{Name: cookies.SessionCookie, Value: "stale"}
	rec = env.do(http.MethodGet, "/api/v1/admin/stats", nil, stale)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, sessionCookie(rec))

	admin := env.adminCookie(t)
	rec = env.do(http.MethodGet, "/api/v1/admin/stats", nil, admin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.adminCookie(t)

	rec := env.do(http.MethodPost, "/api/v1/admin/categories", transport.CreateCategoryRequest{Name: "Grocery"}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cat := decode[models.Category](t, rec)

	rec = env.do(http.MethodPost, "/api/v1/admin/products",
		`{"name":"Basmati Rice","price":"250","stock_quantity":10,"category_id":"`+cat.ID.String()+`"}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[models.Product](t, rec)
	assert.Equal(t, "piece", p.Unit)

	rec = env.do(http.MethodGet, "/api/v1/products?category=Grocery&active=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct{ Products []models.Product }](t, rec)
	require.Len(t, list.Products, 1)
	assert.Equal(t, p.ID, list.Products[0].ID)

	rec = env.do(http.MethodGet, "/api/v1/products?category=Snacks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"products":[]}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/v1/products/search?q=basmati", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[transport.SearchResponse](t, rec)
	assert.Len(t, found.Items, 1)

	rec = env.do(http.MethodGet, "/api/v1/products/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodGet, "/api/v1/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPatch, "/api/v1/admin/products/"+p.ID.String(), `{"stock_quantity":-1}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodDelete, "/api/v1/admin/products/"+p.ID.String(), nil, admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(http.MethodGet, "/api/v1/products/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func guestOrder(p *models.Product, qty int) transport.CreateOrderRequest {
	total := p.Price.Mul(decimal.NewFromInt(int64(qty)))
	return transport.CreateOrderRequest{
		CustomerName:    "Bilal",
		CustomerPhone:   "0300",
		DeliveryAddress: "12 Canal Road",
		City:            "Lahore",
		Items: []transport.CreateOrderItem{{
			ProductID: p.ID, Quantity: qty, UnitPrice: p.Price, TotalPrice: total,
		}},
		TotalAmount: total,
		FinalAmount: total,
	}
}

func TestOrderEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	rice := repotest.Product(t, env.Repo, "Rice", 250, 10, 2, nil)

	rec := env.do(http.MethodPost, "/api/v1/orders", guestOrder(rice, 3))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[transport.CreateOrderResponse](t, rec)
	assert.Nil(t, created.Order.UserID)
	require.NotEmpty(t, created.TrackingToken)

	rec = env.do(http.MethodGet, "/api/v1/orders/track?token="+created.TrackingToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tracked := decode[models.Order](t, rec)
	assert.Equal(t, created.Order.OrderNumber, tracked.OrderNumber)

	rec = env.do(http.MethodGet, "/api/v1/orders/track?token=garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/orders", guestOrder(rice, 8))
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "insufficient_stock", body["error"])
	assert.EqualValues(t, 7, body["available"])

	admin := env.adminCookie(t)
	rec = env.do(http.MethodPatch, "/api/v1/admin/orders/"+created.Order.ID.String()+"/status", `{"status":"confirmed"}`, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderConfirmed, decode[models.Order](t, rec).Status)

	rec = env.do(http.MethodPatch, "/api/v1/admin/orders/"+created.Order.ID.String()+"/status", `{"status":"shipped"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/admin/orders?status=confirmed", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[struct {
		Orders []models.Order
		Total  int64
		Meta   util.Meta
	}](t, rec)
	assert.EqualValues(t, 1, listed.Total)
	assert.EqualValues(t, 1, listed.Meta.TotalPages)
	assert.Equal(t, util.DefaultPageSize, listed.Meta.Size)
}

func TestLoggedInOrderAndCart(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	tea := repotest.Product(t, env.Repo, "Tea", 300, 10, 1, nil)

	_, err := env.Auth.Register(context.Background(), transport.RegisterRequest{Name: "Hina", Email: "hina@x.pk", Password: "secret1"})
	require.NoError(t, err)
	ck := env.login(t, "hina@x.pk", "secret1")

	rec := env.do(http.MethodGet, "/api/v1/user/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/user/cart", `{"product_id":"`+tea.ID.String()+`","quantity":2}`, ck)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart := decode[transport.CartResponse](t, rec)
	assert.Equal(t, "600", cart.Total.String())

	rec = env.do(http.MethodPut, "/api/v1/user/cart/"+tea.ID.String(), `{"quantity":0}`, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[transport.CartResponse](t, rec).Items)

	rec = env.do(http.MethodPost, "/api/v1/orders", guestOrder(tea, 1), ck)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/v1/user/orders", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode[struct{ Orders []models.Order }](t, rec)
	assert.Len(t, orders.Orders, 1)

	rec = env.do(http.MethodGet, "/api/v1/user/loyalty", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.TierBronze, decode[models.Loyalty](t, rec).MembershipLevel)
}

func TestConversationEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.adminCookie(t)

	rec := env.do(http.MethodPost, "/api/v1/conversations", `{"customer_name":"Sana","message":"Is milk in stock?"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	conv := decode[transport.ConversationResponse](t, rec).Conversation

	rec = env.do(http.MethodPost, "/api/v1/admin/conversations/"+conv.ID.String()+"/messages", `{"message":"Yes"}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/admin/conversations", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct{ Conversations []models.Conversation }](t, rec)
	require.Len(t, list.Conversations, 1)
	assert.Equal(t, 1, list.Conversations[0].UnreadCount)

	rec = env.do(http.MethodPatch, "/api/v1/admin/conversations/"+conv.ID.String()+"/read", nil, admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/admin/notifications?type=message&is_read=false", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decode[struct{ Notifications []models.Notification }](t, rec)
	assert.Len(t, notes.Notifications, 1)

	rec = env.do(http.MethodGet, "/api/v1/admin/notifications?is_read=maybe", nil, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
