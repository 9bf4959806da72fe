package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/murdhanno/backend/internal/application/catalog"
	identityapp "github.com/murdhanno/backend/internal/application/identity"
	printapp "github.com/murdhanno/backend/internal/application/printing"
	shippingapp "github.com/murdhanno/backend/internal/application/shipping"
	tradeapp "github.com/murdhanno/backend/internal/application/trade"
	"github.com/murdhanno/backend/internal/domain/catalog"
	"github.com/murdhanno/backend/internal/domain/identity"
	domainprinting "github.com/murdhanno/backend/internal/domain/printing"
	"github.com/murdhanno/backend/internal/infrastructure/auth"
	"github.com/murdhanno/backend/internal/infrastructure/config"
	"github.com/murdhanno/backend/internal/infrastructure/persistence"
	infra "github.com/murdhanno/backend/internal/infrastructure/printing"
	"github.com/murdhanno/backend/internal/interfaces/http/dto"
	"github.com/murdhanno/backend/internal/interfaces/http/middleware"
	"github.com/murdhanno/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	adminPassword = "admin-pass-1"
	userPassword  = "user-pass-1"
)

// testEnv is the full HTTP stack over an in-memory database
type testEnv struct {
	t       *testing.T
	engine  *gin.Engine
	db      *gorm.DB
	admin   *identity.User
	user    *identity.User
	jwt     *auth.JWTService
	tokens  map[string]string
	refresh map[string]string
	// saree and panjabi are stocked products orders draw from
	saree   *catalog.Product
	panjabi *catalog.Product
	courier *stubCourier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	middleware.SetupValidator()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, persistence.AutoMigrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })

	userRepo := persistence.NewGormUserRepository(db)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-32-characters",
		RefreshSecret:          "handler-test-refresh-32-characters",
		Issuer:                 "murdhanno-test",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
	})
	authService := identityapp.NewAuthService(userRepo, persistence.NewGormLoginAttemptRepository(db),
		jwtService, auth.NewInMemoryTokenBlacklist(), zap.NewNop())
	userService := identityapp.NewUserService(userRepo, zap.NewNop())
	productRepo := persistence.NewGormProductRepository(db)
	catalogService := catalogapp.NewCatalogService(persistence.NewGormProductTypeRepository(db),
		persistence.NewGormSizeGroupRepository(db), productRepo, zap.NewNop())
	orderService := tradeapp.NewOrderService(persistence.NewGormOrderRepository(db), persistence.NewGormTransactionScope(db))

	storage, err := infra.NewFileSystemStorage(&infra.FileSystemStorageConfig{BasePath: t.TempDir()})
	require.NoError(t, err)
	printService := printapp.NewInvoicePrintService(orderService, persistence.NewGormPrintJobRepository(db),
		infra.NewInvoiceRenderer(), storage, printapp.Config{
			DefaultPaperSize: domainprinting.PaperSizeLabel4x6,
			JobRetention:     24 * time.Hour,
		})

	courier := newStubCourier()
	shipmentRepo := persistence.NewGormShipmentRepository(db)
	shippingService := shippingapp.NewShippingService(courier, persistence.NewGormLocationRepository(db),
		shipmentRepo, persistence.NewGormOrderRepository(db), persistence.NewGormShippingTransactionScope(db),
		shippingapp.Config{DefaultStoreID: 7, LocationTTL: time.Hour})

	env := &testEnv{t: t, db: db, jwt: jwtService, tokens: map[string]string{}, refresh: map[string]string{}, courier: courier}
	env.admin = env.seedUser(userRepo, "admin", adminPassword, identity.RoleAdmin)
	env.user = env.seedUser(userRepo, "rafi", userPassword, identity.RoleUser)
	env.saree = env.seedProduct(db, "Saree", "Jamdani", "JS", "FREE", "3200")
	env.panjabi = env.seedProduct(db, "Panjabi", "Cotton", "CP", "XL", "950.50")

	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.Revocations = authService
	authMiddleware := middleware.JWTAuthMiddlewareWithConfig(jwtCfg)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	printHandler := NewPrintHandler(printService)
	shippingHandler := NewShippingHandler(shippingService)
	systemHandler := NewSystemHandler("murdhanno-backend", "test").
		AddCheck("database", func(ctx context.Context) error { return sqlDB.PingContext(ctx) })
	engine.GET("/health", systemHandler.Health)
	router.NewRouter(engine).Register(
		SystemRoutes(systemHandler),
		AuthRoutes(NewAuthHandler(authService), authMiddleware, nil),
		UserRoutes(NewUserHandler(userService), authMiddleware),
		CatalogRoutes(NewCatalogHandler(catalogService), authMiddleware),
		OrderRoutes(NewOrderHandler(orderService, printService), printHandler, shippingHandler, authMiddleware),
		CourierRoutes(shippingHandler, authMiddleware),
		PrintRoutes(printHandler, authMiddleware),
		ReportRoutes(NewReportHandler(orderService), authMiddleware),
	).Setup()
	env.engine = engine
	return env
}

func (e *testEnv) seedUser(repo *persistence.GormUserRepository, username, password string, role identity.Role) *identity.User {
	e.t.Helper()
	user, err := identity.NewUser(username, username+"@murdhanno.test", password, role)
	require.NoError(e.t, err)
	require.NoError(e.t, repo.Save(context.Background(), user))
	return user
}

// seedProduct stores a product of a new type with 100 units in stock
func (e *testEnv) seedProduct(db *gorm.DB, typeName, name, code, size, price string) *catalog.Product {
	e.t.Helper()
	ctx := context.Background()
	pt, err := catalog.NewProductType(typeName, "")
	require.NoError(e.t, err)
	require.NoError(e.t, persistence.NewGormProductTypeRepository(db).Save(ctx, pt))
	p, err := catalog.NewProduct(catalog.ProductSpec{
		ProductTypeID: pt.ID,
		Name:          name,
		Code:          code,
		Size:          size,
		Quantity:      100,
		Price:         decimal.RequireFromString(price),
	})
	require.NoError(e.t, err)
	require.NoError(e.t, persistence.NewGormProductRepository(db).Save(ctx, p))
	p.TypeName = pt.Name
	return p
}

// do sends a JSON request; token may be empty
func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// login returns a cached access token for username
func (e *testEnv) login(username, password string) string {
	e.t.Helper()
	if token, ok := e.tokens[username]; ok {
		return token
	}
	w := e.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: username, Password: password})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	decodeData(e.t, w, &resp)
	e.tokens[username] = resp.Token.AccessToken
	e.refresh[username] = resp.Token.RefreshToken
	return resp.Token.AccessToken
}

func (e *testEnv) adminToken() string { return e.login("admin", adminPassword) }

func (e *testEnv) userToken() string { return e.login("rafi", userPassword) }

// createOrder posts a two-item order as the given token
func (e *testEnv) createOrder(token string) tradeapp.OrderResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/v1/orders", token, e.sampleOrderRequest())
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var order tradeapp.OrderResponse
	decodeData(e.t, w, &order)
	return order
}

// sampleOrderRequest orders one saree and two panjabis
func (e *testEnv) sampleOrderRequest() map[string]any {
	return map[string]any{
		"customer_name":    "Nusrat Jahan",
		"customer_phone":   "01711000000",
		"customer_address": "House 12, Road 5, Dhanmondi",
		"city_name":        "Dhaka",
		"zone_name":        "Dhanmondi",
		"delivery_charge":  "60",
		"discount":         "10",
		"items": []map[string]any{
			{"product_id": e.saree.ID, "quantity": 1},
			{"product_id": e.panjabi.ID, "quantity": 2},
		},
	}
}

// decodeData unwraps the data field of a success envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

// decodeError returns the error block of a failure envelope
func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

// decodeJSON decodes the whole response body into out
func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
