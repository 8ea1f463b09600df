package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/apperr"
	"storefront/config"
	"storefront/models"
	"storefront/payment"
	"storefront/store"
	"storefront/testutil"
)

type fakeGateway struct {
	sales   []payment.SaleRequest
	saleErr error
}

func (f *fakeGateway) ClientToken(ctx context.Context) (string, error) {
	return "client-token-abc", nil
}

func (f *fakeGateway) Sale(ctx context.Context, req payment.SaleRequest) (models.PaymentResult, error) {
	f.sales = append(f.sales, req)
	if f.saleErr != nil {
		return models.PaymentResult{}, f.saleErr
	}
	return models.PaymentResult{
		TransactionID: "tx-" + req.Nonce,
		Status:        "SUBMITTED_FOR_SETTLEMENT",
		Amount:        req.Amount,
		Currency:      "USD",
		Success:       true,
		Raw:           json.RawMessage(`{"id":"tx-` + req.Nonce + `"}`),
	}, nil
}

type testServer struct {
	router  *gin.Engine
	deps    *Dependencies
	gateway *fakeGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret-test-secret-test-secret"
	cfg.Auth.BcryptCost = 4
	cfg.Redis.ProductCacheTTL = time.Minute

	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	gateway := &fakeGateway{}
	deps := NewDependencies(cfg, db, rdb, gateway)

	return &testServer{router: SetupRouters(deps), deps: deps, gateway: gateway}
}

type response struct {
	code int
	body map[string]interface{}
	raw  []byte
}

func (s *testServer) request(t *testing.T, method, path, token string, body interface{}) response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return s.serve(t, req)
}

func (s *testServer) serve(t *testing.T, req *http.Request) response {
	t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	res := response{code: w.Code, raw: w.Body.Bytes()}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &res.body); err != nil {
			t.Fatalf("decode %s: %v", w.Body, err)
		}
	}
	return res
}

func registerBody(email string) map[string]interface{} {
	return map[string]interface{}{
		"name":     "Test User",
		"email":    email,
		"password": "s3cret-pass",
		"phone":    "555-0100",
		"address":  "12 Market Street",
		"answer":   "football",
	}
}

// 註冊並回傳token
func (s *testServer) register(t *testing.T, email string) (uint, string) {
	t.Helper()
	res := s.request(t, http.MethodPost, "/api/register", "", registerBody(email))
	if res.code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", email, res.code, res.raw)
	}
	user := res.body["user"].(map[string]interface{})
	return uint(user["id"].(float64)), res.body["token"].(string)
}

func (s *testServer) admin(t *testing.T, email string) string {
	t.Helper()
	id, token := s.register(t, email)
	if err := s.deps.Users.SetRole(context.Background(), id, models.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	return token
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func productInput(name string, price decimal.Decimal, quantity int, categoryID uint) store.ProductInput {
	return store.ProductInput{
		Name:        name,
		Description: "sample",
		Price:       &price,
		Quantity:    &quantity,
		CategoryID:  categoryID,
		Photo:       &models.Photo{Data: pngHeader, ContentType: "image/png"},
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "dup@example.com")

	res := s.request(t, http.MethodPost, "/api/register", "", registerBody("DUP@example.com"))
	if res.code != http.StatusConflict || res.body["success"] != false {
		t.Fatalf("duplicate register = %d %s", res.code, res.raw)
	}
	if _, ok := res.body["token"]; ok {
		t.Error("token issued for duplicate registration")
	}

	customers, _ := s.deps.Users.ListCustomers(context.Background())
	if len(customers) != 1 {
		t.Errorf("users = %d, want 1", len(customers))
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	body := registerBody("missing@example.com")
	delete(body, "answer")
	res := s.request(t, http.MethodPost, "/api/register", "", body)
	if res.code != http.StatusBadRequest {
		t.Fatalf("status = %d", res.code)
	}
	fields, _ := res.body["fields"].(map[string]interface{})
	if fields["answer"] != "required" {
		t.Errorf("fields = %v", fields)
	}

	body = registerBody("noaddress@example.com")
	delete(body, "address")
	if res := s.request(t, http.MethodPost, "/api/register", "", body); res.code != http.StatusBadRequest {
		t.Errorf("missing address status = %d", res.code)
	}
}

func TestRegisterHidesSecrets(t *testing.T) {
	s := newTestServer(t)
	res := s.request(t, http.MethodPost, "/api/register", "", registerBody("secret@example.com"))
	if bytes.Contains(res.raw, []byte("s3cret-pass")) || bytes.Contains(res.raw, []byte("football")) {
		t.Errorf("response leaks secrets: %s", res.raw)
	}
	user := res.body["user"].(map[string]interface{})
	address := user["address"].(map[string]interface{})
	if address["street"] != "12 Market Street" {
		t.Errorf("address = %v", address)
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "login@example.com")

	tests := []struct {
		name      string
		body      map[string]string
		wantCode  int
		wantToken bool
	}{
		{"success", map[string]string{"email": "login@example.com", "password": "s3cret-pass"}, http.StatusOK, true},
		{"wrong password", map[string]string{"email": "login@example.com", "password": "nope"}, http.StatusUnauthorized, false},
		{"unknown email", map[string]string{"email": "ghost@example.com", "password": "s3cret-pass"}, http.StatusNotFound, false},
		{"missing password", map[string]string{"email": "login@example.com"}, http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.request(t, http.MethodPost, "/api/login", "", tt.body)
			if res.code != tt.wantCode {
				t.Errorf("status = %d, want %d (%s)", res.code, tt.wantCode, res.raw)
			}
			_, hasToken := res.body["token"]
			if hasToken != tt.wantToken {
				t.Errorf("token present = %v, want %v", hasToken, tt.wantToken)
			}
		})
	}
}

func TestForgotPasswordThenLogin(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "forgot@example.com")

	res := s.request(t, http.MethodPost, "/api/forgot-password", "", map[string]string{
		"email": "forgot@example.com", "answer": "wrong", "newPassword": "brand-new",
	})
	if res.code != http.StatusNotFound || res.body["message"] != "invalid information" {
		t.Fatalf("wrong answer = %d %s", res.code, res.raw)
	}

	res = s.request(t, http.MethodPost, "/api/forgot-password", "", map[string]string{
		"email": "forgot@example.com", "answer": "football", "newPassword": "brand-new",
	})
	if res.code != http.StatusOK {
		t.Fatalf("reset = %d %s", res.code, res.raw)
	}

	if res := s.request(t, http.MethodPost, "/api/login", "", map[string]string{"email": "forgot@example.com", "password": "s3cret-pass"}); res.code != http.StatusUnauthorized {
		t.Errorf("old password still works: %d", res.code)
	}
	if res := s.request(t, http.MethodPost, "/api/login", "", map[string]string{"email": "forgot@example.com", "password": "brand-new"}); res.code != http.StatusOK {
		t.Errorf("new password login = %d", res.code)
	}
}

func TestUpdateProfileKeepsUnsetFields(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "profile@example.com")

	res := s.request(t, http.MethodPut, "/api/profile", token, map[string]interface{}{
		"phone": "555-9999",
	})
	if res.code != http.StatusOK {
		t.Fatalf("update = %d %s", res.code, res.raw)
	}
	user := res.body["updatedUser"].(map[string]interface{})
	if user["phone"] != "555-9999" || user["name"] != "Test User" {
		t.Errorf("updated user = %v", user)
	}

	if res := s.request(t, http.MethodPost, "/api/login", "", map[string]string{"email": "profile@example.com", "password": "s3cret-pass"}); res.code != http.StatusOK {
		t.Errorf("password changed without being supplied: %d", res.code)
	}

	s.request(t, http.MethodPut, "/api/profile", token, map[string]interface{}{"password": "changed-pass"})
	if res := s.request(t, http.MethodPost, "/api/login", "", map[string]string{"email": "profile@example.com", "password": "changed-pass"}); res.code != http.StatusOK {
		t.Errorf("login with updated password = %d", res.code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "logout@example.com")

	if res := s.request(t, http.MethodGet, "/api/user-auth", token, nil); res.code != http.StatusOK || res.body["ok"] != true {
		t.Fatalf("user-auth = %d %s", res.code, res.raw)
	}
	if res := s.request(t, http.MethodPost, "/api/logout", token, nil); res.code != http.StatusOK {
		t.Fatalf("logout = %d", res.code)
	}
	if res := s.request(t, http.MethodGet, "/api/user-auth", token, nil); res.code != http.StatusUnauthorized {
		t.Errorf("user-auth after logout = %d", res.code)
	}
}

func TestAdminRoutesRejectBeforeHandler(t *testing.T) {
	s := newTestServer(t)
	_, customer := s.register(t, "customer@example.com")
	admin := s.admin(t, "admin@example.com")

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/admin-auth"},
		{http.MethodGet, "/api/all-users"},
		{http.MethodGet, "/api/all-orders"},
		{http.MethodPut, "/api/order-status/1"},
		{http.MethodDelete, "/api/delete-users/1"},
		{http.MethodPost, "/api/category/create-category"},
		{http.MethodDelete, "/api/product/delete-product/1"},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			if res := s.request(t, r.method, r.path, "", nil); res.code != http.StatusUnauthorized {
				t.Errorf("anonymous = %d, want 401", res.code)
			}
			if res := s.request(t, r.method, r.path, customer, nil); res.code != http.StatusForbidden {
				t.Errorf("customer = %d, want 403", res.code)
			}
		})
	}

	// 管理員的使用者仍然存在
	customers, _ := s.deps.Users.ListCustomers(context.Background())
	if len(customers) != 1 {
		t.Errorf("customers = %d, want 1", len(customers))
	}

	if res := s.request(t, http.MethodGet, "/api/admin-auth", admin, nil); res.code != http.StatusOK {
		t.Errorf("admin probe = %d", res.code)
	}
	res := s.request(t, http.MethodGet, "/api/all-users", admin, nil)
	if users := res.body["users"].([]interface{}); len(users) != 1 {
		t.Errorf("all-users = %d entries, want 1 (admins excluded)", len(users))
	}
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	buyerID, token := s.register(t, "buyer@example.com")

	res := s.request(t, http.MethodGet, "/api/product/braintree/token", "", nil)
	if res.code != http.StatusOK || res.body["clientToken"] != "client-token-abc" {
		t.Fatalf("token = %d %s", res.code, res.raw)
	}

	cart := []map[string]interface{}{
		{"productId": 1, "name": "Shirt", "price": 10, "qty": 2},
		{"productId": 2, "name": "Socks", "price": "5", "qty": 1},
	}
	payReq := map[string]interface{}{"nonce": "nonce-1", "cartItems": cart}

	if res := s.request(t, http.MethodPost, "/api/product/braintree/payment", "", payReq); res.code != http.StatusUnauthorized {
		t.Fatalf("anonymous payment = %d", res.code)
	}

	res = s.request(t, http.MethodPost, "/api/product/braintree/payment", token, payReq)
	if res.code != http.StatusOK || res.body["ok"] != true {
		t.Fatalf("payment = %d %s", res.code, res.raw)
	}
	if len(s.gateway.sales) != 1 || !s.gateway.sales[0].Amount.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("sales = %+v", s.gateway.sales)
	}

	res = s.request(t, http.MethodGet, "/api/orders", token, nil)
	orders := res.body["orders"].([]interface{})
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	order := orders[0].(map[string]interface{})
	if uint(order["buyerId"].(float64)) != buyerID || order["status"] != string(models.OrderNotProcessed) {
		t.Errorf("order = %v", order)
	}
	paymentResult := order["payment"].(map[string]interface{})
	if paymentResult["transactionId"] != "tx-nonce-1" {
		t.Errorf("payment = %v", paymentResult)
	}
	if amount, ok := paymentResult["amount"].(float64); !ok || amount != 25 {
		t.Errorf("payment amount = %#v, want number 25", paymentResult["amount"])
	}
	item := order["products"].([]interface{})[0].(map[string]interface{})
	if price, ok := item["price"].(float64); !ok || price != 10 {
		t.Errorf("item price = %#v, want number 10", item["price"])
	}
	if buyer := order["buyer"].(map[string]interface{}); buyer["name"] != "Test User" {
		t.Errorf("buyer = %v", buyer)
	}
}

func TestCheckoutGatewayFailureRecordsNothing(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "declined@example.com")
	s.gateway.saleErr = apperr.New(apperr.Upstream, "Processor declined")

	res := s.request(t, http.MethodPost, "/api/product/braintree/payment", token, map[string]interface{}{
		"nonce":     "nonce-x",
		"cartItems": []map[string]interface{}{{"productId": 1, "name": "Shirt", "price": 10, "qty": 1}},
	})
	if res.code != http.StatusBadGateway || res.body["message"] != "Processor declined" {
		t.Fatalf("payment = %d %s", res.code, res.raw)
	}

	all, _ := s.deps.Orders.All(context.Background())
	if len(all) != 0 {
		t.Errorf("orders = %d, want 0", len(all))
	}
}

func TestDeleteUserCascadesOrders(t *testing.T) {
	s := newTestServer(t)
	admin := s.admin(t, "admin@example.com")
	victimID, victim := s.register(t, "victim@example.com")
	_, other := s.register(t, "other@example.com")

	cart := []map[string]interface{}{{"productId": 1, "name": "Mug", "price": 8, "qty": 1}}
	for i, token := range []string{victim, victim, other} {
		res := s.request(t, http.MethodPost, "/api/product/braintree/payment", token, map[string]interface{}{
			"nonce": "n" + string(rune('a'+i)), "cartItems": cart,
		})
		if res.code != http.StatusOK {
			t.Fatalf("payment %d = %d %s", i, res.code, res.raw)
		}
	}

	res := s.request(t, http.MethodDelete, "/api/delete-users/"+itoa(victimID), admin, nil)
	if res.code != http.StatusOK || res.body["deletedOrders"].(float64) != 2 {
		t.Fatalf("delete = %d %s", res.code, res.raw)
	}

	res = s.request(t, http.MethodGet, "/api/all-orders", admin, nil)
	for _, o := range res.body["orders"].([]interface{}) {
		if uint(o.(map[string]interface{})["buyerId"].(float64)) == victimID {
			t.Errorf("order of deleted user still listed: %v", o)
		}
	}
	if n := len(res.body["orders"].([]interface{})); n != 1 {
		t.Errorf("remaining orders = %d, want 1", n)
	}

	if res := s.request(t, http.MethodDelete, "/api/delete-users/"+itoa(victimID), admin, nil); res.code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", res.code)
	}
	if res := s.request(t, http.MethodGet, "/api/orders", victim, nil); res.code != http.StatusOK || len(res.body["orders"].([]interface{})) != 0 {
		t.Errorf("deleted user's orders = %d %s", res.code, res.raw)
	}
}

func TestDeletedUserCannotPay(t *testing.T) {
	s := newTestServer(t)
	admin := s.admin(t, "admin@example.com")
	userID, token := s.register(t, "gone@example.com")

	if res := s.request(t, http.MethodDelete, "/api/delete-users/"+itoa(userID), admin, nil); res.code != http.StatusOK {
		t.Fatalf("delete = %d %s", res.code, res.raw)
	}

	res := s.request(t, http.MethodPost, "/api/product/braintree/payment", token, map[string]interface{}{
		"nonce":     "nonce-late",
		"cartItems": []map[string]interface{}{{"productId": 1, "name": "Mug", "price": 8, "qty": 1}},
	})
	if res.code != http.StatusUnauthorized {
		t.Errorf("payment with deleted user's token = %d %s", res.code, res.raw)
	}
	if len(s.gateway.sales) != 0 {
		t.Errorf("gateway charged %d times", len(s.gateway.sales))
	}
	all, _ := s.deps.Orders.All(context.Background())
	if len(all) != 0 {
		t.Errorf("orders = %d, want 0", len(all))
	}
}

func TestPaymentRejectsFractionalCents(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "cents@example.com")

	res := s.request(t, http.MethodPost, "/api/product/braintree/payment", token, map[string]interface{}{
		"nonce":     "nonce-cents",
		"cartItems": []map[string]interface{}{{"productId": 1, "name": "Gum", "price": "0.004", "qty": 3}},
	})
	if res.code != http.StatusBadRequest {
		t.Errorf("payment = %d %s", res.code, res.raw)
	}
	if len(s.gateway.sales) != 0 {
		t.Errorf("gateway charged %d times", len(s.gateway.sales))
	}
}

func TestOrderStatusAcceptsAnyValue(t *testing.T) {
	s := newTestServer(t)
	admin := s.admin(t, "admin@example.com")
	_, buyer := s.register(t, "b@example.com")
	s.request(t, http.MethodPost, "/api/product/braintree/payment", buyer, map[string]interface{}{
		"nonce": "n1", "cartItems": []map[string]interface{}{{"productId": 1, "name": "Pen", "price": 1, "qty": 1}},
	})

	all, _ := s.deps.Orders.All(context.Background())
	path := "/api/order-status/" + itoa(all[0].ID)

	res := s.request(t, http.MethodPut, path, admin, map[string]string{"status": "deliverd"})
	if res.code != http.StatusOK {
		t.Fatalf("status update = %d %s", res.code, res.raw)
	}
	order := res.body["order"].(map[string]interface{})
	if order["status"] != "deliverd" {
		t.Errorf("status = %v", order["status"])
	}
	if order["payment"].(map[string]interface{})["transactionId"] != "tx-n1" {
		t.Error("payment changed by status update")
	}

	if res := s.request(t, http.MethodPut, "/api/order-status/9999", admin, map[string]string{"status": "Shipped"}); res.code != http.StatusNotFound {
		t.Errorf("unknown order = %d", res.code)
	}
}

func multipartProduct(t *testing.T, fields map[string]string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if photo != nil {
		part, err := w.CreateFormFile("photo", "photo.png")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(photo); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return body, w.FormDataContentType()
}

func (s *testServer) multipart(t *testing.T, method, path, token string, fields map[string]string, photo []byte) response {
	t.Helper()
	body, contentType := multipartProduct(t, fields, photo)
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	return s.serve(t, req)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000000000000000")

func TestProductLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.admin(t, "admin@example.com")

	res := s.request(t, http.MethodPost, "/api/category/create-category", admin, map[string]string{"name": "Kitchen Tools"})
	if res.code != http.StatusCreated {
		t.Fatalf("create category = %d %s", res.code, res.raw)
	}
	category := res.body["category"].(map[string]interface{})
	if category["slug"] != "kitchen-tools" {
		t.Errorf("category slug = %v", category["slug"])
	}
	categoryID := itoa(uint(category["id"].(float64)))

	if res := s.request(t, http.MethodPost, "/api/category/create-category", admin, map[string]string{"name": "Kitchen Tools"}); res.code != http.StatusConflict {
		t.Errorf("duplicate category = %d", res.code)
	}

	fields := map[string]string{
		"name": "Cast Iron Pan", "description": "heavy", "price": "39.90",
		"quantity": "4", "category": categoryID, "shipping": "true",
	}

	if res := s.multipart(t, http.MethodPost, "/api/product/create-product", admin, fields, nil); res.code != http.StatusBadRequest {
		t.Errorf("create without photo = %d", res.code)
	}
	if res := s.multipart(t, http.MethodPost, "/api/product/create-product", admin, fields, make([]byte, models.MaxPhotoSize+1)); res.code != http.StatusBadRequest {
		t.Errorf("create with large photo = %d", res.code)
	}

	res = s.multipart(t, http.MethodPost, "/api/product/create-product", admin, fields, pngHeader)
	if res.code != http.StatusCreated {
		t.Fatalf("create product = %d %s", res.code, res.raw)
	}
	product := res.body["product"].(map[string]interface{})
	productID := itoa(uint(product["id"].(float64)))
	if product["slug"] != "cast-iron-pan" {
		t.Errorf("slug = %v", product["slug"])
	}

	if res := s.multipart(t, http.MethodPost, "/api/product/create-product", admin, fields, pngHeader); res.code != http.StatusConflict {
		t.Errorf("duplicate product = %d", res.code)
	}

	// 列表經由快取，新增後需看到新商品
	res = s.request(t, http.MethodGet, "/api/product", "", nil)
	if res.body["totalCount"].(float64) != 1 {
		t.Fatalf("product list = %s", res.raw)
	}

	res = s.request(t, http.MethodGet, "/api/product/product-photo/"+productID, "", nil)
	if res.code != http.StatusOK || !bytes.Equal(res.raw, pngHeader) {
		t.Errorf("photo = %d, %d bytes", res.code, len(res.raw))
	}

	fields["name"] = "Cast Iron Skillet"
	res = s.multipart(t, http.MethodPut, "/api/product/update-product/"+productID, admin, fields, nil)
	if res.code != http.StatusOK {
		t.Fatalf("update = %d %s", res.code, res.raw)
	}
	if slug := res.body["product"].(map[string]interface{})["slug"]; slug != "cast-iron-skillet" {
		t.Errorf("updated slug = %v", slug)
	}
	if res := s.request(t, http.MethodGet, "/api/product/product-photo/"+productID, "", nil); !bytes.Equal(res.raw, pngHeader) {
		t.Error("photo lost on update without photo")
	}

	res = s.request(t, http.MethodGet, "/api/product", "", nil)
	first := res.body["products"].([]interface{})[0].(map[string]interface{})
	if first["name"] != "Cast Iron Skillet" {
		t.Errorf("cached list is stale: %v", first["name"])
	}

	res = s.request(t, http.MethodGet, "/api/product/get-product/cast-iron-skillet", "", nil)
	if res.code != http.StatusOK || bytes.Contains(res.raw, []byte("PNG")) {
		t.Errorf("get-product = %d %s", res.code, res.raw)
	}

	if res := s.request(t, http.MethodDelete, "/api/product/delete-product/"+productID, admin, nil); res.code != http.StatusOK {
		t.Fatalf("delete = %d", res.code)
	}
	if res := s.request(t, http.MethodGet, "/api/product/product-photo/"+productID, "", nil); res.code != http.StatusNotFound {
		t.Errorf("photo after delete = %d", res.code)
	}
	res = s.request(t, http.MethodGet, "/api/product", "", nil)
	if res.body["totalCount"].(float64) != 0 {
		t.Errorf("product list after delete = %s", res.raw)
	}
}

func TestDiscoveryRoutes(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	shoes, _ := s.deps.Categories.Create(ctx, "Shoes")
	hats, _ := s.deps.Categories.Create(ctx, "Hats")

	for i := 0; i < 13; i++ {
		categoryID := shoes.ID
		if i%2 == 1 {
			categoryID = hats.ID
		}
		price := decimal.NewFromInt(int64(10 * (i + 1)))
		quantity := 1
		_, err := s.deps.Products.Create(ctx, productInput("Item "+itoa(uint(i)), price, quantity, categoryID))
		if err != nil {
			t.Fatal(err)
		}
	}

	res := s.request(t, http.MethodGet, "/api/product/pagination?page=3&pageSize=6", "", nil)
	if res.body["totalPages"].(float64) != 3 || len(res.body["products"].([]interface{})) != 1 {
		t.Errorf("pagination = %s", res.raw)
	}
	res = s.request(t, http.MethodGet, "/api/product/pagination?page=abc", "", nil)
	if res.body["currentPage"].(float64) != 1 || len(res.body["products"].([]interface{})) != 6 {
		t.Errorf("pagination defaults = %s", res.raw)
	}

	res = s.request(t, http.MethodGet, "/api/product/product-list/3", "", nil)
	if len(res.body["products"].([]interface{})) != 1 {
		t.Errorf("product-list/3 = %s", res.raw)
	}

	res = s.request(t, http.MethodGet, "/api/product/count", "", nil)
	if res.body["totalProducts"].(float64) != 13 {
		t.Errorf("count = %s", res.raw)
	}

	res = s.request(t, http.MethodGet, "/api/product", "", nil)
	if res.body["totalCount"].(float64) != 12 {
		t.Errorf("latest = %v", res.body["totalCount"])
	}

	res = s.request(t, http.MethodPost, "/api/product/product-filters", "", map[string]interface{}{"checked": []uint{}, "radio": []int{}})
	if len(res.body["products"].([]interface{})) != 13 {
		t.Errorf("empty filter = %d products", len(res.body["products"].([]interface{})))
	}
	res = s.request(t, http.MethodPost, "/api/product/product-filters", "", map[string]interface{}{"checked": []uint{hats.ID}, "radio": []int{0, 60}})
	if n := len(res.body["products"].([]interface{})); n != 3 {
		t.Errorf("hats up to 60 = %d, want 3", n)
	}

	res = s.request(t, http.MethodGet, "/api/product/search/ITEM%201", "", nil)
	if n := len(res.body["products"].([]interface{})); n != 4 {
		t.Errorf("search = %d, want 4 (Item 1, 10, 11, 12)", n)
	}

	res = s.request(t, http.MethodGet, "/api/category", "", nil)
	if len(res.body["categories"].([]interface{})) != 2 {
		t.Errorf("categories = %s", res.raw)
	}
	if res := s.request(t, http.MethodGet, "/api/category/shoes", "", nil); res.code != http.StatusOK {
		t.Errorf("category by slug = %d", res.code)
	}
	if res := s.request(t, http.MethodGet, "/api/category/nothing", "", nil); res.code != http.StatusNotFound {
		t.Errorf("unknown category = %d", res.code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	res := s.request(t, http.MethodGet, "/health", "", nil)
	if res.code != http.StatusOK || res.body["success"] != true {
		t.Errorf("health = %d %s", res.code, res.raw)
	}
}

func TestInternalErrorsAreNotSerialized(t *testing.T) {
	s := newTestServer(t)
	sqlDB, err := s.deps.DB.DB()
	if err != nil {
		t.Fatal(err)
	}
	_ = sqlDB.Close()

	res := s.request(t, http.MethodGet, "/api/product/count", "", nil)
	if res.code != http.StatusInternalServerError {
		t.Fatalf("status = %d", res.code)
	}
	if res.body["message"] != "internal server error" {
		t.Errorf("message = %v", res.body["message"])
	}
	if strings.Contains(string(res.raw), "sql") {
		t.Errorf("driver error leaked: %s", res.raw)
	}
}
