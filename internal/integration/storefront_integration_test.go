//go:build integration

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/itanishqshelar/Flashfits-AI/internal/analytics"
	"github.com/itanishqshelar/Flashfits-AI/internal/cartstore"
	"github.com/itanishqshelar/Flashfits-AI/internal/catalog"
	"github.com/itanishqshelar/Flashfits-AI/internal/clients"
	"github.com/itanishqshelar/Flashfits-AI/internal/db"
	"github.com/itanishqshelar/Flashfits-AI/internal/events"
	httpapi "github.com/itanishqshelar/Flashfits-AI/internal/http"
	"github.com/itanishqshelar/Flashfits-AI/internal/middleware"
	"github.com/itanishqshelar/Flashfits-AI/internal/mirror"
	"github.com/itanishqshelar/Flashfits-AI/internal/session"
	"github.com/itanishqshelar/Flashfits-AI/internal/testutil"
)

type storefront struct {
	baseURL    string
	dispatcher *mirror.Dispatcher
	events     <-chan amqp.Delivery
	db         *sql.DB
}

func startStorefront(ctx context.Context, t *testing.T) (*storefront, string) {
	t.Helper()

	dsn := testutil.StartPostgres(ctx, t)
	rabbitURL := testutil.StartRabbitMQ(ctx, t)
	logger := zaptest.NewLogger(t)

	require.NoError(t, db.RunMigrations(dsn, logger))

	database, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	conn, err := events.Dial(rabbitURL, 10, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	publisher, err := events.NewPublisher(conn, events.NewSequenceRepository(database), events.PublisherOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = publisher.Close() })

	deliveries := consumeCartEvents(t, conn)

	// the HTTP mirror posts back into this same server's /api/cart
	var handler http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	api, err := clients.NewClient("cart-api", srv.URL, &http.Client{Timeout: 5 * time.Second})
	require.NoError(t, err)
	cartAPI := clients.NewCartAPIClient(api)
	dispatcher := mirror.NewDispatcher(mirror.Multi{cartAPI, publisher}, 5*time.Second, logger)
	t.Cleanup(dispatcher.Wait)

	handler = httpapi.NewRouter(httpapi.Deps{
		Logger:           logger,
		CORSAllowOrigins: []string{"*"},
		Sessions:         session.NewRegistry(dispatcher, logger),
		Catalog:          catalog.NewPostgresRepository(pool),
		SavedCarts:       cartstore.NewRepository(database),
		Analytics:        analytics.NewRepository(database),
	})

	var productID string
	err = database.QueryRowContext(ctx,
		`INSERT INTO products (name, price_cents, category, image_url, colors, sizes)
VALUES ('Basic Tee', 99900, 'Tops', '/tee.jpg', ARRAY['Black','White'], ARRAY['M','L'])
RETURNING id`).Scan(&productID)
	require.NoError(t, err)

	return &storefront{baseURL: srv.URL, dispatcher: dispatcher, events: deliveries, db: database}, productID
}

func consumeCartEvents(t *testing.T, conn *amqp.Connection) <-chan amqp.Delivery {
	t.Helper()

	ch, err := conn.Channel()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, events.CartItemAddedRoutingKey, events.EventsExchange, false, nil))

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)
	return deliveries
}

func (s *storefront) do(t *testing.T, method, path, body, userID string) *http.Response {
	t.Helper()

	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, s.baseURL+path, nil)
	} else {
		req, err = http.NewRequest(method, s.baseURL+path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// get is safe to call from polling goroutines.
func (s *storefront) get(path, userID string, v any) bool {
	req, err := http.NewRequest(http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return false
	}
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK && json.NewDecoder(resp.Body).Decode(v) == nil
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestStorefrontIntegration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	app, productID := startStorefront(ctx, t)

	resp := app.do(t, http.MethodGet, "/api/products?search=tee", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[catalog.Page](t, resp)
	require.Len(t, page.Items, 1)
	assert.Equal(t, productID, page.Items[0].DBID)
	assert.Equal(t, 999, page.Items[0].Price)
	assert.Equal(t, []string{"Black", "White"}, page.Items[0].Colors)

	// signed-in add: mirrored to /api/cart and published
	resp = app.do(t, http.MethodPost, "/api/sessions/s1/cart/products/"+productID,
		`{"selectedColor":"Black","selectedSize":"M"}`, "user-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[session.View](t, resp)
	require.Len(t, view.Items, 1)
	assert.Equal(t, page.Items[0].ItemNo, view.Items[0].ID)

	select {
	case d := <-app.events:
		var evt events.CartItemAddedEvent
		require.NoError(t, json.Unmarshal(d.Body, &evt))
		assert.Equal(t, events.CartItemAddedEventName, evt.EventName)
		assert.Equal(t, "s1", evt.PartitionKey)
		assert.Equal(t, int64(1), evt.Sequence)
		assert.Equal(t, productID, evt.Payload.ProductID)
		assert.Equal(t, "user-1", evt.Payload.UserID)
		assert.Equal(t, 1, evt.Payload.Quantity)
	case <-ctx.Done():
		t.Fatal("timed out waiting for CartItemAdded")
	}

	require.Eventually(t, func() bool {
		var items []cartstore.SavedItem
		if !app.get("/api/cart", "user-1", &items) {
			return false
		}
		return len(items) == 1 && items[0].Product.ID == productID && items[0].Quantity == 1
	}, 10*time.Second, 100*time.Millisecond)

	// anonymous add: local cart still updates, the shopper gets the sign-in notice
	resp = app.do(t, http.MethodPost, "/api/sessions/s2/cart/items",
		`{"id":7,"name":"Loose Tee","price":499}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[session.View](t, resp).ItemCount)

	require.Eventually(t, func() bool {
		var v session.View
		return app.get("/api/sessions/s2/cart", "", &v) && v.Notice == mirror.SignInNotice
	}, 10*time.Second, 100*time.Millisecond)

	// a product sent by details only is created on first save
	resp = app.do(t, http.MethodPost, "/api/cart",
		`{"quantity":2,"product":{"name":"New Hoodie","price":1499.5,"image":"/hoodie.jpg"}}`, "user-2")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = app.do(t, http.MethodGet, "/api/cart", "", "user-2")
	items := decode[[]cartstore.SavedItem](t, resp)
	require.Len(t, items, 1)
	assert.Equal(t, "New Hoodie", items[0].Product.Name)
	require.NotNil(t, items[0].Product.PriceCents)
	assert.Equal(t, int64(149950), *items[0].Product.PriceCents)

	// tracking ties user_sessions to the cart session id
	resp = app.do(t, http.MethodPost, "/api/analytics/track",
		`{"eventType":"page_view","eventData":{"path":"/shop"},"sessionId":"s1"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tracked := decode[struct {
		Success bool            `json:"success"`
		Event   analytics.Event `json:"event"`
	}](t, resp)
	assert.True(t, tracked.Success)
	assert.Equal(t, "s1", tracked.Event.SessionID)
	require.NotNil(t, tracked.Event.UserID)
	assert.Equal(t, "user-1", *tracked.Event.UserID)

	var sessionUser string
	require.NoError(t, app.db.QueryRowContext(ctx,
		`SELECT user_id FROM user_sessions WHERE session_id = $1`, "s1").Scan(&sessionUser))
	assert.Equal(t, "user-1", sessionUser)

	app.dispatcher.Wait()
}
