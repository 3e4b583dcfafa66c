package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacobarthurs/schemabench/internal/comparator"
	"github.com/jacobarthurs/schemabench/internal/orders"
	"github.com/jacobarthurs/schemabench/internal/simulation"
	"github.com/jacobarthurs/schemabench/internal/timing"
)

type fakeSimulator struct {
	placeResult timing.Result[orders.Placement]
	placeErr    error
	sales       timing.Result[[]orders.StoreSales]
	items       timing.Result[[]orders.ItemSales]
	sample      orders.SampleData
	sampleErr   error
	oltp        simulation.OLTPReport
	olap        simulation.OLAPReport
	bench       simulation.BenchmarkReport

	mu          sync.Mutex
	placed      []orders.OrderRequest
	lastSchema  orders.Schema
	lastLimit   int
	oltpReq     *orders.OrderRequest
	oltpCalls   int
	explain     bool
	benchRuns   int
	ctxDeadline bool
}

func (f *fakeSimulator) PlaceOrder(ctx context.Context, schema orders.Schema, req orders.OrderRequest) (timing.Result[orders.Placement], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, f.ctxDeadline = ctx.Deadline()
	f.lastSchema = schema
	f.placed = append(f.placed, req)
	return f.placeResult, f.placeErr
}

func (f *fakeSimulator) SalesByStore(_ context.Context, schema orders.Schema) (timing.Result[[]orders.StoreSales], error) {
	f.lastSchema = schema
	return f.sales, nil
}

func (f *fakeSimulator) BestSellingItems(_ context.Context, schema orders.Schema, limit int) (timing.Result[[]orders.ItemSales], error) {
	f.lastSchema = schema
	f.lastLimit = limit
	return f.items, nil
}

func (f *fakeSimulator) SampleData(context.Context) (orders.SampleData, error) {
	return f.sample, f.sampleErr
}

func (f *fakeSimulator) SimulateOLTP(_ context.Context, req *orders.OrderRequest) (simulation.OLTPReport, error) {
	f.oltpCalls++
	f.oltpReq = req
	return f.oltp, nil
}

func (f *fakeSimulator) SimulateOLAP(_ context.Context, explain bool) (simulation.OLAPReport, error) {
	f.explain = explain
	return f.olap, nil
}

func (f *fakeSimulator) Benchmark(_ context.Context, _ comparator.Workload, runs int) (simulation.BenchmarkReport, error) {
	f.benchRuns = runs
	return f.bench, nil
}

func connRefused() error {
	return fmt.Errorf("loading sample data: %w", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")})
}

type pingFunc func(context.Context) error

func (p pingFunc) Ping(ctx context.Context) error { return p(ctx) }

type routeCounter struct {
	mu     sync.Mutex
	routes []string
}

func (c *routeCounter) ObserveHTTP(route string, status int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes = append(c.routes, fmt.Sprintf("%s %d", route, status))
}

func newTestServer(sim *fakeSimulator, opts Options) http.Handler {
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = time.Second
	}
	return New(sim, pingFunc(func(context.Context) error { return nil }), opts).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))

	var decoded map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestPlaceOrder_Success(t *testing.T) {
	sim := &fakeSimulator{placeResult: timing.Result[orders.Placement]{
		Data: orders.Placement{OrderID: "101", TotalAmount: 19.97}, ElapsedMs: 4.25, Succeeded: true,
	}}
	h := newTestServer(sim, Options{})

	rec, body := do(t, h, http.MethodPost, "/api/oltp/normalized/place-order",
		`{"customerId":1,"storeId":1,"employeeId":2,"items":[{"menuItemId":1,"quantity":1},{"menuItemId":8,"quantity":2}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "101", body["orderId"])
	assert.Equal(t, 19.97, body["totalAmount"])
	assert.Equal(t, 4.25, body["executionTime"])

	require.Len(t, sim.placed, 1)
	assert.Equal(t, orders.Normalized, sim.lastSchema)
	assert.Equal(t, 2, sim.placed[0].Items[1].Quantity)
	assert.True(t, sim.ctxDeadline, "request timeout must reach the engine")
}

func TestPlaceOrder_DenormalizedBundles(t *testing.T) {
	sim := &fakeSimulator{placeResult: timing.Result[orders.Placement]{Succeeded: true}}
	h := newTestServer(sim, Options{})

	rec, _ := do(t, h, http.MethodPost, "/api/oltp/denormalized/place-order",
		`{"customerData":{"id":1,"firstName":"John"},"storeData":{"id":1,"name":"Downtown Grill"},"employeeData":{"id":2},"items":[{"menuItemId":1,"quantity":1,"name":"Classic Burger","category":"Burgers","unitPrice":8.99}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, orders.Denormalized, sim.lastSchema)
	require.NotNil(t, sim.placed[0].Customer)
	assert.Equal(t, "Downtown Grill", sim.placed[0].Store.Name)
	assert.Equal(t, 8.99, sim.placed[0].Items[0].UnitPrice)
}

func TestPlaceOrder_ClassifiedFailure(t *testing.T) {
	pgErr := fmt.Errorf("inserting order: %w", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, Message: "violates fk_orders_customer"})
	sim := &fakeSimulator{placeResult: timing.Result[orders.Placement]{ElapsedMs: 2.5, Err: pgErr, ErrorMessage: pgErr.Error()}}
	h := newTestServer(sim, Options{})

	rec, body := do(t, h, http.MethodPost, "/api/oltp/normalized/place-order", `{"customerId":999,"storeId":1,"employeeId":1,"items":[{"menuItemId":1,"quantity":1}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "missing_reference", body["category"])
	assert.Equal(t, "23503", body["code"])
	assert.Equal(t, 2.5, body["executionTime"])
	assert.NotContains(t, body["error"], "fk_orders_customer", "raw database text must not leak")
}

func TestPlaceOrder_MalformedBody(t *testing.T) {
	sim := &fakeSimulator{}
	h := newTestServer(sim, Options{})

	rec, body := do(t, h, http.MethodPost, "/api/oltp/normalized/place-order", `{"items":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "incomplete_input", body["category"])
	assert.Empty(t, sim.placed)
}

func TestPlaceOrder_UnknownSchema(t *testing.T) {
	h := newTestServer(&fakeSimulator{}, Options{})

	rec, _ := do(t, h, http.MethodPost, "/api/oltp/columnar/place-order", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSalesByStore(t *testing.T) {
	sim := &fakeSimulator{sales: timing.Result[[]orders.StoreSales]{
		Data: []orders.StoreSales{{StoreName: "Downtown Grill", TotalOrders: 4, TotalRevenue: 51.93}}, ElapsedMs: 7.1, Succeeded: true,
	}}
	h := newTestServer(sim, Options{})

	rec, body := do(t, h, http.MethodGet, "/api/olap/denormalized/sales-by-store", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, orders.Denormalized, sim.lastSchema)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Downtown Grill", data[0].(map[string]any)["storeName"])
	assert.Equal(t, 7.1, body["executionTime"])
}

func TestSalesByStore_MissingTable(t *testing.T) {
	err := &pgconn.PgError{Code: pgerrcode.UndefinedTable}
	sim := &fakeSimulator{sales: timing.Result[[]orders.StoreSales]{Err: err, ErrorMessage: err.Error()}}
	h := newTestServer(sim, Options{})

	rec, body := do(t, h, http.MethodGet, "/api/olap/normalized/sales-by-store", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_misconfiguration", body["category"])
}

func TestBestSellingItems_Limit(t *testing.T) {
	sim := &fakeSimulator{items: timing.Result[[]orders.ItemSales]{Succeeded: true}}
	h := newTestServer(sim, Options{})

	rec, _ := do(t, h, http.MethodGet, "/api/olap/normalized/best-selling-items?limit=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, sim.lastLimit)

	_, _ = do(t, h, http.MethodGet, "/api/olap/normalized/best-selling-items", "")
	assert.Equal(t, orders.DefaultItemsLimit, sim.lastLimit)

	rec, _ = do(t, h, http.MethodGet, "/api/olap/normalized/best-selling-items?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSampleData(t *testing.T) {
	sim := &fakeSimulator{sample: orders.SampleData{
		Customers: []orders.Customer{{ID: 1, FirstName: "John"}},
		MenuItems: []orders.MenuItem{{ID: 1, Name: "Classic Burger", Price: 8.99}},
	}}
	h := newTestServer(sim, Options{})

	rec, body := do(t, h, http.MethodGet, "/api/sample-data", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["customers"], 1)
	assert.Len(t, body["menuItems"], 1)
}

func TestSampleData_StorageDown(t *testing.T) {
	sim := &fakeSimulator{sampleErr: connRefused()}
	h := newTestServer(sim, Options{})

	rec, body := do(t, h, http.MethodGet, "/api/sample-data", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "storage_unavailable", body["category"])
	assert.Equal(t, true, body["retryable"])
}

func TestSimulate_OLTPWithoutBody(t *testing.T) {
	outcome := comparator.Default().CompareTimes(comparator.OLTP, 120, true, 80, true)
	sim := &fakeSimulator{oltp: simulation.OLTPReport{
		Workload:     comparator.OLTP,
		Normalized:   timing.Result[orders.Placement]{ElapsedMs: 120, Succeeded: true},
		Denormalized: timing.Result[orders.Placement]{ElapsedMs: 80, Succeeded: true},
		Comparison:   outcome,
	}}
	h := newTestServer(sim, Options{})

	rec, body := do(t, h, http.MethodPost, "/api/simulate/oltp", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, sim.oltpReq, "no body asks for a random order")
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["partial"])
	comparison := body["comparison"].(map[string]any)
	assert.Equal(t, "denormalized", comparison["winner"])
	assert.Equal(t, 33.3, comparison["marginPercent"])
	assert.Equal(t, 120.0, body["normalized"].(map[string]any)["executionTime"])
}

func TestSimulate_OneLayoutFailedIsPartial(t *testing.T) {
	sim := &fakeSimulator{olap: simulation.OLAPReport{
		Workload:     comparator.OLAP,
		Normalized:   timing.Result[[]orders.StoreSales]{ElapsedMs: 3, Succeeded: true},
		Denormalized: timing.Result[[]orders.StoreSales]{ElapsedMs: 1, ErrorMessage: "relation does not exist"},
		Comparison:   comparator.Default().CompareTimes(comparator.OLAP, 3, true, 1, false),
	}}
	h := newTestServer(sim, Options{})

	rec, body := do(t, h, http.MethodPost, "/api/simulate/olap", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["partial"])
	assert.Equal(t, "relation does not exist", body["denormalized"].(map[string]any)["error"])
	assert.Equal(t, false, body["comparison"].(map[string]any)["decided"])
}

func TestSimulate_OLTPWithBody(t *testing.T) {
	sim := &fakeSimulator{}
	h := newTestServer(sim, Options{})

	rec, _ := do(t, h, http.MethodPost, "/api/simulate/oltp", `{"customerId":1,"storeId":1,"employeeId":2,"items":[{"menuItemId":1,"quantity":1}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, sim.oltpReq)
	assert.Equal(t, 2, sim.oltpReq.EmployeeID)
}

func TestSimulate_OLAPExplain(t *testing.T) {
	sim := &fakeSimulator{}
	h := newTestServer(sim, Options{})

	rec, _ := do(t, h, http.MethodPost, "/api/simulate/olap?explain=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sim.explain)
}

func TestSimulate_Benchmark(t *testing.T) {
	sim := &fakeSimulator{bench: simulation.BenchmarkReport{Workload: comparator.OLAP, Runs: 5}}
	h := newTestServer(sim, Options{})

	rec, body := do(t, h, http.MethodPost, "/api/simulate/olap?runs=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, sim.benchRuns)
	assert.Equal(t, 5.0, body["runs"])
	assert.Equal(t, false, body["partial"])

	rec, _ = do(t, h, http.MethodPost, fmt.Sprintf("/api/simulate/olap?runs=%d", MaxBenchmarkRuns+1), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulate_UnknownWorkload(t *testing.T) {
	h := newTestServer(&fakeSimulator{}, Options{})

	rec, _ := do(t, h, http.MethodPost, "/api/simulate/htap", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	down := New(&fakeSimulator{}, pingFunc(func(context.Context) error { return connRefused() }), Options{}).Handler()

	rec, _ := do(t, down, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, body := do(t, newTestServer(&fakeSimulator{}, Options{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsMounted(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("schemabench_runs_total 1\n"))
	})
	h := newTestServer(&fakeSimulator{}, Options{Metrics: metrics})

	rec, _ := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "schemabench_runs_total")
}

func TestDashboardServed(t *testing.T) {
	h := newTestServer(&fakeSimulator{}, Options{})

	rec, _ := do(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>schemabench</title>")

	rec, _ = do(t, h, http.MethodGet, "/app.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestObserverSeesRoutePattern(t *testing.T) {
	counter := &routeCounter{}
	h := newTestServer(&fakeSimulator{}, Options{Observer: counter})

	_, _ = do(t, h, http.MethodGet, "/healthz", "")
	_, _ = do(t, h, http.MethodPost, "/api/simulate/htap", "")

	assert.Equal(t, []string{"GET /healthz 200", "POST /api/simulate/{workload} 404"}, counter.routes)
}

func TestCORS(t *testing.T) {
	h := newTestServer(&fakeSimulator{}, Options{AllowedOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/simulate/oltp", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestTimeoutMiddleware_Disabled(t *testing.T) {
	var hasDeadline bool
	inner := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	})
	timeoutMiddleware(0)(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, hasDeadline)

	timeoutMiddleware(time.Second)(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)
}

func TestDecodeBody_Empty(t *testing.T) {
	var req orders.OrderRequest
	present, err := decodeBody(httptest.NewRequest(http.MethodPost, "/", nil), &req)
	require.NoError(t, err)
	assert.False(t, present)

	_, err = decodeBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("nope")), &req)
	assert.True(t, errors.Is(err, orders.ErrValidation))
}
