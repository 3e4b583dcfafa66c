package simulation

import (
	"context"
	"sync"

	"github.com/jacobarthurs/schemabench/internal/comparator"
	"github.com/jacobarthurs/schemabench/internal/orders"
)

type fakeVariant struct {
	schema orders.Schema

	placeErr error
	salesErr error
	sales    []orders.StoreSales
	items    []orders.ItemSales

	// rendezvous, when set, blocks each call until both variants have
	// started, so a sequential engine would deadlock.
	rendezvous *sync.WaitGroup

	mu        sync.Mutex
	requests  []orders.OrderRequest
	itemLimit int
}

func (f *fakeVariant) Schema() orders.Schema { return f.schema }

func (f *fakeVariant) arrive() {
	if f.rendezvous != nil {
		f.rendezvous.Done()
		f.rendezvous.Wait()
	}
}

func (f *fakeVariant) PlaceOrder(_ context.Context, req orders.OrderRequest) (orders.Placement, error) {
	f.arrive()
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.placeErr != nil {
		return orders.Placement{}, f.placeErr
	}
	return orders.Placement{OrderID: string(f.schema) + "-1", TotalAmount: 19.97}, nil
}

func (f *fakeVariant) SalesByStore(context.Context) ([]orders.StoreSales, error) {
	f.arrive()
	if f.salesErr != nil {
		return nil, f.salesErr
	}
	return f.sales, nil
}

func (f *fakeVariant) BestSellingItems(_ context.Context, limit int) ([]orders.ItemSales, error) {
	f.mu.Lock()
	f.itemLimit = limit
	f.mu.Unlock()
	return f.items, nil
}

func (f *fakeVariant) SalesByStoreQuery() (string, []any) {
	return "SELECT " + string(f.schema), []any{30}
}

type observed struct {
	workload  comparator.Workload
	schema    orders.Schema
	succeeded bool
}

type recordingObserver struct {
	mu       sync.Mutex
	runs     []observed
	outcomes []comparator.Outcome
}

func (o *recordingObserver) ObserveRun(w comparator.Workload, s orders.Schema, _ float64, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runs = append(o.runs, observed{w, s, ok})
}

func (o *recordingObserver) ObserveOutcome(out comparator.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, out)
}

func testSampleData() orders.SampleData {
	return orders.SampleData{
		Customers: []orders.Customer{{ID: 1, FirstName: "John", LastName: "Smith", Email: "john@example.com"}},
		Stores:    []orders.Store{{ID: 1, Name: "Downtown Grill", Location: "123 Main St"}},
		Employees: []orders.Employee{
			{ID: 1, FirstName: "Mike", Position: orders.PositionStoreManager},
			{ID: 2, FirstName: "Jane", Position: "Cashier"},
		},
		MenuItems: []orders.MenuItem{
			{ID: 1, Name: "Classic Burger", Category: "Burgers", Price: 8.99},
			{ID: 8, Name: "Chicken Nuggets", Category: "Sides", Price: 5.49},
		},
	}
}

func staticSample(data orders.SampleData) SampleLoader {
	return func(context.Context) (orders.SampleData, error) { return data, nil }
}
