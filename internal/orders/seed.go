package orders

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/jacobarthurs/schemabench/internal/store"
)

const truncateSQL = `TRUNCATE denormalized_orders, order_items, orders, menu_items, employees, stores, customers
	RESTART IDENTITY CASCADE`

var (
	seedStores = []Store{
		{Name: "Downtown Grill", Location: "123 Main St", Phone: "555-0101"},
		{Name: "Harbor Express", Location: "45 Pier Rd", Phone: "555-0102"},
		{Name: "Campus Corner", Location: "9 College Ave", Phone: "555-0103"},
		{Name: "Airport Kiosk", Location: "Terminal B", Phone: "555-0104"},
		{Name: "Mall Food Court", Location: "700 Galleria Blvd", Phone: "555-0105"},
	}

	seedMenuItems = []MenuItem{
		{Name: "Classic Burger", Category: "Burgers", Price: 8.99},
		{Name: "Cheeseburger", Category: "Burgers", Price: 9.49},
		{Name: "Veggie Burger", Category: "Burgers", Price: 8.49},
		{Name: "Chicken Sandwich", Category: "Sandwiches", Price: 7.99},
		{Name: "Fish Sandwich", Category: "Sandwiches", Price: 7.49},
		{Name: "French Fries", Category: "Sides", Price: 3.49},
		{Name: "Onion Rings", Category: "Sides", Price: 3.99},
		{Name: "Chicken Nuggets", Category: "Sides", Price: 5.49},
		{Name: "Soft Drink", Category: "Beverages", Price: 1.99},
		{Name: "Milkshake", Category: "Beverages", Price: 4.49},
		{Name: "Iced Coffee", Category: "Beverages", Price: 2.99},
		{Name: "Apple Pie", Category: "Desserts", Price: 2.49},
	}

	seedFirstNames = []string{"John", "Jane", "Mike", "Sarah", "David", "Emily", "Chris", "Anna", "Tom", "Laura"}
	seedLastNames  = []string{"Smith", "Johnson", "Brown", "Davis", "Wilson", "Garcia", "Lee", "Clark"}
	seedPositions  = []string{PositionStoreManager, "Cashier", "Cook"}
)

type SeedOptions struct {
	Customers int
	Orders    int
	// HistoryDays spreads historical orders over this many days back from now.
	// Anything older than the aggregation window is filtered out by both layouts.
	HistoryDays int
	Seed        uint64
}

func DefaultSeedOptions() SeedOptions {
	return SeedOptions{Customers: 40, Orders: 500, HistoryDays: 45, Seed: 1}
}

type SeedSummary struct {
	Customers int
	Stores    int
	Employees int
	MenuItems int
	Orders    int
}

// Seed replaces all data with generated reference rows and a purchase history.
// Every historical order is written to both layouts with the same date,
// customer, store and total, so store-level aggregates agree across schemas.
func Seed(ctx context.Context, db store.DB, opts SeedOptions) (SeedSummary, error) {
	r := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	now := time.Now()
	var summary SeedSummary

	err := store.WithTx(ctx, db, func(tx store.Tx) error {
		if _, err := tx.Exec(ctx, truncateSQL); err != nil {
			return fmt.Errorf("truncating tables: %w", err)
		}

		stores, err := seedStoreRows(ctx, tx)
		if err != nil {
			return err
		}
		employees, err := seedEmployeeRows(ctx, tx, stores)
		if err != nil {
			return err
		}
		customers, err := seedCustomerRows(ctx, tx, r, opts.Customers)
		if err != nil {
			return err
		}
		menu, err := seedMenuRows(ctx, tx)
		if err != nil {
			return err
		}

		staffByStore := make(map[int][]Employee)
		for i, e := range employees {
			if e.Position != PositionStoreManager {
				storeID := stores[i/len(seedPositions)].ID
				staffByStore[storeID] = append(staffByStore[storeID], e)
			}
		}

		for i := 0; i < opts.Orders; i++ {
			st := stores[r.IntN(len(stores))]
			staff := staffByStore[st.ID]
			req := OrderRequest{
				Customer: &customers[r.IntN(len(customers))],
				Store:    &st,
				Employee: &staff[r.IntN(len(staff))],
			}
			for n := r.IntN(3) + 1; n > 0; n-- {
				m := menu[r.IntN(len(menu))]
				req.Items = append(req.Items, Item{
					MenuItemID: m.ID,
					Quantity:   r.IntN(3) + 1,
					Name:       m.Name,
					Category:   m.Category,
					UnitPrice:  m.Price,
				})
			}
			placedAt := now.Add(-time.Duration(r.Int64N(int64(opts.HistoryDays) * int64(24*time.Hour))))

			if err := seedHistoricalOrder(ctx, tx, req, placedAt, "S-"+strconv.Itoa(i+1)); err != nil {
				return fmt.Errorf("seeding order %d: %w", i+1, err)
			}
		}

		summary = SeedSummary{
			Customers: len(customers),
			Stores:    len(stores),
			Employees: len(employees),
			MenuItems: len(menu),
			Orders:    opts.Orders,
		}
		return nil
	})
	if err != nil {
		return SeedSummary{}, err
	}
	return summary, nil
}

func seedStoreRows(ctx context.Context, tx store.Tx) ([]Store, error) {
	stores := make([]Store, len(seedStores))
	for i, s := range seedStores {
		err := tx.QueryRow(ctx,
			`INSERT INTO stores (store_name, location, phone) VALUES ($1, $2, $3) RETURNING store_id`,
			s.Name, s.Location, s.Phone,
		).Scan(&s.ID)
		if err != nil {
			return nil, fmt.Errorf("inserting store %q: %w", s.Name, err)
		}
		stores[i] = s
	}
	return stores, nil
}

// seedEmployeeRows staffs every store with one employee per seedPositions entry.
func seedEmployeeRows(ctx context.Context, tx store.Tx, stores []Store) ([]Employee, error) {
	var employees []Employee
	for i, s := range stores {
		for j, position := range seedPositions {
			e := Employee{
				FirstName: seedFirstNames[(i+j)%len(seedFirstNames)],
				LastName:  seedLastNames[(i*len(seedPositions)+j)%len(seedLastNames)],
				Position:  position,
			}
			err := tx.QueryRow(ctx,
				`INSERT INTO employees (store_id, first_name, last_name, position) VALUES ($1, $2, $3, $4) RETURNING employee_id`,
				s.ID, e.FirstName, e.LastName, e.Position,
			).Scan(&e.ID)
			if err != nil {
				return nil, fmt.Errorf("inserting employee for store %d: %w", s.ID, err)
			}
			employees = append(employees, e)
		}
	}
	return employees, nil
}

func seedCustomerRows(ctx context.Context, tx store.Tx, r *rand.Rand, n int) ([]Customer, error) {
	if n <= 0 {
		n = 1
	}
	customers := make([]Customer, n)
	for i := range n {
		c := Customer{
			FirstName: seedFirstNames[r.IntN(len(seedFirstNames))],
			LastName:  seedLastNames[r.IntN(len(seedLastNames))],
			Phone:     fmt.Sprintf("555-%04d", 1000+i),
		}
		c.Email = fmt.Sprintf("customer%d@example.com", i+1)
		err := tx.QueryRow(ctx,
			`INSERT INTO customers (first_name, last_name, email, phone) VALUES ($1, $2, $3, $4) RETURNING customer_id`,
			c.FirstName, c.LastName, c.Email, c.Phone,
		).Scan(&c.ID)
		if err != nil {
			return nil, fmt.Errorf("inserting customer %q: %w", c.Email, err)
		}
		customers[i] = c
	}
	return customers, nil
}

func seedMenuRows(ctx context.Context, tx store.Tx) ([]MenuItem, error) {
	menu := make([]MenuItem, len(seedMenuItems))
	for i, m := range seedMenuItems {
		err := tx.QueryRow(ctx,
			`INSERT INTO menu_items (item_name, category, price) VALUES ($1, $2, $3) RETURNING menu_item_id`,
			m.Name, m.Category, m.Price,
		).Scan(&m.ID)
		if err != nil {
			return nil, fmt.Errorf("inserting menu item %q: %w", m.Name, err)
		}
		menu[i] = m
	}
	return menu, nil
}

func seedHistoricalOrder(ctx context.Context, tx store.Tx, req OrderRequest, placedAt time.Time, ref string) error {
	subtotals := make([]float64, len(req.Items))
	for i, item := range req.Items {
		subtotals[i] = subtotal(item.UnitPrice, item.Quantity)
	}
	total := orderTotal(subtotals)

	var orderID int64
	err := tx.QueryRow(ctx, insertOrderSQL,
		req.Customer.ID, req.Store.ID, req.Employee.ID, total, OrderTypeDineIn, StatusPending, placedAt,
	).Scan(&orderID)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	for i, item := range req.Items {
		if _, err := tx.Exec(ctx, insertOrderItemSQL, orderID, item.MenuItemID, item.Quantity, item.UnitPrice, subtotals[i]); err != nil {
			return fmt.Errorf("inserting order item: %w", err)
		}
	}

	first := req.Items[0]
	flat := FlatOrder{
		OrderRef:    ref,
		TotalAmount: total,
		OrderType:   OrderTypeDineIn,
		Status:      StatusPending,
		Customer:    *req.Customer,
		Store:       *req.Store,
		Employee:    *req.Employee,
		MenuItemID:  first.MenuItemID,
		ItemName:    first.Name,
		Category:    first.Category,
		UnitPrice:   first.UnitPrice,
		Quantity:    first.Quantity,
		Subtotal:    subtotals[0],
	}
	flat.setOrderDate(placedAt)
	if _, err := tx.Exec(ctx, insertFlatOrderSQL, flat.args()...); err != nil {
		return fmt.Errorf("inserting denormalized order: %w", err)
	}
	return nil
}
