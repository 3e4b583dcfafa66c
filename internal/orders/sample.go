package orders

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/jackc/pgx/v5"

	"github.com/jacobarthurs/schemabench/internal/store"
)

const (
	sampleCustomersSQL = `SELECT customer_id AS id, first_name, last_name, email, COALESCE(phone, '') AS phone
		FROM customers ORDER BY customer_id LIMIT 10`
	sampleStoresSQL = `SELECT store_id AS id, store_name AS name, location, COALESCE(phone, '') AS phone
		FROM stores ORDER BY store_id`
	sampleEmployeesSQL = `SELECT employee_id AS id, first_name, last_name, position
		FROM employees ORDER BY employee_id`
	sampleMenuItemsSQL = `SELECT menu_item_id AS id, item_name AS name, category, price::float8 AS price
		FROM menu_items WHERE available ORDER BY menu_item_id`

	customerByIDSQL = `SELECT customer_id AS id, first_name, last_name, email, COALESCE(phone, '') AS phone
		FROM customers WHERE customer_id = $1`
	storeByIDSQL = `SELECT store_id AS id, store_name AS name, location, COALESCE(phone, '') AS phone
		FROM stores WHERE store_id = $1`
	employeeByIDSQL = `SELECT employee_id AS id, first_name, last_name, position
		FROM employees WHERE employee_id = $1`

	// PositionStoreManager is excluded when picking who takes a random order.
	PositionStoreManager = "Store Manager"
)

// SampleData is the read-only reference data callers use to build valid requests.
type SampleData struct {
	Customers []Customer `json:"customers"`
	Stores    []Store    `json:"stores"`
	Employees []Employee `json:"employees"`
	MenuItems []MenuItem `json:"menuItems"`
}

func LoadSampleData(ctx context.Context, q store.Querier) (SampleData, error) {
	var data SampleData
	var err error

	if data.Customers, err = collect[Customer](ctx, q, sampleCustomersSQL); err != nil {
		return SampleData{}, fmt.Errorf("loading customers: %w", err)
	}
	if data.Stores, err = collect[Store](ctx, q, sampleStoresSQL); err != nil {
		return SampleData{}, fmt.Errorf("loading stores: %w", err)
	}
	if data.Employees, err = collect[Employee](ctx, q, sampleEmployeesSQL); err != nil {
		return SampleData{}, fmt.Errorf("loading employees: %w", err)
	}
	if data.MenuItems, err = collect[MenuItem](ctx, q, sampleMenuItemsSQL); err != nil {
		return SampleData{}, fmt.Errorf("loading menu items: %w", err)
	}

	return data, nil
}

func collect[T any](ctx context.Context, q store.Querier, sql string) ([]T, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

// WithReferences returns s extended with the customer, store and employee
// that req names by id but the sample lists lack, read from q by primary key.
// The customer list is trimmed, so a real customer is often missing. Ids that
// do not exist are left for Complete to reject.
func (s SampleData) WithReferences(ctx context.Context, q store.Querier, req OrderRequest) (SampleData, error) {
	if req.Customer == nil && req.CustomerID != 0 && !slices.ContainsFunc(s.Customers, func(c Customer) bool { return c.ID == req.CustomerID }) {
		c, ok, err := lookupByID[Customer](ctx, q, customerByIDSQL, req.CustomerID)
		if err != nil {
			return SampleData{}, fmt.Errorf("loading customer %d: %w", req.CustomerID, err)
		}
		if ok {
			s.Customers = append(slices.Clip(s.Customers), c)
		}
	}
	if req.Store == nil && req.StoreID != 0 && !slices.ContainsFunc(s.Stores, func(st Store) bool { return st.ID == req.StoreID }) {
		st, ok, err := lookupByID[Store](ctx, q, storeByIDSQL, req.StoreID)
		if err != nil {
			return SampleData{}, fmt.Errorf("loading store %d: %w", req.StoreID, err)
		}
		if ok {
			s.Stores = append(slices.Clip(s.Stores), st)
		}
	}
	if req.Employee == nil && req.EmployeeID != 0 && !slices.ContainsFunc(s.Employees, func(e Employee) bool { return e.ID == req.EmployeeID }) {
		e, ok, err := lookupByID[Employee](ctx, q, employeeByIDSQL, req.EmployeeID)
		if err != nil {
			return SampleData{}, fmt.Errorf("loading employee %d: %w", req.EmployeeID, err)
		}
		if ok {
			s.Employees = append(slices.Clip(s.Employees), e)
		}
	}
	return s, nil
}

func lookupByID[T any](ctx context.Context, q store.Querier, sql string, id int) (T, bool, error) {
	var zero T
	rows, err := q.Query(ctx, sql, id)
	if err != nil {
		return zero, false, err
	}
	v, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Complete fills in whatever req lacks so that both layouts can place it: the
// foreign keys from bundles and the bundles from foreign keys. Item price,
// name and category always come from the menu, since the normalized layout
// prices from the catalog and both layouts must place the same order.
func (s SampleData) Complete(req OrderRequest) (OrderRequest, error) {
	if req.CustomerID == 0 && req.Customer != nil {
		req.CustomerID = req.Customer.ID
	}
	if req.StoreID == 0 && req.Store != nil {
		req.StoreID = req.Store.ID
	}
	if req.EmployeeID == 0 && req.Employee != nil {
		req.EmployeeID = req.Employee.ID
	}

	if req.Customer == nil {
		c, ok := find(s.Customers, func(c Customer) bool { return c.ID == req.CustomerID })
		if !ok {
			return OrderRequest{}, fmt.Errorf("%w: unknown customer %d", ErrValidation, req.CustomerID)
		}
		req.Customer = &c
	}
	if req.Store == nil {
		st, ok := find(s.Stores, func(st Store) bool { return st.ID == req.StoreID })
		if !ok {
			return OrderRequest{}, fmt.Errorf("%w: unknown store %d", ErrValidation, req.StoreID)
		}
		req.Store = &st
	}
	if req.Employee == nil {
		e, ok := find(s.Employees, func(e Employee) bool { return e.ID == req.EmployeeID })
		if !ok {
			return OrderRequest{}, fmt.Errorf("%w: unknown employee %d", ErrValidation, req.EmployeeID)
		}
		req.Employee = &e
	}

	items := make([]Item, len(req.Items))
	for i, item := range req.Items {
		m, ok := find(s.MenuItems, func(m MenuItem) bool { return m.ID == item.MenuItemID })
		if !ok {
			return OrderRequest{}, fmt.Errorf("%w: unknown menu item %d", ErrValidation, item.MenuItemID)
		}
		item.UnitPrice = m.Price
		item.Name = m.Name
		item.Category = m.Category
		items[i] = item
	}
	req.Items = items

	return req, nil
}

// RandomOrder builds a one-item order from the sample data, the way the
// dashboard simulates a walk-in purchase.
func (s SampleData) RandomOrder(r *rand.Rand) (OrderRequest, error) {
	var staff []Employee
	for _, e := range s.Employees {
		if e.Position != PositionStoreManager {
			staff = append(staff, e)
		}
	}
	if len(s.Customers) == 0 || len(s.Stores) == 0 || len(staff) == 0 || len(s.MenuItems) == 0 {
		return OrderRequest{}, fmt.Errorf("%w: sample data is empty; run setup --seed first", ErrInconsistent)
	}

	customer := s.Customers[r.IntN(len(s.Customers))]
	st := s.Stores[r.IntN(len(s.Stores))]
	employee := staff[r.IntN(len(staff))]
	menuItem := s.MenuItems[r.IntN(len(s.MenuItems))]

	return OrderRequest{
		CustomerID: customer.ID,
		StoreID:    st.ID,
		EmployeeID: employee.ID,
		Customer:   &customer,
		Store:      &st,
		Employee:   &employee,
		Items: []Item{{
			MenuItemID: menuItem.ID,
			Quantity:   r.IntN(3) + 1,
			Name:       menuItem.Name,
			Category:   menuItem.Category,
			UnitPrice:  menuItem.Price,
		}},
	}, nil
}

func find[T any](items []T, match func(T) bool) (T, bool) {
	for _, item := range items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}
