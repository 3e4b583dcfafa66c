package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/jacobarthurs/schemabench/internal/store"
)

const (
	insertFlatOrderSQL = `
		INSERT INTO denormalized_orders (
			order_ref, order_date, total_amount, order_type, status,
			customer_id, customer_first_name, customer_last_name, customer_email, customer_phone,
			store_id, store_name, store_location, store_phone,
			employee_id, employee_first_name, employee_last_name, employee_position,
			menu_item_id, item_name, category, unit_price, quantity, subtotal,
			order_month, order_day, order_hour
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24,
			$25, $26, $27
		)`

	denormalizedSalesByStoreSQL = `
		SELECT
			store_name,
			store_location                                 AS location,
			COUNT(*)                                       AS total_orders,
			SUM(total_amount)::float8                      AS total_revenue,
			AVG(total_amount)::float8                      AS avg_order_value,
			COUNT(DISTINCT customer_id)                    AS unique_customers,
			MIN(total_amount)::float8                      AS min_order_value,
			MAX(total_amount)::float8                      AS max_order_value,
			COALESCE(STDDEV_SAMP(total_amount), 0)::float8 AS stddev_order_value
		FROM denormalized_orders
		WHERE order_date >= NOW() - make_interval(days => $1)
		GROUP BY store_id, store_name, store_location
		ORDER BY total_revenue DESC, store_name`

	denormalizedBestSellingItemsSQL = `
		SELECT
			item_name,
			category,
			SUM(quantity)::bigint   AS total_quantity,
			SUM(subtotal)::float8   AS total_revenue,
			COUNT(*)                AS orders_count
		FROM denormalized_orders
		WHERE order_date >= NOW() - make_interval(days => $1)
		GROUP BY item_name, category
		ORDER BY total_quantity DESC, item_name
		LIMIT $2`
)

// DenormalizedSchema writes each order as a single flat row carrying copies of
// its customer, store, employee and first line item.
//
// The flat row cannot hold a variable number of lines, so only the first item
// is kept while TotalAmount covers every item. The stored row therefore cannot
// reproduce its own total, and per-item aggregates on this layout count only
// first items.
type DenormalizedSchema struct {
	db   store.DB
	opts options
}

func NewDenormalized(db store.DB, opts ...Option) *DenormalizedSchema {
	return &DenormalizedSchema{db: db, opts: newOptions(opts)}
}

func (d *DenormalizedSchema) Schema() Schema { return Denormalized }

func (d *DenormalizedSchema) PlaceOrder(ctx context.Context, req OrderRequest) (Placement, error) {
	if err := req.validateBundles(); err != nil {
		return Placement{}, err
	}

	record := d.flatten(req)

	// A single statement, but scoped like the normalized write so the two
	// paths pay the same BEGIN/COMMIT round trips.
	err := store.WithTx(ctx, d.db, func(tx store.Tx) error {
		if _, err := tx.Exec(ctx, insertFlatOrderSQL, record.args()...); err != nil {
			return fmt.Errorf("inserting denormalized order: %w", err)
		}
		return nil
	})
	if err != nil {
		return Placement{}, err
	}

	return Placement{OrderID: record.OrderRef, TotalAmount: record.TotalAmount}, nil
}

func (d *DenormalizedSchema) flatten(req OrderRequest) FlatOrder {
	subtotals := make([]float64, 0, len(req.Items))
	for _, item := range req.Items {
		subtotals = append(subtotals, subtotal(item.UnitPrice, item.Quantity))
	}

	first := req.Items[0]
	record := FlatOrder{
		OrderRef:    d.opts.newRef(),
		TotalAmount: orderTotal(subtotals),
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
	record.setOrderDate(d.opts.now())
	return record
}

// setOrderDate stamps the row and derives the calendar fields from the same
// instant, so reads never need date functions.
func (f *FlatOrder) setOrderDate(t time.Time) {
	f.OrderDate = t
	f.OrderMonth = t.Year()*100 + int(t.Month())
	f.OrderDay = t.Format(time.DateOnly)
	f.OrderHour = t.Hour()
}

func (f FlatOrder) args() []any {
	return []any{
		f.OrderRef, f.OrderDate, f.TotalAmount, f.OrderType, f.Status,
		f.Customer.ID, f.Customer.FirstName, f.Customer.LastName, f.Customer.Email, f.Customer.Phone,
		f.Store.ID, f.Store.Name, f.Store.Location, f.Store.Phone,
		f.Employee.ID, f.Employee.FirstName, f.Employee.LastName, f.Employee.Position,
		f.MenuItemID, f.ItemName, f.Category, f.UnitPrice, f.Quantity, f.Subtotal,
		f.OrderMonth, f.OrderDay, f.OrderHour,
	}
}

func (d *DenormalizedSchema) SalesByStoreQuery() (string, []any) {
	return denormalizedSalesByStoreSQL, []any{d.opts.windowDays}
}

func (d *DenormalizedSchema) SalesByStore(ctx context.Context) ([]StoreSales, error) {
	sql, args := d.SalesByStoreQuery()
	return collectStoreSales(ctx, d.db, sql, args...)
}

func (d *DenormalizedSchema) BestSellingItems(ctx context.Context, limit int) ([]ItemSales, error) {
	return collectItemSales(ctx, d.db, denormalizedBestSellingItemsSQL, d.opts.windowDays, itemsLimit(limit))
}
