package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/jacobarthurs/schemabench/internal/store"
)

const (
	selectPriceSQL = `SELECT price::float8 FROM menu_items WHERE menu_item_id = $1`

	insertOrderSQL = `
		INSERT INTO orders (customer_id, store_id, employee_id, total_amount, order_type, status, order_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING order_id`

	insertOrderItemSQL = `
		INSERT INTO order_items (order_id, menu_item_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5)`

	normalizedSalesByStoreSQL = `
		SELECT
			s.store_name,
			s.location,
			COUNT(o.order_id)                                AS total_orders,
			SUM(o.total_amount)::float8                      AS total_revenue,
			AVG(o.total_amount)::float8                      AS avg_order_value,
			COUNT(DISTINCT o.customer_id)                    AS unique_customers,
			MIN(o.total_amount)::float8                      AS min_order_value,
			MAX(o.total_amount)::float8                      AS max_order_value,
			COALESCE(STDDEV_SAMP(o.total_amount), 0)::float8 AS stddev_order_value
		FROM stores s
		JOIN orders o ON s.store_id = o.store_id
		WHERE o.order_date >= NOW() - make_interval(days => $1)
		GROUP BY s.store_id, s.store_name, s.location
		ORDER BY total_revenue DESC, s.store_name`

	normalizedBestSellingItemsSQL = `
		SELECT
			mi.item_name,
			mi.category,
			SUM(oi.quantity)::bigint      AS total_quantity,
			SUM(oi.subtotal)::float8      AS total_revenue,
			COUNT(DISTINCT oi.order_id)   AS orders_count
		FROM menu_items mi
		JOIN order_items oi ON mi.menu_item_id = oi.menu_item_id
		JOIN orders o ON oi.order_id = o.order_id
		WHERE o.order_date >= NOW() - make_interval(days => $1)
		GROUP BY mi.menu_item_id, mi.item_name, mi.category
		ORDER BY total_quantity DESC, mi.item_name
		LIMIT $2`
)

// NormalizedSchema writes orders as a header plus one order_items row per line
// and aggregates by joining back to the reference tables.
type NormalizedSchema struct {
	db   store.DB
	opts options
}

func NewNormalized(db store.DB, opts ...Option) *NormalizedSchema {
	return &NormalizedSchema{db: db, opts: newOptions(opts)}
}

func (n *NormalizedSchema) Schema() Schema { return Normalized }

// PlaceOrder resolves every price from the catalog, inserts the header and its
// lines, and commits. Nothing is visible unless every statement succeeded.
func (n *NormalizedSchema) PlaceOrder(ctx context.Context, req OrderRequest) (Placement, error) {
	if err := req.validateRefs(); err != nil {
		return Placement{}, err
	}

	var placement Placement
	err := store.WithTx(ctx, n.db, func(tx store.Tx) error {
		order := Order{
			CustomerID: req.CustomerID,
			StoreID:    req.StoreID,
			EmployeeID: req.EmployeeID,
			OrderType:  OrderTypeDineIn,
			Status:     StatusPending,
			OrderDate:  n.opts.now(),
			Lines:      make([]OrderLine, 0, len(req.Items)),
		}

		subtotals := make([]float64, 0, len(req.Items))
		for _, item := range req.Items {
			price, err := lookupPrice(ctx, tx, item.MenuItemID)
			if err != nil {
				return err
			}
			line := OrderLine{
				MenuItemID: item.MenuItemID,
				Quantity:   item.Quantity,
				UnitPrice:  price,
				Subtotal:   subtotal(price, item.Quantity),
			}
			order.Lines = append(order.Lines, line)
			subtotals = append(subtotals, line.Subtotal)
		}
		order.TotalAmount = orderTotal(subtotals)

		err := tx.QueryRow(ctx, insertOrderSQL,
			order.CustomerID, order.StoreID, order.EmployeeID,
			order.TotalAmount, order.OrderType, order.Status, order.OrderDate,
		).Scan(&order.ID)
		if err != nil {
			return fmt.Errorf("inserting order: %w", err)
		}

		for i, line := range order.Lines {
			_, err := tx.Exec(ctx, insertOrderItemSQL,
				order.ID, line.MenuItemID, line.Quantity, line.UnitPrice, line.Subtotal)
			if err != nil {
				return fmt.Errorf("inserting order item %d: %w", i, err)
			}
		}

		placement = Placement{
			OrderID:     strconv.FormatInt(order.ID, 10),
			TotalAmount: order.TotalAmount,
		}
		return nil
	})
	if err != nil {
		return Placement{}, err
	}
	return placement, nil
}

func lookupPrice(ctx context.Context, q store.Querier, menuItemID int) (float64, error) {
	var price float64
	err := q.QueryRow(ctx, selectPriceSQL, menuItemID).Scan(&price)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: menu item %d not found", ErrInconsistent, menuItemID)
	}
	if err != nil {
		return 0, fmt.Errorf("resolving price of menu item %d: %w", menuItemID, err)
	}
	return price, nil
}

func (n *NormalizedSchema) SalesByStoreQuery() (string, []any) {
	return normalizedSalesByStoreSQL, []any{n.opts.windowDays}
}

func (n *NormalizedSchema) SalesByStore(ctx context.Context) ([]StoreSales, error) {
	sql, args := n.SalesByStoreQuery()
	return collectStoreSales(ctx, n.db, sql, args...)
}

func (n *NormalizedSchema) BestSellingItems(ctx context.Context, limit int) ([]ItemSales, error) {
	return collectItemSales(ctx, n.db, normalizedBestSellingItemsSQL, n.opts.windowDays, itemsLimit(limit))
}
