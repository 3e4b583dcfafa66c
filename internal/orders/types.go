package orders

import (
	"fmt"
	"time"
)

type Schema string

const (
	Normalized   Schema = "normalized"
	Denormalized Schema = "denormalized"
)

// Schemas lists both layouts in the order they are reported.
var Schemas = []Schema{Normalized, Denormalized}

func ParseSchema(s string) (Schema, error) {
	switch Schema(s) {
	case Normalized, Denormalized:
		return Schema(s), nil
	default:
		return "", fmt.Errorf("invalid schema %q: must be \"normalized\" or \"denormalized\"", s)
	}
}

func (s Schema) String() string { return string(s) }

const (
	OrderTypeDineIn = "dine_in"
	StatusPending   = "pending"
)

type Customer struct {
	ID        int    `json:"id" db:"id"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Email     string `json:"email" db:"email"`
	Phone     string `json:"phone" db:"phone"`
}

type Store struct {
	ID       int    `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Location string `json:"location" db:"location"`
	Phone    string `json:"phone" db:"phone"`
}

type Employee struct {
	ID        int    `json:"id" db:"id"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Position  string `json:"position" db:"position"`
}

type MenuItem struct {
	ID       int     `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Category string  `json:"category" db:"category"`
	Price    float64 `json:"price" db:"price"`
}

// Item is one requested line. The normalized path only reads MenuItemID and
// Quantity and resolves the price itself; the denormalized path has no catalog
// to join against and trusts Name, Category and UnitPrice.
type Item struct {
	MenuItemID int     `json:"menuItemId"`
	Quantity   int     `json:"quantity"`
	Name       string  `json:"name,omitempty"`
	Category   string  `json:"category,omitempty"`
	UnitPrice  float64 `json:"unitPrice,omitempty"`
}

// OrderRequest carries both the foreign keys used by the normalized layout and
// the pre-fetched attribute bundles copied into the denormalized row.
type OrderRequest struct {
	CustomerID int `json:"customerId,omitempty"`
	StoreID    int `json:"storeId,omitempty"`
	EmployeeID int `json:"employeeId,omitempty"`

	Customer *Customer `json:"customerData,omitempty"`
	Store    *Store    `json:"storeData,omitempty"`
	Employee *Employee `json:"employeeData,omitempty"`

	Items []Item `json:"items"`
}

type Placement struct {
	OrderID     string  `json:"orderId"`
	TotalAmount float64 `json:"totalAmount"`
}

// Order is the normalized header row.
type Order struct {
	ID          int64
	CustomerID  int
	StoreID     int
	EmployeeID  int
	TotalAmount float64
	OrderType   string
	Status      string
	OrderDate   time.Time
	Lines       []OrderLine
}

type OrderLine struct {
	OrderID    int64
	MenuItemID int
	Quantity   int
	UnitPrice  float64
	Subtotal   float64
}

// FlatOrder is one denormalized_orders row. It holds a single line item.
type FlatOrder struct {
	OrderRef    string
	OrderDate   time.Time
	TotalAmount float64
	OrderType   string
	Status      string

	Customer Customer
	Store    Store
	Employee Employee

	MenuItemID int
	ItemName   string
	Category   string
	UnitPrice  float64
	Quantity   int
	Subtotal   float64

	OrderMonth int
	OrderDay   string
	OrderHour  int
}

type StoreSales struct {
	StoreName        string  `json:"storeName" db:"store_name"`
	Location         string  `json:"location" db:"location"`
	TotalOrders      int64   `json:"totalOrders" db:"total_orders"`
	TotalRevenue     float64 `json:"totalRevenue" db:"total_revenue"`
	AvgOrderValue    float64 `json:"avgOrderValue" db:"avg_order_value"`
	UniqueCustomers  int64   `json:"uniqueCustomers" db:"unique_customers"`
	MinOrderValue    float64 `json:"minOrderValue" db:"min_order_value"`
	MaxOrderValue    float64 `json:"maxOrderValue" db:"max_order_value"`
	StddevOrderValue float64 `json:"stddevOrderValue" db:"stddev_order_value"`
}

type ItemSales struct {
	ItemName      string  `json:"itemName" db:"item_name"`
	Category      string  `json:"category" db:"category"`
	TotalQuantity int64   `json:"totalQuantity" db:"total_quantity"`
	TotalRevenue  float64 `json:"totalRevenue" db:"total_revenue"`
	OrdersCount   int64   `json:"ordersCount" db:"orders_count"`
}
