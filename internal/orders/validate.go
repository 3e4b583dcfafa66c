package orders

import "fmt"

func validateItems(items []Item, requirePrice bool) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrValidation)
	}
	for i, item := range items {
		if item.MenuItemID <= 0 {
			return fmt.Errorf("%w: items[%d].menuItemId is required", ErrValidation, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d].quantity must be positive", ErrValidation, i)
		}
		if requirePrice && item.UnitPrice <= 0 {
			return fmt.Errorf("%w: items[%d].unitPrice is required", ErrValidation, i)
		}
	}
	return nil
}

func (r OrderRequest) validateRefs() error {
	switch {
	case r.CustomerID <= 0:
		return fmt.Errorf("%w: customerId is required", ErrValidation)
	case r.StoreID <= 0:
		return fmt.Errorf("%w: storeId is required", ErrValidation)
	case r.EmployeeID <= 0:
		return fmt.Errorf("%w: employeeId is required", ErrValidation)
	}
	return validateItems(r.Items, false)
}

func (r OrderRequest) validateBundles() error {
	switch {
	case r.Customer == nil || r.Customer.ID <= 0:
		return fmt.Errorf("%w: customerData is required", ErrValidation)
	case r.Store == nil || r.Store.ID <= 0:
		return fmt.Errorf("%w: storeData is required", ErrValidation)
	case r.Employee == nil || r.Employee.ID <= 0:
		return fmt.Errorf("%w: employeeData is required", ErrValidation)
	}
	return validateItems(r.Items, true)
}
