package models

// PaymentStatus tracks whether a dish order has been settled.
type PaymentStatus string

const (
	PaymentNotPaid PaymentStatus = "not_paid"
	PaymentPaid    PaymentStatus = "paid"
)

// DishStatus is the kitchen workflow state, orthogonal to payment.
type DishStatus string

const (
	DishPending   DishStatus = "pending"
	DishPreparing DishStatus = "preparing"
	DishReady     DishStatus = "ready"
	DishDelivered DishStatus = "delivered"
)

// ValidDishStatus reports whether s is one of the known kitchen states.
func ValidDishStatus(s DishStatus) bool {
	switch s {
	case DishPending, DishPreparing, DishReady, DishDelivered:
		return true
	}
	return false
}

// SelectedOption is one customization chosen for a dish (e.g. "Extra cheese"),
// with its surcharge. Order matters for display, so options are a slice.
type SelectedOption struct {
	Name  string  `json:"option_name"`
	Price float64 `json:"surcharge_price"`
}

// DishOrder is one billable line item on a table's ledger.
//
// TotalPrice is computed exactly once when the cart is submitted
// (quantity × unit price + selected option surcharges) and is immutable
// afterwards; only Status and PaymentStatus mutate. Dish orders are never
// deleted — the ledger is the audit trail for the table.
type DishOrder struct {
	// ID is the unique identifier for the dish order (UUID format).
	ID string `json:"dish_order_id"`

	// TableID identifies the table whose ledger this order belongs to.
	TableID string `json:"table_id"`

	// Item is the menu item name as ordered.
	Item string `json:"item"`

	// Quantity is the number of units ordered (always positive).
	Quantity int `json:"quantity"`

	// UnitPrice is the menu price per unit, before option surcharges.
	UnitPrice float64 `json:"price"`

	// TotalPrice is the immutable billable amount for this line.
	TotalPrice float64 `json:"total_price"`

	// PayerName is the display name of the participant who ordered.
	// Cosmetic only — identity lives in UserID/GuestID.
	PayerName string `json:"guest_name"`

	// UserID is set when the participant is authenticated, else empty.
	UserID string `json:"user_id,omitempty"`

	// GuestID is the session-issued identity key for unauthenticated guests.
	GuestID string `json:"guest_id,omitempty"`

	// Status is the kitchen workflow state.
	Status DishStatus `json:"status"`

	// PaymentStatus transitions not_paid → paid exactly once.
	PaymentStatus PaymentStatus `json:"payment_status"`

	// SelectedOptions are the customizations priced into TotalPrice.
	SelectedOptions []SelectedOption `json:"selected_options,omitempty"`

	// Images are menu item image URLs, carried for display.
	Images []string `json:"images,omitempty"`

	// CreatedAt is the Unix timestamp when the order was submitted.
	CreatedAt int64 `json:"created_at"`
}

// CartItem is one line of an unsubmitted cart. Pricing is resolved into a
// DishOrder at submission time and never again.
type CartItem struct {
	Item            string           `json:"item"`
	Quantity        int              `json:"quantity"`
	UnitPrice       float64          `json:"price"`
	SelectedOptions []SelectedOption `json:"selected_options,omitempty"`
	Images          []string         `json:"images,omitempty"`
}

// LineTotal computes the immutable total for a cart line:
// quantity × unit price + selected option surcharges.
func (c CartItem) LineTotal() float64 {
	total := float64(c.Quantity) * c.UnitPrice
	for _, opt := range c.SelectedOptions {
		total += opt.Price
	}
	return total
}
