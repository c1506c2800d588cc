package order

import "time"

type Type string

const (
	TypeDineIn   Type = "DINE_IN"
	TypeTakeaway Type = "TAKEAWAY"
	TypeDelivery Type = "DELIVERY"
	TypeBanquet  Type = "BANQUET"
)

// Courier is the delivery assignment attached to an order, when any.
type Courier struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Payment is the denormalized payment summary the API sends with each order.
type Payment struct {
	Method string `json:"method,omitempty"`
	Amount string `json:"amount,omitempty"`
	Status string `json:"status,omitempty"`
}

type Additive struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// Item is a single position inside an order.
type Item struct {
	ID          string     `json:"id"`
	ProductID   string     `json:"product_id"`
	ProductName string     `json:"product_name,omitempty"`
	Quantity    int        `json:"quantity"`
	Additives   []Additive `json:"additives,omitempty"`
	Comment     string     `json:"comment,omitempty"`
	Status      ItemStatus `json:"status"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
}

// Order is the full order document as delivered by the API and the push feed.
// Events always carry whole documents, never partial patches, so reconciliation
// is full replacement by id.
type Order struct {
	ID         string    `json:"id"`
	Number     string    `json:"number"`
	Status     Status    `json:"status"`
	Type       Type      `json:"type"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Items      []Item    `json:"items"`
	Courier    *Courier  `json:"courier,omitempty"`
	Payment    *Payment  `json:"payment,omitempty"`
	CustomerID string    `json:"customer_id,omitempty"`
	Scheduled  bool      `json:"is_scheduled,omitempty"`
}

// ItemsWithStatus returns the items of o currently in the given status.
func (o Order) ItemsWithStatus(status ItemStatus) []Item {
	var result []Item
	for _, item := range o.Items {
		if item.Status == status {
			result = append(result, item)
		}
	}
	return result
}
