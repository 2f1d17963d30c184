package domain

import (
	"encoding/json"
	"time"
)

// Remote node types decoded from the admin GraphQL connection edges. Field
// names follow the upstream schema; remote ids are opaque gid strings.

// MoneyAmount is a bare money value, amount serialized as a decimal string.
type MoneyAmount struct {
	Amount string `json:"amount"`
}

// MoneySet is the shop-currency money bag attached to orders and line items.
type MoneySet struct {
	ShopMoney struct {
		Amount       string `json:"amount"`
		CurrencyCode string `json:"currencyCode"`
	} `json:"shopMoney"`
}

// RemoteRef is a reference to another remote object carrying only its id.
type RemoteRef struct {
	ID string `json:"id"`
}

// RemoteCustomer is one customer node.
type RemoteCustomer struct {
	ID             string      `json:"id"`
	FirstName      string      `json:"firstName"`
	LastName       string      `json:"lastName"`
	Email          string      `json:"email"`
	AmountSpent    MoneyAmount `json:"amountSpent"`
	NumberOfOrders json.Number `json:"numberOfOrders"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// OrdersCount returns the customer's order count. The upstream schema
// serializes the counter as a string, so it arrives as a json.Number either way.
func (c *RemoteCustomer) OrdersCount() int64 {
	n, _ := c.NumberOfOrders.Int64()
	return n
}

// RemoteProduct is one product node.
type RemoteProduct struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	BodyHTML    string    `json:"bodyHtml"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"productType"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RemoteLineItem is one line item node nested inside an order.
type RemoteLineItem struct {
	Title            string     `json:"title"`
	Quantity         int        `json:"quantity"`
	OriginalTotalSet MoneySet   `json:"originalTotalSet"`
	Product          *RemoteRef `json:"product"`
}

// LineItemConnection is the embedded line item connection of an order node.
type LineItemConnection struct {
	Edges []struct {
		Node RemoteLineItem `json:"node"`
	} `json:"edges"`
}

// RemoteOrder is one order node. Customer is nil when the order has no
// attached customer; LineItems is nil when the query did not select them.
type RemoteOrder struct {
	ID                string              `json:"id"`
	TotalPriceSet     MoneySet            `json:"totalPriceSet"`
	FinancialStatus   string              `json:"displayFinancialStatus"`
	FulfillmentStatus string              `json:"displayFulfillmentStatus"`
	CreatedAt         time.Time           `json:"createdAt"`
	Customer          *RemoteRef          `json:"customer"`
	LineItems         *LineItemConnection `json:"lineItems"`
}

// CarriesLineItems reports whether the node included a line item collection.
// An order carrying an empty collection still replaces its stored items.
func (o *RemoteOrder) CarriesLineItems() bool {
	return o.LineItems != nil
}

// Items flattens the embedded line item edges.
func (o *RemoteOrder) Items() []RemoteLineItem {
	if o.LineItems == nil {
		return nil
	}
	items := make([]RemoteLineItem, 0, len(o.LineItems.Edges))
	for _, e := range o.LineItems.Edges {
		items = append(items, e.Node)
	}
	return items
}
