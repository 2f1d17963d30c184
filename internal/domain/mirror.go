package domain

// OrderItemRecord is one line item ready for storage: the remote snapshot
// plus its locally resolved product id. ProductID stays nil when the product
// is absent from the mirror.
type OrderItemRecord struct {
	ProductID *int64
	Title     string
	Quantity  int
	Price     string
}
