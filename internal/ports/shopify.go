package ports

import (
	"context"
	"encoding/json"

	"shopmirror/internal/domain"
)

// AdminAPI is the single paginated-query call against the upstream admin
// GraphQL API. Implementations own rate-limit handling and transport retry;
// callers receive the data object or one of the domain error taxonomy values.
type AdminAPI interface {
	Query(ctx context.Context, cred domain.Credential, query string, vars map[string]any) (json.RawMessage, error)
}

// StorefrontGateway walks one tenant's upstream collections page by page,
// invoking fn for every node and returning the number of nodes visited.
// The window's filter is applied to every page request of the walk.
type StorefrontGateway interface {
	EachCustomer(ctx context.Context, cred domain.Credential, window domain.SyncWindow, fn func(*domain.RemoteCustomer) error) (int, error)
	EachProduct(ctx context.Context, cred domain.Credential, window domain.SyncWindow, fn func(*domain.RemoteProduct) error) (int, error)
	EachOrder(ctx context.Context, cred domain.Credential, window domain.SyncWindow, fn func(*domain.RemoteOrder) error) (int, error)
}
