package shopify

import (
	"context"
	"encoding/json"
	"fmt"

	"shopmirror/internal/domain"
	"shopmirror/internal/ports"
)

// pageSpec describes one connection walk: the query template, the data field
// holding the connection, and the fixed page size for that entity type.
type pageSpec struct {
	query string
	field string
	first int
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type connection struct {
	PageInfo pageInfo `json:"pageInfo"`
	Edges    []struct {
		Node json.RawMessage `json:"node"`
	} `json:"edges"`
}

// eachPage walks every page of one connection, passing each raw node to fn
// and returning the number of nodes visited. The end cursor is round-tripped
// verbatim into the next request. A response without the connection field is
// an empty terminal page, not an error.
func eachPage(
	ctx context.Context,
	api ports.AdminAPI,
	cred domain.Credential,
	spec pageSpec,
	filter string,
	fn func(json.RawMessage) error,
) (int, error) {
	var cursor *string
	count := 0

	for {
		vars := map[string]any{"first": spec.first}
		if cursor != nil {
			vars["cursor"] = *cursor
		}
		if filter != "" {
			vars["query"] = filter
		}

		data, err := api.Query(ctx, cred, spec.query, vars)
		if err != nil {
			return count, err
		}

		var envelope map[string]*connection
		if err := json.Unmarshal(data, &envelope); err != nil {
			return count, fmt.Errorf("failed to decode %s page: %w", spec.field, err)
		}

		conn := envelope[spec.field]
		if conn == nil || conn.Edges == nil {
			return count, nil
		}

		for _, edge := range conn.Edges {
			if err := fn(edge.Node); err != nil {
				return count, err
			}
			count++
		}

		if !conn.PageInfo.HasNextPage {
			return count, nil
		}
		next := conn.PageInfo.EndCursor
		cursor = &next
	}
}
