package shopify

// Fixed page sizes per entity type. Orders page smaller because each node
// carries its embedded line item connection.
const (
	customersPageSize = 100
	productsPageSize  = 100
	ordersPageSize    = 50
)

const customersQuery = `
  query getCustomers($first: Int!, $cursor: String, $query: String) {
    customers(first: $first, after: $cursor, query: $query) {
      pageInfo {
        hasNextPage
        endCursor
      }
      edges {
        node {
          id
          firstName
          lastName
          email
          amountSpent {
            amount
          }
          numberOfOrders
          createdAt
        }
      }
    }
  }
`

const productsQuery = `
  query getProducts($first: Int!, $cursor: String, $query: String) {
    products(first: $first, after: $cursor, query: $query) {
      pageInfo {
        hasNextPage
        endCursor
      }
      edges {
        node {
          id
          title
          bodyHtml
          vendor
          productType
          status
          createdAt
        }
      }
    }
  }
`

const ordersQuery = `
  query getOrders($first: Int!, $cursor: String, $query: String) {
    orders(first: $first, after: $cursor, query: $query, sortKey: CREATED_AT, reverse: true) {
      pageInfo {
        hasNextPage
        endCursor
      }
      edges {
        node {
          id
          totalPriceSet {
            shopMoney {
              amount
              currencyCode
            }
          }
          displayFinancialStatus
          displayFulfillmentStatus
          createdAt
          customer {
            id
          }
          lineItems(first: 50) {
            edges {
              node {
                title
                quantity
                originalTotalSet {
                  shopMoney {
                    amount
                  }
                }
                product {
                  id
                }
              }
            }
          }
        }
      }
    }
  }
`
