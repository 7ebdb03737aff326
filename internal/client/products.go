package client

// ProductsClient implements crmhook.ProductsClient.
type ProductsClient struct {
	entityClient
}

// NewProductsClient creates a new products client. Products expose no
// related sub-resources; GetWithRelations with any name fails as a lookup
// error.
func NewProductsClient(client *Client) *ProductsClient {
	return &ProductsClient{entityClient{
		client: client,
		prefix: "crm.product",
	}}
}
