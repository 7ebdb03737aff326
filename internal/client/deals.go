package client

// DealsClient implements crmhook.DealsClient.
type DealsClient struct {
	entityClient
}

// NewDealsClient creates a new deals client.
func NewDealsClient(client *Client) *DealsClient {
	return &DealsClient{entityClient{
		client: client,
		prefix: "crm.deal",
		relations: map[string]string{
			"CONTACTS":    "crm.deal.contact.items.get",
			"PRODUCTROWS": "crm.deal.productrows.get",
		},
	}}
}
