package client

// LeadsClient implements crmhook.LeadsClient.
type LeadsClient struct {
	entityClient
}

// NewLeadsClient creates a new leads client.
func NewLeadsClient(client *Client) *LeadsClient {
	return &LeadsClient{entityClient{
		client: client,
		prefix: "crm.lead",
		relations: map[string]string{
			"PRODUCTROWS": "crm.lead.productrows.get",
		},
	}}
}
