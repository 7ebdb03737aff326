package client

// CompaniesClient implements crmhook.CompaniesClient.
type CompaniesClient struct {
	entityClient
}

// NewCompaniesClient creates a new companies client.
func NewCompaniesClient(client *Client) *CompaniesClient {
	return &CompaniesClient{entityClient{
		client: client,
		prefix: "crm.company",
		relations: map[string]string{
			"CONTACTS": "crm.company.contact.items.get",
		},
	}}
}
