package client

// ContactsClient implements crmhook.ContactsClient.
type ContactsClient struct {
	entityClient
}

// NewContactsClient creates a new contacts client.
func NewContactsClient(client *Client) *ContactsClient {
	return &ContactsClient{entityClient{
		client: client,
		prefix: "crm.contact",
		relations: map[string]string{
			"COMPANIES": "crm.contact.company.items.get",
		},
	}}
}
