package client

// ActivitiesClient implements crmhook.ActivitiesClient.
type ActivitiesClient struct {
	entityClient
}

// NewActivitiesClient creates a new activities client.
func NewActivitiesClient(client *Client) *ActivitiesClient {
	return &ActivitiesClient{entityClient{
		client: client,
		prefix: "crm.activity",
	}}
}
