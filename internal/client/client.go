// Package client implements the crmhook.Client interface: the request
// dispatcher, the batch executor, and the entity clients built on them.
package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crmhook-io/crmhook/internal/transport"
	"github.com/crmhook-io/crmhook/pkg/crmhook"
)

// Client implements crmhook.Client.
type Client struct {
	transport *transport.Client
	logger    crmhook.Logger
	batchSize int

	// Entity clients
	deals      crmhook.DealsClient
	contacts   crmhook.ContactsClient
	companies  crmhook.CompaniesClient
	products   crmhook.ProductsClient
	leads      crmhook.LeadsClient
	activities crmhook.ActivitiesClient
	tasks      crmhook.TasksClient
	files      crmhook.FilesClient
}

// createTransportOptions builds transport options from config.
func createTransportOptions(config *crmhook.Config) []transport.Option {
	var opts []transport.Option

	if config.Logger != nil {
		opts = append(opts, transport.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, transport.WithDebug(true))
	}

	if config.UserAgent != "" {
		opts = append(opts, transport.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, transport.WithTimeout(config.HTTPTimeout))
	}

	if config.RequestsPerSecond != 0 {
		opts = append(opts, transport.WithRateLimit(config.RequestsPerSecond))
	}

	if config.RetryMax > 0 {
		opts = append(opts, transport.WithRetryConfig(config.RetryMax, config.RetryWaitMin, config.RetryWaitMax))
	}

	return opts
}

// New creates a new webhook client. The webhook URL must already be
// normalized; crmclient.New is the usual entry point.
func New(config *crmhook.Config) (*Client, error) {
	if config.WebhookURL == "" {
		return nil, crmhook.ErrWebhookURLRequired
	}

	batchSize := config.BatchSize
	if batchSize < 1 {
		batchSize = crmhook.DefaultBatchSize
	}

	client := &Client{
		transport: transport.NewClient(config.WebhookURL, createTransportOptions(config)...),
		logger:    config.Logger,
		batchSize: batchSize,
	}

	client.initializeEntityClients()

	return client, nil
}

// Call implements crmhook.Client.Call. It performs exactly one physical
// exchange, classifies transport-level then application-level error
// signals, and returns the unwrapped result with pagination metadata.
func (c *Client) Call(ctx context.Context, action string, params crmhook.Fields) (*crmhook.CallResult, error) {
	if action == "" {
		return nil, crmhook.ErrActionRequired
	}

	values, err := crmhook.EncodeParams(params)
	if err != nil {
		return nil, fmt.Errorf("encoding params for %s: %w", action, err)
	}

	resp, err := c.transport.Post(ctx, action, values)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", action, err)
	}

	c.logExchange(action, params, resp)

	if !resp.Success() {
		return nil, &crmhook.TransportError{
			StatusCode: resp.StatusCode,
			Params:     serialize(params),
			Response:   string(resp.Body),
		}
	}

	var body struct {
		Result           json.RawMessage `json:"result"`
		Error            string          `json:"error"`
		ErrorDescription string          `json:"error_description"`
		Next             *int            `json:"next"`
		Total            int             `json:"total"`
	}

	err = json.Unmarshal(resp.Body, &body)
	if err != nil {
		return nil, fmt.Errorf("decoding response for %s: %w", action, err)
	}

	if body.Error != "" || body.ErrorDescription != "" {
		return nil, &crmhook.APIError{
			Code:        body.Error,
			Description: body.ErrorDescription,
			Params:      serialize(params),
			Response:    string(resp.Body),
		}
	}

	return &crmhook.CallResult{
		Result: body.Result,
		Next:   body.Next,
		Total:  body.Total,
	}, nil
}

// logExchange emits the outbound parameters and response for diagnostics.
// Serialization failures degrade to a generic textual dump inside
// serialize; logging never aborts or replaces the call's own outcome.
func (c *Client) logExchange(action string, params crmhook.Fields, resp *transport.Response) {
	if c.logger == nil {
		return
	}

	c.logger.Debug("portal call", map[string]interface{}{
		"action":   action,
		"params":   serialize(params),
		"status":   resp.StatusCode,
		"response": string(resp.Body),
	})
}

// serialize renders a value for diagnostics, falling back to a %+v dump
// when JSON marshaling fails.
func serialize(value interface{}) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%+v", value)
	}

	return string(data)
}

// Entity client accessors

// Deals implements crmhook.Client.Deals.
func (c *Client) Deals() crmhook.DealsClient {
	return c.deals
}

// Contacts implements crmhook.Client.Contacts.
func (c *Client) Contacts() crmhook.ContactsClient {
	return c.contacts
}

// Companies implements crmhook.Client.Companies.
func (c *Client) Companies() crmhook.CompaniesClient {
	return c.companies
}

// Products implements crmhook.Client.Products.
func (c *Client) Products() crmhook.ProductsClient {
	return c.products
}

// Leads implements crmhook.Client.Leads.
func (c *Client) Leads() crmhook.LeadsClient {
	return c.leads
}

// Activities implements crmhook.Client.Activities.
func (c *Client) Activities() crmhook.ActivitiesClient {
	return c.activities
}

// Tasks implements crmhook.Client.Tasks.
func (c *Client) Tasks() crmhook.TasksClient {
	return c.tasks
}

// Files implements crmhook.Client.Files.
func (c *Client) Files() crmhook.FilesClient {
	return c.files
}

// initializeEntityClients initializes all entity-specific clients.
func (c *Client) initializeEntityClients() {
	c.deals = NewDealsClient(c)
	c.contacts = NewContactsClient(c)
	c.companies = NewCompaniesClient(c)
	c.products = NewProductsClient(c)
	c.leads = NewLeadsClient(c)
	c.activities = NewActivitiesClient(c)
	c.tasks = NewTasksClient(c)
	c.files = NewFilesClient(c)
}
