package crmhook

import (
	"context"
	"time"
)

// Client is the full webhook client surface: the raw request engine plus
// the entity-oriented clients built on it.
type Client interface {
	// Call issues one logical remote call and returns the unwrapped result
	// with its pagination metadata. Exactly one physical exchange.
	Call(ctx context.Context, action string, params Fields) (*CallResult, error)
	// Batch submits a compiled command set as one physical request. With
	// haltOnError the portal stops at the first failing command. A
	// non-empty per-command error collection fails the whole batch.
	Batch(ctx context.Context, commands []Command, haltOnError bool) (*BatchResult, error)

	// Composite interfaces for entity client groups
	CRMClients
	WorkClients
	DiskClients
}

// CRMClients provides access to the CRM-namespace entity clients.
type CRMClients interface {
	Deals() DealsClient
	Contacts() ContactsClient
	Companies() CompaniesClient
	Products() ProductsClient
	Leads() LeadsClient
	Activities() ActivitiesClient
}

// WorkClients provides access to the task-tracker entity clients.
type WorkClients interface {
	Tasks() TasksClient
}

// DiskClients provides access to the drive entity clients.
type DiskClients interface {
	Files() FilesClient
}

// EntityClient is the CRUD-and-listing surface shared by the CRM entity
// clients. Listing methods return lazy page iterators; bulk methods chunk
// their input to the batch-size ceiling and preserve item order.
type EntityClient interface {
	Get(ctx context.Context, id int64) (Entity, error)
	// GetWithRelations fetches the entity and the named related
	// sub-resources in one batch exchange, returning a flat mapping with
	// one extra key per relation.
	GetWithRelations(ctx context.Context, id int64, relations []string) (Entity, error)
	List(ctx context.Context, params Fields) *ListIterator
	Fetch(ctx context.Context, params Fields) *FetchIterator
	Fields(ctx context.Context) (Entity, error)
	Add(ctx context.Context, fields Fields) (int64, error)
	Update(ctx context.Context, id int64, fields Fields) error
	Delete(ctx context.Context, id int64) error
	AddMany(ctx context.Context, items []Fields) ([]int64, error)
	// UpdateMany requires every item to carry an "ID" field; an item
	// without one fails the whole operation before its chunk is sent.
	UpdateMany(ctx context.Context, items []Fields) error
	DeleteMany(ctx context.Context, ids []int64) error
}

// DealsClient operates on crm.deal entities.
type DealsClient interface {
	EntityClient
}

// ContactsClient operates on crm.contact entities.
type ContactsClient interface {
	EntityClient
}

// CompaniesClient operates on crm.company entities.
type CompaniesClient interface {
	EntityClient
}

// ProductsClient operates on crm.product entities.
type ProductsClient interface {
	EntityClient
}

// LeadsClient operates on crm.lead entities.
type LeadsClient interface {
	EntityClient
}

// ActivitiesClient operates on crm.activity entities.
type ActivitiesClient interface {
	EntityClient
}

// TasksClient operates on tasks.task entities. The task API wraps request
// fields under a "fields" key and nests results under "task"/"tasks"; the
// client carries those quirks so callers see the same flat surface as the
// CRM entities.
type TasksClient interface {
	Get(ctx context.Context, id int64) (Entity, error)
	List(ctx context.Context, params Fields) *ListIterator
	Add(ctx context.Context, fields Fields) (int64, error)
	Update(ctx context.Context, id int64, fields Fields) error
	Delete(ctx context.Context, id int64) error
	AddMany(ctx context.Context, items []Fields) ([]int64, error)
	UpdateMany(ctx context.Context, items []Fields) error
	DeleteMany(ctx context.Context, ids []int64) error
}

// FilesClient operates on disk.file entities. Files are uploaded out of
// band, so there is no Add or bulk surface.
type FilesClient interface {
	Get(ctx context.Context, id int64) (Entity, error)
	Rename(ctx context.Context, id int64, newName string) (Entity, error)
	MarkDeleted(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// Logger is the optional diagnostic collaborator. Absence of a logger is a
// no-op, never an error; a logging failure never aborts the call it
// describes.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a crmhook.Client.
//
// # Webhook URL
//
// WebhookURL is the pre-issued inbound-webhook base identifying the portal
// account (e.g. "https://portal.example.com/rest/1/abc123"). It replaces
// conventional auth tokens; no other credential is needed. crmclient.New
// normalizes the value by trimming a trailing slash and adding "https://"
// when no scheme is present.
//
// # Throughput
//
// The portal enforces a per-account request rate; RequestsPerSecond sets
// the process-wide outbound cap applied at the transport boundary. Every
// call funnels through it, so batch requests are the primary throughput
// lever. BatchSize is both the chunk limit for bulk helpers and the
// completion threshold for ID-cursor listings; the portal rejects batches
// above 50.
//
// # Retries
//
// The engine performs no retries of its own. RetryMax opts in to transport
// level retries for transient failures (>=500, 429, connection errors);
// leave it zero to keep every failure terminal for its operation.
type Config struct {
	// WebhookURL: pre-authorized endpoint prefix for the portal account.
	WebhookURL string

	// BatchSize: commands per physical batch exchange. Defaults to
	// DefaultBatchSize; values above the portal ceiling are rejected
	// server-side, not clamped here.
	BatchSize int
	// RequestsPerSecond: outbound request cap. Zero applies
	// DefaultRequestsPerSecond; a negative value disables throttling.
	RequestsPerSecond float64

	// HTTPTimeout: per-exchange timeout. Most calls should rely on context
	// deadlines; this bounds a single physical exchange.
	HTTPTimeout time.Duration
	// RetryMax: maximum transport-level retries. Zero disables retrying.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration

	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the engine and transport.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
}
