// Package crmclient provides the main entry point for creating portal
// webhook clients.
package crmclient

import (
	"fmt"
	"strings"

	"github.com/crmhook-io/crmhook/internal/client"
	"github.com/crmhook-io/crmhook/pkg/crmhook"
)

// New creates a new portal webhook client. The webhook URL is normalized by
// trimming a trailing slash and adding "https://" when no scheme is
// present; defaults are applied for the batch size and request rate.
func New(config *crmhook.Config) (crmhook.Client, error) {
	if config == nil {
		return nil, crmhook.ErrConfigRequired
	}

	if config.WebhookURL == "" {
		return nil, crmhook.ErrWebhookURLRequired
	}

	webhookURL := strings.TrimSuffix(config.WebhookURL, "/")
	if !strings.HasPrefix(webhookURL, "http://") && !strings.HasPrefix(webhookURL, "https://") {
		webhookURL = "https://" + webhookURL
	}

	config.WebhookURL = webhookURL

	if config.BatchSize == 0 {
		config.BatchSize = crmhook.DefaultBatchSize
	}

	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = crmhook.DefaultRequestsPerSecond
	}

	cli, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return cli, nil
}
