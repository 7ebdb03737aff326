package client_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmhook-io/crmhook/pkg/crmhook"
)

func TestDeals_Get(t *testing.T) {
	t.Parallel()

	var gotID string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm.deal.get.json", r.URL.Path)

		require.NoError(t, r.ParseForm())
		gotID = r.PostForm.Get("id")

		_, _ = w.Write([]byte(`{"result":{"ID":"42","TITLE":"Big sale","STAGE_ID":"NEW"}}`))
	}), 0)

	deal, err := c.Deals().Get(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, "42", gotID)
	assert.Equal(t, "Big sale", deal["TITLE"])

	id, ok := deal.ID()
	require.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestDeals_Add(t *testing.T) {
	t.Parallel()

	var gotTitle string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm.deal.add.json", r.URL.Path)

		require.NoError(t, r.ParseForm())
		gotTitle = r.PostForm.Get("fields[TITLE]")

		_, _ = w.Write([]byte(`{"result":77}`))
	}), 0)

	id, err := c.Deals().Add(context.Background(), crmhook.Fields{"TITLE": "New deal"})
	require.NoError(t, err)

	assert.Equal(t, "New deal", gotTitle)
	assert.Equal(t, int64(77), id)
}

func TestDeals_Update(t *testing.T) {
	t.Parallel()

	var gotForm map[string][]string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm.deal.update.json", r.URL.Path)

		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		_, _ = w.Write([]byte(`{"result":true}`))
	}), 0)

	err := c.Deals().Update(context.Background(), 42, crmhook.Fields{"STAGE_ID": "WON"})
	require.NoError(t, err)

	assert.Equal(t, "42", gotForm["id"][0])
	assert.Equal(t, "WON", gotForm["fields[STAGE_ID]"][0])
}

func TestDeals_Delete(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm.deal.delete.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"result":true}`))
	}), 0)

	require.NoError(t, c.Deals().Delete(context.Background(), 42))
}

func TestDeals_Fields(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm.deal.fields.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"result":{"ID":{"type":"integer"},"TITLE":{"type":"string"}}}`))
	}), 0)

	fields, err := c.Deals().Fields(context.Background())
	require.NoError(t, err)

	assert.Contains(t, fields, "TITLE")
}

func TestDeals_List(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm.deal.list.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"result":[{"ID":"1"},{"ID":"2"}],"total":2}`))
	}), 0)

	items, err := c.Deals().List(context.Background(), nil).All()
	require.NoError(t, err)

	assert.Len(t, items, 2)
}

func TestDeals_GetWithRelations(t *testing.T) {
	t.Parallel()

	var gotForm map[string][]string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/batch.json", r.URL.Path)

		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		_, _ = w.Write([]byte(`{"result":{"result":{` +
			`"base":{"ID":"42","TITLE":"Big sale"},` +
			`"CONTACTS":[{"CONTACT_ID":7},{"CONTACT_ID":9}],` +
			`"PRODUCTROWS":[{"PRODUCT_ID":3,"QUANTITY":2}]` +
			`},"result_error":{}}}`))
	}), 0)

	deal, err := c.Deals().GetWithRelations(context.Background(), 42, []string{"CONTACTS", "PRODUCTROWS"})
	require.NoError(t, err)

	assert.Equal(t, "crm.deal.get?id=42", gotForm["cmd[base]"][0])
	assert.Equal(t, "crm.deal.contact.items.get?id=42", gotForm["cmd[CONTACTS]"][0])
	assert.Equal(t, "crm.deal.productrows.get?id=42", gotForm["cmd[PRODUCTROWS]"][0])

	assert.Equal(t, "Big sale", deal["TITLE"])

	contacts, ok := deal["CONTACTS"].([]interface{})
	require.True(t, ok)
	assert.Len(t, contacts, 2)

	rows, ok := deal["PRODUCTROWS"].([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, 1)
}

func TestDeals_GetWithRelations_UnknownRelation(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"result":true}`))
	}), 0)

	_, err := c.Deals().GetWithRelations(context.Background(), 42, []string{"TIMELINE"})
	require.Error(t, err)
	require.True(t, crmhook.IsLookupError(err))

	var lookupErr *crmhook.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "TIMELINE", lookupErr.Label)

	assert.Equal(t, int32(0), calls.Load())
}

func TestContacts_GetWithRelations_Companies(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "crm.contact.company.items.get?id=5", r.PostForm.Get("cmd[COMPANIES]"))

		_, _ = w.Write([]byte(`{"result":{"result":{` +
			`"base":{"ID":"5","NAME":"Ada"},` +
			`"COMPANIES":[{"COMPANY_ID":11}]` +
			`},"result_error":{}}}`))
	}), 0)

	contact, err := c.Contacts().GetWithRelations(context.Background(), 5, []string{"COMPANIES"})
	require.NoError(t, err)

	assert.Equal(t, "Ada", contact["NAME"])
	assert.Contains(t, contact, "COMPANIES")
}
