package client_test

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmhook-io/crmhook/pkg/crmhook"
)

// batchLabels extracts the command labels of a parsed batch form, ordered by
// their numeric suffix so responses line up with submission order.
func batchLabels(form map[string][]string) []string {
	var labels []string

	for key := range form {
		if strings.HasPrefix(key, "cmd[") && strings.HasSuffix(key, "]") {
			labels = append(labels, key[len("cmd["):len(key)-1])
		}
	}

	sort.Slice(labels, func(i, j int) bool {
		a, _ := strconv.Atoi(strings.TrimPrefix(labels[i], "cmd"))
		b, _ := strconv.Atoi(strings.TrimPrefix(labels[j], "cmd"))

		return a < b
	})

	return labels
}

func TestBatch_SubmitsLabeledCommands(t *testing.T) {
	t.Parallel()

	var gotForm map[string][]string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		_, _ = w.Write([]byte(`{"result":{"result":{"cmd0":101,"cmd1":102,"cmd2":103},"result_error":{}}}`))
	}), 0)

	commands := []crmhook.Command{
		"crm.deal.get?id=1",
		"crm.deal.get?id=2",
		"crm.deal.get?id=3",
	}

	batch, err := c.Batch(context.Background(), commands, true)
	require.NoError(t, err)

	assert.Equal(t, "1", gotForm["halt"][0])
	assert.Equal(t, "crm.deal.get?id=1", gotForm["cmd[cmd0]"][0])
	assert.Equal(t, "crm.deal.get?id=2", gotForm["cmd[cmd1]"][0])
	assert.Equal(t, "crm.deal.get?id=3", gotForm["cmd[cmd2]"][0])

	assert.Equal(t, []string{"cmd0", "cmd1", "cmd2"}, batch.Labels)

	ordered := batch.Ordered()
	require.Len(t, ordered, 3)
	assert.Equal(t, "101", string(ordered[0]))
	assert.Equal(t, "103", string(ordered[2]))
}

func TestBatch_HaltFlagDisabled(t *testing.T) {
	t.Parallel()

	var gotHalt string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotHalt = r.PostForm.Get("halt")

		_, _ = w.Write([]byte(`{"result":{"result":{"cmd0":true},"result_error":{}}}`))
	}), 0)

	_, err := c.Batch(context.Background(), []crmhook.Command{"crm.deal.delete?id=1"}, false)
	require.NoError(t, err)

	assert.Equal(t, "0", gotHalt)
}

func TestBatch_PerCommandErrorFailsWholeBatch(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// cmd0 nominally succeeded; the error collection still fails the
		// whole exchange.
		_, _ = w.Write([]byte(`{"result":{"result":{"cmd0":55},"result_error":{"cmd1":{"error":"NOT_FOUND","error_description":"Deal not found"}}}}`))
	}), 0)

	commands := []crmhook.Command{
		"crm.deal.get?id=1",
		"crm.deal.get?id=999999",
	}

	_, err := c.Batch(context.Background(), commands, true)
	require.Error(t, err)
	require.True(t, crmhook.IsBatchError(err))

	var batchErr *crmhook.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Len(t, batchErr.Failed, 1)
	assert.Contains(t, batchErr.Failed["cmd1"], "NOT_FOUND")
}

func TestAddMany_ChunksToBatchSize(t *testing.T) {
	t.Parallel()

	var (
		calls   atomic.Int32
		nextID  atomic.Int64
		maxCmds atomic.Int32
	)

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.NoError(t, r.ParseForm())

		labels := batchLabels(r.PostForm)
		if n := int32(len(labels)); n > maxCmds.Load() {
			maxCmds.Store(n)
		}

		parts := make([]string, len(labels))
		for i, label := range labels {
			parts[i] = fmt.Sprintf("%q:%d", label, nextID.Add(1))
		}

		_, _ = fmt.Fprintf(w, `{"result":{"result":{%s},"result_error":{}}}`, strings.Join(parts, ","))
	}), 2)

	items := make([]crmhook.Fields, 5)
	for i := range items {
		items[i] = crmhook.Fields{"TITLE": fmt.Sprintf("Deal %d", i)}
	}

	ids, err := c.Deals().AddMany(context.Background(), items)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
	assert.Equal(t, int32(3), calls.Load())
	assert.LessOrEqual(t, maxCmds.Load(), int32(2))
}

func TestAddMany_CountMismatch(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// One result short of the three commands submitted.
		_, _ = w.Write([]byte(`{"result":{"result":{"cmd0":1,"cmd1":2},"result_error":{}}}`))
	}), 0)

	items := []crmhook.Fields{
		{"TITLE": "a"},
		{"TITLE": "b"},
		{"TITLE": "c"},
	}

	_, err := c.Deals().AddMany(context.Background(), items)
	require.Error(t, err)
	require.True(t, crmhook.IsCountMismatch(err))

	var mismatchErr *crmhook.CountMismatchError
	require.ErrorAs(t, err, &mismatchErr)
	assert.Equal(t, 3, mismatchErr.Sent)
	assert.Equal(t, 2, mismatchErr.Received)
}

func TestAddMany_MoreResultsThanCommands(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// One entry beyond the three commands submitted.
		_, _ = w.Write([]byte(`{"result":{"result":{"cmd0":1,"cmd1":2,"cmd2":3,"cmd9":4},"result_error":{}}}`))
	}), 0)

	items := []crmhook.Fields{
		{"TITLE": "a"},
		{"TITLE": "b"},
		{"TITLE": "c"},
	}

	_, err := c.Deals().AddMany(context.Background(), items)
	require.Error(t, err)
	require.True(t, crmhook.IsCountMismatch(err))

	var mismatchErr *crmhook.CountMismatchError
	require.ErrorAs(t, err, &mismatchErr)
	assert.Equal(t, 3, mismatchErr.Sent)
	assert.Equal(t, 4, mismatchErr.Received)
}

func TestAddMany_UnknownResultLabels(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Right entry count, but one label matches no submitted command.
		_, _ = w.Write([]byte(`{"result":{"result":{"cmd0":1,"cmd1":2,"cmd9":3},"result_error":{}}}`))
	}), 0)

	items := []crmhook.Fields{
		{"TITLE": "a"},
		{"TITLE": "b"},
		{"TITLE": "c"},
	}

	_, err := c.Deals().AddMany(context.Background(), items)
	require.Error(t, err)
	assert.True(t, crmhook.IsCountMismatch(err))
}

func TestUpdateMany_SplitsIdentifierFromFields(t *testing.T) {
	t.Parallel()

	var gotCommand string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotCommand = r.PostForm.Get("cmd[cmd0]")

		_, _ = w.Write([]byte(`{"result":{"result":{"cmd0":true},"result_error":{}}}`))
	}), 0)

	err := c.Deals().UpdateMany(context.Background(), []crmhook.Fields{
		{"ID": "42", "STAGE_ID": "WON"},
	})
	require.NoError(t, err)

	action, params, err := crmhook.ParseCommand(crmhook.Command(gotCommand))
	require.NoError(t, err)

	assert.Equal(t, "crm.deal.update", action)
	assert.Equal(t, "42", params["id"])

	fields, ok := params["fields"].(crmhook.Fields)
	require.True(t, ok)
	assert.Equal(t, "WON", fields["STAGE_ID"])
	assert.NotContains(t, fields, "ID")
}

func TestUpdateMany_MissingIdentifierStopsBeforeChunk(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"result":{"result":{"cmd0":true,"cmd1":true},"result_error":{}}}`))
	}), 2)

	items := []crmhook.Fields{
		{"ID": "1", "TITLE": "a"},
		{"ID": "2", "TITLE": "b"},
		{"TITLE": "no identifier"},
		{"ID": "4", "TITLE": "d"},
		{"ID": "5", "TITLE": "e"},
	}

	err := c.Deals().UpdateMany(context.Background(), items)
	require.Error(t, err)
	require.True(t, crmhook.IsIdentifierMissing(err))

	var idErr *crmhook.IdentifierMissingError
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, 2, idErr.Index)

	// The first chunk went out; the chunk containing the bad item never did.
	assert.Equal(t, int32(1), calls.Load())
}

func TestDeleteMany_SingleChunk(t *testing.T) {
	t.Parallel()

	var (
		calls    atomic.Int32
		commands []string
	)

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.NoError(t, r.ParseForm())

		for _, label := range batchLabels(r.PostForm) {
			commands = append(commands, r.PostForm.Get("cmd["+label+"]"))
		}

		_, _ = w.Write([]byte(`{"result":{"result":{"cmd0":true,"cmd1":true,"cmd2":true},"result_error":{}}}`))
	}), 0)

	err := c.Deals().DeleteMany(context.Background(), []int64{7, 8, 9})
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []string{
		"crm.deal.delete?id=7",
		"crm.deal.delete?id=8",
		"crm.deal.delete?id=9",
	}, commands)
}
