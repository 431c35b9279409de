package source_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-insights/internal/models"
	"chat-insights/internal/source"
)

var exports = map[string]string{
	models.TableChats:     "chat_id,chat_name,chat_type,chat_created_at\n120363000000000012@g.us,Booth 12,group,13/01/2024 09:00\n",
	models.TableMembers:   "chat_id,contact_phone_number,contact_is_admin\n120363000000000012@g.us,919895820344@c.us,True\n",
	models.TableMessages:  "chat_id,message_id,sender_phone,received_at_date,received_at_time,media\n120363000000000012@g.us,m1,919895820344@c.us,2024-01-02,10:00:00,\"{\"\"mimetype\"\":\"\"image/png\"\"}\"\n",
	models.TableReactions: "chat_id,message_id,sender_id,timestamp\n",
	models.TableAddLeave:  "chat_id,author,type,timestamp\n120363000000000012@g.us,919895820344@c.us,add\n",
}

func writeExports(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range exports {
		require.NoError(t, os.WriteFile(filepath.Join(dir, source.FileNames[name]), []byte(body), 0o644))
	}
	return dir
}

func TestReadCSVPadsShortRows(t *testing.T) {
	table, err := source.ReadCSV(models.TableAddLeave, strings.NewReader(exports[models.TableAddLeave]))
	require.NoError(t, err)

	assert.Equal(t, models.TableAddLeave, table.Name)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"120363000000000012@g.us", "919895820344@c.us", "add", ""}, table.Rows[0])
}

func TestReadCSVEmptyInput(t *testing.T) {
	table, err := source.ReadCSV(models.TableChats, strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, table.Columns)
	assert.Empty(t, table.Rows)
}

func TestCSVDirFetch(t *testing.T) {
	dir := writeExports(t)
	src := source.NewCSVDir(dir)

	tables, err := src.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Booth 12", tables.Chats.Rows[0][1])
	assert.Equal(t, `{"mimetype":"image/png"}`, tables.Messages.Rows[0][5])
	assert.Empty(t, tables.Reactions.Rows)
	assert.True(t, strings.HasPrefix(tables.Version, "csv:"))

	again, err := src.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tables.Version, again)
}

func TestCSVDirMissingFile(t *testing.T) {
	dir := writeExports(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "reactions.csv")))

	_, err := source.NewCSVDir(dir).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSourceUnavailable))
}

func newExportServer(t *testing.T, hits *int32) (*httptest.Server, map[string]string) {
	t.Helper()
	mux := http.NewServeMux()
	urls := map[string]string{}
	for name, body := range exports {
		body := body
		path := "/" + source.FileNames[name]
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				atomic.AddInt32(hits, 1)
			}
			w.Header().Set("ETag", `"v1"`)
			_, _ = w.Write([]byte(body))
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	for name := range exports {
		urls[name] = srv.URL + "/" + source.FileNames[name]
	}
	return srv, urls
}

func TestHTTPFetch(t *testing.T) {
	var hits int32
	srv, urls := newExportServer(t, &hits)
	src := source.NewHTTP(srv.Client(), urls)

	tables, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(5), atomic.LoadInt32(&hits))
	assert.Len(t, tables.Members.Rows, 1)
	assert.Contains(t, tables.Version, `chats="v1"`)

	version, err := src.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tables.Version, version)
	assert.Equal(t, int32(5), atomic.LoadInt32(&hits))
}

func TestHTTPFetchFailsOnBadStatus(t *testing.T) {
	var hits int32
	srv, urls := newExportServer(t, &hits)
	urls[models.TableMessages] = srv.URL + "/missing.csv"

	_, err := source.NewHTTP(srv.Client(), urls).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSourceUnavailable))
}
