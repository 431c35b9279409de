package source

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"chat-insights/internal/models"
)

// HTTP downloads each table as CSV from its own URL. The tables are fetched
// concurrently and the call fails if any one of them fails.
type HTTP struct {
	client *http.Client
	urls   map[string]string
}

// NewHTTP builds an HTTP source. urls is keyed by table name.
func NewHTTP(client *http.Client, urls map[string]string) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{client: client, urls: urls}
}

func (s *HTTP) Fetch(ctx context.Context) (models.RawTables, error) {
	var (
		mu       sync.Mutex
		tables   models.RawTables
		versions = map[string]string{}
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range models.TableNames {
		name := name
		g.Go(func() error {
			table, version, err := s.get(ctx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			tables.Set(table)
			versions[name] = version
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.RawTables{}, err
	}
	tables.Version = joinVersions(versions)
	return tables, nil
}

// Version asks every URL for its validators with HEAD requests.
func (s *HTTP) Version(ctx context.Context) (string, error) {
	var (
		mu       sync.Mutex
		versions = map[string]string{}
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range models.TableNames {
		name := name
		g.Go(func() error {
			resp, err := s.do(ctx, http.MethodHead, name)
			if err != nil {
				return err
			}
			resp.Body.Close()
			mu.Lock()
			versions[name] = validator(resp)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return joinVersions(versions), nil
}

func (s *HTTP) get(ctx context.Context, name string) (models.RawTable, string, error) {
	resp, err := s.do(ctx, http.MethodGet, name)
	if err != nil {
		return models.RawTable{}, "", err
	}
	defer resp.Body.Close()

	table, err := ReadCSV(name, resp.Body)
	if err != nil {
		return models.RawTable{}, "", err
	}
	return table, validator(resp), nil
}

func (s *HTTP) do(ctx context.Context, method, name string) (*http.Response, error) {
	url, ok := s.urls[name]
	if !ok || url == "" {
		return nil, fmt.Errorf("no url configured for %s", name)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", name, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w: %w", name, models.ErrSourceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %w: status %d", name, models.ErrSourceUnavailable, resp.StatusCode)
	}
	return resp, nil
}

func validator(resp *http.Response) string {
	if etag := resp.Header.Get("ETag"); etag != "" {
		return etag
	}
	return resp.Header.Get("Last-Modified")
}

// joinVersions returns "" if any table has no validator, since a partial
// version could match two different snapshots.
func joinVersions(versions map[string]string) string {
	names := make([]string, 0, len(versions))
	for name, v := range versions {
		if v == "" {
			return ""
		}
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+versions[name])
	}
	return "http:" + strings.Join(parts, ",")
}
