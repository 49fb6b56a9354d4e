package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/api/data"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/config"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/offer"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/querycache"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/storage/memory"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/university"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for the concurrent writes of the browse subscription
type syncBuffer struct {
	mtx sync.Mutex
	buf bytes.Buffer
}

func (buf *syncBuffer) Write(p []byte) (int, error) {
	buf.mtx.Lock()
	defer buf.mtx.Unlock()
	return buf.buf.Write(p)
}

func (buf *syncBuffer) String() string {
	buf.mtx.Lock()
	defer buf.mtx.Unlock()
	return buf.buf.String()
}

func newTestAPI(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	driver := memory.New()
	require.NoError(t, driver.Initialize(ctx))

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	uni, err := university.OfDraft(&university.Draft{Name: "Leiden", Country: "Netherlands", City: "Leiden", Ranking: 70}, created)
	require.NoError(t, err)
	require.NoError(t, driver.Universities().Create(ctx, uni))

	for i, title := range []string{"Physics", "Law", "History", "Biology"} {
		category := offer.CategoryBachelor
		if i%2 == 0 {
			category = offer.CategoryMaster
		}
		obj, err := offer.OfDraft(&offer.Draft{
			Title:        title,
			UniversityID: uni.ID,
			Category:     category,
			Country:      "Netherlands",
			City:         "Leiden",
			Tuition:      float64(1000 * (4 - i)),
			Deadline:     time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC),
		}, created.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		require.NoError(t, driver.Offers().Create(ctx, obj))
	}

	queries := querycache.New(querycache.Options{StaleTime: time.Minute})
	t.Cleanup(func() { _ = queries.Close() })
	service := &data.Service{
		Config: &config.Config{
			AllowedOrigin:   "*",
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
		Storage: driver,
		Queries: queries,
	}
	server := httptest.NewServer(service.Handler())
	t.Cleanup(server.Close)
	return server.URL
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &syncBuffer{}
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func TestListOffers(t *testing.T) {
	api := newTestAPI(t)

	out, err := run(t, "", "--api", api, "list", "offers")
	require.NoError(t, err)
	// newest first by default
	assert.Less(t, strings.Index(out, "Biology"), strings.Index(out, "Physics"))
	assert.Contains(t, out, "page 1 of 1, 4 total (sorted by createdAt desc)")
	assert.Contains(t, out, "link: "+api+"/v1/offers\n")
}

func TestListFiltersAndSorts(t *testing.T) {
	api := newTestAPI(t)

	out, err := run(t, "", "--api", api, "list", "offers", "-f", "category=Master", "--sort", "tuition", "--order", "asc", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "History")
	assert.NotContains(t, out, "Physics")
	assert.NotContains(t, out, "Law")
	assert.Contains(t, out, "page 1 of 2, 2 total (sorted by tuition asc)")
	assert.Contains(t, out, "category=Master")
	assert.Contains(t, out, "limit=1")
	assert.Contains(t, out, "sortBy=tuition")
	assert.Contains(t, out, "sortOrder=asc")
}

func TestListRestoresLink(t *testing.T) {
	api := newTestAPI(t)
	link := api + "/v1/offers?category=Master&limit=1&sortBy=tuition&sortOrder=asc"

	out, err := run(t, "", "--api", api, "list", "offers", "--url", link, "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Physics")
	assert.NotContains(t, out, "History")
	assert.Contains(t, out, "page 2 of 2")
	assert.Contains(t, out, "page=2")

	out, err = run(t, "", "--api", api, "list", "offers", "--url", link, "-f", "category=")
	require.NoError(t, err)
	assert.Contains(t, out, "4 total")
	assert.NotContains(t, out, "category=")
}

func TestListUniversities(t *testing.T) {
	api := newTestAPI(t)

	out, err := run(t, "", "--api", api, "list", "universities", "-f", "country=Netherlands")
	require.NoError(t, err)
	assert.Contains(t, out, "Leiden")
	assert.Contains(t, out, "(sorted by name asc)")
	assert.Contains(t, out, "country=Netherlands")
}

func TestListRejectsInvalidInput(t *testing.T) {
	api := newTestAPI(t)

	tests := map[string][]string{
		"reserved filter":  {"-f", "page=2"},
		"malformed filter": {"-f", "category"},
		"sort order":       {"--order", "upwards"},
		"unknown filter":   {"-f", "color=blue"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, "", append([]string{"--api", api, "list", "offers"}, args...)...)
			assert.Error(t, err)
		})
	}

	_, err := run(t, "", "--api", api, "list", "applicants")
	assert.Error(t, err)
}

func TestBrowse(t *testing.T) {
	api := newTestAPI(t)

	script := strings.Join([]string{
		"filter category=Master",
		"sort tuition asc",
		"search hist",
		"link",
		"frobnicate",
		"quit",
	}, "\n")
	out, err := run(t, script, "--api", api, "browse", "offers", "--debounce=-1ns")
	require.NoError(t, err)
	assert.Contains(t, out, "page 1 of 1, 4 total")
	assert.Contains(t, out, `unknown command "frobnicate"`)

	var link string
	for _, line := range strings.Split(out, "\n") {
		if i := strings.Index(line, api); i >= 0 {
			link = line[i:]
		}
	}
	require.NotEmpty(t, link)
	assert.Contains(t, link, "category=Master")
	assert.Contains(t, link, "search=hist")
	assert.Contains(t, link, "sortBy=tuition")
	assert.Contains(t, link, "sortOrder=asc")
}

func TestCacheClear(t *testing.T) {
	api := newTestAPI(t)

	_, err := run(t, "", "--api", api, "list", "offers")
	require.NoError(t, err)
	_, err = run(t, "", "--api", api, "list", "universities")
	require.NoError(t, err)

	out, err := run(t, "", "--api", api, "cache", "clear", "--prefix", offer.QueryKey+":")
	require.NoError(t, err)
	assert.Equal(t, "removed 1 cached results\n", out)

	out, err = run(t, "", "--api", api, "cache", "clear")
	require.NoError(t, err)
	assert.Equal(t, "removed 1 cached results\n", out)
}
