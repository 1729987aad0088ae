package client

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/Sternrassler/github-api-client/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

const tagsTemplate = "repos/{owner}/{repo}/tags"
const tagsPath = "/repos/octo/hello/tags"

func TestPaginator_ThreePages(t *testing.T) {
	mock := testutil.NewMockGitHub()
	defer mock.Close()
	mock.SetCollection(tagsPath, items(5))

	c := newTestClient(t, mock.URL(), func(cfg *Config) { cfg.PerPage = 2 })
	ctx := context.Background()
	p := Paginate[item](c, tagsTemplate, "octo", "hello")

	var pages []*Envelope[[]item]
	for p.Next(ctx) {
		pages = append(pages, p.Page())
	}
	if err := p.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}

	if len(pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(pages))
	}
	if pages[2].NextPage != 0 {
		t.Errorf("third NextPage = %d, want 0", pages[2].NextPage)
	}

	var ids []int
	for _, page := range pages {
		for _, it := range page.Payload {
			ids = append(ids, it.ID)
		}
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]int{1, 2, 3}, mock.RequestedPages(tagsPath)); diff != "" {
		t.Errorf("requested pages mismatch (-want +got):\n%s", diff)
	}

	// Terminal state is sticky and costs no I/O.
	if p.Next(ctx) {
		t.Error("Next() after exhaustion = true, want false")
	}
	if got := mock.GetRequestCount(); got != 3 {
		t.Errorf("request count = %d, want 3", got)
	}
	if !p.Done() || p.Cursor() != 0 {
		t.Errorf("Done() = %v, Cursor() = %d, want true, 0", p.Done(), p.Cursor())
	}
}

func TestPaginator_EmptyCollection(t *testing.T) {
	mock := testutil.NewMockGitHub()
	defer mock.Close()
	mock.SetCollection(tagsPath, nil)

	c := newTestClient(t, mock.URL())
	p := Paginate[item](c, tagsTemplate, "octo", "hello")

	if !p.Next(context.Background()) {
		t.Fatalf("Next() = false, Err() = %v; want one empty page", p.Err())
	}
	if len(p.Page().Payload) != 0 {
		t.Errorf("Payload = %v, want empty", p.Page().Payload)
	}
	if p.Next(context.Background()) {
		t.Error("second Next() = true, want false")
	}
}

func TestPaginator_DecodeFailure(t *testing.T) {
	mock := testutil.NewMockGitHub()
	defer mock.Close()
	mock.SetResponse(tagsPath, testutil.NewJSONResponse(`[{"id": 1},`))

	c := newTestClient(t, mock.URL())
	p := Paginate[item](c, tagsTemplate, "octo", "hello")

	var count int
	for p.Next(context.Background()) {
		count += len(p.Page().Payload)
	}
	if count != 0 {
		t.Errorf("items = %d, want 0", count)
	}
	if !IsDecode(p.Err()) {
		t.Errorf("Err() = %v, want decode failure", p.Err())
	}
	if p.Page() != nil {
		t.Error("Page() after failure should be nil")
	}

	if p.Next(context.Background()) {
		t.Error("Next() after failure = true, want false")
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("request count = %d, want 1", got)
	}
}

func TestPaginator_NonAdvancingCursor(t *testing.T) {
	mock := testutil.NewMockGitHub()
	defer mock.Close()
	mock.SetHandler(tagsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", fmt.Sprintf(`<%s%s?page=1>; rel="next"`, mock.URL(), tagsPath))
		w.Write([]byte(`[{"id": 1}]`))
	})

	c := newTestClient(t, mock.URL())
	p := Paginate[item](c, tagsTemplate, "octo", "hello")

	pages := 0
	for p.Next(context.Background()) {
		pages++
		if pages > 5 {
			t.Fatal("paginator is looping")
		}
	}
	if pages != 1 {
		t.Errorf("pages = %d, want 1", pages)
	}
	if p.Err() != nil {
		t.Errorf("Err() = %v, want nil", p.Err())
	}
}

func TestPaginator_FollowsCursor(t *testing.T) {
	mock := testutil.NewMockGitHub()
	defer mock.Close()
	mock.SetHandler(tagsPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.Header().Set("Link", fmt.Sprintf(`<%s%s?page=4>; rel="next"`, mock.URL(), tagsPath))
		}
		w.Write([]byte(`[{"id": 1}]`))
	})

	c := newTestClient(t, mock.URL())
	p := Paginate[item](c, tagsTemplate, "octo", "hello")
	for p.Next(context.Background()) {
	}

	if diff := cmp.Diff([]int{1, 4}, mock.RequestedPages(tagsPath)); diff != "" {
		t.Errorf("requested pages mismatch (-want +got):\n%s", diff)
	}
}

func TestPaginator_All(t *testing.T) {
	mock := testutil.NewMockGitHub()
	defer mock.Close()
	mock.SetCollection(tagsPath, items(3))

	c := newTestClient(t, mock.URL(), func(cfg *Config) { cfg.PerPage = 1 })
	p := Paginate[item](c, tagsTemplate, "octo", "hello")

	var ids []int
	for env, err := range p.All(context.Background()) {
		if err != nil {
			t.Fatalf("All() yielded error %v", err)
		}
		ids = append(ids, env.Payload[0].ID)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestPaginator_AllEarlyStop(t *testing.T) {
	mock := testutil.NewMockGitHub()
	defer mock.Close()
	mock.SetCollection(tagsPath, items(10))

	c := newTestClient(t, mock.URL(), func(cfg *Config) { cfg.PerPage = 1 })
	p := Paginate[item](c, tagsTemplate, "octo", "hello")

	for range p.All(context.Background()) {
		break
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("request count = %d, want 1", got)
	}
	if p.Cursor() != 2 {
		t.Errorf("Cursor() = %d, want 2", p.Cursor())
	}
}

func TestPaginator_AllYieldsFailureOnce(t *testing.T) {
	mock := testutil.NewMockGitHub()
	defer mock.Close()
	mock.SetResponse(tagsPath, testutil.NewJSONResponse(`not json`))

	c := newTestClient(t, mock.URL())
	p := Paginate[item](c, tagsTemplate, "octo", "hello")

	var pages, failures int
	for env, err := range p.All(context.Background()) {
		if err != nil {
			failures++
			if !IsDecode(err) {
				t.Errorf("yielded error = %v, want decode failure", err)
			}
			continue
		}
		if env != nil {
			pages++
		}
	}
	if pages != 0 || failures != 1 {
		t.Errorf("pages = %d, failures = %d, want 0, 1", pages, failures)
	}

	for range p.All(context.Background()) {
		failures++
	}
	if failures != 1 {
		t.Errorf("failures after ranging again = %d, want 1", failures)
	}
	if !IsDecode(p.Err()) {
		t.Errorf("Err() = %v, want decode failure", p.Err())
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("request count = %d, want 1", got)
	}
}

func TestPaginator_HasItems(t *testing.T) {
	tests := []struct {
		name     string
		items    []string
		expected bool
	}{
		{"empty collection", nil, false},
		{"single item", []string{`{"id": 1}`}, true},
		{"many items", items(250), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockGitHub()
			defer mock.Close()
			mock.SetCollection(tagsPath, tt.items)

			c := newTestClient(t, mock.URL())
			p := Paginate[item](c, tagsTemplate, "octo", "hello")

			got, err := p.HasItems(context.Background())
			if err != nil {
				t.Fatalf("HasItems() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("HasItems() = %v, want %v", got, tt.expected)
			}

			reqs := mock.Requests()
			if len(reqs) != 1 || reqs[0].Page != 1 || reqs[0].PerPage != 1 {
				t.Errorf("requests = %+v, want one page=1 per_page=1 probe", reqs)
			}
			if p.Cursor() != 1 || p.Done() {
				t.Errorf("Cursor() = %d, Done() = %v after probe, want 1, false", p.Cursor(), p.Done())
			}
		})
	}
}

func TestPaginator_HasItemsDoesNotMoveCursor(t *testing.T) {
	mock := testutil.NewMockGitHub()
	defer mock.Close()
	mock.SetCollection(tagsPath, items(3))

	c := newTestClient(t, mock.URL(), func(cfg *Config) { cfg.PerPage = 1 })
	ctx := context.Background()
	p := Paginate[item](c, tagsTemplate, "octo", "hello")

	if !p.Next(ctx) {
		t.Fatalf("Next() = false, Err() = %v", p.Err())
	}
	if _, err := p.HasItems(ctx); err != nil {
		t.Fatalf("HasItems() error = %v", err)
	}
	if p.Cursor() != 2 {
		t.Errorf("Cursor() = %d after HasItems, want 2", p.Cursor())
	}

	for p.Next(ctx) {
	}
	if diff := cmp.Diff([]int{1, 1, 2, 3}, mock.RequestedPages(tagsPath)); diff != "" {
		t.Errorf("requested pages mismatch (-want +got):\n%s", diff)
	}
}
