package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, SessionToken: "tok-123"}), srv
}

func TestListPosts_BuildsQueryAndDecodes(t *testing.T) {
	t.Parallel()

	var gotQuery map[string]string
	var gotCookie string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/generated-posts", r.URL.Path)
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		if c, err := r.Cookie("session"); err == nil {
			gotCookie = c.Value
		}
		json.NewEncoder(w).Encode(ListPostsResponse{
			Data: []Post{{ID: "p1", Content: "hello", Platform: "INSTAGRAM"}},
			Meta: ListMeta{Total: 23, NoOfPages: 3, Page: 1, Limit: 9},
		})
	})

	resp, err := client.ListPosts(context.Background(), ListPostsParams{
		Page: 1, Limit: 9, OrderBy: "createdAt", Search: "productivity",
	})
	require.NoError(t, err)

	assert.Equal(t, "1", gotQuery["page"])
	assert.Equal(t, "9", gotQuery["limit"])
	assert.Equal(t, "createdAt", gotQuery["orderBy"])
	assert.Equal(t, "productivity", gotQuery["search"])
	assert.Equal(t, "tok-123", gotCookie)

	assert.Len(t, resp.Data, 1)
	assert.Equal(t, "p1", resp.Data[0].ID)
	assert.Equal(t, 23, resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.NoOfPages)
}

func TestListPosts_OmitsEmptySearch(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["search"]
		assert.False(t, present, "empty search must not be sent")
		json.NewEncoder(w).Encode(ListPostsResponse{Meta: ListMeta{NoOfPages: 1}})
	})

	_, err := client.ListPosts(context.Background(), ListPostsParams{Page: 1, Limit: 9, OrderBy: "createdAt"})
	require.NoError(t, err)
}

func TestGenerate_PostsEmptyBody(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/content-generation/generate", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Empty(t, body)
		json.NewEncoder(w).Encode(GenerateResponse{
			PostID:      "p1",
			CreditsUsed: 2,
			Preview:     InstagramPreview{Caption: "hi", Hashtags: []string{"#go"}},
		})
	})

	resp, err := client.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p1", resp.PostID)
	assert.Equal(t, 2, resp.CreditsUsed)
}

func TestVideoScript_ScopedToPostID(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/content-generation/p1/video-script", r.URL.Path)
		json.NewEncoder(w).Encode(VideoScript{PostID: "p1", Hook: "watch this"})
	})

	script, err := client.VideoScript(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "watch this", script.Hook)
}

func TestVideoScript_RequiresPostID(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{BaseURL: "http://127.0.0.1:0"})
	_, err := client.VideoScript(context.Background(), "")
	require.Error(t, err)
}

func TestPostingSchedule_ScopedToPostID(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/content-generation/p9/posting-schedule", r.URL.Path)
		json.NewEncoder(w).Encode(PostingSchedule{PostID: "p9"})
	})

	sched, err := client.PostingSchedule(context.Background(), "p9")
	require.NoError(t, err)
	assert.Equal(t, "p9", sched.PostID)
}

func TestSetSession_ConcurrentWithRequests(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ListPostsResponse{Meta: ListMeta{NoOfPages: 1}})
	})

	// Token rotation happens on the update loop while fetches run on their
	// own goroutines; the race detector must stay quiet.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			client.SetSession(fmt.Sprintf("tok-%d", i))
		}(i)
		go func() {
			defer wg.Done()
			_, err := client.ListPosts(context.Background(), ListPostsParams{Page: 1, Limit: 9, OrderBy: "createdAt"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestAPIError_PrefersServerMessage(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]string{"message": "insufficient credits"})
	})

	_, err := client.Generate(context.Background())
	require.Error(t, err)
	assert.Equal(t, "insufficient credits", ErrorMessage(err, "Failed to generate content"))
}

func TestAPIError_FallsBackToErrorField(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
	})

	_, err := client.Generate(context.Background())
	require.Error(t, err)
	assert.Equal(t, "boom", ErrorMessage(err, "fallback"))
}

func TestAPIError_GenericWhenBodyNotJSON(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := client.ListPosts(context.Background(), ListPostsParams{Page: 1, Limit: 9, OrderBy: "createdAt"})
	require.Error(t, err)
	assert.Contains(t, ErrorMessage(err, ""), "status 502")
}

func TestErrorMessage_TransportErrorUsesFallback(t *testing.T) {
	t.Parallel()

	// Port 0 is never listening; the dial fails.
	client := NewClient(Config{BaseURL: "http://127.0.0.1:0"})
	_, err := client.ListPosts(context.Background(), ListPostsParams{Page: 1, Limit: 9, OrderBy: "createdAt"})
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch generated posts", ErrorMessage(err, "Failed to fetch generated posts"))
}

func TestFetchImage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0xFF, 0xD8, 0xFF})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: "http://unused"})
	data, err := client.FetchImage(context.Background(), srv.URL+"/img.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, data)
}

func TestFetchImage_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: "http://unused"})
	_, err := client.FetchImage(context.Background(), srv.URL+"/missing.jpg")
	require.Error(t, err)
}
