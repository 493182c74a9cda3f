package waitlistclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/submit", func(w http.ResponseWriter, r *http.Request) {
		var sub Submission
		_ = json.NewDecoder(r.Body).Decode(&sub)
		switch sub.Email {
		case "dup@example.com":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"error":"This email is already on our waitlist!"}`))
		default:
			_, _ = w.Write([]byte(`{"success":true,"message":"You're on the waitlist!","data":{"id":1}}`))
		}
	})
	mux.HandleFunc("POST /api/auth/admin-check", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"Invalid password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"tok","expires_at":"2026-03-01T12:00:00Z"}}`))
	})
	mux.HandleFunc("GET /api/admin/emails", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"Unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":2,"email":"b@example.com","source":"landing_page","status":"active","created_at":"2026-03-01T10:00:00Z"}]}`))
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"Logged out"}`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Submit(t *testing.T) {
	c := New(newTestAPI(t).URL)

	msg, err := c.Submit(context.Background(), Submission{Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "You're on the waitlist!", msg)

	_, err = c.Submit(context.Background(), Submission{Email: "dup@example.com"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusCodeOf(err))
	assert.Contains(t, err.Error(), "already on our waitlist")
}

func TestClient_LoginListLogout(t *testing.T) {
	c := New(newTestAPI(t).URL + "/")
	ctx := context.Background()

	_, err := c.Login(ctx, "wrong")
	assert.Equal(t, http.StatusUnauthorized, StatusCodeOf(err))

	session, err := c.Login(ctx, "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", session.Token)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), session.ExpiresAt)

	entries, err := c.ListEntries(ctx, session.Token)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b@example.com", entries[0].Email)

	_, err = c.ListEntries(ctx, "other")
	assert.Equal(t, http.StatusUnauthorized, StatusCodeOf(err))

	assert.NoError(t, c.Logout(ctx, session.Token))
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	c := New(newTestAPI(t).URL)

	_, err := c.do(context.Background(), http.MethodGet, "/broken", "", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, StatusCodeOf(err))
}

func TestClient_TransportError(t *testing.T) {
	srv := newTestAPI(t)
	srv.Close()

	_, err := New(srv.URL).Submit(context.Background(), Submission{Email: "a@example.com"})
	require.Error(t, err)
	assert.Zero(t, StatusCodeOf(err))
}
