package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminJSON = `{"id":"u-1","firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","role":"admin"}`

// fakeServer answers the auth endpoints for one admin account.
func fakeServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var logouts atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body["password"] != "Aa1!aaaa" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"token":"tok-1","user":` + adminJSON + `}`))
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"Not authorized to access this route"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":` + adminJSON + `}`))
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		logouts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{}}`))
	})
	mux.HandleFunc("/api/courses", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"c-1","title":"Go Basics","level":"beginner","price":0}]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &logouts
}

// run executes one lmsctl invocation against srv with a credential file in dir.
func run(t *testing.T, srv *httptest.Server, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LMS_API_URL", srv.URL+"/api")
	t.Setenv("LMS_TOKEN_STORE", "file")
	t.Setenv("LMS_TOKEN_PATH", filepath.Join(dir, "lms_token"))

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	srv, logouts := fakeServer(t)
	dir := t.TempDir()

	out, err := run(t, srv, dir, "login", "--email", "ada@example.com", "--password", "Aa1!aaaa")
	require.NoError(t, err)
	assert.Contains(t, out, "navigate: /admin/dashboard")
	assert.Contains(t, out, "Ada Lovelace <ada@example.com> (admin)")

	out, err = run(t, srv, dir, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")

	out, err = run(t, srv, dir, "open", "/admin/users")
	require.NoError(t, err)
	assert.Equal(t, "allow\n", out)

	out, err = run(t, srv, dir, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "navigate: /login")
	assert.Equal(t, int32(1), logouts.Load())

	_, err = run(t, srv, dir, "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)

	out, err = run(t, srv, dir, "logout")
	require.NoError(t, err, "second logout succeeds")
	assert.Contains(t, out, "navigate: /login")
	assert.Equal(t, int32(1), logouts.Load(), "nothing left to revoke")
}

func TestLogin_WrongPassword(t *testing.T) {
	srv, _ := fakeServer(t)

	out, err := run(t, srv, t.TempDir(), "login", "--email", "ada@example.com", "--password", "nope")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.NotContains(t, out, "navigate:")
}

func TestOpen_Anonymous(t *testing.T) {
	srv, _ := fakeServer(t)

	out, err := run(t, srv, t.TempDir(), "open", "/admin/users")
	require.NoError(t, err)
	assert.Equal(t, "redirect -> /login\n", out)
}

func TestRegister_ValidatesLocally(t *testing.T) {
	srv, _ := fakeServer(t)

	_, err := run(t, srv, t.TempDir(), "register",
		"--first-name", "John", "--last-name", "Doe",
		"--email", "john@example.com", "--password", "weak")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password must be at least 8 characters")
}

func TestCoursesList(t *testing.T) {
	srv, _ := fakeServer(t)

	out, err := run(t, srv, t.TempDir(), "courses", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Go Basics")
}

func TestVersion(t *testing.T) {
	srv, _ := fakeServer(t)

	out, err := run(t, srv, t.TempDir(), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "lmsctl "))
}
