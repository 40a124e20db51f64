package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCommands_Registered(t *testing.T) {
	want := map[string]bool{"serve": false, "login": false, "logout": false, "status": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("%s command not registered with rootCmd", name)
		}
	}
}

func TestLoginCmd_FlagDefaults(t *testing.T) {
	admin, err := loginCmd.Flags().GetBool("admin")
	if err != nil {
		t.Fatalf("failed to get admin flag: %v", err)
	}
	if admin {
		t.Error("admin default = true, want false")
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		_ = loginCmd.Flags().Set("admin", "false")
		_ = loginCmd.Flags().Set("password", "")
		_ = statusCmd.Flags().Set("json", "false")
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestStatusCmd_EmptyStorage(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	out, err := execute(t, "", "status", "--json")
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	var lines []statusLine
	if err := json.Unmarshal([]byte(out), &lines); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	for _, l := range lines {
		if l.Presence != "absent" || l.Authenticated {
			t.Errorf("%s: presence=%s authenticated=%v, want absent/false", l.Domain, l.Presence, l.Authenticated)
		}
	}
}

func TestLoginCmd_ReadsPasswordFromStdin(t *testing.T) {
	var gotPassword string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/admin/login" {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotPassword = body["password"]
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "abc",
			"admin": map[string]any{"name": "Root"},
		})
	}))
	defer srv.Close()

	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("API_BASE_URL", srv.URL)

	out, err := execute(t, "s3cret\n", "login", "--admin", "--email", "root@example.com")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if gotPassword != "s3cret" {
		t.Errorf("password = %q, want %q", gotPassword, "s3cret")
	}
	if !strings.Contains(out, "logged in to admin as Root") {
		t.Errorf("output = %q", out)
	}
}

func TestLoginCmd_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("API_BASE_URL", srv.URL)

	if _, err := execute(t, "", "login", "--email", "ada@example.com", "--password", "nope"); err == nil {
		t.Fatal("expected error for rejected credentials")
	}
}
