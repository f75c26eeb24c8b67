package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/mholden/ticklist/internal/auth"
	"github.com/mholden/ticklist/internal/database"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.DiscardHandler)
	srv := New(db, auth.NewJWTManager("test-secret", time.Minute), logger)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any) (int, map[string]any) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func doJSONList(t *testing.T, url, token string) (int, []map[string]any) {
	t.Helper()

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var decoded []map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func register(t *testing.T, base, username, email, password string) {
	t.Helper()
	status, _ := doJSON(t, "POST", base+"/api/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status = %d, want 201", username, status)
	}
}

func login(t *testing.T, base, username, password string) string {
	t.Helper()
	status, body := doJSON(t, "POST", base+"/api/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login %s: status = %d, want 200", username, status)
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatal("login returned no access_token")
	}
	if body["token_type"] != "bearer" {
		t.Fatalf("token_type = %v, want bearer", body["token_type"])
	}
	return token
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)

	status, body := doJSON(t, "GET", ts.URL+"/health", "", nil)
	if status != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v, want 200 ok", status, body)
	}
}

func TestFullScenario(t *testing.T) {
	ts := setupTestServer(t)

	register(t, ts.URL, "alice", "a@x.com", "pw1")
	token := login(t, ts.URL, "alice", "pw1")

	// Create checklist "Groceries"
	status, checklist := doJSON(t, "POST", ts.URL+"/api/checklist", token, map[string]string{"name": "Groceries"})
	if status != http.StatusCreated {
		t.Fatalf("create checklist: status = %d, want 201", status)
	}
	checklistID := int64(checklist["id"].(float64))
	listURL := ts.URL + "/api/checklist/" + itoa(checklistID)

	// Create item "Milk" — starts incomplete
	status, item := doJSON(t, "POST", listURL+"/item", token, map[string]string{"item_name": "Milk"})
	if status != http.StatusCreated {
		t.Fatalf("create item: status = %d, want 201", status)
	}
	if item["is_completed"] != false {
		t.Errorf("new item is_completed = %v, want false", item["is_completed"])
	}
	itemID := int64(item["id"].(float64))
	itemURL := listURL + "/item/" + itoa(itemID)

	// Toggle — completed becomes true
	status, item = doJSON(t, "PUT", itemURL, token, nil)
	if status != http.StatusOK || item["is_completed"] != true {
		t.Fatalf("toggle: status = %d, is_completed = %v, want 200 true", status, item["is_completed"])
	}

	// Rename — name changes, completion sticks
	status, item = doJSON(t, "PUT", listURL+"/item/rename/"+itoa(itemID), token, map[string]string{"item_name": "Oat Milk"})
	if status != http.StatusOK {
		t.Fatalf("rename: status = %d, want 200", status)
	}
	if item["item_name"] != "Oat Milk" {
		t.Errorf("item_name = %v, want Oat Milk", item["item_name"])
	}
	if item["is_completed"] != true {
		t.Errorf("is_completed = %v, want true after rename", item["is_completed"])
	}

	// Delete checklist — cascades
	status, body := doJSON(t, "DELETE", listURL, token, nil)
	if status != http.StatusOK || body["message"] != "Checklist deleted successfully" {
		t.Fatalf("delete checklist: status = %d, body = %v", status, body)
	}

	status, checklists := doJSONList(t, ts.URL+"/api/checklist", token)
	if status != http.StatusOK {
		t.Fatalf("list checklists: status = %d, want 200", status)
	}
	if len(checklists) != 0 {
		t.Errorf("expected empty checklist list, got %d", len(checklists))
	}

	// Item is no longer retrievable
	status, _ = doJSON(t, "GET", itemURL, token, nil)
	if status != http.StatusNotFound {
		t.Errorf("get deleted item: status = %d, want 404", status)
	}
}

func TestRegisterConflict(t *testing.T) {
	ts := setupTestServer(t)

	register(t, ts.URL, "alice", "a@x.com", "pw1")

	status, _ := doJSON(t, "POST", ts.URL+"/api/register", "", map[string]string{
		"username": "alice", "email": "other@x.com", "password": "pw2",
	})
	if status != http.StatusConflict {
		t.Errorf("duplicate username: status = %d, want 409", status)
	}

	status, _ = doJSON(t, "POST", ts.URL+"/api/register", "", map[string]string{
		"username": "bob", "email": "a@x.com", "password": "pw2",
	})
	if status != http.StatusConflict {
		t.Errorf("duplicate email: status = %d, want 409", status)
	}
}

func TestLoginFailures(t *testing.T) {
	ts := setupTestServer(t)

	register(t, ts.URL, "alice", "a@x.com", "pw1")

	status, _ := doJSON(t, "POST", ts.URL+"/api/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", status)
	}

	status, _ = doJSON(t, "POST", ts.URL+"/api/login", "", map[string]string{
		"username": "nobody", "password": "pw1",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("unknown user: status = %d, want 401", status)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := setupTestServer(t)

	status, _ := doJSON(t, "GET", ts.URL+"/api/checklist", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", status)
	}

	status, _ = doJSON(t, "GET", ts.URL+"/api/checklist", "bogus-token", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", status)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	ts := setupTestServer(t)

	register(t, ts.URL, "alice", "a@x.com", "pw1")
	register(t, ts.URL, "bob", "b@x.com", "pw2")
	aliceToken := login(t, ts.URL, "alice", "pw1")
	bobToken := login(t, ts.URL, "bob", "pw2")

	_, checklist := doJSON(t, "POST", ts.URL+"/api/checklist", aliceToken, map[string]string{"name": "Private"})
	checklistID := int64(checklist["id"].(float64))
	listURL := ts.URL + "/api/checklist/" + itoa(checklistID)

	_, item := doJSON(t, "POST", listURL+"/item", aliceToken, map[string]string{"item_name": "Secret"})
	itemID := int64(item["id"].(float64))
	itemURL := listURL + "/item/" + itoa(itemID)

	// Every path bob tries returns 404, never 403.
	checks := []struct {
		name   string
		method string
		url    string
		body   any
	}{
		{"list items", "GET", listURL + "/item", nil},
		{"get item", "GET", itemURL, nil},
		{"toggle item", "PUT", itemURL, nil},
		{"rename item", "PUT", listURL + "/item/rename/" + itoa(itemID), map[string]string{"item_name": "Hijacked"}},
		{"delete item", "DELETE", itemURL, nil},
		{"delete checklist", "DELETE", listURL, nil},
	}
	for _, c := range checks {
		status, _ := doJSON(t, c.method, c.url, bobToken, c.body)
		if status != http.StatusNotFound {
			t.Errorf("%s as bob: status = %d, want 404", c.name, status)
		}
	}

	// Bob's own view contains nothing of alice's.
	status, checklists := doJSONList(t, ts.URL+"/api/checklist", bobToken)
	if status != http.StatusOK || len(checklists) != 0 {
		t.Errorf("bob's checklists = %d %v, want empty", status, checklists)
	}

	// Alice's data is unchanged.
	status, got := doJSON(t, "GET", itemURL, aliceToken, nil)
	if status != http.StatusOK {
		t.Fatalf("alice get item: status = %d, want 200", status)
	}
	if got["item_name"] != "Secret" || got["is_completed"] != false {
		t.Errorf("alice's item changed: %v", got)
	}
}

func TestItemPathParentMustMatch(t *testing.T) {
	ts := setupTestServer(t)

	register(t, ts.URL, "alice", "a@x.com", "pw1")
	token := login(t, ts.URL, "alice", "pw1")

	_, first := doJSON(t, "POST", ts.URL+"/api/checklist", token, map[string]string{"name": "First"})
	_, second := doJSON(t, "POST", ts.URL+"/api/checklist", token, map[string]string{"name": "Second"})
	firstID := int64(first["id"].(float64))
	secondID := int64(second["id"].(float64))

	_, item := doJSON(t, "POST", ts.URL+"/api/checklist/"+itoa(firstID)+"/item", token, map[string]string{"item_name": "Milk"})
	itemID := int64(item["id"].(float64))

	// The item exists but not under the second checklist.
	status, _ := doJSON(t, "GET", ts.URL+"/api/checklist/"+itoa(secondID)+"/item/"+itoa(itemID), token, nil)
	if status != http.StatusNotFound {
		t.Errorf("cross-checklist item get: status = %d, want 404", status)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
