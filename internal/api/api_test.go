package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/mjhaler/appliancetrack/internal/auth"
	"github.com/mjhaler/appliancetrack/internal/db"
	"github.com/mjhaler/appliancetrack/internal/model"
	"github.com/mjhaler/appliancetrack/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "admin", string(hash), model.RoleAdmin, "")

	// Get token.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}

	return server, token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	// Test invalid credentials.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestApplianceAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	// Create appliance.
	req, _ := authRequest("POST", server.URL+"/api/appliances", token, map[string]string{
		"store_name":  "Downtown Appliance",
		"item_number": "WM-100",
		"brand":       "Maytag",
		"model":       "Bravos",
		"serial":      "SN-1",
		"status":      model.StatusIn,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Duplicate identity key, case-folded store name.
	req, _ = authRequest("POST", server.URL+"/api/appliances", token, map[string]string{
		"store_name":  "DOWNTOWN APPLIANCE",
		"item_number": "WM-100",
		"brand":       "Maytag",
		"model":       "Bravos",
		"serial":      "SN-2",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate key, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Fetch by key.
	req, _ = authRequest("GET", server.URL+"/api/appliances/Downtown%20Appliance/WM-100", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got model.Appliance
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if got.Brand != "Maytag" {
		t.Errorf("expected brand Maytag, got %q", got.Brand)
	}
	if len(got.History) != 1 {
		t.Errorf("expected seeded history, got %d entries", len(got.History))
	}

	// Patch status.
	req, _ = authRequest("PUT", server.URL+"/api/appliances/Downtown%20Appliance/WM-100", token, map[string]string{
		"status": model.StatusRepaired,
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if got.Status != model.StatusRepaired {
		t.Errorf("expected status %q, got %q", model.StatusRepaired, got.Status)
	}

	// List.
	req, _ = authRequest("GET", server.URL+"/api/appliances", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	var list []model.Appliance
	json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()
	if len(list) != 1 {
		t.Errorf("expected 1 appliance, got %d", len(list))
	}
}

func TestArchiveEndpoints(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/appliances", token, map[string]string{
		"store_name":  "Acme",
		"item_number": "A1",
		"brand":       "LG",
		"model":       "X",
		"serial":      "S1",
	})
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()

	// Archive.
	req, _ = authRequest("POST", server.URL+"/api/appliances/Acme/A1/archive", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Archiving again conflicts.
	req, _ = authRequest("POST", server.URL+"/api/appliances/Acme/A1/archive", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for double archive, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Archived list has it, active list does not.
	req, _ = authRequest("GET", server.URL+"/api/appliances/archived", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	var archived []model.Appliance
	json.NewDecoder(resp.Body).Decode(&archived)
	resp.Body.Close()
	if len(archived) != 1 {
		t.Errorf("expected 1 archived appliance, got %d", len(archived))
	}

	req, _ = authRequest("GET", server.URL+"/api/appliances", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	var active []model.Appliance
	json.NewDecoder(resp.Body).Decode(&active)
	resp.Body.Close()
	if len(active) != 0 {
		t.Errorf("expected 0 active appliances, got %d", len(active))
	}

	// Unarchive restores it.
	req, _ = authRequest("POST", server.URL+"/api/appliances/Acme/A1/unarchive", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestBulkArchiveEndpoint(t *testing.T) {
	server, token := setupTestServer(t)

	for _, item := range []string{"B1", "B2", "B3"} {
		req, _ := authRequest("POST", server.URL+"/api/appliances", token, map[string]string{
			"store_name":  "Acme",
			"item_number": item,
			"brand":       "LG",
			"model":       "X",
			"serial":      "S-" + item,
			"status":      model.StatusDelivered,
		})
		resp, _ := http.DefaultClient.Do(req)
		resp.Body.Close()
	}

	req, _ := authRequest("POST", server.URL+"/api/appliances/bulk/archive", token, map[string]string{
		"store_name": "Acme",
		"status":     model.StatusDelivered,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result map[string]int
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()
	if result["count"] != 3 {
		t.Errorf("expected 3 archived, got %d", result["count"])
	}
}

func TestAuditEndpoint(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/appliances", token, map[string]string{
		"store_name":  "Acme",
		"item_number": "A1",
		"brand":       "LG",
		"model":       "X",
		"serial":      "S1",
	})
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()

	req, _ = authRequest("GET", server.URL+"/api/audit", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var entries []model.AuditEntry
	json.NewDecoder(resp.Body).Decode(&entries)
	resp.Body.Close()
	if len(entries) != 1 || entries[0].Action != model.ActionAdd {
		t.Errorf("expected one add entry, got %+v", entries)
	}

	req, _ = authRequest("GET", server.URL+"/api/audit/latest", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for latest entry, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedAccess(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	resp, _ := http.Get(server.URL + "/api/appliances")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create a store-role user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("pass"), bcrypt.DefaultCost)
	user, err := store.CreateUser(ctx, database, "clerk", string(hash), model.RoleStore, "Acme")
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}

	userToken, _ := auth.GenerateToken(testJWTSecret, user)

	// Store users cannot create appliances.
	req, _ := authRequest("POST", server.URL+"/api/appliances", userToken, map[string]string{
		"store_name":  "Acme",
		"item_number": "A1",
		"brand":       "LG",
		"model":       "X",
		"serial":      "S1",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for store user creating appliance, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Store users cannot access /api/users.
	req, _ = authRequest("GET", server.URL+"/api/users", userToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for store user accessing users, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Store users can still read the inventory.
	req, _ = authRequest("GET", server.URL+"/api/appliances", userToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for store user listing appliances, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The revoked token is no longer accepted.
	req, _ = authRequest("GET", server.URL+"/api/appliances", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
