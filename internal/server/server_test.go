package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/XquisitoAI/xquisito-backend/internal/auth"
	"github.com/XquisitoAI/xquisito-backend/internal/gateway"
	"github.com/XquisitoAI/xquisito-backend/internal/service"
	"github.com/XquisitoAI/xquisito-backend/internal/storage/sqlite"
)

func setupServer(t *testing.T) (*httptest.Server, *gateway.Fake) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tempDir, err := os.MkdirTemp("", "xquisito-server-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	fake := gateway.NewFake()
	tables := service.NewTableService(store, fake, nil, "MXN")
	tokens := auth.NewTokenManager("test-secret-key-32-bytes-long!!!", time.Hour)

	server := httptest.NewServer(New(tables, tokens).Router())
	t.Cleanup(server.Close)
	return server, fake
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var parsed map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		parsed = nil
	}
	return resp, parsed
}

func startSession(t *testing.T, baseURL, tableID, name string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, baseURL+"/api/tables/"+tableID+"/session", "",
		map[string]string{"guest_name": name})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("session start = %d, want 201", resp.StatusCode)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("expected a session token")
	}
	return token
}

func TestServerFlow(t *testing.T) {
	server, _ := setupServer(t)
	base := server.URL

	alice := startSession(t, base, "7", "Alice")
	bob := startSession(t, base, "7", "Bob")

	t.Run("unauthenticated requests are rejected", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, base+"/api/tables/7/summary", "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("orders land on the shared ledger", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, base+"/api/tables/7/orders", alice, map[string]any{
			"items": []map[string]any{{"item": "Aguachile", "quantity": 1, "price": 190.0}},
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want 201", resp.StatusCode)
		}
		resp, _ = doJSON(t, http.MethodPost, base+"/api/tables/7/orders", bob, map[string]any{
			"items": []map[string]any{{"item": "Birria", "quantity": 1, "price": 110.0}},
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want 201", resp.StatusCode)
		}

		resp, summary := doJSON(t, http.MethodGet, base+"/api/tables/7/summary", bob, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		if summary["total_amount"].(float64) != 300 {
			t.Errorf("total = %v, want 300", summary["total_amount"])
		}
		if summary["no_items"].(float64) != 2 {
			t.Errorf("no_items = %v, want 2", summary["no_items"])
		}
	})

	t.Run("payment options reflect the open table", func(t *testing.T) {
		resp, options := doJSON(t, http.MethodGet, base+"/api/tables/7/payment-options", alice, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		for _, key := range []string{"full_bill_enabled", "user_items_enabled", "equal_shares_enabled"} {
			if enabled, _ := options[key].(bool); !enabled {
				t.Errorf("%s = %v, want true", key, options[key])
			}
		}
	})

	t.Run("tip breakdown composes without charging", func(t *testing.T) {
		resp, breakdown := doJSON(t, http.MethodPost, base+"/api/tables/7/tip-breakdown", alice, map[string]any{
			"strategy":    "full-bill",
			"tip_percent": 10.0,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		if breakdown["total_amount"].(float64) != 390.46 {
			t.Errorf("total = %v, want 390.46", breakdown["total_amount"])
		}
	})

	t.Run("a confirmed payment settles the table", func(t *testing.T) {
		resp, result := doJSON(t, http.MethodPost, base+"/api/tables/7/pay", alice, map[string]any{
			"strategy":          "full-bill",
			"tip_percent":       10.0,
			"payment_method_id": "pm_1",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200: %v", resp.StatusCode, result)
		}
		if result["state"].(string) != "confirmed" {
			t.Errorf("state = %v, want confirmed", result["state"])
		}

		_, summary := doJSON(t, http.MethodGet, base+"/api/tables/7/summary", bob, nil)
		if summary["status"].(string) != "paid" {
			t.Errorf("table status = %v, want paid", summary["status"])
		}
	})
}

func TestServerErrorMapping(t *testing.T) {
	server, fake := setupServer(t)
	base := server.URL

	token := startSession(t, base, "9", "Alice")
	resp, _ := doJSON(t, http.MethodPost, base+"/api/tables/9/orders", token, map[string]any{
		"items": []map[string]any{{"item": "Enchiladas", "quantity": 1, "price": 95.0}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("order status = %d, want 201", resp.StatusCode)
	}

	t.Run("validation maps to 400", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, base+"/api/tables/9/pay", token, map[string]any{
			"strategy":          "choose-amount",
			"chosen_amount":     9999.0,
			"payment_method_id": "pm_1",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("unknown dish maps to 404", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPut, base+"/api/tables/9/dishes/nope/pay", token, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("gateway decline maps to 402", func(t *testing.T) {
		fake.DeclineNext("insufficient funds")
		resp, body := doJSON(t, http.MethodPost, base+"/api/tables/9/pay", token, map[string]any{
			"strategy":          "full-bill",
			"payment_method_id": "pm_1",
		})
		if resp.StatusCode != http.StatusPaymentRequired {
			t.Errorf("status = %d, want 402: %v", resp.StatusCode, body)
		}
	})

	t.Run("provider outage maps to 502", func(t *testing.T) {
		fake.SetOffline(true)
		defer fake.SetOffline(false)
		resp, _ := doJSON(t, http.MethodPost, base+"/api/tables/9/pay", token, map[string]any{
			"strategy":          "full-bill",
			"payment_method_id": "pm_1",
		})
		if resp.StatusCode != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", resp.StatusCode)
		}
	})

	t.Run("health needs no token", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, base+"/health", "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})
}
