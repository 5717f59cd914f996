package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bigode/bigode-booking/internal/client"
	"github.com/bigode/bigode-booking/services/gateway/internal/handlers"
	"github.com/bigode/bigode-booking/services/gateway/internal/proxy"
)

func TestForwardAPIStripsPrefix(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/availability" || r.URL.Query().Get("date") != "2026-03-05" {
			t.Errorf("unexpected upstream request %s", r.URL.String())
		}
		if r.Header.Get(client.SessionHeader) != "sess-1" {
			t.Errorf("session header not forwarded")
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("request id not propagated")
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"slots":[]}`)
	}))
	t.Cleanup(upstream.Close)

	api := proxy.NewServiceProxy("devapi", upstream.URL)
	gw := httptest.NewServer(newRouter(handlers.New(api, api)))
	t.Cleanup(gw.Close)

	req, _ := http.NewRequest(http.MethodGet, gw.URL+"/api/availability?barberId=b1&date=2026-03-05", nil)
	req.Header.Set(client.SessionHeader, "sess-1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "slots") {
		t.Fatalf("unexpected response %d %s", resp.StatusCode, body)
	}
}

func TestForwardAPIUpstreamDown(t *testing.T) {
	api := proxy.NewServiceProxy("devapi", "http://127.0.0.1:1")
	gw := httptest.NewServer(newRouter(handlers.New(api, api)))
	t.Cleanup(gw.Close)

	resp, err := http.Get(gw.URL + "/api/barbershops/x/barbers")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestStatusAggregatesUpstreams(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(healthy.Close)
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(broken.Close)

	api := proxy.NewServiceProxy("devapi", healthy.URL)
	notify := proxy.NewServiceProxy("notify", broken.URL)
	gw := httptest.NewServer(newRouter(handlers.New(api, api, notify)))
	t.Cleanup(gw.Close)

	resp, err := http.Get(gw.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	var payload struct {
		Services []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"services"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Services) != 2 || payload.Services[0].Status != "ok" || payload.Services[1].Status != "down" {
		t.Fatalf("unexpected status %+v", payload.Services)
	}
}
