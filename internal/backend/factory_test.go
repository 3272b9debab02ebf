package backend

import (
	"context"
	"testing"
	"time"

	"contas/internal/config"
)

func TestCreateMemoryGatewaySeeded(t *testing.T) {
	f := NewFactory(nil)

	result, err := f.CreateGateway(context.Background(), Config{
		Type:           MemoryBackend,
		SeedSampleData: true,
	})
	if err != nil {
		t.Fatalf("CreateGateway: %v", err)
	}
	t.Cleanup(func() { _ = result.Cleanup() })

	bills, err := result.Gateway.ListBills(context.Background())
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(bills) == 0 {
		t.Fatal("seeded memory gateway is empty")
	}
	for _, b := range bills {
		if err := b.Validate(); err != nil {
			t.Errorf("sample bill %q invalid: %v", b.ID, err)
		}
	}
}

func TestCreateMemoryGatewayUnseeded(t *testing.T) {
	f := NewFactory(nil)

	result, err := f.CreateGateway(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateGateway: %v", err)
	}
	bills, err := result.Gateway.ListBills(context.Background())
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(bills) != 0 {
		t.Errorf("unseeded memory gateway holds %d bills", len(bills))
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{
		DataBackend:    "memory",
		APIBaseURL:     "http://localhost:8000",
		APIPathPrefix:  "/api/v1",
		RequestTimeout: 10 * time.Second,
		MemorySeed:     true,
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != MemoryBackend {
		t.Errorf("Type = %q", cfg.Type)
	}
	if !cfg.SeedSampleData {
		t.Error("MemorySeed not carried into backend config")
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "bogus"}); err == nil {
		t.Error("expected error for invalid backend type")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}
