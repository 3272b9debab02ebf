package backend

import (
	"context"
	"fmt"

	"contas/internal/core"
	"contas/internal/log"
	"contas/internal/remote/httpapi"
	"contas/internal/remote/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateGateway implements Factory.CreateGateway
func (f *DefaultFactory) CreateGateway(_ context.Context, cfg Config) (*Result, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case RemoteBackend:
		return f.createRemoteGateway(cfg)
	case MemoryBackend:
		return f.createMemoryGateway(cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

func (f *DefaultFactory) createRemoteGateway(cfg Config) (*Result, error) {
	client, err := httpapi.New(httpapi.Config{
		BaseURL:    cfg.APIBaseURL,
		PathPrefix: cfg.APIPathPrefix,
		Timeout:    cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create remote gateway: %w", err)
	}

	f.logger.Info("remote gateway ready", "base_url", cfg.APIBaseURL)
	return &Result{
		Gateway: client,
		Cleanup: func() error { return nil },
	}, nil
}

func (f *DefaultFactory) createMemoryGateway(cfg Config) (*Result, error) {
	store := memory.New()
	if cfg.SeedSampleData {
		store.Seed(sampleBills())
	}

	f.logger.Info("memory gateway ready")
	return &Result{
		Gateway: store,
		Cleanup: func() error { return nil },
	}, nil
}

// sampleBills gives the memory backend something to show in dev runs.
func sampleBills() []core.Bill {
	return []core.Bill{
		{
			ID:          "sample-luz",
			Description: "Luz",
			Amount:      core.Money{Cents: 18750},
			Status:      core.StatusPending,
			Schedule:    core.OneOff{DueDate: core.NewDate(2026, 9, 10)},
		},
		{
			ID:          "sample-aluguel",
			Description: "Aluguel",
			Amount:      core.Money{Cents: 180000},
			Status:      core.StatusPending,
			Schedule: core.Recurring{
				InstallmentCount: 12,
				FixedDueDay:      5,
				PeriodStart:      core.YearMonth{Year: 2026, Month: 1},
				PeriodEnd:        core.YearMonth{Year: 2026, Month: 12},
			},
		},
	}
}
