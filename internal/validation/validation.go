package validation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/verity/backend/internal/logger"
	"go.uber.org/zap"
)

// CheckTimeout bounds each startup probe
const CheckTimeout = 10 * time.Second

// Check probes one external service
type Check func(ctx context.Context) error

// ServiceValidator probes the configured backing services at startup. A failing
// required service aborts startup; any other failure is only logged.
type ServiceValidator struct {
	requiredServices []string
	checks           map[string]Check
}

// NewServiceValidator creates a validator for the given required service names
func NewServiceValidator(required []string) *ServiceValidator {
	normalized := make([]string, 0, len(required))
	for _, name := range required {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			normalized = append(normalized, name)
		}
	}
	return &ServiceValidator{
		requiredServices: normalized,
		checks:           make(map[string]Check),
	}
}

// Register adds a probe for a configured service. Unconfigured services are
// simply never registered.
func (sv *ServiceValidator) Register(name string, check Check) *ServiceValidator {
	sv.checks[strings.ToLower(name)] = check
	return sv
}

// ValidateServices runs every registered probe
func (sv *ServiceValidator) ValidateServices(ctx context.Context) error {
	for _, name := range sv.requiredServices {
		if _, ok := sv.checks[name]; !ok {
			return fmt.Errorf("required service %q is not configured", name)
		}
	}

	names := make([]string, 0, len(sv.checks))
	for name := range sv.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		timeoutCtx, cancel := context.WithTimeout(ctx, CheckTimeout)
		err := sv.checks[name](timeoutCtx)
		cancel()

		if err == nil {
			logger.Log.Info("Service validated successfully", zap.String("service", name))
			continue
		}
		if sv.isRequired(name) {
			logger.Log.Error("Required service validation failed", zap.String("service", name), zap.Error(err))
			return fmt.Errorf("required service %q validation failed: %w", name, err)
		}
		logger.Log.Warn("Optional service validation failed", zap.String("service", name), zap.Error(err))
	}
	return nil
}

func (sv *ServiceValidator) isRequired(name string) bool {
	for _, r := range sv.requiredServices {
		if r == name {
			return true
		}
	}
	return false
}
