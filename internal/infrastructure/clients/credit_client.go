package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wms-platform/intelligence-service/internal/domain"
	"github.com/wms-platform/intelligence-service/pkg/logging"
	"github.com/wms-platform/intelligence-service/pkg/metrics"
	"github.com/wms-platform/intelligence-service/pkg/resilience"
)

// CreditPositionDTO represents credit data fetched from the ERP gateway
type CreditPositionDTO struct {
	CustomerID     string   `json:"customerId"`
	PastDueBalance float64  `json:"pastDueBalance"`
	NotDueBalance  float64  `json:"notDueBalance"`
	TotalBalance   float64  `json:"totalBalance"`
	Classification string   `json:"classification"`
	ManualScore    *float64 `json:"manualScore,omitempty"`
}

// CreditPositionsResponse represents the batch response from the ERP gateway
type CreditPositionsResponse struct {
	Data []CreditPositionDTO `json:"data"`
}

// CreditServiceClient handles communication with the ERP credit gateway.
// Implements domain.CreditReader.
type CreditServiceClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger
}

// NewCreditServiceClient creates a new CreditServiceClient
func NewCreditServiceClient(baseURL string, m *metrics.Metrics, logger *logging.Logger) *CreditServiceClient {
	breakerConfig := resilience.DefaultCircuitBreakerConfig("erp-credit")
	breakerConfig.OnStateChange = func(name string, from, to gobreaker.State) {
		if m == nil {
			return
		}
		m.SetCircuitBreakerState(name, resilience.StateValue(to))
		if to == gobreaker.StateOpen {
			m.RecordCircuitBreakerTrip(name)
		}
	}

	return &CreditServiceClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		breaker: resilience.NewCircuitBreaker(breakerConfig, logger.Logger),
		logger:  logger.WithComponent("credit-client"),
	}
}

// PositionsByCustomerIDs fetches credit positions for the given customers,
// keyed by customer ID. Customers the ERP has no position for are absent
// from the result.
func (c *CreditServiceClient) PositionsByCustomerIDs(ctx context.Context, customerIDs []string) (map[string]domain.CreditPosition, error) {
	positions := make(map[string]domain.CreditPosition, len(customerIDs))
	if len(customerIDs) == 0 {
		return positions, nil
	}

	result, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		return c.fetchPositions(ctx, customerIDs)
	})
	if err != nil {
		return nil, err
	}

	for _, dto := range result.(*CreditPositionsResponse).Data {
		positions[dto.CustomerID] = domain.CreditPosition{
			CustomerID:     dto.CustomerID,
			PastDueBalance: dto.PastDueBalance,
			NotDueBalance:  dto.NotDueBalance,
			TotalBalance:   dto.TotalBalance,
			Classification: dto.Classification,
			ManualScore:    dto.ManualScore,
		}
	}

	return positions, nil
}

func (c *CreditServiceClient) fetchPositions(ctx context.Context, customerIDs []string) (*CreditPositionsResponse, error) {
	url := fmt.Sprintf("%s/api/v1/credit-positions", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Add("customerIds", strings.Join(customerIDs, ","))
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch credit positions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("credit gateway returned status %d", resp.StatusCode)
	}

	var response CreditPositionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode credit positions response: %w", err)
	}

	return &response, nil
}
