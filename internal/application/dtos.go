package application

import (
	"time"

	"github.com/wms-platform/intelligence-service/internal/domain"
)

// Result limit bounds applied to every caller-supplied limit.
const (
	minResultLimit = 20
	maxResultLimit = 300

	defaultOrderLimit    = 100
	defaultCustomerLimit = 50
)

// clampLimit bounds a caller-supplied limit, falling back to def when
// the caller sent nothing usable.
func clampLimit(limit, def int) int {
	if limit <= 0 {
		limit = def
	}
	if limit < minResultLimit {
		return minResultLimit
	}
	if limit > maxResultLimit {
		return maxResultLimit
	}
	return limit
}

// OrderQuery selects the open-order window for ATP, orchestration and
// substitution snapshots.
type OrderQuery struct {
	Series     string `form:"series"`
	OrderLimit int    `form:"orderLimit"`
}

// Limit returns the clamped order limit.
func (q OrderQuery) Limit() int {
	return clampLimit(q.OrderLimit, defaultOrderLimit)
}

// CustomerQuery selects the customer window for intent scoring.
type CustomerQuery struct {
	CustomerLimit int `form:"customerLimit"`
}

// Limit returns the clamped customer limit.
func (q CustomerQuery) Limit() int {
	return clampLimit(q.CustomerLimit, defaultCustomerLimit)
}

// RiskQuery selects the pending-approval window for risk gating.
type RiskQuery struct {
	OrderLimit int `form:"orderLimit"`
}

// Limit returns the clamped order limit.
func (q RiskQuery) Limit() int {
	return clampLimit(q.OrderLimit, defaultOrderLimit)
}

// CommandCenterQuery parameterizes the composed snapshot.
type CommandCenterQuery struct {
	Series        string `form:"series"`
	OrderLimit    int    `form:"orderLimit"`
	CustomerLimit int    `form:"customerLimit"`
}

// ATPLine is the per-line available-to-promise computation result.
type ATPLine struct {
	ProductCode         string                `json:"productCode"`
	ProductName         string                `json:"productName"`
	Unit                string                `json:"unit"`
	WarehouseID         string                `json:"warehouseId,omitempty"`
	RemainingQty        float64               `json:"remainingQty"`
	OwnReservedQty      float64               `json:"ownReservedQty"`
	StockQty            float64               `json:"stockQty"`
	ReservedByOthersQty float64               `json:"reservedByOthersQty"`
	ATPQty              float64               `json:"atpQty"`
	CoverableQty        float64               `json:"coverableQty"`
	ShortageQty         float64               `json:"shortageQty"`
	CoverageStatus      domain.CoverageStatus `json:"coverageStatus"`
}

// ATPOrder is the per-order roll-up of its line results.
type ATPOrder struct {
	OrderID        string                `json:"orderId"`
	Series         string                `json:"series"`
	CustomerID     string                `json:"customerId"`
	CustomerCode   string                `json:"customerCode"`
	CustomerName   string                `json:"customerName"`
	OrderDate      time.Time             `json:"orderDate"`
	DeliveryDate   *time.Time            `json:"deliveryDate,omitempty"`
	AgeHours       float64               `json:"ageHours"`
	RemainingQty   float64               `json:"remainingQty"`
	CoverableQty   float64               `json:"coverableQty"`
	ShortageQty    float64               `json:"shortageQty"`
	CoveredPercent int                   `json:"coveredPercent"`
	CoverageStatus domain.CoverageStatus `json:"coverageStatus"`
	PriorityScore  int                   `json:"priorityScore"`
	Lines          []ATPLine             `json:"lines"`
}

// ATPSnapshot is the full coverage picture for one order window.
type ATPSnapshot struct {
	GeneratedAt      time.Time  `json:"generatedAt"`
	Series           string     `json:"series,omitempty"`
	OrderCount       int        `json:"orderCount"`
	FullCount        int        `json:"fullCount"`
	PartialCount     int        `json:"partialCount"`
	NoneCount        int        `json:"noneCount"`
	TotalShortageQty float64    `json:"totalShortageQty"`
	Orders           []ATPOrder `json:"orders"`
}

// LowCoverageCount returns the number of orders not fully coverable.
func (s *ATPSnapshot) LowCoverageCount() int {
	return s.PartialCount + s.NoneCount
}

// StageCount is one entry of the queue-by-stage breakdown.
type StageCount struct {
	Stage domain.WorkflowStage `json:"stage"`
	Count int                  `json:"count"`
}

// PickerWorkload aggregates the active orders attributed to one picker.
type PickerWorkload struct {
	PickerID     string     `json:"pickerId"`
	ActiveOrders int        `json:"activeOrders"`
	OpenLines    int        `json:"openLines"`
	OpenQty      float64    `json:"openQty"`
	LastActionAt *time.Time `json:"lastActionAt,omitempty"`
}

// PickWave is one capacity-bounded batch of orders for picking.
type PickWave struct {
	Series             string   `json:"series"`
	WaveNumber         int      `json:"waveNumber"`
	OrderIDs           []string `json:"orderIds"`
	OrderCount         int      `json:"orderCount"`
	LineCount          int      `json:"lineCount"`
	TotalQty           float64  `json:"totalQty"`
	ShortageQty        float64  `json:"shortageQty"`
	EstimatedMinutes   int      `json:"estimatedMinutes"`
	RecommendedPickers int      `json:"recommendedPickers"`
}

// OrchestrationSnapshot is the pick-floor planning output.
type OrchestrationSnapshot struct {
	GeneratedAt     time.Time        `json:"generatedAt"`
	QueueByStage    []StageCount     `json:"queueByStage"`
	PickerWorkloads []PickerWorkload `json:"pickerWorkloads"`
	Waves           []PickWave       `json:"waves"`
}

// ActivePickerCount returns the number of named pickers with active orders.
func (s *OrchestrationSnapshot) ActivePickerCount() int {
	count := 0
	for _, w := range s.PickerWorkloads {
		if w.PickerID != unassignedPicker {
			count++
		}
	}
	return count
}

// SubstitutionCandidate is one ranked replacement suggestion.
type SubstitutionCandidate struct {
	ProductCode string  `json:"productCode"`
	ProductName string  `json:"productName"`
	StockQty    float64 `json:"stockQty"`
	Score       float64 `json:"score"`
	Reason      string  `json:"reason"`
}

// SubstitutionLine carries the candidates for one shortage line.
type SubstitutionLine struct {
	OrderID     string                  `json:"orderId"`
	ProductCode string                  `json:"productCode"`
	ProductName string                  `json:"productName"`
	ShortageQty float64                 `json:"shortageQty"`
	Candidates  []SubstitutionCandidate `json:"candidates"`
}

// SubstitutionSnapshot lists suggestions for every shortage line in scope.
type SubstitutionSnapshot struct {
	GeneratedAt time.Time          `json:"generatedAt"`
	LineCount   int                `json:"lineCount"`
	Lines       []SubstitutionLine `json:"lines"`
}

// Intent segments.
const (
	SegmentHot  = "HOT"
	SegmentWarm = "WARM"
	SegmentCold = "COLD"
)

// Churn risk levels.
const (
	ChurnHigh   = "HIGH"
	ChurnMedium = "MEDIUM"
	ChurnLow    = "LOW"
)

// CustomerIntent is one scored customer.
type CustomerIntent struct {
	CustomerID      string     `json:"customerId"`
	CustomerCode    string     `json:"customerCode"`
	CustomerName    string     `json:"customerName"`
	PageViews       int        `json:"pageViews"`
	ProductViews    int        `json:"productViews"`
	CartAdds        int        `json:"cartAdds"`
	CartUpdates     int        `json:"cartUpdates"`
	Searches        int        `json:"searches"`
	ActiveMinutes   int        `json:"activeMinutes"`
	Clicks          int        `json:"clicks"`
	CartQuantity    float64    `json:"cartQuantity"`
	CartAmount      float64    `json:"cartAmount"`
	OrderCount30d   int        `json:"orderCount30d"`
	OrderAmount30d  float64    `json:"orderAmount30d"`
	LastActivityAt  *time.Time `json:"lastActivityAt,omitempty"`
	EngagementScore float64    `json:"engagementScore"`
	CommerceScore   float64    `json:"commerceScore"`
	RecencyScore    float64    `json:"recencyScore"`
	IntentScore     int        `json:"intentScore"`
	Segment         string     `json:"segment"`
	ChurnRisk       string     `json:"churnRisk"`
	NextBestAction  string     `json:"nextBestAction"`
}

// IntentSnapshot ranks customers by purchase intent.
type IntentSnapshot struct {
	GeneratedAt   time.Time        `json:"generatedAt"`
	CustomerCount int              `json:"customerCount"`
	HotCount      int              `json:"hotCount"`
	WarmCount     int              `json:"warmCount"`
	ColdCount     int              `json:"coldCount"`
	Customers     []CustomerIntent `json:"customers"`
}

// Risk decisions.
const (
	DecisionBlock        = "BLOCK"
	DecisionManualReview = "MANUAL_REVIEW"
	DecisionAutoApprove  = "AUTO_APPROVE"
)

// OrderRisk is one gated pending-approval order.
type OrderRisk struct {
	OrderID        string    `json:"orderId"`
	CustomerID     string    `json:"customerId"`
	CustomerCode   string    `json:"customerCode"`
	CustomerName   string    `json:"customerName"`
	OrderDate      time.Time `json:"orderDate"`
	Amount         float64   `json:"amount"`
	PendingAgeDays float64   `json:"pendingAgeDays"`
	PastDueBalance float64   `json:"pastDueBalance"`
	TotalBalance   float64   `json:"totalBalance"`
	HasCreditData  bool      `json:"hasCreditData"`
	Classification string    `json:"classification,omitempty"`
	RiskScore      int       `json:"riskScore"`
	Decision       string    `json:"decision"`
	Reasons        []string  `json:"reasons"`
}

// RiskSnapshot ranks pending orders by credit risk.
type RiskSnapshot struct {
	GeneratedAt      time.Time   `json:"generatedAt"`
	OrderCount       int         `json:"orderCount"`
	BlockCount       int         `json:"blockCount"`
	ReviewCount      int         `json:"reviewCount"`
	AutoApproveCount int         `json:"autoApproveCount"`
	Orders           []OrderRisk `json:"orders"`
}

// Data quality severities.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
)

// QualityCheck is one catalog/consistency rule result.
type QualityCheck struct {
	Name        string   `json:"name"`
	Severity    string   `json:"severity"`
	Blocking    bool     `json:"blocking"`
	Count       int      `json:"count"`
	Sample      []string `json:"sample"`
	Explanation string   `json:"explanation"`
}

// QualitySnapshot is the catalog health report.
type QualitySnapshot struct {
	GeneratedAt   time.Time      `json:"generatedAt"`
	HealthScore   int            `json:"healthScore"`
	BlockingCount int            `json:"blockingCount"`
	Checks        []QualityCheck `json:"checks"`
}

// CommandCenterSummary is the cross-cutting roll-up of all sections.
type CommandCenterSummary struct {
	OpenOrders           int     `json:"openOrders"`
	LowCoverageOrders    int     `json:"lowCoverageOrders"`
	ShortageQty          float64 `json:"shortageQty"`
	ActivePickers        int     `json:"activePickers"`
	HotCustomers         int     `json:"hotCustomers"`
	OrdersNeedingReview  int     `json:"ordersNeedingReview"`
	OrdersBlocked        int     `json:"ordersBlocked"`
	SubstitutionNeeds    int     `json:"substitutionNeeds"`
	BlockedQualityChecks int     `json:"blockedQualityChecks"`
}

// SectionError reports one failed section of a composed snapshot.
// Successful sections are still returned alongside it.
type SectionError struct {
	Section string `json:"section"`
	Message string `json:"message"`
}

// CommandCenterSnapshot composes every engine's output. Sections that
// failed are nil, with a matching entry in Errors.
type CommandCenterSnapshot struct {
	GeneratedAt   time.Time              `json:"generatedAt"`
	Summary       CommandCenterSummary   `json:"summary"`
	ATP           *ATPSnapshot           `json:"atp,omitempty"`
	Orchestration *OrchestrationSnapshot `json:"orchestration,omitempty"`
	Substitutions *SubstitutionSnapshot  `json:"substitutions,omitempty"`
	Intent        *IntentSnapshot        `json:"customerIntent,omitempty"`
	Risk          *RiskSnapshot          `json:"risk,omitempty"`
	DataQuality   *QualitySnapshot       `json:"dataQuality,omitempty"`
	Errors        []SectionError         `json:"errors,omitempty"`
}
