package application

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wms-platform/intelligence-service/internal/domain"
)

const unassignedPicker = "unassigned"

// WaveParams holds the wave-formation capacity and estimation tuning.
type WaveParams struct {
	MaxOrdersPerWave   int
	MaxLinesPerWave    int
	MinutesPerLine     float64
	MinutesPerShortage float64
	MinWaveMinutes     int
	LinesPerPicker     float64
	MinPickers         int
	MaxPickers         int
}

// DefaultWaveParams returns the production wave parameters.
func DefaultWaveParams() WaveParams {
	return WaveParams{
		MaxOrdersPerWave:   8,
		MaxLinesPerWave:    70,
		MinutesPerLine:     1.25,
		MinutesPerShortage: 0.35,
		MinWaveMinutes:     10,
		LinesPerPicker:     35,
		MinPickers:         1,
		MaxPickers:         4,
	}
}

// OrchestrationPlanner turns coverage output and workflow state into
// queue counts, picker workload and batched pick waves.
type OrchestrationPlanner struct {
	atp      *ATPEngine
	workflow domain.WorkflowReader
	params   WaveParams
	now      func() time.Time
}

// NewOrchestrationPlanner creates a new OrchestrationPlanner
func NewOrchestrationPlanner(atp *ATPEngine, workflow domain.WorkflowReader, params WaveParams) *OrchestrationPlanner {
	return &OrchestrationPlanner{
		atp:      atp,
		workflow: workflow,
		params:   params,
		now:      time.Now,
	}
}

// Snapshot computes a fresh ATP pass and plans from it.
func (p *OrchestrationPlanner) Snapshot(ctx context.Context, query OrderQuery) (*OrchestrationSnapshot, error) {
	atpSnapshot, err := p.atp.Snapshot(ctx, query)
	if err != nil {
		return nil, err
	}
	return p.PlanFromATP(ctx, atpSnapshot)
}

// PlanFromATP plans using an already-computed coverage snapshot, so an
// aggregating caller does not pay for the ATP pass twice.
func (p *OrchestrationPlanner) PlanFromATP(ctx context.Context, atpSnapshot *ATPSnapshot) (*OrchestrationSnapshot, error) {
	orderIDs := make([]string, 0, len(atpSnapshot.Orders))
	for _, order := range atpSnapshot.Orders {
		orderIDs = append(orderIDs, order.OrderID)
	}

	states, err := p.workflow.StatesByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow states: %w", err)
	}

	snapshot := &OrchestrationSnapshot{
		GeneratedAt:     p.now().UTC(),
		QueueByStage:    buildQueueCounts(atpSnapshot.Orders, states),
		PickerWorkloads: buildPickerWorkloads(atpSnapshot.Orders, states),
		Waves:           p.buildWaves(atpSnapshot.Orders, states),
	}

	return snapshot, nil
}

// stageFor resolves an order's workflow stage, defaulting to pending
// when no state was ever recorded.
func stageFor(orderID string, states map[string]domain.WorkflowState) domain.WorkflowStage {
	if state, ok := states[orderID]; ok {
		return state.Stage
	}
	return domain.StagePending
}

// buildQueueCounts counts orders per stage over the closed stage set,
// so every stage appears even with a zero count.
func buildQueueCounts(orders []ATPOrder, states map[string]domain.WorkflowState) []StageCount {
	counts := make(map[string]int)
	for _, order := range orders {
		counts[stageFor(order.OrderID, states).String()]++
	}

	result := make([]StageCount, 0, len(domain.Stages()))
	for _, stage := range domain.Stages() {
		result = append(result, StageCount{Stage: stage, Count: counts[stage.String()]})
	}
	return result
}

// buildPickerWorkloads groups active orders by assigned picker and
// aggregates their open work.
func buildPickerWorkloads(orders []ATPOrder, states map[string]domain.WorkflowState) []PickerWorkload {
	byPicker := make(map[string]*PickerWorkload)

	for _, order := range orders {
		state, hasState := states[order.OrderID]
		if !hasState || !state.Stage.IsActive() {
			continue
		}

		pickerID := state.PickerID
		if pickerID == "" {
			pickerID = unassignedPicker
		}

		workload, ok := byPicker[pickerID]
		if !ok {
			workload = &PickerWorkload{PickerID: pickerID}
			byPicker[pickerID] = workload
		}

		workload.ActiveOrders++
		for _, line := range order.Lines {
			open := line.RemainingQty - state.PickedFor(line.ProductCode)
			if open > 0 {
				workload.OpenLines++
				workload.OpenQty += open
			}
		}
		if state.LastActionAt != nil {
			if workload.LastActionAt == nil || state.LastActionAt.After(*workload.LastActionAt) {
				workload.LastActionAt = state.LastActionAt
			}
		}
	}

	result := make([]PickerWorkload, 0, len(byPicker))
	for _, workload := range byPicker {
		result = append(result, *workload)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].ActiveOrders != result[j].ActiveOrders {
			return result[i].ActiveOrders > result[j].ActiveOrders
		}
		if result[i].OpenLines != result[j].OpenLines {
			return result[i].OpenLines > result[j].OpenLines
		}
		return result[i].PickerID < result[j].PickerID
	})

	return result
}

// buildWaves batches non-dispatched orders into capacity-bounded pick
// waves, per series, best-covered orders first.
func (p *OrchestrationPlanner) buildWaves(orders []ATPOrder, states map[string]domain.WorkflowState) []PickWave {
	bySeries := make(map[string][]ATPOrder)
	for _, order := range orders {
		if stageFor(order.OrderID, states).IsTerminal() {
			continue
		}
		bySeries[order.Series] = append(bySeries[order.Series], order)
	}

	seriesKeys := make([]string, 0, len(bySeries))
	for series := range bySeries {
		seriesKeys = append(seriesKeys, series)
	}
	sort.Strings(seriesKeys)

	waves := make([]PickWave, 0)
	for _, series := range seriesKeys {
		seriesOrders := bySeries[series]

		sort.SliceStable(seriesOrders, func(i, j int) bool {
			ri, rj := seriesOrders[i].CoverageStatus.Rank(), seriesOrders[j].CoverageStatus.Rank()
			if ri != rj {
				return ri > rj
			}
			return seriesOrders[i].PriorityScore > seriesOrders[j].PriorityScore
		})

		waves = append(waves, p.batchSeries(series, seriesOrders)...)
	}

	return waves
}

func (p *OrchestrationPlanner) batchSeries(series string, orders []ATPOrder) []PickWave {
	waves := make([]PickWave, 0)
	var current *PickWave

	for _, order := range orders {
		lineCount := len(order.Lines)

		exceeds := current != nil &&
			(current.OrderCount+1 > p.params.MaxOrdersPerWave ||
				current.LineCount+lineCount > p.params.MaxLinesPerWave)
		if current == nil || exceeds {
			waves = append(waves, PickWave{Series: series, WaveNumber: len(waves) + 1})
			current = &waves[len(waves)-1]
		}

		current.OrderIDs = append(current.OrderIDs, order.OrderID)
		current.OrderCount++
		current.LineCount += lineCount
		current.TotalQty += order.RemainingQty
		current.ShortageQty += order.ShortageQty
	}

	for i := range waves {
		waves[i].EstimatedMinutes = p.estimateMinutes(waves[i])
		waves[i].RecommendedPickers = p.recommendPickers(waves[i])
	}

	return waves
}

func (p *OrchestrationPlanner) estimateMinutes(wave PickWave) int {
	estimated := math.Round(float64(wave.LineCount)*p.params.MinutesPerLine + wave.ShortageQty*p.params.MinutesPerShortage)
	if estimated < float64(p.params.MinWaveMinutes) {
		return p.params.MinWaveMinutes
	}
	return int(estimated)
}

func (p *OrchestrationPlanner) recommendPickers(wave PickWave) int {
	pickers := int(math.Ceil(float64(wave.LineCount) / p.params.LinesPerPicker))
	if pickers < p.params.MinPickers {
		return p.params.MinPickers
	}
	if pickers > p.params.MaxPickers {
		return p.params.MaxPickers
	}
	return pickers
}
