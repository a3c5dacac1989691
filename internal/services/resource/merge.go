package resource

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"hospital-ops/internal/models"
)

const dateLayout = "2006-01-02"

// MaxQuantity bounds the magnitude of a single update. Larger values are
// clamped before they reach the arithmetic.
const MaxQuantity = 1_000_000

// mergeResult describes the outcome of one upsert.
type mergeResult struct {
	items   []models.ResourceItem
	item    models.ResourceItem
	created bool
}

// merge applies u to items. A new row is prepended; an existing row for
// the same (hospital, label) is updated in place.
func merge(items []models.ResourceItem, u models.ResourceUpdate, th Thresholds, now time.Time, newID func() string) mergeResult {
	label := Label(u.ResourceType)
	quantity := min(max(u.Quantity, -MaxQuantity), MaxQuantity)

	idx := -1
	for i, it := range items {
		if it.Hospital == u.Hospital && it.Resource == label {
			idx = i
			break
		}
	}

	if idx < 0 {
		item := models.ResourceItem{
			ID:          newID(),
			Hospital:    u.Hospital,
			Resource:    label,
			CreatedDate: now.Format(dateLayout),
			Note:        u.Note,
		}
		if u.IsRequest() {
			newRequestRow(&item, -quantity)
		} else {
			newSupplyRow(&item, quantity, th)
		}
		item.DueDate = dueDate(item.Priority, now)

		out := make([]models.ResourceItem, 0, len(items)+1)
		out = append(out, item)
		out = append(out, items...)
		return mergeResult{items: out, item: item, created: true}
	}

	out := make([]models.ResourceItem, len(items))
	copy(out, items)
	item := out[idx]
	if u.IsRequest() {
		applyRequest(&item, -quantity, th)
	} else {
		applySupply(&item, quantity, th)
	}
	if u.Note != "" {
		item.Note = u.Note
	}
	item.DueDate = dueDate(item.Priority, now)
	out[idx] = item
	return mergeResult{items: out, item: item}
}

func newRequestRow(item *models.ResourceItem, requested int) {
	item.Available = 0
	item.Capacity = requested
	item.Progress = 0
	item.Status = models.StatusUrgent
	item.Priority = models.ResourcePriorityUrgent
	item.Total = fmt.Sprintf("0/%d (Requested)", requested)
}

func newSupplyRow(item *models.ResourceItem, quantity int, th Thresholds) {
	item.Available = quantity
	item.Capacity = max(quantity, th.CapacityFloor)
	item.Progress = progress(item.Available, item.Capacity)
	item.Status, item.Priority = supplyStatus(item.Available, item.Capacity, th)
	item.Total = fmt.Sprintf("%d/%d", item.Available, item.Capacity)
}

// applyRequest widens capacity to the requested amount and annotates the
// outstanding need.
func applyRequest(item *models.ResourceItem, requested int, th Thresholds) {
	available := currentAvailable(*item)
	item.Available = available
	item.Capacity = max(item.Capacity, requested)
	item.Progress = progress(available, item.Capacity)

	switch {
	case available < requested:
		item.Status = models.StatusUrgent
		item.Priority = models.ResourcePriorityUrgent
	case float64(available) < float64(item.Capacity)*th.HalfCapacityRatio:
		item.Status = models.StatusInProgress
		item.Priority = models.ResourcePriorityHigh
	default:
		item.Status = models.StatusAvailable
		item.Priority = models.ResourcePriorityHigh
	}

	if need := requested - available; need > 0 {
		item.Total = fmt.Sprintf("%d/%d (%d needed)", available, item.Capacity, need)
	} else {
		item.Total = fmt.Sprintf("%d/%d", available, item.Capacity)
	}
}

func applySupply(item *models.ResourceItem, quantity int, th Thresholds) {
	available := max(addSaturating(currentAvailable(*item), quantity), 0)
	item.Available = available
	item.Capacity = max(item.Capacity, available)
	item.Progress = progress(available, item.Capacity)
	item.Status, item.Priority = supplyStatus(available, item.Capacity, th)
	item.Total = fmt.Sprintf("%d/%d", available, item.Capacity)
}

// addSaturating adds a and b, pinning the result at the int bounds instead
// of wrapping.
func addSaturating(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}

func supplyStatus(available, capacity int, th Thresholds) (models.ResourceStatus, models.ResourcePriority) {
	switch {
	case available <= th.UrgentAvailable:
		return models.StatusUrgent, models.ResourcePriorityUrgent
	case float64(available) < float64(capacity)*th.HalfCapacityRatio:
		return models.StatusInProgress, models.ResourcePriorityHigh
	default:
		return models.StatusAvailable, models.ResourcePriorityMedium
	}
}

// currentAvailable reads the numeric prefix of Total, so "4/10 (2 needed)"
// yields 4. Rows whose Total has no numeric prefix fall back to Available.
func currentAvailable(item models.ResourceItem) int {
	s := strings.TrimSpace(item.Total)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return item.Available
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return item.Available
	}
	return n
}

// progress is available as a percentage of capacity, clamped to 0..100.
func progress(available, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	p := int(math.Round(float64(available) / float64(capacity) * 100))
	return min(max(p, 0), 100)
}

// dueDate gives urgent rows one day and everything else a week.
func dueDate(p models.ResourcePriority, now time.Time) string {
	if p == models.ResourcePriorityUrgent {
		return now.AddDate(0, 0, 1).Format(dateLayout)
	}
	return now.AddDate(0, 0, 7).Format(dateLayout)
}
