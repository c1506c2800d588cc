package board

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Helarman/crm-frontend-sub004/internal/order"
	"github.com/Helarman/crm-frontend-sub004/internal/orderapi"
	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

const (
	defaultArchiveLimit = 10
	pageWindowSize      = 5
)

// ArchiveFilter selects one page of archived orders. Any field change is a
// reason to refetch; the planner itself is stateless.
type ArchiveFilter struct {
	Page     int
	Limit    int
	Statuses []order.Status
	From     *time.Time
	To       *time.Time
}

// ArchivePage is one fetched, normalized page of historical orders. Archived
// orders never enter the live canonical list.
type ArchivePage struct {
	Orders     []order.Order
	Page       int
	TotalPages int
	PageLinks  []int
}

// ArchivePlanner runs paginated, date-filtered historical queries against the
// order API, independent of the live board state.
type ArchivePlanner struct {
	client orderapi.Client
	logger apt.Logger
}

func NewArchivePlanner(client orderapi.Client, logger apt.Logger) *ArchivePlanner {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &ArchivePlanner{client: client, logger: logger}
}

// Fetch retrieves and normalizes one archive page. Records with missing or
// malformed fields are repaired rather than rejected so one bad record never
// blanks the page.
func (p *ArchivePlanner) Fetch(ctx context.Context, restaurantID string, filter ArchiveFilter) (ArchivePage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultArchiveLimit
	}

	result, err := p.client.Archive(ctx, orderapi.ArchiveQuery{
		RestaurantID: restaurantID,
		Page:         filter.Page,
		Limit:        filter.Limit,
		Statuses:     filter.Statuses,
		StartDate:    filter.From,
		EndDate:      filter.To,
	})
	if err != nil {
		return ArchivePage{}, fmt.Errorf("archive query failed: %w", err)
	}

	orders := make([]order.Order, 0, len(result.Data))
	for _, o := range result.Data {
		orders = append(orders, normalizeArchived(o))
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	// Report the page the server could actually serve, not the raw request;
	// the links below clamp the same way.
	page := filter.Page
	if result.Meta.TotalPages > 0 && page > result.Meta.TotalPages {
		page = result.Meta.TotalPages
	}

	return ArchivePage{
		Orders:     orders,
		Page:       page,
		TotalPages: result.Meta.TotalPages,
		PageLinks:  PageWindow(page, result.Meta.TotalPages),
	}, nil
}

// normalizeArchived repairs a historical record in place of rejecting it:
// a missing id is synthesized, a missing status becomes UNKNOWN, items default
// to an empty list and missing timestamps default to now.
func normalizeArchived(o order.Order) order.Order {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = order.StatusUnknown
	}
	if o.Items == nil {
		o.Items = []order.Item{}
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = now
	}
	return o
}

// PageWindow returns at most five page links, clamped at both ends and
// centered on current when possible.
func PageWindow(current, total int) []int {
	if total < 1 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	start := current - pageWindowSize/2
	if start < 1 {
		start = 1
	}
	end := start + pageWindowSize - 1
	if end > total {
		end = total
		start = end - pageWindowSize + 1
		if start < 1 {
			start = 1
		}
	}

	links := make([]int, 0, end-start+1)
	for page := start; page <= end; page++ {
		links = append(links, page)
	}
	return links
}
