package service

import "github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"

// ResourcePool tracks per-assignee load counters for one allocation cycle.
// It owns its copy of the roster; counters are the only shared mutable state
// between allocator picks.
type ResourcePool struct {
	auxCapacity int
	order       []string
	items       map[string]*models.Assignee
}

// NewResourcePool copies the roster snapshot into an owned pool.
// auxCapacity is the weekly coverage capacity assumed for auxiliary staff.
func NewResourcePool(roster []models.Assignee, auxCapacity int) *ResourcePool {
	pool := &ResourcePool{
		auxCapacity: auxCapacity,
		order:       make([]string, 0, len(roster)),
		items:       make(map[string]*models.Assignee, len(roster)),
	}
	for i := range roster {
		a := roster[i]
		if _, exists := pool.items[a.ID]; exists {
			continue
		}
		pool.order = append(pool.order, a.ID)
		pool.items[a.ID] = &a
	}
	return pool
}

func (p *ResourcePool) capacity(a *models.Assignee) int {
	if a.Role == models.AssigneeRoleAuxiliary {
		return p.auxCapacity
	}
	return a.WaitingQuota
}

// Remaining returns the coverage periods left for the assignee, zero for
// unknown identifiers.
func (p *ResourcePool) Remaining(id string) int {
	a, ok := p.items[id]
	if !ok {
		return 0
	}
	return p.capacity(a) - a.CurrentLoad
}

// ListEligible returns copies of assignees that are available and still have
// positive remaining capacity, in roster order.
func (p *ResourcePool) ListEligible() []models.Assignee {
	eligible := make([]models.Assignee, 0, len(p.order))
	for _, id := range p.order {
		a := p.items[id]
		if !a.Available || p.Remaining(id) <= 0 {
			continue
		}
		eligible = append(eligible, *a)
	}
	return eligible
}

// RecordAssignment increments the assignee's load by one period. Absent
// identifiers are a no-op; callers only pass eligible ids.
func (p *ResourcePool) RecordAssignment(id string) {
	if a, ok := p.items[id]; ok {
		a.CurrentLoad++
	}
}

// IsOverCapacity reports whether the assignee's load exceeds their combined
// basic and standby quota. Over-assignment can pre-exist from other flows;
// it is monitored, not rejected.
func (p *ResourcePool) IsOverCapacity(id string) bool {
	a, ok := p.items[id]
	if !ok {
		return false
	}
	if a.Role == models.AssigneeRoleAuxiliary {
		return a.CurrentLoad > p.auxCapacity
	}
	return a.CurrentLoad > a.BasicQuota+a.WaitingQuota
}

// Snapshot returns copies of every assignee with their current counters, in
// roster order.
func (p *ResourcePool) Snapshot() []models.Assignee {
	out := make([]models.Assignee, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, *p.items[id])
	}
	return out
}
