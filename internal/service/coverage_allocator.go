package service

import (
	"container/heap"
	"sort"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
)

// AllocationStrategy selects how the allocator balances load.
type AllocationStrategy string

const (
	// StrategyRoundRobin sorts the eligible list once and round-robins over
	// it, removing assignees as they exhaust. Fairness degrades gracefully
	// across a single pass instead of being re-balanced per pick.
	StrategyRoundRobin AllocationStrategy = "ROUND_ROBIN"
	// StrategyGreedyMinLoad re-selects the least-loaded assignee for every
	// pick using a min-heap keyed by load.
	StrategyGreedyMinLoad AllocationStrategy = "GREEDY_MIN_LOAD"
)

// allocateCoverage walks the requests in order and pairs each with an
// assignee from the pool. Requests left over once the pool is exhausted come
// back with status PENDING; exhaustion is a normal termination condition.
// The pool's counters are mutated through RecordAssignment as a side effect.
func allocateCoverage(requests []models.CoverageRequest, pool *ResourcePool, strategy AllocationStrategy) []models.Assignment {
	if strategy == StrategyGreedyMinLoad {
		return allocateMinLoad(requests, pool)
	}
	return allocateRoundRobin(requests, pool)
}

func allocateRoundRobin(requests []models.CoverageRequest, pool *ResourcePool) []models.Assignment {
	working := pool.ListEligible()
	// Least-loaded first; among equally loaded people prefer more slack so
	// exhaustion is delayed.
	sort.SliceStable(working, func(i, j int) bool {
		if working[i].CurrentLoad != working[j].CurrentLoad {
			return working[i].CurrentLoad < working[j].CurrentLoad
		}
		return pool.Remaining(working[i].ID) > pool.Remaining(working[j].ID)
	})

	assignments := make([]models.Assignment, 0, len(requests))
	cursor := 0
	for _, req := range requests {
		if len(working) == 0 {
			assignments = append(assignments, pendingAssignment(req))
			continue
		}
		idx := cursor % len(working)
		pick := working[idx]

		assignments = append(assignments, models.Assignment{
			Period:       req.Period,
			ClassLabel:   req.ClassLabel,
			Subject:      req.Subject,
			AssigneeID:   pick.ID,
			AssigneeName: pick.FullName,
			Source:       models.AssignmentSourceAuto,
			Status:       models.AssignmentStatusAssigned,
		})
		pool.RecordAssignment(pick.ID)

		if pool.Remaining(pick.ID) <= 0 {
			// Remove in place; the same index now refers to the next
			// candidate, so the cursor stays put.
			working = append(working[:idx], working[idx+1:]...)
			cursor = idx
		} else {
			cursor = idx + 1
		}
	}
	return assignments
}

func allocateMinLoad(requests []models.CoverageRequest, pool *ResourcePool) []models.Assignment {
	eligible := pool.ListEligible()
	h := make(assigneeHeap, 0, len(eligible))
	for i, a := range eligible {
		h = append(h, &heapEntry{
			id:        a.ID,
			name:      a.FullName,
			load:      a.CurrentLoad,
			remaining: pool.Remaining(a.ID),
			order:     i,
		})
	}
	heap.Init(&h)

	assignments := make([]models.Assignment, 0, len(requests))
	for _, req := range requests {
		if h.Len() == 0 {
			assignments = append(assignments, pendingAssignment(req))
			continue
		}
		entry := heap.Pop(&h).(*heapEntry)

		assignments = append(assignments, models.Assignment{
			Period:       req.Period,
			ClassLabel:   req.ClassLabel,
			Subject:      req.Subject,
			AssigneeID:   entry.id,
			AssigneeName: entry.name,
			Source:       models.AssignmentSourceAuto,
			Status:       models.AssignmentStatusAssigned,
		})
		pool.RecordAssignment(entry.id)

		entry.load++
		entry.remaining = pool.Remaining(entry.id)
		if entry.remaining > 0 {
			heap.Push(&h, entry)
		}
	}
	return assignments
}

func pendingAssignment(req models.CoverageRequest) models.Assignment {
	return models.Assignment{
		Period:     req.Period,
		ClassLabel: req.ClassLabel,
		Subject:    req.Subject,
		Status:     models.AssignmentStatusPending,
	}
}

type heapEntry struct {
	id        string
	name      string
	load      int
	remaining int
	order     int
}

type assigneeHeap []*heapEntry

func (h assigneeHeap) Len() int { return len(h) }

func (h assigneeHeap) Less(i, j int) bool {
	if h[i].load != h[j].load {
		return h[i].load < h[j].load
	}
	if h[i].remaining != h[j].remaining {
		return h[i].remaining > h[j].remaining
	}
	return h[i].order < h[j].order
}

func (h assigneeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *assigneeHeap) Push(x any) { *h = append(*h, x.(*heapEntry)) }

func (h *assigneeHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return entry
}
