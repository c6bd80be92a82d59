package astar

import "github.com/musaraza08/ant-colony-optimisation/internal/colony"

// queueItem is one open-set entry. seq is the insertion sequence number,
// used to break f-cost ties deterministically (first inserted wins), which
// keeps FindPath reproducible for a fixed input.
type queueItem struct {
	pos   colony.Position
	g     float64
	f     float64
	seq   int
	index int
}

type priorityQueue []*queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*queueItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}
