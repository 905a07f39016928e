package cluster

// Empty marks an unused slot in the cluster light table.
const Empty int32 = -1

// Table is the flattened per-cluster light index table uploaded to the GPU.
//
// Cluster c owns Indices[c*Capacity : (c+1)*Capacity]. The first Counts[c]
// entries of that slab are light indices in submission order; the rest are
// Empty.
type Table struct {
	Indices []int32
	Counts  []int32

	capacity   int
	overflowed int
}

func NewTable(clusters, capacity int) *Table {
	t := &Table{
		Indices:  make([]int32, clusters*capacity),
		Counts:   make([]int32, clusters),
		capacity: capacity,
	}
	t.Reset()
	return t
}

func (t *Table) Capacity() int { return t.capacity }

func (t *Table) ClusterCount() int { return len(t.Counts) }

// Reset empties every cluster.
func (t *Table) Reset() {
	for i := range t.Indices {
		t.Indices[i] = Empty
	}
	for i := range t.Counts {
		t.Counts[i] = 0
	}
	t.overflowed = 0
}

// Add appends light to cluster c. A full cluster drops the light and
// returns false.
func (t *Table) Add(c int, light int32) bool {
	n := int(t.Counts[c])
	if n >= t.capacity {
		t.overflowed++
		return false
	}
	t.Indices[c*t.capacity+n] = light
	t.Counts[c] = int32(n + 1)
	return true
}

// Lights returns the valid prefix of cluster c's slab. The slice aliases the
// table and is only valid until the next Reset.
func (t *Table) Lights(c int) []int32 {
	start := c * t.capacity
	return t.Indices[start : start+int(t.Counts[c])]
}

func (t *Table) Count(c int) int { return int(t.Counts[c]) }

// Overflowed is the number of (cluster, light) pairs dropped since Reset.
func (t *Table) Overflowed() int { return t.overflowed }
