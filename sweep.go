package physics

import "sort"

// SweepIndex is a sort and sweep broad phase along the x axis. Objects are kept sorted by the
// left edge of their boxes, each one is only compared against the objects that start before it ends.
type SweepIndex struct {
	*SpatialIndex

	objects []*Shape
	ids     []HashValue
	bbs     []BB
}

func NewSweepIndex(bbfunc SpatialIndexBB, staticIndex *SpatialIndex) *SpatialIndex {
	sweep := &SweepIndex{}
	sweep.SpatialIndex = NewSpatialIndex(sweep, bbfunc, staticIndex)
	return sweep.SpatialIndex
}

func (sweep *SweepIndex) Count() int {
	return len(sweep.objects)
}

func (sweep *SweepIndex) Each(f SpatialIndexIterator) {
	for _, obj := range sweep.objects {
		f(obj)
	}
}

func (sweep *SweepIndex) find(hashId HashValue) int {
	for i, id := range sweep.ids {
		if id == hashId {
			return i
		}
	}
	return -1
}

func (sweep *SweepIndex) Contains(obj *Shape, hashId HashValue) bool {
	i := sweep.find(hashId)
	return i >= 0 && sweep.objects[i] == obj
}

func (sweep *SweepIndex) Insert(obj *Shape, hashId HashValue) {
	sweep.objects = append(sweep.objects, obj)
	sweep.ids = append(sweep.ids, hashId)
	sweep.bbs = append(sweep.bbs, sweep.bbfunc(obj))
	sweep.Reindex()
}

func (sweep *SweepIndex) Remove(obj *Shape, hashId HashValue) {
	i := sweep.find(hashId)
	if i < 0 {
		return
	}
	sweep.objects = append(sweep.objects[:i], sweep.objects[i+1:]...)
	sweep.ids = append(sweep.ids[:i], sweep.ids[i+1:]...)
	sweep.bbs = append(sweep.bbs[:i], sweep.bbs[i+1:]...)
}

// Reindex refreshes the cached boxes and restores the sort order.
func (sweep *SweepIndex) Reindex() {
	for i, obj := range sweep.objects {
		sweep.bbs[i] = sweep.bbfunc(obj)
	}
	sort.Sort(sweepOrder{sweep})
}

func (sweep *SweepIndex) ReindexObject(obj *Shape, hashId HashValue) {
	i := sweep.find(hashId)
	if i < 0 {
		return
	}
	sweep.bbs[i] = sweep.bbfunc(obj)
	sort.Sort(sweepOrder{sweep})
}

func (sweep *SweepIndex) ReindexQuery(f SpatialIndexQuery) {
	sweep.Reindex()

	count := len(sweep.objects)
	for i := 0; i < count; i++ {
		bb := sweep.bbs[i]
		for j := i + 1; j < count && sweep.bbs[j].L <= bb.R; j++ {
			if bb.Intersects(sweep.bbs[j]) {
				f(sweep.objects[i], sweep.objects[j])
			}
		}
	}
}

func (sweep *SweepIndex) Query(obj *Shape, bb BB, f SpatialIndexQuery) {
	for i, other := range sweep.objects {
		if sweep.bbs[i].L > bb.R {
			// Sorted, nothing further can overlap.
			return
		}
		if bb.Intersects(sweep.bbs[i]) {
			f(obj, other)
		}
	}
}

// sweepOrder sorts by left edge, ties by id so the order does not depend on insertion history.
type sweepOrder struct {
	*SweepIndex
}

func (s sweepOrder) Len() int {
	return len(s.objects)
}

func (s sweepOrder) Less(i, j int) bool {
	if s.bbs[i].L != s.bbs[j].L {
		return s.bbs[i].L < s.bbs[j].L
	}
	return s.ids[i] < s.ids[j]
}

func (s sweepOrder) Swap(i, j int) {
	s.objects[i], s.objects[j] = s.objects[j], s.objects[i]
	s.ids[i], s.ids[j] = s.ids[j], s.ids[i]
	s.bbs[i], s.bbs[j] = s.bbs[j], s.bbs[i]
}
