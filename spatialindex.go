package physics

type SpatialIndexBB func(obj *Shape) BB
type SpatialIndexIterator func(obj *Shape)

// SpatialIndexQuery receives candidate pairs. Indexes may report pairs whose bounding boxes
// do not overlap, the callback filters them.
type SpatialIndexQuery func(obj1, obj2 *Shape)

// SpatialIndexer is the broad phase. It is implemented by SweepIndex, SpaceHash and BBTree.
type SpatialIndexer interface {
	Count() int
	Each(f SpatialIndexIterator)
	Contains(obj *Shape, hashId HashValue) bool
	Insert(obj *Shape, hashId HashValue)
	Remove(obj *Shape, hashId HashValue)
	Reindex()
	ReindexObject(obj *Shape, hashId HashValue)
	// ReindexQuery refreshes the index and reports every candidate pair inside it once.
	ReindexQuery(f SpatialIndexQuery)
	// Query reports every object whose box may overlap bb, as f(obj, other).
	Query(obj *Shape, bb BB, f SpatialIndexQuery)
}

func ShapeGetBB(obj *Shape) BB {
	return obj.bb
}

type SpatialIndex struct {
	class                     SpatialIndexer
	bbfunc                    SpatialIndexBB
	staticIndex, dynamicIndex *SpatialIndex
}

func NewSpatialIndex(klass SpatialIndexer, bbfunc SpatialIndexBB, staticIndex *SpatialIndex) *SpatialIndex {
	index := &SpatialIndex{
		class:       klass,
		bbfunc:      bbfunc,
		staticIndex: staticIndex,
	}

	if staticIndex != nil {
		staticIndex.dynamicIndex = index
	}

	return index
}

func (index *SpatialIndex) Class() SpatialIndexer {
	return index.class
}

// CollideStatic reports the pairs between the objects of this index and those of a static index.
func (dynamicIndex *SpatialIndex) CollideStatic(staticIndex *SpatialIndex, f SpatialIndexQuery) {
	if staticIndex != nil && staticIndex.class.Count() > 0 {
		dynamicIndex.class.Each(func(obj *Shape) {
			staticIndex.class.Query(obj, dynamicIndex.bbfunc(obj), f)
		})
	}
}
