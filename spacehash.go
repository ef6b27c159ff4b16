package physics

import "math"

// SpaceHash is a spatial hash broad phase. It works best when the shapes are of similar
// size and celldim is close to that size.
type SpaceHash struct {
	*SpatialIndex

	numCells int
	celldim  float64

	table     []*SpaceHashBin
	handles   []*Handle
	handleSet map[HashValue]*Handle

	pooledBins *SpaceHashBin

	stamp uint
}

func NewSpaceHash(celldim float64, numCells int, bbfunc SpatialIndexBB, staticIndex *SpatialIndex) *SpatialIndex {
	hash := &SpaceHash{
		celldim:   celldim,
		handleSet: map[HashValue]*Handle{},
		stamp:     1,
	}
	hash.SpatialIndex = NewSpatialIndex(hash, bbfunc, staticIndex)
	hash.resizeTable(numCells)
	return hash.SpatialIndex
}

// Handle wraps an object stored in the hash. The stamp stops an object from being reported twice in a query.
type Handle struct {
	obj   *Shape
	stamp uint
}

type SpaceHashBin struct {
	handle *Handle
	next   *SpaceHashBin
}

func (bin *SpaceHashBin) containsHandle(hand *Handle) bool {
	for item := bin; item != nil; item = item.next {
		if item.handle == hand {
			return true
		}
	}

	return false
}

func hashFunc(x, y, n HashValue) HashValue {
	return (x*1640531513 ^ y*2654435789) % n
}

var primes = []int{
	5, 13, 23, 47, 97, 193, 389, 769, 1543, 3079, 6151, 12289, 24593, 49157,
	98317, 196613, 393241, 786433, 1572869, 3145739, 6291469, 12582917,
}

func nextPrime(n int) int {
	for _, p := range primes {
		if p >= n {
			return p
		}
	}
	return primes[len(primes)-1]
}

func (hash *SpaceHash) resizeTable(numCells int) {
	hash.clearTable()
	hash.numCells = nextPrime(numCells)
	hash.table = make([]*SpaceHashBin, hash.numCells)
}

// Resize changes the cell size and count and rehashes everything.
func (hash *SpaceHash) Resize(celldim float64, numCells int) {
	hash.resizeTable(numCells)
	hash.celldim = celldim
	hash.Reindex()
}

// cellRange is the range of cells covered by bb.
func (hash *SpaceHash) cellRange(bb BB) (l, r, b, t int) {
	dim := hash.celldim
	return int(math.Floor(bb.L / dim)), int(math.Floor(bb.R / dim)),
		int(math.Floor(bb.B / dim)), int(math.Floor(bb.T / dim))
}

func (hash *SpaceHash) cellIndex(i, j int) int {
	return int(hashFunc(HashValue(i), HashValue(j), HashValue(hash.numCells)))
}

func (hash *SpaceHash) hashHandle(hand *Handle, bb BB) {
	l, r, b, t := hash.cellRange(bb)

	for i := l; i <= r; i++ {
		for j := b; j <= t; j++ {
			idx := hash.cellIndex(i, j)
			bin := hash.table[idx]

			// Don't add an object twice to the same cell.
			if bin.containsHandle(hand) {
				continue
			}

			newBin := hash.getEmptyBin()
			newBin.handle = hand
			newBin.next = bin
			hash.table[idx] = newBin
		}
	}
}

func (hash *SpaceHash) Count() int {
	return len(hash.handles)
}

func (hash *SpaceHash) Each(f SpatialIndexIterator) {
	for _, hand := range hash.handles {
		f(hand.obj)
	}
}

func (hash *SpaceHash) Contains(obj *Shape, hashId HashValue) bool {
	hand, ok := hash.handleSet[hashId]
	return ok && hand.obj == obj
}

func (hash *SpaceHash) Insert(obj *Shape, hashId HashValue) {
	hand := &Handle{obj: obj}
	hash.handleSet[hashId] = hand
	hash.handles = append(hash.handles, hand)
	hash.hashHandle(hand, hash.bbfunc(obj))
}

// Remove orphans the handle, the bins that still point at it are dropped lazily.
func (hash *SpaceHash) Remove(obj *Shape, hashId HashValue) {
	hand, ok := hash.handleSet[hashId]
	if !ok {
		return
	}
	delete(hash.handleSet, hashId)
	for i, h := range hash.handles {
		if h == hand {
			hash.handles = append(hash.handles[:i], hash.handles[i+1:]...)
			break
		}
	}
	hand.obj = nil
}

func (hash *SpaceHash) Reindex() {
	hash.clearTable()
	for _, hand := range hash.handles {
		hash.hashHandle(hand, hash.bbfunc(hand.obj))
	}
}

func (hash *SpaceHash) ReindexObject(obj *Shape, hashId HashValue) {
	if _, ok := hash.handleSet[hashId]; ok {
		hash.Remove(obj, hashId)
		hash.Insert(obj, hashId)
	}
}

func (hash *SpaceHash) ReindexQuery(f SpatialIndexQuery) {
	hash.clearTable()

	// Hash each object and query the cells it lands in against the objects hashed before it.
	for _, hand := range hash.handles {
		obj := hand.obj
		l, r, b, t := hash.cellRange(hash.bbfunc(obj))

		for i := l; i <= r; i++ {
			for j := b; j <= t; j++ {
				idx := hash.cellIndex(i, j)
				bin := hash.table[idx]

				if bin.containsHandle(hand) {
					continue
				}

				hash.queryBin(obj, idx, f)

				newBin := hash.getEmptyBin()
				newBin.handle = hand
				newBin.next = hash.table[idx]
				hash.table[idx] = newBin
			}
		}

		// Increment the stamp for each object hashed.
		hash.stamp++
	}
}

func (hash *SpaceHash) Query(obj *Shape, bb BB, f SpatialIndexQuery) {
	l, r, b, t := hash.cellRange(bb)

	for i := l; i <= r; i++ {
		for j := b; j <= t; j++ {
			hash.queryBin(obj, hash.cellIndex(i, j), f)
		}
	}

	hash.stamp++
}

func (hash *SpaceHash) queryBin(obj *Shape, idx int, f SpatialIndexQuery) {
	hash.removeOrphanedHandles(idx)

	for bin := hash.table[idx]; bin != nil; bin = bin.next {
		hand := bin.handle
		other := hand.obj

		if hand.stamp == hash.stamp || obj == other {
			continue
		}
		f(obj, other)
		hand.stamp = hash.stamp
	}
}

// removeOrphanedHandles unlinks the bins of removed objects from a cell.
func (hash *SpaceHash) removeOrphanedHandles(idx int) {
	binPtr := &hash.table[idx]
	for bin := *binPtr; bin != nil; bin = *binPtr {
		if bin.handle.obj == nil {
			*binPtr = bin.next
			hash.recycleBin(bin)
			continue
		}
		binPtr = &bin.next
	}
}

func (hash *SpaceHash) recycleBin(bin *SpaceHashBin) {
	bin.handle = nil
	bin.next = hash.pooledBins
	hash.pooledBins = bin
}

func (hash *SpaceHash) clearTableCell(idx int) {
	bin := hash.table[idx]
	for bin != nil {
		next := bin.next
		hash.recycleBin(bin)
		bin = next
	}

	hash.table[idx] = nil
}

func (hash *SpaceHash) clearTable() {
	for i := range hash.table {
		hash.clearTableCell(i)
	}
}

func (hash *SpaceHash) getEmptyBin() *SpaceHashBin {
	bin := hash.pooledBins

	if bin != nil {
		hash.pooledBins = bin.next
		return bin
	}

	// pool is exhausted, make more
	for i := 0; i < 256; i++ {
		hash.recycleBin(&SpaceHashBin{})
	}
	return &SpaceHashBin{}
}
