package streamer

// BranchKind identifies one of the sink branches a Streamer can feed.
type BranchKind int

const (
	// BranchRTMP publishes the encoded feed to the configured RTMP address.
	BranchRTMP BranchKind = iota
	// BranchLocal renders the feed in a local preview window.
	BranchLocal

	branchKindCount
)

func (k BranchKind) String() string {
	switch k {
	case BranchRTMP:
		return "rtmp"
	case BranchLocal:
		return "local"
	}
	return "unknown"
}

func (k BranchKind) binName() string {
	return k.String() + "_bin"
}

func (k BranchKind) ghostPadName() string {
	return "tee_" + k.String() + "_src"
}

func (k BranchKind) valid() bool {
	return k >= 0 && k < branchKindCount
}

// branchSet tracks which branches are attached to the tee. The pipeline as
// a whole runs exactly when at least one branch is attached.
type branchSet struct {
	attached [branchKindCount]bool
}

func (b *branchSet) isAttached(k BranchKind) bool {
	return k.valid() && b.attached[k]
}

// attach marks k attached. ok is false when k already was attached, first
// is true when this attach took the set from empty to non-empty.
func (b *branchSet) attach(k BranchKind) (first, ok bool) {
	if !k.valid() || b.attached[k] {
		return false, false
	}
	b.attached[k] = true
	return b.count() == 1, true
}

// detach marks k detached. ok is false when k was not attached, last is
// true when this detach emptied the set.
func (b *branchSet) detach(k BranchKind) (last, ok bool) {
	if !k.valid() || !b.attached[k] {
		return false, false
	}
	b.attached[k] = false
	return b.count() == 0, true
}

func (b *branchSet) count() int {
	n := 0
	for _, a := range b.attached {
		if a {
			n++
		}
	}
	return n
}

func (b *branchSet) running() bool {
	return b.count() > 0
}
