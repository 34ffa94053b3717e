package models

import "fmt"

// ReactionKind is one of the seven mutually exclusive reactions. The zero
// value ReactionNone means "no reaction".
type ReactionKind string

const (
	ReactionNone       ReactionKind = ""
	ReactionLike       ReactionKind = "like"
	ReactionLove       ReactionKind = "love"
	ReactionClap       ReactionKind = "clap"
	ReactionCelebrate  ReactionKind = "celebrate"
	ReactionInsightful ReactionKind = "insightful"
	ReactionSupport    ReactionKind = "support"
	ReactionStar       ReactionKind = "star"
)

// ReactionKinds lists every selectable kind in display order.
var ReactionKinds = []ReactionKind{
	ReactionLike,
	ReactionLove,
	ReactionClap,
	ReactionCelebrate,
	ReactionInsightful,
	ReactionSupport,
	ReactionStar,
}

func (k ReactionKind) Valid() bool {
	for _, known := range ReactionKinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k ReactionKind) String() string {
	if k == ReactionNone {
		return "none"
	}
	return string(k)
}

// ParseReactionKind rejects anything outside the closed set.
func ParseReactionKind(s string) (ReactionKind, error) {
	k := ReactionKind(s)
	if !k.Valid() {
		return ReactionNone, fmt.Errorf("unknown reaction kind %q", s)
	}
	return k, nil
}

// ReactionCounts maps every kind to its count. Kinds without reactions are
// present with zero.
type ReactionCounts map[ReactionKind]int

func NewReactionCounts() ReactionCounts {
	counts := make(ReactionCounts, len(ReactionKinds))
	for _, k := range ReactionKinds {
		counts[k] = 0
	}
	return counts
}

func (c ReactionCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// NextReaction is the toggle transition of the reaction ledger: selecting
// the kind already held clears it, anything else replaces the previous kind.
func NextReaction(prev, requested ReactionKind) ReactionKind {
	if prev == requested {
		return ReactionNone
	}
	return requested
}
