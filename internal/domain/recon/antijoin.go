package recon

import (
	"fmt"

	"github.com/cobmax/batimento/internal/domain/dataset"
)

// AntiJoin returns the rows of a whose key has no match among b's keys.
// Membership is a hash-set lookup, O(|a|+|b|); keys are compared as opaque
// strings, so both sides must have been trimmed by treatment already.
//
// The right-hand side must be deduplicated: a duplicate key in b means the
// caller skipped Dedupe, and the authoritative-row choice that dedup makes
// would be lost here. Duplicates are therefore a hard ErrKeyCollision, not a
// warning.
func AntiJoin(a, b *dataset.Dataset, keyA, keyB string) (*dataset.Dataset, error) {
	if keyA == "" || keyB == "" {
		return nil, fmt.Errorf("%w: anti-join requires key columns for both sides", dataset.ErrConfiguration)
	}

	keys, dupes := b.KeySet(keyB)
	if len(dupes) > 0 {
		return nil, fmt.Errorf("%w: right side of anti-join has %d duplicate %s values (first: %q); deduplicate before joining",
			dataset.ErrKeyCollision, len(dupes), keyB, dupes[0])
	}

	out := a.Empty()
	for _, row := range a.Rows {
		if _, ok := keys[row.Get(keyA)]; !ok {
			out.Append(row)
		}
	}
	return out, nil
}
