package settlement

// The ledger's text memo holds at most 28 bytes. The fixed prefix
// takes 4, leaving 24 for the intent id.
const (
	memoPrefix   = "AP2:"
	maxMemoBytes = 28
)

// CorrelationMemo returns the text memo attached to a settlement for
// the given intent id. Truncation is deterministic: status lookups
// recompute the identical memo from the same id.
func CorrelationMemo(intentID string) string {
	memo := memoPrefix + intentID
	if len(memo) > maxMemoBytes {
		memo = memo[:maxMemoBytes]
	}
	return memo
}
