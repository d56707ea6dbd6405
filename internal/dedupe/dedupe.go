package dedupe

// Package dedupe provides shared singleflight groups used to deduplicate
// concurrent expensive requests. Using a centralized singleflight.Group
// ensures that only one job runs for a given key while other callers wait
// for the result.

import "golang.org/x/sync/singleflight"

// SuggestGroup deduplicates AI action-suggestion requests keyed by battle
// ID, player ID and turn (e.g. "42:p1:7"). Search over the same position
// always yields the same answer, so concurrent callers can share one run.
var SuggestGroup singleflight.Group
