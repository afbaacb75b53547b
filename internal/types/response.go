package types

// ResponseMeta conveys non-blocking response metadata alongside the payload:
// which upstream produced the data, whether it came from cache, and any
// advisory warnings (e.g. degraded provider chains).
type ResponseMeta struct {
	Source      string      `json:"source,omitempty"`
	CacheStatus CacheStatus `json:"cache_status,omitempty"`
	Warnings    []string    `json:"warnings,omitempty"`
}
