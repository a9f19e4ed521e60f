package screenshot

// Metrics counts storage operations. Implementations must be safe for
// concurrent use.
type Metrics interface {
	IncStored(tenantType string)
	IncDedupHit()
	IncViews()
	IncDeleted()
	IncIndexWriteFailure(index string)
}

// NopMetrics implements Metrics without recording anything.
type NopMetrics struct{}

func (NopMetrics) IncStored(string)            {}
func (NopMetrics) IncDedupHit()                {}
func (NopMetrics) IncViews()                   {}
func (NopMetrics) IncDeleted()                 {}
func (NopMetrics) IncIndexWriteFailure(string) {}
