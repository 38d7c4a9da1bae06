package domain

type RemoteStatus string

const (
	RemoteQueued     RemoteStatus = "queued"
	RemoteProcessing RemoteStatus = "processing"
	RemoteReady      RemoteStatus = "ready"
	RemoteFailed     RemoteStatus = "failed"
)

// RemoteDocument is the classification service's view of a submitted document,
// as reported by its status endpoint.
type RemoteDocument struct {
	ID         string       `json:"id"`
	Status     RemoteStatus `json:"status"`
	Category   string       `json:"category,omitempty"`
	Vendor     string       `json:"vendor,omitempty"`
	Confidence float64      `json:"confidence,omitempty"`
	Error      string       `json:"error,omitempty"`
}

type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

type CacheGroup string

const (
	CacheDocuments CacheGroup = "documents"
	CacheMetrics   CacheGroup = "metrics"
	CacheVendors   CacheGroup = "vendors"
	CacheProjects  CacheGroup = "projects"
)
