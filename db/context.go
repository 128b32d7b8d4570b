package db

// A ReaderContext addresses entities in the store.  When EntityID is empty the context addresses a
// collection (multi-entity query); when present it addresses one entity.  UserID, FlowName and
// FlowRunID are the flow routing keys; when any of them is missing the resolver falls back to the
// per-cluster flow-mapping index, which requires ClusterID and AppID.
type ReaderContext struct {
	ClusterID  string
	UserID     string
	FlowName   string
	FlowRunID  string
	AppID      string
	EntityType string
	EntityID   string
}
