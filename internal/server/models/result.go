package models

// UploadResult lists the files that reached both stores.
type UploadResult struct {
	Files       []StoredFile `json:"files"`
	InsertedIDs []string     `json:"inserted_ids"`
	Requested   int          `json:"requested"`
}

// DeleteRequest pairs the two identifiers of one asset.
type DeleteRequest struct {
	PublicID string `json:"public_id"`
	MetaID   string `json:"_id"`
}

// Outcome classifies what happened to a single record across both stores.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailure Outcome = "failure"
)

// ItemResult is the per-record result of a two-store deletion.
type ItemResult struct {
	Request     DeleteRequest `json:"request"`
	BlobDeleted bool          `json:"blob_deleted"`
	MetaDeleted bool          `json:"meta_deleted"`
}

// Outcome derives the classification from the two flags.
func (r ItemResult) Outcome() Outcome {
	switch {
	case r.BlobDeleted && r.MetaDeleted:
		return OutcomeSuccess
	case r.BlobDeleted || r.MetaDeleted:
		return OutcomePartial
	default:
		return OutcomeFailure
	}
}

// DeletionSummary holds the counts of a DeletionResult.
type DeletionSummary struct {
	Requested   int `json:"requested"`
	BlobDeleted int `json:"blob_deleted"`
	MetaDeleted int `json:"meta_deleted"`
	Success     int `json:"success"`
}

// DeletionResult partitions a deletion batch. Every identifier in BlobDeleted
// and MetaDeleted belongs to a record in Requested.
type DeletionResult struct {
	Requested   []DeleteRequest `json:"requested"`
	BlobDeleted []string        `json:"blob_deleted"`
	MetaDeleted []string        `json:"meta_deleted"`
	Items       []ItemResult    `json:"items"`
	Summary     DeletionSummary `json:"summary"`
}

// NewDeletionResult builds the result from per-item outcomes, keeping input order.
func NewDeletionResult(items []ItemResult) DeletionResult {
	res := DeletionResult{
		Requested:   make([]DeleteRequest, 0, len(items)),
		BlobDeleted: []string{},
		MetaDeleted: []string{},
		Items:       items,
	}
	if res.Items == nil {
		res.Items = []ItemResult{}
	}
	for _, it := range items {
		res.Requested = append(res.Requested, it.Request)
		if it.BlobDeleted {
			res.BlobDeleted = append(res.BlobDeleted, it.Request.PublicID)
		}
		if it.MetaDeleted {
			res.MetaDeleted = append(res.MetaDeleted, it.Request.MetaID)
		}
	}
	res.Summary = DeletionSummary{
		Requested:   len(res.Requested),
		BlobDeleted: len(res.BlobDeleted),
		MetaDeleted: len(res.MetaDeleted),
		Success:     len(res.MetaDeleted),
	}
	return res
}

// PurgeResult is returned by a successful owner purge.
type PurgeResult struct {
	Message       string         `json:"message"`
	Assets        DeletionResult `json:"assets"`
	FolderDeleted bool           `json:"folder_deleted"`
}
