package model

// ChangeKind classifies a metadata change-feed event.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeModify ChangeKind = "modify"
	ChangeRemove ChangeKind = "remove"
)

// ChangeEvent is one entry of the metadata change feed. NewImage is only
// populated for insert and modify events; remove events carry no image.
type ChangeEvent struct {
	Kind     ChangeKind    `json:"kind"`
	NewImage *FileMetadata `json:"new,omitempty"`
}
