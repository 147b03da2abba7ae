package core

// ObjectType represents the type of object stored in the database
type ObjectType string

const (
	// ObjectTypePrompt holds the full text of one prompt version
	ObjectTypePrompt ObjectType = "prompt"
)

// Object represents a generic object in the database
type Object struct {
	Type ObjectType `json:"type"`
	Data []byte     `json:"data"`
	Hash Hash       `json:"hash"`
}
