package model

// Metadata contains document-level information written to, or read from,
// a document package.
type Metadata struct {
	Title   string
	Subject string
	Creator string // Application that produced the document
}
