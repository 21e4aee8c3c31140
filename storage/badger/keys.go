package badger

import (
	"fmt"

	"github.com/veldtlabs/wikivec/core"
)

// Key prefixes for different data types
const (
	documentPrefix    = "wikdoc"
	documentURLPrefix = "wikdocu"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeDocumentURLKey generates a key for the URL index.
func makeDocumentURLKey(url string) []byte {
	return []byte(documentURLPrefix + ":" + url)
}
