package xmldoc

import "bytes"

var xmlDeclaration = []byte("<?xml")

// SplitXMLs splits a byte stream into consecutive XML documents by their
// <?xml declarations, supporting input files that concatenate several
// documents. The first chunk starts at the beginning of the input even when
// it lacks a declaration.
func SplitXMLs(content []byte) [][]byte {
	var chunks [][]byte
	start := 0
	for start < len(content) {
		next := bytes.Index(content[start+1:], xmlDeclaration)
		if next < 0 {
			break
		}
		cut := start + 1 + next
		chunks = append(chunks, content[start:cut])
		start = cut
	}
	return append(chunks, content[start:])
}
