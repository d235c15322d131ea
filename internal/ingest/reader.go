package ingest

import (
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// textEncodings is the ordered fallback list tried when reading a source file.
// UTF-8 is detected by validation; the legacy encodings are byte-complete so
// the first one that applies wins.
var textEncodings = []struct {
	name    string
	charmap *charmap.Charmap
}{
	{"utf-8", nil},
	{"latin-1", charmap.ISO8859_1},
	{"cp1252", charmap.Windows1252},
}

// readTextFile reads a file trying each known encoding in order. It returns
// the decoded content and the name of the encoding that succeeded.
func readTextFile(path string) (content string, encoding string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}

	for _, enc := range textEncodings {
		if enc.charmap == nil {
			if utf8.Valid(data) {
				return string(data), enc.name, nil
			}
			continue
		}
		decoded, err := enc.charmap.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		return string(decoded), enc.name, nil
	}

	return "", "", fmt.Errorf("failed to decode %s with any known encoding", path)
}
