package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// File is one entry to be placed in a bundle.
type File struct {
	Name string
	Data []byte
}

// Bundle packs the given files into a single deflate-compressed zip container.
func Bundle(files []File) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, f := range files {
		entry, err := w.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", f.Name, err)
		}
		if _, err := entry.Write(f.Data); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}
