package extended

import (
	"encoding/json"
	"net/url"

	"github.com/tidwall/gjson"

	"solana-art-lab/internal/domain"
)

// process parses a raw descriptor and resolves its image. Descriptors that
// are null, not objects, or list no files are suppressed.
func (l *Loader) process(raw, recordURI string) (*domain.ExtendedMetadata, bool) {
	if !gjson.Valid(raw) {
		return nil, false
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return nil, false
	}
	files := doc.Get("properties.files")
	if !files.IsArray() || len(files.Array()) == 0 {
		return nil, false
	}

	var meta domain.ExtendedMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, false
	}
	meta.Raw = json.RawMessage(raw)

	if meta.Image != "" {
		meta.Image = l.rewriter.Rewrite(resolveImage(meta.Image, recordURI))
	}
	return &meta, true
}

// resolveImage joins a relative image path onto the record URI. Images with
// any scheme (http, ipfs, ar, data) are kept as-is.
func resolveImage(image, recordURI string) string {
	if u, err := url.Parse(image); err == nil && u.IsAbs() {
		return image
	}
	return recordURI + "/" + image
}
