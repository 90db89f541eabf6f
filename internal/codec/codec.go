// Package codec translates between page URLs and the filesystem-safe tokens
// used to name report artifacts on disk.
package codec

import "strings"

// preset markers embedded in artifact filenames, checked in this order.
var markers = []string{"-mobile-", "-desktop-"}

// suffixes stripped from the timestamp portion of a filename. Longer
// suffixes come first so ".report.html" is not mistaken for ".html".
var suffixes = []string{".report.html", ".html", ".report.json", ".json"}

// Encode turns a URL into a token safe to use in a filename. The scheme is
// dropped and every character that is not a letter or digit becomes an
// underscore, one-for-one. The mapping is deterministic but not injective:
// URLs differing only in punctuation collide.
func Encode(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")

	var b strings.Builder
	b.Grow(len(url))
	for _, r := range url {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Decoded holds the parts recovered from an artifact filename.
type Decoded struct {
	Page      string
	Preset    string
	Timestamp string
}

// Decode splits an artifact filename into page, preset and timestamp.
// The "-mobile-" marker is tried before "-desktop-"; whichever is found
// first splits the name. Underscores in the page portion become spaces.
// Known report suffixes are stripped from the timestamp portion.
//
// A name with neither marker yields the whole name as the page with empty
// preset and timestamp. Page labels that legitimately contain a marker
// substring decode ambiguously; callers get the leftmost split.
func Decode(filename string) Decoded {
	for _, m := range markers {
		idx := strings.Index(filename, m)
		if idx < 0 {
			continue
		}
		page := strings.ReplaceAll(filename[:idx], "_", " ")
		preset := strings.Trim(m, "-")
		ts := filename[idx+len(m):]
		for _, s := range suffixes {
			if strings.HasSuffix(ts, s) {
				ts = strings.TrimSuffix(ts, s)
				break
			}
		}
		return Decoded{Page: page, Preset: preset, Timestamp: ts}
	}
	return Decoded{Page: filename}
}
