package render

import (
	"image"

	"github.com/bbrks/go-blurhash"
)

// placeholderSize keeps decode cheap; covers are scaled up by the layout.
const placeholderSize = 128

// placeholderHashes are BlurHashes of generic book covers, cycled for admin
// template previews where no real list exists yet.
var placeholderHashes = []string{
	"LEHV6nWB2yk8pyo0adR*.7kCMdnj",
	"LKO2?U%2Tw=w]~RBVZRi};RPxuwH",
	"L6Pj0^i_.AyE_3t7t7R**0o#DgR4",
	"LGF5]+Yk^6#M@-5c,1J5@[or[Q6.",
	"LlMF%n00%#MwS|WCWEM{R*bbWBbH",
}

// PlaceholderCovers returns n decoded placeholder covers for previews.
// A hash that fails to decode leaves a nil slot, which renders as an empty
// box.
func PlaceholderCovers(n int) []image.Image {
	covers := make([]image.Image, n)
	for i := range covers {
		hash := placeholderHashes[i%len(placeholderHashes)]
		img, err := blurhash.Decode(hash, placeholderSize, placeholderSize, 1)
		if err != nil {
			continue
		}
		covers[i] = img
	}
	return covers
}
