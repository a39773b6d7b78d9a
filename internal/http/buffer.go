package http

import "bytes"

// maxPrealloc bounds the buffer reserved up front from Content-Length.
const maxPrealloc = 1 << 20

// newBuffer preallocates from Content-Length when it is known and within the
// cap, never reserving more than maxPrealloc. The header comes from the
// remote host and is not trusted beyond that.
func newBuffer(contentLength, maxBytes int64) *bytes.Buffer {
	if contentLength <= 0 || (maxBytes > 0 && contentLength > maxBytes) {
		return new(bytes.Buffer)
	}
	return bytes.NewBuffer(make([]byte, 0, min(contentLength, maxPrealloc)))
}
