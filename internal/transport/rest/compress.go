package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/klauspost/compress/zlib"
)

const (
	// Bodies below this size are compressed in one go and sent with a
	// Content-Length.
	deflateWholeLimit = 2 << 18
	// Larger bodies are fed to the compressor in steps of this size and
	// every non-empty compressed piece is flushed as its own chunk.
	deflateStep = 2 << 17
)

// errEncode reports that the response value could not be marshalled and a
// plain 500 went out instead.
var errEncode = errors.New("encode response")

// writeDeflatedJSON encodes v and writes it zlib-compressed with
// Content-Encoding: deflate. The JSON is fully built before the first byte
// is written; if encoding fails a plain 500 is sent instead and the error
// returned.
func writeDeflatedJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return fmt.Errorf("%w: %w", errEncode, err)
	}

	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Content-Encoding", "deflate")

	if len(body) < deflateWholeLimit {
		compressed, err := deflate(body)
		if err != nil {
			return err
		}
		h.Set("Content-Length", strconv.Itoa(len(compressed)))
		w.WriteHeader(status)
		_, err = w.Write(compressed)
		return err
	}

	h.Del("Content-Length")
	w.WriteHeader(status)
	return deflateChunks(body, func(piece []byte) error {
		if _, err := w.Write(piece); err != nil {
			return err
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		return nil
	})
}

// deflate compresses body into a single zlib stream.
func deflate(body []byte) ([]byte, error) {
	var out bytes.Buffer
	err := deflateChunks(body, func(piece []byte) error {
		out.Write(piece)
		return nil
	})
	return out.Bytes(), err
}

// deflateChunks compresses body step by step, calling emit with whatever
// compressed output each step produced. Empty pieces are not emitted.
func deflateChunks(body []byte, emit func([]byte) error) error {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return fmt.Errorf("deflate: %w", err)
	}

	drain := func() error {
		if buf.Len() == 0 {
			return nil
		}
		piece := bytes.Clone(buf.Bytes())
		buf.Reset()
		return emit(piece)
	}

	for start := 0; start < len(body); start += deflateStep {
		end := min(start+deflateStep, len(body))
		if _, err := zw.Write(body[start:end]); err != nil {
			return fmt.Errorf("deflate: %w", err)
		}
		if err := drain(); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("deflate: %w", err)
	}
	return drain()
}
