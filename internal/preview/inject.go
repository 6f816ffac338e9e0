package preview

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxInjectSize bounds how much of an HTML response is buffered for injection.
const maxInjectSize = 2 << 20

// scriptTag loads the live reload client.
const scriptTag = `<script src="/livereload.js" async></script>`

// InjectBeforeBody inserts snippet before the closing body tag. Tags inside
// comments, scripts and attribute values are not mistaken for it. Documents
// without a body end tag get the snippet appended.
func InjectBeforeBody(doc, snippet []byte) []byte {
	at := bodyEndOffset(doc)
	if at < 0 {
		out := make([]byte, 0, len(doc)+len(snippet))
		return append(append(out, doc...), snippet...)
	}
	out := make([]byte, 0, len(doc)+len(snippet))
	out = append(out, doc[:at]...)
	out = append(out, snippet...)
	return append(out, doc[at:]...)
}

// bodyEndOffset returns the byte offset of the last </body>, or -1.
func bodyEndOffset(doc []byte) int {
	z := html.NewTokenizer(bytes.NewReader(doc))
	offset, found := 0, -1
	for {
		tt := z.Next()
		raw := len(z.Raw())
		switch tt {
		case html.ErrorToken:
			return found
		case html.EndTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Body {
				found = offset
			}
		}
		offset += raw
	}
}

// injectingWriter buffers HTML responses so the live reload script can be
// added. Non-HTML and oversized responses pass straight through.
type injectingWriter struct {
	http.ResponseWriter
	snippet     []byte
	status      int
	buf         bytes.Buffer
	decided     bool
	passthrough bool
}

func (w *injectingWriter) WriteHeader(code int) {
	w.status = code
	w.decide()
	if w.passthrough {
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *injectingWriter) decide() {
	if w.decided {
		return
	}
	w.decided = true
	ct := w.Header().Get("Content-Type")
	w.passthrough = w.status != http.StatusOK || (ct != "" && !strings.HasPrefix(ct, "text/html"))
}

func (w *injectingWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.decide()
	if w.passthrough {
		return w.ResponseWriter.Write(p)
	}
	if w.buf.Len()+len(p) > maxInjectSize {
		w.passthrough = true
		w.ResponseWriter.WriteHeader(w.status)
		if _, err := io.Copy(w.ResponseWriter, &w.buf); err != nil {
			return 0, err
		}
		return w.ResponseWriter.Write(p)
	}
	return w.buf.Write(p)
}

func (w *injectingWriter) finish() {
	if w.passthrough {
		return
	}
	if w.status == 0 {
		w.status = http.StatusOK
	}
	body := InjectBeforeBody(w.buf.Bytes(), w.snippet)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.ResponseWriter.WriteHeader(w.status)
	_, _ = w.ResponseWriter.Write(body)
}

// injectScript adds the live reload client, and a banner for the last
// failed build, to HTML pages.
func injectScript(next http.Handler, status *buildStatus) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if r.Method != http.MethodGet || !(strings.HasSuffix(p, "/") || strings.HasSuffix(p, ".html")) {
			next.ServeHTTP(w, r)
			return
		}
		snippet := scriptTag
		if failed, err := status.failure(); failed {
			snippet = errorBanner(err) + snippet
		}
		iw := &injectingWriter{ResponseWriter: w, snippet: []byte(snippet)}
		next.ServeHTTP(iw, r)
		iw.finish()
	})
}

func errorBanner(err error) string {
	return `<div class="docsite-build-error" role="alert" style="position:fixed;bottom:0;left:0;right:0;padding:1em;` +
		`background:#d4351c;color:#fff;font-family:monospace;white-space:pre-wrap;z-index:9999">` +
		"Build failed: " + html.EscapeString(err.Error()) + `</div>`
}
