package server

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tareas/internal/domain/errors"
	"tareas/internal/logger"
)

const (
	ctxUserID       = "userID"
	headerRequestID = "X-Request-ID"
)

// RequestLogger stamps every request with an id and logs it once served.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		requestID := ctx.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Header(headerRequestID, requestID)

		ctx.Next()

		status := ctx.Writer.Status()
		kv := []any{
			"request_id", requestID,
			"method", ctx.Request.Method,
			"route", ctx.FullPath(),
			"status", status,
			"latency", time.Since(start),
		}
		if userID, ok := ctx.Get(ctxUserID); ok {
			kv = append(kv, "user_id", userID)
		}
		if len(ctx.Errors) > 0 {
			kv = append(kv, "errors", ctx.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request served", kv...)
		case status >= http.StatusBadRequest:
			log.Info("request served", kv...)
		default:
			log.Debug("request served", kv...)
		}
	}
}

// Recovery turns a handler panic into the generic 500 body.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		log.Error("panic recovered", "panic", recovered, "route", ctx.FullPath())
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
	})
}

// CORS allows every origin unless a list is configured. Tokens travel in the
// Authorization header, so credentials (cookies) are never allowed.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "Content-Encoding", headerRequestID},
		ExposeHeaders: []string{headerRequestID},
		MaxAge:        12 * time.Hour,
	}
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

type gzipBody struct {
	io.Reader
	gz   io.Closer
	body io.Closer
}

func (b *gzipBody) Close() error {
	gzErr := b.gz.Close()
	if err := b.body.Close(); err != nil {
		return err
	}
	return gzErr
}

// GzipRequestDecompress transparently inflates gzip-encoded request bodies.
func GzipRequestDecompress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !strings.Contains(strings.ToLower(ctx.GetHeader("Content-Encoding")), "gzip") {
			ctx.Next()
			return
		}
		gr, err := gzip.NewReader(ctx.Request.Body)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidGzipRequest.Error()})
			return
		}
		ctx.Request.Body = &gzipBody{Reader: gr, gz: gr, body: ctx.Request.Body}
		ctx.Request.Header.Del("Content-Encoding")
		ctx.Request.Header.Del("Content-Length")
		ctx.Request.ContentLength = -1
		ctx.Next()
	}
}

const minCompressSize = 1024

// gzipWriter holds back the first minCompressSize bytes, then decides once
// whether the response is worth compressing.
type gzipWriter struct {
	gin.ResponseWriter
	gz      *gzip.Writer
	buf     bytes.Buffer
	decided bool
}

func (w *gzipWriter) Write(data []byte) (int, error) {
	if w.decided {
		if w.gz != nil {
			return w.gz.Write(data)
		}
		return w.ResponseWriter.Write(data)
	}
	w.buf.Write(data)
	if w.buf.Len() >= minCompressSize {
		if err := w.decide(true); err != nil {
			return 0, err
		}
	}
	return len(data), nil
}

func (w *gzipWriter) WriteString(s string) (int, error) { return w.Write([]byte(s)) }

func (w *gzipWriter) Flush() {
	if !w.decided {
		_ = w.decide(false)
	}
	if w.gz != nil {
		_ = w.gz.Flush()
	}
	w.ResponseWriter.Flush()
}

func (w *gzipWriter) decide(large bool) error {
	w.decided = true
	if large && w.compressible() {
		h := w.Header()
		h.Del("Content-Length")
		h.Set("Content-Encoding", "gzip")
		w.gz = gzip.NewWriter(w.ResponseWriter)
		if _, err := w.gz.Write(w.buf.Bytes()); err != nil {
			return errors.ErrGzipCompression
		}
	} else if w.buf.Len() > 0 {
		if _, err := w.ResponseWriter.Write(w.buf.Bytes()); err != nil {
			return err
		}
	}
	w.buf.Reset()
	return nil
}

func (w *gzipWriter) finish() error {
	if !w.decided {
		if err := w.decide(false); err != nil {
			return err
		}
	}
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			return errors.ErrGzipCompression
		}
	}
	return nil
}

// abandon drops whatever was buffered and hands back the underlying writer,
// so a recovering middleware can still answer the request.
func (w *gzipWriter) abandon() gin.ResponseWriter {
	w.buf.Reset()
	w.decided = true
	if w.gz != nil {
		_ = w.gz.Close()
	}
	return w.ResponseWriter
}

func (w *gzipWriter) compressible() bool {
	switch w.Status() {
	case http.StatusNoContent, http.StatusNotModified, http.StatusPartialContent:
		return false
	}
	if w.Header().Get("Content-Encoding") != "" {
		return false
	}
	return isCompressibleContentType(w.Header().Get("Content-Type"))
}

// GzipResponseCompress compresses responses of at least minCompressSize bytes
// for clients that accept gzip.
func GzipResponseCompress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method == http.MethodHead ||
			!strings.Contains(strings.ToLower(ctx.GetHeader("Accept-Encoding")), "gzip") {
			ctx.Next()
			return
		}
		addVary(ctx.Writer.Header(), "Accept-Encoding")

		gw := &gzipWriter{ResponseWriter: ctx.Writer}
		ctx.Writer = gw
		defer func() {
			if recovered := recover(); recovered != nil {
				ctx.Writer = gw.abandon()
				panic(recovered)
			}
			if err := gw.finish(); err != nil {
				_ = ctx.Error(err)
			}
		}()
		ctx.Next()
	}
}

func addVary(h http.Header, value string) {
	vary := h.Get("Vary")
	switch {
	case vary == "":
		h.Set("Vary", value)
	case !strings.Contains(vary, value):
		h.Set("Vary", vary+", "+value)
	}
}

func isCompressibleContentType(ct string) bool {
	lower := strings.ToLower(ct)
	if lower == "" || strings.HasPrefix(lower, "text/event-stream") {
		return false
	}
	for _, prefix := range []string{
		"application/json",
		"application/xml",
		"application/javascript",
		"text/",
	} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
