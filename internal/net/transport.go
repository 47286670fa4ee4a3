// Package net shares saved stroke archives with other collectors on the
// local network. A host serves a read-only snapshot of one archive over a
// websocket; peers find hosts through mDNS and fetch the archive to disk.
package net

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"StrokeCollector/internal/archive"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

// ArchivePath is the HTTP path the archive is served on.
const ArchivePath = "/archive"

// InfoPath answers with the Hello for the current archive as plain JSON.
const InfoPath = "/info"

const (
	writeWait     = 10 * time.Second
	handshakeWait = 10 * time.Second
	maxArchive    = 256 << 20
)

// Hello precedes the archive bytes on every connection.
type Hello struct {
	Name    string `json:"name"`
	Session string `json:"session,omitempty"`
	Size    int    `json:"size"`
}

// Server serves one archive file. The file is read on every request, so a
// re-save of the archive is picked up by the next peer.
type Server struct {
	path     string
	name     string
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewServer shares the zipped archive at path under name.
func NewServer(path, name string, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	format := r.Format()
	r.Close()
	if format != archive.Zip {
		return nil, fmt.Errorf("share %s: only %s archives can be shared", path, archive.ArchiveExt)
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), archive.ArchiveExt)
	}
	return &Server{
		path: path,
		name: name,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 32 * 1024,
			// peers are other collectors, not browsers
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: logger,
	}, nil
}

// Name is the advertised share name.
func (s *Server) Name() string { return s.name }

// Handler returns the HTTP handler for the share.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(ArchivePath, s.handleArchive).Methods(http.MethodGet)
	r.HandleFunc(InfoPath, s.handleInfo).Methods(http.MethodGet)
	return r
}

func (s *Server) snapshot() ([]byte, Hello, error) {
	r, err := archive.Open(s.path)
	if err != nil {
		return nil, Hello{}, err
	}
	comment := r.Comment()
	r.Close()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, Hello{}, err
	}
	return data, Hello{Name: s.name, Session: archive.ParseMeta(comment).Session, Size: len(data)}, nil
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	_, hello, err := s.snapshot()
	if err != nil {
		s.log.Error("archive unavailable", zap.String("path", s.path), zap.Error(err))
		http.Error(w, "archive unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(hello); err != nil {
		s.log.Warn("failed to write info", zap.Error(err))
	}
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	data, hello, err := s.snapshot()
	if err != nil {
		s.log.Error("archive unavailable", zap.String("path", s.path), zap.Error(err))
		http.Error(w, "archive unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("failed to upgrade connection", zap.String("remoteAddr", r.RemoteAddr), zap.Error(err))
		return
	}
	defer conn.Close()

	if err := s.send(conn, hello, data); err != nil {
		s.log.Warn("failed to send archive", zap.String("remoteAddr", r.RemoteAddr), zap.Error(err))
		return
	}
	s.log.Info("archive sent",
		zap.String("remoteAddr", r.RemoteAddr),
		zap.String("name", s.name),
		zap.Int("bytes", len(data)),
	)
}

func (s *Server) send(conn *websocket.Conn, hello Hello, data []byte) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(hello); err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return err
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done")
	return conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// ListenAndServe serves the share on port until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: handshakeWait,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("share listening", zap.Int("port", port), zap.String("name", s.name))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// URL turns a host:port address into the share's websocket URL. Full
// ws:// or wss:// URLs pass through.
func URL(addr string) string {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return addr
	}
	return "ws://" + strings.TrimSuffix(addr, "/") + ArchivePath
}

// Fetch downloads the archive shared at addr and stores it at dest. The
// bytes are checked to be a loadable archive before dest is replaced.
func Fetch(ctx context.Context, addr, dest string, logger *zap.Logger) (Hello, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dialer := websocket.Dialer{HandshakeTimeout: handshakeWait}
	conn, _, err := dialer.DialContext(ctx, URL(addr), nil)
	if err != nil {
		return Hello{}, fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()
	conn.SetReadLimit(maxArchive)
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}

	var hello Hello
	if err := conn.ReadJSON(&hello); err != nil {
		return Hello{}, fmt.Errorf("read hello from %s: %w", addr, err)
	}
	kind, data, err := conn.ReadMessage()
	if err != nil {
		return hello, fmt.Errorf("read archive from %s: %w", addr, err)
	}
	if kind != websocket.BinaryMessage || len(data) != hello.Size {
		return hello, fmt.Errorf("read archive from %s: got %d bytes, want %d", addr, len(data), hello.Size)
	}

	if err := writeArchive(dest, data, logger); err != nil {
		return hello, err
	}
	logger.Info("archive fetched",
		zap.String("addr", addr),
		zap.String("name", hello.Name),
		zap.String("session", hello.Session),
		zap.String("dest", dest),
	)
	return hello, nil
}

// writeArchive checks that data is a zip with at least one member and
// restages its members through archive.Stage, so dest is only replaced once
// every member has been read back with a valid checksum.
func writeArchive(dest string, data []byte, logger *zap.Logger) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("fetched archive: %w: %v", archive.ErrNotArchive, err)
	}
	var files []*zip.File
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, "/") {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("fetched archive: %w", archive.ErrEmpty)
	}

	st, err := archive.Create(dest, archive.Zip, archive.WithLogger(logger))
	if err != nil {
		return err
	}
	defer st.Abort()
	if err := st.SetComment(zr.Comment); err != nil {
		return fmt.Errorf("fetched archive: %w", err)
	}
	for _, f := range files {
		if err := copyMember(st, f); err != nil {
			return fmt.Errorf("fetched archive: %w", err)
		}
	}
	return st.Commit()
}

func copyMember(st *archive.Stage, f *zip.File) error {
	w, err := st.Create(f.Name)
	if err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", archive.ErrNotArchive, f.Name, err)
	}
	defer rc.Close()
	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("%w: %s: %v", archive.ErrNotArchive, f.Name, err)
	}
	return nil
}
