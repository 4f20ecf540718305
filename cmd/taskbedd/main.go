// Command taskbedd is the local-network state server: it holds the single
// shared data file and serves it to every taskbed client on the LAN.
//
// The contract is two endpoints plus a change feed: GET /api/data returns the
// full document, POST /api/data overwrites it, and /ws notifies connected
// clients whenever the document changes (including changes made directly to
// the file on disk).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/flock"

	"github.com/andrewblevins/taskbed/internal/config"
	"github.com/andrewblevins/taskbed/internal/debug"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Initialize(); err != nil {
		return err
	}

	dataFile := config.GetString("server-data-file")
	if dataFile == "" {
		dataFile = filepath.Join(config.DataDir(), "data.json")
	}
	if err := os.MkdirAll(filepath.Dir(dataFile), 0750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	srv := &server{
		dataFile: dataFile,
		lock:     flock.New(dataFile + ".lock"),
		hub:      newHub(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.hub.run(ctx)
	if err := srv.watchFile(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file watching disabled: %v\n", err)
	}

	if !debug.Enabled() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/api/data", srv.handleRead)
	router.POST("/api/data", srv.handleWrite)
	router.GET("/ws", srv.handleWS)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	addr := config.GetString("server-listen")
	if addr == "" {
		addr = ":3847"
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	fmt.Printf("taskbedd listening on %s (data file: %s)\n", addr, dataFile)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type server struct {
	dataFile string
	lock     *flock.Flock
	hub      *hub
}

// handleRead returns the full data file. A missing file serves "null" so
// first-run clients see an empty document rather than an error.
func (s *server) handleRead(c *gin.Context) {
	if err := s.lock.RLock(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "locking data file: " + err.Error()})
		return
	}
	data, err := os.ReadFile(s.dataFile)
	_ = s.lock.Unlock()

	if os.IsNotExist(err) {
		c.Data(http.StatusOK, "application/json", []byte("null"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// handleWrite overwrites the data file. The write is atomic (temp file in
// the same directory, then rename) so a crash mid-write can never leave a
// torn document, and the file lock keeps concurrent writers serialized.
func (s *server) handleWrite(c *gin.Context) {
	var doc json.RawMessage
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := s.lock.Lock(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "locking data file: " + err.Error()})
		return
	}
	err := atomicWrite(s.dataFile, doc)
	_ = s.lock.Unlock()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.hub.broadcast()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".taskbed-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing data file: %w", err)
	}
	return nil
}

// watchFile notifies connected clients when the data file changes on disk
// outside of POST /api/data (manual edits, rsync, another server instance).
func (s *server) watchFile(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory, not the file: atomic renames replace the inode
	// and a file watch would go stale after the first write.
	if err := watcher.Add(filepath.Dir(s.dataFile)); err != nil {
		_ = watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.dataFile {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				debug.Logf("data file changed on disk: %s", event.Op)
				s.hub.broadcast()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				debug.Logf("file watcher error: %v", err)
			}
		}
	}()
	return nil
}
