// Package ftp implements the honeypot's FTP control-channel server.
//
// The adapter owns the TCP lifecycle: it accepts connections, enforces the
// concurrent-session cap, and spawns one Session per client. Sessions drive
// the wire codec and dispatch decoded verbs to their handlers; everything
// the handlers need (persistence, login policy, file management, event
// emission) is injected through Deps.
package ftp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/marmos91/ftpot/internal/logger"
	"github.com/marmos91/ftpot/pkg/config"
	"github.com/marmos91/ftpot/pkg/honeynet"
	"github.com/marmos91/ftpot/pkg/honeypot/files"
	"github.com/marmos91/ftpot/pkg/honeypot/models"
	"github.com/marmos91/ftpot/pkg/metrics"
	"github.com/marmos91/ftpot/pkg/vfs"
)

// Store is the persistence surface the session handlers need.
type Store interface {
	SaveFileSystem(ctx context.Context, attackerID uint, fs *vfs.FileSystem) error
	CreateUploadedFile(ctx context.Context, file *models.UploadedFile) error
	DeleteUploadedFile(ctx context.Context, id uint) error
	CountFilesByAttacker(ctx context.Context, attackerID uint) (int64, error)
	GetFileByID(ctx context.Context, id uint) (*models.UploadedFile, error)
}

// Authenticator decides admission for one PASS attempt.
type Authenticator interface {
	Authenticate(ctx context.Context, ip, username, password string) (*models.Attacker, bool, error)
}

// Deps bundles the collaborators a session needs.
type Deps struct {
	Store   Store
	Login   Authenticator
	Files   *files.Manager
	Events  *honeynet.Client
	Metrics metrics.FTPMetrics
}

// Adapter is the FTP control-channel server.
//
// Thread safety: Serve runs the accept loop; Stop may be called concurrently
// and is idempotent.
type Adapter struct {
	cfg      config.FTPConfig
	filesCfg config.FilesConfig
	deps     Deps

	listener   net.Listener
	listenerMu sync.RWMutex

	// ListenerReady is closed once the listener accepts connections.
	// Used by tests to synchronize with server startup.
	ListenerReady chan struct{}

	shutdown     chan struct{}
	shutdownOnce sync.Once

	// shutdownCtx is cancelled during shutdown to abort in-flight handler
	// work; cancelSessions triggers it.
	shutdownCtx    context.Context
	cancelSessions context.CancelFunc

	// activeSessions maps remote address to net.Conn so shutdown can
	// interrupt reads blocked on slow attackers.
	activeSessions sync.Map
	sessionWG      sync.WaitGroup

	// sessionMu guards the concurrent-session counter read on every accept.
	sessionMu sync.Mutex
	sessions  int
}

// New creates the FTP adapter. The adapter does not listen until Serve.
func New(cfg config.FTPConfig, filesCfg config.FilesConfig, deps Deps) *Adapter {
	shutdownCtx, cancelSessions := context.WithCancel(context.Background())

	return &Adapter{
		cfg:            cfg,
		filesCfg:       filesCfg,
		deps:           deps,
		ListenerReady:  make(chan struct{}),
		shutdown:       make(chan struct{}),
		shutdownCtx:    shutdownCtx,
		cancelSessions: cancelSessions,
	}
}

// Serve accepts control connections until the context is cancelled or the
// listener fails. Returns nil on graceful shutdown.
func (a *Adapter) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to create FTP listener on port %d: %w", a.cfg.Port, err)
	}

	a.listenerMu.Lock()
	a.listener = listener
	a.listenerMu.Unlock()
	close(a.ListenerReady)

	logger.Info("FTP honeypot listening", "port", a.cfg.Port)

	go func() {
		<-ctx.Done()
		a.initiateShutdown()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-a.shutdown:
				return nil
			default:
				logger.Debug("Error accepting FTP connection", "error", err)
				continue
			}
		}

		a.handleConn(conn)
	}
}

// handleConn applies the session cap and spawns the session goroutine.
func (a *Adapter) handleConn(conn net.Conn) {
	ip := remoteIP(conn)

	if !a.tryAcquire() {
		logger.Info("Concurrent session cap reached, rejecting connection", "ip", ip)
		metrics.SessionRejected(a.deps.Metrics)
		_, _ = conn.Write(encodeReply(codeUnavailable, "Please come back in 2040 seconds."))
		_ = conn.Close()
		return
	}

	metrics.SessionStarted(a.deps.Metrics)

	addr := conn.RemoteAddr().String()
	a.activeSessions.Store(addr, conn)
	a.sessionWG.Add(1)

	session := newSession(a, conn, ip)
	go func() {
		defer func() {
			a.activeSessions.Delete(addr)
			a.release()
			a.sessionWG.Done()
			metrics.SessionEnded(a.deps.Metrics)
		}()

		session.Serve(a.shutdownCtx)
	}()
}

// tryAcquire claims one session slot; false when the cap is reached.
func (a *Adapter) tryAcquire() bool {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	if a.sessions >= a.cfg.MaxConcurrentUsers {
		return false
	}
	a.sessions++
	return true
}

func (a *Adapter) release() {
	a.sessionMu.Lock()
	a.sessions--
	a.sessionMu.Unlock()
}

// initiateShutdown stops the accept loop, unblocks pending control reads,
// and cancels in-flight handler work. Safe to call multiple times.
func (a *Adapter) initiateShutdown() {
	a.shutdownOnce.Do(func() {
		logger.Debug("FTP shutdown initiated")
		close(a.shutdown)

		a.listenerMu.Lock()
		if a.listener != nil {
			_ = a.listener.Close()
		}
		a.listenerMu.Unlock()

		// Control reads are unbounded; a short deadline unblocks them.
		deadline := time.Now().Add(100 * time.Millisecond)
		a.activeSessions.Range(func(_, value any) bool {
			if conn, ok := value.(net.Conn); ok {
				_ = conn.SetReadDeadline(deadline)
			}
			return true
		})

		a.cancelSessions()
	})
}

// Stop initiates shutdown and waits for active sessions up to the context
// deadline. Safe to call concurrently with Serve.
func (a *Adapter) Stop(ctx context.Context) error {
	a.initiateShutdown()

	done := make(chan struct{})
	go func() {
		a.sessionWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("FTP graceful shutdown complete")
		return nil
	case <-ctx.Done():
		logger.Warn("FTP shutdown cut short", "error", ctx.Err())
		return ctx.Err()
	}
}

// GetListenerAddr returns the listen address. Blocks until the listener is
// ready, making it safe for tests.
func (a *Adapter) GetListenerAddr() string {
	<-a.ListenerReady

	a.listenerMu.RLock()
	defer a.listenerMu.RUnlock()

	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Port returns the configured control-channel port.
func (a *Adapter) Port() int {
	return a.cfg.Port
}

// remoteIP strips the port from a connection's remote address.
func remoteIP(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}
	return host
}
