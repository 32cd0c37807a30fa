// Package node assembles a rating node: storage, the program registry and
// executor, and the HTTP and metrics endpoints.
package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/tos-network/ratingd/core/rawdb"
	"github.com/tos-network/ratingd/core/rent"
	"github.com/tos-network/ratingd/core/runtime"
	"github.com/tos-network/ratingd/core/state"
	"github.com/tos-network/ratingd/core/system"
	"github.com/tos-network/ratingd/internal/ratingapi"
	"github.com/tos-network/ratingd/log"
	"github.com/tos-network/ratingd/metrics"
	"github.com/tos-network/ratingd/params"
	"github.com/tos-network/ratingd/rating"
	"github.com/tos-network/ratingd/tosdb"
	"github.com/tos-network/ratingd/tosdb/leveldb"
	"github.com/tos-network/ratingd/tosdb/memorydb"
	"golang.org/x/sync/errgroup"
)

const (
	initializingState = iota
	runningState
	closedState
)

const (
	httpReadTimeout     = 30 * time.Second
	httpWriteTimeout    = 30 * time.Second
	httpShutdownTimeout = 5 * time.Second
	processMetricsEvery = 3 * time.Second
)

// Node is a container on which services can be registered.
type Node struct {
	config   *Config
	log      log.Logger
	db       tosdb.KeyValueStore
	executor *runtime.Executor
	api      *ratingapi.API
	stop     chan struct{} // Channel to wait for termination notifications

	startStopLock sync.Mutex // Start/Stop are protected by an additional lock
	state         int        // Tracks state of node lifecycle

	lock          sync.Mutex
	lifecycles    []Lifecycle // All registered backends, services, and auxiliary services that have a lifecycle
	httpServer    *http.Server
	httpAddr      net.Addr
	metricsServer *http.Server
	cancel        context.CancelFunc
	group         *errgroup.Group
}

// New creates a new node. Storage is opened and the programs registered
// here; listeners are only opened by Start.
func New(conf *Config) (*Node, error) {
	// Copy config and resolve the defaults a zero config leaves open.
	confCopy := *conf
	conf = &confCopy
	if conf.ProgramID.IsZero() {
		conf.ProgramID = params.RatingProgramID
	}
	if conf.Rent == (rent.Rent{}) {
		conf.Rent = *rent.Default()
	}
	if err := conf.Rent.Validate(); err != nil {
		return nil, err
	}
	node := &Node{
		config: conf,
		log:    log.New("module", "node"),
		stop:   make(chan struct{}),
	}
	db, err := node.openDatabase()
	if err != nil {
		return nil, err
	}
	node.db = db

	registry := runtime.NewRegistry()
	if err := registry.RegisterNative(system.New()); err != nil {
		db.Close()
		return nil, err
	}
	if err := registry.Register(rating.NewProcessor(conf.ProgramID)); err != nil {
		db.Close()
		return nil, err
	}
	node.executor = runtime.NewExecutor(registry, state.NewDatabase(db, conf.DBCache/2), &conf.Rent)
	node.api = ratingapi.New(node.executor, ratingapi.Config{
		ProgramID: conf.ProgramID,
		Cors:      conf.HTTPCors,
		Faucet:    conf.Faucet,
	})
	node.log.Info("Initialised node", "datadir", conf.DataDir, "program", conf.ProgramID)
	return node, nil
}

// openDatabase opens the key-value store in the data directory, or an
// in-memory one when no data directory is configured.
func (n *Node) openDatabase() (tosdb.KeyValueStore, error) {
	var db tosdb.KeyValueStore
	if n.config.DataDir == "" {
		db = memorydb.New()
	} else {
		ldb, err := leveldb.New(n.config.ResolvePath(datadirDatabase), n.config.DBCache/2, n.config.DBHandles, "ratingd/db/", false)
		if err != nil {
			return nil, convertFileLockError(err)
		}
		db = ldb
	}
	switch version := rawdb.ReadDatabaseVersion(db); {
	case version == nil:
		rawdb.WriteDatabaseVersion(db, rawdb.DatabaseVersion)
	case *version != rawdb.DatabaseVersion:
		db.Close()
		return nil, fmt.Errorf("database version %d, node supports %d", *version, rawdb.DatabaseVersion)
	}
	return db, nil
}

// Start starts all registered lifecycles, the HTTP endpoint and, when
// enabled, the metrics endpoint. Start can only be called once.
func (n *Node) Start() error {
	n.startStopLock.Lock()
	defer n.startStopLock.Unlock()

	n.lock.Lock()
	switch n.state {
	case runningState:
		n.lock.Unlock()
		return ErrNodeRunning
	case closedState:
		n.lock.Unlock()
		return ErrNodeStopped
	}
	n.state = runningState
	lifecycles := make([]Lifecycle, len(n.lifecycles))
	copy(lifecycles, n.lifecycles)

	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	n.group, ctx = errgroup.WithContext(ctx)
	err := n.startServers(ctx)
	n.lock.Unlock()

	// Start all registered lifecycles.
	var started []Lifecycle
	if err == nil {
		for _, lifecycle := range lifecycles {
			if err = lifecycle.Start(); err != nil {
				break
			}
			started = append(started, lifecycle)
		}
	}
	// Check if any lifecycle failed to start.
	if err != nil {
		n.stopServices(started)
		n.doClose(nil)
	}
	return err
}

func (n *Node) startServers(ctx context.Context) error {
	if endpoint := n.config.HTTPEndpoint(); endpoint != "" {
		listener, err := net.Listen("tcp", endpoint)
		if err != nil {
			return fmt.Errorf("could not start HTTP server: %w", err)
		}
		n.httpAddr = listener.Addr()
		n.httpServer = &http.Server{
			Handler:      n.api,
			ReadTimeout:  httpReadTimeout,
			WriteTimeout: httpWriteTimeout,
		}
		n.group.Go(func() error { return serve(n.httpServer, listener) })
		n.log.Info("HTTP server started", "endpoint", n.httpAddr, "cors", strings.Join(n.config.HTTPCors, ","))
	}
	if n.config.Metrics.Enabled {
		metrics.Enable()
		listener, err := net.Listen("tcp", n.config.MetricsEndpoint())
		if err != nil {
			return fmt.Errorf("could not start metrics server: %w", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/debug/metrics/prometheus", metrics.Handler())
		mux.Handle("/metrics", metrics.Handler())
		n.metricsServer = &http.Server{Handler: mux, ReadTimeout: httpReadTimeout}
		n.group.Go(func() error { return serve(n.metricsServer, listener) })
		n.group.Go(func() error {
			metrics.CollectProcessMetrics(ctx, processMetricsEvery)
			return nil
		})
		n.log.Info("Starting metrics server", "addr", fmt.Sprintf("http://%s/debug/metrics/prometheus", listener.Addr()))
	}
	return nil
}

func serve(srv *http.Server, listener net.Listener) error {
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// stopServices terminates running services, the servers and their
// goroutines.
func (n *Node) stopServices(running []Lifecycle) error {
	var errs []error
	for i := len(running) - 1; i >= 0; i-- {
		if err := running[i].Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer cancel()
	for _, srv := range []*http.Server{n.httpServer, n.metricsServer} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if n.cancel != nil {
		n.cancel()
	}
	if n.group != nil {
		if err := n.group.Wait(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops the Node and releases resources acquired in
// Node constructor New.
func (n *Node) Close() error {
	n.startStopLock.Lock()
	defer n.startStopLock.Unlock()

	n.lock.Lock()
	state := n.state
	n.lock.Unlock()
	switch state {
	case initializingState:
		// The node was never started.
		return n.doClose(nil)
	case runningState:
		// The node was started, release resources acquired by Start().
		return n.doClose(n.stopServices(n.lifecycles))
	case closedState:
		return ErrNodeStopped
	default:
		panic(fmt.Sprintf("node is in unknown state %d", state))
	}
}

// doClose releases resources acquired by New(), collecting errors.
func (n *Node) doClose(err error) error {
	n.lock.Lock()
	n.state = closedState
	if cerr := n.db.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	n.lock.Unlock()

	// Unblock n.Wait.
	close(n.stop)
	n.log.Info("Node stopped")
	return err
}

// Wait blocks until the node is closed.
func (n *Node) Wait() {
	<-n.stop
}

// RegisterLifecycle registers the given Lifecycle on the node.
func (n *Node) RegisterLifecycle(lifecycle Lifecycle) {
	n.lock.Lock()
	defer n.lock.Unlock()

	if n.state != initializingState {
		panic("can't register lifecycle on running/stopped node")
	}
	for _, existing := range n.lifecycles {
		if existing == lifecycle {
			panic(fmt.Sprintf("attempt to register lifecycle %T more than once", lifecycle))
		}
	}
	n.lifecycles = append(n.lifecycles, lifecycle)
}

// Config returns the configuration of node.
func (n *Node) Config() *Config {
	return n.config
}

// Executor returns the transaction executor.
func (n *Node) Executor() *runtime.Executor {
	return n.executor
}

// Handler returns the HTTP API, for embedding in another server.
func (n *Node) Handler() http.Handler {
	return n.api
}

// HTTPEndpoint returns the URL of the HTTP server, or "" when it is not
// running.
func (n *Node) HTTPEndpoint() string {
	n.lock.Lock()
	defer n.lock.Unlock()

	if n.httpAddr == nil {
		return ""
	}
	return "http://" + n.httpAddr.String()
}

// datadirInUseErrnos are the errnos returned when the data directory lock
// is held by another process.
var datadirInUseErrnos = map[uint]bool{11: true, 32: true, 35: true}

func convertFileLockError(err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) && datadirInUseErrnos[uint(errno)] {
		return ErrDatadirUsed
	}
	return err
}
