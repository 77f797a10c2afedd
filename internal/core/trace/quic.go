package trace

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/observability/log"
	"github.com/ahump20/Sandlot-Sluggers-sub004/pkg/encoding"
)

// feedProto is the ALPN token feed subscribers negotiate.
const feedProto = "sluggers-trace"

// maxFrameSize bounds a single frame on the wire.
const maxFrameSize = 1 << 20

type feedConn struct {
	conn   quic.Connection
	send   chan []byte
	closed bool // guarded by the feed mutex
}

// QUICFeed streams frames to QUIC subscribers. Each frame travels on its
// own stream with a 4-byte big-endian length prefix.
type QUICFeed struct {
	mu       sync.Mutex
	listener *quic.Listener
	conns    map[*feedConn]struct{}

	closed atomic.Bool
	drops  atomic.Uint64
	wg     sync.WaitGroup
	log    log.Log
}

// NewQUICFeed builds a feed that is not yet listening.
func NewQUICFeed(logger log.Log) *QUICFeed {
	if logger == nil {
		logger = log.NewNop()
	}
	return &QUICFeed{
		conns: make(map[*feedConn]struct{}),
		log:   logger.With(log.String("component", "trace_feed")),
	}
}

// Listen starts a QUIC listener on addr with a self-signed certificate and
// begins accepting subscribers.
func (f *QUICFeed) Listen(ctx context.Context, addr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listener != nil {
		return fmt.Errorf("feed is already listening")
	}

	tlsConf, err := GenerateTLSConfig()
	if err != nil {
		return fmt.Errorf("generate tls config: %w", err)
	}
	listener, err := quic.ListenAddr(addr, tlsConf, &quic.Config{
		MaxIdleTimeout: 30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	f.listener = listener
	f.log.Info("trace feed listening", log.String("addr", listener.Addr().String()))

	f.wg.Add(1)
	go f.acceptLoop(ctx, listener)
	return nil
}

func (f *QUICFeed) acceptLoop(ctx context.Context, listener *quic.Listener) {
	defer f.wg.Done()
	for {
		conn, err := listener.Accept(ctx)
		if err != nil {
			if !f.closed.Load() && ctx.Err() == nil {
				f.log.Warn("trace feed accept failed", log.Error(err))
			}
			return
		}
		fc := &feedConn{conn: conn, send: make(chan []byte, 64)}
		f.mu.Lock()
		f.conns[fc] = struct{}{}
		f.mu.Unlock()
		f.log.Info("trace subscriber connected",
			log.String("remote_addr", conn.RemoteAddr().String()))

		f.wg.Add(1)
		go f.writeLoop(ctx, fc)
	}
}

func (f *QUICFeed) writeLoop(ctx context.Context, fc *feedConn) {
	defer f.wg.Done()
	defer f.dropConn(fc)
	for data := range fc.send {
		if err := writeFrame(ctx, fc.conn, data); err != nil {
			f.log.Debug("trace subscriber write failed", log.Error(err))
			_ = fc.conn.CloseWithError(0, "write failed")
			return
		}
	}
	_ = fc.conn.CloseWithError(0, "feed closed")
}

// dropConn removes a subscriber and closes its queue exactly once.
func (f *QUICFeed) dropConn(fc *feedConn) {
	f.mu.Lock()
	delete(f.conns, fc)
	if !fc.closed {
		fc.closed = true
		close(fc.send)
	}
	f.mu.Unlock()
}

// Broadcast serializes the frame once and queues it to every subscriber.
// Slow subscribers lose frames.
func (f *QUICFeed) Broadcast(frame *Frame) error {
	data, err := frame.Serialize()
	if err != nil {
		return err
	}
	f.mu.Lock()
	for fc := range f.conns {
		if fc.closed {
			continue
		}
		select {
		case fc.send <- data:
		default:
			f.drops.Add(1)
		}
	}
	f.mu.Unlock()
	return nil
}

// Addr is the bound listener address, nil before Listen.
func (f *QUICFeed) Addr() net.Addr {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listener == nil {
		return nil
	}
	return f.listener.Addr()
}

// SubscriberCount is the number of connected subscribers.
func (f *QUICFeed) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

// Drops is the number of frames lost to slow subscribers.
func (f *QUICFeed) Drops() uint64 {
	return f.drops.Load()
}

// Close stops the listener and disconnects every subscriber.
func (f *QUICFeed) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	f.mu.Lock()
	listener := f.listener
	conns := make([]*feedConn, 0, len(f.conns))
	for fc := range f.conns {
		conns = append(conns, fc)
	}
	f.mu.Unlock()

	var err error
	if listener != nil {
		err = listener.Close()
	}
	for _, fc := range conns {
		f.dropConn(fc)
	}
	f.wg.Wait()
	return err
}

func writeFrame(ctx context.Context, conn quic.Connection, data []byte) error {
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer func() { _ = stream.Close() }()
	return encoding.WriteLengthPrefixed(stream, data)
}

// FeedClient consumes a QUICFeed.
type FeedClient struct {
	conn quic.Connection
}

// DialFeed connects to a feed. The feed serves a self-signed certificate,
// so verification is skipped.
func DialFeed(ctx context.Context, addr string) (*FeedClient, error) {
	tlsConf := &tls.Config{
		InsecureSkipVerify: true,
		NextProtos:         []string{feedProto},
	}
	conn, err := quic.DialAddr(ctx, addr, tlsConf, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &FeedClient{conn: conn}, nil
}

// Next blocks for the next frame.
func (c *FeedClient) Next(ctx context.Context) (*Frame, error) {
	stream, err := c.conn.AcceptStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("accept stream: %w", err)
	}

	data, err := encoding.ReadLengthPrefixed(stream, maxFrameSize)
	if err != nil {
		return nil, err
	}

	frame := &Frame{}
	if err := frame.Deserialize(data); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return frame, nil
}

// Close closes the subscription with a normal status.
func (c *FeedClient) Close() error {
	return c.conn.CloseWithError(0, "done")
}

// GenerateTLSConfig builds a self-signed certificate for the feed listener.
func GenerateTLSConfig() (*tls.Config, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"Sandlot Sluggers"},
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}
	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}
	privBytes, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, err
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes})
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: derBytes})

	tlsCert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{tlsCert},
		NextProtos:   []string{feedProto},
	}, nil
}
