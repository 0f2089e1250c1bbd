// Package redisbus fans cache sync messages out to peer nodes over redis
// pub/sub. Publish is shaped to plug straight into the engine's broadcast
// hook; Run drives the subscribe side and applies remote frames through
// Cache.ApplySync so they are never rebroadcast.
package redisbus

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/sidecache"
	"github.com/unkn0wn-root/sidecache/codec"
)

const (
	defaultChannel = "sidecache:sync"

	// defaultMaxFrame bounds incoming frames; the channel is shared, so a
	// misbehaving peer must not be able to feed unbounded payloads into
	// every subscriber.
	defaultMaxFrame = 1 << 20
)

// frameCodec is the wire format for sync frames.
var frameCodec = codec.Msgpack[sidecache.SyncMessage]{}

var (
	ErrNilClient = errors.New("redisbus: nil client")
	ErrNilCache  = errors.New("redisbus: nil cache")
)

type Config struct {
	Client goredis.UniversalClient
	Cache  sidecache.Cache
	// NodeID must match the engine's NodeID; frames carrying it are dropped
	// to guard against rebroadcast loops.
	NodeID        string
	Channel       string // "" => "sidecache:sync"
	Logger        sidecache.Logger
	CloseClient   bool // set true only if this bus exclusively owns the client
	MaxFrameBytes int  // incoming frame size cap; 0 => 1 MiB
}

type Bus struct {
	rdb         goredis.UniversalClient
	cache       sidecache.Cache
	nodeID      string
	channel     string
	log         sidecache.Logger
	closeClient bool
	dec         codec.Codec[sidecache.SyncMessage]
	sub         *goredis.PubSub
}

func New(cfg Config) (*Bus, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.Cache == nil {
		return nil, ErrNilCache
	}
	b := &Bus{
		rdb:         cfg.Client,
		cache:       cfg.Cache,
		nodeID:      cfg.NodeID,
		channel:     cfg.Channel,
		log:         cfg.Logger,
		closeClient: cfg.CloseClient,
	}
	if b.channel == "" {
		b.channel = defaultChannel
	}
	if b.log == nil {
		b.log = sidecache.NopLogger{}
	}
	maxFrame := cfg.MaxFrameBytes
	if maxFrame <= 0 {
		maxFrame = defaultMaxFrame
	}
	b.dec = codec.Limit[sidecache.SyncMessage]{Inner: frameCodec, MaxDecode: maxFrame}
	return b, nil
}

// Publish sends msg to peers. It satisfies sidecache.BroadcastFunc; publish
// failures are logged, never surfaced, so a flaky peer channel cannot break
// local cache mutations.
func (b *Bus) Publish(ctx context.Context, msg sidecache.SyncMessage) {
	frame, err := frameCodec.Encode(msg)
	if err != nil {
		b.log.Error("sync frame encode failed", sidecache.Fields{"key": msg.Key, "err": err})
		return
	}
	if err := b.rdb.Publish(ctx, b.channel, frame).Err(); err != nil {
		b.log.Error("sync publish failed", sidecache.Fields{"key": msg.Key, "err": err})
	}
}

// Run subscribes and applies peer frames until ctx is cancelled or the
// subscription channel closes.
func (b *Bus) Run(ctx context.Context) error {
	b.sub = b.rdb.Subscribe(ctx, b.channel)
	ch := b.sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			b.handle([]byte(m.Payload))
		}
	}
}

func (b *Bus) handle(frame []byte) {
	msg, err := b.dec.Decode(frame)
	if err != nil {
		b.log.Warn("dropping undecodable sync frame", sidecache.Fields{"err": err})
		return
	}
	if msg.Origin == b.nodeID {
		return // own frame echoed back
	}
	b.cache.ApplySync(msg)
}

// Close stops the subscription and releases the underlying client only when
// this bus owns it. Safe to call multiple times.
func (b *Bus) Close() error {
	if b.sub != nil {
		if err := b.sub.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	if b.closeClient {
		if err := b.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
