// Package main 提供一个可运行的 xnode 烟雾测试程序：在同一进程内组装
// 两个节点（经 MemNetwork 互联，避免重新引入已经移出核心范围的具体
// 传输实现），走完连接建立、双向 PoR 互认证与一条 XStream 的完整流程。
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/xcore-net/xcore/config"
	"github.com/xcore-net/xcore/internal/core/eventbus"
	"github.com/xcore-net/xcore/internal/core/host"
	"github.com/xcore-net/xcore/internal/core/identity"
	"github.com/xcore-net/xcore/internal/core/metrics"
	"github.com/xcore-net/xcore/internal/swarmloop"
	"github.com/xcore-net/xcore/internal/xauth"
	"github.com/xcore-net/xcore/pkg/lib/log"
	"github.com/xcore-net/xcore/pkg/types"
)

var logger = log.Logger("cmd/xnode")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	idA, err := identity.Generate()
	if err != nil {
		return fmt.Errorf("generate identity a: %w", err)
	}
	idB, err := identity.Generate()
	if err != nil {
		return fmt.Errorf("generate identity b: %w", err)
	}

	mem := host.NewMemNetwork()
	reg := metrics.NewRegistry(nil)

	// owner 以自己的私钥为自己签发一张 PoR：本演示里每个节点既是
	// owner 又是被授权的 peer，贴近单机自证身份的最简场景。
	porFor := func(id *identity.Identity) xauth.PoRSupplier {
		return func(peer types.PeerID) (xauth.ProofOfRepresentation, error) {
			now := time.Now()
			return xauth.Sign(id.PublicKeyBytes(), peer, now, now.Add(time.Hour), id.Sign)
		}
	}

	nodeA, err := swarmloop.NewNode(swarmloop.NodeConfig{
		Identity:        idA,
		Config:          config.DefaultConfig(),
		Dialer:          mem.Dialer(idA.PeerID()),
		ListenerFactory: mem.ListenerFactory(idA.PeerID()),
		SupplyPoR:       porFor(idA),
		OwnMetadata:     map[string]string{"node": "a"},
		Metrics:         reg,
	})
	if err != nil {
		return fmt.Errorf("build node a: %w", err)
	}
	nodeB, err := swarmloop.NewNode(swarmloop.NodeConfig{
		Identity:        idB,
		Config:          config.DefaultConfig(),
		Dialer:          mem.Dialer(idB.PeerID()),
		ListenerFactory: mem.ListenerFactory(idB.PeerID()),
		SupplyPoR:       porFor(idB),
		OwnMetadata:     map[string]string{"node": "b"},
	})
	if err != nil {
		return fmt.Errorf("build node b: %w", err)
	}

	subA := nodeA.Subscribe()
	subB := nodeB.Subscribe()
	nodeA.Start()
	nodeB.Start()
	defer nodeA.Stopper().Stop()
	defer nodeB.Stopper().Stop()

	listenAddr, err := types.NewMultiaddr("/ip4/127.0.0.1/tcp/4242")
	if err != nil {
		return fmt.Errorf("parse listen addr: %w", err)
	}
	if _, err := nodeB.Commander().ListenOn(listenAddr); err != nil {
		return fmt.Errorf("node b listen: %w", err)
	}

	conn, err := nodeA.Commander().Dial(idB.PeerID(), listenAddr)
	if err != nil {
		return fmt.Errorf("node a dial node b: %w", err)
	}
	logger.Info("dialed node b", "conn_id", conn.ID(), "peer", idB.PeerID().ShortString())

	if err := waitForMutualAuth(subA, subB, 5*time.Second); err != nil {
		return err
	}
	logger.Info("mutual authentication complete", "peer_a", idA.PeerID().ShortString(), "peer_b", idB.PeerID().ShortString())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	streamOpened := make(chan struct{})
	go func() {
		for ev := range subB.Events() {
			if _, ok := ev.(swarmloop.IncomingStream); ok {
				close(streamOpened)
				return
			}
		}
	}()

	stream, err := nodeA.Commander().OpenStream(ctx, conn)
	if err != nil {
		return fmt.Errorf("open xstream: %w", err)
	}
	if err := stream.WriteAll([]byte("hello from xnode a")); err != nil {
		return fmt.Errorf("write xstream: %w", err)
	}
	if err := stream.Flush(); err != nil {
		return fmt.Errorf("flush xstream: %w", err)
	}
	logger.Info("opened xstream and wrote payload", "stream_id", stream.ID())

	select {
	case <-streamOpened:
		logger.Info("node b observed the incoming stream")
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timed out waiting for node b to see the incoming stream")
	}

	state, err := nodeA.Commander().GetNetworkState()
	if err != nil {
		return fmt.Errorf("get network state: %w", err)
	}
	logger.Info("final network state", "connected_peers", len(state.ConnectedPeers), "authenticated_peers", len(state.AuthenticatedPeers))
	return nil
}

// waitForMutualAuth 阻塞到两个节点都观察到对方的 PeerAuthenticated，或超时
func waitForMutualAuth(subA, subB *eventbus.Subscription[swarmloop.Event], deadline time.Duration) error {
	timeout := time.After(deadline)
	seen := 0
	for seen < 2 {
		select {
		case ev := <-subA.Events():
			if _, ok := ev.(swarmloop.PeerAuthenticated); ok {
				seen++
			}
		case ev := <-subB.Events():
			if _, ok := ev.(swarmloop.PeerAuthenticated); ok {
				seen++
			}
		case <-timeout:
			return fmt.Errorf("timed out waiting for mutual authentication")
		}
	}
	return nil
}
