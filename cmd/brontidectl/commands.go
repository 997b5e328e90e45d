package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/olaviolacerda/node-lightning/brontide"
	"github.com/olaviolacerda/node-lightning/crypto"
	"github.com/spf13/cobra"
)

var (
	keyHex     string
	remoteHex  string
	listenAddr string
	dialAddr   string
	timeout    time.Duration
)

// Execute builds and runs the brontidectl command tree: a small loopback
// demo of the BOLT #8 handshake and transport cipher over real TCP
// connections.
func Execute() error {
	root := &cobra.Command{
		Use:   "brontidectl",
		Short: "Drive a Noise_XK_secp256k1_ChaChaPoly_SHA256 handshake over TCP",
	}
	root.PersistentFlags().DurationVar(&timeout, "handshake-timeout", 30*time.Second, "handshake deadline")

	root.AddCommand(genKeyCmd(), listenCmd(), dialCmd())
	return root.Execute()
}

func genKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genkey",
		Short: "Generate a static key pair and print it hex-encoded",
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := crypto.GeneratePair()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "priv=%x\npub=%x\n", kp.Priv, kp.Pub)
			return nil
		},
	}
}

func listenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Accept one connection, complete the responder handshake, and echo lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := staticKeyFromFlag()
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return err
			}
			defer ln.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s, static pub=%x\n", ln.Addr(), ls.Pub)

			nc, err := ln.Accept()
			if err != nil {
				return err
			}
			defer nc.Close()

			conn, err := brontide.Accept(nc, ls, brontide.Config{HandshakeTimeout: timeout})
			if err != nil {
				return fmt.Errorf("brontidectl: responder handshake: %w", err)
			}
			defer conn.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "handshake complete, remote static=%x\n", conn.RemoteStatic())

			return echoLines(cmd.OutOrStdout(), conn)
		},
	}
	cmd.Flags().StringVar(&keyHex, "key", "", "hex-encoded 32-byte static private key (generated if empty)")
	cmd.Flags().StringVar(&listenAddr, "addr", "127.0.0.1:0", "address to listen on")
	return cmd
}

func dialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dial",
		Short: "Connect to a listener, complete the initiator handshake, and send stdin lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := staticKeyFromFlag()
			if err != nil {
				return err
			}
			remote, err := remoteStaticFromFlag()
			if err != nil {
				return err
			}

			conn, err := brontide.Dial("tcp", dialAddr, ls, remote, brontide.Config{HandshakeTimeout: timeout})
			if err != nil {
				return fmt.Errorf("brontidectl: initiator handshake: %w", err)
			}
			defer conn.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "handshake complete, remote static=%x\n", conn.RemoteStatic())

			return sendLines(cmd.InOrStdin(), conn)
		},
	}
	cmd.Flags().StringVar(&keyHex, "key", "", "hex-encoded 32-byte static private key (generated if empty)")
	cmd.Flags().StringVar(&remoteHex, "remote", "", "hex-encoded 33-byte remote static public key")
	cmd.Flags().StringVar(&dialAddr, "addr", "", "address to connect to")
	cmd.MarkFlagRequired("remote")
	cmd.MarkFlagRequired("addr")
	return cmd
}

func staticKeyFromFlag() (*crypto.KeyPair, error) {
	if keyHex == "" {
		return crypto.GeneratePair()
	}
	b, err := hex.DecodeString(keyHex)
	if err != nil || len(b) != 32 {
		return nil, fmt.Errorf("brontidectl: --key must be 32 hex-encoded bytes")
	}
	var priv [32]byte
	copy(priv[:], b)
	return crypto.FromPrivate(priv)
}

func remoteStaticFromFlag() ([33]byte, error) {
	b, err := hex.DecodeString(remoteHex)
	if err != nil || len(b) != 33 {
		return [33]byte{}, fmt.Errorf("brontidectl: --remote must be 33 hex-encoded bytes")
	}
	var pub [33]byte
	copy(pub[:], b)
	return pub, nil
}

// echoLines reads length-prefixed application messages from conn and writes
// each one back, until the peer closes the connection.
func echoLines(w io.Writer, conn *brontide.Conn) error {
	buf := make([]byte, 65535)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		fmt.Fprintf(w, "received: %s", buf[:n])
		if _, err := conn.Write(buf[:n]); err != nil {
			return err
		}
	}
}

// sendLines writes each line from r to conn as a single transport message.
func sendLines(r io.Reader, conn *brontide.Conn) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := append(scanner.Bytes(), '\n')
		if _, err := conn.Write(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
