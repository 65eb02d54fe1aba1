// Package main provides a console client for the gridroom server. It
// speaks the fixed-size frame protocol over a single TCP connection,
// printing grid snapshots and chat as they arrive while reading
// commands from standard input.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/gridroom/gridroom/internal/protocol"
)

const usage = `commands:
  /newroom <name>    create a room
  /join <name>       join a room (leaves the current one)
  /move <vx> <vy>    set your velocity in cells per tick
  /chat <text>       send chat to your room
  /kick <player id>  remove a player from your room
  /quit              disconnect
anything not starting with / is sent as chat`

func main() {
	addr := flag.String("addr", "localhost:1234", "server address")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("connecting to %s: %v", *addr, err)
	}
	defer conn.Close()

	fmt.Printf("connected to %s\n%s\n", *addr, usage)

	done := make(chan struct{})
	go receive(conn, done)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		pkt, quit, err := parseCommand(line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if quit {
			break
		}
		if err := protocol.WriteFrame(conn, pkt); err != nil {
			log.Fatalf("sending frame: %v", err)
		}
	}
	conn.Close()
	<-done
}

// parseCommand turns one input line into a packet. The quit return is
// true for /quit, in which case the packet is unused.
func parseCommand(line string) (protocol.Packet, bool, error) {
	if !strings.HasPrefix(line, "/") {
		return protocol.Packet{Type: protocol.TypeChat, Payload: line}, false, nil
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch cmd {
	case "/quit":
		return protocol.Packet{}, true, nil
	case "/newroom":
		if rest == "" {
			return protocol.Packet{}, false, fmt.Errorf("usage: /newroom <name>")
		}
		return protocol.Packet{Type: protocol.TypeNewRoom, Payload: rest}, false, nil
	case "/join":
		if rest == "" {
			return protocol.Packet{}, false, fmt.Errorf("usage: /join <name>")
		}
		return protocol.Packet{Type: protocol.TypeJoinRoom, Payload: rest}, false, nil
	case "/chat":
		return protocol.Packet{Type: protocol.TypeChat, Payload: rest}, false, nil
	case "/move":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return protocol.Packet{}, false, fmt.Errorf("usage: /move <vx> <vy>")
		}
		vx, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return protocol.Packet{}, false, fmt.Errorf("bad vx %q", fields[0])
		}
		vy, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return protocol.Packet{}, false, fmt.Errorf("bad vy %q", fields[1])
		}
		return protocol.Packet{
			Type:    protocol.TypeInput,
			Payload: protocol.FormatInput(vx, vy),
		}, false, nil
	case "/kick":
		id, err := strconv.ParseInt(rest, 10, 32)
		if err != nil {
			return protocol.Packet{}, false, fmt.Errorf("usage: /kick <player id>")
		}
		return protocol.Packet{
			Type:    protocol.TypeKick,
			Payload: protocol.FormatKick(int32(id)),
		}, false, nil
	default:
		return protocol.Packet{}, false, fmt.Errorf("unknown command %s\n%s", cmd, usage)
	}
}

// receive prints server frames until the connection closes.
func receive(conn net.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		pkt, err := protocol.ReadFrame(conn)
		if err != nil {
			fmt.Println("disconnected")
			return
		}
		switch pkt.Type {
		case protocol.TypeStateUpdate:
			fmt.Printf("--- you are player %d ---\n%s\n", pkt.PlayerID, pkt.Payload)
		case protocol.TypeChat:
			fmt.Printf("[chat] player %d: %s\n", pkt.PlayerID, pkt.Payload)
		case protocol.TypeKick:
			fmt.Printf("removed from room %s\n", pkt.Payload)
		default:
			fmt.Printf("[%s] %s\n", pkt.Type, pkt.Payload)
		}
	}
}
