package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/chess10kp/hexpanel/internal/config"
)

const usage = `Usage: panelctl <command>

  volume up|down|mute           on-screen volume keys
  brightness up|down            on-screen brightness keys
  toggle <name>                 start or stop a configured helper app
  subscribe                     print model change events until interrupted
  <domain>:<command> [args]     send a raw request, e.g. apps:list
`

func socketPath() string {
	if env, err := config.LoadEnv(); err == nil && env.Socket != "" {
		return env.Socket
	}
	return config.DefaultConfig.SocketPath
}

func dial() (net.Conn, error) {
	conn, err := net.DialTimeout("unix", socketPath(), 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to hexpanel socket: %w", err)
	}
	return conn, nil
}

func sendMessage(message string) (string, error) {
	conn, err := dial()
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(message + "\n")); err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return line, nil
}

func subscribe(out io.Writer) error {
	conn, err := dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("subscribe\n")); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	_, err = io.Copy(out, conn)
	return err
}

// translate maps the convenience commands onto requests.
func translate(args []string) (string, error) {
	switch args[0] {
	case "volume":
		if len(args) < 2 {
			return "", fmt.Errorf("usage: panelctl volume up|down|mute")
		}
		switch args[1] {
		case "up":
			return "osd:volup", nil
		case "down":
			return "osd:voldown", nil
		case "mute":
			return "osd:mute", nil
		}
		return "", fmt.Errorf("unknown volume action: %s", args[1])
	case "brightness":
		if len(args) < 2 {
			return "", fmt.Errorf("usage: panelctl brightness up|down")
		}
		switch args[1] {
		case "up":
			return "osd:dispup", nil
		case "down":
			return "osd:dispdown", nil
		}
		return "", fmt.Errorf("unknown brightness action: %s", args[1])
	case "toggle":
		if len(args) < 2 {
			return "", fmt.Errorf("usage: panelctl toggle <name>")
		}
		return "toggle:" + args[1], nil
	}
	return strings.Join(args, " "), nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	args := os.Args[1:]

	if args[0] == "subscribe" {
		if err := subscribe(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	message, err := translate(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	line, err := sendMessage(message)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var resp struct {
		OK    bool            `json:"ok"`
		Error string          `json:"error"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		fmt.Print(line)
		return
	}
	if !resp.OK {
		fmt.Fprintf(os.Stderr, "Error: %s\n", resp.Error)
		os.Exit(1)
	}
	if len(resp.Data) > 0 {
		fmt.Println(string(resp.Data))
	}
}
