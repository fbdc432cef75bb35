package localserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/yndnr/poold/internal/infra/buildinfo"
	"github.com/yndnr/poold/internal/telemetry/logger"
)

// maxLineSize bounds a single control command.
const maxLineSize = 4096

// Commands lists the control commands understood by Handler.
var Commands = []string{"ping", "status", "version", "help"}

// Handler handles local control commands, one per line.
type Handler struct {
	stats       func() Stats
	idleTimeout time.Duration
}

// NewHandler creates a control handler. stats may be nil.
func NewHandler(stats func() Stats, idleTimeout time.Duration) *Handler {
	return &Handler{
		stats:       stats,
		idleTimeout: idleTimeout,
	}
}

// ServeConn reads newline-terminated commands from conn and writes one
// reply line per command until the peer closes, the idle timeout fires
// or ctx is cancelled.
func (h *Handler) ServeConn(ctx context.Context, conn net.Conn) {
	log := logger.L(ctx)

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 256), maxLineSize)

	for {
		if ctx.Err() != nil {
			return
		}
		if h.idleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(h.idleTimeout))
		}
		if !sc.Scan() {
			err := sc.Err()
			switch {
			case err == nil, errors.Is(err, net.ErrClosed):
			case errors.Is(err, os.ErrDeadlineExceeded):
				log.Debug("connection idle, closing", "idle_timeout", h.idleTimeout)
			case errors.Is(err, bufio.ErrTooLong):
				_, _ = io.WriteString(conn, "error: line too long\n")
			default:
				log.Debug("read failed", "error", err)
			}
			return
		}

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if err := h.Execute(conn, fields[0], fields[1:]); err != nil {
			log.Debug("write reply failed", "error", err)
			return
		}
	}
}

// Execute executes a control command and writes a single reply line.
func (h *Handler) Execute(w io.Writer, cmd string, args []string) error {
	switch cmd {
	case "ping":
		return reply(w, "pong")
	case "status":
		return h.handleStatus(w)
	case "version":
		return reply(w, buildinfo.String())
	case "help":
		return reply(w, "commands: "+strings.Join(Commands, " "))
	default:
		return reply(w, "error: unknown command")
	}
}

func (h *Handler) handleStatus(w io.Writer) error {
	if h.stats == nil {
		return reply(w, "ok")
	}
	st := h.stats()
	return reply(w, fmt.Sprintf("ok addr=%s active=%d accepted=%d rejected=%d uptime=%s",
		st.Addr, st.Active, st.Accepted, st.Rejected, st.Uptime.Truncate(time.Second)))
}

func reply(w io.Writer, line string) error {
	_, err := io.WriteString(w, line+"\n")
	return err
}
