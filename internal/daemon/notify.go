package daemon

import (
	sddaemon "github.com/coreos/go-systemd/v22/daemon"

	"github.com/yndnr/poold/internal/telemetry/logger"
)

// notifier reports lifecycle state to the service manager. It is a no-op
// when NOTIFY_SOCKET is not set.
type notifier struct {
	log    logger.Logger
	notify func(unsetEnv bool, state string) (bool, error)
}

func newNotifier(log logger.Logger, notify func(bool, string) (bool, error)) *notifier {
	if notify == nil {
		notify = sddaemon.SdNotify
	}
	return &notifier{log: log, notify: notify}
}

func (n *notifier) ready() {
	n.send(sddaemon.SdNotifyReady)
}

func (n *notifier) stopping() {
	n.send(sddaemon.SdNotifyStopping)
}

func (n *notifier) send(state string) {
	sent, err := n.notify(false, state)
	switch {
	case err != nil:
		n.log.Warn("sd_notify failed", "state", state, "error", err)
	case sent:
		n.log.Debug("sd_notify sent", "state", state)
	}
}
