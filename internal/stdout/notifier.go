package stdout

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/turbolytics/formsync/internal"
)

// Notifier writes every change as a JSON line, stdout unless configured.
type Notifier struct {
	mu    sync.Mutex
	w     io.Writer
	stats internal.NotifierStats
}

func New(w io.Writer) *Notifier {
	if w == nil {
		w = os.Stdout
	}
	return &Notifier{w: w}
}

func (n *Notifier) Notify(ctx context.Context, change internal.ChoicesReplaced) error {
	bs, err := json.Marshal(change)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := n.w.Write(append(bs, '\n')); err != nil {
		n.stats.WriteErrorCount++
		n.stats.LastError = err.Error()
		return err
	}
	n.stats.TotalMessages++
	n.stats.LastWriteAt = time.Now()
	n.stats.LastError = ""
	return nil
}

func (n *Notifier) Stats() internal.NotifierStats {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stats
}

func (n *Notifier) Close(ctx context.Context) error {
	return nil
}

var (
	_ internal.Notifier      = (*Notifier)(nil)
	_ internal.StatsReporter = (*Notifier)(nil)
)
