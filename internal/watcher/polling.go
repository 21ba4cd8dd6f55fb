package watcher

import (
	"context"
	"os"
	"time"
)

type fileSnapshot struct {
	modTime time.Time
	size    int64
}

// poller detects changes by listing the folder at a fixed interval.
type poller struct {
	dir   string
	opts  Options
	state map[string]fileSnapshot
}

func newPoller(dir string, opts Options) (*poller, error) {
	p := &poller{dir: dir, opts: opts}
	state, err := p.scan()
	if err != nil {
		return nil, err
	}
	p.state = state
	return p, nil
}

// scan lists matching regular files of the folder.
func (p *poller) scan() (map[string]fileSnapshot, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, err
	}

	state := make(map[string]fileSnapshot, len(entries))
	for _, e := range entries {
		if e.IsDir() || !p.opts.matches(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		state[e.Name()] = fileSnapshot{modTime: info.ModTime(), size: info.Size()}
	}
	return state, nil
}

// diff compares a new listing with the previous one.
func (p *poller) diff(current map[string]fileSnapshot) []FileEvent {
	now := time.Now()
	var events []FileEvent

	for name, cur := range current {
		prev, ok := p.state[name]
		switch {
		case !ok:
			events = append(events, FileEvent{Path: name, Operation: OpCreate, Timestamp: now})
		case !prev.modTime.Equal(cur.modTime) || prev.size != cur.size:
			events = append(events, FileEvent{Path: name, Operation: OpModify, Timestamp: now})
		}
	}
	for name := range p.state {
		if _, ok := current[name]; !ok {
			events = append(events, FileEvent{Path: name, Operation: OpDelete, Timestamp: now})
		}
	}

	p.state = current
	return events
}

// run polls until ctx is done or stop is closed.
func (p *poller) run(ctx context.Context, stop <-chan struct{}, emit func(FileEvent), fail func(error)) {
	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			current, err := p.scan()
			if err != nil {
				fail(err)
				continue
			}
			for _, e := range p.diff(current) {
				emit(e)
			}
		}
	}
}
