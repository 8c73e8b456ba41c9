package config

import (
	"context"
	"os"
	"sync"
	"time"
)

// DefaultWatchInterval is how often Watch looks at the settings file.
const DefaultWatchInterval = 2 * time.Second

// TokenReader returns a function that loads the settings file at path on
// every call and reports its token, environment override included. While the
// file fails to load it keeps reporting the last token it read, starting
// with initial. onError may be nil.
func TokenReader(path, initial string, onError func(error)) func() string {
	var (
		mu   sync.Mutex
		last = initial
	)
	return func() string {
		cfg, err := Load(path)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return last
		}
		last = cfg.Token
		return last
	}
}

type fileStamp struct {
	exists  bool
	size    int64
	modTime int64
}

func stampOf(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{exists: true, size: info.Size(), modTime: info.ModTime().UnixNano()}
}

// Watch checks the settings file at path every interval and calls onChange
// when the file appears, disappears or its size or modification time moves.
// It blocks until ctx ends. An interval <= 0 uses DefaultWatchInterval.
func Watch(ctx context.Context, path string, interval time.Duration, onChange func()) {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	last := stampOf(path)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if cur := stampOf(path); cur != last {
				last = cur
				onChange()
			}
		}
	}
}
