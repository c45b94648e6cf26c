package catalog

import (
	"context"
	"os"
	"time"
)

// Watch reloads the catalog file on change and calls onUpdate with the
// latest version. It performs an initial load before entering the watch
// loop.
func Watch(ctx context.Context, path string, interval time.Duration, onUpdate func(*Catalog)) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	c, err := Load(path)
	if err != nil {
		return err
	}
	if onUpdate != nil {
		onUpdate(c)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	lastMod := info.ModTime()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				info, err := os.Stat(path)
				if err != nil {
					continue // transient errors
				}
				if !info.ModTime().After(lastMod) {
					continue
				}
				c, err := Load(path)
				if err != nil {
					continue
				}
				lastMod = info.ModTime()
				if onUpdate != nil {
					onUpdate(c)
				}
			}
		}
	}()

	return nil
}
