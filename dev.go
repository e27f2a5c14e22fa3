package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
)

type resetter interface {
	Reset(rom []byte)
}

// devWatch watches romFile and, each time it is rewritten, loads it into
// r once the file has been quiet for settle. The returned function stops
// the watcher.
func devWatch(romFile string, r resetter, settle time.Duration) (stop func(), err error) {
	romFile = filepath.Clean(romFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(filepath.Dir(romFile)); err != nil {
		watcher.Close()
		return nil, err
	}

	quit := make(chan bool)
	go func() {
		var reload <-chan time.Time
		for {
			select {
			case <-reload:
				rom, err := os.ReadFile(romFile)
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				log.Printf("dev: reset %s", filepath.Base(romFile))
				r.Reset(rom)
			case ev := <-watcher.Event:
				if filepath.Clean(ev.Name) == romFile && !ev.IsAttrib() && !ev.IsDelete() {
					reload = time.After(settle)
				}
			case err := <-watcher.Error:
				log.Printf("dev: watcher: %v", err)
			case <-quit:
				return
			}
		}
	}()
	return func() {
		close(quit)
		watcher.Close()
	}, nil
}
