package config

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/prisma/engine/core"
)

/**
 * @brief Watches the pipeline configuration file and reloads it on write.
 * A reload that fails validation keeps the previous settings; broken edits
 * never reach the renderer mid-session.
 */
type Watcher struct {
	path string

	mutex   sync.RWMutex
	current *PipelineConfig

	done      chan struct{}
	fsnotify  *fsnotify.Watcher
	isStarted bool
	isClosed  bool
}

func NewWatcher(path string, initial *PipelineConfig) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     path,
		current:  initial,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}
	return w, nil
}

func (w *Watcher) Start() error {
	if w.isClosed {
		return errors.New("config watcher already closed")
	}
	// Watch the directory; editors replace files instead of writing in place.
	if err := w.fsnotify.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.isStarted = true
	go w.start()
	return nil
}

// Current returns the most recent valid configuration.
func (w *Watcher) Current() *PipelineConfig {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.current
}

func (w *Watcher) Close() error {
	if w.isClosed {
		return errors.New("config watcher already closed")
	}
	w.isClosed = true
	close(w.done)
	// The goroutine owns the fs watcher once started; before that nobody
	// else would ever close it.
	if !w.isStarted {
		return w.fsnotify.Close()
	}
	return nil
}

func (w *Watcher) start() {
	for {
		select {

		case e := <-w.fsnotify.Events:
			if filepath.Clean(e.Name) != filepath.Clean(w.path) {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				core.LogWarn("pipeline config reload rejected, keeping previous settings: %s", err.Error())
				continue
			}
			w.mutex.Lock()
			w.current = cfg
			w.mutex.Unlock()
			core.LogInfo("pipeline config reloaded from '%s'", w.path)
			core.EventFire(core.EventContext{
				Type: core.EVENT_CODE_PIPELINE_CONFIG_RELOADED,
				Data: cfg,
			})

		case e := <-w.fsnotify.Errors:
			core.LogError(e.Error())

		case <-w.done:
			w.fsnotify.Close()
			return
		}
	}
}
