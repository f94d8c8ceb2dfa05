package pluginhost

import (
	"path/filepath"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"
)

// DescriptorWatcher watches the plugin descriptor file and signals a
// reload on every write, without the command socket's reload verb
// being involved.
type DescriptorWatcher struct {
	log      *logger.L
	watcher  *fsnotify.Watcher
	fileName string
	changed  chan struct{}
	done     chan struct{}
}

// NewDescriptorWatcher starts watching path's parent directory (the
// file itself may be replaced wholesale by some editors, which does
// not generate a Write event on the original inode).
func NewDescriptorWatcher(path string) (*DescriptorWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if nil != err {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if nil != err {
		w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); nil != err {
		w.Close()
		return nil, err
	}
	return &DescriptorWatcher{
		log:      logger.New("plugin-watcher"),
		watcher:  w,
		fileName: filepath.Base(abs),
		changed:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Changed delivers a signal (coalesced, capacity one) whenever the
// watched descriptor file is written or replaced.
func (w *DescriptorWatcher) Changed() <-chan struct{} {
	return w.changed
}

func (w *DescriptorWatcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != w.fileName {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				w.signal()
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.log.Warnf("watcher error: %s", err)
			case <-w.done:
				return
			}
		}
	}()
}

func (w *DescriptorWatcher) signal() {
	select {
	case w.changed <- struct{}{}:
	default:
	}
}

func (w *DescriptorWatcher) Stop() {
	close(w.done)
	w.watcher.Close()
}
