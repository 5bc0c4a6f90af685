package osfiles

import (
	"log"

	"github.com/fsnotify/fsnotify"

	"mfsd/internal/mfs"
)

// registrar is the subset of *mfs.Server that DirSync needs. Registration
// happens from the watcher goroutine, concurrently with the server's own
// single-threaded serve loop; mfs.Server supports exactly this for its
// registry, and nothing else.
type registrar interface {
	RegisterFile(name string, reader, writer mfs.Handler) error
	UnregisterFile(name string) error
}

// DirSync keeps a server's file registry in sync with a root directory: it
// seeds the registry with the regular files that exist at Start, then
// watches root, registering every entry created or written directly inside
// it and unregistering entries that are removed or renamed. Entries added
// after Start are not filtered by type, so a directory or symlink created
// later is registered too (its reads and writes are refused by resolve). It is a demo/integration affordance, not
// part of the protocol core — nothing in internal/mfs depends on it.
type DirSync struct {
	root    string
	server  registrar
	maxSize uint32
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewDirSync prepares a watcher over root. Call Start to seed the registry
// and begin watching; call Close to stop.
func NewDirSync(root string, server registrar, maxSize uint32) (*DirSync, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &DirSync{root: root, server: server, maxSize: maxSize, watcher: w, done: make(chan struct{})}, nil
}

// Start registers every existing regular file under root, then begins
// watching root for further creates and removes in a background goroutine.
func (d *DirSync) Start() error {
	names, err := ScanRoot(d.root)
	if err != nil {
		return err
	}
	for _, name := range names {
		d.register(name)
	}
	if err := d.watcher.Add(d.root); err != nil {
		return err
	}
	go d.loop()
	return nil
}

// Close stops watching and releases the underlying fsnotify watcher. It
// does not unregister the files DirSync registered.
func (d *DirSync) Close() error {
	close(d.done)
	return d.watcher.Close()
}

func (d *DirSync) loop() {
	for {
		select {
		case <-d.done:
			return
		case ev, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			name := baseName(ev.Name)
			switch {
			case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
				d.register(name)
			case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
				if err := d.server.UnregisterFile(name); err != nil {
					log.Printf("osfiles: unregister %q: %v", name, err)
				}
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("osfiles: watch %s: %v", d.root, err)
		}
	}
}

func (d *DirSync) register(name string) {
	f := NewFile(d.root, name, d.maxSize)
	err := d.server.RegisterFile(name, f.Reader(), f.Writer())
	if err != nil && err != mfs.ErrNameTaken {
		log.Printf("osfiles: register %q: %v", name, err)
	}
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}
