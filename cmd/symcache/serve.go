package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/lpar/gzipped/v2"
	"golang.org/x/sync/errgroup"

	"github.com/symc/symcache"
	"github.com/symc/symcache/lookup"
)

const serveHelp = `symcache serve -listen :7080 -dir ./caches

Serve serves a directory of SymCache (and gzip-exported .symcache.gz)
files as static files, plus a /resolve endpoint answering address
lookups against a named cache without the caller needing the SymCache
library itself.`

// Copied from src/net/http/server.go, same as the teacher CLI's export
// verb: Accept sets TCP keepalive on every connection it hands back.
type tcpKeepAliveListener struct {
	*net.TCPListener
}

func (ln tcpKeepAliveListener) Accept() (c net.Conn, err error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return
	}
	tc.SetKeepAlive(true)
	return tc, nil
}

// cacheSet lazily opens and memoizes SymCache handles by file name so
// repeated /resolve calls against the same cache don't re-mmap it.
type cacheSet struct {
	dir string

	mu      sync.Mutex
	opened  map[string]*lookup.SymCache
}

func (cs *cacheSet) get(name string) (*lookup.SymCache, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if sc, ok := cs.opened[name]; ok {
		return sc, nil
	}
	sc, err := lookup.OpenFile(filepath.Join(cs.dir, name))
	if err != nil {
		return nil, err
	}
	if cs.opened == nil {
		cs.opened = make(map[string]*lookup.SymCache)
	}
	cs.opened[name] = sc
	return sc, nil
}

func (cs *cacheSet) closeAll() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for _, sc := range cs.opened {
		sc.Close()
	}
}

func (cs *cacheSet) resolveHandler(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("cache")
	addrParam := r.URL.Query().Get("addr")
	if name == "" || addrParam == "" {
		http.Error(w, "cache and addr query parameters are required", http.StatusBadRequest)
		return
	}
	addr, err := strconv.ParseUint(addrParam, 0, 32)
	if err != nil {
		http.Error(w, fmt.Sprintf("parsing addr: %v", err), http.StatusBadRequest)
		return
	}
	sc, err := cs.get(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	frames, err := lookup.Frames(sc, symcache.RelativeAddress(addr))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(frames)
}

func cmdServe(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("serve", flag.ExitOnError)
	var (
		listen = fset.String("listen", ":7080", "[host]:port listen address")
		dir    = fset.String("dir", ".", "directory of SymCache files to serve")
		gz     = fset.Bool("gzip", true, "serve precompressed .gz variants when present")
	)
	fset.Usage = usage(fset, serveHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", *listen)
	if err != nil {
		return err
	}
	addr := ln.Addr().String()
	log.Printf("serving %s on %s", *dir, addr)

	cs := &cacheSet{dir: *dir}
	defer cs.closeAll()

	mux := http.NewServeMux()
	if *gz {
		mux.Handle("/", gzipped.FileServer(http.Dir(*dir)))
	} else {
		mux.Handle("/", http.FileServer(http.Dir(*dir)))
	}
	mux.HandleFunc("/resolve", cs.resolveHandler)

	server := &http.Server{Addr: addr, Handler: mux}

	var eg errgroup.Group
	eg.Go(func() error { return server.Serve(tcpKeepAliveListener{ln.(*net.TCPListener)}) })
	eg.Go(func() error {
		<-ctx.Done()
		return server.Shutdown(ctx)
	})
	if err := eg.Wait(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
