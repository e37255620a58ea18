// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/maruel/interrupt"
	"golang.org/x/net/websocket"
)

// Metadata describes a frame.
type Metadata struct {
	Index      int
	Timestamp  time.Time
	Size       string
	Width      int
	Height     int
	ColorSpace string
	// Length is the length of the frame as captured.
	Length int
}

// Frame is a captured frame, encoded as JPEG.
type Frame struct {
	JPEG     []byte
	Metadata Metadata
}

type WebServer struct {
	cond      sync.Cond
	frames    [30]*Frame // ~2 seconds worth of frames at 15fps.
	lastIndex int        // Index of the most recent frame.
	stopped   bool
}

func NewWebServer() *WebServer {
	return &WebServer{
		cond:      *sync.NewCond(&sync.Mutex{}),
		lastIndex: -1,
	}
}

func (s *WebServer) AddFrame(f *Frame) {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.lastIndex = (s.lastIndex + 1) % len(s.frames)
	s.frames[s.lastIndex] = f
	s.cond.Broadcast()
}

// Handler returns the HTTP handler serving the UI, the last still and the
// stream.
func (s *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.root)
	mux.HandleFunc("/favicon.ico", s.still)
	mux.HandleFunc("/still.jpg", s.still)
	mux.Handle("/stream", websocket.Handler(s.stream))
	return loggingHandler{mux}
}

func StartWebServer(port int) *WebServer {
	w := NewWebServer()
	fmt.Printf("Listening on %d\n", port)
	go http.ListenAndServe(fmt.Sprintf(":%d", port), w.Handler())
	go func() {
		<-interrupt.Channel
		w.stop()
	}()
	return w
}

// stop wakes up and terminates the streams.
func (s *WebServer) stop() {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.stopped = true
	s.cond.Broadcast()
}

func (s *WebServer) last() *Frame {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	if s.lastIndex == -1 {
		return nil
	}
	return s.frames[s.lastIndex]
}

func (s *WebServer) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	if _, err := w.Write(read("root.html")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *WebServer) still(w http.ResponseWriter, r *http.Request) {
	f := s.last()
	if f == nil {
		http.Error(w, "No frame yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Write(f.JPEG)
}

// stream sends all frames as WebSocket frames.
func (s *WebServer) stream(w *websocket.Conn) {
	log.Printf("websocket from %s", w.Request().RemoteAddr)
	defer w.Close()
	buf := &bytes.Buffer{}
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	lastIndex := s.lastIndex
	for !s.stopped {
		for ; !s.stopped && lastIndex != s.lastIndex; lastIndex = (lastIndex + 1) % len(s.frames) {
			f := s.frames[(lastIndex+1)%len(s.frames)]
			s.cond.L.Unlock()
			// Do the actual I/O without the lock.
			err := sendFrame(w, buf, f)
			s.cond.L.Lock()
			// To break out of the loop, the lock must be held.
			if err != nil {
				log.Printf("websocket err: %s", err)
				return
			}
		}
		s.cond.Wait()
	}
}

// sendFrame sends an "I" frame with the base64 encoded JPEG then a "M"
// frame with the JSON encoded metadata.
func sendFrame(w *websocket.Conn, buf *bytes.Buffer, f *Frame) error {
	defer buf.Reset()
	buf.WriteString("I")
	encoder := base64.NewEncoder(base64.StdEncoding, buf)
	encoder.Write(f.JPEG)
	encoder.Close()
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}
	buf.Reset()
	buf.WriteString("M")
	if err := json.NewEncoder(buf).Encode(&f.Metadata); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Private details.

type loggingHandler struct {
	handler http.Handler
}

type loggingResponseWriter struct {
	http.ResponseWriter
	length int
	status int
}

func (l *loggingResponseWriter) Write(data []byte) (size int, err error) {
	size, err = l.ResponseWriter.Write(data)
	l.length += size
	return
}

func (l *loggingResponseWriter) WriteHeader(status int) {
	l.ResponseWriter.WriteHeader(status)
	l.status = status
}

// Hijack is needed for websocket.
func (l *loggingResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h := l.ResponseWriter.(http.Hijacker)
	return h.Hijack()
}

// ServeHTTP logs each HTTP request if -verbose is passed.
func (l loggingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	lrw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}
	l.handler.ServeHTTP(lrw, r)
	log.Printf("%s - %3d %6db %4s %s\n", r.RemoteAddr, lrw.status, lrw.length, r.Method, r.RequestURI)
}
