// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/maruel/interrupt"
)

// PushRequestItem is one frame sent to the remote server.
type PushRequestItem struct {
	Timestamp time.Time
	JPEG      []byte
	Metadata  Metadata
}

// PushRequest is the body of a POST to /api/ov5640/v1/push.
type PushRequest struct {
	ID     int64
	Secret []byte
	Items  []PushRequestItem
}

// Seeder pushes frames to a remote server.
type Seeder struct {
	config seederConfig
	client *http.Client

	mu    sync.Mutex
	stats SeederStats
}

// seederConfig is stored as ~/.config/ov5640/ov5640.json.
type seederConfig struct {
	ID     int64
	Secret []byte
	// Server is the host to push to. Use "http://host" to not use TLS.
	Server string
}

type SeederStats struct {
	FramesSent int
	HTTPReqs   int
	Failures   int
}

func (s *seederConfig) isValid() bool {
	return s.ID != 0 && len(s.Secret) != 0 && len(s.Server) != 0
}

func (s *seederConfig) url() string {
	if strings.Contains(s.Server, "://") {
		return s.Server + "/api/ov5640/v1/push"
	}
	return "https://" + s.Server + "/api/ov5640/v1/push"
}

func (s *Seeder) Stats() SeederStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// sendFrames pushes the frames received on c until interrupted.
func (s *Seeder) sendFrames(c <-chan *Frame) {
	frames := make([]*Frame, 0, 30)
	for {
		// Block for the first frame, then grab what is pending. Do not send more
		// than 30 frames at a time.
		frames = frames[:0]
		select {
		case f := <-c:
			frames = append(frames, f)
		case <-interrupt.Channel:
			return
		}
		for loop := true; loop && len(frames) < cap(frames); {
			select {
			case f := <-c:
				frames = append(frames, f)
			default:
				loop = false
			}
		}
		err := s.sendBatch(frames)
		s.mu.Lock()
		s.stats.HTTPReqs++
		if err != nil {
			log.Printf("Failed to push frames: %s", err)
			s.stats.Failures++
		} else {
			s.stats.FramesSent += len(frames)
		}
		s.mu.Unlock()
	}
}

func (s *Seeder) sendBatch(frames []*Frame) error {
	req := &PushRequest{
		ID:     s.config.ID,
		Secret: s.config.Secret,
		Items:  make([]PushRequestItem, len(frames)),
	}
	for i, f := range frames {
		req.Items[i] = PushRequestItem{Timestamp: f.Metadata.Timestamp.UTC(), JPEG: f.JPEG, Metadata: f.Metadata}
	}
	var w bytes.Buffer
	if err := json.NewEncoder(&w).Encode(req); err != nil {
		return err
	}
	resp, err := s.client.Post(s.config.url(), "application/json", &w)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status %s", resp.Status)
	}
	return nil
}

// configPath returns ~/.config/ov5640/ov5640.json.
func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ov5640", "ov5640.json"), nil
}

// LoadSeeder loads the config at path or create one if none exists.
//
// It returns nil if the config is not filled in.
func LoadSeeder(path string) *Seeder {
	s := &Seeder{client: &http.Client{Timeout: time.Minute}}
	srcData, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(srcData, &s.config); err != nil {
			log.Printf("%s is invalid json: %s", path, err)
		}
	}

	// Normalizes the config file.
	data, err := json.MarshalIndent(&s.config, "", "  ")
	if err != nil {
		panic(err)
	}
	data = append(data, '\n')
	if !bytes.Equal(srcData, data) {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			log.Printf("failed to create %s: %s", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			log.Printf("failed to write %s: %s", path, err)
		}
	}
	if !s.config.isValid() {
		return nil
	}
	fmt.Printf("Sending to %s as ID %d\n", s.config.Server, s.config.ID)
	return s
}
