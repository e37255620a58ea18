// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSeeder(t *testing.T) {
	p := filepath.Join(t.TempDir(), "ov5640", "ov5640.json")
	if s := LoadSeeder(p); s != nil {
		t.Fatal("empty config")
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"ID\": 0,\n  \"Secret\": null,\n  \"Server\": \"\"\n}\n"
	if string(b) != want {
		t.Fatalf("%q", b)
	}

	if err := os.WriteFile(p, []byte(`{"ID":2,"Secret":"AQI=","Server":"example.com"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	s := LoadSeeder(p)
	if s == nil {
		t.Fatal("expected a seeder")
	}
	if s.config.ID != 2 || !bytes.Equal(s.config.Secret, []byte{1, 2}) {
		t.Fatalf("%#v", s.config)
	}
	if u := s.config.url(); u != "https://example.com/api/ov5640/v1/push" {
		t.Fatal(u)
	}
	if b, err = os.ReadFile(p); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("{\n  \"ID\": 2,")) {
		t.Fatalf("not normalized: %q", b)
	}
}

func TestSeeder_sendBatch(t *testing.T) {
	var got PushRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ov5640/v1/push" || r.Method != "POST" {
			http.Error(w, "bad", http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}))
	defer ts.Close()

	s := &Seeder{config: seederConfig{ID: 3, Secret: []byte("s"), Server: ts.URL}, client: ts.Client()}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	frames := []*Frame{
		{JPEG: testJPEG, Metadata: Metadata{Index: 7, Timestamp: now}},
		{JPEG: testJPEG, Metadata: Metadata{Index: 8, Timestamp: now}},
	}
	if err := s.sendBatch(frames); err != nil {
		t.Fatal(err)
	}
	if got.ID != 3 || len(got.Items) != 2 {
		t.Fatalf("%#v", got)
	}
	if !got.Items[0].Timestamp.Equal(now) || got.Items[1].Metadata.Index != 8 || !bytes.Equal(got.Items[1].JPEG, testJPEG) {
		t.Fatalf("%#v", got.Items)
	}

	s.config.Server = ts.URL + "/nope"
	if err := s.sendBatch(frames); err == nil {
		t.Fatal("expected failure")
	}
}
