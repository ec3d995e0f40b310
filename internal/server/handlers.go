// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dacolabs/jsonforms-go/editor"
	"github.com/dacolabs/jsonforms-go/jsonschema"
	"github.com/dacolabs/jsonforms-go/jsonvalue"
	"github.com/dacolabs/jsonforms-go/uischema"
)

// getState returns the current state document
func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	state, version := s.session.State()
	writeJSON(w, http.StatusOK, stateDocument(state, version))
}

// getSchema returns the current schema as JSON, or YAML with ?format=yaml
func (s *Server) getSchema(w http.ResponseWriter, r *http.Request) {
	state, _ := s.session.State()
	if state.Schema == nil {
		writeError(w, http.StatusNotFound, "no schema loaded")
		return
	}
	writeDocument(w, r, jsonschema.ToRaw(state.Schema))
}

// getUISchema returns the current UI schema as JSON, or YAML with ?format=yaml
func (s *Server) getUISchema(w http.ResponseWriter, r *http.Request) {
	state, _ := s.session.State()
	if state.UISchema == nil {
		writeError(w, http.StatusNotFound, "no UI schema loaded")
		return
	}
	writeDocument(w, r, uischema.ToRaw(state.UISchema))
}

// postAction applies one action to the session
func (s *Server) postAction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	action, err := editor.DecodeAction(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.session.Dispatch(action)
	if err != nil {
		writeError(w, actionStatus(err), err.Error())
		return
	}
	doc := stateDocument(res.State, res.Version)
	doc.Set("changed", res.Changed)
	writeJSON(w, http.StatusOK, doc)
}

// actionStatus maps a rejected action to an HTTP status.
func actionStatus(err error) int {
	switch {
	case errors.Is(err, editor.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, editor.ErrIllegalMove),
		errors.Is(err, editor.ErrIllegalDrop),
		errors.Is(err, editor.ErrNotContainer),
		errors.Is(err, editor.ErrNotControl),
		errors.Is(err, editor.ErrDetailLink):
		return http.StatusConflict
	}
	// documents that do not build
	return http.StatusUnprocessableEntity
}

// streamState sends the state document on connect and after every change
func (s *Server) streamState(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	s.session.subscribe(conn)
	defer s.session.unsubscribe(conn)

	// Clients do not send anything; reading detects the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// healthCheck returns server health status
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	state, version := s.session.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"version":      version,
		"has_schema":   state.Schema != nil,
		"has_uischema": state.UISchema != nil,
		"timestamp":    time.Now(),
	})
}

func writeDocument(w http.ResponseWriter, r *http.Request, doc any) {
	if r.URL.Query().Get("format") == "yaml" {
		data, err := jsonvalue.MarshalYAML(doc)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(data)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
