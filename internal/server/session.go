// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dacolabs/jsonforms-go/editor"
	"github.com/dacolabs/jsonforms-go/jsonschema"
	"github.com/dacolabs/jsonforms-go/jsonvalue"
	"github.com/dacolabs/jsonforms-go/uischema"
)

// writeWait bounds a single write to a state stream. Writes happen while
// the session is locked, so a client that stops reading must not stall
// every later action.
const writeWait = 10 * time.Second

// Session is one editing session shared by all clients of a server.
// Actions are applied one at a time, in arrival order.
type Session struct {
	mu      sync.Mutex
	editor  *editor.Editor
	state   editor.State
	version int
	metrics *Metrics

	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
}

// NewSession starts a session at state.
func NewSession(ed *editor.Editor, state editor.State, metrics *Metrics) *Session {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	metrics.observeState(state)
	return &Session{
		editor:  ed,
		state:   state,
		metrics: metrics,
		clients: make(map[*websocket.Conn]bool),
	}
}

// State returns the current state and its version.
func (s *Session) State() (editor.State, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.version
}

// Result is the outcome of a dispatched action.
type Result struct {
	State   editor.State
	Version int
	// Changed is false when the action left the state as it was.
	Changed bool
}

// Dispatch applies a to the current state. On error the state is kept.
func (s *Session) Dispatch(a editor.Action) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.editor.Reduce(s.state, a)
	switch {
	case err != nil:
		s.metrics.observeAction(a.Type(), OutcomeRejected)
		return Result{State: s.state, Version: s.version}, err
	case next == s.state:
		s.metrics.observeAction(a.Type(), OutcomeUnchanged)
		return Result{State: s.state, Version: s.version}, nil
	}
	s.state = next
	s.version++
	s.metrics.observeAction(a.Type(), OutcomeApplied)
	s.metrics.observeState(next)
	s.broadcast(stateDocument(next, s.version))
	return Result{State: next, Version: s.version, Changed: true}, nil
}

// subscribe sends the current state to conn and registers it for every
// later change. Lock order is mu, then clientsMu.
func (s *Session) subscribe(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	s.clients[conn] = true
	s.metrics.streamsTotal.Inc()
	s.metrics.streams.Inc()
	if err := s.write(conn, stateDocument(s.state, s.version)); err != nil {
		s.drop(conn, err)
	}
}

func (s *Session) unsubscribe(conn *websocket.Conn) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if s.clients[conn] {
		delete(s.clients, conn)
		s.metrics.streams.Dec()
	}
}

func (s *Session) broadcast(doc *jsonvalue.Object) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	data, err := jsonvalue.MarshalJSON(doc)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode state")
		return
	}
	for conn := range s.clients {
		if err := s.writeData(conn, data); err != nil {
			s.drop(conn, err)
		}
	}
}

// write sends doc to conn. Callers hold clientsMu, which also serializes
// writers of a connection.
func (s *Session) write(conn *websocket.Conn, doc *jsonvalue.Object) error {
	data, err := jsonvalue.MarshalJSON(doc)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode state")
		return nil
	}
	return s.writeData(conn, data)
}

func (s *Session) writeData(conn *websocket.Conn, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// drop closes a client whose stream failed and forgets it. The caller
// holds clientsMu. The client's reader then fails and unsubscribes, which
// is a no-op by then.
func (s *Session) drop(conn *websocket.Conn, err error) {
	log.Debug().Err(err).Msg("Dropping state stream")
	if s.clients[conn] {
		delete(s.clients, conn)
		s.metrics.streams.Dec()
	}
	conn.Close()
}

// stateDocument renders a state for clients: both documents, the UI
// schema in debug form so that element ids can be addressed, the id of
// every schema node by path, and the UI links of every schema node.
func stateDocument(s editor.State, version int) *jsonvalue.Object {
	links := jsonvalue.NewObject()
	for n := range jsonschema.All(s.Schema) {
		ids := n.LinkedIDs()
		if len(ids) == 0 {
			continue
		}
		list := make([]any, len(ids))
		for i, id := range ids {
			list[i] = id
		}
		links.Set(n.ID, list)
	}
	var schema, ui any
	if s.Schema != nil {
		schema = jsonschema.ToRaw(s.Schema)
	}
	if s.UISchema != nil {
		ui = uischema.DebugForm(s.UISchema)
	}
	return jsonvalue.ObjectOf(
		"version", jsonvalue.Number(version),
		"schema", schema,
		"schemaIds", schemaIDs(s.Schema),
		"uiSchema", ui,
		"links", links,
	)
}

// schemaIDs maps the structural path of every schema node to its id.
func schemaIDs(root *jsonschema.Node) *jsonvalue.Object {
	out := jsonvalue.NewObject()
	for n := range jsonschema.All(root) {
		path := "#"
		for _, seg := range jsonschema.PathFromRoot(n) {
			path += "/" + seg
		}
		out.Set(path, n.ID)
	}
	return out
}
