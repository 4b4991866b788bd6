// Package app provides application lifecycle management, session
// persistence, and events.
package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"signflow/internal/annotation"
	"signflow/internal/compose"
	"signflow/internal/history"
	"signflow/internal/interact"
	"signflow/internal/page"
	"signflow/internal/textmetric"
	"signflow/pkg/geometry"
)

// State holds the application state: the loaded document, the
// annotation model with its history, and the interaction controller.
type State struct {
	mu sync.RWMutex

	// Session
	SessionPath string
	Modified    bool

	// Document
	DocumentPath string
	Pages        []page.Page
	Stats        page.Stats

	// Engine
	Fonts      *textmetric.Library
	Model      *annotation.Model
	History    *history.Stack
	Controller *interact.Controller
	writer     compose.DocumentWriter
	rasterizer *compose.Rasterizer
	engine     *compose.Engine

	// Guards results of the in-flight document load; a Reset or a
	// newer load bumps it so the stale result is discarded when it
	// resolves.
	loadGen int

	// True while a background export runs; a second export is
	// rejected until it resolves.
	exporting bool

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventSessionLoaded EventType = iota
	EventSessionSaved
	EventDocumentLoaded
	EventDocumentLoadFailed
	EventModelChanged
	EventSelectionChanged
	EventModified
	EventExportDone
	EventExportFailed
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state wired over the given output
// backend.
func NewState(writer compose.DocumentWriter) (*State, error) {
	fonts, err := textmetric.NewLibrary()
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	model := annotation.NewModel(fonts)
	hist := history.New()
	ras := compose.NewRasterizer(fonts)
	return &State{
		Fonts:      fonts,
		Model:      model,
		History:    hist,
		Controller: interact.NewController(model, hist),
		writer:     writer,
		rasterizer: ras,
		engine:     compose.NewEngine(ras, writer),
		listeners:  make(map[EventType][]EventListener),
	}, nil
}

// Rasterizer returns the shared item rasterizer, so the editor canvas
// draws items exactly as the export will.
func (s *State) Rasterizer() *compose.Rasterizer {
	return s.rasterizer
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the session as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// rendererFor picks the page source for a path: a directory of scans
// or a PDF.
func (s *State) rendererFor(path string) (page.Renderer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return page.DirRenderer{}, nil
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return page.PDFRenderer{Prober: s.writer}, nil
	}
	return nil, fmt.Errorf("unsupported document source %s", path)
}

// LoadDocument renders a document's pages in the background. The model
// and history are reset immediately; EventDocumentLoaded (or
// EventDocumentLoadFailed) fires when the render resolves. A result
// from a load that was superseded in the meantime is dropped.
func (s *State) LoadDocument(path string) {
	renderer, err := s.rendererFor(path)
	if err != nil {
		s.Emit(EventDocumentLoadFailed, err)
		return
	}

	s.mu.Lock()
	s.loadGen++
	gen := s.loadGen
	s.DocumentPath = path
	s.Pages = nil
	s.Stats = page.Stats{}
	s.mu.Unlock()

	s.Model.Clear()
	s.Model.SetPageCount(0)
	s.History.Reset()
	s.Controller.Reset()
	s.Emit(EventModelChanged, nil)

	go func() {
		pages, err := renderer.RenderPages(path)
		s.finishLoad(gen, path, pages, err)
	}()
}

// finishLoad installs a resolved page render unless a newer load or a
// reset has superseded it.
func (s *State) finishLoad(gen int, path string, pages []page.Page, err error) {
	s.mu.Lock()
	if gen != s.loadGen {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.mu.Unlock()
		s.Emit(EventDocumentLoadFailed, fmt.Errorf("load %s: %w", path, err))
		return
	}
	s.Pages = pages
	s.Stats = page.Summarize(pages)
	s.mu.Unlock()

	s.Model.SetPageCount(len(pages))
	s.Emit(EventDocumentLoaded, path)
}

// PageList returns the loaded pages.
func (s *State) PageList() []page.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Pages
}

// Reset drops the document, the model, and all history.
func (s *State) Reset() {
	s.mu.Lock()
	s.loadGen++
	s.SessionPath = ""
	s.DocumentPath = ""
	s.Pages = nil
	s.Stats = page.Stats{}
	s.Modified = false
	s.mu.Unlock()

	s.Model.Clear()
	s.Model.SetPageCount(0)
	s.History.Reset()
	s.Controller.Reset()
	s.Emit(EventModelChanged, nil)
}

// Export composes the annotated document and writes it to outPath.
// The model is copied before this returns, so the caller may keep
// editing while the write runs in the background; completion is
// reported through EventExportDone or EventExportFailed. Only one
// export runs at a time.
func (s *State) Export(outPath string) error {
	s.mu.Lock()
	if s.exporting {
		s.mu.Unlock()
		return fmt.Errorf("export already in progress")
	}
	docPath := s.DocumentPath
	pages := s.Pages
	if docPath == "" || len(pages) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("no document loaded")
	}
	s.exporting = true
	s.mu.Unlock()

	// Detach a copy of the model on the caller's goroutine. Edits
	// made after this point do not reach the export.
	detached := annotation.NewModel(s.Fonts)
	detached.SetPageCount(s.Model.PageCount())
	detached.Restore(s.Model.Snapshot())
	logical := page.Sizes(pages)

	go func() {
		rep, err := s.runExport(docPath, outPath, logical, detached)

		s.mu.Lock()
		s.exporting = false
		s.mu.Unlock()

		if err != nil {
			log.Printf("Export of %s failed: %v", docPath, err)
			s.Emit(EventExportFailed, err)
			return
		}
		s.Emit(EventExportDone, rep)
	}()
	return nil
}

func (s *State) runExport(docPath, outPath string, logical []geometry.Size, model *annotation.Model) (compose.Report, error) {
	doc, err := os.ReadFile(docPath)
	if err != nil {
		return compose.Report{}, fmt.Errorf("read source document: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return compose.Report{}, fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	return s.engine.Compose(doc, logical, model, out)
}

// SessionFile is the JSON structure of a .sgfproj file.
type SessionFile struct {
	Version      int               `json:"version"`
	DocumentPath string            `json:"document,omitempty"`
	Items        []annotation.Item `json:"items"`
}

// SaveSession saves the session to the specified path. The document
// path is stored relative to the session file when possible.
func (s *State) SaveSession(path string) error {
	sess := SessionFile{Version: 1}

	s.mu.RLock()
	if s.DocumentPath != "" {
		if rel, err := filepath.Rel(filepath.Dir(path), s.DocumentPath); err == nil {
			sess.DocumentPath = rel
		} else {
			sess.DocumentPath = s.DocumentPath
		}
	}
	s.mu.RUnlock()

	for _, it := range s.Model.Items() {
		sess.Items = append(sess.Items, *it)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}

	s.mu.Lock()
	s.SessionPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventSessionSaved, path)
	return nil
}

// LoadSession loads a session from the specified path: the referenced
// document starts loading and the saved items replace the model.
func (s *State) LoadSession(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var sess SessionFile
	if err := json.Unmarshal(data, &sess); err != nil {
		return fmt.Errorf("parse session: %w", err)
	}

	s.Reset()

	s.mu.Lock()
	s.SessionPath = path
	s.mu.Unlock()

	// Start the document load first; its synchronous part clears the
	// model, so the saved items must be restored after it.
	if sess.DocumentPath != "" {
		docPath := sess.DocumentPath
		if !filepath.IsAbs(docPath) {
			docPath = filepath.Join(filepath.Dir(path), docPath)
		}
		s.LoadDocument(docPath)
	}

	snap := annotation.Snapshot{}
	for _, it := range sess.Items {
		snap[it.PageIndex] = append(snap[it.PageIndex], it)
	}
	s.Model.Restore(snap)
	s.History.Commit(s.Model.Snapshot())
	s.Emit(EventModelChanged, nil)

	s.Emit(EventSessionLoaded, path)
	return nil
}
