// Package main provides the entry point for the SignFlow application.
package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"signflow/internal/app"
	"signflow/internal/pdfout"
	"signflow/internal/version"
	"signflow/ui/mainwindow"
	"signflow/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const appTitle = "SignFlow"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	fyneApp := fyneapp.NewWithID("io.signflow.app")
	fyneApp.Settings().SetTheme(&app.SignFlowTheme{})

	state, err := app.NewState(pdfout.NewWriter())
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, state, appPrefs)

	if len(os.Args) > 1 {
		path := os.Args[1]
		switch filepath.Ext(path) {
		case ".sgfproj":
			if err := state.LoadSession(path); err != nil {
				log.Printf("Failed to load session %s: %v", path, err)
			}
		default:
			state.LoadDocument(path)
		}
	} else if last := appPrefs.String(prefs.KeySessionPath, ""); last != "" {
		if _, err := os.Stat(last); err == nil {
			if err := state.LoadSession(last); err != nil {
				log.Printf("Failed to reopen session %s: %v", last, err)
			}
		}
	}

	setupHotReload(state, appPrefs)

	win.ShowAndRun()
}

// setupHotReload restarts the application when the binary on disk is
// replaced by a newer build.
func setupHotReload(state *app.State, appPrefs *prefs.Prefs) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected, restarting...")
		if state.SessionPath != "" && state.Modified {
			if err := state.SaveSession(state.SessionPath); err != nil {
				log.Printf("Hot reload: session save failed: %v", err)
			}
		}
		_ = appPrefs.Save()
		if err := reloader.Restart(); err != nil {
			log.Printf("Hot reload: restart failed: %v", err)
		}
	})

	reloader.Start()
}
