package gui

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

// AppID identifies the application to the fyne driver (preferences, window class).
const AppID = "io.github.roi-snapshot"

// Run creates the fyne application and blocks the calling goroutine, which
// must be the main one, in the driver loop. body runs on its own goroutine once
// the driver is up; the application quits when body returns.
func Run(body func(a fyne.App)) {
	a := app.NewWithID(AppID)
	a.Lifecycle().SetOnStarted(func() {
		go func() {
			defer Quit(a)
			defer func() {
				if r := recover(); r != nil {
					log.Printf("PANIC in control loop: %v", r)
				}
			}()
			body(a)
		}()
	})
	a.Run()
}

// Quit stops the driver loop. Safe to call from any goroutine.
func Quit(a fyne.App) {
	fyne.Do(a.Quit)
}
