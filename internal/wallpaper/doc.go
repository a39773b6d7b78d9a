// Package wallpaper orchestrates wallpaper generation for a Last.fm user.
//
// # Manager
//
// The Manager coordinates the entire process:
//
//  1. Validate the username
//  2. Fetch the user's top albums
//  3. For each album: pick a cover URL, download it, composite it onto a
//     wallpaper canvas and encode it to disk
//  4. Pack the produced files into a zip archive
//
// # Basic Usage
//
//	manager := wallpaper.NewManager(settings, func(event wallpaper.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	result, err := manager.Generate(ctx, "demoUser", lastfm.PeriodOverall, 10)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Archive.Path)
//
// Interactive front ends call Initialize and Build separately so they can
// show the album list before rendering starts. Export copies a finished
// archive out of its scratch directory.
//
// # Concurrency
//
// Albums are rendered by a bounded pool of
// max(1, min(MaxWorkers, 2*NumCPU, availableMemory/MemoryPerWorker))
// workers. Before each album starts, available memory is checked against
// MinAvailableMemory; below it the album is skipped. Each album has its own
// JobTimeout. One album failing never affects the others.
//
// The progress callback is invoked from worker goroutines and must be safe
// for concurrent use.
//
// # Errors
//
//   - *ValidationError: the username was rejected by Last.fm
//   - ErrNoWallpapers: no album produced a wallpaper
//   - context errors: the caller cancelled the run
package wallpaper
