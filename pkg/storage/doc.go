// Package storage writes generated tables to disk.
//
// Exports are written atomically: the CSV goes to a temporary file that is
// renamed into place once complete, so a crash never leaves a half-written
// export behind. Existing exports are only replaced when the manager was
// created with overwrite enabled.
//
// Usage:
//
//	manager, err := storage.NewManager("out", false)
//	if err != nil {
//	    return err
//	}
//
//	path, err := manager.SaveTable(results, storage.DefaultFileName)
//	if errors.Is(err, storage.ErrFileExists) {
//	    // pick another name
//	}
package storage
