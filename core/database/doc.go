// Package database handles database connections and schema inspection.
//
// It wraps GORM to configure MySQL or SQLite connections from the application's
// configuration. The document store builds its per-collection tables on top of the
// connection returned here.
//
// # Connect
//
// Connect opens the configured driver, applies pool settings and pings the server
// within the configured timeout.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table for either dialect. The document store
// uses it to describe collections for the operations API.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "Image")
package database
