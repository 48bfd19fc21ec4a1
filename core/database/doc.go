// Package database exposes relational tables as a provider fetch source.
//
// It wraps GORM to open MySQL or SQLite connections from the application's
// configuration, inspects table columns, and serves table snapshots through
// Fetcher so a provider can reconcile rows like any other remote collection.
//
// # Connect
//
// Connect selects the dialector from Config.Driver and verifies the connection
// with a ping bounded by Config.TimeoutSeconds.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns (SHOW COLUMNS on MySQL, PRAGMA
// table_info on SQLite). InferFields turns them into field declarations, which
// is how `datasync schema infer` drafts a schema file for a table.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	p := provider.New(provider.WithFetcher(database.NewFetcher(db, cfg.Database.KeyColumn)))
//	changed, err := p.FetchOnce(ctx, "/users", provider.Request{})
package database
