package tables

import "github.com/goliatone/go-tablesync/components/tablesync"

// Client is the full row-level and composite surface of a table backend.
type Client interface {
	tablesync.TableClient
}
