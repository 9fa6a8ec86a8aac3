package cache

// SQL schemas for cache tables
// All cache tables use "cache_key" as the primary key column for consistency

// SearchTable caches Google Books search responses keyed by search term
const SearchTable = "googlebooks_search_cache"

// GoogleBooksSearchCacheSchema defines the schema for the search response cache
const GoogleBooksSearchCacheSchema = `
CREATE TABLE IF NOT EXISTS googlebooks_search_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_googlebooks_search_cached_at ON googlebooks_search_cache(cached_at);
`

// AllCacheSchemas contains all cache table schemas for easy initialization
var AllCacheSchemas = []string{
	GoogleBooksSearchCacheSchema,
}

// ValidCacheTableNames is the whitelist of allowed cache table names
// Used to prevent SQL injection when interpolating table names
var ValidCacheTableNames = map[string]bool{
	SearchTable: true,
}

// Sources maps the user-facing source name to its cache table
var Sources = map[string]string{
	"googlebooks": SearchTable,
}
