package index

// PostIndex is the post index as used by the publishing service, the vault
// sync and the watcher. *DB is the SQLite implementation.
type PostIndex interface {
	UpsertPost(p PostRow, text string) error
	DeletePost(path string) error
	GetChecksum(path string) (string, error)
	GetPost(path string) (*PostRow, error)
	ListPosts(f ListFilter) ([]PostRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Responses(target string) ([]PostRow, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

var _ PostIndex = (*DB)(nil)
