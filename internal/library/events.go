package library

import "github.com/pders01/newsroom/internal/storage"

// ChangeKind identifies a library mutation.
type ChangeKind int

const (
	SearchSaved ChangeKind = iota
	SearchDeleted
	FolderCreated
	FolderDeleted
	ArticleSaved
	ArticleRemoved
	SettingsChanged
	Replaced
)

func (k ChangeKind) String() string {
	switch k {
	case SearchSaved:
		return "search-saved"
	case SearchDeleted:
		return "search-deleted"
	case FolderCreated:
		return "folder-created"
	case FolderDeleted:
		return "folder-deleted"
	case ArticleSaved:
		return "article-saved"
	case ArticleRemoved:
		return "article-removed"
	case SettingsChanged:
		return "settings-changed"
	case Replaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Change describes one applied mutation. Articles holds the entries that
// were added or removed, when the change concerns saved articles.
type Change struct {
	Kind     ChangeKind
	FolderID string
	Articles []storage.SavedArticle
}

// ChangeListener is notified after each mutation, whether or not the flush
// succeeded.
type ChangeListener interface {
	OnLibraryChanged(change Change)
}

// AddListener registers l for change notifications.
func (l *Library) AddListener(ln ChangeListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, ln)
}
